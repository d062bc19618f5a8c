package main

import (
	"github.com/aussiebroadwan/cinedash/pkg/cryptox"
	"github.com/spf13/cobra"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Print a random value for CINEDASH_MASTER_KEY",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return err
		}
		cmd.Println(key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}
