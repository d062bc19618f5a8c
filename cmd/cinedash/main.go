package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cinedash",
	Short: "Role based dashboards for the movie-catalog API",
	Long: `cinedash serves the movie-catalog dashboards. It logs users in against the
catalog API, keeps their bearer token in server side client storage and renders
the dashboard that matches their role.

Configuration is read from the environment, see internal/dashboard/app/config.go.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
