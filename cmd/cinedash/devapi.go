package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aussiebroadwan/cinedash/internal/dashboard/apitest"
	"github.com/spf13/cobra"
)

// devapiCmd runs the in-process fake catalog so the dashboard can be
// exercised without the real backend.
var devapiCmd = &cobra.Command{
	Use:   "devapi",
	Short: "Run a fake movie-catalog API for local development",
	Long: `Runs a fake movie-catalog API seeded with demo accounts:

	alice / Member123!      member
	carol / Critic123!      critic
	mo    / Moderator123!   moderator
	root  / Admin123!       administrator
	dora  / Dormant123!     deactivated member

Point CATALOG_API_BASE_URL at it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		secret, _ := cmd.Flags().GetString("secret")

		catalog := apitest.NewCatalog([]byte(secret), apitest.DefaultUsers...)
		srv := &http.Server{
			Addr:              addr,
			Handler:           catalog,
			ReadHeaderTimeout: 3 * time.Second,
		}

		cmd.Printf("fake catalog API listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("devapi failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devapiCmd)
	devapiCmd.Flags().String("addr", ":8000", "listen address")
	devapiCmd.Flags().String("secret", "devapi-secret", "HS256 signing secret")
}
