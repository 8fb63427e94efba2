package cli

import (
	"fmt"

	"github.com/DeiroLy/Safe-Tools/app"
	"github.com/DeiroLy/Safe-Tools/db"

	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the "migrate" subcommand. It only touches the store;
// redis is not required.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the tools, modes and logs tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := app.LoadConfig()
			conn, err := db.Open(cfg.DB) // Open migrates
			if err != nil {
				return err
			}
			if sqlDB, err := conn.DB(); err == nil {
				defer sqlDB.Close()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema up to date (%s)\n", conn.Dialector.Name())
			return nil
		},
	}
}
