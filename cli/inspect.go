package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DeiroLy/Safe-Tools/app"
	"github.com/DeiroLy/Safe-Tools/db"
	"github.com/DeiroLy/Safe-Tools/models"
	"github.com/DeiroLy/Safe-Tools/tracker"

	"github.com/spf13/cobra"
)

type snapshot struct {
	Tools []models.Tool     `json:"tools"`
	Modes []models.Mode     `json:"modes"`
	Logs  []tracker.LogView `json:"logs"`
}

// NewInspectCmd creates the "inspect" subcommand: a JSON dump of the newest
// tools, modes and log entries.
func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the most recent tools, modes and log entries as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			cfg := app.LoadConfig()
			conn, err := db.Open(cfg.DB)
			if err != nil {
				return err
			}
			if sqlDB, err := conn.DB(); err == nil {
				defer sqlDB.Close()
			}
			snap, err := inspect(cmd.Context(), db.NewRepo(conn), limit)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		},
	}
	cmd.Flags().Int("limit", 20, "Rows per table")
	return cmd
}

func inspect(ctx context.Context, repo *db.Repo, limit int) (*snapshot, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("inspect: limit must be positive")
	}
	tools, err := repo.RecentTools(ctx, limit)
	if err != nil {
		return nil, err
	}
	modes, err := repo.RecentModes(ctx, limit)
	if err != nil {
		return nil, err
	}
	logs, err := repo.ListLogs(ctx, tracker.LogQuery{Limit: limit, NewestFirst: true})
	if err != nil {
		return nil, err
	}
	return &snapshot{Tools: tools, Modes: modes, Logs: logs}, nil
}
