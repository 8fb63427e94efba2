package cli

import (
	"fmt"
	"log/slog"

	"github.com/DeiroLy/Safe-Tools/app"

	"github.com/spf13/cobra"
)

// NewSessionCmd creates the "session" subcommand, which issues an operator
// session for local installs that run without the authentication service.
func NewSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session <username>",
		Short: "Ensure an operator exists and print a new session id for it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			revoke, _ := cmd.Flags().GetBool("revoke")
			a, err := app.New(app.LoadConfig(), slog.Default())
			if err != nil {
				return err
			}
			defer a.Close()

			if revoke {
				u, err := a.Repo.FindUserByUsername(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("operator %q: %w", args[0], err)
				}
				if err := a.Sessions().RevokeAllForOperator(cmd.Context(), u.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Revoked all sessions of %s\n", u.Username)
				return nil
			}

			sid, err := app.BootstrapOperator(cmd.Context(), args[0], a.Repo, a.Sessions(), slog.Default())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sid)
			return nil
		},
	}
	cmd.Flags().Bool("revoke", false, "Revoke every session of the operator instead of issuing one")
	return cmd
}
