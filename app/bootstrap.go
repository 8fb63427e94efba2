package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DeiroLy/Safe-Tools/db"
	"github.com/DeiroLy/Safe-Tools/session"

	"github.com/google/uuid"
)

// BootstrapOperator makes sure username exists as an operator, promotes it to
// admin when no admin exists yet, and issues a fresh session for it. It lets a
// single-site install run without the external authentication service.
func BootstrapOperator(ctx context.Context, username string, repo *db.Repo, sessions *session.OperatorSessionStore, logger *slog.Logger) (string, error) {
	if username == "" {
		return "", fmt.Errorf("bootstrap: empty username")
	}
	u, err := repo.FindOrCreateUser(ctx, username, uuid.NewString())
	if err != nil {
		return "", fmt.Errorf("bootstrap: operator: %w", err)
	}
	n, err := repo.CountAdmins(ctx)
	if err != nil {
		return "", fmt.Errorf("bootstrap: count admins: %w", err)
	}
	if n == 0 && !u.IsAdmin {
		if err := repo.SetUserAdmin(ctx, u.ID, true); err != nil {
			return "", fmt.Errorf("bootstrap: promote: %w", err)
		}
		logger.Info("bootstrap operator promoted to admin", "operator", u.Username)
	}

	sid := uuid.NewString()
	if _, err := sessions.Create(ctx, sid, u.ID); err != nil {
		return "", fmt.Errorf("bootstrap: session: %w", err)
	}
	logger.Info("bootstrap session issued", "operator", u.Username, "operator_id", u.ID, "ttl", sessions.TTL())
	return sid, nil
}
