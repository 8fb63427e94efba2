package tracker

import (
	"context"
	"time"

	"github.com/DeiroLy/Safe-Tools/models"
)

// Store is the durable storage the tracker drives. Implementations translate
// their native failures into tracker errors: a missing row is ErrNotFound, a
// uniqueness violation is ErrConflict and anything transient is
// ErrStoreUnavailable.
type Store interface {
	// Tx runs fn in a single transaction; fn receives a Store bound to it.
	// Returning an error rolls everything back.
	Tx(ctx context.Context, fn func(tx Store) error) error
	// LockCodePrefix serializes code assignment for every category that
	// folds to prefix until the surrounding transaction ends.
	LockCodePrefix(ctx context.Context, prefix string) error

	FindToolByID(ctx context.Context, id string) (*models.Tool, error)
	FindToolByTag(ctx context.Context, tag string) (*models.Tool, error)
	// LockToolByID / LockToolByTag read the row and hold it for the rest of
	// the transaction.
	LockToolByID(ctx context.Context, id string) (*models.Tool, error)
	LockToolByTag(ctx context.Context, tag string) (*models.Tool, error)
	CreateTool(ctx context.Context, t *models.Tool) error
	BindTool(ctx context.Context, id, tag, code, name string, at time.Time) error
	SetToolStatus(ctx context.Context, id string, status models.Status, at time.Time) error
	// CountCodes counts the tools whose code starts with prefix.
	CountCodes(ctx context.Context, prefix string) (int64, error)

	CreateMode(ctx context.Context, m *models.Mode) error
	FindModeByToken(ctx context.Context, token string) (*models.Mode, error)
	// LatestMode returns the newest mode of kind, or of any kind when kind is
	// empty.
	LatestMode(ctx context.Context, kind models.ModeKind) (*models.Mode, error)

	AppendLog(ctx context.Context, e *models.LogEntry) error
	LastLogTime(ctx context.Context, toolID string) (time.Time, error)
	ListLogs(ctx context.Context, q LogQuery) ([]LogView, error)
}

// LogQuery filters audit history. Entries are ordered by timestamp then id,
// oldest first unless NewestFirst is set.
type LogQuery struct {
	ToolID      string
	Limit       int
	NewestFirst bool
}

// LogView is a log entry joined with the names a console wants to show.
type LogView struct {
	models.LogEntry
	ToolName         string `json:"toolName,omitempty"`
	ToolCode         string `json:"toolCode,omitempty"`
	OperatorUsername string `json:"operatorUsername,omitempty"`
}
