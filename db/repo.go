package db

import (
	"context"
	"errors"
	"strings"

	"github.com/DeiroLy/Safe-Tools/tracker"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

var _ tracker.Store = (*Repo)(nil)

// Tx runs fn in one gorm transaction; the Repo handed to fn is bound to it.
func (r *Repo) Tx(ctx context.Context, fn func(tracker.Store) error) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repo{DB: tx})
	})
	return translate(err, "transaction")
}

// LockCodePrefix takes a transaction-scoped advisory lock on Postgres. SQLite
// transactions are opened IMMEDIATE and already hold the database write lock.
func (r *Repo) LockCodePrefix(ctx context.Context, prefix string) error {
	if !r.postgres() {
		return nil
	}
	err := r.DB.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "tool-code:"+prefix).Error
	return translate(err, "lock code prefix")
}

func (r *Repo) postgres() bool { return r.DB.Dialector.Name() == DriverPostgres }

// forUpdate locks the selected rows until the transaction ends where the
// dialect supports row locks.
func (r *Repo) forUpdate(ctx context.Context) *gorm.DB {
	q := r.DB.WithContext(ctx)
	if r.postgres() {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

// translate maps gorm and driver failures onto the tracker taxonomy.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	var te *tracker.Error
	switch {
	case errors.As(err, &te):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &tracker.Error{Kind: tracker.KindNotFound, Msg: what + " not found"}
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return &tracker.Error{Kind: tracker.KindConflict, Msg: what + " violates a unique key", Err: err}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &tracker.Error{Kind: tracker.KindStoreUnavailable, Msg: what + " timed out", Err: err}
	}
	return &tracker.Error{Kind: tracker.KindStoreUnavailable, Msg: what, Err: err}
}

// isUniqueViolation catches drivers that bypass TranslateError.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
