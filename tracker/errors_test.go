package tracker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("handler: %w", Errorf(KindConflict, "tag taken"))
	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrNotFound)

	// Specific sentinels match generically by kind but not each other.
	assert.ErrorIs(t, ErrNoPendingRegistration, ErrNotFound)
	assert.NotErrorIs(t, ErrInvalidMode, ErrNoPendingRegistration)
	assert.NotErrorIs(t, Errorf(KindNotFound, "tool"), ErrInvalidMode)
}

func TestKindOfAndRetryable(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindNotFound, KindOf(ErrNotLendable))

	assert.True(t, Retryable(ErrConflict))
	assert.True(t, Retryable(Wrap(KindStoreUnavailable, context.DeadlineExceeded, "query")))
	assert.False(t, Retryable(ErrInvalidInput))
	assert.False(t, Retryable(ErrResourceExhausted))
}

func TestWrapKeepsExistingKind(t *testing.T) {
	inner := Errorf(KindConflict, "dup")
	assert.Same(t, inner, Wrap(KindInternal, inner, "outer"))
	assert.Nil(t, Wrap(KindInternal, nil, "nothing"))

	cause := errors.New("disk")
	err := Wrap(KindStoreUnavailable, cause, "write")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "store_unavailable: write: disk", err.Error())
}
