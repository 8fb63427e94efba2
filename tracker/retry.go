package tracker

import (
	"context"
	"errors"
)

// retryOnConflict calls attempt until it succeeds, fails with something other
// than a conflict, or has been tried max times. Exhausting the bound yields
// ErrResourceExhausted wrapping the last conflict. onConflict, when set, runs
// after every failed attempt.
func retryOnConflict(ctx context.Context, max int, attempt func(n int) error, onConflict func(n int, err error)) error {
	if max < 1 {
		max = 1
	}
	var last error
	for n := 1; n <= max; n++ {
		if err := ctx.Err(); err != nil {
			return Wrap(KindStoreUnavailable, err, "request abandoned")
		}
		err := attempt(n)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrConflict) {
			return err
		}
		last = err
		if onConflict != nil {
			onConflict(n, err)
		}
	}
	return &Error{Kind: KindResourceExhausted, Msg: "placeholder tag space exhausted", Err: last}
}
