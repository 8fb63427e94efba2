// Package tracker binds physical RFID tags to tools and drives their lending
// state. Every public operation runs as one store transaction: either the
// status change and its audit entry both commit, or neither does.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	// DefaultPlaceholderAttempts bounds placeholder tag regeneration.
	DefaultPlaceholderAttempts = 6
	// DefaultTimeout bounds each operation when the caller sets no deadline.
	DefaultTimeout = 3 * time.Second
)

// Clock supplies audit timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns the wall clock in UTC.
func SystemClock() Clock { return systemClock{} }

// Service is the tag binding and lending state machine.
type Service struct {
	store    Store
	clock    Clock
	logger   *slog.Logger
	meter    metric.Meter
	metrics  *Metrics
	newTag   func() (string, error)
	attempts int
	timeout  time.Duration
}

type Option func(*Service)

func WithClock(c Clock) Option { return func(s *Service) { s.clock = c } }

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

func WithMeter(m metric.Meter) Option { return func(s *Service) { s.meter = m } }

// WithPlaceholderTags replaces the generator of synthetic placeholder tags.
func WithPlaceholderTags(fn func() (string, error)) Option {
	return func(s *Service) { s.newTag = fn }
}

func WithPlaceholderAttempts(n int) Option { return func(s *Service) { s.attempts = n } }

// WithTimeout sets the per-operation deadline; zero disables it.
func WithTimeout(d time.Duration) Option { return func(s *Service) { s.timeout = d } }

func New(store Store, opts ...Option) (*Service, error) {
	s := &Service{
		store:    store,
		clock:    SystemClock(),
		newTag:   NewPlaceholderTag,
		attempts: DefaultPlaceholderAttempts,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.meter == nil {
		s.meter = otel.Meter("github.com/DeiroLy/Safe-Tools/tracker")
	}
	if s.attempts < 1 {
		s.attempts = DefaultPlaceholderAttempts
	}
	m, err := NewMetrics(s.meter)
	if err != nil {
		return nil, err
	}
	s.metrics = m
	return s, nil
}

// bound applies the operation timeout unless ctx already carries a sooner
// deadline.
func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) < s.timeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// stamp returns the timestamp for a new log entry on toolID, never earlier
// than the tool's previous entry so history stays ordered even if the wall
// clock steps back.
func (s *Service) stamp(ctx context.Context, tx Store, toolID string) (time.Time, error) {
	now := s.clock.Now().UTC()
	if toolID == "" {
		return now, nil
	}
	last, err := tx.LastLogTime(ctx, toolID)
	if err != nil {
		return time.Time{}, err
	}
	if last.After(now) {
		return last, nil
	}
	return now, nil
}

// operatorRef validates an optional operator id. Operators are identified by
// the uuid the authentication service issued.
func operatorRef(raw string) (*string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return nil, nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, Errorf(KindInvalidInput, "malformed operator id %q", id)
	}
	return &id, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// track records the operation and reports a deadline or cancellation that
// escaped the store untranslated as ErrStoreUnavailable.
func (s *Service) track(op string, start time.Time, err *error) {
	if e := *err; e != nil && KindOf(e) == KindInternal &&
		(errors.Is(e, context.DeadlineExceeded) || errors.Is(e, context.Canceled)) {
		*err = &Error{Kind: KindStoreUnavailable, Msg: op + " timed out", Err: e}
	}
	s.metrics.observe(op, start, *err)
}
