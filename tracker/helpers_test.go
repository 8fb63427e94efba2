package tracker_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/DeiroLy/Safe-Tools/db"
	"github.com/DeiroLy/Safe-Tools/models"
	"github.com/DeiroLy/Safe-Tools/tracker"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"gorm.io/gorm/logger"
)

// testClock starts at a fixed instant and can be moved by hand.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	svc    *tracker.Service
	repo   *db.Repo
	clock  *testClock
	reader *sdkmetric.ManualReader
}

func newFixture(t *testing.T, opts ...tracker.Option) *fixture {
	t.Helper()
	conn, err := db.Open(db.Options{
		Driver:     db.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "safetools.db"),
		LogLevel:   logger.Silent,
	})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	clock := newTestClock()
	repo := db.NewRepo(conn)

	base := []tracker.Option{
		tracker.WithClock(clock),
		tracker.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		tracker.WithMeter(mp.Meter("test")),
		tracker.WithTimeout(20 * time.Second),
	}
	svc, err := tracker.New(repo, append(base, opts...)...)
	require.NoError(t, err)
	return &fixture{svc: svc, repo: repo, clock: clock, reader: reader}
}

// sequence returns a placeholder generator that yields tags in order, then
// falls back to random ones.
func sequence(tags ...string) func() (string, error) {
	var mu sync.Mutex
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(tags) == 0 {
			return tracker.NewPlaceholderTag()
		}
		tag := tags[0]
		tags = tags[1:]
		return tag, nil
	}
}

func repeat(tag string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = tag
	}
	return out
}

func (f *fixture) collect(t *testing.T) *metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, f.reader.Collect(context.Background(), &rm))
	return &rm
}

// counter sums every data point of an int64 counter.
func counter(rm *metricdata.ResourceMetrics, name string) int64 {
	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

// register declares a register mode and binds tag to it.
func (f *fixture) register(t *testing.T, category, tag string) *tracker.BindingResult {
	t.Helper()
	ctx := context.Background()
	rec, err := f.svc.DeclareIntent(ctx, tracker.Intent{Kind: models.ModeRegister, Category: category})
	require.NoError(t, err)
	res, err := f.svc.ResolveScan(ctx, tag, rec.Token)
	require.NoError(t, err)
	require.Equal(t, tracker.OutcomeBound, res.Outcome)
	return res
}
