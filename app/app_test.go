package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/DeiroLy/Safe-Tools/db"
	"github.com/DeiroLy/Safe-Tools/tracker"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) (*App, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	conn, err := db.Open(db.Options{
		Driver:     db.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "app.db"),
		LogLevel:   logger.Silent,
	})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := Config{
		WebOrigin:        "http://localhost:5173",
		SessionTTL:       time.Hour,
		OpTimeout:        5 * time.Second,
		LastSeenThrottle: time.Minute,
	}
	a, err := Assemble(cfg, conn, rdb, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return a, mr
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// whoami mounts the middleware in front of a handler that echoes the operator.
func whoami(a *App, required bool) *gin.Engine {
	r := gin.New()
	r.Use(OperatorSession(a.Sessions(), a.Repo, required), TouchLastSeen(a.Repo, a.RDB, a.Config.LastSeenThrottle))
	r.GET("/me", func(c *Ctx) { c.String(http.StatusOK, OperatorID(c)) })
	return r
}

func get(r http.Handler, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOperatorSession(t *testing.T) {
	a, mr := newTestApp(t)
	ctx := context.Background()

	sid, err := BootstrapOperator(ctx, "maria", a.Repo, a.Sessions(), quietLogger())
	require.NoError(t, err)
	u, err := a.Repo.FindUserByUsername(ctx, "maria")
	require.NoError(t, err)

	t.Run("anonymous allowed", func(t *testing.T) {
		w := get(whoami(a, false), nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("anonymous rejected when required", func(t *testing.T) {
		w := get(whoami(a, true), nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("cookie", func(t *testing.T) {
		w := get(whoami(a, true), func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: AppSessionCookie, Value: sid})
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, u.ID, w.Body.String())
		assert.True(t, mr.Exists("operator:lastseen:"+u.ID))
	})

	t.Run("bearer", func(t *testing.T) {
		w := get(whoami(a, true), func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+sid)
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, u.ID, w.Body.String())
	})

	t.Run("unknown session", func(t *testing.T) {
		w := get(whoami(a, false), func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: AppSessionCookie, Value: "stale"})
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())

		w = get(whoami(a, true), func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: AppSessionCookie, Value: "stale"})
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("session of a removed operator", func(t *testing.T) {
		_, err := a.Sessions().Create(ctx, "orphan", "00000000-0000-0000-0000-000000000000")
		require.NoError(t, err)
		w := get(whoami(a, false), func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: AppSessionCookie, Value: "orphan"})
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, mr.Exists("app:sess:orphan"))
	})
}

func TestTouchLastSeenThrottles(t *testing.T) {
	a, mr := newTestApp(t)
	ctx := context.Background()

	sid, err := BootstrapOperator(ctx, "joao", a.Repo, a.Sessions(), quietLogger())
	require.NoError(t, err)
	u, err := a.Repo.FindUserByUsername(ctx, "joao")
	require.NoError(t, err)
	require.Nil(t, u.LastSeenAt)

	withCookie := func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AppSessionCookie, Value: sid}) }
	get(whoami(a, true), withCookie)

	u, err = a.Repo.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, u.LastSeenAt)

	ttl := mr.TTL("operator:lastseen:" + u.ID)
	assert.Equal(t, time.Minute, ttl)
}

func TestBootstrapOperatorPromotesFirstAdmin(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	sid, err := BootstrapOperator(ctx, "first", a.Repo, a.Sessions(), quietLogger())
	require.NoError(t, err)
	sess, err := a.Sessions().Get(ctx, sid)
	require.NoError(t, err)

	first, err := a.Repo.FindUserByUsername(ctx, "first")
	require.NoError(t, err)
	assert.True(t, first.IsAdmin)
	assert.Equal(t, first.ID, sess.OperatorID)

	_, err = BootstrapOperator(ctx, "second", a.Repo, a.Sessions(), quietLogger())
	require.NoError(t, err)
	second, err := a.Repo.FindUserByUsername(ctx, "second")
	require.NoError(t, err)
	assert.False(t, second.IsAdmin)

	_, err = BootstrapOperator(ctx, "", a.Repo, a.Sessions(), quietLogger())
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	for _, k := range []string{
		"DB_DRIVER", "DB_NAME", "DATABASE_URL", "SQLITE_PATH", "PORT", "REQUIRE_OPERATOR",
		"OP_TIMEOUT_MS", "PLACEHOLDER_ATTEMPTS", "SESSION_TTL_SECONDS", "BOOTSTRAP_OPERATOR",
	} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	assert.Equal(t, db.DriverPostgres, cfg.DB.Driver)
	assert.Contains(t, cfg.DB.DSN, "dbname=safetools")
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, tracker.DefaultTimeout, cfg.OpTimeout)
	assert.Equal(t, tracker.DefaultPlaceholderAttempts, cfg.PlaceholderAttempts)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.RequireOperator)

	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("DATABASE_URL", "postgres://u@h/db")
	t.Setenv("REQUIRE_OPERATOR", "true")
	t.Setenv("OP_TIMEOUT_MS", "1500")
	t.Setenv("PLACEHOLDER_ATTEMPTS", "3")
	t.Setenv("SESSION_TTL_SECONDS", "60")
	t.Setenv("BOOTSTRAP_OPERATOR", " Admin ")

	cfg = LoadConfig()
	assert.Equal(t, db.DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "/tmp/x.db", cfg.DB.SQLitePath)
	assert.Equal(t, "postgres://u@h/db", cfg.DB.DSN)
	assert.True(t, cfg.RequireOperator)
	assert.Equal(t, 1500*time.Millisecond, cfg.OpTimeout)
	assert.Equal(t, 3, cfg.PlaceholderAttempts)
	assert.Equal(t, time.Minute, cfg.SessionTTL)
	assert.Equal(t, "admin", cfg.BootstrapOperator)
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	useCORS(r, "http://a.test, http://b.test")
	r.GET("/x", func(c *Ctx) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://b.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://b.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
