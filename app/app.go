package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DeiroLy/Safe-Tools/db"
	"github.com/DeiroLy/Safe-Tools/session"
	"github.com/DeiroLy/Safe-Tools/tracker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Short aliases for handlers.
type Ctx = gin.Context
type H = gin.H

// App bundles the process-wide dependencies.
type App struct {
	Router  *gin.Engine
	DB      *gorm.DB
	RDB     *redis.Client
	Repo    *db.Repo
	Tracker *tracker.Service
	Config  Config
	Logger  *slog.Logger

	sessions *session.OperatorSessionStore
}

// Config is read from the environment.
type Config struct {
	DB                  db.Options
	RedisAddr           string
	RedisPwd            string
	WebOrigin           string
	Port                string
	SessionTTL          time.Duration
	RequireOperator     bool
	OpTimeout           time.Duration
	PlaceholderAttempts int
	BootstrapOperator   string
	LastSeenThrottle    time.Duration
}

func (a *App) Sessions() *session.OperatorSessionStore { return a.sessions }

// New connects the store and redis and builds the tracker service. The router
// is created bare; routes.RegisterRoutes mounts the handlers.
func New(cfg Config, logger *slog.Logger) (*App, error) {
	// --- Store ---
	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		return nil, err
	}

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		if sqlDB, dbErr := dbConn.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("redis: %w", err)
	}
	return Assemble(cfg, dbConn, rdb, logger)
}

// Assemble builds an App over already opened connections.
func Assemble(cfg Config, dbConn *gorm.DB, rdb *redis.Client, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	repo := db.NewRepo(dbConn)
	svc, err := tracker.New(repo,
		tracker.WithLogger(logger.With("component", "tracker")),
		tracker.WithTimeout(cfg.OpTimeout),
		tracker.WithPlaceholderAttempts(cfg.PlaceholderAttempts),
	)
	if err != nil {
		return nil, fmt.Errorf("tracker: %w", err)
	}

	// --- Gin ---
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)
	return &App{
		Router: r, DB: dbConn, RDB: rdb, Repo: repo, Tracker: svc, Config: cfg, Logger: logger,
		sessions: session.NewOperatorSessionStore(rdb, cfg.SessionTTL),
	}, nil
}

func (a *App) Close() {
	_ = a.RDB.Close()
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func LoadConfig() Config {
	get := func(k, def string) string {
		v := strings.TrimSpace(os.Getenv(k))
		if v == "" {
			return def
		}
		return v
	}
	seconds := func(k string, def time.Duration) time.Duration {
		if n, err := strconv.Atoi(get(k, "")); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
		return def
	}

	dsn := get("DATABASE_URL", "")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			get("DB_HOST", "127.0.0.1"),
			get("DB_USER", "postgres"),
			os.Getenv("DB_PASSWORD"),
			get("DB_NAME", "safetools"),
			get("DB_PORT", "5432"),
			get("DB_SSLMODE", "disable"),
		)
	}

	opTimeout := tracker.DefaultTimeout
	if n, err := strconv.Atoi(get("OP_TIMEOUT_MS", "")); err == nil && n > 0 {
		opTimeout = time.Duration(n) * time.Millisecond
	}
	attempts, err := strconv.Atoi(get("PLACEHOLDER_ATTEMPTS", ""))
	if err != nil || attempts <= 0 {
		attempts = tracker.DefaultPlaceholderAttempts
	}
	requireOp, _ := strconv.ParseBool(get("REQUIRE_OPERATOR", "false"))

	return Config{
		DB: db.Options{
			Driver:     get("DB_DRIVER", db.DriverPostgres),
			DSN:        dsn,
			SQLitePath: get("SQLITE_PATH", "ferramentas.db"),
		},
		RedisAddr:           get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:            os.Getenv("REDIS_PASSWORD"),
		WebOrigin:           get("WEB_ORIGIN", "http://localhost:5173"),
		Port:                get("PORT", "3001"),
		SessionTTL:          seconds("SESSION_TTL_SECONDS", 24*time.Hour),
		RequireOperator:     requireOp,
		OpTimeout:           opTimeout,
		PlaceholderAttempts: attempts,
		BootstrapOperator:   strings.ToLower(get("BOOTSTRAP_OPERATOR", "")),
		LastSeenThrottle:    seconds("LAST_SEEN_THROTTLE_SECONDS", 5*time.Minute),
	}
}
