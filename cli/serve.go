package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DeiroLy/Safe-Tools/app"
	"github.com/DeiroLy/Safe-Tools/routes"

	"github.com/spf13/cobra"
)

// NewServeCmd creates the "serve" subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server for consoles and scanner relays",
		RunE:  runServe,
	}
	cmd.Flags().String("host", "0.0.0.0", "Listen host")
	cmd.Flags().String("port", "", "Listen port (default: $PORT or 3001)")
	cmd.Flags().Duration("shutdown-timeout", 15*time.Second, "Graceful shutdown timeout")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := app.LoadConfig()
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		cfg.Port = p
	}
	host, _ := cmd.Flags().GetString("host")
	shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")
	logger := slog.Default()

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	routes.RegisterRoutes(a.Router, a)

	if cfg.BootstrapOperator != "" {
		sid, err := app.BootstrapOperator(cmd.Context(), cfg.BootstrapOperator, a.Repo, a.Sessions(), logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Operator session for %s: %s\n", cfg.BootstrapOperator, sid)
	}

	addr := net.JoinHostPort(host, cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr, "driver", a.DB.Dialector.Name())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}
