package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/diewo77/go-users/internal/config"
	"github.com/diewo77/go-users/internal/db"
)

var (
	cfg       *config.Config
	seedUsers int
)

var rootCmd = &cobra.Command{
	Use:           "users",
	Short:         "User management API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		setupLogger(cfg.App)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := db.Open(cfg.Database, cfg.App.Dev)
		if err != nil {
			return err
		}
		if err := db.Migrate(conn); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		slog.Info("migrations completed")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed profiles, the admin account and member accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := db.Open(cfg.Database, cfg.App.Dev)
		if err != nil {
			return err
		}
		if err := db.Migrate(conn); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		if err := db.Seed(conn, db.SeedOptions{Users: seedUsers}); err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedUsers, "users", 10, "number of member accounts to create")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func setupLogger(app config.AppConfig) {
	opts := &slog.HandlerOptions{Level: app.Level()}
	var h slog.Handler
	if app.Dev {
		h = slog.NewTextHandler(os.Stderr, opts)
	} else {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

func runServe(cmd *cobra.Command, args []string) error {
	conn, err := db.Open(cfg.Database, cfg.App.Dev)
	if err != nil {
		return err
	}
	if err := prepare(conn, cfg.App.Migrations); err != nil {
		return err
	}

	app, err := NewApp(conn, cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port, "dev", cfg.App.Dev, "authz", cfg.App.AuthzEngine)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("error during shutdown", "err", err)
	}
	slog.Info("server stopped gracefully")
	return nil
}

// prepare runs migrations when enabled and seeds permissions and profiles.
func prepare(conn *gorm.DB, migrate bool) error {
	if migrate {
		if err := db.Migrate(conn); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		slog.Info("migrations completed")
	}
	return db.SeedProfiles(conn)
}
