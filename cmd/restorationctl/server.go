package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bcgov/restoration-tracker/pkg/audit"
	"github.com/bcgov/restoration-tracker/pkg/config"
	"github.com/bcgov/restoration-tracker/pkg/db"
	"github.com/bcgov/restoration-tracker/pkg/logging"
	"github.com/bcgov/restoration-tracker/pkg/server"
	"github.com/bcgov/restoration-tracker/pkg/server/endpoints"
)

const shutdownTimeout = 30 * time.Second

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the restoration tracker API server",
	Long: `Run the restoration tracker API server.

The server requires DATABASE_URL, the Keycloak issuer and JWKS URI, and a
signed URL secret. Run 'restorationctl configuration show' to see the
effective settings.

By default, database migrations are run on startup. Use --no-migrate to skip.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetString("port")
		}
		if cmd.Flags().Changed("bind-address") {
			cfg.BindAddress, _ = cmd.Flags().GetString("bind-address")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		flush, err := logging.Setup(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer flush()

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			zap.L().Info("running database migrations")
			migrationsDir, _ := cmd.Flags().GetString("migrations-dir")
			version, err := db.Migrator{URL: cfg.DatabaseURL, Dir: migrationsDir}.Up()
			if err != nil {
				return err
			}
			zap.L().Info("database schema is current", zap.Uint("version", version))
		}

		conn, err := db.Connect(db.Config{URL: cfg.DatabaseURL, LogLevel: cfg.LogLevel})
		if err != nil {
			return err
		}

		auditStore, err := audit.NewStore(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		audit.SetStore(auditStore)
		defer func() {
			audit.SetStore(nil)
			_ = auditStore.Close()
		}()

		s, err := server.NewServer(cfg, conn)
		if err != nil {
			return err
		}
		if err := endpoints.RegisterAll(s); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		watch, _ := cmd.Flags().GetBool("watch-config")
		if watch {
			go watchConfig(ctx)
		}

		errc := make(chan error, 1)
		go func() {
			zap.L().Info("running server", zap.String("addr", cfg.Addr()))
			errc <- s.Start()
		}()

		select {
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		zap.L().Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", "", "server listen port (overrides PORT)")
	serverCmd.Flags().StringP("bind-address", "b", "", "server bind address (overrides BIND_ADDRESS)")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
	serverCmd.Flags().String("migrations-dir", "", "read migrations from this directory instead of the embedded copies")
	serverCmd.Flags().Bool("watch-config", false, "log changes to the configuration file while running")
}
