package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bcgov/restoration-tracker/pkg/config"
	"github.com/bcgov/restoration-tracker/pkg/logging"
)

// configurationWatchCmd represents the configuration watch command
var configurationWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Validate the config file each time it changes",
	Long: `Watch the config file and report whether each new version loads and
validates. Useful while editing restoration.yml next to a running server.

Example:
  restorationctl configuration watch`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flush, err := logging.Setup("info")
		if err != nil {
			return err
		}
		defer flush()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		zap.L().Info("watching configuration", zap.String("path", config.Get().ConfigFilePath()))
		watchConfig(ctx)
		return nil
	},
}

func init() {
	configurationCmd.AddCommand(configurationWatchCmd)
}

// watchConfig logs every reload of the config file until ctx is done.
func watchConfig(ctx context.Context) {
	err := config.Watch(ctx, func(cfg *config.Config, err error) {
		if err == nil {
			err = cfg.Validate()
		}
		if err != nil {
			zap.L().Warn("configuration reload failed", zap.Error(err))
			return
		}
		zap.L().Info("configuration reloaded", zap.String("path", cfg.ConfigFilePath()))
	})
	if err != nil {
		zap.L().Error("configuration watch stopped", zap.Error(err))
	}
}
