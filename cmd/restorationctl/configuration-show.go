package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bcgov/restoration-tracker/pkg/config"
)

// configurationShowCmd represents the configuration show command
var configurationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show configuration attributes and their sources",
	Long: `Show configuration attributes and their sources.

The values reflect the current config file and environment, which may
differ from those of a server that was started earlier. Secrets are masked.

Config file location: /etc/restoration-tracker/restoration.yml (or RESTORATION_CONFIG_PATH)

Example:
  restorationctl configuration show
  restorationctl configuration show --output json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		out, err := showConfiguration(output)
		if err != nil {
			return fmt.Errorf("failed to show configuration: %w", err)
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	configurationCmd.AddCommand(configurationShowCmd)
	configurationShowCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func showConfiguration(output string) (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}

	switch output {
	case "json":
		out, err := cfg.FormatJSON()
		if err != nil {
			return "", err
		}
		return out + "\n", nil
	case "text":
		return cfg.FormatText(), nil
	default:
		return "", fmt.Errorf("unknown output format %q", output)
	}
}
