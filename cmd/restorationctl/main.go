package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "restorationctl",
	Short: "Habitat restoration tracker API server and tooling",
	Long: `Run and administer the habitat restoration tracker API.

Settings are read from restoration.yml under RESTORATION_CONFIG_PATH
(default /etc/restoration-tracker) and from environment variables, which
take precedence.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
