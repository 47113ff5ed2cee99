package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// codesCmd represents the codes command
var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "Manage code tables",
	Long:  `Manage the code tables served by /api/codes.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'codes' requires a subcommand (load)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(codesCmd)
}
