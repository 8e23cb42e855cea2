// Package cmd implements the toolgate CLI using cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var configPath string

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "toolgate",
	Short: "Validated, audited gateway to tool-provider servers",
	Long: "toolgate mediates agent calls to external tool servers: schema " +
		"validation, security gating, response compression, and " +
		"confirmation-gated mutations with an append-only audit log.",
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.toolgate/config.json)")

	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(statusCmd)
}
