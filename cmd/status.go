package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toolgate/toolgate/internal/config"
	"github.com/toolgate/toolgate/internal/container"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and wiring status",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.ConfigPath()
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		if _, err := os.Stat(path); err == nil {
			fmt.Printf("Config:    %s\n", path)
		} else {
			fmt.Printf("Config:    %s (missing, using defaults)\n", path)
		}
		fmt.Printf("Workspace: %s\n", cfg.WorkspacePath())
		fmt.Printf("Audit log: %s", cfg.AuditPath())
		if cfg.Audit.Rotate != "" {
			fmt.Printf(" (rotate %q)", cfg.Audit.Rotate)
		}
		fmt.Println()

		fmt.Printf("Servers:   %d configured\n", len(cfg.Servers))
		for name, s := range cfg.Servers {
			fmt.Printf("  %-12s %s\n", name, s.URL)
		}

		c, err := container.New(cfg)
		if err != nil {
			return fmt.Errorf("wiring failed: %w", err)
		}
		fmt.Printf("Wrappers:  %d registered\n", len(c.Engine().Registry().All()))
		fmt.Printf("Alerts:    slack=%v telegram=%v\n", cfg.Slack.Enabled, cfg.Telegram.Enabled)
		return nil
	},
}
