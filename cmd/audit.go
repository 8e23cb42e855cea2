package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toolgate/toolgate/internal/audit"
	"github.com/toolgate/toolgate/internal/config"
)

var auditTail int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent confirmed-mutation audit entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		log, err := audit.NewLog(cfg.AuditPath())
		if err != nil {
			return err
		}

		entries, err := log.Tail(auditTail)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No audit entries.")
			return nil
		}
		for _, e := range entries {
			line, err := json.Marshal(e)
			if err != nil {
				return err
			}
			fmt.Println(string(line))
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().IntVar(&auditTail, "tail", 20, "number of entries to show")
}
