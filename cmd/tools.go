package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toolgate/toolgate/internal/config"
	"github.com/toolgate/toolgate/internal/container"
)

var toolsVerbose bool

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the registered wrappers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		c, err := container.New(cfg)
		if err != nil {
			return err
		}

		for _, t := range c.Engine().Tools() {
			fmt.Printf("%s  %s\n", t.Name(), t.Description())
			if toolsVerbose {
				fmt.Printf("  schema: %s\n", t.InputSchema())
			}
		}
		return nil
	},
}

func init() {
	toolsCmd.Flags().BoolVarP(&toolsVerbose, "verbose", "v", false, "include input schemas")
}
