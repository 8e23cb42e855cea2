package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/toolgate/toolgate/internal/config"
	"github.com/toolgate/toolgate/internal/container"
	"github.com/toolgate/toolgate/internal/toolerr"
)

var (
	callInput   string
	callConfirm bool
)

var callCmd = &cobra.Command{
	Use:   "call <server.operation>",
	Short: "Invoke one wrapper with a JSON input object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		c, err := container.New(cfg)
		if err != nil {
			return err
		}
		defer c.Transport().Close()

		input := map[string]any{}
		if callInput != "" {
			if err := json.Unmarshal([]byte(callInput), &input); err != nil {
				return fmt.Errorf("parse --json: %w", err)
			}
		}
		if callConfirm {
			input["confirmed"] = true
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		result, err := c.Engine().Execute(ctx, args[0], input)
		if err != nil {
			if kind := toolerr.KindOf(err); kind != "" {
				fmt.Fprintf(os.Stderr, "[%s] %v\n", kind, err)
				os.Exit(1)
			}
			return err
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		if result.Preview != nil {
			fmt.Fprintln(os.Stderr, "Preview only. Re-run with --confirm to execute.")
		}
		return nil
	},
}

func init() {
	callCmd.Flags().StringVar(&callInput, "json", "", "input object as JSON")
	callCmd.Flags().BoolVar(&callConfirm, "confirm", false, "set confirmed=true on a mutating call")
}
