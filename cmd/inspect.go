package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/mvc/internal/presentation"
)

var (
	inspectFormat  string
	inspectVerbose bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [name...]",
	Short: "Boot the demo and print the registry inventory of every core",
	Long: `Boot the demo application, greet each name, and print what every core
has registered: proxies, mediators and their interests, commands, and the
observer count per notification.

Examples:
  mvc inspect
  mvc inspect ada --format yaml
  mvc inspect ada | jq '.totals'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		formatter, err := presentation.NewFormatter(cmd.OutOrStdout(), inspectFormat)
		if err != nil {
			return err
		}

		var demoOut io.Writer = io.Discard
		if inspectVerbose {
			demoOut = cmd.ErrOrStderr()
		}

		rt, err := newRuntime(cfg, demoOut)
		if err != nil {
			return err
		}
		defer func() { _ = rt.stop(context.Background()) }()

		if err := rt.start(cmd.Context(), cfg.Demo.Keys, args, nil); err != nil {
			return err
		}

		return formatter.FormatReport(presentation.FromInventories(rt.registry.Snapshot()))
	},
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectFormat, "format", "f", presentation.FormatJSON, "output format: json or yaml")
	inspectCmd.Flags().BoolVarP(&inspectVerbose, "verbose", "v", false, "print demo output to stderr")
	rootCmd.AddCommand(inspectCmd)
}
