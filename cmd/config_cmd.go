package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/mvc/internal/config"
	"github.com/zjrosen/mvc/internal/presentation"
)

var (
	configInitForce bool
	configFormat    string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create, edit and show the configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default config file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultLocalPath
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil && !configInitForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one value in the config file, keeping comments",
	Long: `Set one value in the config file, keeping comments and formatting.

The file edited is --config, else the file that was loaded, else .mvc/config.yaml.

Examples:
  mvc config set log.level debug
  mvc config set metrics.enabled true`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgPath
		if path == "" {
			path = config.DefaultLocalPath
		}
		if err := config.SetValue(path, args[0], args[1]); err != nil {
			return err
		}
		if _, err := config.Load(path); err != nil {
			return fmt.Errorf("%s was written but is now invalid: %w", path, err)
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		formatter, err := presentation.NewFormatter(cmd.OutOrStdout(), configFormat)
		if err != nil {
			return err
		}
		return formatter.FormatValue(cfg)
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing file")
	configShowCmd.Flags().StringVarP(&configFormat, "format", "f", presentation.FormatYAML, "output format: json or yaml")

	configCmd.AddCommand(configInitCmd, configSetCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
