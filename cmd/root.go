package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zjrosen/mvc/internal/config"
	"github.com/zjrosen/mvc/internal/log"
)

var (
	version  = "dev"
	cfgFile  string
	debug    bool
	cfg      config.Config
	cfgErr   error
	cfgPath  string
	closeLog = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "mvc",
	Short: "A multi-core MVC notification framework",
	Long: `mvc hosts independent cores, each with its own model, view and controller,
wired together by named notifications.

The run and inspect commands drive a small demo application to exercise
dispatch, command routing, tracing and metrics end to end.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgErr != nil {
			return cfgErr
		}
		return setupLogging(cfg.Log)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .mvc/config.yaml, then ~/.config/mvc/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false,
		"enable debug logging (also MVC_LOG_ENABLED=true)")
	rootCmd.PersistentFlags().String("log-level", "",
		"minimum log level: debug, info, warn, error")
}

// initConfig resolves the config file and loads it over the defaults and
// environment. Errors are deferred to PersistentPreRunE so that --help and
// --version still work with a broken config.
func initConfig() {
	v := config.NewViper()
	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	cfgPath = resolveConfigPath()
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			cfgErr = fmt.Errorf("reading config %s: %w", cfgPath, err)
			return
		}
	}

	cfg, cfgErr = config.Unmarshal(v)
	if debug {
		cfg.Log.Enabled = true
		if !rootCmd.PersistentFlags().Changed("log-level") {
			cfg.Log.Level = "debug"
		}
	}
}

// resolveConfigPath returns the explicit --config path, or the first
// existing file of .mvc/config.yaml and ~/.config/mvc/config.yaml, or "".
func resolveConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if _, err := os.Stat(config.DefaultLocalPath); err == nil {
		return config.DefaultLocalPath
	}
	if p := userConfigPath(); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mvc", "config.yaml")
}

// setupLogging installs the global logger described by lc.
func setupLogging(lc config.LogConfig) error {
	if !lc.Enabled {
		return nil
	}
	level, err := log.ParseLevel(lc.Level)
	if err != nil {
		return err
	}

	if lc.Path == "-" {
		closeLog = log.InitWriter(os.Stderr, level)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(lc.Path), 0o750); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	cleanup, err := log.Init(lc.Path)
	if err != nil {
		return err
	}
	log.SetMinLevel(level)
	closeLog = cleanup
	return nil
}

// Execute runs the root command
func Execute() error {
	defer func() { closeLog() }()

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
