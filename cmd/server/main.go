// Package main is the entry point for the devprofile server and CLI.
//
// MAIN PACKAGE IN GO:
// The main package should be kept minimal. Its job is to:
// 1. Read configuration (flags, config file, .env, environment)
// 2. Create dependencies (logger, the profile pipeline)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server,
// internal/service, etc.).
//
// COMMANDS:
//
//	devprofile            same as "serve"
//	devprofile serve      run the HTTP API
//	devprofile lookup X   print one profile summary as JSON and exit
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/devprofile/internal/config"
)

var rootCmd = cobra.Command{
	Use:           "devprofile",
	Short:         "GitHub profile summaries with inferred skills",
	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
		var err error
		cfg, err = config.Load(v, configFile)
		if err != nil {
			return err
		}
		logger = cfg.NewLogger(os.Stderr)
		return nil
	},
	RunE: runServe,
}

var (
	v          = config.New()
	envFile    string
	configFile string

	cfg    *config.Config
	logger *slog.Logger
)

func init() {
	persistentFlags := rootCmd.PersistentFlags()
	persistentFlags.StringVar(&envFile, "env-file", ".env", "Load environment variables from this file if it exists")
	persistentFlags.StringVar(&configFile, "config", "", "Config file (YAML, TOML or JSON)")
	persistentFlags.String("log-level", "", "Log level: debug, info, warn or error")
	_ = v.BindPFlag(config.ConfLogLevel, persistentFlags.Lookup("log-level"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
