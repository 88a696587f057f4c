package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/devprofile/internal/config"
	"github.com/sakif/devprofile/internal/server"
)

var serveCmd = cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	flags := serveCmd.Flags()
	flags.Int("port", 0, "Listen port (overrides config)")
	_ = v.BindPFlag(config.ConfPort, flags.Lookup("port"))

	rootCmd.AddCommand(&serveCmd)
}

// runServe blocks until SIGINT or SIGTERM.
func runServe(_ *cobra.Command, _ []string) error {
	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start()
}
