package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/devprofile/internal/apperror"
	"github.com/sakif/devprofile/internal/server"
	"github.com/sakif/devprofile/internal/service"
)

var lookupCmd = cobra.Command{
	Use:   "lookup <username or profile URL>",
	Short: "Print one profile summary as JSON",
	Long: "Looks up a GitHub user the same way the API does and prints the summary to stdout.\n" +
		"Progress goes to stderr unless --quiet is set.",
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	flags := lookupCmd.Flags()
	flags.BoolP("quiet", "q", false, "Do not report progress")

	rootCmd.AddCommand(&lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return err
	}

	profiles, err := server.NewProfileFetcher(cfg, nil, logger)
	if err != nil {
		return err
	}

	var opts []service.FetchOption
	if !quiet {
		opts = append(opts, service.WithProgress(func(p service.Phase) {
			_, _ = fmt.Fprintf(os.Stderr, "%s...\n", p)
		}))
	}

	summary, err := profiles.FetchProfile(cmd.Context(), args[0], opts...)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return errors.New(appErr.Message)
		}
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
