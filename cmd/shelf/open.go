package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/shelf/internal/pdf"
)

var (
	openFilters queryFlags
	openReader  string
)

func init() {
	openFilters.register(openCmd)
	openCmd.Flags().StringVar(&openReader, "reader", "system", "Viewer to use (system, skim, preview, or a command name on Linux)")
	rootCmd.AddCommand(openCmd)
}

var openCmd = &cobra.Command{
	Use:   "open [pattern]",
	Short: "Open the document of a single matching entry",
	Long: `Open the document of the entry matching the given patterns. The patterns
must select exactly one entry.

Examples:
  shelf open --title 'On Cats'
  shelf open Nguyen --reader zathura`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOpen,
}

func runOpen(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	lib := mustOpenLibrary(cfg)

	entries, err := lib.Query(openFilters.params(args))
	if err != nil {
		exitWithError(queryExitCode(err), "%v", err)
	}
	switch len(entries) {
	case 0:
		exitWithError(ExitNotFound, "no matching entry")
	case 1:
	default:
		keys := make([]string, len(entries))
		for i, e := range entries {
			keys[i] = e.Record.Key
		}
		exitWithError(ExitError, "%d entries match: %s", len(entries), joinKeys(keys))
	}

	path := entries[0].PrimaryPath()
	if err := pdf.NewOpener(openReader).Open(path); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		outputHuman("Opened %s\n", path)
	} else {
		outputJSON(StatusResponse{Status: "opened", Path: path})
	}
	return nil
}
