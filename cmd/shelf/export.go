package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/shelf/internal/bibtex"
	"github.com/matsen/shelf/internal/clipboard"
	"github.com/matsen/shelf/internal/reference"
)

var (
	exportFilters   queryFlags
	exportOutput    string
	exportClipboard bool
)

func init() {
	exportFilters.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to a file instead of stdout")
	exportCmd.Flags().BoolVar(&exportClipboard, "clipboard", false, "Copy to the system clipboard instead of stdout")
	exportCmd.MarkFlagsMutuallyExclusive("output", "clipboard")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [pattern]",
	Short: "Export matching entries as BibTeX",
	Long: `Export the records of matching library entries as BibTeX.

Examples:
  shelf export > library.bib
  shelf export --author Smith -o smith.bib
  shelf export --title 'On Cats' --clipboard`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	lib := mustOpenLibrary(cfg)

	entries, err := lib.Query(exportFilters.params(args))
	if err != nil {
		exitWithError(queryExitCode(err), "%v", err)
	}

	records := make([]reference.Record, len(entries))
	for i, e := range entries {
		records[i] = e.Record
	}
	out := bibtex.ToBibTeXList(records)

	if exportClipboard {
		if !clipboard.IsAvailable() {
			exitWithError(ExitError, "no clipboard command found (install wl-copy, xclip or xsel)")
		}
		if err := clipboard.Copy(out); err != nil {
			exitWithError(ExitError, "copying to clipboard: %v", err)
		}
		if humanOutput {
			outputHuman("Copied %s to the clipboard\n", pluralize(len(records), "entry", "entries"))
		} else {
			outputJSON(StatusResponse{Status: "copied"})
		}
		return nil
	}
	if exportOutput == "" {
		fmt.Print(out)
		return nil
	}
	if err := os.WriteFile(exportOutput, []byte(out), 0644); err != nil {
		exitWithError(ExitError, "writing %s: %v", exportOutput, err)
	}
	if humanOutput {
		outputHuman("Exported %s to %s\n", pluralize(len(records), "entry", "entries"), exportOutput)
	} else {
		outputJSON(StatusResponse{Status: "exported", Path: exportOutput})
	}
	return nil
}
