package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/shelf/internal/query"
	"github.com/matsen/shelf/internal/storage"
)

const DefaultSearchLimit = 50

var searchLimit int

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results to return")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <words>...",
	Short: "Full-text search over keys, titles and authors",
	Long: `Search the library by words rather than regular expressions. Results are
ranked by relevance.

Examples:
  shelf search phylogenetic inference
  shelf search Nguyen --human`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	lib := mustOpenLibrary(cfg)
	entries := lib.Entries()

	db, err := storage.Rebuild(cfg.LibraryLocation, entries)
	if err != nil {
		exitWithError(ExitError, "building index: %v", err)
	}
	defer db.Close()

	indices, err := db.Search(strings.Join(args, " "), searchLimit)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	results := query.Select(entries, indices)

	if humanOutput {
		if len(results) == 0 {
			fmt.Println("No matching entries")
			return nil
		}
		fmt.Println(entryTable(results))
	} else {
		outputJSON(results)
	}
	return nil
}
