package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listFilters queryFlags

func init() {
	listFilters.register(listCmd)
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list [pattern]",
	Short: "List library entries matching regular expressions",
	Long: `List library entries. Every supplied pattern must match; the positional
pattern matches any author, the title, the year or the entry type.

Examples:
  shelf list
  shelf list --author Smith --year '^20'
  shelf list 'phylogen' --human`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	lib := mustOpenLibrary(cfg)

	entries, err := lib.Query(listFilters.params(args))
	if err != nil {
		exitWithError(queryExitCode(err), "%v", err)
	}

	if humanOutput {
		if len(entries) == 0 {
			fmt.Println("No matching entries")
			return nil
		}
		fmt.Println(entryTable(entries))
		fmt.Printf("%s of %d\n", pluralize(len(entries), "entry", "entries"), lib.Len())
	} else {
		outputJSON(entries)
	}
	return nil
}
