package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/shelf/internal/storage"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify library integrity",
	Long: `Verify library integrity, reporting entries whose files are missing and
entries that share the same document content.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

// CheckResult is the response for the check command.
type CheckResult struct {
	Status     string                   `json:"status"`
	Entries    int                      `json:"entries"`
	Missing    []storage.MissingFile    `json:"missing"`
	Duplicates []storage.DuplicateGroup `json:"duplicates"`
	Tags       []storage.TagCount       `json:"tags"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	lib := mustOpenLibrary(cfg)

	db, err := storage.Rebuild(cfg.LibraryLocation, lib.Entries())
	if err != nil {
		exitWithError(ExitError, "building index: %v", err)
	}
	defer db.Close()

	result := CheckResult{
		Status:     "ok",
		Entries:    lib.Len(),
		Missing:    []storage.MissingFile{},
		Duplicates: []storage.DuplicateGroup{},
		Tags:       []storage.TagCount{},
	}
	if missing, err := db.MissingFiles(); err != nil {
		exitWithError(ExitError, "%v", err)
	} else if missing != nil {
		result.Missing = missing
	}
	if dups, err := db.Duplicates(); err != nil {
		exitWithError(ExitError, "%v", err)
	} else if dups != nil {
		result.Duplicates = dups
	}
	if tags, err := db.TagCounts(); err != nil {
		exitWithError(ExitError, "%v", err)
	} else if tags != nil {
		result.Tags = tags
	}
	if len(result.Missing) > 0 || len(result.Duplicates) > 0 {
		result.Status = "issues"
	}

	if humanOutput {
		printCheckHuman(result)
	} else {
		outputJSON(result)
	}

	if result.Status != "ok" {
		os.Exit(ExitDataError)
	}
	return nil
}

func printCheckHuman(r CheckResult) {
	fmt.Printf("Checked %s\n", pluralize(r.Entries, "entry", "entries"))
	for _, m := range r.Missing {
		fmt.Printf("  missing file  %-20s %s\n", m.Key, m.Path)
	}
	for _, d := range r.Duplicates {
		fmt.Printf("  same content  %s (%s)\n", joinKeys(d.Keys), d.Digest[:12])
	}
	if len(r.Tags) > 0 {
		rows := make([][]string, len(r.Tags))
		for i, t := range r.Tags {
			rows[i] = []string{t.Tag, fmt.Sprint(t.Count)}
		}
		fmt.Println(renderTable([]string{"Tag", "Entries"}, rows, []columnAlignment{alignLeft, alignRight}))
	}
	if r.Status == "ok" {
		fmt.Println("No issues found")
	}
}
