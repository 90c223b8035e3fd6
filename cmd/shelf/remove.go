package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/shelf/internal/library"
	"github.com/matsen/shelf/internal/reference"
)

var (
	removeFilters     queryFlags
	removeDeleteFiles bool
	removeYes         bool
	removeAll         bool
)

func init() {
	removeFilters.register(removeCmd)
	removeCmd.Flags().BoolVar(&removeDeleteFiles, "delete-files", false, "Also delete every file of the removed entries")
	removeCmd.Flags().BoolVar(&removeYes, "yes", false, "Do not ask for confirmation")
	removeCmd.Flags().BoolVar(&removeAll, "all", false, "Allow removal without any pattern")
	rootCmd.AddCommand(removeCmd)
}

var removeCmd = &cobra.Command{
	Use:   "remove [pattern]",
	Short: "Remove library entries matching regular expressions",
	Long: `Remove the entries matching the given patterns from the library.

The matching entries are shown and confirmation is requested on a terminal.
Without a terminal, --yes is required.

Examples:
  shelf remove --title 'On Cats' --human
  shelf remove --author Smith --delete-files --yes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRemove,
}

// RemoveResponse is the JSON response for remove.
type RemoveResponse struct {
	Removed      int  `json:"removed"`
	Confirmed    bool `json:"confirmed"`
	FilesDeleted bool `json:"files_deleted"`
}

func runRemove(cmd *cobra.Command, args []string) error {
	params := removeFilters.params(args)
	if params.IsEmpty() && !removeAll {
		exitWithError(ExitError, "no pattern given; pass --all to remove every entry")
	}

	cfg := mustLoadConfig()

	confirmed := false
	confirm := func(entries []reference.Entry) bool {
		confirmed = confirmRemoval(entries, os.Stdin, os.Stderr)
		return confirmed
	}

	var removed int
	err := library.WithLibrary(cfg.LibraryLocation, func(lib *library.Library) error {
		var err error
		removed, err = lib.Remove(params, removeDeleteFiles, confirm)
		return err
	})
	if err != nil {
		exitWithError(queryExitCode(err), "%v", err)
	}

	if humanOutput {
		outputHuman("Removed %s\n", pluralize(removed, "entry", "entries"))
	} else {
		outputJSON(RemoveResponse{Removed: removed, Confirmed: confirmed, FilesDeleted: removeDeleteFiles && removed > 0})
	}
	return nil
}

// confirmRemoval shows the entries and asks for confirmation. --yes
// confirms without asking; without a terminal the removal is declined.
func confirmRemoval(entries []reference.Entry, in *os.File, out io.Writer) bool {
	if removeYes {
		return true
	}
	if !isTerminal(in) {
		fmt.Fprintln(out, "not a terminal; pass --yes to remove without confirmation")
		return false
	}

	fmt.Fprintln(out, entryTable(entries))
	return promptYes(in, out, fmt.Sprintf("Remove %s?", pluralize(len(entries), "entry", "entries")))
}

// promptYes asks a yes/no question; anything but y or yes is no.
func promptYes(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
