package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/matsen/shelf/internal/config"
	"github.com/matsen/shelf/internal/crossref"
	"github.com/matsen/shelf/internal/digest"
	"github.com/matsen/shelf/internal/importer"
	"github.com/matsen/shelf/internal/library"
	"github.com/matsen/shelf/internal/pdf"
	"github.com/matsen/shelf/internal/reference"
	"github.com/matsen/shelf/internal/storage"
)

var (
	importKey  string
	importMove bool
	importCopy bool
	importTags []string
	importDOI  string
)

func init() {
	importCmd.Flags().StringVarP(&importKey, "entry", "e", "", "Citation key of the record to import")
	importCmd.Flags().BoolVarP(&importMove, "move", "m", false, "Move the document even if move_files is false")
	importCmd.Flags().BoolVarP(&importCopy, "copy", "c", false, "Copy the document even if move_files is true")
	importCmd.Flags().StringArrayVarP(&importTags, "tag", "t", nil, "Tag the document (repeatable)")
	importCmd.Flags().StringVar(&importDOI, "doi", "", `Fetch the record from Crossref by DOI ("auto" reads it from the PDF)`)
	importCmd.MarkFlagsMutuallyExclusive("move", "copy")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <document> [bibliography]",
	Short: "Import a document with its bibliographic record",
	Long: `Import a document into the library.

The record comes from a bibliography file (.bib, or a Paperpile .json export)
or from Crossref with --doi. The document is renamed after name_pattern and
placed under document_location, once per tag; the first placement holds the
content and the others are hard links to it.

Examples:
  shelf import paper.pdf refs.bib
  shelf import paper.pdf refs.bib -e smith2020 -t phylo -t reading
  shelf import paper.pdf --doi 10.1093/molbev/msu300
  shelf import paper.pdf --doi auto --copy`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runImport,
}

// ImportResponse is the JSON response for import.
type ImportResponse struct {
	Key    string   `json:"key"`
	Paths  []string `json:"paths"`
	Digest string   `json:"digest"`
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	req := importer.Request{
		File:      args[0],
		Key:       importKey,
		ForceMove: importMove,
		ForceCopy: importCopy,
		Tags:      importTags,
	}
	if len(args) == 2 {
		req.Bibliography = args[1]
	}
	if req.Bibliography == "" && importDOI == "" {
		exitWithError(ExitError, "either a bibliography or --doi is required")
	}
	if req.Bibliography != "" && importDOI != "" {
		exitWithError(ExitError, "a bibliography and --doi cannot be combined")
	}

	var resp ImportResponse
	err := library.WithLibrary(cfg.LibraryLocation, func(lib *library.Library) error {
		warnDuplicate(lib, req.File)

		entry, err := importEntry(cmd.Context(), req, cfg)
		if err != nil {
			return err
		}
		if err := lib.Add(entry); err != nil {
			return err
		}
		resp = ImportResponse{Key: entry.Record.Key, Paths: entry.Paths, Digest: entry.Digest.String()}
		return nil
	})
	if err != nil {
		exitWithError(importExitCode(err), "%v", err)
	}

	if humanOutput {
		for _, p := range resp.Paths {
			outputHuman("%s\n", p)
		}
	} else {
		outputJSON(resp)
	}
	return nil
}

// importEntry places the document using the bibliography or a Crossref
// lookup, whichever the request names.
func importEntry(ctx context.Context, req importer.Request, cfg *config.Config) (reference.Entry, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if req.Bibliography != "" {
		return importer.Import(ctx, req, cfg)
	}

	doi := pdf.NormalizeDOI(importDOI)
	if doi == "auto" {
		found, err := pdf.ExtractDOI(req.File)
		if err != nil {
			return reference.Entry{}, err
		}
		if found == "" {
			return reference.Entry{}, fmt.Errorf("%w: no DOI found in %s", importer.ErrNoRecord, req.File)
		}
		slog.Debug("found DOI in document", "doi", found)
		doi = found
	}

	client := crossref.NewClient(crossref.WithUserAgent("shelf/" + rootCmd.Version))
	rec, err := client.LookupDOI(ctx, doi)
	if err != nil {
		return reference.Entry{}, err
	}
	return importer.ImportRecord(ctx, rec, req, cfg)
}

// warnDuplicate logs when the document's content is already in the library.
// The index is a convenience here, so its failures only show up in debug logs.
func warnDuplicate(lib *library.Library, file string) {
	sum, err := digest.File(file)
	if err != nil {
		return // The import itself reports unreadable files
	}

	db, err := storage.Rebuild(lib.Path(), lib.Entries())
	if err != nil {
		slog.Debug("library index unavailable", "error", err)
		return
	}
	defer db.Close()

	keys, err := db.FindByDigest(sum)
	if err != nil {
		slog.Debug("digest lookup failed", "error", err)
		return
	}
	if len(keys) > 0 {
		slog.Warn("document content is already in the library", "keys", keys)
	}
}

func importExitCode(err error) int {
	var apiErr *crossref.APIError
	switch {
	case errors.Is(err, crossref.ErrNetwork), errors.As(err, &apiErr):
		return ExitNetworkError
	case errors.Is(err, crossref.ErrNoMatch),
		errors.Is(err, importer.ErrNoRecord),
		errors.Is(err, importer.ErrEncoding),
		errors.Is(err, importer.ErrUnknownFileType),
		errors.Is(err, importer.ErrCorruptPath),
		errors.Is(err, importer.ErrDestinationExists):
		return ExitDataError
	default:
		return ExitError
	}
}
