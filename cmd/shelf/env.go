package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/matsen/shelf/internal/config"
	"github.com/matsen/shelf/internal/library"
	"github.com/matsen/shelf/internal/query"
)

// loadConfig reads the configuration from --config or the standard search
// path and applies environment overrides. The second value is the file that
// was read, or "" when only defaults apply.
func loadConfig() (*config.Config, string, error) {
	var resolver config.Resolver = config.DefaultResolver{}
	if configPath != "" {
		resolver = config.StaticResolver{config.ExpandPath(configPath)}
	}

	cfg, path, err := config.Load(resolver)
	if err != nil {
		return nil, "", err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// mustLoadConfig loads the configuration or exits with a config error.
func mustLoadConfig() *config.Config {
	cfg, _, err := loadConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustOpenLibrary opens the configured library for reading. A missing
// library file reads as empty.
func mustOpenLibrary(cfg *config.Config) *library.Library {
	lib, err := library.Open(cfg.LibraryLocation)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	return lib
}

// queryFlags holds the filter flags shared by list, remove, export and open.
type queryFlags struct {
	author, year, title, typ string
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.author, "author", "a", "", "Regular expression matched against each author")
	cmd.Flags().StringVarP(&f.year, "year", "y", "", "Regular expression matched against the year")
	cmd.Flags().StringVarP(&f.title, "title", "T", "", "Regular expression matched against the title")
	cmd.Flags().StringVar(&f.typ, "type", "", "Regular expression matched against the entry type")
}

// params combines the flags with an optional positional general pattern.
func (f *queryFlags) params(args []string) query.Params {
	p := query.Params{
		Author: f.author,
		Year:   f.year,
		Title:  f.title,
		Type:   f.typ,
	}
	if len(args) > 0 {
		p.General = args[0]
	}
	return p
}

// queryExitCode maps a query failure to an exit code.
func queryExitCode(err error) int {
	var patErr *query.PatternError
	if errors.As(err, &patErr) {
		return ExitDataError
	}
	return ExitError
}
