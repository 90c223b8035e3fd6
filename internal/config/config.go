// Package config handles the shelf configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// AppDir is the directory name under XDG_CONFIG_HOME.
	AppDir = "shelf"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
	// LibraryFile is the default library file name inside the document location.
	LibraryFile = "library.json"
	// PapersDir is the default directory under the user's documents.
	PapersDir = "Papers"

	DefaultNamePattern     = "%A-%y-%T"
	DefaultMaxAuthorNames  = 2
	DefaultAuthorSeparator = "_"
	DefaultMoveFiles       = true
)

// Environment variables that override values from the config file.
const (
	EnvDocumentLocation = "SHELF_DOCUMENT_LOCATION"
	EnvLibraryLocation  = "SHELF_LIBRARY_LOCATION"
)

// Config is the configuration snapshot used for one run.
//
// Name pattern placeholders:
//
//	%F / %f  original file name (as is / lowercase)
//	%K / %k  citation key
//	%A / %a  authors joined with AuthorSeparator, at most MaxAuthorNames
//	%L / %l  last names of the same authors
//	%T / %t  title
//	%Y       four-digit year
//	%y       year modulo 100
//	%M / %m  month name, or empty if the record has no month
type Config struct {
	DocumentLocation string `yaml:"document_location" json:"document_location"`
	LibraryLocation  string `yaml:"library_location" json:"library_location"`
	NamePattern      string `yaml:"name_pattern" json:"name_pattern"`
	MaxAuthorNames   uint32 `yaml:"max_author_names" json:"max_author_names"`
	AuthorSeparator  string `yaml:"author_separator" json:"author_separator"`
	MoveFiles        bool   `yaml:"move_files" json:"move_files"`
}

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Default returns the built-in configuration.
func Default() *Config {
	docs := filepath.Join(DocumentsDir(), PapersDir)
	return &Config{
		DocumentLocation: docs,
		LibraryLocation:  filepath.Join(docs, LibraryFile),
		NamePattern:      DefaultNamePattern,
		MaxAuthorNames:   DefaultMaxAuthorNames,
		AuthorSeparator:  DefaultAuthorSeparator,
		MoveFiles:        DefaultMoveFiles,
	}
}

// DocumentsDir returns the user's document directory.
// Respects XDG_DOCUMENTS_DIR, defaults to ~/Documents.
func DocumentsDir() string {
	if dir := os.Getenv("XDG_DOCUMENTS_DIR"); dir != "" {
		return ExpandPath(dir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "." // No home directory; fall back to the working directory
	}
	return filepath.Join(home, "Documents")
}

// Load reads the first existing config file named by the resolver.
// Returns the defaults (not an error) if no file exists. The second return
// value is the path that was loaded, or "" for defaults.
func Load(r Resolver) (*Config, string, error) {
	for _, path := range r.Paths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := LoadFile(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	return Default(), "", nil
}

// LoadFile reads configuration from path. Keys missing from the file keep
// their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.DocumentLocation = ExpandPath(cfg.DocumentLocation)
	cfg.LibraryLocation = ExpandPath(cfg.LibraryLocation)
	return cfg, nil
}

// Save writes the configuration to path as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ApplyEnv overrides locations from SHELF_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDocumentLocation); v != "" {
		c.DocumentLocation = ExpandPath(v)
	}
	if v := os.Getenv(EnvLibraryLocation); v != "" {
		c.LibraryLocation = ExpandPath(v)
	}
}

// Validate checks that the configuration can be used for imports.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DocumentLocation) == "" {
		return fmt.Errorf("%w: document_location is empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.LibraryLocation) == "" {
		return fmt.Errorf("%w: library_location is empty", ErrInvalidConfig)
	}
	if c.NamePattern == "" {
		return fmt.Errorf("%w: name_pattern is empty", ErrInvalidConfig)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
