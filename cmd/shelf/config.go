package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/shelf/internal/config"
)

var configForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing configuration file")
	configCmd.AddCommand(configShowCmd, configPathCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the configuration",
	Long: `Show or create the configuration.

Configuration is read from the first existing file of:
  $XDG_CONFIG_HOME/shelf/config.yml (or ~/.config/shelf/config.yml)
  /etc/shelf.yml
SHELF_DOCUMENT_LOCATION and SHELF_LIBRARY_LOCATION override the locations.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			exitWithError(ExitConfigError, "loading config: %v", err)
		}

		if humanOutput {
			source := path
			if source == "" {
				source = "(defaults)"
			}
			fmt.Printf("source:            %s\n", source)
			fmt.Printf("document_location: %s\n", cfg.DocumentLocation)
			fmt.Printf("library_location:  %s\n", cfg.LibraryLocation)
			fmt.Printf("name_pattern:      %s\n", cfg.NamePattern)
			fmt.Printf("max_author_names:  %d\n", cfg.MaxAuthorNames)
			fmt.Printf("author_separator:  %q\n", cfg.AuthorSeparator)
			fmt.Printf("move_files:        %t\n", cfg.MoveFiles)
		} else {
			outputJSON(ConfigResponse{Source: path, Config: cfg})
		}
		return nil
	},
}

// ConfigResponse is the response for config show.
type ConfigResponse struct {
	Source string         `json:"source"`
	Config *config.Config `json:"config"`
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file that is (or would be) used",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFilePath()
		if humanOutput {
			fmt.Println(path)
		} else {
			outputJSON(StatusResponse{Status: fileStatus(path), Path: path})
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to the user configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.UserConfigPath()
		}
		path = config.ExpandPath(path)

		if _, err := os.Stat(path); err == nil && !configForce {
			exitWithError(ExitConfigError, "%s already exists (use --force to overwrite)", path)
		}
		if err := config.Default().Save(path); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}

		if humanOutput {
			fmt.Printf("Wrote %s\n", path)
		} else {
			outputJSON(StatusResponse{Status: "created", Path: path})
		}
		return nil
	},
}

func configFilePath() string {
	if configPath != "" {
		return config.ExpandPath(configPath)
	}
	return config.SavePath(config.DefaultResolver{})
}

func fileStatus(path string) string {
	if _, err := os.Stat(path); err != nil {
		return "missing"
	}
	return "exists"
}
