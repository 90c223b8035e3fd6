package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Resolver lists candidate config file locations in priority order.
type Resolver interface {
	Paths() []string
}

// StaticResolver is a fixed list of paths.
type StaticResolver []string

// Paths returns the list unchanged.
func (s StaticResolver) Paths() []string {
	return s
}

// DefaultResolver searches the per-user config directory, then the system
// config file on unix.
type DefaultResolver struct{}

// Paths returns the platform search list.
func (DefaultResolver) Paths() []string {
	var paths []string
	if p := UserConfigPath(); p != "" {
		paths = append(paths, p)
	}
	if runtime.GOOS != "windows" {
		paths = append(paths, filepath.Join("/etc", AppDir+".yml"))
	}
	return paths
}

// UserConfigPath returns the per-user config file path.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/shelf/config.yml.
func UserConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, AppDir, ConfigFile)
}

// SavePath returns the path a config should be written to: the first
// existing candidate, else the first candidate.
func SavePath(r Resolver) string {
	paths := r.Paths()
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if len(paths) == 0 {
		return ""
	}
	return paths[0]
}
