package clipboard

import (
	"errors"
	"os/exec"
	"testing"
)

func fakeLookPath(installed ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, n := range installed {
			if n == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func TestCommand(t *testing.T) {
	tests := []struct {
		name      string
		goos      string
		installed []string
		want      string
		wantErr   bool
	}{
		{"macOS", "darwin", []string{"pbcopy"}, "pbcopy", false},
		{"wayland preferred", "linux", []string{"xclip", "wl-copy"}, "wl-copy", false},
		{"xclip", "linux", []string{"xclip", "xsel"}, "xclip", false},
		{"xsel fallback", "linux", []string{"xsel"}, "xsel", false},
		{"nothing installed", "linux", nil, "", true},
		{"unsupported platform", "windows", []string{"clip"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			argv, err := command(tt.goos, fakeLookPath(tt.installed...))
			if tt.wantErr {
				if !errors.Is(err, ErrClipboardUnavailable) {
					t.Errorf("command() error = %v, want ErrClipboardUnavailable", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("command() error = %v", err)
			}
			if argv[0] != tt.want {
				t.Errorf("command() = %v, want %s", argv, tt.want)
			}
		})
	}
}

func TestCopy(t *testing.T) {
	if !IsAvailable() {
		t.Skip("clipboard not available on this system")
	}
	if err := Copy("@misc{k, title = {T}}"); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
}
