package pdf

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Opener opens documents in an external viewer.
type Opener struct {
	reader string
}

// NewOpener returns an opener for the named viewer. An empty name or
// "system" uses the platform default.
func NewOpener(reader string) *Opener {
	if reader == "" {
		reader = "system"
	}
	return &Opener{reader: reader}
}

// Open starts the viewer on path without waiting for it to exit.
func (o *Opener) Open(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("document does not exist: %s", path)
		}
		return fmt.Errorf("checking document: %w", err)
	}

	cmd, err := o.Command(runtime.GOOS, path)
	if err != nil {
		return err
	}
	return cmd.Start()
}

// Command returns the viewer command for path on the given platform.
func (o *Opener) Command(goos, path string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		switch o.reader {
		case "skim":
			return exec.Command("open", "-a", "Skim", path), nil
		case "preview":
			return exec.Command("open", "-a", "Preview", path), nil
		case "system":
			return exec.Command("open", path), nil
		}
	case "linux":
		if o.reader == "system" {
			return exec.Command("xdg-open", path), nil
		}
		return exec.Command(o.reader, path), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
	return nil, fmt.Errorf("unknown reader %q on %s", o.reader, goos)
}
