// Package clipboard copies rendered issue bodies to the system clipboard.
package clipboard

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/dpshade/child-issue/internal/errors"
)

// tool is one clipboard utility invocation
type tool struct {
	name string
	args []string
}

var tools = map[string][]tool{
	"darwin": {{name: "pbcopy"}},
	"linux": {
		{name: "wl-copy"},
		{name: "xclip", args: []string{"-selection", "clipboard"}},
		{name: "xsel", args: []string{"--clipboard", "--input"}},
	},
	"windows": {{name: "cmd", args: []string{"/c", "clip"}}},
}

// lookPath and run are replaced in tests
var (
	lookPath = exec.LookPath
	run      = func(ctx context.Context, text, name string, args ...string) error {
		cmd := exec.CommandContext(ctx, name, args...)
		cmd.Stdin = strings.NewReader(text)
		return cmd.Run()
	}
)

// Copy writes text to the clipboard using the first utility found for the
// current platform
func Copy(ctx context.Context, text string) error {
	return copyWith(ctx, runtime.GOOS, text)
}

func copyWith(ctx context.Context, goos, text string) error {
	candidates, ok := tools[goos]
	if !ok {
		return errors.NewAppError(errors.ErrCodeInvalidInput, fmt.Sprintf("Clipboard not supported on %s", goos))
	}

	var lastErr error
	for _, t := range candidates {
		if _, err := lookPath(t.name); err != nil {
			continue
		}
		if err := run(ctx, text, t.name, t.args...); err != nil {
			lastErr = fmt.Errorf("%s failed: %w", t.name, err)
			continue
		}
		return nil
	}

	if lastErr != nil {
		return errors.Wrap(lastErr, errors.ErrCodeInternalError, "Clipboard utilities available but failed")
	}
	return errors.NewAppError(errors.ErrCodeInvalidInput, "No clipboard utility found").
		WithDetails(InstallInstructions(goos))
}

// InstallInstructions describes how to get a clipboard utility on goos
func InstallInstructions(goos string) string {
	switch goos {
	case "linux":
		return "install wl-clipboard (Wayland), xclip or xsel"
	case "darwin":
		return "pbcopy should be available by default on macOS"
	case "windows":
		return "clip should be available by default on Windows"
	default:
		return fmt.Sprintf("clipboard not supported on %s", goos)
	}
}
