// Package logging builds the hclog logger shared by every child-issue component.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/dpshade/child-issue/internal/errors"
)

const (
	// DefaultLevel is used when no level is configured
	DefaultLevel = "info"

	FormatText = "text"
	FormatJSON = "json"
)

// ParseLevel converts a level name into an hclog level.
// Valid levels: trace, debug, info, warn, error, off.
func ParseLevel(levelStr string) (hclog.Level, error) {
	if strings.TrimSpace(levelStr) == "" {
		levelStr = DefaultLevel
	}
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "warning":
		return hclog.Warn, nil
	case "none":
		return hclog.Off, nil
	}
	level := hclog.LevelFromString(levelStr)
	if level == hclog.NoLevel {
		return hclog.NoLevel, errors.InvalidInputError("log-level", levelStr+" is not a log level")
	}
	return level, nil
}

// New creates a logger writing to out (stderr when nil)
func New(level, format string, out io.Writer) (hclog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var jsonFormat bool
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
	case FormatJSON:
		jsonFormat = true
	default:
		return nil, errors.InvalidInputError("log-format", format+" is not a log format (want text or json)")
	}

	if out == nil {
		out = os.Stderr
	}

	// hclog wraps JSON records in escapes too, which breaks line parsers
	color := hclog.AutoColor
	if jsonFormat {
		color = hclog.ColorOff
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       "child-issue",
		Level:      lvl,
		Output:     out,
		JSONFormat: jsonFormat,
		Color:      color,
	}), nil
}
