package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/child-issue/internal/errors"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]hclog.Level{
		"":        hclog.Info,
		"debug":   hclog.Debug,
		"INFO":    hclog.Info,
		"warn":    hclog.Warn,
		"warning": hclog.Warn,
		"error":   hclog.Error,
		"trace":   hclog.Trace,
		"none":    hclog.Off,
	}

	for input, want := range tests {
		got, err := ParseLevel(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseLevel("loud")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("debug", "json", &buf)
	require.NoError(t, err)

	logger.Debug("fetched template", "path", "bug.md")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "fetched template", entry["@message"])
	assert.Equal(t, "bug.md", entry["path"])
	assert.Equal(t, "child-issue", entry["@module"])
}

func TestNewJSONIsUncolored(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("info", "json", &buf)
	require.NoError(t, err)

	logger.Info("hello", "k", "v")
	logger.Warn("again")

	require.NotEmpty(t, buf.String())
	assert.NotContains(t, buf.String(), "\x1b")
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	for _, line := range lines {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(line, &entry), string(line))
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("warn", "text", &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New("info", "xml", nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
}
