// Package template splits an issue template document into its metadata and body.
//
// Two strategies are available behind the Parser interface. FixedParser is
// the positional nine-line layout used by existing templates and never
// fails. KeyedParser reads the front matter as YAML and reports malformed
// documents instead of degrading silently.
package template

import (
	"strings"
	"unicode"

	"github.com/dpshade/child-issue/internal/errors"
	"github.com/dpshade/child-issue/internal/models"
)

// Parser names accepted by NewParser
const (
	ParserFixed = "fixed"
	ParserKeyed = "keyed"
)

// emptyMarker is how templates spell an empty labels list
const emptyMarker = "''"

// Parser turns raw template text into metadata and body
type Parser interface {
	Parse(raw string) (models.TemplateMetadata, error)
}

// NewParser returns the parser registered under name; "" selects the fixed parser
func NewParser(name string) (Parser, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ParserFixed:
		return FixedParser{}, nil
	case ParserKeyed:
		return KeyedParser{}, nil
	default:
		return nil, errors.InvalidInputError("parser", "unknown parser "+name+" (want fixed or keyed)")
	}
}

// FixedParser reads the fixed nine-line front matter:
//
//	---
//	name: ...
//	about: ...
//	title: ...
//	labels: ...
//	assignees: ...
//	<blank>
//	----
//	<blank>
//
// The error is always nil.
type FixedParser struct{}

// Parse implements Parser
func (FixedParser) Parse(raw string) (models.TemplateMetadata, error) {
	return Parse(raw), nil
}

// Parse extracts title, labels, assignee and body by line position.
// Missing lines leave the corresponding field unset.
func Parse(raw string) models.TemplateMetadata {
	var meta models.TemplateMetadata
	lines := newLineCursor(raw)

	lines.skip(3) // start marker, name, about

	if line, ok := lines.next(); ok {
		meta.Title = valueOf(line)
	}

	if line, ok := lines.next(); ok {
		if value := valueOf(line); value != emptyMarker {
			meta.Labels = strings.Split(strings.Trim(value, "'"), ",")
		}
	}

	if line, ok := lines.next(); ok {
		assignee := valueOf(line)
		meta.Assignee = &assignee
	}

	lines.skip(3) // blank line, closing marker, blank line opening the body

	meta.Body = strings.Join(lines.rest(), "\n")
	return meta
}

// valueOf returns the text after the last ':' with leading whitespace removed
func valueOf(line string) string {
	value := line[strings.LastIndex(line, ":")+1:]
	return strings.TrimLeftFunc(value, unicode.IsSpace)
}

type lineCursor struct {
	lines []string
	pos   int
}

// newLineCursor splits raw into lines. A final line break does not start an
// extra empty line and a trailing '\r' is dropped from every line.
func newLineCursor(raw string) *lineCursor {
	if raw == "" {
		return &lineCursor{}
	}
	lines := strings.Split(raw, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return &lineCursor{lines: lines}
}

func (c *lineCursor) next() (string, bool) {
	if c.pos >= len(c.lines) {
		return "", false
	}
	line := c.lines[c.pos]
	c.pos++
	return line, true
}

func (c *lineCursor) skip(n int) {
	for i := 0; i < n; i++ {
		c.next()
	}
}

func (c *lineCursor) rest() []string {
	if c.pos >= len(c.lines) {
		return nil
	}
	rest := c.lines[c.pos:]
	c.pos = len(c.lines)
	return rest
}
