package template

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dpshade/child-issue/internal/errors"
	"github.com/dpshade/child-issue/internal/models"
)

// KeyedParser reads the front matter between the first two dash delimiter
// lines as YAML, so field order and blank lines inside the block do not matter.
type KeyedParser struct{}

type frontMatter struct {
	Name      string     `yaml:"name"`
	About     string     `yaml:"about"`
	Title     string     `yaml:"title"`
	Labels    stringList `yaml:"labels"`
	Assignees stringList `yaml:"assignees"`
}

// stringList accepts either a YAML sequence or a comma separated scalar
type stringList []string

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*l = compact(items)
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*l = compact(strings.Split(s, ","))
	default:
		return &yaml.TypeError{Errors: []string{"expected a list or a comma separated string"}}
	}
	return nil
}

func compact(items []string) []string {
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(strings.Trim(strings.TrimSpace(item), "'"))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Parse implements Parser
func (KeyedParser) Parse(raw string) (models.TemplateMetadata, error) {
	var meta models.TemplateMetadata
	lines := newLineCursor(raw)

	first, ok := lines.next()
	if !ok || !isDelimiter(first) {
		return meta, errors.MalformedTemplateError("missing opening front matter delimiter")
	}

	var block []string
	closed := false
	for line, ok := lines.next(); ok; line, ok = lines.next() {
		if isDelimiter(line) {
			closed = true
			break
		}
		block = append(block, line)
	}
	if !closed {
		return meta, errors.MalformedTemplateError("missing closing front matter delimiter")
	}

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(strings.Join(block, "\n")), &fm); err != nil {
		return meta, errors.MalformedTemplateError("front matter is not valid YAML").
			WithDetails(err.Error())
	}

	meta.Title = strings.TrimSpace(fm.Title)
	meta.Labels = []string(fm.Labels)
	if len(fm.Assignees) > 0 {
		assignee := fm.Assignees[0]
		meta.Assignee = &assignee
	}

	body := lines.rest()
	if len(body) > 0 && strings.TrimSpace(body[0]) == "" {
		body = body[1:]
	}
	meta.Body = strings.Join(body, "\n")
	return meta, nil
}

// isDelimiter matches "---", "----" and longer runs of dashes
func isDelimiter(line string) bool {
	line = strings.TrimSpace(line)
	return len(line) >= 3 && strings.Trim(line, "-") == ""
}
