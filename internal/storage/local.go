package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"

	"github.com/dpshade/child-issue/internal/errors"
	"github.com/dpshade/child-issue/internal/models"
	"github.com/dpshade/child-issue/internal/template"
)

// DefaultTemplateDir is where GitHub looks for issue templates
const DefaultTemplateDir = ".github/ISSUE_TEMPLATE"

const maxSuggestions = 3

// Local serves issue templates from a directory on disk
type Local struct {
	rootPath string
}

// NewLocal creates a template source rooted at rootPath; "" uses DefaultTemplateDir
func NewLocal(rootPath string) *Local {
	if rootPath == "" {
		rootPath = DefaultTemplateDir
	}
	return &Local{rootPath: rootPath}
}

// GetBaseDir returns the root path of the storage
func (l *Local) GetBaseDir() string {
	return l.rootPath
}

// Fetch returns the text of the template called name. Names are slash
// separated paths relative to the root; they may not leave it.
func (l *Local) Fetch(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		if errors.IsCancelled(err) {
			return "", errors.CancelledError("fetch template", err)
		}
		return "", errors.RetrievalError(name, err)
	}

	fullPath, err := l.resolve(name)
	if err != nil {
		return "", errors.RetrievalError(name, err)
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			notFound := errors.NotFoundError(fmt.Sprintf("template %s", name))
			if suggestions := l.Suggest(name); len(suggestions) > 0 {
				notFound = notFound.WithDetails("did you mean " + strings.Join(suggestions, ", ") + "?")
			}
			return "", errors.RetrievalError(name, notFound)
		}
		return "", errors.RetrievalError(name, fmt.Errorf("failed to read template file: %w", err))
	}
	if !utf8.Valid(content) {
		return "", errors.RetrievalError(name, fmt.Errorf("non UTF-8 contents in %s", fullPath))
	}
	return string(content), nil
}

func (l *Local) resolve(name string) (string, error) {
	if name == "" {
		return "", errors.MissingFieldError("template")
	}
	fullPath := filepath.Join(l.rootPath, filepath.FromSlash(name))
	rel, err := filepath.Rel(l.rootPath, fullPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.InvalidInputError("template", name+" is outside "+l.rootPath)
	}
	return fullPath, nil
}

// ListTemplates returns every markdown template below the root, sorted by name
func (l *Local) ListTemplates() ([]models.TemplateInfo, error) {
	var templates []models.TemplateInfo

	err := filepath.WalkDir(l.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		relPath, err := filepath.Rel(l.rootPath, path)
		if err != nil {
			return err
		}
		info := models.TemplateInfo{Name: filepath.ToSlash(relPath), Path: path}
		if abs, err := filepath.Abs(path); err == nil {
			info.Path = abs
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", relPath, err)
		}
		info.Title = template.Parse(string(content)).Title

		templates = append(templates, info)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTemplateRetrieval, "Templates could not be listed").
			WithContext("dir", l.rootPath)
	}

	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })
	return templates, nil
}

// SearchTemplates fuzzy matches query against template names and titles.
// An empty query returns every template.
func (l *Local) SearchTemplates(query string) ([]models.TemplateInfo, error) {
	templates, err := l.ListTemplates()
	if err != nil {
		return nil, err
	}
	if query == "" {
		return templates, nil
	}

	searchStrings := make([]string, len(templates))
	for i, t := range templates {
		searchStrings[i] = t.FilterValue()
	}

	var results []models.TemplateInfo
	for _, match := range fuzzy.Find(query, searchStrings) {
		results = append(results, templates[match.Index])
	}
	return results, nil
}

// Suggest returns up to three template names close to name
func (l *Local) Suggest(name string) []string {
	templates, err := l.ListTemplates()
	if err != nil || len(templates) == 0 {
		return nil
	}

	names := make([]string, len(templates))
	for i, t := range templates {
		names[i] = t.Name
	}

	query := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	var suggestions []string
	for _, match := range fuzzy.Find(query, names) {
		suggestions = append(suggestions, match.Str)
		if len(suggestions) == maxSuggestions {
			break
		}
	}
	return suggestions
}
