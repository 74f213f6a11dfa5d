package models

// TemplateMetadata is the parsed form of an issue template document
type TemplateMetadata struct {
	Title    string   `yaml:"title" json:"title"`
	Labels   []string `yaml:"labels" json:"labels"`
	Assignee *string  `yaml:"assignee,omitempty" json:"assignee,omitempty"`

	// Body is everything after the front matter block
	Body string `yaml:"-" json:"body"`
}

// AssigneeOrEmpty returns the assignee, or "" when the template named none
func (m TemplateMetadata) AssigneeOrEmpty() string {
	if m.Assignee == nil {
		return ""
	}
	return *m.Assignee
}

// TemplateInfo describes a template file found in a local template directory
type TemplateInfo struct {
	Name  string `json:"name"`  // File name relative to the template directory
	Path  string `json:"path"`  // Absolute path on disk
	Title string `json:"title"` // Title line of the template, if any
}

// FilterValue returns the value used for fuzzy matching
func (t TemplateInfo) FilterValue() string {
	if t.Title != "" {
		return t.Name + " " + t.Title
	}
	return t.Name
}
