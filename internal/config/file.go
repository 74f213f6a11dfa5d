package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the defaults file looked up in the working directory
const DefaultFile = ".child-issue.yml"

// FileConfig is the YAML defaults file. Every field maps onto an Action
// input, so the file is just the lowest configuration layer.
type FileConfig struct {
	Org              string            `yaml:"org,omitempty"`
	Project          string            `yaml:"project,omitempty"`
	Template         string            `yaml:"template,omitempty"`
	TemplateDir      string            `yaml:"template_dir,omitempty"`
	Title            string            `yaml:"title,omitempty"`
	Assignee         string            `yaml:"assignee,omitempty"`
	Milestone        int               `yaml:"milestone,omitempty"`
	Labels           []string          `yaml:"labels,omitempty"`
	Parser           string            `yaml:"parser,omitempty"`
	SubstitutionMode string            `yaml:"substitution_mode,omitempty"`
	APIURL           string            `yaml:"api_url,omitempty"`
	LogLevel         string            `yaml:"log_level,omitempty"`
	LogFormat        string            `yaml:"log_format,omitempty"`
	Substitutions    map[string]string `yaml:"substitutions,omitempty"`
}

// LoadFile reads a YAML defaults file. A missing file yields a nil config.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &fc, nil
}

// Snapshot converts the file into Action input entries
func (f *FileConfig) Snapshot() Snapshot {
	snap := make(Snapshot)
	if f == nil {
		return snap
	}

	set := func(key, value string) {
		if value != "" {
			snap[key] = value
		}
	}
	set(KeyOrg, f.Org)
	set(KeyProject, f.Project)
	set(KeyTemplate, f.Template)
	set(KeyTemplateDir, f.TemplateDir)
	set(KeyTitle, f.Title)
	set(KeyAssignee, f.Assignee)
	set(KeyLabels, strings.Join(f.Labels, ","))
	set(KeyParser, f.Parser)
	set(KeySubstitutionMode, f.SubstitutionMode)
	set(KeyAPIURL, f.APIURL)
	set(KeyLogLevel, f.LogLevel)
	set(KeyLogFormat, f.LogFormat)
	if f.Milestone > 0 {
		snap[KeyMilestone] = strconv.Itoa(f.Milestone)
	}
	for name, value := range f.Substitutions {
		snap[SubstitutionPrefix+name] = value
	}
	return snap
}
