package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/dpshade/child-issue/internal/errors"
)

// Action input keys. GitHub passes action inputs as INPUT_<NAME> with the
// name upper-cased and dashes kept.
const (
	KeyToken            = "INPUT_GITHUB-TOKEN"
	KeyOrg              = "INPUT_ORG"
	KeyProject          = "INPUT_PROJECT"
	KeyTitle            = "INPUT_TITLE"
	KeyAssignee         = "INPUT_ASSIGNEE"
	KeyMilestone        = "INPUT_MILESTONE"
	KeyTemplate         = "INPUT_TEMPLATE"
	KeyTemplateDir      = "INPUT_TEMPLATE-DIR"
	KeyBody             = "INPUT_BODY"
	KeyLabels           = "INPUT_LABELS"
	KeyParser           = "INPUT_PARSER"
	KeySubstitutionMode = "INPUT_SUBSTITUTION-MODE"
	KeyAPIURL           = "INPUT_API-URL"
	KeyDryRun           = "INPUT_DRY-RUN"
	KeyTimeout          = "INPUT_TIMEOUT"
	KeyLogLevel         = "INPUT_LOG-LEVEL"
	KeyLogFormat        = "INPUT_LOG-FORMAT"

	// Set by the Actions runner
	KeyGitHubRepository = "GITHUB_REPOSITORY"
	KeyGitHubOutput     = "GITHUB_OUTPUT"
	KeyGitHubActions    = "GITHUB_ACTIONS"
)

// DefaultTimeout bounds every remote call made for one run
const DefaultTimeout = 30 * time.Second

// Config holds everything needed to build and submit one issue
type Config struct {
	Token    string
	Org      string
	Project  string
	Title    string
	Assignee string
	// Milestone is nil when unset or not a valid milestone number
	Milestone *int
	Template  string
	// TemplateDir switches template retrieval to a local directory
	TemplateDir      string
	Body             string
	Labels           []string
	Parser           string
	SubstitutionMode string
	APIURL           string
	DryRun           bool
	Timeout          time.Duration
	LogLevel         string
	LogFormat        string
	Substitutions    map[string]string

	// OutputFile is the runner's step output file, if any
	OutputFile string
	InActions  bool
}

// Load reads a Config from snap. It only fails on values that are present
// but unusable; required fields are checked by Validate.
func Load(snap Snapshot, logger hclog.Logger) (*Config, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	cfg := &Config{
		Token:            strings.TrimSpace(snap.Get(KeyToken)),
		Org:              strings.TrimSpace(snap.Get(KeyOrg)),
		Project:          strings.TrimSpace(snap.Get(KeyProject)),
		Title:            snap.Get(KeyTitle),
		Assignee:         strings.TrimSpace(snap.Get(KeyAssignee)),
		Template:         strings.TrimSpace(snap.Get(KeyTemplate)),
		TemplateDir:      strings.TrimSpace(snap.Get(KeyTemplateDir)),
		Body:             snap.Get(KeyBody),
		Labels:           SplitList(snap.Get(KeyLabels)),
		Parser:           strings.TrimSpace(snap.Get(KeyParser)),
		SubstitutionMode: strings.TrimSpace(snap.Get(KeySubstitutionMode)),
		APIURL:           strings.TrimSpace(snap.Get(KeyAPIURL)),
		Timeout:          DefaultTimeout,
		LogLevel:         snap.Get(KeyLogLevel),
		LogFormat:        snap.Get(KeyLogFormat),
		Substitutions:    Substitutions(snap),
		OutputFile:       snap.Get(KeyGitHubOutput),
		InActions:        snap.Get(KeyGitHubActions) == "true",
	}

	if cfg.Org == "" || cfg.Project == "" {
		if owner, repo, ok := SplitRepository(snap.Get(KeyGitHubRepository)); ok {
			if cfg.Org == "" {
				cfg.Org = owner
			}
			if cfg.Project == "" {
				cfg.Project = repo
			}
		}
	}

	if raw := strings.TrimSpace(snap.Get(KeyMilestone)); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 31)
		if err != nil {
			logger.Warn("ignoring milestone that is not a number", "milestone", raw)
		} else {
			milestone := int(n)
			cfg.Milestone = &milestone
		}
	}

	if raw := strings.TrimSpace(snap.Get(KeyDryRun)); raw != "" {
		dryRun, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.InvalidInputError("dry-run", raw+" is not a boolean")
		}
		cfg.DryRun = dryRun
	}

	if raw := strings.TrimSpace(snap.Get(KeyTimeout)); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil || timeout <= 0 {
			return nil, errors.InvalidInputError("timeout", raw+" is not a positive duration")
		}
		cfg.Timeout = timeout
	}

	return cfg, nil
}

// Validate checks the fields needed to create an issue
func (c *Config) Validate() error {
	if c.Token == "" && !c.DryRun {
		return errors.MissingFieldError("github-token").WithDetails("No GitHub Token provided")
	}
	if c.Org == "" {
		return errors.MissingFieldError("org").WithDetails("GitHub org not provided")
	}
	if c.Project == "" {
		return errors.MissingFieldError("project").WithDetails("GitHub project not provided")
	}
	if c.Title == "" && c.Template == "" {
		return errors.MissingFieldError("title").WithDetails("Issue title is required when no template is given")
	}
	return nil
}

// SplitRepository splits "owner/repo"
func SplitRepository(s string) (owner, repo string, ok bool) {
	owner, repo, ok = strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", false
	}
	return owner, repo, true
}

// SplitList splits a comma separated list, trimming entries and dropping empty ones
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
