package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dpshade/child-issue/internal/config"
	"github.com/dpshade/child-issue/internal/errors"
	"github.com/dpshade/child-issue/internal/githubapi"
	"github.com/dpshade/child-issue/internal/models"
	"github.com/dpshade/child-issue/internal/renderer"
	"github.com/dpshade/child-issue/internal/service"
	"github.com/dpshade/child-issue/internal/storage"
)

type createOptions struct {
	vars []string
}

// createFlagKeys maps create flags onto the Action inputs they override
var createFlagKeys = map[string]string{
	"org":          config.KeyOrg,
	"project":      config.KeyProject,
	"title":        config.KeyTitle,
	"body":         config.KeyBody,
	"labels":       config.KeyLabels,
	"assignee":     config.KeyAssignee,
	"milestone":    config.KeyMilestone,
	"template":     config.KeyTemplate,
	"template-dir": config.KeyTemplateDir,
	"parser":       config.KeyParser,
	"mode":         config.KeySubstitutionMode,
	"api-url":      config.KeyAPIURL,
	"dry-run":      config.KeyDryRun,
	"timeout":      config.KeyTimeout,
}

func addCreateFlags(cmd *cobra.Command, opts *createOptions) {
	flags := cmd.Flags()
	flags.String("org", "", "repository owner (default: GITHUB_REPOSITORY or git origin)")
	flags.String("project", "", "repository name (default: GITHUB_REPOSITORY or git origin)")
	flags.String("title", "", "issue title; overrides the template title")
	flags.String("body", "", "issue body when no template is used")
	flags.String("labels", "", "comma separated labels added to the template labels")
	flags.String("assignee", "", "issue assignee; overrides the template assignee")
	flags.String("milestone", "", "milestone number")
	flags.String("template", "", "template path in the repository, or name in --template-dir")
	flags.String("template-dir", "", "read templates from this local directory instead of GitHub")
	flags.String("parser", "", "template parser: fixed or keyed")
	flags.String("mode", "", "substitution mode: sequential or scan")
	flags.String("api-url", "", "GitHub API base URL for GitHub Enterprise")
	flags.Bool("dry-run", false, "print the issue as JSON instead of creating it")
	flags.String("timeout", "", "time limit for GitHub requests, e.g. 30s")
	flags.StringArrayVar(&opts.vars, "var", nil, "placeholder value as name=value (repeatable)")
}

func newCreateCommand(app *App) *cobra.Command {
	opts := &createOptions{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an issue from a template",
		Long: `Create an issue from a template.

Examples:
  # Create from a template in the repository
  child-issue create --template .github/ISSUE_TEMPLATE/child.md --var parent=#12

  # Preview the issue without creating it
  child-issue create --template child.md --template-dir .github/ISSUE_TEMPLATE --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, app, opts)
		},
	}
	addCreateFlags(cmd, opts)
	return cmd
}

func runCreate(cmd *cobra.Command, app *App, opts *createOptions) error {
	vars, err := varOverrides(opts.vars)
	if err != nil {
		return err
	}
	cfg, err := app.loadConfig(config.Layer(flagOverrides(cmd, createFlagKeys), vars))
	if err != nil {
		return err
	}
	app.discoverRepository(cmd.Context(), cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()

	client, err := githubapi.NewClient(githubapi.Options{
		Token:   cfg.Token,
		BaseURL: cfg.APIURL,
		Logger:  app.logger,
	})
	if err != nil {
		return err
	}
	repo := client.Repository(cfg.Org, cfg.Project)

	var source service.TemplateSource = repo
	if cfg.TemplateDir != "" {
		source = storage.NewLocal(app.path(cfg.TemplateDir))
	}

	svc := service.NewService(source, repo, app.logger)
	record, created, err := svc.CreateIssue(ctx, cfg)
	if err != nil {
		return err
	}

	if created == nil {
		out, err := renderer.RenderJSON(record)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}

	app.logger.Info("issue created", "repository", repo.FullName(), "number", created.Number)
	fmt.Fprintln(cmd.OutOrStdout(), created.URL)
	return writeOutputs(cfg.OutputFile, created)
}

// writeOutputs appends the step outputs to the runner's GITHUB_OUTPUT file
func writeOutputs(path string, created *models.CreatedIssue) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "Step outputs could not be written")
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "issue-number=%d\nissue-url=%s\n", created.Number, created.URL); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "Step outputs could not be written")
	}
	return nil
}
