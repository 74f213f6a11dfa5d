package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dpshade/child-issue/internal/errors"
	"github.com/dpshade/child-issue/internal/models"
	"github.com/dpshade/child-issue/internal/storage"
	"github.com/dpshade/child-issue/internal/ui"
)

type templatesOptions struct {
	dir        string
	jsonOutput bool
}

func newTemplatesCommand(app *App) *cobra.Command {
	opts := &templatesOptions{}
	cmd := &cobra.Command{
		Use:     "templates [query]",
		Aliases: []string{"ls"},
		Short:   "List local issue templates",
		Long: `List the markdown issue templates in a local directory.

An optional query fuzzy matches template names and titles.

Examples:
  child-issue templates
  child-issue templates bug --dir docs/templates`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return runTemplates(cmd, app, opts, query)
		},
	}
	cmd.Flags().StringVar(&opts.dir, "dir", "", "template directory (default: template_dir setting or "+storage.DefaultTemplateDir+")")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "output as JSON")
	return cmd
}

func runTemplates(cmd *cobra.Command, app *App, opts *templatesOptions, query string) error {
	cfg, err := app.loadConfig(nil)
	if err != nil {
		return err
	}
	dir := firstNonEmpty(opts.dir, cfg.TemplateDir, storage.DefaultTemplateDir)

	templates, err := storage.NewLocal(app.path(dir)).SearchTemplates(query)
	if err != nil {
		return err
	}
	app.logger.Debug("listed templates", "dir", dir, "query", query, "count", len(templates))

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		if templates == nil {
			templates = []models.TemplateInfo{}
		}
		data, err := json.MarshalIndent(templates, "", "  ")
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInternalError, "Template list could not be encoded")
		}
		fmt.Fprintln(out, string(data))
		return nil
	}
	fmt.Fprintln(out, ui.RenderTemplateList(templates))
	return nil
}
