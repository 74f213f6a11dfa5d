package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dpshade/child-issue/internal/clipboard"
	"github.com/dpshade/child-issue/internal/errors"
	"github.com/dpshade/child-issue/internal/models"
	"github.com/dpshade/child-issue/internal/renderer"
	"github.com/dpshade/child-issue/internal/service"
	"github.com/dpshade/child-issue/internal/storage"
	"github.com/dpshade/child-issue/internal/ui"
)

// Output formats accepted by render --format
const (
	formatText     = "text"
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

type renderOptions struct {
	vars        []string
	parser      string
	mode        string
	format      string
	interactive bool
	copy        bool
	width       int
}

func newRenderCommand(app *App) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Parse a local template and print the resulting issue",
		Long: `Parse a local template file, substitute its placeholders and print the issue.

Examples:
  # Plain text
  child-issue render .github/ISSUE_TEMPLATE/child.md --var parent=#12

  # Styled markdown, prompting for placeholders without a value
  child-issue render child.md --format markdown --interactive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, app, opts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVar(&opts.vars, "var", nil, "placeholder value as name=value (repeatable)")
	flags.StringVar(&opts.parser, "parser", "", "template parser: fixed or keyed")
	flags.StringVar(&opts.mode, "mode", "", "substitution mode: sequential or scan")
	flags.StringVarP(&opts.format, "format", "f", formatText, "output format: text, json or markdown")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "prompt for placeholders that have no value")
	flags.BoolVar(&opts.copy, "copy", false, "copy the rendered body to the clipboard")
	flags.IntVar(&opts.width, "width", ui.DefaultWordWrap, "word wrap width for markdown output")
	return cmd
}

func runRender(cmd *cobra.Command, app *App, opts *renderOptions, file string) error {
	switch opts.format {
	case formatText, formatJSON, formatMarkdown:
	default:
		return errors.InvalidInputError("format", opts.format+" is not one of text, json, markdown")
	}

	vars, err := varOverrides(opts.vars)
	if err != nil {
		return err
	}
	cfg, err := app.loadConfig(vars)
	if err != nil {
		return err
	}
	parserName := firstNonEmpty(opts.parser, cfg.Parser)
	mode := firstNonEmpty(opts.mode, cfg.SubstitutionMode)

	path := app.path(file)
	local := storage.NewLocal(filepath.Dir(path))
	raw, err := local.Fetch(cmd.Context(), filepath.Base(path))
	if err != nil {
		return err
	}

	subs := cfg.Substitutions
	meta, err := service.RenderTemplate(raw, subs, parserName, mode)
	if err != nil {
		return err
	}

	if missing := renderer.Unmatched(meta.Body, subs); len(missing) > 0 {
		if !opts.interactive {
			app.logger.Warn("template placeholders left unsubstituted", "placeholders", missing)
		} else {
			entered, err := ui.PromptPlaceholders(missing, cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			subs = mergeSubstitutions(subs, entered)
			if meta, err = service.RenderTemplate(raw, subs, parserName, mode); err != nil {
				return err
			}
		}
	}

	record := service.TemplateRecord(meta)
	if err := printRecord(cmd.OutOrStdout(), record, opts); err != nil {
		return err
	}
	if opts.copy {
		if err := clipboard.Copy(cmd.Context(), *record.Body); err != nil {
			return err
		}
		app.logger.Info("issue body copied to clipboard")
	}
	return nil
}

func printRecord(w io.Writer, record *models.IssueRecord, opts *renderOptions) error {
	switch opts.format {
	case formatJSON:
		out, err := renderer.RenderJSON(record)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, out)
	case formatMarkdown:
		out, err := ui.RenderIssueMarkdown(record, opts.width)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInternalError, "Markdown preview failed")
		}
		fmt.Fprint(w, out)
	default:
		fmt.Fprint(w, issueText(record))
	}
	return nil
}

// issueText is the plain text layout used by render --format text
func issueText(record *models.IssueRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", record.Title)
	if len(record.Labels) > 0 {
		fmt.Fprintf(&b, "Labels: %s\n", strings.Join(record.Labels, ", "))
	}
	if record.Assignee != nil {
		fmt.Fprintf(&b, "Assignee: %s\n", *record.Assignee)
	}
	if record.Body != nil {
		b.WriteString("\n")
		b.WriteString(*record.Body)
		b.WriteString("\n")
	}
	return b.String()
}

func mergeSubstitutions(base, extra map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
