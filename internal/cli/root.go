// Package cli wires configuration, template sources and the GitHub client
// into the child-issue cobra commands.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/dpshade/child-issue/internal/config"
	"github.com/dpshade/child-issue/internal/errors"
)

// Exit codes returned by Execute
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitUsage     = 2
	ExitCancelled = 130
)

// App carries the process boundary: streams, environment and working
// directory. Tests substitute every field.
type App struct {
	Version string
	In      io.Reader
	Out     io.Writer
	Err     io.Writer
	Environ []string
	WorkDir string

	// options shared by every command
	configFile string
	envFile    string
	logLevel   string
	logFormat  string
	verbose    bool

	logger    hclog.Logger
	inActions bool
}

// NewApp returns an App bound to the real process
func NewApp(version string) *App {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return &App{
		Version: version,
		In:      os.Stdin,
		Out:     os.Stdout,
		Err:     os.Stderr,
		Environ: os.Environ(),
		WorkDir: wd,
	}
}

// path resolves p against the working directory
func (a *App) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.WorkDir, p)
}

// NewRootCommand builds the command tree. Running the root command without a
// subcommand behaves like create, which is how the GitHub Action invokes it.
func NewRootCommand(app *App) *cobra.Command {
	createOpts := &createOptions{}

	rootCmd := &cobra.Command{
		Use:   "child-issue",
		Short: "Create GitHub issues from issue templates",
		Long: `child-issue builds a GitHub issue from an issue template and submits it.

The template front matter provides the title, labels and assignee, and
{{ name }} placeholders in its body are replaced with values supplied as
INPUT_SUBSTITUTION_<name> environment variables or --var flags.

Configuration is layered: .child-issue.yml < .env < environment < flags.`,
		Version:       app.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, app, createOpts)
		},
	}
	rootCmd.SetIn(app.In)
	rootCmd.SetOut(app.Out)
	rootCmd.SetErr(app.Err)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.configFile, "config", config.DefaultFile, "YAML defaults file")
	flags.StringVar(&app.envFile, "env-file", ".env", "dotenv file layered over the defaults file")
	flags.StringVar(&app.logLevel, "log-level", "", "log level: trace, debug, info, warn, error, off")
	flags.StringVar(&app.logFormat, "log-format", "", "log format: text or json")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "show error details")

	addCreateFlags(rootCmd, createOpts)

	rootCmd.AddCommand(
		newCreateCommand(app),
		newRenderCommand(app),
		newTemplatesCommand(app),
		newVersionCommand(app),
	)
	return rootCmd
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context, app *App, args []string) int {
	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	logger := app.logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	actions := app.inActions || config.FromEnviron(app.Environ).Get(config.KeyGitHubActions) == "true"
	handler := errors.NewCLIErrorHandler(app.Err, logger, app.verbose, actions)
	handler.Workflow = app.Out
	if !errors.IsAppError(err) && !errors.IsCancelled(err) {
		// flag and argument errors from cobra
		err = errors.NewAppError(errors.ErrCodeInvalidInput, err.Error())
	}
	appErr := errors.GetAppError(handler.HandleError(err))

	switch {
	case errors.IsCancelled(appErr):
		return ExitCancelled
	case appErr.Category == errors.CategoryValidation:
		return ExitUsage
	default:
		return ExitFailure
	}
}
