package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dpshade/child-issue/internal/config"
	"github.com/dpshade/child-issue/internal/errors"
	"github.com/dpshade/child-issue/internal/git"
	"github.com/dpshade/child-issue/internal/logging"
)

// loadSnapshot layers every configuration source, lowest first
func (a *App) loadSnapshot(overrides config.Snapshot) (config.Snapshot, error) {
	fc, err := config.LoadFile(a.path(a.configFile))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "Configuration file could not be loaded")
	}
	dotenv, err := config.ReadDotEnv(a.path(a.envFile))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "dotenv file could not be loaded").
			WithContext("file", a.envFile)
	}

	global := config.Snapshot{}
	if a.logLevel != "" {
		global[config.KeyLogLevel] = a.logLevel
	}
	if a.logFormat != "" {
		global[config.KeyLogFormat] = a.logFormat
	}

	return config.Layer(fc.Snapshot(), dotenv, config.FromEnviron(a.Environ), overrides, global), nil
}

// loadConfig resolves the configuration and sets up the logger from it
func (a *App) loadConfig(overrides config.Snapshot) (*config.Config, error) {
	snap, err := a.loadSnapshot(overrides)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(snap.Get(config.KeyLogLevel), snap.Get(config.KeyLogFormat), a.Err)
	if err != nil {
		return nil, err
	}
	a.logger = logger

	cfg, err := config.Load(snap, logger)
	if err != nil {
		return nil, err
	}
	a.inActions = cfg.InActions
	return cfg, nil
}

// discoverRepository fills org and project from the origin remote of the
// working directory when the configuration leaves them unset
func (a *App) discoverRepository(ctx context.Context, cfg *config.Config) {
	if cfg.Org != "" && cfg.Project != "" {
		return
	}

	owner, name, err := git.NewRepo(a.WorkDir).RemoteRepository(ctx)
	if err != nil {
		a.logger.Debug("repository not discovered from git", "error", err)
		return
	}
	if cfg.Org == "" {
		cfg.Org = owner
	}
	if cfg.Project == "" {
		cfg.Project = name
	}
	a.logger.Debug("using repository from git remote", "org", cfg.Org, "project", cfg.Project)
}

// flagOverrides turns the flags the user actually set into snapshot entries
func flagOverrides(cmd *cobra.Command, keys map[string]string) config.Snapshot {
	snap := config.Snapshot{}
	for name, key := range keys {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			snap[key] = f.Value.String()
		}
	}
	return snap
}

// varOverrides parses repeated --var name=value flags into substitution entries
func varOverrides(vars []string) (config.Snapshot, error) {
	snap := config.Snapshot{}
	for _, v := range vars {
		name, value, ok := strings.Cut(v, "=")
		if !ok || name == "" {
			return nil, errors.InvalidInputError("var", v+" is not name=value")
		}
		snap[config.SubstitutionPrefix+name] = value
	}
	return snap, nil
}
