// Package git discovers the GitHub repository a working copy belongs to.
package git

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dpshade/child-issue/internal/errors"
)

const gitTimeout = 3 * time.Second

// scp-like SSH remotes: git@github.com:owner/repo.git
var sshPattern = regexp.MustCompile(`^[\w.-]+@[^:/]+:([^/]+)/([^/]+?)(?:\.git)?/?$`)

// Repo is a local git working copy
type Repo struct {
	baseDir string
}

// NewRepo creates a Repo for the working copy at baseDir
func NewRepo(baseDir string) *Repo {
	if baseDir == "" {
		baseDir = "."
	}
	return &Repo{baseDir: baseDir}
}

// IsInitialized checks if the directory has git initialized
func (g *Repo) IsInitialized() bool {
	gitDir := filepath.Join(g.baseDir, ".git")
	if _, err := os.Stat(gitDir); os.IsNotExist(err) {
		return false
	}
	return true
}

// RemoteURL returns the URL of the origin remote
func (g *Repo) RemoteURL(ctx context.Context) (string, error) {
	output, err := g.output(ctx, "remote", "get-url", "origin")
	if err != nil {
		return "", errors.GitError("read origin remote", err)
	}
	return strings.TrimSpace(output), nil
}

// RemoteRepository returns the owner and name of the origin remote
func (g *Repo) RemoteRepository(ctx context.Context) (owner, name string, err error) {
	if !g.IsInitialized() {
		return "", "", errors.GitError("read origin remote", fmt.Errorf("%s is not a git repository", g.baseDir))
	}
	remote, err := g.RemoteURL(ctx)
	if err != nil {
		return "", "", err
	}
	return ParseRemoteURL(remote)
}

// ParseRemoteURL extracts owner and repository name from an SSH or HTTPS remote URL
func ParseRemoteURL(remote string) (owner, name string, err error) {
	remote = strings.TrimSpace(remote)

	if matches := sshPattern.FindStringSubmatch(remote); matches != nil {
		return matches[1], matches[2], nil
	}

	parsedURL, err := url.Parse(remote)
	if err != nil || parsedURL.Host == "" {
		return "", "", errors.GitError("parse remote", fmt.Errorf("invalid repository URL %q", remote))
	}

	pathParts := strings.Split(strings.Trim(parsedURL.Path, "/"), "/")
	if len(pathParts) != 2 || pathParts[0] == "" || pathParts[1] == "" {
		return "", "", errors.GitError("parse remote", fmt.Errorf("invalid repository URL format %q", remote))
	}
	return pathParts[0], strings.TrimSuffix(pathParts[1], ".git"), nil
}

// output runs git in the base directory with a timeout and returns stdout
func (g *Repo) output(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.baseDir

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("git %s timed out after %v", strings.Join(args, " "), gitTimeout)
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git %s failed: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s failed: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}
