// Package git wraps the git binary with the operations the commit pipeline
// needs: staged diffs, staging, commit, index rollback and push.
package git

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arlev/gca/internal/gitcmd"
	"github.com/arlev/gca/internal/stringsutil"
)

// Options configures a Client.
type Options struct {
	Verbose bool
	WorkDir string
	Logger  io.Writer
}

// Client executes git operations through a shared runner.
type Client struct {
	runner gitcmd.Runner
}

func NewClient(opts Options) *Client {
	return &Client{
		runner: gitcmd.Runner{
			Verbose: opts.Verbose,
			Dir:     opts.WorkDir,
			Logger:  opts.Logger,
		},
	}
}

// wrapError prefers git's own stderr output when building error messages.
func wrapError(action string, result gitcmd.Result, err error) error {
	if msg := result.StderrString(true); msg != "" {
		return fmt.Errorf("%s: %s: %w", action, msg, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}

// IsRepository reports whether the working directory is inside a git worktree.
func (c *Client) IsRepository() bool {
	result, err := c.runner.Run("rev-parse", "--is-inside-work-tree")
	return err == nil && result.StdoutString(true) == "true"
}

// RepoRoot returns the absolute path of the repository's top-level directory.
func (c *Client) RepoRoot() (string, error) {
	result, err := c.runner.Run("rev-parse", "--show-toplevel")
	if err != nil {
		return "", wrapError("failed to locate repository root", result, err)
	}
	return result.StdoutString(true), nil
}

// StagedDiff returns the unified diff of the index against HEAD with the
// given number of context lines.
func (c *Client) StagedDiff(contextLines int) (string, error) {
	result, err := c.runner.Run("diff", "--cached", "-U"+strconv.Itoa(contextLines))
	if err != nil {
		return "", wrapError("failed to get staged diff", result, err)
	}
	return result.StdoutString(false), nil
}

// StagedFiles returns the paths currently staged, relative to the repo root.
func (c *Client) StagedFiles() ([]string, error) {
	result, err := c.runner.Run("diff", "--cached", "--name-only")
	if err != nil {
		return nil, wrapError("failed to list staged files", result, err)
	}
	files := stringsutil.SplitNonEmpty(result.StdoutString(true), "\n")
	return stringsutil.UniqueStrings(files), nil
}

// StagePath stages exactly the given path.
func (c *Client) StagePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path to stage cannot be empty")
	}
	result, err := c.runner.Run("add", "--", path)
	if err != nil {
		return wrapError(fmt.Sprintf("failed to stage %s", path), result, err)
	}
	return nil
}

// StageAllTracked stages every tracked modification repository-wide.
func (c *Client) StageAllTracked() error {
	result, err := c.runner.Run("add", "-u")
	if err != nil {
		return wrapError("failed to stage tracked changes", result, err)
	}
	return nil
}

// Commit creates a commit from the staged content with the given message.
func (c *Client) Commit(message string) error {
	result, err := c.runner.Run("commit", "-m", message)
	if err != nil {
		return wrapError("failed to commit changes", result, err)
	}
	return nil
}

// ResetIndex unstages everything, restoring the index to HEAD while leaving
// working-tree contents untouched.
func (c *Client) ResetIndex() error {
	result, err := c.runner.Run("reset", "-q", "HEAD")
	if err != nil {
		return wrapError("failed to reset index", result, err)
	}
	return nil
}

// Push pushes the current branch, streaming git's output to the writers.
func (c *Client) Push(stdout, stderr io.Writer) error {
	if err := c.runner.RunWithWriters(stdout, stderr, "push"); err != nil {
		return fmt.Errorf("failed to push: %w", err)
	}
	return nil
}
