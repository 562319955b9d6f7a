// Package hooks gates commits behind the pre-commit framework when a
// repository carries a hook configuration.
package hooks

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ConfigFileName is the pre-commit configuration file looked up at the
// repository root.
const ConfigFileName = ".pre-commit-config.yaml"

// FailureError carries the hook runner's combined output so callers can show
// the user exactly which check rejected the staged content.
type FailureError struct {
	Output string
}

func (e *FailureError) Error() string {
	if out := strings.TrimSpace(e.Output); out != "" {
		return "pre-commit hooks failed:\n" + out
	}
	return "pre-commit hooks failed"
}

// Runner executes configured pre-commit hooks against staged files.
type Runner struct {
	Verbose bool
	Logger  io.Writer
}

func (r Runner) logger() io.Writer {
	if r.Logger != nil {
		return r.Logger
	}
	return os.Stderr
}

// Run executes the configured hooks over the staged files. It is a no-op pass
// when the repository has no hook configuration or nothing is staged. A hook
// rejection is returned as *FailureError; the caller must unstage and stop.
func (r Runner) Run(repoRoot string, stagedFiles []string) error {
	if len(stagedFiles) == 0 {
		return nil
	}
	if _, err := os.Stat(filepath.Join(repoRoot, ConfigFileName)); err != nil {
		return nil
	}

	args := append([]string{"run", "--files"}, stagedFiles...)
	if r.Verbose {
		fmt.Fprintf(r.logger(), "Running: pre-commit %s\n", strings.Join(args, " "))
	}

	cmd := exec.Command("pre-commit", args...)
	cmd.Dir = repoRoot

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return &FailureError{Output: output.String()}
	}
	return nil
}
