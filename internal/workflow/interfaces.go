// Package workflow orchestrates one run of the commit pipeline: staging,
// diff resolution, the hook gate, generation and the final outcome.
package workflow

import (
	"context"
	"io"

	"github.com/arlev/gca/internal/llm"
)

// GitClient abstracts git operations for testability.
type GitClient interface {
	RepoRoot() (string, error)
	StagedDiff(contextLines int) (string, error)
	StagedFiles() ([]string, error)
	StagePath(path string) error
	StageAllTracked() error
	Commit(message string) error
	ResetIndex() error
	Push(stdout, stderr io.Writer) error
}

// Generator abstracts the text-generation service for testability.
type Generator interface {
	Generate(ctx context.Context, req llm.Request) (string, error)
}

// HookRunner abstracts the pre-commit gate for testability. A nil return is a
// pass; runners report "no hooks configured" as a pass, not an error.
type HookRunner interface {
	Run(repoRoot string, stagedFiles []string) error
}
