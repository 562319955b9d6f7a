package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/arlev/gca/internal/llm"
	"github.com/arlev/gca/internal/prompt"
	"github.com/arlev/gca/internal/ui"
)

// ErrStagingConflict rejects a staging request made while content is already
// staged. Mixing new staging with pre-existing staged state cannot be undone
// cleanly, so the coordinator demands a clean slate instead of merging.
var ErrStagingConflict = errors.New(
	"changes are already staged; commit or unstage them before staging more")

// ErrPromptRequiresReview rejects extra prompt text outside review mode.
var ErrPromptRequiresReview = errors.New("--prompt requires --review")

// Outcome is the terminal state of one run.
type Outcome int

const (
	// OutcomeNoOp means nothing was staged after all staging steps; the run
	// succeeded without calling the API.
	OutcomeNoOp Outcome = iota
	// OutcomeReviewPrinted means the generated review was written to stdout.
	OutcomeReviewPrinted
	// OutcomeCommitted means a commit was created from the generated message.
	OutcomeCommitted
	// OutcomeDryRun means the generated message was printed without committing.
	OutcomeDryRun
	// OutcomeRolledBack means a post-staging failure unstaged this run's work.
	OutcomeRolledBack
	// OutcomeFailed means the run failed without anything to undo.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoOp:
		return "no-op"
	case OutcomeReviewPrinted:
		return "review-printed"
	case OutcomeCommitted:
		return "committed"
	case OutcomeDryRun:
		return "dry-run"
	case OutcomeRolledBack:
		return "rolled-back"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options is the immutable configuration of one run, built once from parsed
// flags and passed explicitly; the flow never reaches for globals.
type Options struct {
	Review       bool
	ExtraPrompt  string
	Path         string
	AddAll       bool
	DryRun       bool
	Model        string
	Temperature  float32
	MaxTokens    int
	ContextLines int

	OutWriter io.Writer
	ErrWriter io.Writer
	Stdin     io.Reader
}

// Validate rejects invalid flag combinations before any side effect.
func (o Options) Validate() error {
	if o.ExtraPrompt != "" && !o.Review {
		return ErrPromptRequiresReview
	}
	return nil
}

// Flow runs the pipeline:
//
//	STAGE (0 or 1 action) -> DIFF_CHECK -> HOOKS -> GENERATE -> PRINT | COMMIT -> PUSH_PROMPT
//
// Any failure between a successful staging mutation and a successful commit
// rolls the index back to its pre-run state.
type Flow struct {
	git   GitClient
	gen   Generator
	hooks HookRunner
	opts  Options

	// diff is the snapshot of staged content. It is refreshed only through
	// refreshDiff, immediately after each successful staging mutation, so it
	// is always consistent with the last completed staging action.
	diff string

	// staged records whether this run mutated the index; rollback is owed
	// only then. Pre-existing staged content is the user's, never undone.
	staged bool
}

func New(git GitClient, gen Generator, hooks HookRunner, opts Options) *Flow {
	return &Flow{git: git, gen: gen, hooks: hooks, opts: opts}
}

// Run executes one invocation of the pipeline and returns its outcome. The
// returned error, when non-nil, is the reason the run should exit non-zero.
func (f *Flow) Run(ctx context.Context) (Outcome, error) {
	if err := f.opts.Validate(); err != nil {
		return OutcomeFailed, err
	}

	f.refreshDiff()

	if f.opts.Path != "" {
		if err := f.stage(func() error { return f.git.StagePath(f.opts.Path) }); err != nil {
			return OutcomeFailed, err
		}
		fmt.Fprintf(f.opts.ErrWriter, "Staged %s\n", f.opts.Path)
	}

	if f.opts.AddAll {
		if err := f.stage(f.git.StageAllTracked); err != nil {
			return OutcomeFailed, err
		}
		fmt.Fprintln(f.opts.ErrWriter, "Staged all tracked changes.")
	}

	if strings.TrimSpace(f.diff) == "" {
		fmt.Fprintln(f.opts.ErrWriter, "No staged changes, nothing to do.")
		if !f.opts.AddAll && f.opts.Path == "" {
			fmt.Fprintln(f.opts.ErrWriter, "Hint: use -a to stage all tracked changes, or pass a path to stage.")
		}
		return OutcomeNoOp, nil
	}

	if err := f.runHookGate(); err != nil {
		f.rollback()
		return OutcomeRolledBack, err
	}

	text, err := f.generate(ctx)
	if err != nil {
		f.rollback()
		return OutcomeRolledBack, err
	}

	if f.opts.Review {
		fmt.Fprintln(f.opts.OutWriter, text)
		return OutcomeReviewPrinted, nil
	}

	return f.commit(text)
}

// stage applies one staging action behind the clean-slate precondition and
// refreshes the diff snapshot on success.
func (f *Flow) stage(action func() error) error {
	if strings.TrimSpace(f.diff) != "" {
		return ErrStagingConflict
	}
	if err := action(); err != nil {
		return err
	}
	f.staged = true
	f.refreshDiff()
	return nil
}

// refreshDiff recomputes the diff snapshot. A backend failure is treated as
// "nothing staged" rather than an error of its own.
func (f *Flow) refreshDiff() {
	diff, err := f.git.StagedDiff(f.opts.ContextLines)
	if err != nil {
		f.diff = ""
		return
	}
	f.diff = diff
}

// runHookGate runs configured pre-commit hooks over the staged files. The API
// must never be called against content that failed hooks.
func (f *Flow) runHookGate() error {
	files, err := f.git.StagedFiles()
	if err != nil {
		return fmt.Errorf("failed to list staged files: %w", err)
	}

	root, err := f.git.RepoRoot()
	if err != nil {
		return err
	}

	return f.hooks.Run(root, files)
}

func (f *Flow) generate(ctx context.Context) (string, error) {
	label := "commit message"
	if f.opts.Review {
		label = "review"
	}

	sp := ui.NewSpinner("Generating " + label + "...")
	sp.Start()
	text, err := f.gen.Generate(ctx, llm.Request{
		SystemPrompt: prompt.ForMode(f.opts.Review),
		ExtraPrompt:  f.opts.ExtraPrompt,
		UserContent:  f.diff,
		Model:        f.opts.Model,
		Temperature:  f.opts.Temperature,
		MaxTokens:    f.opts.MaxTokens,
	})
	sp.Stop()

	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", label, err)
	}
	return text, nil
}

func (f *Flow) commit(message string) (Outcome, error) {
	fmt.Fprintln(f.opts.ErrWriter, "\nGenerated Commit Message:")
	fmt.Fprintln(f.opts.OutWriter, message)

	if f.opts.DryRun {
		fmt.Fprintln(f.opts.ErrWriter, "Dry run mode, no actual commit")
		return OutcomeDryRun, nil
	}

	// A rejected commit leaves the staged content in place for the user to
	// retry; there is nothing to undo.
	if err := f.git.Commit(message); err != nil {
		return OutcomeFailed, err
	}
	fmt.Fprintln(f.opts.ErrWriter, "Successfully committed changes!")

	f.promptPush()
	return OutcomeCommitted, nil
}

// rollback unstages this run's staging mutation, restoring the index to its
// pre-run state. Working-tree edits are never discarded, and a run that
// staged nothing has nothing to undo.
func (f *Flow) rollback() {
	if !f.staged {
		return
	}
	if err := f.git.ResetIndex(); err != nil {
		fmt.Fprintf(f.opts.ErrWriter, "Warning: failed to unstage changes: %v\n", err)
		return
	}
	fmt.Fprintln(f.opts.ErrWriter, "Staged changes have been unstaged.")
}
