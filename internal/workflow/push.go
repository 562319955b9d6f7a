package workflow

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// promptPush asks whether to push after a successful commit. Only a
// case-insensitive "y" pushes; anything else, including no input at all,
// skips. A failed push is reported but never taints the committed outcome.
func (f *Flow) promptPush() {
	stdin := f.opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}

	// Without a terminal there is nobody to answer; skip silently.
	if file, ok := stdin.(*os.File); ok {
		if !isatty.IsTerminal(file.Fd()) && !isatty.IsCygwinTerminal(file.Fd()) {
			return
		}
	}

	fmt.Fprint(f.opts.ErrWriter, "Push to remote? [y/N]: ")
	reader := bufio.NewReader(stdin)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return
	}

	if !strings.EqualFold(strings.TrimSpace(response), "y") {
		return
	}

	fmt.Fprintln(f.opts.ErrWriter, "Pushing current branch...")
	if err := f.git.Push(f.opts.OutWriter, f.opts.ErrWriter); err != nil {
		fmt.Fprintf(f.opts.ErrWriter, "Warning: %v\n", err)
		return
	}
	fmt.Fprintln(f.opts.ErrWriter, "Pushed successfully.")
}
