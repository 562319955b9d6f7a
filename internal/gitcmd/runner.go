// Package gitcmd runs the git binary with shared logging and output capture.
package gitcmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Runner executes git commands. The zero value runs in the current directory
// with logging to stderr.
type Runner struct {
	Verbose bool
	Dir     string
	Env     []string
	Logger  io.Writer
}

// Result holds captured stdout/stderr for one git invocation.
type Result struct {
	Stdout []byte
	Stderr []byte
}

func (r Result) StdoutString(trim bool) string {
	out := string(r.Stdout)
	if trim {
		return strings.TrimSpace(out)
	}
	return out
}

func (r Result) StderrString(trim bool) string {
	out := string(r.Stderr)
	if trim {
		return strings.TrimSpace(out)
	}
	return out
}

func (r Runner) logger() io.Writer {
	if r.Logger != nil {
		return r.Logger
	}
	return os.Stderr
}

func (r Runner) command(args ...string) *exec.Cmd {
	cmd := exec.Command("git", args...)
	if r.Dir != "" {
		cmd.Dir = r.Dir
	}
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	return cmd
}

func (r Runner) log(args []string) {
	if !r.Verbose {
		return
	}
	fmt.Fprintf(r.logger(), "Running: git %s\n", strings.Join(args, " "))
}

// Run executes a git command, logs it when verbose, and captures stdout/stderr.
func (r Runner) Run(args ...string) (Result, error) {
	r.log(args)
	cmd := r.command(args...)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	return Result{Stdout: outBuf.Bytes(), Stderr: errBuf.Bytes()}, err
}

// RunWithWriters executes a git command with output streamed to the given
// writers instead of being captured.
func (r Runner) RunWithWriters(stdout, stderr io.Writer, args ...string) error {
	r.log(args)
	cmd := r.command(args...)
	if stdout != nil {
		cmd.Stdout = stdout
	}
	if stderr != nil {
		cmd.Stderr = stderr
	}
	return cmd.Run()
}
