// Package proc runs interactive external programs such as the editor and
// the pager, blocking until they exit.
package proc

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/gorewood/ideabook/internal/output"
)

// Runner starts a program and waits for it to exit.
//
// Run returns the program's exit code. The error is non-nil only when the
// program could not be started at all; a non-zero exit code is not an error.
type Runner interface {
	Run(ctx context.Context, bin string, args ...string) (int, error)
}

// ExecRunner runs programs with os/exec, attached to the given streams.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewTerminalRunner returns an ExecRunner attached to the process's own
// stdin, stdout and stderr, as editors and pagers need a terminal.
func NewTerminalRunner() *ExecRunner {
	return &ExecRunner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, bin string, args ...string) (int, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Start(); err != nil {
		return -1, output.NewProcessLaunchError("unable to start "+bin, err)
	}

	err := cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, output.NewProcessLaunchError("lost track of "+bin, err)
}

// LookPathFunc resolves an executable name to an absolute path.
type LookPathFunc func(name string) (string, error)

// Resolve returns the absolute path of the named executable on PATH.
// Names that already contain a path separator are checked as given.
func Resolve(name string) (string, error) {
	return resolveWith(exec.LookPath, name)
}

func resolveWith(lookPath LookPathFunc, name string) (string, error) {
	if name == "" {
		return "", output.NewProcessLaunchError("no executable name given", nil)
	}
	path, err := lookPath(name)
	if err != nil {
		return "", output.NewProcessLaunchError("cannot locate executable "+name+" on your system", err)
	}
	return path, nil
}

// FirstAvailable resolves the first of names found on PATH.
func FirstAvailable(lookPath LookPathFunc, names ...string) (string, error) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	var lastErr error
	for _, name := range names {
		path, err := resolveWith(lookPath, name)
		if err == nil {
			return path, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = output.NewProcessLaunchError("no executable name given", nil)
	}
	return "", lastErr
}
