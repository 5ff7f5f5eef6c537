package git

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/gorewood/ideabook/internal/output"
)

// Repo runs git commands against a single working tree.
type Repo struct {
	dir string
}

// Open returns a Repo for the working tree at dir. It does not check that
// dir is a git repository; use IsRepo for that.
func Open(dir string) *Repo {
	return &Repo{dir: dir}
}

// Dir returns the working tree directory.
func (r *Repo) Dir() string {
	return r.dir
}

// Run executes a git command inside the working tree.
// It captures stdout and returns it as a trimmed string.
// Returns an *output.ExitError on failure with appropriate exit code.
func (r *Repo) Run(ctx context.Context, args ...string) (string, error) {
	return RunContext(ctx, r.dir, args...)
}

// RunContext executes git with the given arguments in dir.
// An empty dir runs in the current working directory.
func RunContext(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", output.NewProcessLaunchError("git not found: ensure git is installed and in PATH", err)
		}

		errMsg := strings.TrimSpace(stderr.String())
		if errMsg == "" {
			errMsg = err.Error()
		}
		return "", output.NewSystemErrorWithCause("git command failed: "+errMsg, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// IsRepo checks if the working tree is inside a git repository.
func (r *Repo) IsRepo(ctx context.Context) bool {
	_, err := r.Run(ctx, "rev-parse", "--git-dir")
	return err == nil
}

// Init creates a new repository in the working tree.
func (r *Repo) Init(ctx context.Context) error {
	if _, err := r.Run(ctx, "init"); err != nil {
		return output.NewSystemErrorWithCause("failed to initialize git repository in "+r.dir, err)
	}
	return nil
}

// HEAD returns the full SHA of the current HEAD commit.
func (r *Repo) HEAD(ctx context.Context) (string, error) {
	sha, err := r.Run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", output.NewSystemErrorWithCause("failed to get HEAD", err)
	}
	return sha, nil
}

// Add stages the given paths.
func (r *Repo) Add(ctx context.Context, paths ...string) error {
	args := append([]string{"add", "--"}, paths...)
	if _, err := r.Run(ctx, args...); err != nil {
		return output.NewSystemErrorWithCause("failed to stage "+strings.Join(paths, ", "), err)
	}
	return nil
}

// Commit records the given paths with message. The -- before the paths
// keeps unrelated staged files out of the commit.
func (r *Repo) Commit(ctx context.Context, message string, paths ...string) error {
	args := append([]string{"commit", "-m", message, "--"}, paths...)
	if _, err := r.Run(ctx, args...); err != nil {
		return output.NewSystemErrorWithCause("failed to commit "+strings.Join(paths, ", "), err)
	}
	return nil
}

// AddAndCommit stages the paths and commits them with message.
func (r *Repo) AddAndCommit(ctx context.Context, message string, paths ...string) error {
	if err := r.Add(ctx, paths...); err != nil {
		return err
	}
	return r.Commit(ctx, message, paths...)
}

// HasChanges reports whether the given paths (the whole tree when none are
// given) have staged, unstaged or untracked changes.
func (r *Repo) HasChanges(ctx context.Context, paths ...string) bool {
	args := append([]string{"status", "--porcelain", "--"}, paths...)
	out, err := r.Run(ctx, args...)
	if err != nil {
		return false
	}
	return strings.TrimSpace(out) != ""
}
