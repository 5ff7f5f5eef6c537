package git

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gorewood/ideabook/internal/output"
)

// Commit represents a git commit with its metadata.
type Commit struct {
	SHA     string    `json:"sha"`
	Short   string    `json:"short"`
	Subject string    `json:"subject"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
}

// commitSeparator is used to delimit commits in log output.
const commitSeparator = "---COMMIT-BOUNDARY---"

// fieldSeparator is used to delimit fields within a commit.
const fieldSeparator = "---FIELD---"

// logFormat is the --pretty format matching parseCommitFields.
var logFormat = strings.Join([]string{
	"%H",  // Full SHA
	"%h",  // Short SHA
	"%s",  // Subject
	"%an", // Author name
	"%at", // Unix timestamp
}, fieldSeparator) + commitSeparator

// Log returns up to limit commits reachable from HEAD, newest first.
// A limit of zero or less returns the whole history. A repository without
// commits yields an empty slice.
func (r *Repo) Log(ctx context.Context, limit int) ([]Commit, error) {
	if _, err := r.Run(ctx, "rev-parse", "--verify", "--quiet", "HEAD"); err != nil {
		if errors.Is(err, output.ErrProcessLaunch) {
			return nil, err
		}
		return []Commit{}, nil
	}

	args := []string{"log", "--pretty=format:" + logFormat}
	if limit > 0 {
		args = append(args, "-n", strconv.Itoa(limit))
	}
	out, err := r.Run(ctx, args...)
	if err != nil {
		return nil, output.NewSystemErrorWithCause("failed to read git log", err)
	}

	return parseCommits(out), nil
}

// parseCommits parses the custom formatted git log output into Commit structs.
func parseCommits(out string) []Commit {
	if out == "" {
		return nil
	}

	var commits []Commit
	for commitStr := range strings.SplitSeq(out, commitSeparator) {
		commitStr = strings.TrimSpace(commitStr)
		if commitStr == "" {
			continue
		}

		if commit, ok := parseCommitFields(commitStr); ok {
			commits = append(commits, commit)
		}
	}

	return commits
}

// parseCommitFields parses a single commit string into a Commit struct.
// Returns the commit and true if successful, zero value and false otherwise.
func parseCommitFields(commitStr string) (Commit, bool) {
	fields := strings.Split(commitStr, fieldSeparator)
	if len(fields) < 5 {
		return Commit{}, false
	}

	timestamp, err := strconv.ParseInt(strings.TrimSpace(fields[4]), 10, 64)
	if err != nil {
		timestamp = 0
	}

	return Commit{
		SHA:     strings.TrimSpace(fields[0]),
		Short:   strings.TrimSpace(fields[1]),
		Subject: strings.TrimSpace(fields[2]),
		Author:  strings.TrimSpace(fields[3]),
		Date:    time.Unix(timestamp, 0),
	}, true
}
