package git

import (
	"testing"
	"time"
)

func TestParseCommits(t *testing.T) {
	raw := "abc123" + fieldSeparator + "abc" + fieldSeparator + "first idea" + fieldSeparator +
		"Ada" + fieldSeparator + "1700000000" + commitSeparator + "\n" +
		"def456" + fieldSeparator + "def" + fieldSeparator + "second" + fieldSeparator +
		"Bob" + fieldSeparator + "not-a-number" + commitSeparator

	commits := parseCommits(raw)
	if len(commits) != 2 {
		t.Fatalf("parseCommits() returned %d commits, want 2", len(commits))
	}

	first := commits[0]
	if first.SHA != "abc123" || first.Short != "abc" || first.Subject != "first idea" || first.Author != "Ada" {
		t.Errorf("first commit = %+v", first)
	}
	if !first.Date.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("first.Date = %v", first.Date)
	}
	if !commits[1].Date.Equal(time.Unix(0, 0)) {
		t.Errorf("bad timestamp should parse as epoch, got %v", commits[1].Date)
	}
}

func TestParseCommits_SkipsMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "empty", raw: "", want: 0},
		{name: "too few fields", raw: "abc" + fieldSeparator + "a" + commitSeparator, want: 0},
		{name: "whitespace only", raw: "  \n" + commitSeparator + "\n", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseCommits(tt.raw); len(got) != tt.want {
				t.Errorf("parseCommits() = %v, want %d commits", got, tt.want)
			}
		})
	}
}
