// Package prompt reads answers from the user: free-text lines and choices
// from a menu. On a terminal, menus are a filterable bubbletea list; on any
// other input they fall back to a numbered list read line by line.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gorewood/ideabook/internal/output"
)

// ErrCancelled is returned when the user backs out of a menu.
var ErrCancelled = errors.New("selection cancelled")

// Prompter asks the user for input.
type Prompter interface {
	// Line prints label and returns one line of input without its line ending.
	Line(label string) (string, error)
	// Select shows label and items and returns the chosen item's index.
	Select(label string, items []string) (int, error)
}

// Terminal is a Prompter reading from an input stream and writing through a Printer.
type Terminal struct {
	in      *bufio.Reader
	rawIn   io.Reader
	printer *output.Printer

	// Interactive enables the bubbletea menu for Select.
	Interactive bool
}

// NewTerminal creates a Terminal prompter. Interactive menus are used when
// interactive is true; otherwise Select prints a numbered list.
func NewTerminal(in io.Reader, printer *output.Printer, interactive bool) *Terminal {
	return &Terminal{
		in:          bufio.NewReader(in),
		rawIn:       in,
		printer:     printer,
		Interactive: interactive,
	}
}

// Line prints label followed by "> " and reads a line. Trailing "\r\n" and
// surrounding whitespace are removed. A closed input with nothing read is
// a user error.
func (t *Terminal) Line(label string) (string, error) {
	t.printer.Prompt(label)
	line, err := t.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", output.NewIOError("failed to read input", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		return "", output.NewUserError("input closed before an answer was given")
	}
	return strings.TrimSpace(line), nil
}

// Select asks the user to choose one of items.
func (t *Terminal) Select(label string, items []string) (int, error) {
	if len(items) == 0 {
		return 0, output.NewUserError("nothing to choose from")
	}
	if t.Interactive {
		return runMenu(label, items, t.rawIn, t.printer.Writer())
	}
	return t.selectNumbered(label, items)
}

// selectNumbered prints "  1) item" lines and reads a 1-based choice until
// a valid one is entered.
func (t *Terminal) selectNumbered(label string, items []string) (int, error) {
	t.printer.Println(label)
	for i, item := range items {
		t.printer.Print("  %s %s\n", t.printer.Accent(strconv.Itoa(i+1)+")"), item)
	}
	for {
		answer, err := t.Line("")
		if err != nil {
			return 0, err
		}
		n, convErr := strconv.Atoi(answer)
		if convErr == nil && n >= 1 && n <= len(items) {
			return n - 1, nil
		}
		t.printer.Warn("enter a number between 1 and %d", len(items))
	}
}

// NonEmpty repeats Line until the answer is not blank.
func NonEmpty(p Prompter, label string) (string, error) {
	for {
		answer, err := p.Line(label)
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
	}
}

// Scripted is a Prompter that replays canned answers. It is used where no
// terminal is available, such as tests and non-interactive callers.
type Scripted struct {
	Lines   []string
	Choices []int

	// Labels records every label asked, in order.
	Labels []string
}

// Line returns the next scripted line.
func (s *Scripted) Line(label string) (string, error) {
	s.Labels = append(s.Labels, label)
	if len(s.Lines) == 0 {
		return "", output.NewUserError(fmt.Sprintf("no scripted answer for %q", label))
	}
	line := s.Lines[0]
	s.Lines = s.Lines[1:]
	return line, nil
}

// Select returns the next scripted choice.
func (s *Scripted) Select(label string, items []string) (int, error) {
	s.Labels = append(s.Labels, label)
	if len(s.Choices) == 0 {
		return 0, output.NewUserError(fmt.Sprintf("no scripted choice for %q", label))
	}
	choice := s.Choices[0]
	s.Choices = s.Choices[1:]
	if choice < 0 || choice >= len(items) {
		return 0, output.NewUserError(fmt.Sprintf("scripted choice %d out of range", choice))
	}
	return choice, nil
}
