// Package output provides structured output and error handling for the ideabook CLI.
package output

import "errors"

// Exit codes returned by the CLI:
// 0 = Success
// 1 = User error (bad input, missing config, unknown chapter)
// 2 = System error (I/O failure, editor or git could not be started)
// 3 = Conflict (idea file already exists)
const (
	ExitSuccess     = 0
	ExitUserError   = 1
	ExitSystemError = 2
	ExitConflict    = 3
)

// Kind classifies an ExitError independently of its exit code so callers
// can decide whether to re-prompt, retry, or give up.
type Kind int

// Error kinds.
const (
	KindUnknown Kind = iota
	KindNotFound
	KindIO
	KindProcessLaunch
	KindLookup
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindIO:
		return "io"
	case KindProcessLaunch:
		return "process_launch"
	case KindLookup:
		return "lookup"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching against an ExitError's kind.
var (
	ErrNotFound      = errors.New("not found")
	ErrIO            = errors.New("i/o failure")
	ErrProcessLaunch = errors.New("process launch failure")
	ErrLookup        = errors.New("lookup failure")
)

// ExitError is an error that carries an exit code for the CLI.
type ExitError struct {
	Code    int
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/errors.As support.
func (e *ExitError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for this error's kind.
func (e *ExitError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrIO:
		return e.Kind == KindIO
	case ErrProcessLaunch:
		return e.Kind == KindProcessLaunch
	case ErrLookup:
		return e.Kind == KindLookup
	}
	return false
}

// NewUserError creates an error for user-caused issues (exit code 1).
func NewUserError(message string) *ExitError {
	return &ExitError{
		Code:    ExitUserError,
		Message: message,
	}
}

// NewSystemError creates an error for system failures (exit code 2).
func NewSystemError(message string) *ExitError {
	return &ExitError{
		Code:    ExitSystemError,
		Message: message,
	}
}

// NewSystemErrorWithCause creates a system error wrapping an underlying cause.
func NewSystemErrorWithCause(message string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitSystemError,
		Message: message,
		Cause:   cause,
	}
}

// NewConflictError creates an error for conflict situations (exit code 3).
func NewConflictError(message string) *ExitError {
	return &ExitError{
		Code:    ExitConflict,
		Message: message,
	}
}

// NewNotFoundError reports a missing value, such as an absent config key.
func NewNotFoundError(message string) *ExitError {
	return &ExitError{
		Code:    ExitUserError,
		Kind:    KindNotFound,
		Message: message,
	}
}

// NewIOError reports a failed file read or write.
func NewIOError(message string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitSystemError,
		Kind:    KindIO,
		Message: message,
		Cause:   cause,
	}
}

// NewProcessLaunchError reports an external program that could not be found or started.
func NewProcessLaunchError(message string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitSystemError,
		Kind:    KindProcessLaunch,
		Message: message,
		Cause:   cause,
	}
}

// NewLookupError reports a chapter number that is not in the index.
func NewLookupError(message string) *ExitError {
	return &ExitError{
		Code:    ExitUserError,
		Kind:    KindLookup,
		Message: message,
	}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil, ExitUserError for non-ExitError errors.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return ExitUserError
}

// KindOf returns the kind of the first ExitError in err's chain.
func KindOf(err error) Kind {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Kind
	}
	return KindUnknown
}
