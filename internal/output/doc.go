// Package output provides human and JSON output plus exit-coded errors for
// the ideabook CLI.
//
// # Printer
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), jsonMode, output.IsTTY(cmd.OutOrStdout()))
//	printer.Banner("Welcome to ideabook", "Let's set up your idea book.")
//	printer.Prompt("Author name")
//	printer.Success(map[string]any{"message": "Idea committed"})
//	printer.Error(err)
//
// Styling is lipgloss based and disabled when output is not a terminal.
//
// # Errors
//
// ExitError carries an exit code and a Kind. Constructors exist for each
// kind the CLI distinguishes:
//
//	output.NewNotFoundError("repo_path is not set")      // exit 1, KindNotFound
//	output.NewLookupError("no chapter numbered 7")        // exit 1, KindLookup
//	output.NewIOError("cannot append to SUMMARY.md", err) // exit 2, KindIO
//	output.NewProcessLaunchError("cannot start vim", err) // exit 2, KindProcessLaunch
//
// Kinds can be matched through wrapping with errors.Is and the sentinels
// ErrNotFound, ErrIO, ErrProcessLaunch and ErrLookup.
package output
