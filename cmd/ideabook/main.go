// Package main provides the entry point for the ideabook CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gorewood/ideabook/internal/config"
	"github.com/gorewood/ideabook/internal/envfile"
	"github.com/gorewood/ideabook/internal/ideabook"
	"github.com/gorewood/ideabook/internal/library"
	"github.com/gorewood/ideabook/internal/output"
	"github.com/gorewood/ideabook/internal/prompt"
)

// Build info set via ldflags at build time by goreleaser.
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.date=2024-01-01"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// isJSONMode reads the --json persistent flag from the command hierarchy.
func isJSONMode(cmd *cobra.Command) bool {
	return flagValue(cmd, "json") == "true"
}

// useColor resolves the --color persistent flag against the command's output.
func useColor(cmd *cobra.Command) bool {
	return output.ResolveColorMode(flagValue(cmd, "color"), output.IsTTY(cmd.OutOrStdout()))
}

// flagValue looks a flag up on the command, then on the root's persistent flags.
func flagValue(cmd *cobra.Command, name string) string {
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup(name)
	}
	if flag == nil {
		return ""
	}
	return flag.Value.String()
}

// buildVersion returns the full version string including commit and date.
func buildVersion() string {
	if commit == "none" && date == "unknown" {
		return version
	}
	shortCommit := commit
	if len(commit) > 7 {
		shortCommit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", version, shortCommit, date)
}

func main() {
	code := run()
	os.Exit(code)
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd()
	err := fang.Execute(ctx, cmd, fang.WithVersion(buildVersion()))
	return output.GetExitCode(err)
}

// cli carries state shared by every command of one invocation.
type cli struct {
	logger *zap.Logger
}

// newRootCmd creates the root command for the ideabook CLI.
func newRootCmd() *cobra.Command {
	c := &cli{logger: zap.NewNop()}
	var verbose bool

	cmd := &cobra.Command{
		Use:   "ideabook",
		Short: "Record ideas as chapters of a git-backed Markdown book",
		Long: `Ideabook - record ideas as chapters of a Markdown book kept in git.

The first run asks for the book repository, your editor, your name and a
book title. Every run after that asks for a one-line idea summary, opens
your editor on <repo>/src/<summary>.md, adds the file to SUMMARY.md and
commits both with the summary as the commit message.

Commands that print results support --json for structured output.`,
		Version:       buildVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runApp(cmd, func(app *ideabook.App) error {
				return app.Run(cmd.Context())
			})
		},
	}

	cmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		logger, err := newLogger(verbose)
		if err != nil {
			return output.NewSystemErrorWithCause("failed to initialize logger", err)
		}
		c.logger = logger
		loadEnvFiles(c.logger)
		return nil
	}
	cmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		_ = c.logger.Sync()
	}

	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().String("color", output.ColorAuto, "Color output: auto, always or never")
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log debug detail to stderr")

	// Configure lipgloss for TTY detection
	lipgloss.SetHasDarkBackground(true)

	addCommandGroups(cmd)
	addCommands(cmd, c)

	return cmd
}

// newLogger builds the process logger: warnings and errors as JSON on
// stderr, or everything down to debug with --verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// loadEnvFiles loads IDEABOOK_* settings from env files. Variables already
// set always take precedence, so the first file to set a key wins.
//
// Resolution order:
//  1. $CWD/.env.local
//  2. $CWD/.env
//  3. <config dir>/env (after the first two may have moved the config dir)
func loadEnvFiles(logger *zap.Logger) {
	paths := []string{".env.local", ".env"}
	for _, path := range paths {
		loadEnvFile(logger, path)
	}
	if dir := config.Dir(); dir != "" {
		loadEnvFile(logger, filepath.Join(dir, "env"))
	}
}

func loadEnvFile(logger *zap.Logger, path string) {
	applied, err := envfile.Load(path)
	if err != nil {
		logger.Warn("skipping env file", zap.String("path", path), zap.Error(err))
		return
	}
	if len(applied) > 0 {
		logger.Debug("loaded env file", zap.String("path", path), zap.Strings("keys", applied))
	}
}

// addCommandGroups defines the command groups for help output.
func addCommandGroups(cmd *cobra.Command) {
	cmd.AddGroup(&cobra.Group{ID: "ideas", Title: "Idea Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "book", Title: "Book Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "admin", Title: "Admin Commands:"})
}

// addCommands adds all subcommands with their group assignments.
func addCommands(cmd *cobra.Command, c *cli) {
	// Idea commands: view, edit, list, history
	addGroupedCommand(cmd, newViewCmd(c), "ideas")
	addGroupedCommand(cmd, newEditCmd(c), "ideas")
	addGroupedCommand(cmd, newListCmd(c), "ideas")
	addGroupedCommand(cmd, newHistoryCmd(c), "ideas")

	// Book commands: build-book, preview, library, serve
	addGroupedCommand(cmd, newBuildBookCmd(c), "book")
	addGroupedCommand(cmd, newPreviewCmd(c), "book")
	addGroupedCommand(cmd, newLibraryCmd(c), "book")
	addGroupedCommand(cmd, newServeCmd(c), "book")

	// Admin commands: clear-repo, clear-editor
	addGroupedCommand(cmd, newClearRepoCmd(c), "admin")
	addGroupedCommand(cmd, newClearEditorCmd(c), "admin")
}

// addGroupedCommand adds a subcommand with a group assignment.
func addGroupedCommand(parent *cobra.Command, child *cobra.Command, groupID string) {
	child.GroupID = groupID
	parent.AddCommand(child)
}

// newPrinter creates the printer for a command's output.
func newPrinter(cmd *cobra.Command) *output.Printer {
	return output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd)).
		WithStderr(cmd.ErrOrStderr())
}

// loadLibrary reads the book registry from the config directory. A broken
// registry is reported and treated as absent so the main flow still works.
func loadLibrary(store *config.Store, printer *output.Printer) *library.Library {
	lib, err := library.Load(library.Path(store.Dir()))
	if err != nil {
		printer.Warn("ignoring library: %v", err)
		return nil
	}
	return lib
}

// newApp wires an App to the command's streams and the default config store.
func (c *cli) newApp(cmd *cobra.Command, printer *output.Printer) *ideabook.App {
	store := config.NewDefaultStore()
	in := cmd.InOrStdin()
	interactive := output.IsTTY(in) && !printer.IsJSON()
	return ideabook.New(ideabook.Options{
		Store:    store,
		Printer:  printer,
		Prompter: prompt.NewTerminal(in, printer, interactive),
		Library:  loadLibrary(store, printer),
		Logger:   c.logger,
	})
}

// runApp runs fn against a freshly wired App and prints any error it returns.
func (c *cli) runApp(cmd *cobra.Command, fn func(*ideabook.App) error) error {
	printer := newPrinter(cmd)
	if err := fn(c.newApp(cmd, printer)); err != nil {
		printer.Error(err)
		return err
	}
	return nil
}
