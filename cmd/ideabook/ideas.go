package main

import (
	"github.com/spf13/cobra"

	"github.com/gorewood/ideabook/internal/ideabook"
)

// defaultHistoryLimit is the number of commits history shows by default.
const defaultHistoryLimit = 10

// newViewCmd creates the view command.
func newViewCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "view",
		Aliases: []string{"v"},
		Short:   "Show an idea in your pager",
		Long: `Choose an idea from the book and open it in a pager.

The pager is $IDEABOOK_PAGER when set, otherwise the first of bat and less
found on PATH. Without a usable pager the idea is rendered in the terminal.

Examples:
  ideabook view          # Pick an idea and page through it
  ideabook v --json      # Print the chosen idea's content as JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runApp(cmd, func(app *ideabook.App) error {
				return app.View(cmd.Context())
			})
		},
	}
}

// newEditCmd creates the edit command.
func newEditCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit an existing idea and commit the change",
		Long: `Choose an idea, open it in your editor and commit any change with the
message "Update <name>". Nothing is committed when the file is unchanged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runApp(cmd, func(app *ideabook.App) error {
				return app.EditExisting(cmd.Context())
			})
		},
	}
}

// newListCmd creates the list command.
func newListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the ideas in the book",
		Long: `List the top-level chapters of the book with their numbers and files.

Examples:
  ideabook list          # Table of ideas
  ideabook list --json   # Ideas as JSON for scripting`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runApp(cmd, func(app *ideabook.App) error {
				return app.ListChapters()
			})
		},
	}
}

// newHistoryCmd creates the history command.
func newHistoryCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent commits of the book repository",
		Long: `Show the most recent commits of the book repository, newest first.

Examples:
  ideabook history              # Last 10 commits
  ideabook history --limit 0    # Every commit
  ideabook history --json       # Commits as JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runApp(cmd, func(app *ideabook.App) error {
				return app.History(cmd.Context(), limit)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "Number of commits to show (0 for all)")
	return cmd
}

// newBuildBookCmd creates the build-book command.
func newBuildBookCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "build-book",
		Short: "Render the book to HTML",
		Long: `Render every chapter of the book to HTML in its build directory
(book/ unless book.yaml sets build_dir).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runApp(cmd, func(app *ideabook.App) error {
				return app.BuildBook()
			})
		},
	}
}

// newClearRepoCmd creates the clear-repo command.
func newClearRepoCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-repo",
		Short: "Forget the configured book repository",
		Long:  `Remove the stored repository path. The next run asks for it again.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runApp(cmd, func(app *ideabook.App) error {
				return app.ClearRepo()
			})
		},
	}
}

// newClearEditorCmd creates the clear-editor command.
func newClearEditorCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-editor",
		Short: "Forget the configured editor",
		Long:  `Remove the stored editor path. The next run asks for it again.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runApp(cmd, func(app *ideabook.App) error {
				return app.ClearEditor()
			})
		},
	}
}
