package main

import (
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gorewood/ideabook/internal/config"
	"github.com/gorewood/ideabook/internal/library"
	"github.com/gorewood/ideabook/internal/output"
)

// newLibraryCmd creates the library command and its subcommands.
func newLibraryCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Manage the registry of idea books",
		Long: `Keep several idea books in one registry (library.yaml in the config
directory) so they can be listed and refreshed together.

Examples:
  ideabook library add                 # Register the configured book
  ideabook library add ~/notes/other   # Register another book
  ideabook library list --json         # Registered books as JSON
  ideabook library refresh             # Reload names and chapter counts`,
	}
	cmd.AddCommand(newLibraryAddCmd(c), newLibraryRemoveCmd(), newLibraryListCmd(), newLibraryRefreshCmd(c))
	return cmd
}

// openLibrary loads the registry for the default config directory.
func openLibrary() (*config.Store, *library.Library, error) {
	store := config.NewDefaultStore()
	lib, err := library.Load(library.Path(store.Dir()))
	if err != nil {
		return nil, nil, err
	}
	return store, lib, nil
}

// bookRoot returns the path given on the command line, or the configured
// book repository when none was given.
func bookRoot(store *config.Store, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return store.Read(config.Repo)
}

func newLibraryAddCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "add [path]",
		Short: "Register a book (default: the configured repository)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer := newPrinter(cmd)
			err := func() error {
				store, lib, err := openLibrary()
				if err != nil {
					return err
				}
				root, err := bookRoot(store, args)
				if err != nil {
					return err
				}
				member, err := lib.Add(root)
				if err != nil {
					return err
				}
				if err := lib.Save(); err != nil {
					return err
				}
				c.logger.Debug("library member added", zap.String("path", member.Path))
				return printer.Success(map[string]any{
					"message":  "Added " + member.Name + " (" + strconv.Itoa(member.Count) + " chapters)",
					"name":     member.Name,
					"path":     member.Path,
					"chapters": member.Count,
				})
			}()
			if err != nil {
				printer.Error(err)
			}
			return err
		},
	}
}

func newLibraryRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <path>",
		Short: "Unregister a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer := newPrinter(cmd)
			err := func() error {
				_, lib, err := openLibrary()
				if err != nil {
					return err
				}
				if !lib.Remove(args[0]) {
					return output.NewNotFoundError(args[0] + " is not in the library")
				}
				if err := lib.Save(); err != nil {
					return err
				}
				return printer.Success(map[string]any{
					"message": "Removed " + args[0],
					"path":    args[0],
				})
			}()
			if err != nil {
				printer.Error(err)
			}
			return err
		},
	}
}

func newLibraryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printer := newPrinter(cmd)
			_, lib, err := openLibrary()
			if err != nil {
				printer.Error(err)
				return err
			}
			printMembers(printer, lib.Name, lib.Members())
			return nil
		},
	}
}

func newLibraryRefreshCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Reload every registered book and update the registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printer := newPrinter(cmd)
			err := func() error {
				_, lib, err := openLibrary()
				if err != nil {
					return err
				}
				results, err := lib.Refresh(cmd.Context())
				if err != nil {
					return err
				}
				failed := 0
				for _, r := range results {
					if r.Err != nil {
						failed++
						printer.Warn("could not refresh %s: %v", r.Member.Path, r.Err)
					}
				}
				if err := lib.Save(); err != nil {
					return err
				}
				c.logger.Debug("library refreshed", zap.Int("books", len(results)), zap.Int("failed", failed))
				if printer.IsJSON() {
					return printer.WriteJSON(map[string]any{
						"name":   lib.Name,
						"books":  lib.Members(),
						"failed": failed,
					})
				}
				printMembers(printer, lib.Name, lib.Members())
				return nil
			}()
			if err != nil {
				printer.Error(err)
			}
			return err
		},
	}
}

// printMembers prints the registry as JSON or as a table.
func printMembers(printer *output.Printer, name string, members []library.Member) {
	if printer.IsJSON() {
		_ = printer.WriteJSON(map[string]any{"name": name, "books": members})
		return
	}
	if len(members) == 0 {
		printer.Println("No books in the library. Add one with 'ideabook library add'.")
		return
	}
	printer.Section(name)
	rows := make([][]string, 0, len(members))
	for _, m := range members {
		rows = append(rows, []string{m.Name, strconv.Itoa(m.Count), printer.Dim(m.Path)})
	}
	printer.Table([]string{"Book", "Chapters", "Path"}, rows)
}
