package main

import (
	"github.com/spf13/cobra"

	"github.com/gorewood/ideabook/internal/config"
	"github.com/gorewood/ideabook/internal/preview"
)

// newPreviewCmd creates the preview command.
func newPreviewCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "preview [path]",
		Short: "Serve the rendered book and rebuild it on change",
		Long: `Build the book, serve it over HTTP and rebuild it whenever a Markdown
file under the source directory changes. Stop with Ctrl-C.

The book is the configured repository unless a path is given.

Examples:
  ideabook preview                       # http://127.0.0.1:3000
  ideabook preview --addr :8080          # Listen on every interface
  ideabook preview ~/notes/other-book    # Preview another book`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer := newPrinter(cmd)
			err := func() error {
				root, err := bookRoot(config.NewDefaultStore(), args)
				if err != nil {
					return err
				}
				srv, err := preview.NewServer(root, c.logger)
				if err != nil {
					return err
				}
				if !printer.IsJSON() {
					printer.KeyValue("Serving", root)
					printer.KeyValue("URL", "http://"+addr)
				}
				return srv.ListenAndServe(cmd.Context(), addr)
			}()
			if err != nil {
				printer.Error(err)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", preview.DefaultAddr, "Listen address")
	return cmd
}
