package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/librarian/internal/catalog"
	"github.com/mrlokans/librarian/internal/database"
)

func newDumpIndexCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump-index [name]",
		Short: "Print the tree behind a secondary index",
		Long: `The dump-index command draws the balanced tree behind one index of the
saved catalog. Without a name it lists the available indexes.

Example:
  librarian dump-index
  librarian dump-index book.title`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(cmd.Context(), func(store *catalog.Store, _ *database.Database) error {
				w := cmd.OutOrStdout()
				if len(args) == 0 {
					names := store.IndexNames()
					if opts.jsonOut {
						return printJSON(w, names)
					}
					for _, name := range names {
						fmt.Fprintln(w, name)
					}
					return nil
				}

				out, err := store.RenderIndex(args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(w, out)
				return nil
			})
		},
	}
}
