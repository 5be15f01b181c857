package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/librarian/internal/catalog"
	"github.com/mrlokans/librarian/internal/database"
	"github.com/mrlokans/librarian/internal/demo"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add the sample library to the database",
		Long: `The seed command loads the saved catalog, adds five books, five
members and three loans to it, and saves it back. Entries that already exist
are left alone, so running it twice is harmless.

Example:
  DATABASE_PATH=./librarian.db librarian seed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(cmd.Context(), func(store *catalog.Store, db *database.Database) error {
				if db == nil {
					return errors.New("seed needs SNAPSHOT_ENABLED=true and DEMO_MODE=false")
				}

				res, err := demo.Seed(store)
				if err != nil {
					return err
				}
				if err := db.SaveSnapshot(cmd.Context(), store.Snapshot()); err != nil {
					return err
				}

				if opts.jsonOut {
					return printJSON(cmd.OutOrStdout(), res)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", res)
				return nil
			})
		},
	}
}
