package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/librarian/internal/catalog"
	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/database"
	"github.com/mrlokans/librarian/internal/recommend"
)

func newRecommendCmd(opts *rootOptions) *cobra.Command {
	var (
		limit   int
		similar bool
	)

	cmd := &cobra.Command{
		Use:   "recommend <email>",
		Short: "Suggest books for a member",
		Long: `The recommend command suggests available books that were borrowed by
the same people as the member's own books, best match first. With --similar
it lists the members whose borrowing history overlaps the most instead.

Example:
  librarian recommend juan@email.com
  librarian recommend juan@email.com --similar --limit 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("limit") {
				limit = config.NewConfig().Recommend.Limit
			}
			return withCatalog(cmd.Context(), func(store *catalog.Store, _ *database.Database) error {
				engine := recommend.NewEngine(store)
				w := cmd.OutOrStdout()

				if similar {
					members, err := engine.SimilarMembers(args[0], limit)
					if err != nil {
						return err
					}
					if opts.jsonOut {
						return printJSON(w, members)
					}
					for _, m := range members {
						fmt.Fprintf(w, "%-30s %.2f\n", m.Email, m.Similarity)
					}
					return nil
				}

				recs, err := engine.RecommendBooks(args[0], limit)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return printJSON(w, recs)
				}
				for _, r := range recs {
					fmt.Fprintf(w, "%3d  %-13s  %s\n", r.Score, r.Book.ISBN, r.Book.Title)
				}
				if len(recs) == 0 {
					fmt.Fprintln(w, "No recommendations yet")
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum results (0 = all; default RECOMMEND_LIMIT)")
	cmd.Flags().BoolVar(&similar, "similar", false, "List similar members instead of books")
	return cmd
}
