package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrlokans/librarian/internal/catalog"
	"github.com/mrlokans/librarian/internal/database"
	"github.com/mrlokans/librarian/internal/entities"
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <books|members|authors|genres> [criterion] <value>",
		Short: "Search the catalog by prefix",
		Long: `The search command runs the same indexed lookups as the API.
Books take isbn, title or author; members take email, name or phone. Authors
and genres are always matched by name, so they take no criterion. Matching
ignores case, accents and extra spaces.

Example:
  librarian search books title "cien anos"
  librarian search members email juan@
  librarian search genres fant`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(cmd.Context(), func(store *catalog.Store, _ *database.Database) error {
				return runSearch(cmd.OutOrStdout(), opts, store, args)
			})
		},
	}
}

func runSearch(w io.Writer, opts *rootOptions, store *catalog.Store, args []string) error {
	entity := args[0]
	criterion, value := "", args[len(args)-1]
	if len(args) == 3 {
		criterion = args[1]
	}

	var results any
	var count int
	switch entity {
	case "books":
		if criterion == "" {
			criterion = catalog.AttrTitle
		}
		books, err := store.SearchBooks(criterion, value)
		if err != nil {
			return err
		}
		results, count = books, len(books)
		if !opts.jsonOut {
			printBooks(w, books)
		}
	case "members":
		if criterion == "" {
			criterion = catalog.AttrName
		}
		members, err := store.SearchMembers(criterion, value)
		if err != nil {
			return err
		}
		results, count = members, len(members)
		if !opts.jsonOut {
			for _, m := range members {
				fmt.Fprintf(w, "%-30s %-25s %s\n", m.Email, m.Name, m.Phone)
			}
		}
	case "authors", "genres":
		if len(args) == 3 {
			return fmt.Errorf("%s are searched by name only", entity)
		}
		var rows [][2]string
		if entity == "authors" {
			authors := store.SearchAuthors(value)
			results = authors
			for _, a := range authors {
				rows = append(rows, [2]string{a.ID, a.Name})
			}
		} else {
			genres := store.SearchGenres(value)
			results = genres
			for _, g := range genres {
				rows = append(rows, [2]string{g.ID, g.Name})
			}
		}
		count = len(rows)
		if !opts.jsonOut {
			for _, r := range rows {
				fmt.Fprintf(w, "%-36s %s\n", r[0], r[1])
			}
		}
	default:
		return fmt.Errorf("unknown entity %q: use books, members, authors or genres", entity)
	}

	if opts.jsonOut {
		return printJSON(w, results)
	}
	fmt.Fprintf(w, "%d result(s)\n", count)
	return nil
}

func printBooks(w io.Writer, books []entities.Book) {
	for _, b := range books {
		status := "available"
		if !b.Available {
			status = "on loan"
		}
		fmt.Fprintf(w, "%-13s  %-40s %-25s %s\n", b.ISBN, b.Title, b.Author, status)
	}
}
