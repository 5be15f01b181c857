// Package cli holds the librarian command tree. Every command reads its
// settings from the environment through config.NewConfig.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrlokans/librarian/internal/catalog"
	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/database"
	"github.com/mrlokans/librarian/internal/entrypoint"
)

// options shared by every subcommand
type rootOptions struct {
	version string
	jsonOut bool
}

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the server.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{version: version}

	root := &cobra.Command{
		Use:   "librarian",
		Short: "Library catalog server and tools",
		Long: `librarian keeps a library catalog (books, members, loans, authors
and genres) in memory behind a JSON API and saves snapshots of it to SQLite.

Configuration comes from environment variables such as DATABASE_PATH,
AUTH_MODE and SNAPSHOT_SCHEDULE.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Output in JSON format")

	root.AddCommand(
		newServeCmd(opts),
		newSeedCmd(opts),
		newSearchCmd(opts),
		newDumpIndexCmd(opts),
		newRecommendCmd(opts),
		newHashTokenCmd(opts),
	)
	return root
}

// Execute runs the command tree and exits non-zero on error.
func Execute(version string) {
	if err := NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// withCatalog opens the catalog the server would see and hands it to fn.
func withCatalog(ctx context.Context, fn func(store *catalog.Store, db *database.Database) error) error {
	cfg := config.NewConfig()
	store, db, err := entrypoint.OpenCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}
	return fn(store, db)
}

// printJSON outputs data as indented JSON
func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
