package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/librarian/internal/auth"
	"github.com/mrlokans/librarian/internal/config"
)

func newHashTokenCmd(opts *rootOptions) *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-token [token]",
		Short: "Hash an API token for AUTH_TOKEN_HASH",
		Long: `The hash-token command prints the bcrypt hash to put in AUTH_TOKEN_HASH.
Without an argument a random token is generated and printed too; keep it,
it cannot be recovered from the hash.

Example:
  librarian hash-token
  librarian hash-token "my-long-front-desk-token"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("cost") {
				cost = config.NewConfig().Auth.BcryptCost
			}

			var token string
			generated := len(args) == 0
			if generated {
				var err error
				if token, err = auth.GenerateToken(); err != nil {
					return err
				}
			} else {
				token = args[0]
			}

			hash, err := auth.HashToken(token, cost)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if opts.jsonOut {
				out := map[string]string{"hash": hash}
				if generated {
					out["token"] = token
				}
				return printJSON(w, out)
			}
			if generated {
				fmt.Fprintf(w, "token: %s\n", token)
			}
			fmt.Fprintf(w, "AUTH_TOKEN_HASH=%s\n", hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 0, "bcrypt cost (default AUTH_BCRYPT_COST)")
	return cmd
}
