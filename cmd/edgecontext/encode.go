package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	edgecontext "github.com/auth0/go-edge-context"
	"github.com/auth0/go-edge-context/core"
)

// unvalidated is used where a factory only encodes headers.
type unvalidated struct{}

func (unvalidated) Validate(context.Context, string) core.TrustDecision { return core.Invalid{} }

func newEncodeCmd(a *app) *cobra.Command {
	var (
		token       string
		loid        string
		loidCreated int64
		session     string
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode an edge request header",
		Long: `Encodes the given parts into an edge request header and prints it in the
base64 form used by the X-Edge-Request HTTP header. All parts are optional.`,
		Example: `  # Header for an anonymous visitor
  edgecontext encode --loid t2_abc --loid-created 1700000000000 --session s1

  # Header carrying a token read from stdin
  echo "eyJ..." | edgecontext encode --token -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rawToken, err := a.readArg(token)
			if err != nil {
				return fmt.Errorf("failed to read token from stdin: %w", err)
			}

			factory, err := edgecontext.NewFactory(
				edgecontext.WithTokenValidator(unvalidated{}),
				edgecontext.WithLogger(edgecontext.NewZerologLogger(a.logger)),
			)
			if err != nil {
				return err
			}

			parts := edgecontext.Parts{
				Token:     rawToken,
				VisitorID: loid,
				SessionID: session,
			}
			if cmd.Flags().Changed("loid-created") {
				parts.VisitorCreatedMS = &loidCreated
			}

			ec, err := factory.NewFromParts(cmd.Context(), parts)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), ec.HeaderValue())
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&token, "token", "", `Authentication token ("-" reads it from stdin)`)
	flags.StringVar(&loid, "loid", "", "Visitor id, must start with t2_")
	flags.Int64Var(&loidCreated, "loid-created", 0, "Visitor id creation time in milliseconds since the epoch")
	flags.StringVar(&session, "session", "", "Session id")

	return cmd
}
