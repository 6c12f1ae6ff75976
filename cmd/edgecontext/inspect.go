package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	edgecontext "github.com/auth0/go-edge-context"
	"github.com/auth0/go-edge-context/core"
)

type report struct {
	Envelope    envelopeReport `json:"envelope"`
	Valid       bool           `json:"valid"`
	UserID      string         `json:"user_id,omitempty"`
	Roles       []string       `json:"roles,omitempty"`
	Service     string         `json:"service,omitempty"`
	OAuthClient string         `json:"oauth_client_id,omitempty"`
	EventFields map[string]any `json:"event_fields"`
}

// envelopeReport never includes the token itself.
type envelopeReport struct {
	HasToken         bool   `json:"has_token"`
	VisitorID        string `json:"loid,omitempty"`
	VisitorCreatedMS *int64 `json:"loid_created_ms,omitempty"`
	SessionID        string `json:"session_id,omitempty"`
}

func newInspectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [header]",
		Short: "Decode an edge request header and validate its token",
		Long: `Decodes a base64 edge request header, validates the token it carries and
prints the resulting identity as JSON.

Verification keys come from a versioned secrets file (--secrets) or a JWKS
endpoint (--jwks-url, or --issuer-url for OIDC discovery). JWKS documents may
be shared between processes through Redis (--redis-addr).`,
		Example: `  # Validate against a secrets file
  edgecontext inspect --secrets /var/local/secrets.yaml "$HEADER"

  # Validate against a JWKS endpoint, reading the header from stdin
  edgecontext encode --session s1 | edgecontext inspect --jwks-url https://auth.example.com/jwks.json -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := a.readArg(args[0])
			if err != nil {
				return fmt.Errorf("failed to read header from stdin: %w", err)
			}

			keys, closer, err := a.keySource()
			if err != nil {
				return err
			}
			defer closer.Close()

			c, err := a.newCore(keys)
			if err != nil {
				return err
			}

			factory, err := edgecontext.NewFactory(
				edgecontext.WithTokenValidator(c),
				edgecontext.WithLogger(edgecontext.NewZerologLogger(a.logger)),
			)
			if err != nil {
				return err
			}

			ec := factory.FromHeaderValue(value)
			if value != "" && len(ec.Header()) == 0 {
				a.logger.Warn().Msg("header is not valid base64, treating it as empty")
			}

			out := buildReport(cmd, ec)

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(out)
		},
	}

	flags := cmd.Flags()

	flags.String("secrets", "", "Versioned secrets file holding the verification keys")
	_ = a.v.BindPFlag(SecretsFileKey, flags.Lookup("secrets"))

	flags.String("secret-name", core.DefaultSecretName, "Secret holding the verification keys")
	_ = a.v.BindPFlag(SecretNameKey, flags.Lookup("secret-name"))

	flags.String("algorithm", "RS256", "Token signature algorithm")
	_ = a.v.BindPFlag(AlgorithmKey, flags.Lookup("algorithm"))

	flags.String("jwks-url", "", "JWKS endpoint holding the verification keys")
	_ = a.v.BindPFlag(JWKSURLKey, flags.Lookup("jwks-url"))

	flags.String("issuer-url", "", "OIDC issuer whose discovery document names the JWKS endpoint")
	_ = a.v.BindPFlag(IssuerURLKey, flags.Lookup("issuer-url"))

	flags.String("redis-addr", "", "Redis address used to share JWKS documents")
	_ = a.v.BindPFlag(RedisAddrKey, flags.Lookup("redis-addr"))

	return cmd
}

func buildReport(cmd *cobra.Command, ec *edgecontext.EdgeContext) report {
	ctx := cmd.Context()
	env := ec.Envelope()

	out := report{
		Envelope: envelopeReport{
			HasToken:         env.Token != "",
			VisitorID:        env.VisitorID,
			VisitorCreatedMS: env.VisitorCreatedMS,
			SessionID:        env.SessionID,
		},
		Valid:       core.IsValid(ec.TrustDecision(ctx)),
		EventFields: ec.EventFields(ctx),
	}

	user := ec.User(ctx)
	out.UserID, _ = user.ID()
	out.Roles, _ = user.Roles()
	out.Service, _ = ec.Service(ctx).Name()
	out.OAuthClient, _ = ec.OAuthClient(ctx).ID()

	return out
}
