package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/weathermcp/config"
	"github.com/jonwraymond/weathermcp/token"
)

// defaultTokenExpiry matches the auth.token_expiry configuration
// default, applied when no configuration is loaded at all.
const defaultTokenExpiry = 86400

func newTokenCmd(configFile *string) *cobra.Command {
	var (
		user     string
		expiry   int
		secret   string
		data     string
		noExpiry bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generate a signed bearer token",
		Long: `Generate a signed bearer token for calling the MCP endpoint.

The signing secret comes from --secret, or from the resolved
configuration (auth.secret_key / AUTH_SECRET_KEY) when the flag is
omitted. Tokens expire after auth.token_expiry seconds (86400 by
default) unless --expiry or --no-expiry says otherwise.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configExpiry := defaultTokenExpiry
			if secret == "" {
				cfg, err := config.Load(cmd.Context(), *configFile)
				if err != nil {
					return err
				}
				secret = cfg.Auth.SecretKey
				configExpiry = cfg.Auth.TokenExpiry
			}
			if secret == "" {
				return errors.New("no signing secret: pass --secret or set AUTH_SECRET_KEY")
			}

			switch {
			case noExpiry:
				if cmd.Flags().Changed("expiry") {
					return errors.New("--expiry and --no-expiry are mutually exclusive")
				}
				expiry = 0
			case !cmd.Flags().Changed("expiry"):
				expiry = configExpiry
			}

			extra, err := parseData(data)
			if err != nil {
				return err
			}

			tok, err := token.Generate(secret, token.Claims{
				Subject:       user,
				ExpirySeconds: expiry,
				Extra:         extra,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Bearer Token: %s\n\n", tok)
			fmt.Fprintln(out, "Use it in the Authorization header:")
			fmt.Fprintf(out, "  Authorization: Bearer %s\n\n", tok)
			fmt.Fprintln(out, "Example:")
			fmt.Fprintf(out, "  curl -H 'Authorization: Bearer %s' \\\n", tok)
			fmt.Fprintln(out, "       -H 'Content-Type: application/json' \\")
			fmt.Fprintln(out, `       -d '{"jsonrpc":"2.0","id":1,"method":"tools/list"}' \`)
			fmt.Fprintln(out, "       http://127.0.0.1:8000/mcp")
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "subject claim for the token")
	cmd.Flags().IntVarP(&expiry, "expiry", "e", 0, "lifetime in seconds (default: auth.token_expiry, 86400)")
	cmd.Flags().StringVarP(&secret, "secret", "s", "", "signing secret (overrides configuration)")
	cmd.Flags().StringVarP(&data, "data", "d", "", `extra claims as a JSON object, e.g. '{"role":"admin"}'`)
	cmd.Flags().BoolVar(&noExpiry, "no-expiry", false, "mint a token that never expires")
	return cmd
}

func parseData(data string) (map[string]any, error) {
	if strings.TrimSpace(data) == "" {
		return nil, nil
	}
	var extra map[string]any
	if err := json.Unmarshal([]byte(data), &extra); err != nil {
		return nil, fmt.Errorf("invalid --data: %w", err)
	}
	return extra, nil
}
