package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/palettenode/internal/credential"
)

func newCredentialCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage the httpbin credential",
	}
	cmd.AddCommand(newCredentialTestCmd(g))
	return cmd
}

func newCredentialTestCmd(g *globalOptions) *cobra.Command {
	var token, domain string

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Check the httpbin bearer token against its test endpoint",
		Long: `Send an authenticated GET to <domain>/bearer and report whether the token
is accepted. The token and domain default to PALETTENODE_HTTPBIN_TOKEN and
PALETTENODE_HTTPBIN_DOMAIN.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.config(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("token") {
				cfg.Credential.Token = token
			}
			if cmd.Flags().Changed("domain") {
				cfg.Credential.Domain = domain
			}

			cred := cfg.HTTPBin()
			logger := g.logger(cfg, cmd.ErrOrStderr())
			logger.Debug("testing credential", "name", credential.Name, "domain", cred.Domain)

			if err := cred.Test(cmd.Context(), &http.Client{Timeout: cfg.FetchTimeout}); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: token accepted by %s\n", credential.Name, cred.Domain)
			return err
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "bearer token")
	cmd.Flags().StringVar(&domain, "domain", "", "httpbin base URL (default "+credential.DefaultDomain+")")

	return cmd
}
