package cli

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/palettenode/internal/server"
)

func newServeCmd(g *globalOptions) *cobra.Command {
	var pluginInfo bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the node as a go-plugin",
		Long: `Serve the node over the go-plugin net/rpc transport.

This command is launched by a workflow host, not by hand. The host first runs
"serve --plugin-info" to read the plugin metadata, then starts "serve" and
performs the go-plugin handshake on stdout. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if pluginInfo {
				return server.WriteInfo(cmd.OutOrStdout())
			}

			cfg, err := g.config(cmd)
			if err != nil {
				return err
			}
			// go-plugin parses structured plugin logs from stderr.
			cfg.LogJSON = true
			logger := g.logger(cfg, cmd.ErrOrStderr())

			server.Serve(newNode(cfg, logger), logger)
			return nil
		},
	}

	cmd.Flags().BoolVar(&pluginInfo, "plugin-info", false, "print plugin metadata as JSON and exit")

	return cmd
}
