package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/palettenode/internal/plugin/executor"
	"github.com/jmylchreest/palettenode/pkg/plugin"
)

func newInvokeCmd(g *globalOptions) *cobra.Command {
	var (
		pluginPath     string
		pluginArgs     []string
		continueOnFail bool
		describe       bool
	)

	cmd := &cobra.Command{
		Use:   "invoke --plugin <path> [file|-]",
		Short: "Run a batch through an external node plugin",
		Long: `Launch a node plugin the way a workflow host does and run a batch through it.

The plugin is queried with --plugin-info first. go-plugin plugins are driven
over net/rpc; json-stdio plugins receive the batch on stdin and print results
on stdout.

Examples:
  # Drive this binary as a plugin
  palettenode invoke --plugin ./palettenode --plugin-args serve batch.yaml

  # Show the node catalog a plugin advertises
  palettenode invoke --plugin ./palettenode --plugin-args serve --describe`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !describe && len(args) == 0 {
				return fmt.Errorf("a batch file (or - for stdin) is required")
			}

			cfg, err := g.config(cmd)
			if err != nil {
				return err
			}
			logger := g.logger(cfg, cmd.ErrOrStderr())

			pe, err := executor.New(cmd.Context(), pluginPath,
				executor.WithArgs(pluginArgs...),
				executor.WithLogger(logger.Named("executor")),
			)
			if err != nil {
				return err
			}
			defer pe.Close()

			if describe {
				desc, err := pe.Describe()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(desc))
				return err
			}

			items, docPolicy, err := readBatch(cmd, args[0], cfg.MaxPayloadBytes)
			if err != nil {
				return err
			}

			batch := plugin.Batch{Items: make([]map[string]any, len(items)), ContinueOnFail: continueOnFail}
			if !cmd.Flags().Changed("continue-on-fail") && docPolicy != nil {
				batch.ContinueOnFail = *docPolicy
			}
			for i, item := range items {
				batch.Items[i] = item
			}

			info := pe.Info()
			logger.Debug("invoking plugin", "name", info.Name, "version", info.Version,
				"protocol", pe.Protocol(), "items", len(items))

			results, err := pe.Execute(cmd.Context(), batch)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().StringVar(&pluginPath, "plugin", "", "path to the plugin executable")
	cmd.Flags().StringSliceVar(&pluginArgs, "plugin-args", nil, "arguments passed to the plugin before --plugin-info")
	cmd.Flags().BoolVar(&continueOnFail, "continue-on-fail", false, "report failing items as error results instead of aborting")
	cmd.Flags().BoolVar(&describe, "describe", false, "print the plugin's node catalog instead of running a batch")
	_ = cmd.MarkFlagRequired("plugin")

	return cmd
}
