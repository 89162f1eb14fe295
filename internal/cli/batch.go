package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/palettenode/internal/node"
)

// batchFile is the on-disk form of a batch. A bare list of parameter maps is
// also accepted.
type batchFile struct {
	ContinueOnFail *bool            `yaml:"continueOnFail"`
	Items          []map[string]any `yaml:"items"`
}

// parseBatch decodes a YAML or JSON batch document.
func parseBatch(data []byte) ([]node.Parameters, *bool, error) {
	var doc batchFile
	if err := yaml.Unmarshal(data, &doc); err == nil && doc.Items != nil {
		return toParameters(doc.Items), doc.ContinueOnFail, nil
	}

	var items []map[string]any
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, nil, fmt.Errorf("batch must be a list of parameter maps or an object with items: %w", err)
	}
	if len(items) == 0 {
		return nil, nil, errors.New("batch contains no items")
	}
	return toParameters(items), nil, nil
}

func toParameters(items []map[string]any) []node.Parameters {
	out := make([]node.Parameters, len(items))
	for i, item := range items {
		if item == nil {
			item = map[string]any{}
		}
		out[i] = node.Parameters(item)
	}
	return out
}

// readBatch reads and parses a batch from path, or stdin for "-".
func readBatch(cmd *cobra.Command, path string, maxBytes int64) ([]node.Parameters, *bool, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = readAll(cmd.InOrStdin(), maxBytes)
	} else {
		var f *os.File
		f, err = os.Open(path) // #nosec G304 - User-specified batch file
		if err == nil {
			defer f.Close()
			data, err = readAll(f, maxBytes)
		}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read batch: %w", err)
	}
	return parseBatch(data)
}

func newBatchCmd(g *globalOptions) *cobra.Command {
	var (
		continueOnFail bool
		request        requestFlags
	)

	cmd := &cobra.Command{
		Use:   "batch <file|->",
		Short: "Run the node over a batch of items",
		Long: `Run the node over a YAML or JSON batch and print one result per item.

The batch is either a list of parameter maps or an object with "items" and an
optional "continueOnFail". Omitted parameters take the values of --colors,
--format and --algorithm.

With continue-on-fail, failing items become {"error": ...} results. Without
it the first failure aborts the batch and nothing is printed.

Example batch:
  continueOnFail: true
  items:
    - imageSource: https://example.com/a.jpg
      colorCount: 3
    - imageSource: ./b.png
      outputFormat: rgb`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.config(cmd)
			if err != nil {
				return err
			}
			request.apply(cmd.Flags(), &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			items, docPolicy, err := readBatch(cmd, args[0], cfg.MaxPayloadBytes)
			if err != nil {
				return err
			}
			switch {
			case cmd.Flags().Changed("continue-on-fail"):
				cfg.ContinueOnFail = continueOnFail
			case docPolicy != nil:
				cfg.ContinueOnFail = *docPolicy
			}

			logger := g.logger(cfg, cmd.ErrOrStderr())
			logger.Debug("running batch", "items", len(items), "policy", cfg.Policy())

			results, err := newNode(cfg, logger).Execute(cmd.Context(), items, cfg.Policy())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), results)
		},
	}

	request.register(cmd.Flags())
	cmd.Flags().BoolVar(&continueOnFail, "continue-on-fail", false, "report failing items as error results instead of aborting")

	return cmd
}
