// Package cli provides the command-line interface for palettenode.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmylchreest/palettenode/internal/config"
	"github.com/jmylchreest/palettenode/internal/node"
	"github.com/jmylchreest/palettenode/internal/pixels"
	"github.com/jmylchreest/palettenode/internal/version"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	verbose  bool
	quiet    bool
	logLevel string
	logJSON  bool
	getenv   func(string) string
}

// NewRootCmd builds the palettenode command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(os.Getenv)
}

func newRootCmd(getenv func(string) string) *cobra.Command {
	opts := &globalOptions{getenv: getenv}

	rootCmd := &cobra.Command{
		Use:   "palettenode",
		Short: "Dominant colour extraction node",
		Long: `palettenode extracts the dominant colours of an image with median-cut
quantization and formats them as hex strings or RGB objects.

It runs standalone, over batch files, or as a go-plugin node launched by a
workflow host.`,
		Version:      version.Short(),
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-error output")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error, off)")
	flags.BoolVar(&opts.logJSON, "log-json", false, "emit logs as JSON")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(
		newExtractCmd(opts),
		newBatchCmd(opts),
		newServeCmd(opts),
		newInvokeCmd(opts),
		newDescribeCmd(),
		newCredentialCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

// config resolves settings from defaults and the environment, then applies
// the persistent logging flags.
func (o *globalOptions) config(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.NewBuilder().WithEnvFunc(o.getenv).Build()
	if err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	if cmd.Flags().Changed("log-level") {
		if _, err := config.ParseLevel(o.logLevel); err != nil {
			return config.Config{}, err
		}
		cfg.LogLevel = o.logLevel
	}
	if cmd.Flags().Changed("log-json") {
		cfg.LogJSON = o.logJSON
	}
	switch {
	case o.quiet:
		cfg.LogLevel = "off"
	case o.verbose:
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// logger returns a logger writing to w.
func (o *globalOptions) logger(cfg config.Config, w io.Writer) hclog.Logger {
	return config.NewLogger("palettenode", w, cfg.LogLevel, cfg.LogJSON)
}

// newNode builds a node from cfg.
func newNode(cfg config.Config, logger hclog.Logger) *node.Node {
	readerOpts := append(cfg.ReaderOptions(), pixels.WithLogger(logger.Named("pixels")))
	return node.New(
		node.WithReader(pixels.NewReader(readerOpts...)),
		node.WithLogger(logger.Named("node")),
		node.WithDefaults(cfg.Request()),
	)
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) // #nosec G115 - file descriptors fit in int
}

// terminalWidth returns the width of w, or 0 when it is not a terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) { // #nosec G115 - file descriptors fit in int
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd())) // #nosec G115 - file descriptors fit in int
	if err != nil {
		return 0
	}
	return width
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
