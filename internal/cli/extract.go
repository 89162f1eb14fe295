package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/palettenode/internal/colour"
	"github.com/jmylchreest/palettenode/internal/config"
	"github.com/jmylchreest/palettenode/internal/node"
	"github.com/jmylchreest/palettenode/internal/security"
)

// Output modes for the extract command.
const (
	outputTable  = "table"
	outputJSON   = "json"
	outputResult = "result"
)

// requestFlags are the extraction parameters shared by extract and batch.
type requestFlags struct {
	colors    int
	format    string
	algorithm string
}

func (f *requestFlags) register(fs *pflag.FlagSet) {
	fs.IntVarP(&f.colors, "colors", "c", node.DefaultColorCount, "number of colours to extract (1-256)")
	fs.StringVarP(&f.format, "format", "f", string(colour.DefaultOutputFormat), "colour format (hex, rgb)")
	fs.StringVarP(&f.algorithm, "algorithm", "a", string(colour.DefaultAlgorithm), "quantization algorithm (mediancut, kmeans)")
}

// apply overrides cfg with the flags that were set explicitly.
func (f *requestFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("colors") {
		cfg.ColorCount = f.colors
	}
	if fs.Changed("format") {
		cfg.OutputFormat = colour.OutputFormat(strings.ToLower(f.format))
	}
	if fs.Changed("algorithm") {
		cfg.Algorithm = colour.Algorithm(strings.ToLower(f.algorithm))
	}
}

type extractOptions struct {
	request requestFlags
	output  string
	file    string
	preview bool
}

func newExtractCmd(g *globalOptions) *cobra.Command {
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract <image>",
		Short: "Extract the dominant colours of an image",
		Long: `Extract the dominant colours of an image with median-cut quantization.

The image may be a local path, a file:// or http(s) URL, a data: URI, or "-"
to read the image bytes from stdin. Gzip, xz and bzip2 wrapped images are
unpacked automatically.

Examples:
  # Five dominant colours as hex
  palettenode extract wallpaper.jpg

  # Eight colours as RGB objects with terminal swatches
  palettenode extract -c 8 -f rgb --preview wallpaper.png

  # The result exactly as a workflow host receives it
  palettenode extract -o result https://example.com/photo.jpg

  # Palette with weights as JSON, written to a file
  palettenode extract -o json --file palette.json wallpaper.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, g, opts, args[0])
		},
	}

	opts.request.register(cmd.Flags())
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputTable, "output mode (table, json, result)")
	cmd.Flags().StringVar(&opts.file, "file", "", "write output to a file instead of stdout")
	cmd.Flags().BoolVarP(&opts.preview, "preview", "p", false, "show colour swatches in table output")

	return cmd
}

func runExtract(cmd *cobra.Command, g *globalOptions, opts *extractOptions, source string) error {
	cfg, err := g.config(cmd)
	if err != nil {
		return err
	}
	opts.request.apply(cmd.Flags(), &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := g.logger(cfg, cmd.ErrOrStderr())
	n := newNode(cfg, logger)

	req := cfg.Request()
	if source == "-" {
		data, err := readAll(cmd.InOrStdin(), cfg.MaxPayloadBytes)
		if err != nil {
			return fmt.Errorf("failed to read image from stdin: %w", err)
		}
		req.Binary = data
	} else {
		req.ImageSource = source
	}

	var buf bytes.Buffer
	if opts.preview && (opts.file != "" || !isTerminal(cmd.OutOrStdout())) {
		logger.Warn("preview requested but output is not a terminal")
	}
	if err := renderExtract(cmd.Context(), n, req, cfg.OutputFormat, opts.output, opts.preview, &buf); err != nil {
		return err
	}

	if opts.file == "" {
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	return writeOutputFile(opts.file, buf.Bytes())
}

// renderExtract runs the extraction and writes it to w in the given mode.
func renderExtract(ctx context.Context, n *node.Node, req node.Request, format colour.OutputFormat, mode string, preview bool, w io.Writer) error {
	switch strings.ToLower(mode) {
	case outputResult:
		result, err := n.Process(ctx, req)
		if err != nil {
			return err
		}
		return writeJSON(w, result)

	case outputJSON:
		palette, err := n.Extract(ctx, req)
		if err != nil {
			return err
		}
		data, err := palette.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to encode palette: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err

	case outputTable:
		palette, err := n.Extract(ctx, req)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(w, paletteTable(palette, format, preview).Render())
		return err

	default:
		return fmt.Errorf("unknown output mode %q (valid: %s, %s, %s)", mode, outputTable, outputJSON, outputResult)
	}
}

// writeOutputFile creates path only once there is something to write.
func writeOutputFile(path string, data []byte) (err error) {
	f, err := os.Create(path) // #nosec G304 - User-specified output path
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// paletteTable lists the palette most dominant first.
func paletteTable(p *colour.Palette, format colour.OutputFormat, preview bool) *Table {
	headers := []string{"#", "Colour", "Weight"}
	if preview {
		headers = append(headers, "Preview")
	}
	t := NewTable(headers...)

	for i, c := range colour.Format(p, format) {
		row := []string{
			fmt.Sprintf("%d", i+1),
			c.String(),
			fmt.Sprintf("%.1f%%", p.Weight(i)*100),
		}
		if preview {
			row = append(row, colour.SwatchWithText(p.Colours[i], p.Colours[i].Hex(), 0))
		}
		t.AddRow(row...)
	}
	return t
}

// readAll reads r up to maxBytes.
func readAll(r io.Reader, maxBytes int64) ([]byte, error) {
	return io.ReadAll(security.NewLimitedReader(r, maxBytes))
}

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
