package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/palettenode/internal/node"
	"github.com/jmylchreest/palettenode/internal/server"
)

func newDescribeCmd() *cobra.Command {
	var (
		schema bool
		table  bool
	)

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print the node and credential descriptions",
		Long: `Print the catalog a workflow host reads: the node description with its
parameters and the httpbin credential description.

--schema prints the JSON Schema that batch items are validated against.
--table lists the node parameters for reading in a terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			switch {
			case schema:
				data, err := node.ParameterSchema()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err

			case table:
				_, err := fmt.Fprint(out, propertyTable(node.NodeDescription(), terminalWidth(out)).Render())
				return err

			default:
				data, err := server.DescribeJSON()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}
		},
	}

	cmd.Flags().BoolVar(&schema, "schema", false, "print the parameter JSON Schema")
	cmd.Flags().BoolVar(&table, "table", false, "print the parameters as a table")
	cmd.MarkFlagsMutuallyExclusive("schema", "table")

	return cmd
}

// propertyTable lists the node parameters. Descriptions wrap to fit width.
func propertyTable(desc node.Description, width int) *Table {
	t := NewTable("Parameter", "Type", "Default", "Description")
	for _, p := range desc.Properties {
		def := ""
		if p.Default != nil {
			def = fmt.Sprint(p.Default)
		}
		if len(p.Options) > 0 {
			values := make([]string, len(p.Options))
			for i, o := range p.Options {
				values[i] = o.Value
			}
			def += " (" + strings.Join(values, "|") + ")"
		}
		t.AddRow(p.Name, p.Type, strings.TrimSpace(def), p.Description)
	}
	if width > 60 {
		t.SetColumnMaxWidth(3, width-60)
	}
	return t
}
