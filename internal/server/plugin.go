package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmylchreest/palettenode/internal/node"
	"github.com/jmylchreest/palettenode/internal/version"
	"github.com/jmylchreest/palettenode/pkg/plugin"
)

// NodePlugin adapts a node.Node to plugin.NodePlugin.
type NodePlugin struct {
	node *node.Node
}

// NewNodePlugin wraps n.
func NewNodePlugin(n *node.Node) *NodePlugin {
	return &NodePlugin{node: n}
}

// Execute runs the batch through the node. ContinueOnFail selects the
// CollectErrors policy.
func (p *NodePlugin) Execute(ctx context.Context, batch plugin.Batch) ([]plugin.ItemResult, error) {
	items := make([]node.Parameters, len(batch.Items))
	for i, item := range batch.Items {
		items[i] = node.Parameters(item)
	}

	results, err := p.node.Execute(ctx, items, node.PolicyFor(batch.ContinueOnFail))
	if err != nil {
		return nil, err
	}
	return ItemResults(results)
}

// GetMetadata returns plugin metadata.
func (p *NodePlugin) GetMetadata() plugin.PluginInfo {
	return Info()
}

// Describe returns the catalog as JSON.
func (p *NodePlugin) Describe() (json.RawMessage, error) {
	return DescribeJSON()
}

// Info returns the metadata printed by --plugin-info.
func Info() plugin.PluginInfo {
	desc := node.NodeDescription()
	return plugin.PluginInfo{
		Name:            desc.Name,
		Type:            "node",
		Version:         version.Version,
		ProtocolVersion: plugin.ProtocolVersion,
		Description:     desc.Description,
		PluginProtocol:  string(plugin.PluginTypeGoPlugin),
	}
}

// ItemResults converts node results to their wire form.
func ItemResults(results []node.Result) ([]plugin.ItemResult, error) {
	out := make([]plugin.ItemResult, len(results))
	for i, r := range results {
		if r.Failed() {
			out[i] = plugin.ItemResult{Error: r.Err}
			continue
		}
		colors, err := json.Marshal(r.Colors)
		if err != nil {
			return nil, fmt.Errorf("item %d: encode colors: %w", i, err)
		}
		out[i] = plugin.ItemResult{Colors: colors, Count: r.Count}
	}
	return out, nil
}
