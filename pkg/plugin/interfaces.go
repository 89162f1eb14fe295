// Package plugin provides the public API for palettenode plugins.
package plugin

import (
	"context"
	"encoding/json"
)

// NodePlugin is the interface a workflow node implements for go-plugin RPC.
type NodePlugin interface {
	// Execute runs the node over every item in the batch. An error aborts
	// the whole batch; per-item failures are reported in the results when
	// the batch allows it.
	Execute(ctx context.Context, batch Batch) ([]ItemResult, error)

	// GetMetadata returns plugin metadata.
	GetMetadata() PluginInfo

	// Describe returns the node and credential descriptions as JSON.
	Describe() (json.RawMessage, error)
}
