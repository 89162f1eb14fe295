// Package plugin provides the public API for palettenode plugins.
// External hosts should import this package instead of internal packages.
package plugin

import "encoding/json"

// PluginInfo contains metadata about a plugin.
type PluginInfo struct {
	Name            string `json:"name"`
	Type            string `json:"type"` // "node" or "credential"
	Version         string `json:"version"`
	ProtocolVersion string `json:"protocol_version"`
	Description     string `json:"description"`
	PluginProtocol  string `json:"plugin_protocol"` // "json-stdio" or "go-plugin"
}

// Batch is one node execution: the parameter map of every input item and the
// host's failure policy.
type Batch struct {
	Items          []map[string]any `json:"items"`
	ContinueOnFail bool             `json:"continue_on_fail"`
}

// ItemResult is the outcome of one input item. Exactly one of Colors or Error
// is set. Colors holds hex strings or {r,g,b} objects depending on the
// item's outputFormat.
type ItemResult struct {
	Colors json.RawMessage `json:"colors,omitempty"`
	Count  int             `json:"count,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Failed reports whether the item produced an error record.
func (r ItemResult) Failed() bool {
	return r.Error != ""
}
