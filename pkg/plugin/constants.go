// Package plugin provides the public API for palettenode plugins.
package plugin

import (
	"github.com/hashicorp/go-plugin"
)

const (
	// ProtocolVersion defines the current plugin API version.
	// Format: MAJOR.MINOR.PATCH.
	// - Increment MAJOR for breaking changes (incompatible API changes).
	// - Increment MINOR for backward-compatible additions.
	// - Increment PATCH for backward-compatible bug fixes.
	ProtocolVersion = "0.1.0"

	// MinCompatibleVersion is the oldest protocol version a host will talk to.
	MinCompatibleVersion = "0.1.0"

	// PluginKey is the name the node is dispensed under.
	PluginKey = "node"

	// PluginInfoFlag makes a plugin binary print its PluginInfo as JSON and exit.
	PluginInfoFlag = "--plugin-info"
)

// Handshake is the handshake configuration for go-plugin protocol.
//
// go-plugin's ProtocolVersion is a single uint that must match exactly, so it
// carries the major version only. Full MAJOR.MINOR.PATCH checking happens via
// the --plugin-info query and IsCompatible.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  uint(CurrentVersion().Major),
	MagicCookieKey:   "PALETTENODE_PLUGIN",
	MagicCookieValue: "dominant_colour_extractor",
}

// PluginType defines the type of plugin communication protocol.
type PluginType string

const (
	// PluginTypeGoPlugin indicates the plugin uses HashiCorp go-plugin RPC protocol.
	PluginTypeGoPlugin PluginType = "go-plugin"

	// PluginTypeJSON indicates the plugin reads a Batch on stdin and writes
	// results to stdout.
	PluginTypeJSON PluginType = "json-stdio"
)
