package server

import (
	"encoding/json"
	"io"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/palettenode/internal/node"
	"github.com/jmylchreest/palettenode/pkg/plugin"
)

// ServeConfig returns the go-plugin configuration that serves n.
func ServeConfig(n *node.Node, logger hclog.Logger) *goplugin.ServeConfig {
	return &goplugin.ServeConfig{
		HandshakeConfig: plugin.Handshake,
		Plugins: map[string]goplugin.Plugin{
			plugin.PluginKey: &plugin.NodePluginRPC{Impl: NewNodePlugin(n)},
		},
		Logger: logger,
	}
}

// Serve blocks serving n to the host that launched this process.
func Serve(n *node.Node, logger hclog.Logger) {
	goplugin.Serve(ServeConfig(n, logger))
}

// WriteInfo writes Info as indented JSON.
func WriteInfo(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(Info())
}
