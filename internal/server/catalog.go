// Package server exposes the node to plugin hosts: the description catalog,
// the go-plugin adapter and the serve loop.
package server

import (
	"encoding/json"

	"github.com/jmylchreest/palettenode/internal/credential"
	"github.com/jmylchreest/palettenode/internal/node"
)

// Catalog lists everything the plugin registers with a host.
type Catalog struct {
	Nodes       []node.Description       `json:"nodes"`
	Credentials []credential.Description `json:"credentials"`
}

// Describe returns the plugin's catalog.
func Describe() Catalog {
	return Catalog{
		Nodes:       []node.Description{node.NodeDescription()},
		Credentials: []credential.Description{credential.HTTPBinDescription()},
	}
}

// DescribeJSON returns the catalog as indented JSON.
func DescribeJSON() (json.RawMessage, error) {
	return json.MarshalIndent(Describe(), "", "  ")
}
