// Package plugin provides the public API for palettenode plugins.
package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// NodePluginRPC implements the go-plugin Plugin interface for workflow nodes.
type NodePluginRPC struct {
	plugin.Plugin
	Impl NodePlugin
}

// Server returns an RPC server for this plugin.
func (p *NodePluginRPC) Server(*plugin.MuxBroker) (any, error) {
	return &NodePluginRPCServer{Impl: p.Impl}, nil
}

// Client returns an RPC client for this plugin.
func (p *NodePluginRPC) Client(_ *plugin.MuxBroker, c *rpc.Client) (any, error) {
	return &NodePluginRPCClient{client: c}, nil
}

// NodePluginRPCServer is the RPC server implementation for nodes. Batches and
// results cross the wire as JSON so parameter maps keep their dynamic types.
type NodePluginRPCServer struct {
	Impl NodePlugin
}

// Execute implements the RPC method for running a batch.
func (s *NodePluginRPCServer) Execute(req []byte, resp *[]byte) error {
	var batch Batch
	if err := json.Unmarshal(req, &batch); err != nil {
		return fmt.Errorf("failed to decode batch: %w", err)
	}

	results, err := s.Impl.Execute(context.Background(), batch)
	if err != nil {
		return err
	}

	data, err := json.Marshal(results)
	if err != nil {
		return err
	}

	*resp = data
	return nil
}

// GetMetadata implements the RPC method for fetching plugin metadata.
func (s *NodePluginRPCServer) GetMetadata(_ any, resp *PluginInfo) error {
	*resp = s.Impl.GetMetadata()
	return nil
}

// Describe implements the RPC method for fetching node descriptions.
func (s *NodePluginRPCServer) Describe(_ any, resp *[]byte) error {
	data, err := s.Impl.Describe()
	if err != nil {
		return err
	}
	*resp = data
	return nil
}

// NodePluginRPCClient is the RPC client implementation for nodes.
type NodePluginRPCClient struct {
	client *rpc.Client
}

// Execute calls the remote Execute method.
func (c *NodePluginRPCClient) Execute(_ context.Context, batch Batch) ([]ItemResult, error) {
	req, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode batch: %w", err)
	}

	var respBytes []byte
	if err := c.client.Call("Plugin.Execute", req, &respBytes); err != nil {
		return nil, remoteError(err)
	}

	var results []ItemResult
	if err := json.Unmarshal(respBytes, &results); err != nil {
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}
	return results, nil
}

// GetMetadata calls the remote GetMetadata method. A failed call yields an
// empty PluginInfo.
func (c *NodePluginRPCClient) GetMetadata() PluginInfo {
	var info PluginInfo
	if err := c.client.Call("Plugin.GetMetadata", new(any), &info); err != nil {
		return PluginInfo{}
	}
	return info
}

// Describe calls the remote Describe method.
func (c *NodePluginRPCClient) Describe() (json.RawMessage, error) {
	var data []byte
	if err := c.client.Call("Plugin.Describe", new(any), &data); err != nil {
		return nil, remoteError(err)
	}
	return data, nil
}

// remoteError turns an error string sent by the server back into an error
// value. Transport failures pass through untouched.
func remoteError(err error) error {
	var serverErr rpc.ServerError
	if errors.As(err, &serverErr) {
		return &RPCError{Message: string(serverErr)}
	}
	return err
}

// RPCError represents an error returned from an RPC call.
type RPCError struct {
	Message string
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return e.Message
}
