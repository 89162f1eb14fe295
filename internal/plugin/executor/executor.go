// Package executor drives a node plugin from the host side, regardless of
// whether it speaks go-plugin RPC or JSON over stdio.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/palettenode/internal/security"
	"github.com/jmylchreest/palettenode/pkg/plugin"
)

// InfoTimeout bounds the --plugin-info query.
const InfoTimeout = 5 * time.Second

// PluginExecutor runs batches on one plugin binary.
type PluginExecutor struct {
	path         string
	args         []string
	info         plugin.PluginInfo
	protocolType plugin.PluginType
	runner       ProcessRunner
	logger       hclog.Logger
	client       *goplugin.Client
	rpcClient    *plugin.NodePluginRPCClient
}

// Option configures a PluginExecutor.
type Option func(*PluginExecutor)

// WithArgs sets arguments placed before every plugin invocation, e.g. "serve".
func WithArgs(args ...string) Option {
	return func(e *PluginExecutor) { e.args = args }
}

// WithLogger sets the logger handed to go-plugin.
func WithLogger(l hclog.Logger) Option {
	return func(e *PluginExecutor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithProcessRunner replaces the runner used for --plugin-info and json-stdio.
func WithProcessRunner(r ProcessRunner) Option {
	return func(e *PluginExecutor) { e.runner = r }
}

// New validates the plugin at pluginPath, queries its info and checks that
// its protocol version is compatible.
func New(ctx context.Context, pluginPath string, opts ...Option) (*PluginExecutor, error) {
	e := &PluginExecutor{
		path:   pluginPath,
		runner: NewExecRunner(),
		logger: hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := security.ValidatePluginPath(pluginPath); err != nil {
		return nil, err
	}

	info, err := e.queryInfo(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := plugin.IsCompatible(info.ProtocolVersion); err != nil {
		return nil, fmt.Errorf("plugin %s: %w", info.Name, err)
	}

	switch plugin.PluginType(info.PluginProtocol) {
	case plugin.PluginTypeGoPlugin:
		e.protocolType = plugin.PluginTypeGoPlugin
	case plugin.PluginTypeJSON, "":
		// Empty defaults to json-stdio.
		e.protocolType = plugin.PluginTypeJSON
	default:
		return nil, fmt.Errorf("unknown plugin_protocol: %s", info.PluginProtocol)
	}

	e.info = info
	return e, nil
}

// Info returns the metadata reported by --plugin-info.
func (e *PluginExecutor) Info() plugin.PluginInfo {
	return e.info
}

// Protocol returns the protocol the plugin speaks.
func (e *PluginExecutor) Protocol() plugin.PluginType {
	return e.protocolType
}

// Execute runs batch on the plugin.
func (e *PluginExecutor) Execute(ctx context.Context, batch plugin.Batch) ([]plugin.ItemResult, error) {
	switch e.protocolType {
	case plugin.PluginTypeGoPlugin:
		client, err := e.getRPCClient()
		if err != nil {
			return nil, err
		}
		return client.Execute(ctx, batch)
	case plugin.PluginTypeJSON:
		return e.executeJSON(ctx, batch)
	default:
		return nil, fmt.Errorf("unsupported protocol type: %s", e.protocolType)
	}
}

// Describe fetches the plugin's node descriptions. Only go-plugin plugins
// support it.
func (e *PluginExecutor) Describe() (json.RawMessage, error) {
	if e.protocolType != plugin.PluginTypeGoPlugin {
		return nil, fmt.Errorf("describe is not supported over %s", e.protocolType)
	}
	client, err := e.getRPCClient()
	if err != nil {
		return nil, err
	}
	return client.Describe()
}

// Close cleans up any resources held by the executor.
func (e *PluginExecutor) Close() {
	if e.client != nil {
		e.client.Kill()
		e.client = nil
		e.rpcClient = nil
	}
}

func (e *PluginExecutor) queryInfo(ctx context.Context) (plugin.PluginInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, InfoTimeout)
	defer cancel()

	args := append(append([]string{}, e.args...), plugin.PluginInfoFlag)
	stdout, stderr, err := e.runner.Run(ctx, e.path, args, nil)
	if err != nil {
		return plugin.PluginInfo{}, fmt.Errorf("failed to query plugin: %w%s", err, stderrSuffix(stderr))
	}

	var info plugin.PluginInfo
	if err := json.Unmarshal(stdout, &info); err != nil {
		return plugin.PluginInfo{}, fmt.Errorf("failed to parse plugin info: %w", err)
	}
	return info, nil
}

func (e *PluginExecutor) getRPCClient() (*plugin.NodePluginRPCClient, error) {
	if e.rpcClient != nil {
		return e.rpcClient, nil
	}

	e.client = goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig: plugin.Handshake,
		Plugins: map[string]goplugin.Plugin{
			plugin.PluginKey: &plugin.NodePluginRPC{},
		},
		Cmd:              exec.Command(e.path, e.args...), // #nosec G204 - path validated in New
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
		Logger:           e.logger,
	})

	rpcClient, err := e.client.Client()
	if err != nil {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("failed to get RPC client: %w", err)
	}

	raw, err := rpcClient.Dispense(plugin.PluginKey)
	if err != nil {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("failed to dispense plugin: %w", err)
	}

	client, ok := raw.(*plugin.NodePluginRPCClient)
	if !ok {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("plugin dispensed unexpected type %T", raw)
	}
	e.rpcClient = client

	return client, nil
}

func (e *PluginExecutor) executeJSON(ctx context.Context, batch plugin.Batch) ([]plugin.ItemResult, error) {
	batchJSON, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch: %w", err)
	}

	stdout, stderr, err := e.runner.Run(ctx, e.path, e.args, bytes.NewReader(batchJSON))
	if err != nil {
		return nil, fmt.Errorf("plugin execution failed: %w%s", err, stderrSuffix(stderr))
	}

	var results []plugin.ItemResult
	if err := json.Unmarshal(stdout, &results); err != nil {
		return nil, fmt.Errorf("failed to parse plugin output: %w\nOutput: %s", err, stdout)
	}
	return results, nil
}

func stderrSuffix(stderr []byte) string {
	msg := strings.TrimSpace(string(stderr))
	if msg == "" {
		return ""
	}
	return "\nStderr: " + msg
}
