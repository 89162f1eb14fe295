package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/rpc"
	"testing"
)

var _ NodePlugin = (*NodePluginRPCClient)(nil)

type mockNodePlugin struct {
	results    []ItemResult
	metadata   PluginInfo
	describe   json.RawMessage
	executeErr error
	lastBatch  Batch
}

func (m *mockNodePlugin) Execute(_ context.Context, batch Batch) ([]ItemResult, error) {
	m.lastBatch = batch
	if m.executeErr != nil {
		return nil, m.executeErr
	}
	return m.results, nil
}

func (m *mockNodePlugin) GetMetadata() PluginInfo {
	return m.metadata
}

func (m *mockNodePlugin) Describe() (json.RawMessage, error) {
	return m.describe, nil
}

// pipeClient serves impl on one end of an in-memory connection and returns a
// client bound to the other end.
func pipeClient(t *testing.T, impl NodePlugin) *NodePluginRPCClient {
	t.Helper()

	server := rpc.NewServer()
	if err := server.RegisterName("Plugin", &NodePluginRPCServer{Impl: impl}); err != nil {
		t.Fatalf("RegisterName() error = %v", err)
	}

	serverConn, clientConn := net.Pipe()
	go server.ServeConn(serverConn)

	client := rpc.NewClient(clientConn)
	t.Cleanup(func() { _ = client.Close() })

	return &NodePluginRPCClient{client: client}
}

func TestNodePluginRPC(t *testing.T) {
	mock := &mockNodePlugin{}
	p := &NodePluginRPC{Impl: mock}

	t.Run("Server", func(t *testing.T) {
		server, err := p.Server(nil)
		if err != nil {
			t.Fatalf("Server() error = %v", err)
		}
		rpcServer, ok := server.(*NodePluginRPCServer)
		if !ok {
			t.Fatal("Server() returned wrong type")
		}
		if rpcServer.Impl != mock {
			t.Fatal("Server() impl not set correctly")
		}
	})

	t.Run("Client", func(t *testing.T) {
		client, err := p.Client(nil, nil)
		if err != nil {
			t.Fatalf("Client() error = %v", err)
		}
		if _, ok := client.(*NodePluginRPCClient); !ok {
			t.Fatal("Client() returned wrong type")
		}
	})
}

func TestNodePluginRPCExecute(t *testing.T) {
	mock := &mockNodePlugin{
		results: []ItemResult{
			{Colors: json.RawMessage(`["#ff0000","#00ff00"]`), Count: 5},
			{Error: "decode image \"nope\": image file not found: nope"},
		},
	}
	client := pipeClient(t, mock)

	batch := Batch{
		Items: []map[string]any{
			{"imageSource": "https://example.com/a.png", "colorCount": 5},
			{"imageSource": "nope"},
		},
		ContinueOnFail: true,
	}

	results, err := client.Execute(context.Background(), batch)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Execute() returned %d results, want 2", len(results))
	}
	if results[0].Failed() || results[0].Count != 5 {
		t.Errorf("results[0] = %+v, want success with count 5", results[0])
	}
	var colors []string
	if err := json.Unmarshal(results[0].Colors, &colors); err != nil {
		t.Fatalf("colors not decodable: %v", err)
	}
	if len(colors) != 2 || colors[0] != "#ff0000" {
		t.Errorf("colors = %v", colors)
	}
	if !results[1].Failed() {
		t.Errorf("results[1] = %+v, want failure", results[1])
	}

	if !mock.lastBatch.ContinueOnFail {
		t.Error("ContinueOnFail not transmitted")
	}
	// JSON numbers arrive as float64 on the far side.
	if got := mock.lastBatch.Items[0]["colorCount"]; got != float64(5) {
		t.Errorf("colorCount = %#v, want 5", got)
	}
}

func TestNodePluginRPCExecuteError(t *testing.T) {
	client := pipeClient(t, &mockNodePlugin{executeErr: errors.New("item 2: boom")})

	_, err := client.Execute(context.Background(), Batch{})
	if err == nil {
		t.Fatal("Execute() expected error")
	}

	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("Execute() error = %T, want *RPCError", err)
	}
	if rpcErr.Message != "item 2: boom" {
		t.Errorf("RPCError.Message = %q", rpcErr.Message)
	}
}

func TestNodePluginRPCMetadataAndDescribe(t *testing.T) {
	mock := &mockNodePlugin{
		metadata: PluginInfo{
			Name:            "dominantColorExtractor",
			Type:            "node",
			Version:         "1.0.0",
			ProtocolVersion: ProtocolVersion,
			PluginProtocol:  string(PluginTypeGoPlugin),
		},
		describe: json.RawMessage(`{"node":{"name":"dominantColorExtractor"}}`),
	}
	client := pipeClient(t, mock)

	info := client.GetMetadata()
	if info != mock.metadata {
		t.Errorf("GetMetadata() = %+v, want %+v", info, mock.metadata)
	}

	desc, err := client.Describe()
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	if string(desc) != string(mock.describe) {
		t.Errorf("Describe() = %s, want %s", desc, mock.describe)
	}
}

func TestRPCError(t *testing.T) {
	err := &RPCError{Message: "test error"}
	if err.Error() != "test error" {
		t.Errorf("RPCError.Error() = %q, want %q", err.Error(), "test error")
	}

	if got := remoteError(rpc.ServerError("remote")); got.Error() != "remote" {
		t.Errorf("remoteError() = %v", got)
	}
	plain := errors.New("connection reset")
	if got := remoteError(plain); got != plain {
		t.Errorf("remoteError() = %v, want passthrough", got)
	}
}

func TestItemResultJSON(t *testing.T) {
	data, err := json.Marshal([]ItemResult{
		{Colors: json.RawMessage(`[{"r":1,"g":2,"b":3}]`), Count: 1},
		{Error: "boom"},
	})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `[{"colors":[{"r":1,"g":2,"b":3}],"count":1},{"error":"boom"}]`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}
