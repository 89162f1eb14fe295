package server

import (
	"context"
	"image/color"
	"os"
	"slices"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/palettenode/internal/node"
	"github.com/jmylchreest/palettenode/internal/plugin/executor"
	"github.com/jmylchreest/palettenode/pkg/plugin"
)

// asPluginEnv makes the test binary behave as "palettenode serve" when a
// test re-executes it.
const asPluginEnv = "PALETTENODE_TEST_SERVE_AS_PLUGIN"

func TestMain(m *testing.M) {
	if os.Getenv(asPluginEnv) == "1" {
		os.Exit(serveAsPlugin(os.Args[1:]))
	}
	os.Exit(m.Run())
}

func serveAsPlugin(args []string) int {
	if slices.Contains(args, plugin.PluginInfoFlag) {
		if err := WriteInfo(os.Stdout); err != nil {
			return 1
		}
		return 0
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "palettenode",
		Output:     os.Stderr,
		Level:      hclog.Warn,
		JSONFormat: true,
	})
	Serve(node.New(node.WithLogger(logger)), logger)
	return 0
}

// launch starts this test binary as a go-plugin node through the executor.
func launch(t *testing.T) *executor.PluginExecutor {
	t.Helper()
	if testing.Short() {
		t.Skip("launches a plugin subprocess")
	}

	exe, err := os.Executable()
	require.NoError(t, err)
	t.Setenv(asPluginEnv, "1")

	pe, err := executor.New(context.Background(), exe, executor.WithArgs("serve"))
	require.NoError(t, err)
	t.Cleanup(pe.Close)
	return pe
}

func TestServeOverGoPlugin(t *testing.T) {
	pe := launch(t)

	assert.Equal(t, plugin.PluginTypeGoPlugin, pe.Protocol())
	assert.Equal(t, node.Name, pe.Info().Name)

	slate := solidDataURI(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	results, err := pe.Execute(context.Background(), plugin.Batch{
		Items: []map[string]any{
			{"imageSource": slate},
			{"imageSource": "/definitely/missing.png"},
			{"imageSource": slate, "outputFormat": "rgb", "colorCount": 3},
		},
		ContinueOnFail: true,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.JSONEq(t, `["#0a141e"]`, string(results[0].Colors))
	assert.Equal(t, 5, results[0].Count)
	assert.True(t, results[1].Failed())
	assert.Contains(t, results[1].Error, "image file not found")
	assert.JSONEq(t, `[{"r":10,"g":20,"b":30}]`, string(results[2].Colors))
	assert.Equal(t, 3, results[2].Count)

	desc, err := pe.Describe()
	require.NoError(t, err)
	assert.Contains(t, string(desc), node.Name)
	assert.Contains(t, string(desc), "httpbinApi")
}

func TestServeOverGoPluginFailFast(t *testing.T) {
	pe := launch(t)

	slate := solidDataURI(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	results, err := pe.Execute(context.Background(), plugin.Batch{
		Items: []map[string]any{
			{"imageSource": slate},
			{"imageSource": "/definitely/missing.png"},
		},
	})
	require.Error(t, err)
	assert.Nil(t, results)

	var rpcErr *plugin.RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Contains(t, rpcErr.Message, "item 1")
}
