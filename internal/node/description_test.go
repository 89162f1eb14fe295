package node

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeDescription(t *testing.T) {
	d := NodeDescription()

	assert.Equal(t, "Dominant Color Extractor", d.DisplayName)
	assert.Equal(t, "dominantColorExtractor", d.Name)
	assert.Equal(t, "fa:palette", d.Icon)
	assert.Equal(t, []string{"transform"}, d.Group)
	assert.Equal(t, "#772244", d.Defaults.Color)
	assert.Equal(t, []string{"main"}, d.Inputs)
	assert.Equal(t, []string{"main"}, d.Outputs)

	names := make([]string, 0, len(d.Properties))
	for _, p := range d.Properties {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{ParamImageSource, ParamBinary, ParamColorCount, ParamOutputFormat, ParamAlgorithm}, names)
}

func TestParameterSchema(t *testing.T) {
	data, err := ParameterSchema()
	require.NoError(t, err)

	var schema struct {
		Type       string                    `json:"type"`
		Properties map[string]map[string]any `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(data, &schema))

	assert.Equal(t, "object", schema.Type)
	assert.Equal(t, "integer", schema.Properties[ParamColorCount]["type"])
	assert.EqualValues(t, 1, schema.Properties[ParamColorCount]["minimum"])
	assert.EqualValues(t, 256, schema.Properties[ParamColorCount]["maximum"])
	assert.Equal(t, []any{"hex", "rgb"}, schema.Properties[ParamOutputFormat]["enum"])
}

func TestParseParametersAcceptsNumericShapes(t *testing.T) {
	for _, v := range []any{3, int64(3), float64(3), json.Number("3")} {
		req, err := ParseParameters(Parameters{ParamImageSource: "a.png", ParamColorCount: v}, DefaultRequest())
		require.NoError(t, err, "%T", v)
		assert.Equal(t, 3, req.ColorCount)
	}
}

func TestNodeDescriptionOptionsMatchEnums(t *testing.T) {
	byName := make(map[string]Property)
	for _, p := range NodeDescription().Properties {
		byName[p.Name] = p
	}

	assert.Equal(t, []PropertyOption{
		{Name: "HEX", Value: "hex"},
		{Name: "RGB", Value: "rgb"},
	}, byName[ParamOutputFormat].Options)
	assert.Equal(t, []PropertyOption{
		{Name: "Median Cut", Value: "mediancut"},
		{Name: "K-Means", Value: "kmeans"},
	}, byName[ParamAlgorithm].Options)

	// Constructor options and property options live side by side.
	opts := []Option{WithDefaults(Request{ColorCount: 3})}
	assert.Equal(t, 3, New(opts...).Defaults().ColorCount)
}
