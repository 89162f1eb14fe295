package node

import "github.com/jmylchreest/palettenode/internal/colour"

// Property types understood by the host's parameter editor.
const (
	PropertyString  = "string"
	PropertyNumber  = "number"
	PropertyOptions = "options"
	PropertyBoolean = "boolean"
)

// PropertyOption is one choice of an options property.
type PropertyOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// TypeOptions tweaks how the host renders a property.
type TypeOptions struct {
	Password bool `json:"password,omitempty"`
	MinValue *int `json:"minValue,omitempty"`
	MaxValue *int `json:"maxValue,omitempty"`
}

// Property declares one parameter of a node or credential.
type Property struct {
	DisplayName string           `json:"displayName"`
	Name        string           `json:"name"`
	Type        string           `json:"type"`
	Default     any              `json:"default"`
	Description string           `json:"description,omitempty"`
	Options     []PropertyOption `json:"options,omitempty"`
	TypeOptions *TypeOptions     `json:"typeOptions,omitempty"`
}

// Defaults are the values the host gives a freshly placed node.
type Defaults struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Description is the metadata a host uses to register and render the node.
type Description struct {
	DisplayName string     `json:"displayName"`
	Name        string     `json:"name"`
	Icon        string     `json:"icon"`
	Group       []string   `json:"group"`
	Version     int        `json:"version"`
	Description string     `json:"description"`
	Defaults    Defaults   `json:"defaults"`
	Inputs      []string   `json:"inputs"`
	Outputs     []string   `json:"outputs"`
	Properties  []Property `json:"properties"`
}

// Parameter names.
const (
	ParamImageSource  = "imageSource"
	ParamBinary       = "binary"
	ParamColorCount   = "colorCount"
	ParamOutputFormat = "outputFormat"
	ParamAlgorithm    = "algorithm"
)

// Name is the node's registered type name.
const Name = "dominantColorExtractor"

// DefaultColorCount is the palette size used when colorCount is omitted.
const DefaultColorCount = 5

// NodeDescription returns the node's metadata.
func NodeDescription() Description {
	one, maxCount := 1, colour.MaxColourCount
	return Description{
		DisplayName: "Dominant Color Extractor",
		Name:        Name,
		Icon:        "fa:palette",
		Group:       []string{"transform"},
		Version:     1,
		Description: "Extract dominant colors from an image",
		Defaults: Defaults{
			Name:  "Dominant Color Extractor",
			Color: "#772244",
		},
		Inputs:  []string{"main"},
		Outputs: []string{"main"},
		Properties: []Property{
			{
				DisplayName: "Image URL or Binary",
				Name:        ParamImageSource,
				Type:        PropertyString,
				Default:     "",
				Description: "URL of the image or binary data",
			},
			{
				DisplayName: "Binary Data",
				Name:        ParamBinary,
				Type:        PropertyString,
				Default:     "",
				Description: "Base64 image payload, used instead of the image source when set",
			},
			{
				DisplayName: "Number of Colors",
				Name:        ParamColorCount,
				Type:        PropertyNumber,
				Default:     DefaultColorCount,
				Description: "How many dominant colors to extract",
				TypeOptions: &TypeOptions{MinValue: &one, MaxValue: &maxCount},
			},
			{
				DisplayName: "Output Format",
				Name:        ParamOutputFormat,
				Type:        PropertyOptions,
				Default:     string(colour.DefaultOutputFormat),
				Description: "Format of the output colors",
				Options: []PropertyOption{
					{Name: "HEX", Value: string(colour.FormatHex)},
					{Name: "RGB", Value: string(colour.FormatRGB)},
				},
			},
			{
				DisplayName: "Algorithm",
				Name:        ParamAlgorithm,
				Type:        PropertyOptions,
				Default:     string(colour.DefaultAlgorithm),
				Description: "Quantization algorithm used to pick the palette",
				Options: []PropertyOption{
					{Name: "Median Cut", Value: string(colour.AlgorithmMedianCut)},
					{Name: "K-Means", Value: string(colour.AlgorithmKMeans)},
				},
			},
		},
	}
}
