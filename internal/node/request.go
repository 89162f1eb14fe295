package node

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"strings"

	"github.com/jmylchreest/palettenode/internal/colour"
	"github.com/jmylchreest/palettenode/internal/errdefs"
	"github.com/jmylchreest/palettenode/internal/pixels"
)

// Request is one typed extraction request.
type Request struct {
	// ImageSource is an http(s) URL, file path, file:// URL or data: URI.
	ImageSource string
	// Binary, when non-empty, is the image itself and ImageSource is ignored.
	Binary       []byte
	ColorCount   int
	OutputFormat colour.OutputFormat
	Algorithm    colour.Algorithm
}

// DefaultRequest returns a request carrying the node's default parameters.
func DefaultRequest() Request {
	return Request{
		ColorCount:   DefaultColorCount,
		OutputFormat: colour.DefaultOutputFormat,
		Algorithm:    colour.DefaultAlgorithm,
	}
}

// Source returns the pixel source the request points at.
func (r Request) Source() pixels.Source {
	if len(r.Binary) > 0 {
		return pixels.FromPayload(r.Binary)
	}
	return pixels.FromLocation(r.ImageSource)
}

// Normalize validates r and fills empty enum fields with their defaults.
func (r Request) Normalize() (Request, error) {
	if err := colour.ValidateCount(r.ColorCount); err != nil {
		return r, err
	}

	format, err := colour.ParseOutputFormat(string(r.OutputFormat))
	if err != nil {
		return r, err
	}
	r.OutputFormat = format

	alg, err := colour.ParseAlgorithm(string(r.Algorithm))
	if err != nil {
		return r, err
	}
	r.Algorithm = alg

	return r, nil
}

// Parameters is the untyped parameter map a host supplies for one item.
type Parameters map[string]any

// ParseParameters validates p and overlays it on defaults.
func ParseParameters(p Parameters, defaults Request) (Request, error) {
	if err := validateParameters(p); err != nil {
		return Request{}, err
	}

	req := defaults
	req.Binary = nil
	req.ImageSource = ""

	if v, ok := p[ParamImageSource].(string); ok {
		req.ImageSource = v
	}

	if v, ok := p[ParamBinary]; ok {
		data, err := binaryParam(v)
		if err != nil {
			return Request{}, err
		}
		req.Binary = data
	}

	if v, ok := p[ParamColorCount]; ok {
		n, ok := intParam(v)
		if !ok {
			return Request{}, errdefs.InvalidParameter(ParamColorCount, "expected an integer, got %v", v)
		}
		req.ColorCount = n
	}

	if v, ok := p[ParamOutputFormat].(string); ok {
		req.OutputFormat = colour.OutputFormat(v)
	}
	if v, ok := p[ParamAlgorithm].(string); ok {
		req.Algorithm = colour.Algorithm(v)
	}

	return req.Normalize()
}

func binaryParam(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case string:
		data, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(strings.TrimSpace(b), "="))
		if err != nil {
			return nil, errdefs.InvalidParameter(ParamBinary, "not valid base64: %v", err)
		}
		return data, nil
	default:
		return nil, errdefs.InvalidParameter(ParamBinary, "expected a base64 string, got %T", v)
	}
}

// intParam accepts the numeric shapes produced by JSON, YAML and Go callers.
func intParam(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		if n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case float32:
		return intParam(float64(n))
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}
