package colour

import (
	"fmt"

	"github.com/jmylchreest/palettenode/internal/errdefs"
)

// MaxColourCount is the largest palette a reducer will produce.
const MaxColourCount = 256

// Reducer reduces a set of colour samples to a small representative palette.
type Reducer interface {
	// Reduce returns at most k colours, most dominant first.
	Reduce(samples []Sample, k int) (*Palette, error)
}

// Algorithm represents the palette reduction algorithm.
type Algorithm string

const (
	// AlgorithmMedianCut recursively splits colour space at channel medians.
	AlgorithmMedianCut Algorithm = "mediancut"

	// AlgorithmKMeans uses k-means clustering with a content-derived seed.
	AlgorithmKMeans Algorithm = "kmeans"
)

// DefaultAlgorithm is used when a request does not name one.
const DefaultAlgorithm = AlgorithmMedianCut

// ValidAlgorithms returns a list of valid algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{AlgorithmMedianCut, AlgorithmKMeans}
}

// ParseAlgorithm resolves an algorithm name. The empty string selects DefaultAlgorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	if name == "" {
		return DefaultAlgorithm, nil
	}
	for _, alg := range ValidAlgorithms() {
		if Algorithm(name) == alg {
			return alg, nil
		}
	}
	return "", errdefs.InvalidParameter("algorithm", "unknown algorithm %q (valid algorithms: %v)", name, ValidAlgorithms())
}

// NewReducer creates a Reducer for the specified algorithm.
func NewReducer(alg Algorithm) (Reducer, error) {
	switch alg {
	case AlgorithmMedianCut, "":
		return NewMedianCutReducer(), nil
	case AlgorithmKMeans:
		return NewKMeansReducer(), nil
	default:
		return nil, fmt.Errorf("unknown algorithm: %s (valid algorithms: %v)", alg, ValidAlgorithms())
	}
}

// ValidateCount checks that k is a usable palette size.
func ValidateCount(k int) error {
	if k < 1 {
		return errdefs.InvalidParameter("colorCount", "must be at least 1, got %d", k)
	}
	if k > MaxColourCount {
		return errdefs.InvalidParameter("colorCount", "too large: %d (maximum: %d)", k, MaxColourCount)
	}
	return nil
}

func validateReduceArgs(samples []Sample, k int) error {
	if err := ValidateCount(k); err != nil {
		return err
	}
	if len(samples) == 0 {
		return errdefs.InvalidParameter("samples", "no pixels to reduce")
	}
	return nil
}
