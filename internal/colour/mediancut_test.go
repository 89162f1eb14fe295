package colour

import (
	"slices"
	"testing"

	"github.com/jmylchreest/palettenode/internal/errdefs"
	"pgregory.net/rapid"
)

func repeat(s Sample, n int) []Sample {
	out := make([]Sample, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func distinct(samples []Sample) int {
	seen := make(map[Sample]struct{})
	for _, s := range samples {
		seen[s] = struct{}{}
	}
	return len(seen)
}

func TestMedianCutSingleColour(t *testing.T) {
	samples := repeat(Sample{R: 10, G: 20, B: 30}, 64)

	palette, err := NewMedianCutReducer().Reduce(samples, 5)
	if err != nil {
		t.Fatalf("Reduce() error = %v", err)
	}
	if palette.Len() != 1 {
		t.Fatalf("Reduce() returned %d colours, want 1", palette.Len())
	}
	if want := (RGB{R: 10, G: 20, B: 30}); palette.Colours[0] != want {
		t.Errorf("Reduce() colour = %+v, want %+v", palette.Colours[0], want)
	}
	if palette.Weights[0] != 1 {
		t.Errorf("Reduce() weight = %v, want 1", palette.Weights[0])
	}
}

func TestMedianCutSeparatesBlocks(t *testing.T) {
	// Three flat blocks with distinct populations.
	var samples []Sample
	samples = append(samples, repeat(Sample{R: 0, G: 0, B: 255}, 10)...)
	samples = append(samples, repeat(Sample{R: 255, G: 0, B: 0}, 30)...)
	samples = append(samples, repeat(Sample{R: 0, G: 255, B: 0}, 20)...)

	palette, err := NewMedianCutReducer().Reduce(samples, 3)
	if err != nil {
		t.Fatalf("Reduce() error = %v", err)
	}

	want := []RGB{
		{R: 255, G: 0, B: 0},
		{R: 0, G: 255, B: 0},
		{R: 0, G: 0, B: 255},
	}
	if !slices.Equal(palette.Colours, want) {
		t.Errorf("Reduce() = %v, want %v (ordered by population)", palette.Colours, want)
	}
}

func TestMedianCutRoundsMean(t *testing.T) {
	samples := []Sample{{R: 0}, {R: 1}}

	palette, err := NewMedianCutReducer().Reduce(samples, 1)
	if err != nil {
		t.Fatalf("Reduce() error = %v", err)
	}
	if want := (RGB{R: 1}); palette.Colours[0] != want {
		t.Errorf("Reduce() = %+v, want %+v", palette.Colours[0], want)
	}
}

func TestMedianCutStopsAtDistinctCount(t *testing.T) {
	samples := []Sample{{R: 1}, {R: 1}, {R: 1}, {R: 9}}

	palette, err := NewMedianCutReducer().Reduce(samples, 8)
	if err != nil {
		t.Fatalf("Reduce() error = %v", err)
	}
	want := []RGB{{R: 1}, {R: 9}}
	if !slices.Equal(palette.Colours, want) {
		t.Errorf("Reduce() = %v, want %v", palette.Colours, want)
	}
}

func TestMedianCutDoesNotMutateInput(t *testing.T) {
	samples := []Sample{{R: 200}, {G: 100}, {B: 50}, {R: 10, G: 10, B: 10}}
	original := slices.Clone(samples)

	if _, err := NewMedianCutReducer().Reduce(samples, 3); err != nil {
		t.Fatalf("Reduce() error = %v", err)
	}
	if !slices.Equal(samples, original) {
		t.Errorf("Reduce() mutated input: %v, want %v", samples, original)
	}
}

func TestMedianCutInvalidArguments(t *testing.T) {
	tests := []struct {
		name    string
		samples []Sample
		k       int
	}{
		{name: "zero count", samples: []Sample{{R: 1}}, k: 0},
		{name: "negative count", samples: []Sample{{R: 1}}, k: -3},
		{name: "count too large", samples: []Sample{{R: 1}}, k: MaxColourCount + 1},
		{name: "no samples", samples: nil, k: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMedianCutReducer().Reduce(tt.samples, tt.k)
			if !errdefs.IsInvalidParameter(err) {
				t.Errorf("Reduce() error = %v, want InvalidParameterError", err)
			}
		})
	}
}

func TestMedianBoundary(t *testing.T) {
	tests := []struct {
		name   string
		values []uint8
		want   int
	}{
		{name: "even split", values: []uint8{1, 2, 3, 4}, want: 2},
		{name: "median run starts at zero", values: []uint8{1, 1, 1, 9}, want: 3},
		{name: "median run reaches end", values: []uint8{1, 9, 9, 9}, want: 1},
		{name: "nearer lower boundary", values: []uint8{1, 2, 5, 5, 5, 5, 5, 9}, want: 2},
		{name: "nearer upper boundary", values: []uint8{1, 5, 5, 5, 5, 8, 9, 9}, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sorted := make([]Sample, len(tt.values))
			for i, v := range tt.values {
				sorted[i] = Sample{R: v}
			}
			if got := medianBoundary(sorted, channelR); got != tt.want {
				t.Errorf("medianBoundary() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBucketWidestPrefersRed(t *testing.T) {
	b := newBucket([]Sample{{R: 0, G: 0, B: 0}, {R: 10, G: 10, B: 10}}, 0)
	if c, span := b.widest(); c != channelR || span != 10 {
		t.Errorf("widest() = (%d, %d), want (%d, 10)", c, span, channelR)
	}

	b = newBucket([]Sample{{R: 0, G: 0, B: 0}, {R: 5, G: 10, B: 10}}, 0)
	if c, _ := b.widest(); c != channelG {
		t.Errorf("widest() = %d, want green over blue on tie", c)
	}
}

func sampleGen() *rapid.Generator[Sample] {
	return rapid.Custom(func(t *rapid.T) Sample {
		return Sample{
			R: rapid.Uint8().Draw(t, "r"),
			G: rapid.Uint8().Draw(t, "g"),
			B: rapid.Uint8().Draw(t, "b"),
		}
	})
}

func TestMedianCutProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		samples := rapid.SliceOfN(sampleGen(), 1, 300).Draw(t, "samples")
		k := rapid.IntRange(1, 32).Draw(t, "k")

		reducer := NewMedianCutReducer()
		first, err := reducer.Reduce(samples, k)
		if err != nil {
			t.Fatalf("Reduce() error = %v", err)
		}
		second, err := reducer.Reduce(samples, k)
		if err != nil {
			t.Fatalf("Reduce() error = %v", err)
		}

		if !slices.Equal(first.Colours, second.Colours) {
			t.Fatalf("Reduce() not deterministic: %v then %v", first.Colours, second.Colours)
		}
		if first.Len() == 0 || first.Len() > k {
			t.Fatalf("Reduce() returned %d colours for k=%d", first.Len(), k)
		}
		if d := distinct(samples); first.Len() > d {
			t.Fatalf("Reduce() returned %d colours from %d distinct samples", first.Len(), d)
		}

		total := 0.0
		for _, w := range first.Weights {
			total += w
		}
		if total < 0.999 || total > 1.001 {
			t.Fatalf("weights sum to %v, want 1", total)
		}
	})
}
