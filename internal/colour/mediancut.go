package colour

import (
	"cmp"
	"slices"
	"sort"
)

// channel indexes an RGB component. The declaration order is the tie-break
// priority when two channels span the same range.
type channel int

const (
	channelR channel = iota
	channelG
	channelB
)

func (c channel) of(s Sample) uint8 {
	switch c {
	case channelR:
		return s.R
	case channelG:
		return s.G
	default:
		return s.B
	}
}

// MedianCutReducer implements palette reduction with median cut quantization.
type MedianCutReducer struct{}

// NewMedianCutReducer creates a new MedianCutReducer.
func NewMedianCutReducer() *MedianCutReducer {
	return &MedianCutReducer{}
}

// Reduce partitions the samples into at most k buckets and returns the rounded
// mean of each, ordered by bucket population. The samples slice is not modified.
func (m *MedianCutReducer) Reduce(samples []Sample, k int) (*Palette, error) {
	if err := validateReduceArgs(samples, k); err != nil {
		return nil, err
	}

	work := slices.Clone(samples)
	buckets := []*bucket{newBucket(work, 0)}

	for len(buckets) < k {
		target, widest := -1, 0
		for i, b := range buckets {
			if _, span := b.widest(); span > widest {
				target, widest = i, span
			}
		}
		// Every bucket holds a single distinct colour.
		if target < 0 {
			break
		}

		left, right := buckets[target].split(len(buckets))
		buckets[target] = left
		buckets = append(buckets, right)
	}

	slices.SortStableFunc(buckets, func(a, b *bucket) int {
		if c := cmp.Compare(len(b.samples), len(a.samples)); c != 0 {
			return c
		}
		return cmp.Compare(a.order, b.order)
	})

	colours := make([]RGB, len(buckets))
	weights := make([]float64, len(buckets))
	total := float64(len(samples))
	for i, b := range buckets {
		colours[i] = b.mean()
		weights[i] = float64(len(b.samples)) / total
	}

	return NewPaletteWithWeights(colours, weights), nil
}

// bucket is a contiguous run of the working sample slice.
type bucket struct {
	samples []Sample
	order   int
	lo, hi  [3]uint8
}

func newBucket(samples []Sample, order int) *bucket {
	b := &bucket{
		samples: samples,
		order:   order,
		lo:      [3]uint8{255, 255, 255},
	}
	for _, s := range samples {
		for c := channelR; c <= channelB; c++ {
			v := c.of(s)
			b.lo[c] = min(b.lo[c], v)
			b.hi[c] = max(b.hi[c], v)
		}
	}
	return b
}

// widest returns the channel with the greatest range and that range.
func (b *bucket) widest() (channel, int) {
	best, span := channelR, int(b.hi[channelR])-int(b.lo[channelR])
	for c := channelG; c <= channelB; c++ {
		if s := int(b.hi[c]) - int(b.lo[c]); s > span {
			best, span = c, s
		}
	}
	return best, span
}

// split divides the bucket along its widest channel. The left half keeps the
// bucket's creation order, the right half takes order.
func (b *bucket) split(order int) (*bucket, *bucket) {
	c, _ := b.widest()
	slices.SortStableFunc(b.samples, func(x, y Sample) int {
		return cmp.Compare(c.of(x), c.of(y))
	})
	cut := medianBoundary(b.samples, c)
	return newBucket(b.samples[:cut], b.order), newBucket(b.samples[cut:], order)
}

// medianBoundary returns the split index nearest the median that does not
// separate samples sharing a channel value. sorted must span more than one value.
func medianBoundary(sorted []Sample, c channel) int {
	mid := len(sorted) / 2
	v := c.of(sorted[mid])
	lo := sort.Search(len(sorted), func(i int) bool { return c.of(sorted[i]) >= v })
	hi := sort.Search(len(sorted), func(i int) bool { return c.of(sorted[i]) > v })

	switch {
	case lo == 0:
		return hi
	case hi == len(sorted):
		return lo
	case mid-lo <= hi-mid:
		return lo
	default:
		return hi
	}
}

func (b *bucket) mean() RGB {
	var r, g, bl uint64
	for _, s := range b.samples {
		r += uint64(s.R)
		g += uint64(s.G)
		bl += uint64(s.B)
	}
	n := uint64(len(b.samples))
	return RGB{
		R: uint8((r + n/2) / n),
		G: uint8((g + n/2) / n),
		B: uint8((bl + n/2) / n),
	}
}
