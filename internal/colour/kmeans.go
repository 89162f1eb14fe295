package colour

import (
	"cmp"
	"crypto/sha256"
	"math"
	"math/rand/v2"
	"slices"
)

// Default k-means settings.
const (
	kmeansMaxIterations = 20
	kmeansConvergence   = 2.0
	kmeansMaxSamples    = 5000
)

// KMeansReducer implements palette reduction using k-means clustering.
// The random source is seeded from the sample content, so identical input
// always yields the identical palette.
type KMeansReducer struct {
	maxIterations int
	convergence   float64
	maxSamples    int
}

// NewKMeansReducer creates a new KMeansReducer with default settings.
func NewKMeansReducer() *KMeansReducer {
	return &KMeansReducer{
		maxIterations: kmeansMaxIterations,
		convergence:   kmeansConvergence,
		maxSamples:    kmeansMaxSamples,
	}
}

// Reduce clusters the samples into at most k colours, ordered by cluster size.
func (e *KMeansReducer) Reduce(samples []Sample, k int) (*Palette, error) {
	if err := validateReduceArgs(samples, k); err != nil {
		return nil, err
	}

	// With no more distinct colours than clusters, the distinct colours are the answer.
	counts := make(map[Sample]int)
	var unique []Sample
	for _, s := range samples {
		if counts[s] == 0 {
			unique = append(unique, s)
		}
		counts[s]++
	}
	if len(unique) <= k {
		slices.SortStableFunc(unique, func(a, b Sample) int {
			return cmp.Compare(counts[b], counts[a])
		})
		colours := make([]RGB, len(unique))
		weights := make([]float64, len(unique))
		for i, s := range unique {
			colours[i] = RGB(s)
			weights[i] = float64(counts[s]) / float64(len(samples))
		}
		return NewPaletteWithWeights(colours, weights), nil
	}

	points := e.subsample(samples)
	rng := rand.New(rand.NewChaCha8(contentSeed(points)))
	centroids, sizes := e.kmeans(points, k, rng)

	// Drop empty clusters and merge centroids that round to the same colour.
	merged := make(map[RGB]int)
	var order []RGB
	for i, c := range centroids {
		if sizes[i] == 0 {
			continue
		}
		rgb := c.rgb()
		if _, ok := merged[rgb]; !ok {
			order = append(order, rgb)
		}
		merged[rgb] += sizes[i]
	}
	slices.SortStableFunc(order, func(a, b RGB) int {
		return cmp.Compare(merged[b], merged[a])
	})

	weights := make([]float64, len(order))
	for i, c := range order {
		weights[i] = float64(merged[c]) / float64(len(points))
	}
	return NewPaletteWithWeights(order, weights), nil
}

// point3D represents a point in 3D RGB colour space.
type point3D struct {
	R, G, B float64
}

func pointOf(s Sample) point3D {
	return point3D{R: float64(s.R), G: float64(s.G), B: float64(s.B)}
}

// distance calculates the Euclidean distance between two points in RGB space.
func (p point3D) distance(other point3D) float64 {
	dr := p.R - other.R
	dg := p.G - other.G
	db := p.B - other.B
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

func (p point3D) rgb() RGB {
	return RGB{R: clampChannel(p.R), G: clampChannel(p.G), B: clampChannel(p.B)}
}

func clampChannel(v float64) uint8 {
	return uint8(math.Round(min(max(v, 0), 255)))
}

// subsample takes an evenly strided subset of large inputs.
func (e *KMeansReducer) subsample(samples []Sample) []point3D {
	step := max(len(samples)/e.maxSamples, 1)
	points := make([]point3D, 0, min(len(samples), e.maxSamples+1))
	for i := 0; i < len(samples); i += step {
		points = append(points, pointOf(samples[i]))
	}
	return points
}

// contentSeed hashes the points into a ChaCha8 seed.
func contentSeed(points []point3D) [32]byte {
	h := sha256.New()
	buf := make([]byte, 3)
	for _, p := range points {
		buf[0], buf[1], buf[2] = byte(p.R), byte(p.G), byte(p.B)
		h.Write(buf)
	}
	var seed [32]byte
	copy(seed[:], h.Sum(nil))
	return seed
}

// kmeans performs k-means clustering and returns centroids with their cluster sizes.
func (e *KMeansReducer) kmeans(points []point3D, k int, rng *rand.Rand) ([]point3D, []int) {
	centroids := initializeCentroids(points, k, rng)
	assignments := make([]int, len(points))

	for range e.maxIterations {
		changed := 0
		for i, point := range points {
			nearest := findNearestCentroid(point, centroids)
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed++
			}
		}

		// Fewer than 1% of assignments moved.
		if float64(changed)/float64(len(points)) < 0.01 {
			break
		}

		next := recalculateCentroids(points, assignments, centroids)
		movement := 0.0
		for i := range centroids {
			movement += centroids[i].distance(next[i])
		}
		centroids = next

		if movement/float64(k) < e.convergence {
			break
		}
	}

	sizes := make([]int, k)
	for i, point := range points {
		assignments[i] = findNearestCentroid(point, centroids)
		sizes[assignments[i]]++
	}
	return centroids, sizes
}

// initializeCentroids chooses starting centroids with k-means++.
func initializeCentroids(points []point3D, k int, rng *rand.Rand) []point3D {
	centroids := make([]point3D, 0, k)
	centroids = append(centroids, points[rng.IntN(len(points))])

	distances := make([]float64, len(points))
	for len(centroids) < k {
		total := 0.0
		for i, point := range points {
			nearest := math.MaxFloat64
			for _, c := range centroids {
				nearest = min(nearest, point.distance(c))
			}
			distances[i] = nearest * nearest
			total += distances[i]
		}

		// Every point already coincides with a centroid; the duplicate ends up empty.
		if total == 0 {
			centroids = append(centroids, centroids[len(centroids)-1])
			continue
		}

		target := rng.Float64() * total
		cumulative := 0.0
		chosen := len(points) - 1
		for i, d := range distances {
			cumulative += d
			if cumulative >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, points[chosen])
	}
	return centroids
}

// findNearestCentroid finds the index of the nearest centroid to a point.
func findNearestCentroid(point point3D, centroids []point3D) int {
	minDist := math.MaxFloat64
	nearest := 0
	for i, centroid := range centroids {
		if dist := point.distance(centroid); dist < minDist {
			minDist = dist
			nearest = i
		}
	}
	return nearest
}

// recalculateCentroids moves each centroid to the mean of its points. Empty
// clusters keep their previous position.
func recalculateCentroids(points []point3D, assignments []int, previous []point3D) []point3D {
	sums := make([]point3D, len(previous))
	counts := make([]int, len(previous))
	for i, point := range points {
		cluster := assignments[i]
		sums[cluster].R += point.R
		sums[cluster].G += point.G
		sums[cluster].B += point.B
		counts[cluster]++
	}

	centroids := make([]point3D, len(previous))
	for i := range previous {
		if counts[i] == 0 {
			centroids[i] = previous[i]
			continue
		}
		n := float64(counts[i])
		centroids[i] = point3D{R: sums[i].R / n, G: sums[i].G / n, B: sums[i].B / n}
	}
	return centroids
}
