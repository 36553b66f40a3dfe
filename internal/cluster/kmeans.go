// Package cluster standardizes feature matrices and partitions them with k-means.
package cluster

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrTooFewSamples is returned when there are fewer rows than clusters.
	ErrTooFewSamples = errors.New("cluster: fewer samples than clusters")
	// ErrRagged is returned when rows differ in length.
	ErrRagged = errors.New("cluster: rows have different lengths")
)

// Standardize scales every column to zero mean and unit population variance.
// Constant columns are centred but left unscaled.
func Standardize(x [][]float64) ([][]float64, error) {
	if len(x) == 0 {
		return nil, nil
	}
	dims := len(x[0])
	for _, row := range x {
		if len(row) != dims {
			return nil, ErrRagged
		}
	}

	out := make([][]float64, len(x))
	for i := range out {
		out[i] = make([]float64, dims)
	}
	col := make([]float64, len(x))
	for j := 0; j < dims; j++ {
		for i, row := range x {
			col[i] = row[j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		for i := range x {
			out[i][j] = (col[i] - mean) / std
		}
	}
	return out, nil
}

// KMeans configures a Lloyd's algorithm run with k-means++ seeding.
type KMeans struct {
	K       int
	Seed    int64
	NInit   int
	MaxIter int
	// Tol is relative to the mean per-feature variance of the data.
	Tol float64
}

// NewKMeans returns a KMeans with the conventional defaults.
func NewKMeans(k int, seed int64) KMeans {
	return KMeans{K: k, Seed: seed, NInit: 10, MaxIter: 300, Tol: 1e-4}
}

// Result holds the best of the NInit runs.
type Result struct {
	Labels     []int
	Centroids  [][]float64
	Inertia    float64
	Iterations int
}

// Sizes counts members per cluster.
func (r *Result) Sizes() []int {
	sizes := make([]int, len(r.Centroids))
	for _, l := range r.Labels {
		sizes[l]++
	}
	return sizes
}

// Fit clusters x. The same x and Seed always yield the same Result.
func (k KMeans) Fit(x [][]float64) (*Result, error) {
	if k.K <= 0 {
		return nil, fmt.Errorf("cluster: k must be positive, got %d", k.K)
	}
	if len(x) < k.K {
		return nil, fmt.Errorf("%w: %d samples, k=%d", ErrTooFewSamples, len(x), k.K)
	}
	dims := len(x[0])
	for _, row := range x {
		if len(row) != dims {
			return nil, ErrRagged
		}
	}
	nInit := k.NInit
	if nInit <= 0 {
		nInit = 1
	}
	maxIter := k.MaxIter
	if maxIter <= 0 {
		maxIter = 300
	}
	tol := k.Tol * meanVariance(x)

	rnd := rand.New(rand.NewSource(k.Seed))
	var best *Result
	for run := 0; run < nInit; run++ {
		centroids := initPlusPlus(x, k.K, rnd)
		res := lloyd(x, centroids, maxIter, tol)
		if best == nil || res.Inertia < best.Inertia {
			best = res
		}
	}
	return best, nil
}

func lloyd(x [][]float64, centroids [][]float64, maxIter int, tol float64) *Result {
	labels := make([]int, len(x))
	iter := 0
	for iter < maxIter {
		iter++
		assign(x, centroids, labels)
		next := recompute(x, labels, len(centroids))
		var shift float64
		for c := range centroids {
			shift += sqDist(centroids[c], next[c])
		}
		centroids = next
		if shift <= tol {
			break
		}
	}
	inertia := assign(x, centroids, labels)
	return &Result{Labels: labels, Centroids: centroids, Inertia: inertia, Iterations: iter}
}

// assign sets each label to its nearest centroid and returns the inertia.
func assign(x [][]float64, centroids [][]float64, labels []int) float64 {
	var inertia float64
	for i, row := range x {
		bestC, bestD := 0, math.Inf(1)
		for c, cen := range centroids {
			if d := sqDist(row, cen); d < bestD {
				bestC, bestD = c, d
			}
		}
		labels[i] = bestC
		inertia += bestD
	}
	return inertia
}

// recompute averages the members of each cluster. An empty cluster takes the
// point farthest from its current centroid.
func recompute(x [][]float64, labels []int, k int) [][]float64 {
	dims := len(x[0])
	next := make([][]float64, k)
	counts := make([]int, k)
	for c := range next {
		next[c] = make([]float64, dims)
	}
	for i, row := range x {
		floats.Add(next[labels[i]], row)
		counts[labels[i]]++
	}
	for c := range next {
		if counts[c] > 0 {
			floats.Scale(1/float64(counts[c]), next[c])
		}
	}
	for c := range next {
		if counts[c] > 0 {
			continue
		}
		far, farD := 0, -1.0
		for i, row := range x {
			if d := sqDist(row, next[labels[i]]); d > farD {
				far, farD = i, d
			}
		}
		counts[labels[far]]--
		labels[far] = c
		counts[c] = 1
		copy(next[c], x[far])
	}
	return next
}

func initPlusPlus(x [][]float64, k int, rnd *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(x[rnd.Intn(len(x))]))

	dist := make([]float64, len(x))
	for i, row := range x {
		dist[i] = sqDist(row, centroids[0])
	}
	for len(centroids) < k {
		total := floats.Sum(dist)
		idx := 0
		if total > 0 {
			target := rnd.Float64() * total
			for i, d := range dist {
				target -= d
				if target < 0 {
					idx = i
					break
				}
				idx = i
			}
		} else {
			idx = rnd.Intn(len(x))
		}
		c := clone(x[idx])
		centroids = append(centroids, c)
		for i, row := range x {
			if d := sqDist(row, c); d < dist[i] {
				dist[i] = d
			}
		}
	}
	return centroids
}

func meanVariance(x [][]float64) float64 {
	dims := len(x[0])
	col := make([]float64, len(x))
	var total float64
	for j := 0; j < dims; j++ {
		for i, row := range x {
			col[i] = row[j]
		}
		_, v := stat.PopMeanVariance(col, nil)
		total += v
	}
	return total / float64(dims)
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
