package cluster

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func blobs(rnd *rand.Rand) ([][]float64, []int) {
	centers := [][]float64{{0, 0}, {10, 10}, {-10, 10}}
	var x [][]float64
	var truth []int
	for c, cen := range centers {
		for i := 0; i < 30; i++ {
			x = append(x, []float64{cen[0] + rnd.NormFloat64()*0.5, cen[1] + rnd.NormFloat64()*0.5})
			truth = append(truth, c)
		}
	}
	return x, truth
}

func TestStandardize(t *testing.T) {
	x := [][]float64{{1, 5}, {2, 5}, {3, 5}, {4, 5}}
	z, err := Standardize(x)
	require.NoError(t, err)

	col0 := []float64{z[0][0], z[1][0], z[2][0], z[3][0]}
	mean, std := stat.PopMeanStdDev(col0, nil)
	assert.InDelta(t, 0, mean, 1e-12)
	assert.InDelta(t, 1, std, 1e-12)

	for _, row := range z {
		assert.Equal(t, 0.0, row[1], "constant column is centred, not scaled")
	}
	assert.Equal(t, []float64{1, 5}, x[0], "input is not modified")
}

func TestStandardizeRagged(t *testing.T) {
	_, err := Standardize([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, ErrRagged)
}

func TestKMeansSeparatesBlobs(t *testing.T) {
	x, truth := blobs(rand.New(rand.NewSource(3)))
	res, err := NewKMeans(3, 42).Fit(x)
	require.NoError(t, err)
	require.Len(t, res.Labels, len(x))
	assert.ElementsMatch(t, []int{30, 30, 30}, res.Sizes())

	// same true blob <=> same label
	mapping := map[int]int{}
	for i, l := range res.Labels {
		if want, ok := mapping[truth[i]]; ok {
			assert.Equal(t, want, l)
		} else {
			mapping[truth[i]] = l
		}
	}
	assert.Len(t, mapping, 3)
}

func TestKMeansIsDeterministicForSeed(t *testing.T) {
	x, _ := blobs(rand.New(rand.NewSource(9)))
	z, err := Standardize(x)
	require.NoError(t, err)

	a, err := NewKMeans(3, 42).Fit(z)
	require.NoError(t, err)
	b, err := NewKMeans(3, 42).Fit(z)
	require.NoError(t, err)

	assert.Equal(t, a.Labels, b.Labels)
	assert.Equal(t, a.Inertia, b.Inertia)
}

func TestKMeansTooFewSamples(t *testing.T) {
	_, err := NewKMeans(3, 42).Fit([][]float64{{1, 1}, {2, 2}})
	assert.ErrorIs(t, err, ErrTooFewSamples)

	_, err = NewKMeans(0, 42).Fit([][]float64{{1, 1}})
	assert.Error(t, err)
}

func TestKMeansIdenticalPoints(t *testing.T) {
	x := [][]float64{{1, 1}, {1, 1}, {1, 1}, {1, 1}}
	res, err := NewKMeans(3, 42).Fit(x)
	require.NoError(t, err)
	assert.Len(t, res.Labels, 4)
	assert.Equal(t, 0.0, res.Inertia)
	for _, l := range res.Labels {
		assert.GreaterOrEqual(t, l, 0)
		assert.Less(t, l, 3)
	}
}
