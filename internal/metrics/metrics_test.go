package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func uniform(rows, cols int, mt gocv.MatType, v float64) gocv.Mat {
	mat := gocv.NewMatWithSize(rows, cols, mt)
	mat.SetTo(gocv.NewScalar(v, v, v, 0))
	return mat
}

func TestPSNRAndMSE(t *testing.T) {
	a := uniform(4, 4, gocv.MatTypeCV8UC1, 100)
	defer a.Close()
	b := uniform(4, 4, gocv.MatTypeCV8UC1, 110)
	defer b.Close()

	e := NewEvaluator()
	assert.Equal(t, []string{"mse", "psnr"}, e.Names())

	mse, err := e.Calculate("mse", a, b)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, mse, 1e-9)

	psnr, err := e.Calculate("psnr", a, b)
	require.NoError(t, err)
	assert.InDelta(t, 20*math.Log10(255.0/10.0), psnr, 1e-9)

	same, err := e.Calculate("psnr", a, a)
	require.NoError(t, err)
	assert.True(t, math.IsInf(same, 1))

	_, err = e.Calculate("ssim", a, b)
	assert.ErrorContains(t, err, "metric not found")
}

func TestMSEDimensionMismatch(t *testing.T) {
	a := uniform(4, 4, gocv.MatTypeCV8UC1, 0)
	defer a.Close()
	b := uniform(4, 5, gocv.MatTypeCV8UC1, 0)
	defer b.Close()

	_, err := NewMSE().Calculate(a, b)
	assert.ErrorContains(t, err, "mismatch")

	empty := gocv.NewMat()
	defer empty.Close()
	_, err = NewPSNR().Calculate(empty, b)
	assert.Error(t, err)
}

func TestChannelStats(t *testing.T) {
	mat := uniform(3, 5, gocv.MatTypeCV8UC3, 0)
	defer mat.Close()
	mat.SetTo(gocv.NewScalar(10, 20, 30, 0))

	stats := ChannelStats(mat)
	require.Len(t, stats, 3)
	assert.Equal(t, Stats{Mean: 10, StdDev: 0}, stats[0])
	assert.Equal(t, Stats{Mean: 20, StdDev: 0}, stats[1])
	assert.Equal(t, Stats{Mean: 30, StdDev: 0}, stats[2])

	empty := gocv.NewMat()
	defer empty.Close()
	assert.Nil(t, ChannelStats(empty))
}

func TestEvaluateStage(t *testing.T) {
	before := uniform(4, 4, gocv.MatTypeCV8UC3, 100)
	defer before.Close()
	after := uniform(4, 4, gocv.MatTypeCV8UC3, 130)
	defer after.Close()

	e := NewEvaluator()
	result := e.EvaluateStage(before, after)
	assert.Contains(t, result, "psnr")
	assert.InDelta(t, 900.0, result["mse"], 1.0)
	assert.Equal(t, 130.0, result["mean_0"])
	assert.Equal(t, 0.0, result["stddev_2"])

	identical := e.EvaluateStage(before, before)
	assert.NotContains(t, identical, "psnr", "infinite PSNR is omitted")
	assert.Equal(t, 0.0, identical["mse"])

	resized := uniform(6, 4, gocv.MatTypeCV8UC1, 50)
	defer resized.Close()
	shapeChanged := e.EvaluateStage(before, resized)
	assert.NotContains(t, shapeChanged, "mse")
	assert.Equal(t, 50.0, shapeChanged["mean_0"])
	assert.NotContains(t, shapeChanged, "mean_1")
}

func TestEvaluatorLookup(t *testing.T) {
	e := NewEvaluator()
	assert.Equal(t, []string{"mse", "psnr"}, e.Names())

	psnr, ok := e.Metric("psnr")
	require.True(t, ok)
	assert.True(t, psnr.IsHigherBetter())

	mse, ok := e.Metric("mse")
	require.True(t, ok)
	assert.False(t, mse.IsHigherBetter())

	_, ok = e.Metric("ssim")
	assert.False(t, ok)

	a := uniform(2, 2, gocv.MatTypeCV8UC1, 10)
	defer a.Close()
	_, err := e.Calculate("ssim", a, a)
	assert.ErrorContains(t, err, "metric not found")
}
