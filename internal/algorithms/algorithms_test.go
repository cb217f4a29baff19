package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// testImage builds a deterministic gradient with a bright square in the middle
func testImage(t *testing.T, rows, cols, channels int) gocv.Mat {
	t.Helper()
	buf := make([]byte, rows*cols*channels)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			inSquare := r > rows/4 && r < 3*rows/4 && c > cols/4 && c < 3*cols/4
			for ch := 0; ch < channels; ch++ {
				v := (r*3 + c*5 + ch*40) % 120
				if inSquare {
					v = 230
				}
				buf[(r*cols+c)*channels+ch] = byte(v)
			}
		}
	}

	mt := gocv.MatTypeCV8UC3
	if channels == 1 {
		mt = gocv.MatTypeCV8UC1
	}
	shared, err := gocv.NewMatFromBytes(rows, cols, mt, buf)
	require.NoError(t, err)
	defer shared.Close()
	return shared.Clone()
}

func uniformImage(rows, cols int, v float64) gocv.Mat {
	mat := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(v, v, v, 0))
	return mat
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{
		"canny",
		"detail_enhance",
		"edge_colorize",
		"nlm_denoise",
		"scale_abs",
		"wavelet_restore",
	}, Names())

	assert.True(t, IsValidAlgorithm("nlm_denoise"))
	assert.False(t, IsValidAlgorithm("gaussian"))

	input := uniformImage(4, 4, 1)
	defer input.Close()
	_, err := Apply("gaussian", input, nil)
	assert.ErrorContains(t, err, "algorithm not found")
	assert.Error(t, ValidateParameters("gaussian", nil))

	for _, name := range Names() {
		algo, ok := Get(name)
		require.True(t, ok)
		assert.NoError(t, algo.Validate(algo.GetDefaultParams()), name)
		assert.Len(t, algo.GetParameterInfo(), len(algo.GetDefaultParams()), name)
		assert.NotEmpty(t, algo.GetName())
		assert.NotEmpty(t, algo.GetDescription())
	}
}

func TestEmptyInputRejected(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	for _, name := range Names() {
		out, err := Apply(name, empty, nil)
		assert.Error(t, err, name)
		out.Close()
	}
}

func TestFloatParamAcceptsYAMLIntegers(t *testing.T) {
	params := map[string]interface{}{"a": 3, "b": 2.5, "c": "x", "d": int64(4), "e": float32(1.5)}
	assert.Equal(t, 3.0, floatParam(params, "a", 0))
	assert.Equal(t, 2.5, floatParam(params, "b", 0))
	assert.Equal(t, 9.0, floatParam(params, "c", 9))
	assert.Equal(t, 4.0, floatParam(params, "d", 0))
	assert.Equal(t, 1.5, floatParam(params, "e", 0))
	assert.Equal(t, 7.0, floatParam(params, "missing", 7))
	assert.Equal(t, 3, intParam(params, "a", 0))

	assert.ErrorContains(t, checkRange(params, "c", 0, 1), "must be a number")
	assert.ErrorContains(t, checkRange(params, "a", 0, 1), "between")
	assert.NoError(t, checkRange(params, "missing", 0, 1))
}

func TestScaleAbs(t *testing.T) {
	input := uniformImage(3, 3, 100)
	defer input.Close()

	out, err := Apply("scale_abs", input, map[string]interface{}{"alpha": 1.2, "beta": 10.0})
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, gocv.Vecb{130, 130, 130}, out.GetVecbAt(1, 1))
	assert.Equal(t, input.Rows(), out.Rows())
	assert.Equal(t, input.Cols(), out.Cols())
	assert.Equal(t, 3, out.Channels())
}

func TestScaleAbsClamps(t *testing.T) {
	input := uniformImage(2, 2, 250)
	defer input.Close()

	out, err := Apply("scale_abs", input, map[string]interface{}{"alpha": 1.2, "beta": 10})
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, gocv.Vecb{255, 255, 255}, out.GetVecbAt(0, 0))

	_, err = Apply("scale_abs", input, map[string]interface{}{"alpha": 50.0})
	assert.Error(t, err)
}

func TestScaleAbsNegativeOffsetClampsToZero(t *testing.T) {
	input := uniformImage(2, 2, 20)
	defer input.Close()

	out, err := Apply("scale_abs", input, map[string]interface{}{"alpha": 1.0, "beta": -50.0})
	require.NoError(t, err)
	defer out.Close()

	// |20 - 50| would be 30; the rescale saturates at 0 instead.
	assert.Equal(t, gocv.Vecb{0, 0, 0}, out.GetVecbAt(0, 0))
	assert.Equal(t, gocv.MatTypeCV8UC3, out.Type())
}

func TestWaveletRestoreEvenShapeIsExact(t *testing.T) {
	input := testImage(t, 12, 16, 3)
	defer input.Close()

	out, err := Apply("wavelet_restore", input, nil)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, 12, out.Rows())
	assert.Equal(t, 16, out.Cols())
	assert.Equal(t, 3, out.Channels())
	assert.Equal(t, input.ToBytes(), out.ToBytes())
}

func TestWaveletRestoreOddShapeIsPadded(t *testing.T) {
	for _, channels := range []int{1, 3} {
		input := testImage(t, 9, 15, channels)

		out, err := Apply("wavelet_restore", input, map[string]interface{}{"wavelet": "bior1.3"})
		require.NoError(t, err)

		assert.Equal(t, 10, out.Rows())
		assert.Equal(t, 16, out.Cols())
		assert.Equal(t, channels, out.Channels())

		out.Close()
		input.Close()
	}
}

func TestWaveletRestoreRejectsUnknownFilter(t *testing.T) {
	input := testImage(t, 4, 4, 3)
	defer input.Close()

	_, err := Apply("wavelet_restore", input, map[string]interface{}{"wavelet": "haar"})
	assert.ErrorContains(t, err, "unknown wavelet")

	_, err = Apply("wavelet_restore", input, map[string]interface{}{"wavelet": 3})
	assert.Error(t, err)
}

func TestSaturateUint8(t *testing.T) {
	assert.Equal(t, uint8(0), saturateUint8(-3.2))
	assert.Equal(t, uint8(255), saturateUint8(300))
	assert.Equal(t, uint8(2), saturateUint8(2.5))
	assert.Equal(t, uint8(4), saturateUint8(3.5))
	assert.Equal(t, uint8(7), saturateUint8(6.9999999))
}

func TestNLMDenoise(t *testing.T) {
	input := testImage(t, 32, 32, 3)
	defer input.Close()

	algo, _ := Get("nlm_denoise")
	out, err := algo.Apply(input, algo.GetDefaultParams())
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, 32, out.Rows())
	assert.Equal(t, 32, out.Cols())
	assert.Equal(t, 3, out.Channels())

	gray := testImage(t, 16, 16, 1)
	defer gray.Close()
	grayOut, err := algo.Apply(gray, nil)
	require.NoError(t, err)
	defer grayOut.Close()
	assert.Equal(t, 1, grayOut.Channels())
}

func TestNLMDenoiseValidate(t *testing.T) {
	algo := NewNLMDenoise()
	assert.ErrorContains(t, algo.Validate(map[string]interface{}{"template_window": 6}), "odd")
	assert.ErrorContains(t, algo.Validate(map[string]interface{}{"search_window": 20.0}), "odd")
	assert.Error(t, algo.Validate(map[string]interface{}{"h": -1.0}))
}

func TestCanny(t *testing.T) {
	input := testImage(t, 40, 60, 3)
	defer input.Close()

	out, err := Apply("canny", input, map[string]interface{}{"low_threshold": 100, "high_threshold": 200})
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, 40, out.Rows())
	assert.Equal(t, 60, out.Cols())
	assert.Equal(t, 1, out.Channels())

	edgePixels := 0
	for _, v := range out.ToBytes() {
		require.Contains(t, []byte{0, 255}, v)
		if v == 255 {
			edgePixels++
		}
	}
	assert.Positive(t, edgePixels, "the bright square has edges")

	assert.ErrorContains(t, NewCanny().Validate(map[string]interface{}{"low_threshold": 300.0}), "must not exceed")
}

func TestEdgeColorizeMatchesReference(t *testing.T) {
	edges := testImage(t, 21, 31, 1)
	defer edges.Close()
	reference := testImage(t, 20, 30, 3)
	defer reference.Close()

	algo := NewEdgeColorize()
	out, err := algo.ApplyWithReference(edges, reference, algo.GetDefaultParams())
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, reference.Rows(), out.Rows())
	assert.Equal(t, reference.Cols(), out.Cols())
	assert.Equal(t, reference.Channels(), out.Channels())
}

func TestEdgeColorizeReconcilesGrayReference(t *testing.T) {
	edges := testImage(t, 10, 10, 1)
	defer edges.Close()
	reference := testImage(t, 12, 8, 1)
	defer reference.Close()

	out, err := NewEdgeColorize().ApplyWithReference(edges, reference, map[string]interface{}{"interpolation": "nearest"})
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, 12, out.Rows())
	assert.Equal(t, 8, out.Cols())
	assert.Equal(t, 1, out.Channels())
}

func TestEdgeColorizeWithoutReference(t *testing.T) {
	edges := testImage(t, 5, 6, 1)
	defer edges.Close()

	out, err := Apply("edge_colorize", edges, nil)
	require.NoError(t, err)
	defer out.Close()
	assert.Equal(t, 3, out.Channels())
	assert.Equal(t, 5, out.Rows())

	empty := gocv.NewMat()
	defer empty.Close()
	_, err = NewEdgeColorize().ApplyWithReference(edges, empty, nil)
	assert.ErrorContains(t, err, "reference")

	_, err = NewEdgeColorize().ApplyWithReference(edges, edges, map[string]interface{}{"interpolation": "lanczos"})
	assert.ErrorContains(t, err, "unknown interpolation")
}

func TestDetailEnhancePreservesShape(t *testing.T) {
	for _, channels := range []int{1, 3} {
		input := testImage(t, 24, 20, channels)

		out, err := Apply("detail_enhance", input, map[string]interface{}{"sigma_s": 10, "sigma_r": 0.15})
		require.NoError(t, err)

		assert.Equal(t, 24, out.Rows())
		assert.Equal(t, 20, out.Cols())
		assert.Equal(t, channels, out.Channels())

		out.Close()
		input.Close()
	}

	assert.Error(t, NewDetailEnhance().Validate(map[string]interface{}{"sigma_r": 2.0}))
}
