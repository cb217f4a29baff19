package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"
)

// floatParam reads a numeric parameter. YAML decodes whole numbers as int,
// so both are accepted.
func floatParam(params map[string]interface{}, key string, def float64) float64 {
	val, ok := params[key]
	if !ok {
		return def
	}
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

func intParam(params map[string]interface{}, key string, def int) int {
	return int(floatParam(params, key, float64(def)))
}

func stringParam(params map[string]interface{}, key string, def string) string {
	if val, ok := params[key]; ok {
		if v, ok := val.(string); ok {
			return v
		}
	}
	return def
}

// checkRange validates an optional numeric parameter against [min, max]
func checkRange(params map[string]interface{}, key string, min, max float64) error {
	val, ok := params[key]
	if !ok {
		return nil
	}
	switch val.(type) {
	case float64, float32, int, int64:
	default:
		return fmt.Errorf("%s must be a number, got %T", key, val)
	}
	v := floatParam(params, key, 0)
	if v < min || v > max {
		return fmt.Errorf("%s must be between %g and %g", key, min, max)
	}
	return nil
}

func checkInput(input gocv.Mat) error {
	if input.Empty() {
		return fmt.Errorf("input image is empty")
	}
	return nil
}

func ensureGrayscale(input gocv.Mat) gocv.Mat {
	if input.Channels() == 1 {
		return input
	}

	gray := gocv.NewMat()
	gocv.CvtColor(input, &gray, gocv.ColorBGRToGray)
	return gray
}

func ensureBGR(input gocv.Mat) gocv.Mat {
	if input.Channels() == 3 {
		return input
	}

	bgr := gocv.NewMat()
	gocv.CvtColor(input, &bgr, gocv.ColorGrayToBGR)
	return bgr
}

// closeIfDerived closes m unless it is the same Mat as base
func closeIfDerived(m, base gocv.Mat) {
	if m.Ptr() != base.Ptr() {
		m.Close()
	}
}
