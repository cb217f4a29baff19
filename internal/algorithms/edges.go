package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Canny converts to luminance and runs the two-threshold gradient edge
// detector. The output is single-channel with the input's dimensions.
type Canny struct{}

func NewCanny() *Canny {
	return &Canny{}
}

func (c *Canny) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	if err := checkInput(input); err != nil {
		return gocv.NewMat(), err
	}
	if err := c.Validate(params); err != nil {
		return gocv.NewMat(), err
	}

	gray := ensureGrayscale(input)
	defer closeIfDerived(gray, input)

	low := float32(floatParam(params, "low_threshold", 100))
	high := float32(floatParam(params, "high_threshold", 200))

	edges := gocv.NewMat()
	gocv.Canny(gray, &edges, low, high)

	return edges, nil
}

func (c *Canny) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"low_threshold":  100.0,
		"high_threshold": 200.0,
	}
}

func (c *Canny) GetName() string {
	return "Canny Edge Detection"
}

func (c *Canny) GetDescription() string {
	return "Gradient edges with non-maximum suppression and hysteresis"
}

func (c *Canny) Validate(params map[string]interface{}) error {
	if err := checkRange(params, "low_threshold", 0.0, 1020.0); err != nil {
		return err
	}
	if err := checkRange(params, "high_threshold", 0.0, 1020.0); err != nil {
		return err
	}

	low := floatParam(params, "low_threshold", 100)
	high := floatParam(params, "high_threshold", 200)
	if low > high {
		return fmt.Errorf("low_threshold (%g) must not exceed high_threshold (%g)", low, high)
	}

	return nil
}

func (c *Canny) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "low_threshold",
			Type:        "float",
			Min:         0.0,
			Max:         1020.0,
			Default:     100.0,
			Description: "Hysteresis lower bound",
		},
		{
			Name:        "high_threshold",
			Type:        "float",
			Min:         0.0,
			Max:         1020.0,
			Default:     200.0,
			Description: "Hysteresis upper bound",
		},
	}
}
