package algorithms

import (
	"gocv.io/x/gocv"
)

// DetailEnhance applies OpenCV's edge-preserving detail enhancement filter.
// The filter needs three channels; grayscale input is expanded and the result
// converted back so the channel count is preserved.
type DetailEnhance struct{}

func NewDetailEnhance() *DetailEnhance {
	return &DetailEnhance{}
}

func (d *DetailEnhance) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	if err := checkInput(input); err != nil {
		return gocv.NewMat(), err
	}
	if err := d.Validate(params); err != nil {
		return gocv.NewMat(), err
	}

	sigmaS := float32(floatParam(params, "sigma_s", 10))
	sigmaR := float32(floatParam(params, "sigma_r", 0.15))

	bgr := ensureBGR(input)
	defer closeIfDerived(bgr, input)

	output := gocv.NewMat()
	gocv.DetailEnhance(bgr, &output, sigmaS, sigmaR)

	if input.Channels() == 1 {
		defer output.Close()
		gray := gocv.NewMat()
		gocv.CvtColor(output, &gray, gocv.ColorBGRToGray)
		return gray, nil
	}

	return output, nil
}

func (d *DetailEnhance) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"sigma_s": 10.0,
		"sigma_r": 0.15,
	}
}

func (d *DetailEnhance) GetName() string {
	return "Detail Enhancement"
}

func (d *DetailEnhance) GetDescription() string {
	return "Edge-preserving filter that accentuates detail"
}

func (d *DetailEnhance) Validate(params map[string]interface{}) error {
	if err := checkRange(params, "sigma_s", 0.0, 200.0); err != nil {
		return err
	}
	return checkRange(params, "sigma_r", 0.0, 1.0)
}

func (d *DetailEnhance) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "sigma_s",
			Type:        "float",
			Min:         0.0,
			Max:         200.0,
			Default:     10.0,
			Description: "Spatial sigma",
		},
		{
			Name:        "sigma_r",
			Type:        "float",
			Min:         0.0,
			Max:         1.0,
			Default:     0.15,
			Description: "Range sigma",
		},
	}
}
