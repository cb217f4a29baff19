package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"
)

// NLMDenoise implements non-local means denoising. OpenCV parallelises the
// per-pixel search internally.
type NLMDenoise struct{}

func NewNLMDenoise() *NLMDenoise {
	return &NLMDenoise{}
}

func (n *NLMDenoise) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	if err := checkInput(input); err != nil {
		return gocv.NewMat(), err
	}
	if err := n.Validate(params); err != nil {
		return gocv.NewMat(), err
	}

	h := float32(floatParam(params, "h", 10))
	hColor := float32(floatParam(params, "h_color", 10))
	templateWindow := intParam(params, "template_window", 7)
	searchWindow := intParam(params, "search_window", 21)

	output := gocv.NewMat()
	switch input.Channels() {
	case 3:
		gocv.FastNlMeansDenoisingColoredWithParams(input, &output, h, hColor, templateWindow, searchWindow)
	case 1:
		gocv.FastNlMeansDenoisingWithParams(input, &output, h, templateWindow, searchWindow)
	default:
		output.Close()
		return gocv.NewMat(), fmt.Errorf("unsupported number of channels: %d", input.Channels())
	}

	return output, nil
}

func (n *NLMDenoise) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"h":               10.0,
		"h_color":         10.0,
		"template_window": 7.0,
		"search_window":   21.0,
	}
}

func (n *NLMDenoise) GetName() string {
	return "Non-Local Means Denoising"
}

func (n *NLMDenoise) GetDescription() string {
	return "Patch-similarity weighted averaging over a search window"
}

func (n *NLMDenoise) Validate(params map[string]interface{}) error {
	if err := checkRange(params, "h", 0.0, 100.0); err != nil {
		return err
	}
	if err := checkRange(params, "h_color", 0.0, 100.0); err != nil {
		return err
	}
	if err := checkRange(params, "template_window", 1, 31); err != nil {
		return err
	}
	if err := checkRange(params, "search_window", 1, 63); err != nil {
		return err
	}

	if intParam(params, "template_window", 7)%2 == 0 {
		return fmt.Errorf("template_window must be odd")
	}
	if intParam(params, "search_window", 21)%2 == 0 {
		return fmt.Errorf("search_window must be odd")
	}

	return nil
}

func (n *NLMDenoise) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "h",
			Type:        "float",
			Min:         0.0,
			Max:         100.0,
			Default:     10.0,
			Description: "Luminance filter strength",
		},
		{
			Name:        "h_color",
			Type:        "float",
			Min:         0.0,
			Max:         100.0,
			Default:     10.0,
			Description: "Color component filter strength",
		},
		{
			Name:        "template_window",
			Type:        "int",
			Min:         1.0,
			Max:         31.0,
			Default:     7.0,
			Description: "Patch size in pixels (odd)",
		},
		{
			Name:        "search_window",
			Type:        "int",
			Min:         1.0,
			Max:         63.0,
			Default:     21.0,
			Description: "Search window size in pixels (odd)",
		},
	}
}
