package algorithms

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

var interpolations = map[string]gocv.InterpolationFlags{
	"nearest": gocv.InterpolationNearestNeighbor,
	"linear":  gocv.InterpolationLinear,
	"cubic":   gocv.InterpolationCubic,
	"area":    gocv.InterpolationArea,
}

// EdgeColorize expands an edge map to BGR and reconciles it with a reference
// image: same width, height and channel count.
type EdgeColorize struct{}

func NewEdgeColorize() *EdgeColorize {
	return &EdgeColorize{}
}

// Apply expands the input to BGR without resizing
func (e *EdgeColorize) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	if err := checkInput(input); err != nil {
		return gocv.NewMat(), err
	}
	if err := e.Validate(params); err != nil {
		return gocv.NewMat(), err
	}

	bgr := ensureBGR(input)
	if bgr.Ptr() == input.Ptr() {
		return input.Clone(), nil
	}
	return bgr, nil
}

func (e *EdgeColorize) ApplyWithReference(input, reference gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	if err := checkInput(input); err != nil {
		return gocv.NewMat(), err
	}
	if reference.Empty() {
		return gocv.NewMat(), fmt.Errorf("reference image is empty")
	}
	if err := e.Validate(params); err != nil {
		return gocv.NewMat(), err
	}

	interp := interpolations[stringParam(params, "interpolation", "linear")]

	bgr := ensureBGR(input)
	defer closeIfDerived(bgr, input)

	resized := gocv.NewMat()
	if err := gocv.Resize(bgr, &resized, image.Pt(reference.Cols(), reference.Rows()), 0, 0, interp); err != nil {
		resized.Close()
		return gocv.NewMat(), fmt.Errorf("resize failed: %w", err)
	}

	if resized.Channels() == reference.Channels() {
		return resized, nil
	}

	// Channel counts still disagree: force agreement through grayscale.
	gray := gocv.NewMat()
	gocv.CvtColor(resized, &gray, gocv.ColorBGRToGray)
	resized.Close()

	switch reference.Channels() {
	case 1:
		return gray, nil
	case 3:
		defer gray.Close()
		output := gocv.NewMat()
		gocv.CvtColor(gray, &output, gocv.ColorGrayToBGR)
		return output, nil
	default:
		gray.Close()
		return gocv.NewMat(), fmt.Errorf("unsupported reference channel count: %d", reference.Channels())
	}
}

func (e *EdgeColorize) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"interpolation": "linear",
	}
}

func (e *EdgeColorize) GetName() string {
	return "Edge Colorization"
}

func (e *EdgeColorize) GetDescription() string {
	return "Expands an edge map to color and resizes it to the reference image"
}

func (e *EdgeColorize) Validate(params map[string]interface{}) error {
	if val, ok := params["interpolation"]; ok {
		name, ok := val.(string)
		if !ok {
			return fmt.Errorf("interpolation must be a string, got %T", val)
		}
		if _, ok := interpolations[name]; !ok {
			return fmt.Errorf("unknown interpolation: %s", name)
		}
	}
	return nil
}

func (e *EdgeColorize) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "interpolation",
			Type:        "string",
			Default:     "linear",
			Description: "Resize interpolation",
			Options:     []string{"nearest", "linear", "cubic", "area"},
		},
	}
}
