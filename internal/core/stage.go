package core

// SourceNode names the decoded input image in the stage graph.
const SourceNode = "original"

// Stage is one node of the enhancement graph.
type Stage struct {
	Name  string
	Label string

	// Prefix names the artifact file: <Prefix>_<original basename>.
	Prefix string

	Algorithm string
	Params    map[string]interface{}

	// Inputs names the producing nodes. The first is the primary input; an
	// optional second one is passed as reference to a ReferenceAlgorithm.
	Inputs []string

	// Persist writes the output and reports it in the outcome. Intermediate
	// stages only feed their consumers.
	Persist bool
}

// DefaultStages returns the reference enhancement graph. The sharpen branch
// reads the denoised image directly; colorize reads the edge map and the
// original for its target shape.
func DefaultStages() []Stage {
	return []Stage{
		{
			Name:      "wavelet",
			Label:     "Wavelet Transform",
			Prefix:    "Wavelet",
			Algorithm: "wavelet_restore",
			Params:    map[string]interface{}{"wavelet": "bior1.3"},
			Inputs:    []string{SourceNode},
			Persist:   true,
		},
		{
			Name:      "color",
			Label:     "Color Enhancement",
			Prefix:    "Color_Enhanced",
			Algorithm: "scale_abs",
			Params:    map[string]interface{}{"alpha": 1.2, "beta": 10.0},
			Inputs:    []string{"wavelet"},
			Persist:   true,
		},
		{
			Name:      "denoise",
			Label:     "Noise Reduction",
			Prefix:    "Denoised",
			Algorithm: "nlm_denoise",
			Params: map[string]interface{}{
				"h":               10.0,
				"h_color":         10.0,
				"template_window": 7.0,
				"search_window":   21.0,
			},
			Inputs:  []string{"color"},
			Persist: true,
		},
		{
			Name:      "edges",
			Label:     "Edge Tracing",
			Prefix:    "Edges",
			Algorithm: "canny",
			Params:    map[string]interface{}{"low_threshold": 100.0, "high_threshold": 200.0},
			Inputs:    []string{"denoise"},
			Persist:   true,
		},
		{
			Name:      "colorize",
			Label:     "Edge Colorization",
			Prefix:    "Edges_Colorized",
			Algorithm: "edge_colorize",
			Params:    map[string]interface{}{"interpolation": "linear"},
			Inputs:    []string{"edges", SourceNode},
		},
		{
			Name:      "edge_enhance",
			Label:     "Edge Enhancement",
			Prefix:    "Edges_Enhanced",
			Algorithm: "detail_enhance",
			Params:    map[string]interface{}{"sigma_s": 10.0, "sigma_r": 0.15},
			Inputs:    []string{"colorize"},
			Persist:   true,
		},
		{
			Name:      "sharpen",
			Label:     "Sharpness Enhancement",
			Prefix:    "Sharpened",
			Algorithm: "detail_enhance",
			Params:    map[string]interface{}{"sigma_s": 10.0, "sigma_r": 0.15},
			Inputs:    []string{"denoise"},
			Persist:   true,
		},
		{
			Name:      "adjust",
			Label:     "Adjusted Image",
			Prefix:    "Adjusted",
			Algorithm: "scale_abs",
			Params:    map[string]interface{}{"alpha": 1.0, "beta": 10.0},
			Inputs:    []string{"sharpen"},
			Persist:   true,
		},
	}
}
