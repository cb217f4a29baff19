// Algorithm registry for the enhancement transforms
package algorithms

import (
	"fmt"
	"sort"

	"gocv.io/x/gocv"
)

// Algorithm defines the interface for image processing algorithms.
// Apply never modifies or closes its input; the caller owns the returned Mat.
type Algorithm interface {
	Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error)
	GetDefaultParams() map[string]interface{}
	GetName() string
	GetDescription() string
	Validate(params map[string]interface{}) error
	GetParameterInfo() []ParameterInfo
}

// ReferenceAlgorithm is implemented by algorithms that shape their output
// after a second image, e.g. to restore the original dimensions.
type ReferenceAlgorithm interface {
	Algorithm
	ApplyWithReference(input, reference gocv.Mat, params map[string]interface{}) (gocv.Mat, error)
}

// ParameterInfo describes a parameter
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "int", "float", "string"
	Min         interface{} `json:"min,omitempty"`
	Max         interface{} `json:"max,omitempty"`
	Default     interface{} `json:"default"`
	Description string      `json:"description"`
	Options     []string    `json:"options,omitempty"`
}

var algorithms = make(map[string]Algorithm)

func Register(name string, algorithm Algorithm) {
	algorithms[name] = algorithm
}

func Get(name string) (Algorithm, bool) {
	algorithm, exists := algorithms[name]
	return algorithm, exists
}

func Apply(name string, input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	algorithm, exists := algorithms[name]
	if !exists {
		return gocv.NewMat(), fmt.Errorf("algorithm not found: %s", name)
	}

	return algorithm.Apply(input, params)
}

func ValidateParameters(name string, params map[string]interface{}) error {
	algorithm, exists := algorithms[name]
	if !exists {
		return fmt.Errorf("algorithm not found: %s", name)
	}

	return algorithm.Validate(params)
}

func IsValidAlgorithm(name string) bool {
	_, exists := algorithms[name]
	return exists
}

// Names returns the registered algorithm names in sorted order
func Names() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register("wavelet_restore", NewWaveletRestore())
	Register("scale_abs", NewScaleAbs())
	Register("nlm_denoise", NewNLMDenoise())
	Register("canny", NewCanny())
	Register("edge_colorize", NewEdgeColorize())
	Register("detail_enhance", NewDetailEnhance())
}
