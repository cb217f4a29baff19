// Quality metrics reported for every pipeline stage
package metrics

import (
	"fmt"
	"math"
	"sort"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"
)

// Metric defines the interface for quality metrics
type Metric interface {
	// Calculate computes the metric value
	Calculate(original, processed gocv.Mat) (float64, error)

	GetName() string
	GetDescription() string

	// IsHigherBetter returns true if higher values indicate better quality
	IsHigherBetter() bool
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator creates a new metrics evaluator
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}

	e.RegisterDefaultMetrics()

	return e
}

// RegisterDefaultMetrics registers all default metrics
func (e *Evaluator) RegisterDefaultMetrics() {
	e.Register("psnr", NewPSNR())
	e.Register("mse", NewMSE())
}

// Register registers a metric
func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// Names returns registered metric names in sorted order
func (e *Evaluator) Names() []string {
	names := make([]string, 0, len(e.metrics))
	for name := range e.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Metric returns a registered metric by name
func (e *Evaluator) Metric(name string) (Metric, bool) {
	metric, exists := e.metrics[name]
	return metric, exists
}

// Calculate calculates a specific metric
func (e *Evaluator) Calculate(name string, original, processed gocv.Mat) (float64, error) {
	metric, exists := e.metrics[name]
	if !exists {
		return 0, fmt.Errorf("metric not found: %s", name)
	}

	return metric.Calculate(original, processed)
}

// CalculateAll calculates all registered metrics, skipping the ones that
// cannot be computed for this pair
func (e *Evaluator) CalculateAll(original, processed gocv.Mat) map[string]float64 {
	results := make(map[string]float64)

	for _, name := range e.Names() {
		if value, err := e.Calculate(name, original, processed); err == nil {
			results[name] = value
		}
	}

	return results
}

// EvaluateStage reports comparison metrics between a stage's input and output
// when their dimensions agree, plus per-channel mean and standard deviation of
// the output. Non-finite values (PSNR of identical images) are omitted.
func (e *Evaluator) EvaluateStage(before, after gocv.Mat) map[string]float64 {
	results := make(map[string]float64)

	if !before.Empty() && before.Rows() == after.Rows() && before.Cols() == after.Cols() {
		for name, value := range e.CalculateAll(before, after) {
			if !math.IsInf(value, 0) && !math.IsNaN(value) {
				results[name] = value
			}
		}
	}

	for ch, s := range ChannelStats(after) {
		results[fmt.Sprintf("mean_%d", ch)] = s.Mean
		results[fmt.Sprintf("stddev_%d", ch)] = s.StdDev
	}

	return results
}

// Stats summarises one channel
type Stats struct {
	Mean   float64
	StdDev float64
}

// ChannelStats computes mean and sample standard deviation per channel of an
// 8-bit image
func ChannelStats(mat gocv.Mat) []Stats {
	if mat.Empty() {
		return nil
	}

	channels := mat.Channels()
	data := mat.ToBytes()
	pixels := len(data) / channels

	result := make([]Stats, channels)
	values := make([]float64, pixels)
	for ch := 0; ch < channels; ch++ {
		for i := range values {
			values[i] = float64(data[i*channels+ch])
		}
		mean, std := stat.MeanStdDev(values, nil)
		if math.IsNaN(std) {
			std = 0
		}
		result[ch] = Stats{Mean: mean, StdDev: std}
	}

	return result
}
