// internal/core/pipeline.go
// Enhancement pipeline: decodes one image and runs it through the stage graph
package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"image-enhancement/internal/algorithms"
	"image-enhancement/internal/config"
	imgio "image-enhancement/internal/io"
	"image-enhancement/internal/metrics"
)

// Pipeline holds no per-run state; Run may be called concurrently.
type Pipeline struct {
	cfg         *config.Config
	graph       *StageGraph
	params      map[string]map[string]interface{}
	loader      *imgio.ImageLoader
	metricsEval *metrics.Evaluator
	logger      *slog.Logger
	newRunID    func() string
}

// New builds a pipeline over DefaultStages
func New(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	return NewWithStages(cfg, DefaultStages(), logger)
}

// NewWithStages builds a pipeline over a custom stage graph. Parameters are
// resolved as algorithm defaults, then stage params, then config overrides,
// and validated once here.
func NewWithStages(cfg *config.Config, stages []Stage, logger *slog.Logger) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	sg, err := NewStageGraph(stages)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(sg.Names()); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	params := make(map[string]map[string]interface{}, len(stages))
	for _, name := range sg.Order() {
		stage, _ := sg.Stage(name)

		if !algorithms.IsValidAlgorithm(stage.Algorithm) {
			return nil, errors.Errorf("stage %s: algorithm not found: %s", name, stage.Algorithm)
		}
		algorithm, _ := algorithms.Get(stage.Algorithm)
		if len(stage.Inputs) > 1 {
			if _, ok := algorithm.(algorithms.ReferenceAlgorithm); !ok {
				return nil, errors.Errorf("stage %s: algorithm %s does not accept a reference input", name, stage.Algorithm)
			}
		}

		base := algorithm.GetDefaultParams()
		for k, v := range stage.Params {
			base[k] = v
		}
		merged := cfg.StageParams(name, base)
		if err := algorithms.ValidateParameters(stage.Algorithm, merged); err != nil {
			return nil, errors.Wrapf(err, "stage %s: invalid parameters", name)
		}
		params[name] = merged
	}

	return &Pipeline{
		cfg:         cfg,
		graph:       sg,
		params:      params,
		loader:      imgio.NewImageLoader(logger),
		metricsEval: metrics.NewEvaluator(),
		logger:      logger,
		newRunID:    uuid.NewString,
	}, nil
}

// Graph returns the validated stage graph
func (p *Pipeline) Graph() *StageGraph {
	return p.graph
}

// Run decodes imagePath and executes every stage. On success the outcome holds
// one result per persisted stage. The error, if any, is a *DecodeError (nothing
// ran, nothing was written) or a *StageError.
func (p *Pipeline) Run(ctx context.Context, imagePath string) (*Outcome, error) {
	start := time.Now()
	p.logger.Info("PIPELINE: Starting run", "source", imagePath)

	original, err := p.loader.LoadImage(imagePath)
	if err != nil {
		p.logger.Error("PIPELINE: Decode failed", "source", imagePath, "error", err)
		return nil, &DecodeError{Path: imagePath, Err: err}
	}
	if err := ValidateImage(original); err != nil {
		original.Close()
		p.logger.Error("PIPELINE: Invalid image", "source", imagePath, "error", err)
		return nil, &DecodeError{Path: imagePath, Err: err}
	}

	outcome := &Outcome{
		RunID:    p.newRunID(),
		Source:   imagePath,
		Original: MetadataOf(original, imagePath),
		Results:  make([]StageResult, 0, p.graph.Persisted()),
	}

	outcome.OutputDir = p.cfg.OutputDir
	if p.cfg.IsolateRuns {
		outcome.OutputDir = filepath.Join(p.cfg.OutputDir, outcome.RunID)
	}

	outputs := map[string]gocv.Mat{SourceNode: original}
	defer func() {
		for _, mat := range outputs {
			mat.Close()
		}
	}()

	if err := os.MkdirAll(outcome.OutputDir, 0o755); err != nil {
		return nil, &StageError{Stage: SourceNode, Err: errors.Wrap(err, "unable to create output directory")}
	}

	if err := p.execute(ctx, outcome, outputs); err != nil {
		p.logger.Error("PIPELINE: Run failed", "run_id", outcome.RunID, "error", err)
		if p.cfg.IsolateRuns {
			if rmErr := os.RemoveAll(outcome.OutputDir); rmErr != nil {
				p.logger.Warn("PIPELINE: Could not remove partial output", "dir", outcome.OutputDir, "error", rmErr)
			}
		}
		return nil, err
	}

	outcome.Duration = time.Since(start)
	p.logger.Info("PIPELINE: Run completed",
		"run_id", outcome.RunID,
		"artifacts", len(outcome.Results),
		"duration_ms", outcome.Duration.Milliseconds())

	return outcome, nil
}

// execute runs the stages in order. A node's output is closed as soon as its
// last consumer has run.
func (p *Pipeline) execute(ctx context.Context, outcome *Outcome, outputs map[string]gocv.Mat) error {
	remaining := make(map[string]int)
	remaining[SourceNode] = p.graph.Consumers(SourceNode)

	for _, name := range p.graph.Order() {
		if err := ctx.Err(); err != nil {
			return &StageError{Stage: name, Err: errors.Wrap(err, "run cancelled")}
		}

		stage, _ := p.graph.Stage(name)
		output, result, err := p.runStage(stage, outcome, outputs)
		if err != nil {
			return &StageError{Stage: name, Err: err}
		}
		outputs[name] = output
		remaining[name] = p.graph.Consumers(name)

		if stage.Persist {
			outcome.Results = append(outcome.Results, result)
		}

		for _, input := range stage.Inputs {
			remaining[input]--
			if remaining[input] == 0 {
				inputMat := outputs[input]
				inputMat.Close()
				delete(outputs, input)
			}
		}
		if remaining[name] == 0 {
			output.Close()
			delete(outputs, name)
		}
	}

	return nil
}

func (p *Pipeline) runStage(stage Stage, outcome *Outcome, outputs map[string]gocv.Mat) (out gocv.Mat, result StageResult, err error) {
	produced := false
	defer func() {
		if r := recover(); r != nil {
			if produced {
				out.Close()
			}
			out = gocv.Mat{}
			result = StageResult{}
			err = fmt.Errorf("panic in %s: %v", stage.Algorithm, r)
			p.logger.Error("PIPELINE: PANIC RECOVERED", "stage", stage.Name, "panic", r)
		}
	}()

	p.logger.Debug("PIPELINE: Processing stage", "stage", stage.Name, "algorithm", stage.Algorithm)
	start := time.Now()

	params := p.params[stage.Name]
	primary := outputs[stage.Inputs[0]]

	if len(stage.Inputs) > 1 {
		algorithm, _ := algorithms.Get(stage.Algorithm)
		reference := outputs[stage.Inputs[1]]
		out, err = algorithm.(algorithms.ReferenceAlgorithm).ApplyWithReference(primary, reference, params)
	} else {
		out, err = algorithms.Apply(stage.Algorithm, primary, params)
	}
	if err != nil {
		out.Close()
		return gocv.Mat{}, StageResult{}, errors.Wrap(err, stage.Algorithm)
	}
	produced = true

	if err := ValidateImage(out); err != nil {
		out.Close()
		return gocv.Mat{}, StageResult{}, errors.Wrap(err, "invalid stage output")
	}

	result = StageResult{
		Stage:    stage.Name,
		Label:    stage.Label,
		Width:    out.Cols(),
		Height:   out.Rows(),
		Channels: out.Channels(),
		Metrics:  p.metricsEval.EvaluateStage(primary, out),
	}

	if stage.Persist {
		result.Path = imgio.ArtifactPath(outcome.OutputDir, stage.Prefix, outcome.Source)
		if err := p.loader.SaveImage(out, result.Path); err != nil {
			out.Close()
			return gocv.Mat{}, StageResult{}, errors.Wrap(err, "unable to persist artifact")
		}
	}
	result.Duration = time.Since(start)

	p.logger.Info("PIPELINE: Stage completed",
		"stage", stage.Name,
		"width", result.Width,
		"height", result.Height,
		"channels", result.Channels,
		"duration_ms", result.Duration.Milliseconds())

	return out, result, nil
}
