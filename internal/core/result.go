package core

import "time"

// StageResult describes one persisted artifact
type StageResult struct {
	Stage    string             `json:"stage"`
	Label    string             `json:"label"`
	Path     string             `json:"path"`
	Width    int                `json:"width"`
	Height   int                `json:"height"`
	Channels int                `json:"channels"`
	Duration time.Duration      `json:"duration"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
}

// Outcome is the result of a successful run: one StageResult per persisted
// stage, in execution order
type Outcome struct {
	RunID     string        `json:"run_id"`
	Source    string        `json:"source"`
	OutputDir string        `json:"output_dir"`
	Original  ImageMetadata `json:"original"`
	Results   []StageResult `json:"results"`
	Duration  time.Duration `json:"duration"`
}

// Artifact is a (label, path) pair for presentation
type Artifact struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Artifacts returns the labelled artifact list in stage order
func (o *Outcome) Artifacts() []Artifact {
	artifacts := make([]Artifact, len(o.Results))
	for i, r := range o.Results {
		artifacts[i] = Artifact{Label: r.Label, Path: r.Path}
	}
	return artifacts
}
