package core

import (
	"io"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1"
)

// Edge roles, stored as the "input" attribute of each graph edge.
const (
	RolePrimary   = "primary"
	RoleReference = "reference"
)

var (
	ErrNoStages       = errors.New("stage graph needs at least one stage")
	ErrInvalidStage   = errors.New("invalid stage")
	ErrUnknownInput   = errors.New("unknown stage input")
	ErrDuplicateStage = errors.New("duplicate stage")
)

// StageGraph is the validated DAG of stages rooted at SourceNode.
type StageGraph struct {
	graph     graph.Graph[string, string]
	stages    map[string]Stage
	order     []string
	consumers map[string]int
}

func roleOf(idx int) string {
	if idx == 0 {
		return RolePrimary
	}
	return RoleReference
}

// NewStageGraph validates stages and fixes their execution order: a
// topological order where ties are broken by declaration order.
func NewStageGraph(stages []Stage) (*StageGraph, error) {
	if len(stages) == 0 {
		return nil, ErrNoStages
	}

	g := graph.New(graph.StringHash, graph.Directed(), graph.Acyclic(), graph.PreventCycles())
	if err := g.AddVertex(SourceNode); err != nil {
		return nil, errors.Wrap(err, "unable to add source vertex")
	}

	declared := map[string]int{SourceNode: -1}
	byName := make(map[string]Stage, len(stages))

	for i, s := range stages {
		if s.Name == "" || s.Algorithm == "" {
			return nil, errors.Wrapf(ErrInvalidStage, "stage %d needs a name and an algorithm", i)
		}
		if s.Persist && s.Prefix == "" {
			return nil, errors.Wrapf(ErrInvalidStage, "persisted stage %s needs a file prefix", s.Name)
		}
		if len(s.Inputs) == 0 || len(s.Inputs) > 2 {
			return nil, errors.Wrapf(ErrInvalidStage, "stage %s needs one or two inputs, got %d", s.Name, len(s.Inputs))
		}

		err := g.AddVertex(s.Name, graph.VertexAttribute("label", s.Label))
		if errors.Is(err, graph.ErrVertexAlreadyExists) {
			return nil, errors.Wrap(ErrDuplicateStage, s.Name)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "unable to add vertex %s", s.Name)
		}

		declared[s.Name] = i
		byName[s.Name] = s
	}

	for _, s := range stages {
		for idx, input := range s.Inputs {
			if _, ok := declared[input]; !ok {
				return nil, errors.Wrapf(ErrUnknownInput, "%s reads %s", s.Name, input)
			}
			err := g.AddEdge(input, s.Name, graph.EdgeAttribute("input", roleOf(idx)))
			if err != nil {
				return nil, errors.Wrapf(err, "unable to add edge from %s to %s", input, s.Name)
			}
		}
	}

	order, err := declaredOrder(g, declared)
	if err != nil {
		return nil, err
	}

	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return nil, errors.Wrap(err, "unable to read stage edges")
	}
	consumers := make(map[string]int, len(adjacency))
	for name, targets := range adjacency {
		consumers[name] = len(targets)
	}

	return &StageGraph{
		graph:     g,
		stages:    byName,
		order:     order,
		consumers: consumers,
	}, nil
}

// declaredOrder is a Kahn pass that always runs the ready stage declared
// first. The source is decoded, not executed, so it is left out.
func declaredOrder(g graph.Graph[string, string], declared map[string]int) ([]string, error) {
	predecessors, err := g.PredecessorMap()
	if err != nil {
		return nil, errors.Wrap(err, "unable to read stage edges")
	}

	pending := make(map[string]int, len(predecessors))
	for name, preds := range predecessors {
		pending[name] = len(preds)
	}

	successors, err := g.AdjacencyMap()
	if err != nil {
		return nil, errors.Wrap(err, "unable to read stage edges")
	}

	var ready []string
	for name, n := range pending {
		if n == 0 {
			ready = append(ready, name)
		}
	}

	order := make([]string, 0, len(pending))
	visited := 0
	for len(ready) > 0 {
		next := 0
		for i := range ready {
			if declared[ready[i]] < declared[ready[next]] {
				next = i
			}
		}
		name := ready[next]
		ready = append(ready[:next], ready[next+1:]...)
		visited++

		if name != SourceNode {
			order = append(order, name)
		}
		for target := range successors[name] {
			pending[target]--
			if pending[target] == 0 {
				ready = append(ready, target)
			}
		}
	}

	if visited != len(pending) {
		return nil, errors.New("unable to order stages: graph has a cycle")
	}

	return order, nil
}

// Order returns stage names in execution order
func (sg *StageGraph) Order() []string {
	return append([]string(nil), sg.order...)
}

// Stage returns a stage by name
func (sg *StageGraph) Stage(name string) (Stage, bool) {
	s, ok := sg.stages[name]
	return s, ok
}

// Names returns stage names in execution order
func (sg *StageGraph) Names() []string {
	return sg.Order()
}

// Consumers returns how many stages read the output of node
func (sg *StageGraph) Consumers(node string) int {
	return sg.consumers[node]
}

// Persisted returns the number of stages that produce an artifact
func (sg *StageGraph) Persisted() int {
	n := 0
	for _, s := range sg.stages {
		if s.Persist {
			n++
		}
	}
	return n
}

// WriteDOT renders the stage graph in Graphviz DOT. With an outcome, stages
// are filled with a heat colour from blue (fastest) to red (slowest).
func (sg *StageGraph) WriteDOT(w io.Writer, outcome *Outcome) error {
	durations := make(map[string]time.Duration)
	if outcome != nil {
		for _, r := range outcome.Results {
			durations[r.Stage] = r.Duration
		}
	}

	fills, err := heatColors(durations)
	if err != nil {
		return err
	}

	g := graph.New(graph.StringHash, graph.Directed())
	if err := g.AddVertex(SourceNode, graph.VertexAttribute("shape", "box")); err != nil {
		return errors.Wrap(err, "unable to add vertex")
	}

	for _, name := range sg.order {
		s := sg.stages[name]
		attrs := []func(*graph.VertexProperties){graph.VertexAttribute("label", s.Label)}
		if fill, ok := fills[name]; ok {
			attrs = append(attrs,
				graph.VertexAttribute("style", "filled"),
				graph.VertexAttribute("fillcolor", fill),
				graph.VertexAttribute("xlabel", durations[name].Round(time.Millisecond).String()))
		} else if !s.Persist {
			attrs = append(attrs, graph.VertexAttribute("style", "dashed"))
		}
		if err := g.AddVertex(name, attrs...); err != nil {
			return errors.Wrapf(err, "unable to add vertex %s", name)
		}
	}

	for _, name := range sg.order {
		for idx, input := range sg.stages[name].Inputs {
			if err := g.AddEdge(input, name, graph.EdgeAttribute("label", roleOf(idx))); err != nil {
				return errors.Wrapf(err, "unable to add edge from %s to %s", input, name)
			}
		}
	}

	if err := draw.DOT(g, w, draw.GraphAttribute("rankdir", "LR")); err != nil {
		return errors.Wrap(err, "unable to render dot")
	}

	return nil
}

// heatColors maps durations onto hex colours between blue and red
func heatColors(durations map[string]time.Duration) (map[string]string, error) {
	fills := make(map[string]string, len(durations))
	if len(durations) == 0 {
		return fills, nil
	}

	var minValue, maxValue time.Duration
	first := true
	for _, d := range durations {
		if first || d < minValue {
			minValue = d
		}
		if first || d > maxValue {
			maxValue = d
		}
		first = false
	}

	const maxRGB = 255.0
	for name, d := range durations {
		fraction := 1.0
		if maxValue > minValue {
			fraction = float64(d-minValue) / float64(maxValue-minValue)
		}
		red := maxRGB * fraction
		blue := maxRGB - red

		c, err := colors.RGB(uint8(red), 0, uint8(blue))
		if err != nil {
			return nil, errors.Wrap(err, "unable to get colour")
		}
		fills[name] = c.ToHEX().String()
	}

	return fills, nil
}
