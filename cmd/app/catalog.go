package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"image-enhancement/internal/algorithms"
	imgio "image-enhancement/internal/io"
	"image-enhancement/internal/metrics"
)

// catalog lists what the pipeline can be configured with
type catalog struct {
	Algorithms []algorithmEntry `json:"algorithms"`
	Formats    []string         `json:"formats"`
	Metrics    []metricEntry    `json:"metrics"`
}

type algorithmEntry struct {
	ID          string                     `json:"id"`
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	Parameters  []algorithms.ParameterInfo `json:"parameters"`
}

type metricEntry struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	HigherIsBetter bool   `json:"higher_is_better"`
}

func buildCatalog(logger *slog.Logger) catalog {
	var c catalog

	for _, id := range algorithms.Names() {
		algorithm, _ := algorithms.Get(id)
		c.Algorithms = append(c.Algorithms, algorithmEntry{
			ID:          id,
			Name:        algorithm.GetName(),
			Description: algorithm.GetDescription(),
			Parameters:  algorithm.GetParameterInfo(),
		})
	}

	c.Formats = imgio.NewImageLoader(logger).SupportedFormats()

	evaluator := metrics.NewEvaluator()
	for _, id := range evaluator.Names() {
		metric, _ := evaluator.Metric(id)
		c.Metrics = append(c.Metrics, metricEntry{
			ID:             id,
			Name:           metric.GetName(),
			Description:    metric.GetDescription(),
			HigherIsBetter: metric.IsHigherBetter(),
		})
	}

	return c
}

func printCatalog(w io.Writer, c catalog, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ALGORITHM\tNAME\tPARAMETERS")
	for _, a := range c.Algorithms {
		params := make([]string, len(a.Parameters))
		for i, p := range a.Parameters {
			params[i] = fmt.Sprintf("%s=%v", p.Name, p.Default)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", a.ID, a.Name, strings.Join(params, " "))
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "METRIC\tNAME\tBETTER")
	for _, m := range c.Metrics {
		better := "lower"
		if m.HigherIsBetter {
			better = "higher"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.ID, m.Name, better)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nFORMATS: %s\n", strings.Join(c.Formats, ", "))
	return err
}
