// Image Enhancement Pipeline - command line runner
// Runs every input image through the enhancement stages and lists the artifacts.

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"

	"image-enhancement/internal/config"
	"image-enhancement/internal/core"
)

const (
	AppName    = "Image Enhancement Pipeline"
	AppVersion = "1.0.0"
)

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitDecode  = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	configPath string
	outputDir  string
	graphPath  string
	debug      bool
	isolate    bool
	jsonOutput bool
	list       bool
	images     []string
	setFlags   map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet(AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{setFlags: make(map[string]bool)}
	fs.StringVar(&opts.configPath, "config", "", "Path to a YAML configuration file")
	fs.StringVar(&opts.outputDir, "out", config.DefaultOutputDir, "Directory that receives the artifacts")
	fs.StringVar(&opts.graphPath, "graph", "", "Write the stage graph in DOT format to this file")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug mode with verbose logging")
	fs.BoolVar(&opts.isolate, "isolate", true, "Write each run into its own subdirectory")
	fs.BoolVar(&opts.jsonOutput, "json", false, "Print results as JSON")
	fs.BoolVar(&opts.list, "list", false, "List algorithms, parameters, metrics and supported formats")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [flags] image [image...]\n", os.Args[0])
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { opts.setFlags[f.Name] = true })
	opts.images = fs.Args()

	if len(opts.images) == 0 && opts.graphPath == "" && !opts.list {
		fs.Usage()
		return nil, fmt.Errorf("no input images")
	}

	return opts, nil
}

// buildConfig applies command line flags over the config file
func buildConfig(opts *options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if opts.setFlags["out"] {
		cfg.OutputDir = opts.outputDir
	}
	if opts.setFlags["isolate"] {
		cfg.IsolateRuns = opts.isolate
	}
	if opts.setFlags["debug"] {
		cfg.Debug = opts.debug
	}

	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return exitFailure
	}

	cfg, err := buildConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return exitFailure
	}

	logger := initLogger(cfg.Debug, stderr)
	logger.WithFields(logrus.Fields{
		"version":    AppVersion,
		"debug_mode": cfg.Debug,
		"output_dir": cfg.OutputDir,
		"isolate":    cfg.IsolateRuns,
	}).Info("Starting Image Enhancement Pipeline")

	if opts.list {
		if err := printCatalog(stdout, buildCatalog(newSlogLogger(logger)), opts.jsonOutput); err != nil {
			logger.WithError(err).Error("Unable to write catalog")
			return exitFailure
		}
		return exitOK
	}

	pipeline, err := core.New(cfg, newSlogLogger(logger))
	if err != nil {
		logger.WithError(err).Error("Unable to build pipeline")
		return exitFailure
	}

	code := exitOK
	var outcomes []*core.Outcome
	var last *core.Outcome

	for _, path := range opts.images {
		outcome, err := pipeline.Run(ctx, path)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"source": path,
				"kind":   core.KindOf(err).String(),
			}).WithError(err).Error("Run failed")
			fmt.Fprintf(stderr, "%s: %s\n", path, core.UserMessage(err))

			if core.KindOf(err) == core.KindDecode {
				if code == exitOK {
					code = exitDecode
				}
			} else {
				code = exitFailure
			}
			continue
		}
		outcomes = append(outcomes, outcome)
		last = outcome
	}

	if opts.jsonOutput {
		if err := printJSON(stdout, outcomes); err != nil {
			logger.WithError(err).Error("Unable to write results")
			return exitFailure
		}
	} else {
		printTable(stdout, outcomes)
	}

	if opts.graphPath != "" {
		if err := writeGraph(opts.graphPath, pipeline.Graph(), last); err != nil {
			logger.WithError(err).Error("Unable to write stage graph")
			return exitFailure
		}
		logger.WithField("path", opts.graphPath).Info("Stage graph written")
	}

	logger.WithField("exit_code", code).Info("Application shutting down gracefully")
	return code
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}

func printTable(w io.Writer, outcomes []*core.Outcome) {
	for _, outcome := range outcomes {
		fmt.Fprintf(w, "%s (%dx%d, run %s, %s)\n",
			outcome.Source,
			outcome.Original.Width,
			outcome.Original.Height,
			outcome.RunID,
			outcome.Duration.Round(time.Millisecond))

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "STAGE\tSIZE\tTIME\tPATH")
		for _, r := range outcome.Results {
			fmt.Fprintf(tw, "%s\t%dx%dx%d\t%s\t%s\n",
				r.Label, r.Width, r.Height, r.Channels,
				r.Duration.Round(time.Millisecond), r.Path)
		}
		tw.Flush()
		fmt.Fprintln(w)
	}
}

func printJSON(w io.Writer, outcomes []*core.Outcome) error {
	if outcomes == nil {
		outcomes = []*core.Outcome{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(outcomes)
}

func writeGraph(path string, sg *core.StageGraph, outcome *core.Outcome) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := sg.WriteDOT(f, outcome); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
