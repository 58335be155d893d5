// Command climatology builds a climatology document from a raw observation
// export without running the service. It reads the export from a file or
// stdin and writes the document, or a forecast window of it, as JSON.
//
// Usage:
//
//	climatology -in daily.txt > climatology.json
//	climatology -in daily.txt -base-lat 30 -target-lat 48 -seed 7
//	climatology -in daily.txt -start 120 -days 14
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"

	"climatology/internal/engine"
	"climatology/internal/observability"
	"climatology/internal/pipeline"
)

type options struct {
	inPath    string
	outPath   string
	baseLat   float64
	targetLat float64
	relocate  bool
	seed      uint64
	startDay  int
	numDays   int
	window    bool
	verbose   bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	text, err := readInput(opts.inPath)
	if err != nil {
		return err
	}

	req := pipeline.Request{Text: text}
	if opts.relocate {
		req.Relocation = &pipeline.Relocation{
			BaseLat:   opts.baseLat,
			TargetLat: opts.targetLat,
			Rand:      rand.New(rand.NewPCG(opts.seed, opts.seed)),
		}
	}

	builder := pipeline.NewBuilder(logger, observability.NewMetricsForTesting())
	res, err := builder.Build(req)
	if err != nil {
		return err
	}

	if res.Fallback {
		logger.Warn("model training fell back to a degraded constant model",
			"reason", res.FallbackReason)
	}

	var payload any = res
	if opts.window {
		payload = struct {
			RunID    string `json:"run_id"`
			StartDay int    `json:"start_day"`
			Days     any    `json:"days"`
		}{
			RunID:    res.RunID,
			StartDay: opts.startDay,
			Days:     engine.ForecastWindow(res.Days, opts.startDay, opts.numDays),
		}
	}

	return writeOutput(opts.outPath, payload)
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("climatology", flag.ContinueOnError)
	fs.StringVar(&opts.inPath, "in", "", "input export file (default stdin)")
	fs.StringVar(&opts.outPath, "out", "", "output JSON file (default stdout)")
	fs.Float64Var(&opts.baseLat, "base-lat", 0, "latitude the observations were recorded at")
	fs.Float64Var(&opts.targetLat, "target-lat", 0, "latitude to relocate the series to")
	fs.Uint64Var(&opts.seed, "seed", 1, "relocation noise seed")
	fs.IntVar(&opts.startDay, "start", 0, "window start day-of-year (1-366); omit for the full document")
	fs.IntVar(&opts.numDays, "days", 7, "window length in days")
	fs.BoolVar(&opts.verbose, "v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	hasBase := flagSet(fs, "base-lat")
	hasTarget := flagSet(fs, "target-lat")
	if hasBase != hasTarget {
		return nil, errors.New("-base-lat and -target-lat must be provided together")
	}
	opts.relocate = hasBase && hasTarget
	if opts.relocate {
		if opts.baseLat < -90 || opts.baseLat > 90 || opts.targetLat < -90 || opts.targetLat > 90 {
			return nil, errors.New("latitudes must be in [-90, 90]")
		}
	}

	opts.window = flagSet(fs, "start")
	if opts.window {
		if opts.startDay < 1 || opts.startDay > engine.CalendarDays {
			return nil, fmt.Errorf("-start must be in [1, %d]", engine.CalendarDays)
		}
		if opts.numDays < 1 || opts.numDays > engine.CalendarDays {
			return nil, fmt.Errorf("-days must be in [1, %d]", engine.CalendarDays)
		}
	}

	return opts, nil
}

func flagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func readInput(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

func writeOutput(path string, payload any) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
