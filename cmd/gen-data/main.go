package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/valora/internal/synth"
	"github.com/okian/valora/pkg/logger"
)

// Default configuration constants.
const (
	defaultRows      = 10000
	defaultCustomers = 500
	defaultSpanDays  = 365
	defaultMissing   = 0.02
	defaultMalformed = 0.005
	defaultOutput    = "data.csv"
)

func main() {
	var (
		rows      = flag.Int("rows", defaultRows, "Number of transaction rows to generate")
		customers = flag.Int("customers", defaultCustomers, "Size of the customer pool")
		seed      = flag.Int64("seed", 0, "Random seed (0 seeds from the clock)")
		missing   = flag.Float64("missing", defaultMissing, "Probability a numeric cell is emitted empty")
		malformed = flag.Float64("malformed", defaultMalformed, "Probability a numeric cell is emitted as unparseable text")
		spanDays  = flag.Int("span", defaultSpanDays, "History window in days")
		end       = flag.String("end", "", "Latest invoice date, RFC3339 (default: now)")
		output    = flag.String("output", defaultOutput, "Output CSV path")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	endTime := time.Now().UTC()
	if *end != "" {
		t, err := time.Parse(time.RFC3339, *end)
		if err != nil {
			os.Stderr.WriteString("Invalid end date: " + err.Error() + "\n")
			os.Exit(1)
		}
		endTime = t
	}

	cfg := &synth.Config{
		Rows:          *rows,
		Customers:     *customers,
		Seed:          *seed,
		MissingRate:   *missing,
		MalformedRate: *malformed,
		End:           endTime,
		SpanDays:      *spanDays,
		OutputFile:    *output,
	}

	if err := synth.Run(context.Background(), cfg); err != nil {
		os.Stderr.WriteString("Generation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func showHelp() {
	os.Stdout.WriteString(`Valora Dataset Generator
========================

Generates a synthetic transaction-log CSV for exercising the training
and prediction endpoints.

Usage:
  go run cmd/gen-data/main.go [options]

Options:
  -rows int
        Number of transaction rows to generate (default 10000)
  -customers int
        Size of the customer pool (default 500)
  -seed int
        Random seed, 0 seeds from the clock (default 0)
  -missing float
        Probability a numeric cell is emitted empty (default 0.02)
  -malformed float
        Probability a numeric cell is emitted as unparseable text (default 0.005)
  -span int
        History window in days (default 365)
  -end string
        Latest invoice date in RFC3339 (default: now)
  -output string
        Output CSV path (default "data.csv")
  -help
        Show this help message

Examples:
  # Generate the default dataset
  go run cmd/gen-data/main.go

  # Reproducible small dataset with dirtier cells
  go run cmd/gen-data/main.go -rows 1000 -seed 42 -missing 0.1 -malformed 0.02

  # Fixed history window
  go run cmd/gen-data/main.go -end 2011-12-09T12:00:00Z -span 730 -output retail.csv
`)
}
