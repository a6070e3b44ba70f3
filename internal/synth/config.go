// Package synth generates synthetic transaction-log datasets for exercising
// the training and prediction paths. Output is a CSV in the raw invoice
// export shape: customerid, quantity, unitprice, invoicedate.
package synth

import (
	"errors"
	"time"
)

// Config controls dataset generation.
type Config struct {
	// Rows is the number of transaction rows to emit.
	Rows int

	// Customers is the size of the customer pool rows are drawn from.
	Customers int

	// Seed makes generation reproducible. Zero seeds from the clock.
	Seed int64

	// MissingRate is the probability a numeric cell is emitted empty.
	MissingRate float64

	// MalformedRate is the probability a numeric cell is emitted as
	// unparseable text instead of a number.
	MalformedRate float64

	// End is the latest invoice timestamp. Rows spread backwards over
	// SpanDays from it.
	End time.Time

	// SpanDays is the history window rows are spread over.
	SpanDays int

	// OutputFile is the CSV destination path.
	OutputFile string
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	switch {
	case c.Rows <= 0:
		return errors.New("rows must be positive")
	case c.Customers <= 0:
		return errors.New("customers must be positive")
	case c.MissingRate < 0 || c.MissingRate > 1:
		return errors.New("missing rate must be in [0, 1]")
	case c.MalformedRate < 0 || c.MalformedRate > 1:
		return errors.New("malformed rate must be in [0, 1]")
	case c.MissingRate+c.MalformedRate > 1:
		return errors.New("missing and malformed rates must sum to at most 1")
	case c.SpanDays <= 0:
		return errors.New("span days must be positive")
	case c.OutputFile == "":
		return errors.New("output file is required")
	}
	return nil
}
