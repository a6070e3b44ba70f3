// Package dataset reads CSV-like sources into raw tables and provides
// lenient cell parsers shared by the feature pipeline.
package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/valora/internal/domain/model"
	"github.com/okian/valora/internal/domain/schema"
)

// Sentinel kinds for dataset errors.
var (
	ErrEmptyDataset = errors.New("dataset contains no header row")
	ErrReadDataset  = errors.New("dataset read failed")
)

// timeLayouts are the invoice date formats accepted, most common first.
// The retail exports this service ingests use month/day ordering.
var timeLayouts = []string{
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
	"1/2/2006",
}

// Read consumes an entire CSV source into a RawTable. Header cells are
// normalized (lower-cased, trimmed) for schema matching. Ragged records
// are tolerated; missing trailing cells read back as empty strings.
func Read(r io.Reader) (*model.RawTable, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadDataset, err)
	}

	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = schema.NormalizeColumn(h)
	}

	table := &model.RawTable{Columns: cols}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadDataset, err)
		}
		row := make([]string, len(rec))
		copy(row, rec)
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ParseFloat parses a numeric cell. Malformed input is recovered
// locally as NaN and deferred to the imputer, never surfaced as an
// error.
func ParseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	switch strings.ToLower(s) {
	case "na", "nan", "null", "none":
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// ParseTime parses a timestamp cell against the accepted layouts.
// The second return is false for unparseable input.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
