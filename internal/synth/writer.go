package synth

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/okian/valora/pkg/logger"
)

// Run generates a dataset from cfg and writes it to cfg.OutputFile.
func Run(ctx context.Context, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid generator config: %w", err)
	}

	logger.Get().Info(ctx, "generating synthetic transactions",
		logger.Int("rows", cfg.Rows),
		logger.Int("customers", cfg.Customers),
		logger.String("output", cfg.OutputFile))

	rows := New(cfg).Rows()
	if err := WriteCSV(cfg.OutputFile, rows); err != nil {
		return err
	}

	logger.Get().Info(ctx, "dataset written",
		logger.String("output", cfg.OutputFile),
		logger.Int("rows", len(rows)))
	return nil
}

// WriteCSV writes the header and rows to path as CSV.
func WriteCSV(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(Header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range rows {
		rec := []string{r.CustomerID, r.Quantity, r.UnitPrice, r.InvoiceDate}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
