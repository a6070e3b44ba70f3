// Package feature derives the canonical RFM feature table from a
// classified raw table.
package feature

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/valora/internal/domain/dataset"
	"github.com/okian/valora/internal/domain/model"
	"github.com/okian/valora/internal/domain/schema"
)

// Clipping floors for the monetary derivation. Non-positive quantities
// and prices would otherwise produce undefined or negative-infinite
// logs.
const (
	minQuantity  = 1.0
	minUnitPrice = 0.01
)

const hoursPerDay = 24

// Result carries the normalized rows plus counts the caller reports.
type Result struct {
	Rows       []model.FeatureRow
	RawRows    int
	Duplicates int
}

// Normalize converts a raw table of the given variant into deduplicated
// RFM feature rows. Malformed cells are carried as NaN for the imputer;
// normalization itself never fails. Row order follows input order after
// deduplication by exact full-row equality (NaN cells compare equal).
func Normalize(t *model.RawTable, v schema.Variant) Result {
	var rows []model.FeatureRow
	switch v {
	case schema.TransactionLog:
		rows = fromTransactionLog(t)
	default:
		// ExtendedProfile projects the same four columns that
		// PrecomputedRFM copies through; the extra profile columns are
		// consumed only by label derivation and dropped here.
		rows = fromCanonicalColumns(t)
	}

	deduped := dedupe(rows)
	return Result{
		Rows:       deduped,
		RawRows:    len(rows),
		Duplicates: len(rows) - len(deduped),
	}
}

// fromTransactionLog derives RFM values from invoice-level rows.
func fromTransactionLog(t *model.RawTable) []model.FeatureRow {
	idCol := t.Index("customerid")
	qtyCol := t.Index("quantity")
	priceCol := t.Index("unitprice")
	dateCol := t.Index("invoicedate")

	n := len(t.Rows)
	ids := make([]float64, n)
	dates := make([]time.Time, n)
	dateOK := make([]bool, n)

	// First pass: parse ids and dates, find the batch maximum timestamp.
	// Recency is measured against this per-batch reference point, not a
	// global snapshot date.
	var batchMax time.Time
	var haveMax bool
	for i := range t.Rows {
		ids[i] = dataset.ParseFloat(t.Cell(i, idCol))
		if ts, ok := dataset.ParseTime(t.Cell(i, dateCol)); ok {
			dates[i] = ts
			dateOK[i] = true
			if !haveMax || ts.After(batchMax) {
				batchMax = ts
				haveMax = true
			}
		}
	}

	// Frequency is the count of batch rows per customer. Rows with an
	// unparseable customerid get NaN frequency and defer to the imputer.
	counts := make(map[float64]float64, n)
	for i := range t.Rows {
		if !model.IsMissing(ids[i]) {
			counts[ids[i]]++
		}
	}

	rows := make([]model.FeatureRow, n)
	for i := range t.Rows {
		row := model.FeatureRow{
			CustomerID: ids[i],
			Recency:    math.NaN(),
			Frequency:  math.NaN(),
			Monetary:   monetary(t.Cell(i, qtyCol), t.Cell(i, priceCol)),
		}
		if dateOK[i] && haveMax {
			row.Recency = math.Floor(batchMax.Sub(dates[i]).Hours() / hoursPerDay)
		}
		if !model.IsMissing(ids[i]) {
			row.Frequency = counts[ids[i]]
		}
		rows[i] = row
	}
	return rows
}

// fromCanonicalColumns copies the four canonical columns through,
// parsing each cell leniently.
func fromCanonicalColumns(t *model.RawTable) []model.FeatureRow {
	idCol := t.Index("customerid")
	recCol := t.Index("recency")
	freqCol := t.Index("frequency")
	monCol := t.Index("monetary")

	rows := make([]model.FeatureRow, len(t.Rows))
	for i := range t.Rows {
		rows[i] = model.FeatureRow{
			CustomerID: dataset.ParseFloat(t.Cell(i, idCol)),
			Recency:    dataset.ParseFloat(t.Cell(i, recCol)),
			Frequency:  dataset.ParseFloat(t.Cell(i, freqCol)),
			Monetary:   dataset.ParseFloat(t.Cell(i, monCol)),
		}
	}
	return rows
}

// monetary computes log1p(max(quantity,1) * max(unitPrice,0.01)).
func monetary(qty, price string) float64 {
	q := dataset.ParseFloat(qty)
	p := dataset.ParseFloat(price)
	if model.IsMissing(q) || model.IsMissing(p) {
		return math.NaN()
	}
	return math.Log1p(math.Max(q, minQuantity) * math.Max(p, minUnitPrice))
}

// dedupe removes exact full-row duplicates, keeping first occurrences.
// One observation per unique RFM combination, not one per customer.
func dedupe(rows []model.FeatureRow) []model.FeatureRow {
	seen := make(map[string]bool, len(rows))
	out := make([]model.FeatureRow, 0, len(rows))
	for _, r := range rows {
		k := rowKey(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

// rowKey builds a dedup key over all four fields. NaN formats to a
// stable token, so missing cells compare equal to each other.
func rowKey(r model.FeatureRow) string {
	var b strings.Builder
	for _, v := range []float64{r.CustomerID, r.Recency, r.Frequency, r.Monetary} {
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		b.WriteByte('|')
	}
	return b.String()
}
