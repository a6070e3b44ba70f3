// Package schema classifies raw tabular inputs into known input shapes.
package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Variant is one recognized shape of input table, identified by its
// required column set.
type Variant string

const (
	// TransactionLog is a raw invoice-level export: one row per line item.
	TransactionLog Variant = "transaction_log"
	// ExtendedProfile is a per-customer profile with precomputed RFM plus
	// tenure/churn/timestamp columns.
	ExtendedProfile Variant = "extended_profile"
	// PrecomputedRFM carries the canonical feature columns directly.
	PrecomputedRFM Variant = "precomputed_rfm"
)

// required lists the column sets that define each variant.
var required = map[Variant][]string{
	TransactionLog:  {"customerid", "quantity", "unitprice", "invoicedate"},
	ExtendedProfile: {"customerid", "last_transaction", "first_transaction", "frequency", "monetary", "recency", "tenure", "churn"},
	PrecomputedRFM:  {"customerid", "recency", "frequency", "monetary"},
}

// detectionOrder fixes the priority of subset matching. Variants are not
// mutually exclusive: PrecomputedRFM's required set is contained in
// ExtendedProfile's, so the more specific shapes are tested first and
// the first fully satisfied set wins.
var detectionOrder = []Variant{TransactionLog, ExtendedProfile, PrecomputedRFM}

// NormalizeColumn canonicalizes a raw header cell for matching.
func NormalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Detect classifies the column set of a raw table into a Variant.
// Extra, unrelated columns are tolerated. Column names are expected in
// normalized form (see NormalizeColumn); Detect normalizes defensively.
// It has no side effects.
func Detect(columns []string) (Variant, error) {
	have := make(map[string]bool, len(columns))
	for _, c := range columns {
		have[NormalizeColumn(c)] = true
	}

	for _, v := range detectionOrder {
		if containsAll(have, required[v]) {
			return v, nil
		}
	}

	observed := make([]string, 0, len(have))
	for c := range have {
		observed = append(observed, c)
	}
	sort.Strings(observed)
	return "", fmt.Errorf("%w: found columns [%s]", ErrUnrecognizedSchema, strings.Join(observed, ", "))
}

// RequiredColumns returns the column set that defines a variant.
func RequiredColumns(v Variant) []string {
	cols := required[v]
	out := make([]string, len(cols))
	copy(out, cols)
	return out
}

func containsAll(have map[string]bool, want []string) bool {
	for _, c := range want {
		if !have[c] {
			return false
		}
	}
	return true
}
