package synth

import (
	"math/rand"
	"strconv"
	"time"
)

// Customer segment cases. The mix skews toward regular buyers the way
// real retail exports do, with a thin tail of whales and one-off buyers.
const (
	caseRegularBuyer  = 0
	caseLoyalBuyer    = 1
	caseLapsedBuyer   = 2
	caseWhale         = 3
	caseOneOffBuyer   = 4
	caseBargainHunter = 5
	segmentCases      = 6
)

// Quantity and price ranges per segment.
const (
	regularQtyMax   = 12
	regularPriceMin = 1.0
	regularPriceMax = 25.0

	loyalQtyMax   = 24
	loyalPriceMin = 2.5
	loyalPriceMax = 40.0

	whaleQtyMax   = 120
	whalePriceMin = 10.0
	whalePriceMax = 300.0

	bargainQtyMax   = 48
	bargainPriceMin = 0.29
	bargainPriceMax = 3.0

	firstCustomerID = 12346
)

// customer holds the per-customer draw parameters.
type customer struct {
	id      int
	segment int
	// activeFrom and activeTo bound the window this customer's
	// invoices fall in, as day offsets back from Config.End.
	activeFrom int
	activeTo   int
}

// Row is a single generated transaction before CSV encoding.
type Row struct {
	CustomerID  string
	Quantity    string
	UnitPrice   string
	InvoiceDate string
}

// Generator produces synthetic transaction rows from a seeded source.
type Generator struct {
	cfg  *Config
	rng  *rand.Rand
	pool []customer
}

// New builds a Generator for the given configuration. The caller is
// expected to have validated cfg.
func New(cfg *Config) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
	g.pool = g.buildPool()
	return g
}

// buildPool assigns each customer a segment and an activity window.
func (g *Generator) buildPool() []customer {
	pool := make([]customer, g.cfg.Customers)
	for i := range pool {
		seg := g.rng.Intn(segmentCases)
		from, to := g.activityWindow(seg)
		pool[i] = customer{
			id:         firstCustomerID + i,
			segment:    seg,
			activeFrom: from,
			activeTo:   to,
		}
	}
	return pool
}

// activityWindow returns the [from, to] day-offset range a segment's
// invoices fall in, counted back from the dataset end date.
func (g *Generator) activityWindow(segment int) (int, int) {
	span := g.cfg.SpanDays
	switch segment {
	case caseLapsedBuyer:
		// Lapsed buyers went quiet in the older half of the window.
		from := span / 2
		return from + g.rng.Intn(maxInt(span-from, 1)), span
	case caseOneOffBuyer:
		at := g.rng.Intn(span)
		return at, at
	default:
		return 0, span
	}
}

// Header returns the CSV header row.
func Header() []string {
	return []string{"CustomerID", "Quantity", "UnitPrice", "InvoiceDate"}
}

// Rows generates cfg.Rows transaction rows.
func (g *Generator) Rows() []Row {
	rows := make([]Row, g.cfg.Rows)
	for i := range rows {
		rows[i] = g.row()
	}
	return rows
}

// row draws one transaction from a random pool customer.
func (g *Generator) row() Row {
	c := g.pool[g.rng.Intn(len(g.pool))]
	qty, price := g.amounts(c.segment)

	offset := c.activeFrom
	if c.activeTo > c.activeFrom {
		offset += g.rng.Intn(c.activeTo - c.activeFrom)
	}
	ts := g.cfg.End.AddDate(0, 0, -offset).Add(-time.Duration(g.rng.Intn(24*60)) * time.Minute)

	return Row{
		CustomerID:  g.mangle(strconv.Itoa(c.id)),
		Quantity:    g.mangle(strconv.Itoa(qty)),
		UnitPrice:   g.mangle(strconv.FormatFloat(price, 'f', 2, 64)),
		InvoiceDate: ts.Format("1/2/2006 15:04"),
	}
}

// amounts draws a quantity and unit price for a segment.
func (g *Generator) amounts(segment int) (int, float64) {
	switch segment {
	case caseLoyalBuyer:
		return 1 + g.rng.Intn(loyalQtyMax), g.priceIn(loyalPriceMin, loyalPriceMax)
	case caseWhale:
		return 1 + g.rng.Intn(whaleQtyMax), g.priceIn(whalePriceMin, whalePriceMax)
	case caseBargainHunter:
		return 1 + g.rng.Intn(bargainQtyMax), g.priceIn(bargainPriceMin, bargainPriceMax)
	default:
		return 1 + g.rng.Intn(regularQtyMax), g.priceIn(regularPriceMin, regularPriceMax)
	}
}

func (g *Generator) priceIn(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// mangle applies the configured missing and malformed cell rates.
func (g *Generator) mangle(cell string) string {
	p := g.rng.Float64()
	switch {
	case p < g.cfg.MissingRate:
		return ""
	case p < g.cfg.MissingRate+g.cfg.MalformedRate:
		return "n/a"
	default:
		return cell
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
