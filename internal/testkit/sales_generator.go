package testkit

import (
	"math"
	"math/rand"
	"time"
)

// SalesGeneratorConfig configures the synthetic sales table
type SalesGeneratorConfig struct {
	Rows        int       `json:"rows"`
	MissingRate float64   `json:"missing_rate"` // chance that any optional cell is blank
	StartDate   time.Time `json:"start_date"`
	Seed        int64     `json:"seed"`
}

// DefaultSalesConfig returns sensible defaults for sales data generation
func DefaultSalesConfig() SalesGeneratorConfig {
	return SalesGeneratorConfig{
		Rows:        500,
		MissingRate: 0.05,
		StartDate:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Seed:        42,
	}
}

// SalesColumns is the column order of generated records
var SalesColumns = []string{"date", "region", "product", "units", "unit_price", "revenue", "discount", "returned"}

var (
	salesRegions  = []string{"North", "South", "East", "West", "Central"}
	salesProducts = []string{"Product A", "Product B", "Product C", "Product D"}
	productPrices = map[string]float64{"Product A": 25, "Product B": 40, "Product C": 12.5, "Product D": 99}
)

// SalesDataGenerator generates raw upload-shaped sales records: dates and
// numbers arrive as strings the way a CSV parser hands them over
type SalesDataGenerator struct {
	config SalesGeneratorConfig
	rng    *rand.Rand
}

// NewSalesDataGenerator creates a new sales data generator
func NewSalesDataGenerator(config SalesGeneratorConfig) *SalesDataGenerator {
	return &SalesDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateRecords produces config.Rows records. revenue = units * unit_price,
// so the two are strongly correlated.
func (g *SalesDataGenerator) GenerateRecords() []map[string]interface{} {
	records := make([]map[string]interface{}, 0, g.config.Rows)
	for i := 0; i < g.config.Rows; i++ {
		region := salesRegions[g.rng.Intn(len(salesRegions))]
		product := salesProducts[g.rng.Intn(len(salesProducts))]
		units := 1 + g.rng.Intn(20)
		price := productPrices[product]
		revenue := math.Round(float64(units)*price*100) / 100

		rec := map[string]interface{}{
			"date":       g.config.StartDate.AddDate(0, 0, i%90).Format("2006-01-02"),
			"region":     region,
			"product":    product,
			"units":      units,
			"unit_price": price,
			"revenue":    revenue,
			"discount":   g.blankOr(math.Round(g.rng.Float64()*30) / 100),
			"returned":   g.blankOr(g.rng.Float64() < 0.1),
		}
		if g.missing() {
			rec["region"] = ""
		}
		records = append(records, rec)
	}
	return records
}

func (g *SalesDataGenerator) missing() bool {
	return g.rng.Float64() < g.config.MissingRate
}

func (g *SalesDataGenerator) blankOr(v interface{}) interface{} {
	if g.missing() {
		return nil
	}
	return v
}
