// Package testkit generates deterministic synthetic reinsurance
// bordereaux for demos and tests. Not part of the production contract.
package testkit

import (
	"math"
	"math/rand"
	"strconv"
	"time"

	"rekpi/adapters/tabular"
)

// GeneratorConfig controls the synthetic portfolio.
type GeneratorConfig struct {
	Periods     int
	PeriodStep  int // months between periods: 1 monthly, 3 quarterly
	Seed        int64
	Start       time.Time
	LOBs        []string
	Regions     []string
	CedantName  string
}

// DefaultGeneratorConfig mirrors the demo portfolio: 16 quarters from
// 2022Q1 across four lines of business and two regions.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Periods:    16,
		PeriodStep: 3,
		Seed:       42,
		Start:      time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC),
		LOBs:       []string{"Property Cat", "Casualty", "Life", "Health"},
		Regions:    []string{"EU", "NA"},
		CedantName: "CedantA",
	}
}

// Headers of the generated table, matching the raw bordereau schema.
var Headers = []string{
	"date", "cedant", "lob", "region",
	"gross_premium", "ceded_premium", "earned_premium",
	"incurred_claims", "paid_claims", "ibnr", "rbns",
	"acq_expense", "adm_expense", "claims_count", "exposure",
	"scr", "own_funds", "investment_income",
}

// Generate builds a raw table: one row per period, LOB and region
// combination, with plausible premium, claim and capital figures.
// Deterministic for a fixed config.
func Generate(cfg GeneratorConfig) *tabular.RawTable {
	rng := rand.New(rand.NewSource(cfg.Seed))

	var rows [][]string
	for p := 0; p < cfg.Periods; p++ {
		date := cfg.Start.AddDate(0, p*cfg.PeriodStep, 0)
		for _, lob := range cfg.LOBs {
			for _, region := range cfg.Regions {
				gwp := (50 + 8*rng.NormFloat64()) * 100000
				if gwp < 0 {
					gwp = 0
				}
				ceded := gwp * uniform(rng, 0.15, 0.45)
				ep := gwp * uniform(rng, 0.75, 0.95)

				lambda := 85.0
				sevMean := 9.1
				if lob == "Property Cat" {
					lambda = 110
					sevMean = 9.35
				}
				count := poisson(rng, lambda)
				exposure := 900 + rng.Intn(700)
				severity := math.Exp(sevMean + 0.35*rng.NormFloat64())
				incurred := float64(count) * severity
				paid := incurred * uniform(rng, 0.6, 0.9)
				ibnr := incurred * uniform(rng, 0.06, 0.18)
				rbns := incurred * uniform(rng, 0.05, 0.15)
				acq := ep * uniform(rng, 0.08, 0.14)
				adm := ep * uniform(rng, 0.05, 0.09)
				inv := gwp * uniform(rng, 0.01, 0.03)
				scr := ep * uniform(rng, 0.28, 0.42)
				own := scr * uniform(rng, 1.25, 1.9)

				rows = append(rows, []string{
					date.Format("2006-01-02"),
					cfg.CedantName,
					lob,
					region,
					money(gwp), money(ceded), money(ep),
					money(incurred), money(paid), money(ibnr), money(rbns),
					money(acq), money(adm),
					strconv.Itoa(count), strconv.Itoa(exposure),
					money(scr), money(own), money(inv),
				})
			}
		}
	}

	return &tabular.RawTable{Headers: Headers, Rows: rows}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

// poisson draws via inversion by sequential search, adequate for the
// modest rates used here.
func poisson(rng *rand.Rand, lambda float64) int {
	// For large lambda, a normal approximation avoids long loops.
	if lambda > 30 {
		v := lambda + math.Sqrt(lambda)*rng.NormFloat64()
		if v < 0 {
			return 0
		}
		return int(math.Round(v))
	}
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= l {
			return k
		}
		k++
	}
}

func money(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
