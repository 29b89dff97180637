package kpi

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func frameWith(nums map[string][]float64, n int) *Frame {
	f := NewFrame(n)
	base := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := range f.Dates {
		f.Dates[i] = base.AddDate(0, i, 0)
	}
	for name, col := range nums {
		f.SetNum(name, col)
	}
	return f
}

func TestLossRatio(t *testing.T) {
	f := frameWith(map[string][]float64{
		"earned_premium":  {100, 200},
		"incurred_claims": {60, 100},
	}, 2)

	ComputeRatios(f)

	loss := f.Num("loss_ratio")
	assert.InDelta(t, 0.6, loss[0], 1e-12)
	assert.InDelta(t, 0.5, loss[1], 1e-12)
}

func TestZeroDenominatorIsMissingNotInfinity(t *testing.T) {
	f := frameWith(map[string][]float64{
		"earned_premium":  {0, Missing(), 100},
		"incurred_claims": {60, 60, 60},
	}, 3)

	ComputeRatios(f)

	loss := f.Num("loss_ratio")
	assert.True(t, IsMissing(loss[0]), "zero premium must give missing loss ratio")
	assert.True(t, IsMissing(loss[1]), "missing premium must give missing loss ratio")
	assert.False(t, math.IsInf(loss[0], 0))
	assert.InDelta(t, 0.6, loss[2], 1e-12)

	// Dependent ratios are missing too, not zero.
	assert.True(t, IsMissing(f.Num("expense_ratio")[0]))
	assert.True(t, IsMissing(f.Num("combined_ratio")[0]))
	assert.True(t, IsMissing(f.Num("operating_ratio")[0]))
}

func TestCombinedAndOperatingRatios(t *testing.T) {
	f := frameWith(map[string][]float64{
		"earned_premium":    {1000},
		"incurred_claims":   {600},
		"acq_expense":       {100},
		"adm_expense":       {50},
		"investment_income": {30},
	}, 1)

	ComputeRatios(f)

	assert.InDelta(t, 0.15, f.Num("expense_ratio")[0], 1e-12)
	assert.InDelta(t, 0.75, f.Num("combined_ratio")[0], 1e-12)
	assert.InDelta(t, 0.72, f.Num("operating_ratio")[0], 1e-12)
}

func TestCessionAndRetention(t *testing.T) {
	f := frameWith(map[string][]float64{
		"earned_premium":  {900, 900},
		"incurred_claims": {100, 100},
		"gross_premium":   {1000, 0},
		"ceded_premium":   {250, 250},
	}, 2)

	ComputeRatios(f)

	assert.InDelta(t, 0.25, f.Num("cession_ratio")[0], 1e-12)
	assert.InDelta(t, 0.75, f.Num("retention_ratio")[0], 1e-12)
	assert.True(t, IsMissing(f.Num("cession_ratio")[1]), "zero gross premium")
	assert.True(t, IsMissing(f.Num("retention_ratio")[1]))
}

func TestFrequencySeverityRequireInputs(t *testing.T) {
	f := frameWith(map[string][]float64{
		"earned_premium":  {100},
		"incurred_claims": {80},
	}, 1)

	ComputeRatios(f)

	// Columns exist for a stable shape, values are missing.
	assert.True(t, IsMissing(f.Num("frequency")[0]))
	assert.True(t, IsMissing(f.Num("severity")[0]))

	g := frameWith(map[string][]float64{
		"earned_premium":  {100},
		"incurred_claims": {80},
		"claims_count":    {4},
		"exposure":        {1000},
	}, 1)

	ComputeRatios(g)

	assert.InDelta(t, 0.004, g.Num("frequency")[0], 1e-12)
	assert.InDelta(t, 20.0, g.Num("severity")[0], 1e-12)
}

func TestReservesAndSolvency(t *testing.T) {
	f := frameWith(map[string][]float64{
		"earned_premium":  {100},
		"incurred_claims": {80},
		"ibnr":            {12},
		"rbns":            {Missing()},
		"scr":             {40},
		"own_funds":       {70},
	}, 1)

	ComputeRatios(f)

	assert.InDelta(t, 12.0, f.Num("total_reserves")[0], 1e-12)
	assert.InDelta(t, 0.15, f.Num("reserve_coverage")[0], 1e-12)
	assert.InDelta(t, 1.75, f.Num("solvency_ratio")[0], 1e-12)
}

func TestRecomputeIsDeterministic(t *testing.T) {
	f := frameWith(map[string][]float64{
		"earned_premium":  {100, 250, 0},
		"incurred_claims": {60, 110, 5},
	}, 3)

	ComputeRatios(f)
	first := append([]float64(nil), f.Num("loss_ratio")...)
	ComputeRatios(f)
	second := f.Num("loss_ratio")

	for i := range first {
		if IsMissing(first[i]) {
			assert.True(t, IsMissing(second[i]))
			continue
		}
		assert.Equal(t, first[i], second[i])
	}
}
