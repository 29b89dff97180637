package kpi

import (
	"sort"
	"strings"
	"time"

	"rekpi/domain/core"
	"rekpi/domain/schema"
)

// Aggregate groups the frame by month-start date plus the requested
// categorical dimensions, sums every raw quantity within each group,
// and re-derives the ratios from the summed quantities.
//
// Ratios are never averaged across rows: averaging loss ratios of 60%
// and 50% says nothing about the portfolio when the premiums differ.
// Summation treats missing values as zero, the standard policy for
// financial totals; this deliberately differs from the row-level
// null-propagation in ComputeRatios.
//
// Rows with a zero (unparseable) date are excluded. An empty input
// yields an empty output.
func Aggregate(f *Frame, dims ...string) *Frame {
	type group struct {
		date time.Time
		dims []string
		sums map[string]float64
	}

	// Only aggregate dimensions that exist on the frame.
	var keep []string
	for _, d := range dims {
		if f.Dim(d) != nil {
			keep = append(keep, d)
		}
	}

	rawCols := make([]string, 0, len(schema.NumericFields()))
	for _, field := range schema.NumericFields() {
		if f.HasNum(field.String()) {
			rawCols = append(rawCols, field.String())
		}
	}

	groups := map[string]*group{}
	var order []string

	for i := 0; i < f.Len(); i++ {
		if f.Dates[i].IsZero() {
			continue
		}
		date := core.MonthStart(f.Dates[i])

		keyParts := []string{date.Format("2006-01-02")}
		dimVals := make([]string, len(keep))
		for j, d := range keep {
			dimVals[j] = f.Dim(d)[i]
			keyParts = append(keyParts, dimVals[j])
		}
		key := strings.Join(keyParts, "\x1f")

		g, ok := groups[key]
		if !ok {
			g = &group{
				date: date,
				dims: dimVals,
				sums: map[string]float64{},
			}
			groups[key] = g
			order = append(order, key)
		}
		for _, col := range rawCols {
			v := f.Num(col)[i]
			if !IsMissing(v) {
				g.sums[col] += v
			}
		}
	}

	// Deterministic output: date ascending, then dimension values.
	sort.Slice(order, func(i, j int) bool {
		gi, gj := groups[order[i]], groups[order[j]]
		if !gi.date.Equal(gj.date) {
			return gi.date.Before(gj.date)
		}
		for k := range gi.dims {
			if gi.dims[k] != gj.dims[k] {
				return gi.dims[k] < gj.dims[k]
			}
		}
		return false
	})

	out := NewFrame(len(order))
	dimCols := make(map[string][]string, len(keep))
	for _, d := range keep {
		dimCols[d] = make([]string, len(order))
	}
	numCols := make(map[string][]float64, len(rawCols))
	for _, col := range rawCols {
		numCols[col] = make([]float64, len(order))
	}

	for i, key := range order {
		g := groups[key]
		out.Dates[i] = g.date
		for j, d := range keep {
			dimCols[d][i] = g.dims[j]
		}
		for _, col := range rawCols {
			numCols[col][i] = g.sums[col]
		}
	}
	for _, d := range keep {
		out.SetDim(d, dimCols[d])
	}
	for _, col := range rawCols {
		out.SetNum(col, numCols[col])
	}

	ComputeRatios(out)
	return out
}
