// Package forecast projects a single KPI series forward with a seasonal
// ARIMA model, degrading to a last-value forecast whenever the history
// is too short or the fit fails. Forecasting is best-effort by design:
// nothing in this package returns an error to the pipeline.
package forecast

import (
	"context"
	"math"
	"sort"
	"time"

	"rekpi/domain/core"
)

// Config controls the model order and the fallback policy.
type Config struct {
	Order    Order
	Seasonal Seasonal

	// MinObservations is the shortest usable history. Below it (or below
	// the horizon, whichever is larger) the naive fallback is returned.
	// The default of 24 is an empirical constant, kept configurable.
	MinObservations int

	// FitTimeout bounds the optimizer; expiry is treated exactly like a
	// fit failure.
	FitTimeout time.Duration
}

// DefaultConfig mirrors the production defaults: ARIMA(1,1,1) with a
// (0,1,1) seasonal component over four periods (quarterly data).
func DefaultConfig() Config {
	return Config{
		Order:           Order{P: 1, D: 1, Q: 1},
		Seasonal:        Seasonal{P: 0, D: 1, Q: 1, Period: 4},
		MinObservations: 24,
		FitTimeout:      10 * time.Second,
	}
}

// Point is one entry of a forecast series.
type Point struct {
	Date     time.Time `json:"date"`
	Value    float64   `json:"value"`
	Forecast bool      `json:"forecast"`
}

// Series is an ordered (date, value) history for a single metric slice.
type Series struct {
	Dates  []time.Time
	Values []float64
}

// Forecast extends the series horizon periods past its last observation.
// The returned slice holds the cleaned history (Forecast false) followed
// by the projected points (Forecast true). Output dates continue the
// cadence of the input. Deterministic for a fixed input and config.
func Forecast(ctx context.Context, series Series, horizon int, cfg Config) []Point {
	clean := cleanSeries(series)

	points := make([]Point, 0, len(clean.Dates)+horizon)
	for i := range clean.Dates {
		points = append(points, Point{Date: clean.Dates[i], Value: clean.Values[i]})
	}
	if horizon <= 0 {
		return points
	}

	min := cfg.MinObservations
	if horizon > min {
		min = horizon
	}
	if len(clean.Values) < min {
		return append(points, naive(clean, horizon)...)
	}

	fitCtx := ctx
	if cfg.FitTimeout > 0 {
		var cancel context.CancelFunc
		fitCtx, cancel = context.WithTimeout(ctx, cfg.FitTimeout)
		defer cancel()
	}

	model, err := fitSARIMA(fitCtx, clean.Values, cfg.Order, cfg.Seasonal)
	if err != nil {
		// Fit failures and timeouts degrade to the naive forecast.
		return append(points, naive(clean, horizon)...)
	}

	preds := model.predict(horizon)
	if !allFinite(preds) {
		return append(points, naive(clean, horizon)...)
	}

	step := cadenceMonths(clean.Dates)
	last := lastDate(clean)
	for i, v := range preds {
		points = append(points, Point{
			Date:     core.AddMonths(last, step*(i+1)),
			Value:    v,
			Forecast: true,
		})
	}
	return points
}

// naive repeats the last observed value for every future period.
func naive(clean Series, horizon int) []Point {
	lastVal := 0.0
	if n := len(clean.Values); n > 0 {
		lastVal = clean.Values[n-1]
	}
	step := cadenceMonths(clean.Dates)
	last := lastDate(clean)

	out := make([]Point, horizon)
	for i := range out {
		out[i] = Point{
			Date:     core.AddMonths(last, step*(i+1)),
			Value:    lastVal,
			Forecast: true,
		}
	}
	return out
}

// cleanSeries drops pairs with missing or non-finite values or a zero
// date, then sorts by date.
func cleanSeries(s Series) Series {
	type pair struct {
		d time.Time
		v float64
	}
	pairs := make([]pair, 0, len(s.Values))
	for i, v := range s.Values {
		if i >= len(s.Dates) {
			break
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || s.Dates[i].IsZero() {
			continue
		}
		pairs = append(pairs, pair{d: core.MonthStart(s.Dates[i]), v: v})
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].d.Before(pairs[j].d) })

	out := Series{
		Dates:  make([]time.Time, len(pairs)),
		Values: make([]float64, len(pairs)),
	}
	for i, p := range pairs {
		out.Dates[i] = p.d
		out.Values[i] = p.v
	}
	return out
}

// cadenceMonths infers the series cadence (1 monthly, 3 quarterly,
// 12 annual) as the most frequent gap between consecutive observations.
func cadenceMonths(dates []time.Time) int {
	counts := map[int]int{}
	for i := 1; i < len(dates); i++ {
		gap := core.MonthsBetween(dates[i-1], dates[i])
		if gap > 0 {
			counts[gap]++
		}
	}
	best, bestCount := 1, 0
	for gap, c := range counts {
		if c > bestCount || (c == bestCount && gap < best) {
			best, bestCount = gap, c
		}
	}
	return best
}

func lastDate(clean Series) time.Time {
	if n := len(clean.Dates); n > 0 {
		return clean.Dates[n-1]
	}
	return core.MonthStart(time.Now().UTC())
}
