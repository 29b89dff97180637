package forecast

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthlySeries(n int, f func(i int) float64) Series {
	base := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	s := Series{
		Dates:  make([]time.Time, n),
		Values: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		s.Dates[i] = base.AddDate(0, i, 0)
		s.Values[i] = f(i)
	}
	return s
}

func future(points []Point) []Point {
	var out []Point
	for _, p := range points {
		if p.Forecast {
			out = append(out, p)
		}
	}
	return out
}

func TestShortHistoryFallsBackToLastValue(t *testing.T) {
	series := monthlySeries(10, func(i int) float64 { return 100 + float64(i) })

	points := Forecast(context.Background(), series, 6, DefaultConfig())

	fc := future(points)
	require.Len(t, fc, 6)
	for _, p := range fc {
		assert.Equal(t, 109.0, p.Value, "fallback must repeat the last observed value")
	}
	assert.Len(t, points, 16)
}

func TestForecastFlagsAndDates(t *testing.T) {
	series := monthlySeries(10, func(i int) float64 { return 50 })

	points := Forecast(context.Background(), series, 3, DefaultConfig())

	require.Len(t, points, 13)
	for i, p := range points {
		assert.Equal(t, i >= 10, p.Forecast)
	}
	// Future dates continue the monthly cadence.
	assert.Equal(t, series.Dates[9].AddDate(0, 1, 0), points[10].Date)
	assert.Equal(t, series.Dates[9].AddDate(0, 2, 0), points[11].Date)
	assert.Equal(t, series.Dates[9].AddDate(0, 3, 0), points[12].Date)
}

func TestQuarterlyCadencePreserved(t *testing.T) {
	base := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	s := Series{}
	for i := 0; i < 8; i++ {
		s.Dates = append(s.Dates, base.AddDate(0, i*3, 0))
		s.Values = append(s.Values, float64(10+i))
	}

	points := Forecast(context.Background(), s, 2, DefaultConfig())

	fc := future(points)
	require.Len(t, fc, 2)
	assert.Equal(t, s.Dates[7].AddDate(0, 3, 0), fc[0].Date)
	assert.Equal(t, s.Dates[7].AddDate(0, 6, 0), fc[1].Date)
}

func TestSeasonalSeriesGetsNonConstantForecast(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seasonal.Period = 12
	series := monthlySeries(48, func(i int) float64 {
		return 100 + 0.5*float64(i) + 20*math.Sin(2*math.Pi*float64(i)/12)
	})

	points := Forecast(context.Background(), series, 12, cfg)

	fc := future(points)
	require.Len(t, fc, 12)

	minV, maxV := fc[0].Value, fc[0].Value
	for _, p := range fc {
		require.False(t, math.IsNaN(p.Value))
		minV = math.Min(minV, p.Value)
		maxV = math.Max(maxV, p.Value)
	}
	assert.Greater(t, maxV-minV, 1.0, "seasonal history must yield a non-flat forecast")
}

func TestForecastDeterminism(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seasonal.Period = 12
	series := monthlySeries(48, func(i int) float64 {
		return 200 + 2*float64(i) + 15*math.Sin(2*math.Pi*float64(i)/12)
	})

	first := Forecast(context.Background(), series, 6, cfg)
	second := Forecast(context.Background(), series, 6, cfg)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Date, second[i].Date)
		assert.Equal(t, first[i].Value, second[i].Value)
		assert.Equal(t, first[i].Forecast, second[i].Forecast)
	}
}

func TestMissingValuesDroppedBeforeFit(t *testing.T) {
	series := monthlySeries(12, func(i int) float64 { return float64(i) })
	series.Values[4] = math.NaN()
	series.Values[7] = math.Inf(1)

	points := Forecast(context.Background(), series, 2, DefaultConfig())

	for _, p := range points {
		if !p.Forecast {
			assert.False(t, math.IsNaN(p.Value))
			assert.False(t, math.IsInf(p.Value, 0))
		}
	}
	// 10 clean history points + 2 forecast points
	assert.Len(t, points, 12)
}

func TestEmptySeriesStillProducesForecast(t *testing.T) {
	points := Forecast(context.Background(), Series{}, 4, DefaultConfig())

	fc := future(points)
	require.Len(t, fc, 4)
	for _, p := range fc {
		assert.Equal(t, 0.0, p.Value)
	}
}

func TestExpiredContextFallsBack(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	series := monthlySeries(48, func(i int) float64 {
		return 100 + 10*math.Sin(2*math.Pi*float64(i)/12)
	})
	cfg := DefaultConfig()
	cfg.Seasonal.Period = 12

	points := Forecast(ctx, series, 6, cfg)

	fc := future(points)
	require.Len(t, fc, 6)
	last := series.Values[47]
	for _, p := range fc {
		assert.Equal(t, last, p.Value, "cancelled fit must fall back to last value")
	}
}

func TestHorizonLargerThanHistoryTriggersFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinObservations = 5
	series := monthlySeries(26, func(i int) float64 { return float64(i * i) })

	points := Forecast(context.Background(), series, 30, cfg)

	fc := future(points)
	require.Len(t, fc, 30)
	for _, p := range fc {
		assert.Equal(t, series.Values[25], p.Value)
	}
}
