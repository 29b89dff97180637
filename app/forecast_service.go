package app

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"rekpi/domain/core"
	"rekpi/domain/forecast"
	"rekpi/domain/kpi"
	"rekpi/internal"
)

// ForecastService projects metrics from an aggregated KPI frame.
type ForecastService struct {
	cfg forecast.Config
	log *internal.Logger
}

// NewForecastService creates a service with the given model config.
func NewForecastService(cfg forecast.Config, logger *internal.Logger) *ForecastService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ForecastService{cfg: cfg, log: logger}
}

// MetricSeries extracts the (date, value) series for one metric,
// optionally restricted to rows matching every filter dimension.
func (s *ForecastService) MetricSeries(f *kpi.Frame, metric string, filter map[string]string) (forecast.Series, error) {
	col := f.Num(metric)
	if col == nil {
		return forecast.Series{}, core.ErrMetricNotFound
	}

	var series forecast.Series
	for i := 0; i < f.Len(); i++ {
		matched := true
		for dim, want := range filter {
			vals := f.Dim(dim)
			if vals == nil || vals[i] != want {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		series.Dates = append(series.Dates, f.Dates[i])
		series.Values = append(series.Values, col[i])
	}
	return series, nil
}

// ForecastMetric projects one metric across the whole frame.
func (s *ForecastService) ForecastMetric(ctx context.Context, f *kpi.Frame, metric string, horizon int) ([]forecast.Point, error) {
	series, err := s.MetricSeries(f, metric, nil)
	if err != nil {
		return nil, err
	}
	return forecast.Forecast(ctx, series, horizon, s.cfg), nil
}

// ForecastSlices projects one metric independently for every distinct
// value of a dimension, fanning the fits out across goroutines. The
// per-slice forecast never fails, so the group only stops on context
// cancellation.
func (s *ForecastService) ForecastSlices(ctx context.Context, f *kpi.Frame, metric, dim string, horizon int) (map[string][]forecast.Point, error) {
	if f.Num(metric) == nil {
		return nil, core.ErrMetricNotFound
	}
	vals := f.Dim(dim)
	if vals == nil {
		return nil, core.ErrColumnNotFound
	}

	seen := map[string]bool{}
	var slices []string
	for _, v := range vals {
		if !seen[v] {
			seen[v] = true
			slices = append(slices, v)
		}
	}
	sort.Strings(slices)

	out := make(map[string][]forecast.Point, len(slices))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, slice := range slices {
		g.Go(func() error {
			series, err := s.MetricSeries(f, metric, map[string]string{dim: slice})
			if err != nil {
				return err
			}
			points := forecast.Forecast(gctx, series, horizon, s.cfg)
			mu.Lock()
			out[slice] = points
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
