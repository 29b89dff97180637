package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rekpi/adapters/tabular"
	"rekpi/domain/forecast"
	"rekpi/domain/kpi"
	"rekpi/domain/schema"
	"rekpi/internal/testkit"
)

func newPipeline() *Pipeline {
	return NewPipeline(schema.Default(), nil)
}

func TestPipelineFrenchHeaders(t *testing.T) {
	table := &tabular.RawTable{
		Headers: []string{"Periode", "LOB", "Primes Acquises", "Sinistres Encourus"},
		Rows: [][]string{
			{"2023-01-15", "Casualty", "100", "60"},
			{"2023-01-20", "Casualty", "200", "100"},
		},
	}

	result, err := newPipeline().Run(table, PipelineOptions{GroupBy: []string{"lob"}})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID.String())
	assert.Equal(t, "Periode", result.Mapping.Column(schema.FieldDate))
	assert.Equal(t, "Primes Acquises", result.Mapping.Column(schema.FieldEarnedPremium))
	assert.Equal(t, "Sinistres Encourus", result.Mapping.Column(schema.FieldIncurredClaims))

	// Both rows land in January's bucket; the loss ratio comes from the
	// summed premiums, not the average of row ratios.
	require.Equal(t, 1, result.Frame.Len())
	assert.InDelta(t, 160.0/300.0, result.Frame.Num("loss_ratio")[0], 1e-12)
}

func TestPipelineMissingRequiredField(t *testing.T) {
	table := &tabular.RawTable{
		Headers: []string{"date", "earned_premium", "region"},
		Rows:    [][]string{{"2023-01-01", "100", "EU"}},
	}

	_, err := newPipeline().Run(table, PipelineOptions{})
	require.Error(t, err)

	var missing *schema.MissingRequiredFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []schema.Field{schema.FieldIncurredClaims}, missing.Fields)
}

func TestPipelineOverrideRescuesUnmappedColumn(t *testing.T) {
	table := &tabular.RawTable{
		Headers: []string{"date", "earned_premium", "claims_total"},
		Rows:    [][]string{{"2023-01-01", "100", "40"}},
	}

	result, err := newPipeline().Run(table, PipelineOptions{
		Overrides: schema.Overrides{schema.FieldIncurredClaims: "claims_total"},
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.4, result.Frame.Num("loss_ratio")[0], 1e-12)
}

func TestPipelineAnomalyCounts(t *testing.T) {
	table := &tabular.RawTable{
		Headers: []string{"date", "earned_premium", "incurred_claims"},
		Rows: [][]string{
			{"2023-01-01", "100", "60"},
			{"2023-02-01", "0", "10"},
			{"2023-03-01", "-5", "10"},
			{"garbage", "100", "10"},
			{"2023-04-01", "100", "10"},
		},
	}

	result, err := newPipeline().Run(table, PipelineOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Anomalies.UnparseableDates)
	assert.Equal(t, 1, result.Anomalies.NegativePremiums)
	assert.Equal(t, 1, result.Anomalies.ZeroPremiums)
	// The garbage-dated row is dropped from aggregation.
	assert.Equal(t, 4, result.Frame.Len())
}

func TestPipelineOnSyntheticPortfolio(t *testing.T) {
	table := testkit.Generate(testkit.DefaultGeneratorConfig())

	result, err := newPipeline().Run(table, PipelineOptions{GroupBy: []string{"lob", "region"}})
	require.NoError(t, err)

	// 16 periods x 4 LOBs x 2 regions
	assert.Equal(t, 128, result.Frame.Len())
	for _, v := range result.Frame.Num("loss_ratio") {
		assert.False(t, kpi.IsMissing(v), "synthetic data has usable premiums everywhere")
		assert.Greater(t, v, 0.0)
	}
}

func TestForecastServiceEndToEnd(t *testing.T) {
	cfg := testkit.DefaultGeneratorConfig()
	cfg.Periods = 10
	table := testkit.Generate(cfg)

	result, err := newPipeline().Run(table, PipelineOptions{})
	require.NoError(t, err)

	svc := NewForecastService(forecast.DefaultConfig(), nil)
	points, err := svc.ForecastMetric(context.Background(), result.Frame, "loss_ratio", 6)
	require.NoError(t, err)

	var history, projected int
	for _, p := range points {
		if p.Forecast {
			projected++
		} else {
			history++
		}
	}
	assert.Equal(t, 10, history)
	assert.Equal(t, 6, projected)

	// 10 observations < 24: every projected point repeats the last value.
	last := points[history-1].Value
	for _, p := range points[history:] {
		assert.Equal(t, last, p.Value)
	}
}

func TestForecastServiceUnknownMetric(t *testing.T) {
	table := testkit.Generate(testkit.DefaultGeneratorConfig())
	result, err := newPipeline().Run(table, PipelineOptions{})
	require.NoError(t, err)

	svc := NewForecastService(forecast.DefaultConfig(), nil)
	_, err = svc.ForecastMetric(context.Background(), result.Frame, "no_such_metric", 4)
	assert.Error(t, err)
}

func TestForecastSlices(t *testing.T) {
	cfg := testkit.DefaultGeneratorConfig()
	cfg.Periods = 8
	table := testkit.Generate(cfg)

	result, err := newPipeline().Run(table, PipelineOptions{GroupBy: []string{"region"}})
	require.NoError(t, err)

	svc := NewForecastService(forecast.DefaultConfig(), nil)
	slices, err := svc.ForecastSlices(context.Background(), result.Frame, "combined_ratio", "region", 4)
	require.NoError(t, err)

	require.Len(t, slices, 2)
	for region, points := range slices {
		assert.Contains(t, []string{"EU", "NA"}, region)
		var projected int
		for _, p := range points {
			if p.Forecast {
				projected++
			}
		}
		assert.Equal(t, 4, projected)
	}
}

func TestProfileFrame(t *testing.T) {
	table := testkit.Generate(testkit.DefaultGeneratorConfig())
	result, err := newPipeline().Run(table, PipelineOptions{})
	require.NoError(t, err)

	profiles := ProfileFrame(result.Frame)
	require.NotEmpty(t, profiles)

	byName := map[string]ColumnProfile{}
	for _, p := range profiles {
		byName[p.Name] = p
	}
	ep := byName["earned_premium"]
	assert.Equal(t, result.Frame.Len(), ep.Count)
	assert.Greater(t, ep.Mean, 0.0)
	assert.GreaterOrEqual(t, ep.Max, ep.Median)
}
