// Package app wires the schema mapper, date normalizer, ratio engine,
// aggregator and forecaster into request-scoped services. Each run is a
// synchronous batch computation; there is no shared mutable state
// between runs beyond the read-only schema registry.
package app

import (
	"rekpi/adapters/tabular"
	"rekpi/domain/core"
	"rekpi/domain/dates"
	"rekpi/domain/kpi"
	"rekpi/domain/schema"
	"rekpi/internal"
)

// PipelineOptions controls one pipeline run.
type PipelineOptions struct {
	// Overrides take precedence over auto-detected column mappings.
	Overrides schema.Overrides
	// GroupBy lists canonical categorical dimensions (lob, region,
	// cedant) to aggregate by, in addition to the date bucket.
	GroupBy []string
}

// AnomalyReport counts data-quality issues absorbed during a run. None
// of these stop the pipeline; they surface as missing values instead.
type AnomalyReport struct {
	UnparseableDates int `json:"unparseable_dates"`
	NegativePremiums int `json:"negative_premiums"`
	ZeroPremiums     int `json:"zero_premiums"`
}

// PipelineResult is the outcome of a run: the aggregated KPI table plus
// everything the caller may want to surface about how it was produced.
type PipelineResult struct {
	RunID      core.RunID
	Mapping    schema.Mapping
	Collisions []schema.Collision
	Frame      *kpi.Frame
	Anomalies  AnomalyReport
}

// Pipeline executes raw table -> mapping -> canonicalization -> ratios
// -> aggregation.
type Pipeline struct {
	registry *schema.Registry
	log      *internal.Logger
}

// NewPipeline creates a pipeline over the given registry.
func NewPipeline(registry *schema.Registry, logger *internal.Logger) *Pipeline {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Pipeline{registry: registry, log: logger}
}

// Run executes the full pipeline. The only hard failure is a required
// field that cannot be mapped (returned as *schema.
// MissingRequiredFieldError); every other data problem is absorbed into
// missing values and counted in the anomaly report.
func (p *Pipeline) Run(table *tabular.RawTable, opts PipelineOptions) (*PipelineResult, error) {
	runID := core.NewRunID()
	mapping, collisions := p.registry.ProposeMapping(table.Headers)
	mapping = mapping.Apply(opts.Overrides)
	for _, c := range collisions {
		p.log.Warn("ambiguous column mapping: %s", c)
	}

	if err := mapping.Validate(); err != nil {
		return nil, err
	}

	frame, anomalies := p.canonicalize(table, mapping)

	kpi.ComputeRatios(frame)
	aggregated := kpi.Aggregate(frame, opts.GroupBy...)

	p.log.Info("pipeline run %s: %d raw rows -> %d aggregated rows (%d date anomalies)",
		runID, table.Len(), aggregated.Len(), anomalies.UnparseableDates)

	return &PipelineResult{
		RunID:      runID,
		Mapping:    mapping,
		Collisions: collisions,
		Frame:      aggregated,
		Anomalies:  anomalies,
	}, nil
}

// canonicalize renames mapped columns to their canonical field names
// and coerces each to its schema type.
func (p *Pipeline) canonicalize(table *tabular.RawTable, mapping schema.Mapping) (*kpi.Frame, AnomalyReport) {
	var anomalies AnomalyReport
	frame := kpi.NewFrame(table.Len())

	rawDates := table.Column(mapping.Column(schema.FieldDate))
	frame.Dates = dates.NormalizeColumn(rawDates)
	for i, d := range frame.Dates {
		if d.IsZero() && rawDates[i] != "" {
			anomalies.UnparseableDates++
		}
	}

	for _, field := range schema.CategoricalFields() {
		if !mapping.Has(field) {
			continue
		}
		frame.SetDim(field.String(), table.Column(mapping.Column(field)))
	}

	for _, field := range schema.NumericFields() {
		if !mapping.Has(field) {
			continue
		}
		col := tabular.ParseNumericColumn(table.Column(mapping.Column(field)))
		frame.SetNum(field.String(), col)
	}

	if ep := frame.Num(schema.FieldEarnedPremium.String()); ep != nil {
		for _, v := range ep {
			switch {
			case v < 0:
				anomalies.NegativePremiums++
			case v == 0:
				anomalies.ZeroPremiums++
			}
		}
	}

	return frame, anomalies
}
