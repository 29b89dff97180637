package app

import (
	"github.com/montanaflynn/stats"

	"rekpi/domain/kpi"
)

// ColumnProfile summarizes one numeric column of a frame.
type ColumnProfile struct {
	Name        string  `json:"name"`
	Count       int     `json:"count"`
	MissingRate float64 `json:"missing_rate"`
	Mean        float64 `json:"mean"`
	Median      float64 `json:"median"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
}

// ProfileFrame computes summary statistics for every numeric column,
// skipping missing values. Columns with no observed values report a
// missing rate of 1 and zeroed statistics.
func ProfileFrame(f *kpi.Frame) []ColumnProfile {
	var profiles []ColumnProfile
	for _, name := range f.NumNames() {
		col := f.Num(name)
		observed := make([]float64, 0, len(col))
		for _, v := range col {
			if !kpi.IsMissing(v) {
				observed = append(observed, v)
			}
		}

		profile := ColumnProfile{Name: name, Count: len(observed)}
		if len(col) > 0 {
			profile.MissingRate = float64(len(col)-len(observed)) / float64(len(col))
		}
		if len(observed) > 0 {
			profile.Mean, _ = stats.Mean(observed)
			profile.Median, _ = stats.Median(observed)
			profile.Min, _ = stats.Min(observed)
			profile.Max, _ = stats.Max(observed)
		}
		profiles = append(profiles, profile)
	}
	return profiles
}
