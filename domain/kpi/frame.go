// Package kpi holds the ratio engine and the dimension aggregator.
//
// Data is columnar: one date column, zero or more categorical dimension
// columns, and named numeric columns. Missing numeric values are NaN;
// they render as empty cells on export and are never confused with zero.
package kpi

import (
	"math"
	"time"
)

// Missing is the in-memory marker for an absent numeric value.
func Missing() float64 { return math.NaN() }

// IsMissing reports whether a value is the missing marker.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// Frame is a column-oriented table of observations.
type Frame struct {
	Dates []time.Time

	dimOrder []string
	dims     map[string][]string

	numOrder []string
	nums     map[string][]float64
}

// NewFrame creates an empty frame with capacity for n rows.
func NewFrame(n int) *Frame {
	return &Frame{
		Dates: make([]time.Time, n),
		dims:  map[string][]string{},
		nums:  map[string][]float64{},
	}
}

// Len returns the row count.
func (f *Frame) Len() int { return len(f.Dates) }

// SetDim adds or replaces a categorical column. The slice length must
// equal the frame length.
func (f *Frame) SetDim(name string, values []string) {
	if _, ok := f.dims[name]; !ok {
		f.dimOrder = append(f.dimOrder, name)
	}
	f.dims[name] = values
}

// SetNum adds or replaces a numeric column. The slice length must equal
// the frame length.
func (f *Frame) SetNum(name string, values []float64) {
	if _, ok := f.nums[name]; !ok {
		f.numOrder = append(f.numOrder, name)
	}
	f.nums[name] = values
}

// Dim returns a categorical column, or nil when absent.
func (f *Frame) Dim(name string) []string { return f.dims[name] }

// Num returns a numeric column, or nil when absent.
func (f *Frame) Num(name string) []float64 { return f.nums[name] }

// HasNum reports whether a numeric column exists.
func (f *Frame) HasNum(name string) bool {
	_, ok := f.nums[name]
	return ok
}

// DimNames returns categorical column names in insertion order.
func (f *Frame) DimNames() []string {
	out := make([]string, len(f.dimOrder))
	copy(out, f.dimOrder)
	return out
}

// NumNames returns numeric column names in insertion order.
func (f *Frame) NumNames() []string {
	out := make([]string, len(f.numOrder))
	copy(out, f.numOrder)
	return out
}

// numOrMissing returns the column, or a missing-filled slice when the
// column is absent. The returned slice must be treated as read-only.
func (f *Frame) numOrMissing(name string) []float64 {
	if col, ok := f.nums[name]; ok {
		return col
	}
	col := make([]float64, f.Len())
	for i := range col {
		col[i] = Missing()
	}
	return col
}
