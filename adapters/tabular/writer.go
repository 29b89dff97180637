package tabular

import (
	"encoding/csv"
	"io"
	"strconv"

	"rekpi/domain/kpi"
	"rekpi/internal/errors"
)

// WriteCSV serializes a frame as delimited text: the date column first,
// then categorical dimensions, then numeric columns, all in frame
// order. Missing numeric values render as empty cells and zero dates
// as empty strings, so a round trip preserves missingness.
func WriteCSV(w io.Writer, f *kpi.Frame) error {
	cw := csv.NewWriter(w)

	header := append([]string{"date"}, f.DimNames()...)
	header = append(header, f.NumNames()...)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}

	dims := f.DimNames()
	nums := f.NumNames()
	for i := 0; i < f.Len(); i++ {
		row := make([]string, 0, len(header))
		if f.Dates[i].IsZero() {
			row = append(row, "")
		} else {
			row = append(row, f.Dates[i].Format("2006-01-02"))
		}
		for _, d := range dims {
			row = append(row, f.Dim(d)[i])
		}
		for _, n := range nums {
			v := f.Num(n)[i]
			if kpi.IsMissing(v) {
				row = append(row, "")
			} else {
				row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
			}
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "failed to write CSV row")
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush CSV output")
}

// WriteRawCSV serializes an unprocessed table verbatim.
func WriteRawCSV(w io.Writer, t *RawTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "failed to write CSV row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush CSV output")
}
