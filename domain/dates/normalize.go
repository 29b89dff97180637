// Package dates coerces raw date columns into aligned month-start
// timestamps. Unparseable cells become zero times; downstream stages
// drop or flag them, never substitute the current date.
package dates

import (
	"strconv"
	"strings"
	"time"

	"rekpi/domain/core"
)

// acceptThreshold is the share of non-empty cells that must parse under
// the day-first layouts for the column to be treated as dates.
const acceptThreshold = 0.6

// dayFirstLayouts cover locales that write the day before the month.
var dayFirstLayouts = []string{
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"02 Jan 2006",
}

// genericLayouts are tried when the day-first pass is rejected.
var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"2006-01",
	"01/02/2006",
	"02-Jan-2006",
	"Jan 2006",
	"January 2006",
}

// NormalizeColumn coerces a raw column into month-start timestamps.
//
// Strategy, in order:
//  1. Parse with day-first layouts (plus ISO forms, which are not
//     ambiguous); accept if more than 60% of non-empty cells parse.
//  2. If the column is purely integer-like, treat values as calendar
//     years and synthesize January 1st.
//  3. Best-effort generic parse; cells that still fail stay zero.
//
// Normalization is idempotent: feeding the rendered output back in
// yields the same timestamps.
func NormalizeColumn(raw []string) []time.Time {
	out := make([]time.Time, len(raw))

	parsed, hits, nonEmpty := parseAll(raw, append(dayFirstLayouts, genericLayouts...))
	if nonEmpty > 0 && float64(hits)/float64(nonEmpty) > acceptThreshold {
		for i, t := range parsed {
			out[i] = core.MonthStart(t)
		}
		return out
	}

	if integerLike(raw) {
		for i, cell := range raw {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			year, err := strconv.Atoi(cell)
			if err != nil || year < 1000 || year > 9999 {
				continue
			}
			out[i] = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		}
		return out
	}

	// Last resort: generic layouts only, leaving failures as zero times.
	parsed, _, _ = parseAll(raw, genericLayouts)
	for i, t := range parsed {
		out[i] = core.MonthStart(t)
	}
	return out
}

// Normalize parses a single cell with the full layout set.
func Normalize(cell string) time.Time {
	t, ok := parseCell(cell, append(dayFirstLayouts, genericLayouts...))
	if !ok {
		return time.Time{}
	}
	return core.MonthStart(t)
}

func parseAll(raw []string, layouts []string) (parsed []time.Time, hits, nonEmpty int) {
	parsed = make([]time.Time, len(raw))
	for i, cell := range raw {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		nonEmpty++
		if t, ok := parseCell(cell, layouts); ok {
			parsed[i] = t
			hits++
		}
	}
	return parsed, hits, nonEmpty
}

func parseCell(cell string, layouts []string) (time.Time, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, false
	}
	if t, ok := parseQuarter(cell); ok {
		return t, true
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseQuarter handles "2023Q1" / "2023-Q1" / "Q1 2023" headings common
// in quarterly bordereaux.
func parseQuarter(cell string) (time.Time, bool) {
	s := strings.ToUpper(strings.ReplaceAll(cell, " ", ""))
	s = strings.ReplaceAll(s, "-", "")
	var year, quarter int
	switch {
	case len(s) == 6 && s[4] == 'Q':
		year, _ = strconv.Atoi(s[:4])
		quarter, _ = strconv.Atoi(s[5:])
	case len(s) == 6 && s[0] == 'Q':
		quarter, _ = strconv.Atoi(s[1:2])
		year, _ = strconv.Atoi(s[2:])
	default:
		return time.Time{}, false
	}
	if year < 1000 || quarter < 1 || quarter > 4 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC), true
}

// integerLike reports whether every non-empty cell parses as an integer.
func integerLike(raw []string) bool {
	seen := false
	for _, cell := range raw {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		seen = true
		if _, err := strconv.Atoi(cell); err != nil {
			return false
		}
	}
	return seen
}
