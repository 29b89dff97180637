package tabular

import (
	"math"
	"strconv"
	"strings"
)

// currencyTokens are stripped before numeric parsing.
var currencyTokens = []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY"}

// ParseNumericColumn coerces raw cells to float64, with NaN marking
// empty or unparseable cells. Handles international formats:
// parentheses for negatives, currency symbols, French thousands spaces
// and comma decimals.
func ParseNumericColumn(raw []string) []float64 {
	out := make([]float64, len(raw))
	for i, cell := range raw {
		out[i] = ParseNumeric(cell)
	}
	return out
}

// ParseNumeric coerces one cell; NaN means missing.
func ParseNumeric(cell string) float64 {
	s := strings.TrimSpace(cell)
	if s == "" {
		return math.NaN()
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
		negative = true
	}

	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.ReplaceAll(s, "%", "")
	s = strings.TrimSpace(s)

	hasComma := strings.Contains(s, ",")
	hasPeriod := strings.Contains(s, ".")
	hasSpace := strings.Contains(s, " ")

	switch {
	case hasComma && hasPeriod:
		// European: period thousands, comma decimal (1.234,56)
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			// US: comma thousands, period decimal (1,234.56)
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma && hasSpace:
		// French: space thousands, comma decimal (1 234,56)
		s = strings.ReplaceAll(s, " ", "")
		s = strings.ReplaceAll(s, ",", ".")
	case hasComma:
		// Lone comma: decimal when followed by at most two digits
		idx := strings.LastIndex(s, ",")
		if len(s)-idx-1 <= 2 {
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasSpace:
		s = strings.ReplaceAll(s, " ", "")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	if negative {
		v = -v
	}
	return v
}
