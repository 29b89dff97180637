package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Mapping associates canonical fields with actual column names from a
// user-supplied table. A missing entry means the field is absent.
// Computed once per table at load time; immutable afterwards except
// through explicit overrides.
type Mapping map[Field]string

// Collision is reported when more than one canonical field's alias list
// claims the same input column. Resolution is left to the caller; the
// proposal keeps the first field (registry order) and flags the rest.
type Collision struct {
	Column string
	Kept   Field
	Losers []Field
}

func (c Collision) String() string {
	losers := make([]string, len(c.Losers))
	for i, f := range c.Losers {
		losers[i] = f.String()
	}
	return fmt.Sprintf("column %q mapped to %s; also matched by %s",
		c.Column, c.Kept, strings.Join(losers, ", "))
}

// Overrides carries manual field-to-column assignments supplied by the
// caller. They take precedence over auto-detected entries. An explicit
// empty column name removes an auto-detected mapping.
type Overrides map[Field]string

// MissingRequiredFieldError reports required canonical fields that could
// not be mapped from the input table.
type MissingRequiredFieldError struct {
	Fields []Field
}

func (e *MissingRequiredFieldError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.String()
	}
	return fmt.Sprintf("required fields could not be mapped: %s", strings.Join(names, ", "))
}

// normalizeHeader folds a column heading to its lookup key: trimmed,
// lowercased, inner whitespace collapsed to underscores. Lets headers
// like "Primes Acquises" match the alias "primes_acquises".
func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), "_")
}

// ProposeMapping matches input column names against the registry's alias
// lists, case-insensitively, first alias match wins per field. Pure and
// idempotent: the same column set always yields the same proposal. When
// two fields claim the same column, the earlier field in registry order
// keeps it and a Collision is returned for the caller to resolve.
func (r *Registry) ProposeMapping(columns []string) (Mapping, []Collision) {
	byLower := make(map[string]string, len(columns))
	for _, c := range columns {
		key := normalizeHeader(c)
		if _, seen := byLower[key]; !seen {
			byLower[key] = c
		}
	}

	mapping := Mapping{}
	claimedBy := map[string]Field{}
	extra := map[string][]Field{}

	for _, field := range r.fields {
		for _, alias := range r.aliases[field] {
			actual, ok := byLower[normalizeHeader(alias)]
			if !ok {
				continue
			}
			if _, taken := claimedBy[actual]; taken {
				extra[actual] = append(extra[actual], field)
			} else {
				claimedBy[actual] = field
				mapping[field] = actual
			}
			break
		}
	}

	var collisions []Collision
	for col, losers := range extra {
		collisions = append(collisions, Collision{
			Column: col,
			Kept:   claimedBy[col],
			Losers: losers,
		})
	}
	sort.Slice(collisions, func(i, j int) bool {
		return collisions[i].Column < collisions[j].Column
	})

	return mapping, collisions
}

// Apply merges manual overrides into the mapping, returning a new map.
// The receiver is not modified.
func (m Mapping) Apply(overrides Overrides) Mapping {
	out := make(Mapping, len(m))
	for f, col := range m {
		out[f] = col
	}
	for f, col := range overrides {
		if col == "" {
			delete(out, f)
			continue
		}
		out[f] = col
	}
	return out
}

// Validate checks that every required field is mapped. Returns a
// *MissingRequiredFieldError naming the gaps, or nil.
func (m Mapping) Validate() error {
	var missing []Field
	for _, f := range Required() {
		if m[f] == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &MissingRequiredFieldError{Fields: missing}
	}
	return nil
}

// Column returns the mapped column for a field, or "" when absent.
func (m Mapping) Column(f Field) string {
	return m[f]
}

// Has reports whether a field was mapped.
func (m Mapping) Has(f Field) bool {
	return m[f] != ""
}

// SortedFields returns the mapped fields in stable lexical order, for
// deterministic display.
func (m Mapping) SortedFields() []Field {
	fields := make([]Field, 0, len(m))
	for f := range m {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}
