package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProposeMappingFrenchAliases(t *testing.T) {
	reg := Default()
	columns := []string{"Periode", "LOB", "Primes Acquises", "Sinistres Encourus"}

	mapping, collisions := reg.ProposeMapping(columns)

	assert.Empty(t, collisions)
	assert.Equal(t, "Periode", mapping.Column(FieldDate))
	assert.Equal(t, "LOB", mapping.Column(FieldLOB))
	assert.Equal(t, "Primes Acquises", mapping.Column(FieldEarnedPremium))
	assert.Equal(t, "Sinistres Encourus", mapping.Column(FieldIncurredClaims))
	assert.False(t, mapping.Has(FieldSCR))
}

func TestProposeMappingIdempotent(t *testing.T) {
	reg := Default()
	columns := []string{"Date", "gwp", "EP", "ICL", "Region", "nombre_sinistres"}

	first, _ := reg.ProposeMapping(columns)
	second, _ := reg.ProposeMapping(columns)

	assert.Equal(t, first, second)
}

func TestProposeMappingCaseInsensitive(t *testing.T) {
	reg := Default()
	mapping, _ := reg.ProposeMapping([]string{"DATE", "Earned_Premium", "INCURRED_CLAIMS"})

	assert.Equal(t, "DATE", mapping.Column(FieldDate))
	assert.Equal(t, "Earned_Premium", mapping.Column(FieldEarnedPremium))
	assert.Equal(t, "INCURRED_CLAIMS", mapping.Column(FieldIncurredClaims))
}

func TestProposeMappingCollisionFlagged(t *testing.T) {
	// The default registry has no overlapping aliases, so exercise the
	// collision path with two fields claiming the same heading.
	r := &Registry{
		fields: []Field{FieldGrossPremium, FieldEarnedPremium},
		aliases: map[Field][]string{
			FieldGrossPremium:  {"premium"},
			FieldEarnedPremium: {"premium"},
		},
		kinds: map[Field]FieldKind{
			FieldGrossPremium:  KindNumeric,
			FieldEarnedPremium: KindNumeric,
		},
	}

	mapping, collisions := r.ProposeMapping([]string{"Premium"})

	require.Len(t, collisions, 1)
	assert.Equal(t, "Premium", collisions[0].Column)
	assert.Equal(t, FieldGrossPremium, collisions[0].Kept)
	assert.Equal(t, []Field{FieldEarnedPremium}, collisions[0].Losers)
	assert.Equal(t, "Premium", mapping.Column(FieldGrossPremium))
	assert.False(t, mapping.Has(FieldEarnedPremium))
}

func TestOverridesTakePrecedence(t *testing.T) {
	reg := Default()
	mapping, _ := reg.ProposeMapping([]string{"date", "ep", "icl", "weird_col"})

	overridden := mapping.Apply(Overrides{
		FieldIncurredClaims: "weird_col",
		FieldDate:           "",
	})

	assert.Equal(t, "weird_col", overridden.Column(FieldIncurredClaims))
	assert.False(t, overridden.Has(FieldDate))
	// original untouched
	assert.Equal(t, "icl", mapping.Column(FieldIncurredClaims))
	assert.Equal(t, "date", mapping.Column(FieldDate))
}

func TestValidateMissingRequired(t *testing.T) {
	reg := Default()
	mapping, _ := reg.ProposeMapping([]string{"date", "earned_premium", "region"})

	err := mapping.Validate()
	require.Error(t, err)

	var missing *MissingRequiredFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []Field{FieldIncurredClaims}, missing.Fields)
}

func TestValidateComplete(t *testing.T) {
	reg := Default()
	mapping, _ := reg.ProposeMapping([]string{"date", "earned_premium", "incurred_claims"})

	assert.NoError(t, mapping.Validate())
}
