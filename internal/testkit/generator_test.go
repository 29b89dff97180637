package testkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateShape(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	table := Generate(cfg)

	assert.Equal(t, Headers, table.Headers)
	// periods x LOBs x regions
	assert.Equal(t, 16*4*2, table.Len())
	for _, row := range table.Rows {
		require.Len(t, row, len(Headers))
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := DefaultGeneratorConfig()

	first := Generate(cfg)
	second := Generate(cfg)

	assert.Equal(t, first.Rows, second.Rows)
}

func TestGenerateSeedChangesData(t *testing.T) {
	a := DefaultGeneratorConfig()
	b := DefaultGeneratorConfig()
	b.Seed = 7

	assert.NotEqual(t, Generate(a).Rows, Generate(b).Rows)
}
