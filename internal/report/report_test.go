package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rekpi/app"
	"rekpi/domain/schema"
	"rekpi/internal/testkit"
)

func buildResult(t *testing.T) *app.PipelineResult {
	t.Helper()
	table := testkit.Generate(testkit.DefaultGeneratorConfig())
	result, err := app.NewPipeline(schema.Default(), nil).Run(table, app.PipelineOptions{GroupBy: []string{"lob"}})
	require.NoError(t, err)
	return result
}

func TestMarkdownSections(t *testing.T) {
	md := Markdown(buildResult(t), Options{Title: "Q1 Review"})

	assert.Contains(t, md, "# Q1 Review")
	assert.Contains(t, md, "## Column Mapping")
	assert.Contains(t, md, "## Ratio Statistics")
	assert.Contains(t, md, "## Period Detail")
	assert.Contains(t, md, "loss_ratio")
	assert.Contains(t, md, "| earned_premium |")
}

func TestMarkdownMetricSubset(t *testing.T) {
	md := Markdown(buildResult(t), Options{Metrics: []string{"loss_ratio"}})

	assert.Contains(t, md, "loss_ratio")
	assert.NotContains(t, md, "solvency_ratio")
}

func TestHTMLRendersCompletePage(t *testing.T) {
	page := string(HTML(buildResult(t), Options{}))

	assert.Contains(t, page, "<html")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "Column Mapping")
}
