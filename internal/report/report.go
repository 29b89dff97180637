// Package report renders a portfolio KPI summary as markdown and HTML.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"rekpi/app"
	"rekpi/domain/kpi"
)

// Options selects what the report covers.
type Options struct {
	Title   string
	Metrics []string // ratio columns to tabulate; defaults to kpi.RatioColumns
}

// Markdown renders the aggregated frame and its column profiles as a
// markdown document.
func Markdown(result *app.PipelineResult, opts Options) string {
	title := opts.Title
	if title == "" {
		title = "Technical KPI Report"
	}
	metrics := opts.Metrics
	if len(metrics) == 0 {
		metrics = kpi.RatioColumns
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Generated %s. %d aggregated period rows.\n\n",
		time.Now().UTC().Format("2006-01-02"), result.Frame.Len())

	writeMappingSection(&b, result)
	writeAnomalySection(&b, result)
	writeProfileSection(&b, result, metrics)
	writeRatioTable(&b, result.Frame, metrics)

	return b.String()
}

// HTML renders the markdown report into a standalone HTML page.
func HTML(result *app.PipelineResult, opts Options) []byte {
	md := Markdown(result, opts)
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{
		Title: "Technical KPI Report",
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.Render(doc, renderer)
}

func writeMappingSection(b *strings.Builder, result *app.PipelineResult) {
	b.WriteString("## Column Mapping\n\n")
	b.WriteString("| Field | Source Column |\n|---|---|\n")
	for _, field := range result.Mapping.SortedFields() {
		fmt.Fprintf(b, "| %s | %s |\n", field, result.Mapping.Column(field))
	}
	b.WriteString("\n")

	if len(result.Collisions) > 0 {
		b.WriteString("Ambiguous headers were resolved in favor of the first matching field:\n\n")
		for _, c := range result.Collisions {
			fmt.Fprintf(b, "- %s\n", c.String())
		}
		b.WriteString("\n")
	}
}

func writeAnomalySection(b *strings.Builder, result *app.PipelineResult) {
	a := result.Anomalies
	if a.UnparseableDates == 0 && a.NegativePremiums == 0 && a.ZeroPremiums == 0 {
		return
	}
	b.WriteString("## Data Quality\n\n")
	if a.UnparseableDates > 0 {
		fmt.Fprintf(b, "- %d rows with unparseable dates were excluded from aggregation\n", a.UnparseableDates)
	}
	if a.NegativePremiums > 0 {
		fmt.Fprintf(b, "- %d rows carry negative earned premium\n", a.NegativePremiums)
	}
	if a.ZeroPremiums > 0 {
		fmt.Fprintf(b, "- %d rows carry zero earned premium; their ratios are blank\n", a.ZeroPremiums)
	}
	b.WriteString("\n")
}

func writeProfileSection(b *strings.Builder, result *app.PipelineResult, metrics []string) {
	wanted := map[string]bool{}
	for _, m := range metrics {
		wanted[m] = true
	}

	b.WriteString("## Ratio Statistics\n\n")
	b.WriteString("| Metric | Obs | Missing | Mean | Median | Min | Max |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, p := range app.ProfileFrame(result.Frame) {
		if !wanted[p.Name] {
			continue
		}
		fmt.Fprintf(b, "| %s | %d | %.0f%% | %s | %s | %s | %s |\n",
			p.Name, p.Count, p.MissingRate*100,
			num(p.Mean), num(p.Median), num(p.Min), num(p.Max))
	}
	b.WriteString("\n")
}

func writeRatioTable(b *strings.Builder, f *kpi.Frame, metrics []string) {
	b.WriteString("## Period Detail\n\n")

	header := []string{"date"}
	header = append(header, f.DimNames()...)
	header = append(header, metrics...)
	fmt.Fprintf(b, "| %s |\n", strings.Join(header, " | "))
	fmt.Fprintf(b, "|%s\n", strings.Repeat("---|", len(header)))

	for i := 0; i < f.Len(); i++ {
		cells := []string{f.Dates[i].Format("2006-01")}
		for _, dim := range f.DimNames() {
			cells = append(cells, f.Dim(dim)[i])
		}
		for _, m := range metrics {
			col := f.Num(m)
			if col == nil || kpi.IsMissing(col[i]) {
				cells = append(cells, "")
				continue
			}
			cells = append(cells, num(col[i]))
		}
		fmt.Fprintf(b, "| %s |\n", strings.Join(cells, " | "))
	}
	b.WriteString("\n")
}

func num(v float64) string {
	return fmt.Sprintf("%.4g", v)
}
