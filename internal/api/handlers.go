package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"rekpi/adapters/tabular"
	"rekpi/app"
	"rekpi/domain/core"
	"rekpi/domain/kpi"
	"rekpi/domain/schema"
	"rekpi/internal/report"
	"rekpi/internal/testkit"
)

// readUpload parses the multipart "file" field into a raw table,
// dispatching on the uploaded filename's extension.
func readUpload(c *gin.Context) (*tabular.RawTable, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, err
	}
	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == ".xlsx" || ext == ".xlsm" {
		return tabular.ReadExcel(src)
	}
	return tabular.ReadCSV(src)
}

// pipelineOptions reads the optional group_by and overrides form fields.
// group_by is a comma-separated dimension list; overrides is a JSON
// object of canonical field to column name.
func pipelineOptions(c *gin.Context) (app.PipelineOptions, error) {
	var opts app.PipelineOptions

	if raw := c.PostForm("group_by"); raw != "" {
		for _, dim := range strings.Split(raw, ",") {
			if dim = strings.TrimSpace(dim); dim != "" {
				opts.GroupBy = append(opts.GroupBy, dim)
			}
		}
	}

	if raw := c.PostForm("overrides"); raw != "" {
		var overrides map[string]string
		if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
			return opts, err
		}
		opts.Overrides = schema.Overrides{}
		for field, col := range overrides {
			opts.Overrides[schema.Field(field)] = col
		}
	}

	return opts, nil
}

func (s *Server) runPipeline(c *gin.Context) (*app.PipelineResult, bool) {
	table, err := readUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	opts, err := pipelineOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "overrides must be a JSON object of field to column"})
		return nil, false
	}

	result, err := s.pipeline.Run(table, opts)
	if err != nil {
		var missing *schema.MissingRequiredFieldError
		if errors.As(err, &missing) {
			fields := make([]string, len(missing.Fields))
			for i, f := range missing.Fields {
				fields[i] = f.String()
			}
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":          missing.Error(),
				"missing_fields": fields,
			})
			return nil, false
		}
		s.log.Error("pipeline run failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pipeline run failed"})
		return nil, false
	}
	return result, true
}

// handleKPIs computes the aggregated KPI table from an uploaded
// bordereau. format=csv streams a download; the default is JSON rows.
func (s *Server) handleKPIs(c *gin.Context) {
	result, ok := s.runPipeline(c)
	if !ok {
		return
	}

	if c.DefaultPostForm("format", "json") == "csv" {
		c.Header("Content-Disposition", `attachment; filename="kpis.csv"`)
		c.Header("Content-Type", "text/csv")
		if err := tabular.WriteCSV(c.Writer, result.Frame); err != nil {
			s.log.Error("CSV export failed: %v", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":     result.RunID.String(),
		"mapping":    mappingJSON(result.Mapping),
		"collisions": collisionsJSON(result.Collisions),
		"anomalies":  result.Anomalies,
		"rows":       frameRows(result.Frame),
		"row_count":  result.Frame.Len(),
	})
}

// handleForecast projects one ratio from an uploaded bordereau. With
// slice_by set, the metric is forecast independently per dimension
// value; the dimension must also appear in group_by.
func (s *Server) handleForecast(c *gin.Context) {
	result, ok := s.runPipeline(c)
	if !ok {
		return
	}

	metric := c.DefaultPostForm("metric", "loss_ratio")
	horizon := s.cfg.Forecast.DefaultHorizon
	if raw := c.PostForm("horizon"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "horizon must be a positive integer"})
			return
		}
		horizon = n
	}

	ctx := c.Request.Context()
	if sliceBy := c.PostForm("slice_by"); sliceBy != "" {
		slices, err := s.forecasts.ForecastSlices(ctx, result.Frame, metric, sliceBy, horizon)
		if err != nil {
			c.JSON(forecastStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"metric": metric, "horizon": horizon, "slices": slices})
		return
	}

	points, err := s.forecasts.ForecastMetric(ctx, result.Frame, metric, horizon)
	if err != nil {
		c.JSON(forecastStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"metric": metric, "horizon": horizon, "points": points})
}

// handleReport renders the uploaded bordereau as an HTML summary page.
func (s *Server) handleReport(c *gin.Context) {
	result, ok := s.runPipeline(c)
	if !ok {
		return
	}
	page := report.HTML(result, report.Options{Title: c.DefaultPostForm("title", "Technical KPI Report")})
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// handleDemo streams a synthetic bordereau as a CSV download. periods
// and seed query parameters shape the portfolio.
func (s *Server) handleDemo(c *gin.Context) {
	cfg := testkit.DefaultGeneratorConfig()
	if raw := c.Query("periods"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 400 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "periods must be between 1 and 400"})
			return
		}
		cfg.Periods = n
	}
	if raw := c.Query("seed"); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "seed must be an integer"})
			return
		}
		cfg.Seed = seed
	}

	c.Header("Content-Disposition", `attachment; filename="demo_bordereau.csv"`)
	c.Header("Content-Type", "text/csv")
	if err := tabular.WriteRawCSV(c.Writer, testkit.Generate(cfg)); err != nil {
		s.log.Error("demo export failed: %v", err)
	}
}

func forecastStatus(err error) int {
	if core.IsNotFoundError(err) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func mappingJSON(m schema.Mapping) map[string]string {
	out := make(map[string]string, len(m))
	for _, f := range m.SortedFields() {
		out[f.String()] = m.Column(f)
	}
	return out
}

func collisionsJSON(collisions []schema.Collision) []gin.H {
	out := make([]gin.H, 0, len(collisions))
	for _, c := range collisions {
		losers := make([]string, len(c.Losers))
		for i, f := range c.Losers {
			losers[i] = f.String()
		}
		out = append(out, gin.H{"column": c.Column, "kept": c.Kept.String(), "also_matched": losers})
	}
	return out
}

// frameRows flattens a frame into JSON objects, one per aggregated
// period row. Missing values serialize as null.
func frameRows(f *kpi.Frame) []map[string]any {
	rows := make([]map[string]any, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		row := map[string]any{}
		if !f.Dates[i].IsZero() {
			row["date"] = f.Dates[i].Format(time.DateOnly)
		}
		for _, dim := range f.DimNames() {
			row[dim] = f.Dim(dim)[i]
		}
		for _, num := range f.NumNames() {
			v := f.Num(num)[i]
			if kpi.IsMissing(v) {
				row[num] = nil
			} else {
				row[num] = v
			}
		}
		rows = append(rows, row)
	}
	return rows
}
