package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"rekpi/adapters/tabular"
	"rekpi/app"
	"rekpi/domain/forecast"
	"rekpi/domain/schema"
	"rekpi/internal"
	"rekpi/internal/api"
	"rekpi/internal/config"
	"rekpi/internal/report"
	"rekpi/internal/testkit"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "rekpi",
		Short: "Reinsurance technical KPI analytics: map, compute, aggregate, forecast",
	}

	rootCmd.AddCommand(
		newKPIsCmd(),
		newForecastCmd(),
		newDemoCmd(),
		newReportCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newKPIsCmd() *cobra.Command {
	var groupBy []string
	var overrides []string
	var outFile string

	cmd := &cobra.Command{
		Use:   "kpis [input-file]",
		Short: "Compute the aggregated KPI table from a bordereau (CSV or XLSX)",
		Long: `Map the input columns onto the canonical schema, normalize dates,
compute the thirteen technical ratios and aggregate by month (plus any
--group-by dimensions). Output is CSV.

Example: rekpi kpis bordereau.xlsx --group-by lob,region --override incurred_claims=claims_total`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runPipeline(args[0], groupBy, overrides)
			if err != nil {
				return err
			}
			out, closeOut, err := openOutput(outFile)
			if err != nil {
				return err
			}
			defer closeOut()
			return tabular.WriteCSV(out, result.Frame)
		},
	}

	cmd.Flags().StringSliceVar(&groupBy, "group-by", nil, "Categorical dimensions to aggregate by (lob, region, cedant)")
	cmd.Flags().StringArrayVar(&overrides, "override", nil, "Manual mapping field=column, repeatable")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Output file (default stdout)")

	return cmd
}

func newForecastCmd() *cobra.Command {
	var groupBy []string
	var overrides []string
	var metric string
	var horizon int
	var sliceBy string

	cmd := &cobra.Command{
		Use:   "forecast [input-file]",
		Short: "Project a ratio forward from a bordereau",
		Long: `Compute the aggregated KPI table, then fit a seasonal model to one
ratio and project it forward. Falls back to repeating the last observed
value when the history is too short for a stable fit. Output is JSON.

Example: rekpi forecast bordereau.csv --metric loss_ratio --horizon 8 --group-by region --slice-by region`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if horizon < 1 {
				horizon = cfg.Forecast.DefaultHorizon
			}

			result, err := runPipeline(args[0], groupBy, overrides)
			if err != nil {
				return err
			}

			fc := forecast.DefaultConfig()
			fc.Seasonal.Period = cfg.Forecast.SeasonalPeriod
			fc.MinObservations = cfg.Forecast.MinObservations
			fc.FitTimeout = cfg.Forecast.FitTimeout
			svc := app.NewForecastService(fc, internal.DefaultLogger)

			var payload any
			if sliceBy != "" {
				payload, err = svc.ForecastSlices(cmd.Context(), result.Frame, metric, sliceBy, horizon)
			} else {
				payload, err = svc.ForecastMetric(cmd.Context(), result.Frame, metric, horizon)
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		},
	}

	cmd.Flags().StringSliceVar(&groupBy, "group-by", nil, "Categorical dimensions to aggregate by")
	cmd.Flags().StringArrayVar(&overrides, "override", nil, "Manual mapping field=column, repeatable")
	cmd.Flags().StringVar(&metric, "metric", "loss_ratio", "Ratio to forecast")
	cmd.Flags().IntVar(&horizon, "horizon", 0, "Periods to project (default from FORECAST_DEFAULT_HORIZON)")
	cmd.Flags().StringVar(&sliceBy, "slice-by", "", "Forecast independently per value of this dimension")

	return cmd
}

func newDemoCmd() *cobra.Command {
	var periods int
	var seed int64
	var outFile string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Generate a synthetic bordereau as CSV",
		Long: `Write a deterministic synthetic reinsurance bordereau: quarterly
periods across four lines of business and two regions.

Example: rekpi demo --periods 16 --seed 42 -o demo.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := testkit.DefaultGeneratorConfig()
			if periods > 0 {
				cfg.Periods = periods
			}
			cfg.Seed = seed

			out, closeOut, err := openOutput(outFile)
			if err != nil {
				return err
			}
			defer closeOut()
			return tabular.WriteRawCSV(out, testkit.Generate(cfg))
		},
	}

	cmd.Flags().IntVar(&periods, "periods", 16, "Number of quarterly periods")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Output file (default stdout)")

	return cmd
}

func newReportCmd() *cobra.Command {
	var groupBy []string
	var overrides []string
	var title string
	var outFile string
	var asMarkdown bool

	cmd := &cobra.Command{
		Use:   "report [input-file]",
		Short: "Render an HTML KPI summary from a bordereau",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runPipeline(args[0], groupBy, overrides)
			if err != nil {
				return err
			}

			opts := report.Options{Title: title}
			var content []byte
			if asMarkdown {
				content = []byte(report.Markdown(result, opts))
			} else {
				content = report.HTML(result, opts)
			}

			out, closeOut, err := openOutput(outFile)
			if err != nil {
				return err
			}
			defer closeOut()
			_, err = out.Write(content)
			return err
		},
	}

	cmd.Flags().StringSliceVar(&groupBy, "group-by", nil, "Categorical dimensions to aggregate by")
	cmd.Flags().StringArrayVar(&overrides, "override", nil, "Manual mapping field=column, repeatable")
	cmd.Flags().StringVar(&title, "title", "Technical KPI Report", "Report title")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&asMarkdown, "markdown", false, "Emit markdown instead of HTML")

	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return api.NewServer(cfg, internal.DefaultLogger).Start()
		},
	}
}

func runPipeline(inputFile string, groupBy, overrides []string) (*app.PipelineResult, error) {
	table, err := tabular.NewReader(inputFile).Read()
	if err != nil {
		return nil, err
	}

	opts := app.PipelineOptions{GroupBy: groupBy}
	if len(overrides) > 0 {
		opts.Overrides = schema.Overrides{}
		for _, pair := range overrides {
			field, column, found := strings.Cut(pair, "=")
			if !found {
				return nil, fmt.Errorf("invalid override %q (use field=column)", pair)
			}
			opts.Overrides[schema.Field(strings.TrimSpace(field))] = strings.TrimSpace(column)
		}
	}

	pipeline := app.NewPipeline(schema.Default(), internal.DefaultLogger)
	result, err := pipeline.Run(table, opts)
	if err != nil {
		return nil, err
	}

	for _, c := range result.Collisions {
		fmt.Fprintf(os.Stderr, "warning: %s\n", c)
	}
	return result, nil
}

func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
