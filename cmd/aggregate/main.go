// Command aggregate runs one filter/aggregate/rank pass from the terminal
// and prints the ranked institutional table, or writes it to a CSV file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"enrollscope/internal/analytics"
	"enrollscope/internal/config"
	"enrollscope/internal/dataset"
	"enrollscope/internal/datasource"
	"enrollscope/internal/exporter"
	"enrollscope/internal/infrastructure"
	"enrollscope/internal/services"
	"enrollscope/pkg/contracts/domain"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default()

	var (
		path      = flag.String("dataset", cfg.Dataset.Path, "path to the enrollment CSV")
		yearFrom  = flag.Int("from", 0, "first year of the range (inclusive)")
		yearTo    = flag.Int("to", 0, "last year of the range (inclusive)")
		dimension = flag.String("dimension", string(domain.DimensionProgram), "analysis dimension: program, evaluation_area, knowledge_area")
		metric    = flag.String("metric", string(domain.MetricTotalEnrolled), "metric: doctoral, professional_doctoral, masters, professional_masters, total_enrolled")

		states         = flag.String("states", "", "comma-separated state filter")
		municipalities = flag.String("municipalities", "", "comma-separated municipality filter")
		zones          = flag.String("zones", "", "comma-separated regional zone filter")
		institutions   = flag.String("institutions", "", "comma-separated institution filter")
		statuses       = flag.String("statuses", "", "comma-separated legal status filter")

		out = flag.String("out", "", "write the full ranked table to this CSV file instead of printing; bare file names land in the export directory")
	)
	flag.Parse()

	dim, err := domain.ParseDimension(*dimension)
	if err != nil {
		return err
	}
	met, err := domain.ParseMetric(*metric)
	if err != nil {
		return err
	}

	cfg.Logging.Level = "warn"
	cfg.Logging.Format = "text"
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return err
	}

	source := datasource.New(*path, dataset.NewNormalizer(logger), logger, nil)
	if err := source.Load(); err != nil {
		return err
	}

	svc := services.NewAnalyticsService(source, analytics.NewAggregator(logger), logger, nil)
	ctx := context.Background()

	from, to := *yearFrom, *yearTo
	if from == 0 || to == 0 {
		opts, err := svc.FilterOptions(ctx)
		if err != nil {
			return err
		}
		if from == 0 {
			from = opts.YearMin
		}
		if to == 0 {
			to = opts.YearMax
		}
	}

	spec := domain.FilterSpec{
		YearFrom:       from,
		YearTo:         to,
		States:         splitList(*states),
		Municipalities: splitList(*municipalities),
		RegionalZones:  splitList(*zones),
		Institutions:   splitList(*institutions),
		LegalStatuses:  splitList(*statuses),
		Dimension:      dim,
		Metric:         met,
	}

	result, err := svc.Aggregate(ctx, spec)
	if err != nil {
		return err
	}

	if *out != "" {
		target := *out
		if filepath.Dir(target) == "." {
			target = cfg.ExportPath(target)
		}
		if err := exporter.NewCSVWriter().SaveRankingCSV(target, result.Ranking); err != nil {
			return err
		}
		fmt.Printf("wrote %d rows to %s\n", len(result.Ranking), target)
		return nil
	}

	printResult(result, from, to)
	return nil
}

func printResult(result domain.AggregationResult, from, to int) {
	fmt.Printf("Years %d-%d | CAGR: %.2f%%\n\n", from, to, result.GrowthRate*100)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tINSTITUTION\tVALUE\tSHARE %")
	for _, row := range result.TopRanking {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\n", row.Rank, row.Institution, row.Value, row.MarketShare)
	}
	w.Flush()

	if len(result.Ranking) > len(result.TopRanking) {
		fmt.Printf("\n(%d more institutions; use -out to export the full table)\n",
			len(result.Ranking)-len(result.TopRanking))
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}
