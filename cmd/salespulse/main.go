package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"salespulse/internal/config"
	"salespulse/internal/files"
	"salespulse/internal/infrastructure"
	"salespulse/internal/services"
	"salespulse/pkg/contracts/domain"
)

// options holds the command line flags
type options struct {
	configFile string
	baseDir    string
	source     string
	preset     string
	encoding   string
	delimiter  string
	top        int
	rows       int
	exports    string
	list       bool
	verbose    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "salespulse: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("salespulse", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.configFile, "config", "", "YAML config file (defaults to config.yaml lookup)")
	fs.StringVar(&opts.baseDir, "base", "", "base directory for data, reports and logs (defaults to the executable directory)")
	fs.StringVar(&opts.source, "source", "", "sales source file, absolute or relative to the data directory")
	fs.StringVar(&opts.preset, "preset", "", "column mapping preset: sample or simple")
	fs.StringVar(&opts.encoding, "encoding", "", "source encoding: latin1, cp1252 or utf-8")
	fs.StringVar(&opts.delimiter, "delimiter", "", "field delimiter")
	fs.IntVar(&opts.top, "top", 0, "number of top products (defaults to the configured top_n)")
	fs.IntVar(&opts.rows, "rows", 0, "number of preview rows (defaults to the configured preview_rows)")
	fs.StringVar(&opts.exports, "export", "", "comma separated export formats: csv, xlsx, json, sqlite")
	fs.BoolVar(&opts.list, "list", false, "list the sources next to the configured one and exit")
	fs.BoolVar(&opts.verbose, "v", false, "log pipeline activity to stderr")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 && opts.source == "" {
		opts.source = fs.Arg(0)
	}
	return opts, nil
}

// loadConfig applies the flags over the loaded configuration
func loadConfig(opts *options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.LoadFile(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if opts.baseDir != "" {
		cfg.Paths.BaseDir = opts.baseDir
	}
	if opts.source != "" {
		cfg.Pipeline.SourceFile = opts.source
	}
	if opts.preset != "" {
		cfg.Pipeline.MappingPreset = opts.preset
	}
	if opts.encoding != "" {
		cfg.Pipeline.Encoding = opts.encoding
	}
	if opts.delimiter != "" {
		cfg.Pipeline.Delimiter = opts.delimiter
	}
	if opts.top < 0 {
		return nil, fmt.Errorf("-top must be positive")
	}
	if opts.top > 0 {
		cfg.Pipeline.TopN = opts.top
	}
	if opts.rows < 0 || opts.rows > config.MaxPreviewRows {
		return nil, fmt.Errorf("-rows must be between 1 and %d", config.MaxPreviewRows)
	}
	if opts.rows > 0 {
		cfg.Pipeline.PreviewRows = opts.rows
	}

	// console output belongs to the report; logs go to stderr
	cfg.Logging.Output = "console"
	cfg.Logging.Format = "text"
	cfg.Logging.Level = "warn"
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func parseExportFormats(value string) ([]domain.ReportFormat, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	var formats []domain.ReportFormat
	for _, name := range strings.Split(value, ",") {
		format, err := domain.ParseReportFormat(name)
		if err != nil {
			return nil, err
		}
		formats = append(formats, format)
	}
	return formats, nil
}

// run executes the five pipeline steps against the configured source and
// prints each result
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	formats, err := parseExportFormats(opts.exports)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, closer, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer closer.Close()

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return err
	}
	if len(formats) > 0 {
		if err := paths.EnsureDirectories(); err != nil {
			return err
		}
	}

	svc, err := services.NewSalesService(cfg.Pipeline, paths, nil, logger)
	if err != nil {
		return err
	}

	p := &printer{w: stdout}

	if opts.list {
		sources, err := svc.Sources(ctx)
		if err != nil {
			return err
		}
		p.sources(sources)
		return p.err
	}

	p.step(1, "Load and clean")
	stats, err := svc.Stats(ctx)
	if err != nil {
		return err
	}
	p.cleanStats(svc.Source(), stats)

	preview, err := svc.Preview(ctx, 0)
	if err != nil {
		return err
	}
	p.preview(preview)

	p.step(2, "Key performance indicators")
	kpis, err := svc.KPIs(ctx)
	if err != nil {
		return err
	}
	p.labeled(kpis.Labeled())

	describe, err := svc.Describe(ctx)
	if err != nil {
		return err
	}
	p.describe(describe)

	p.step(3, "Sales by region")
	regions, err := svc.Regions(ctx)
	if err != nil {
		return err
	}
	p.series("Region", regions)

	p.step(4, fmt.Sprintf("Top %d products", cfg.Pipeline.TopN))
	products, err := svc.Products(ctx, cfg.Pipeline.TopN)
	if err != nil {
		return err
	}
	p.series("Product", products)

	p.step(5, "Monthly sales trend")
	trend, err := svc.Trend(ctx)
	if err != nil {
		return err
	}
	p.series("Month", trend)

	if len(formats) > 0 {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Exports")
		for _, format := range formats {
			result, err := svc.Export(ctx, format, 0, "")
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "  %-7s %s (%s)\n", format, result.Path, humanize.Bytes(uint64(result.Size)))
		}
	}

	logger.Debug("pipeline run complete",
		slog.String("source", svc.Source()),
		slog.Int("records", stats.RowsKept))
	return p.err
}

// printer writes the step results; the first write error sticks
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) step(n int, title string) {
	if n > 1 {
		p.printf("\n")
	}
	p.printf("Step %d: %s\n", n, title)
	p.printf("%s\n", strings.Repeat("-", len(title)+8))
}

func (p *printer) table(fn func(tw *tabwriter.Writer)) {
	if p.err != nil {
		return
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fn(tw)
	p.err = tw.Flush()
}

func money(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

func (p *printer) cleanStats(source string, s domain.CleanStats) {
	p.table(func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "  Source\t%s\n", source)
		fmt.Fprintf(tw, "  Rows read\t%s\n", humanize.Comma(int64(s.RowsRead)))
		fmt.Fprintf(tw, "  Duplicates removed\t%s\n", humanize.Comma(int64(s.DuplicatesRemoved)))
		fmt.Fprintf(tw, "  Invalid sales\t%s\n", humanize.Comma(int64(s.InvalidSales)))
		fmt.Fprintf(tw, "  Invalid dates\t%s\n", humanize.Comma(int64(s.InvalidDates)))
		fmt.Fprintf(tw, "  Rows kept\t%s\n", humanize.Comma(int64(s.RowsKept)))
	})
}

func (p *printer) preview(preview *services.PreviewResult) {
	if len(preview.Rows) == 0 {
		return
	}
	p.printf("\n  First %d of %s records\n", len(preview.Rows), humanize.Comma(int64(preview.Total)))
	p.table(func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "  %s\n", strings.Join(preview.Columns, "\t"))
		for _, row := range preview.Rows {
			fmt.Fprintf(tw, "  %s\n", strings.Join(row, "\t"))
		}
	})
}

func (p *printer) labeled(values []domain.LabeledValue) {
	p.table(func(tw *tabwriter.Writer) {
		for _, kv := range values {
			value := money(kv.Value)
			if kv.Integer {
				value = humanize.Comma(int64(kv.Value))
			}
			fmt.Fprintf(tw, "  %s\t%s\n", kv.Label, value)
		}
	})
}

func (p *printer) describe(s domain.SalesStatistics) {
	p.printf("\n  Sales amount distribution\n")
	p.table(func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "  count\tmean\tstd\tmin\t25%%\t50%%\t75%%\tmax\n")
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Count, money(s.Mean), money(s.StdDev), money(s.Min),
			money(s.Q25), money(s.Median), money(s.Q75), money(s.Max))
	})
}

func (p *printer) sources(sources []files.SourceFile) {
	if len(sources) == 0 {
		p.printf("No sales sources found\n")
		return
	}
	p.table(func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "  \tName\tSize\tModified\n")
		for _, src := range sources {
			marker := ""
			if src.Active {
				marker = "*"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", marker, src.Name,
				humanize.Bytes(uint64(src.Size)), humanize.Time(src.ModTime))
		}
	})
}

func (p *printer) series(keyHeader string, s domain.Series) {
	if len(s) == 0 {
		p.printf("  (no records)\n")
		return
	}
	p.table(func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "  %s\tTotal Sales\n", keyHeader)
		for _, point := range s {
			fmt.Fprintf(tw, "  %s\t%s\n", point.Key, money(point.Total))
		}
	})
}
