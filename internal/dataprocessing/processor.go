package dataprocessing

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"

	"salespulse/pkg/contracts/domain"
)

// Options configures how a source is read and cleaned
type Options struct {
	Mapping     FieldMapping
	Encoding    string
	Delimiter   string
	DateLayouts []string
}

// DefaultOptions reads latin-1 comma separated files with the sample sales mapping
func DefaultOptions() Options {
	layouts := make([]string, len(DefaultDateLayouts))
	copy(layouts, DefaultDateLayouts)
	return Options{
		Mapping:     SampleSalesMapping(),
		Encoding:    EncodingLatin1,
		Delimiter:   ",",
		DateLayouts: layouts,
	}
}

// Pipeline loads raw sales sources and turns them into cleaned datasets.
// A Pipeline holds no state between loads and is safe for concurrent use.
type Pipeline struct {
	opts    Options
	mapping FieldMapping // as configured, for error text
	logger  *slog.Logger
}

// NewPipeline creates a pipeline. Missing option fields fall back to DefaultOptions.
func NewPipeline(opts Options, logger *slog.Logger) *Pipeline {
	defaults := DefaultOptions()
	if opts.Mapping.IsZero() {
		opts.Mapping = defaults.Mapping
	}
	if opts.Encoding == "" {
		opts.Encoding = defaults.Encoding
	}
	if opts.Delimiter == "" {
		opts.Delimiter = defaults.Delimiter
	}
	if len(opts.DateLayouts) == 0 {
		opts.DateLayouts = defaults.DateLayouts
	}
	mapping := opts.Mapping
	opts.Mapping = opts.Mapping.Normalized()

	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		opts:    opts,
		mapping: mapping,
		logger:  logger.With(slog.String("component", "sales_pipeline")),
	}
}

// Options returns the effective options, mapping normalized
func (p *Pipeline) Options() Options {
	return p.opts
}

// LoadFile opens path and cleans it
func (p *Pipeline) LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sales file: %w", err)
	}
	defer f.Close()

	return p.LoadAndClean(filepath.Base(path), f)
}

// LoadAndClean reads a delimited source and returns the cleaned dataset.
//
// Header names are normalized before the required fields are checked; a
// missing field fails with a SchemaError. Exact duplicate rows are collapsed
// to their first occurrence. Rows whose sales amount or order date cannot be
// parsed are dropped and counted in the dataset stats.
func (p *Pipeline) LoadAndClean(source string, r io.Reader) (*Dataset, error) {
	table, err := readTable(r, p.opts)
	if err != nil {
		return nil, err
	}

	cols, err := validateSchema(table.Header, p.mapping)
	if err != nil {
		p.logger.Warn("sales source failed schema validation",
			slog.String("source", source),
			slog.Any("header", table.Header),
			slog.String("error", err.Error()))
		return nil, err
	}

	stats := domain.CleanStats{
		RowsRead:    len(table.Rows),
		BlankValues: make(map[string]int),
	}

	unique := dedupeRows(table.Rows)
	stats.DuplicatesRemoved = len(table.Rows) - len(unique)

	records := make([]domain.SalesRecord, 0, len(unique))
	hasOrderID := false
	var firstParseErr error

	for _, idx := range unique {
		row := table.Rows[idx]
		countBlanks(stats.BlankValues, row, cols)

		amount, err := parseAmount(row[cols.salesCol])
		if err != nil {
			stats.InvalidSales++
			if firstParseErr == nil {
				firstParseErr = &ParseError{Row: table.Lines[idx], Field: FieldSalesAmount, Value: row[cols.salesCol], Err: err}
			}
			continue
		}

		date, err := parseDate(row[cols.dateCol], p.opts.DateLayouts)
		if err != nil {
			stats.InvalidDates++
			if firstParseErr == nil {
				firstParseErr = &ParseError{Row: table.Lines[idx], Field: FieldOrderDate, Value: row[cols.dateCol], Err: err}
			}
			continue
		}

		rec := domain.SalesRecord{
			OrderDate:   date,
			Region:      strings.TrimSpace(row[cols.regionCol]),
			Product:     strings.TrimSpace(row[cols.productCol]),
			SalesAmount: amount,
		}
		if cols.orderCol >= 0 {
			rec.OrderID = strings.TrimSpace(row[cols.orderCol])
			if rec.OrderID != "" {
				hasOrderID = true
			}
		}
		records = append(records, rec)
	}
	stats.RowsKept = len(records)

	if len(stats.BlankValues) == 0 {
		stats.BlankValues = nil
	}

	attrs := []any{
		slog.String("source", source),
		slog.Int("rows_read", stats.RowsRead),
		slog.Int("duplicates_removed", stats.DuplicatesRemoved),
		slog.Int("invalid_sales", stats.InvalidSales),
		slog.Int("invalid_dates", stats.InvalidDates),
		slog.Int("rows_kept", stats.RowsKept),
	}
	var pe *ParseError
	if errors.As(firstParseErr, &pe) {
		attrs = append(attrs, slog.String("first_parse_error", pe.Error()))
	}
	p.logger.Info("sales source cleaned", attrs...)

	return &Dataset{
		source:     source,
		records:    records,
		stats:      stats,
		hasOrderID: hasOrderID,
	}, nil
}

// dedupeRows returns the indices of the first occurrence of every distinct
// row. Rows are fingerprinted with xxhash and compared in full on collision.
func dedupeRows(rows [][]string) []int {
	seen := make(map[uint64][]int, len(rows))
	unique := make([]int, 0, len(rows))

	digest := xxhash.New()
	for i, row := range rows {
		digest.Reset()
		for _, cell := range row {
			_, _ = digest.WriteString(cell)
			_, _ = digest.Write([]byte{0x1f})
		}
		sum := digest.Sum64()

		duplicate := false
		for _, j := range seen[sum] {
			if equalRows(rows[j], row) {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		seen[sum] = append(seen[sum], i)
		unique = append(unique, i)
	}
	return unique
}

func equalRows(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func countBlanks(counts map[string]int, row []string, cols columnIndices) {
	fields := []struct {
		name string
		idx  int
	}{
		{FieldSalesAmount, cols.salesCol},
		{FieldOrderDate, cols.dateCol},
		{FieldRegion, cols.regionCol},
		{FieldProduct, cols.productCol},
		{FieldOrderID, cols.orderCol},
	}
	for _, f := range fields {
		if f.idx >= 0 && strings.TrimSpace(row[f.idx]) == "" {
			counts[f.name]++
		}
	}
}
