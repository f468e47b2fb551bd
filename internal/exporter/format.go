package exporter

import (
	"fmt"
	"strconv"

	"salespulse/pkg/contracts/domain"
)

// Summary sections, in file order
const (
	SectionKPI        = "kpi"
	SectionRegion     = "region"
	SectionProduct    = "product"
	SectionMonth      = "month"
	SectionStatistics = "statistics"
	SectionCleaning   = "cleaning"
)

var summaryHeaders = []string{"section", "key", "value"}

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// summaryRows flattens a report into section, key, value rows
func summaryRows(report *domain.SalesReport) [][]string {
	var rows [][]string

	for _, kv := range report.KPIs.Labeled() {
		rows = append(rows, []string{SectionKPI, kv.Label, formatValue(kv)})
	}

	appendSeries := func(section string, s domain.Series) {
		for _, p := range s {
			rows = append(rows, []string{section, p.Key, formatFloat(p.Total)})
		}
	}
	appendSeries(SectionRegion, report.Regions)
	appendSeries(SectionProduct, report.TopProducts)
	appendSeries(SectionMonth, report.MonthlyTrend)

	for _, kv := range statisticsRows(report.Statistics) {
		rows = append(rows, []string{SectionStatistics, kv.Label, formatValue(kv)})
	}
	for _, kv := range cleaningRows(report.CleanStats) {
		rows = append(rows, []string{SectionCleaning, kv.Label, formatValue(kv)})
	}

	return rows
}

func formatValue(kv domain.LabeledValue) string {
	if kv.Integer {
		return formatInt(int(kv.Value))
	}
	return formatFloat(kv.Value)
}

func statisticsRows(s domain.SalesStatistics) []domain.LabeledValue {
	return []domain.LabeledValue{
		{Label: "count", Value: float64(s.Count), Integer: true},
		{Label: "mean", Value: s.Mean},
		{Label: "std", Value: s.StdDev},
		{Label: "min", Value: s.Min},
		{Label: "25%", Value: s.Q25},
		{Label: "50%", Value: s.Median},
		{Label: "75%", Value: s.Q75},
		{Label: "max", Value: s.Max},
	}
}

func cleaningRows(s domain.CleanStats) []domain.LabeledValue {
	return []domain.LabeledValue{
		{Label: "rows_read", Value: float64(s.RowsRead), Integer: true},
		{Label: "duplicates_removed", Value: float64(s.DuplicatesRemoved), Integer: true},
		{Label: "invalid_sales", Value: float64(s.InvalidSales), Integer: true},
		{Label: "invalid_dates", Value: float64(s.InvalidDates), Integer: true},
		{Label: "rows_kept", Value: float64(s.RowsKept), Integer: true},
	}
}
