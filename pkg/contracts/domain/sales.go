package domain

import (
	"time"
)

// SalesRecord represents one cleaned sales transaction
type SalesRecord struct {
	OrderID     string    `json:"order_id,omitempty" db:"order_id"`
	OrderDate   time.Time `json:"order_date" db:"order_date"`
	Region      string    `json:"region" db:"region"`
	Product     string    `json:"product" db:"product"`
	SalesAmount float64   `json:"sales_amount" db:"sales_amount"`
}

// KPISet holds the headline statistics of a cleaned dataset.
// TotalOrders is the number of cleaned rows. DistinctOrders counts unique
// order identifiers and is only populated when an order id column is mapped.
type KPISet struct {
	TotalSales     float64 `json:"total_sales"`
	AverageSales   float64 `json:"average_sales"`
	MaxSale        float64 `json:"max_sale"`
	MinSale        float64 `json:"min_sale"`
	TotalOrders    int     `json:"total_orders"`
	DistinctOrders int     `json:"distinct_orders,omitempty"`
}

// KPI labels as shown by the console runner and the exported summaries
const (
	KPITotalSales   = "Total Sales"
	KPIAverageSales = "Average Sales"
	KPIMaxSale      = "Max Sale"
	KPIMinSale      = "Min Sale"
	KPITotalOrders  = "Total Orders"
)

// LabeledValue is a KPI label paired with its numeric value
type LabeledValue struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Integer bool    `json:"integer,omitempty"`
}

// Labeled returns the KPIs in display order
func (k KPISet) Labeled() []LabeledValue {
	return []LabeledValue{
		{Label: KPITotalSales, Value: k.TotalSales},
		{Label: KPIAverageSales, Value: k.AverageSales},
		{Label: KPIMaxSale, Value: k.MaxSale},
		{Label: KPIMinSale, Value: k.MinSale},
		{Label: KPITotalOrders, Value: float64(k.TotalOrders), Integer: true},
	}
}

// SeriesPoint is one entry of an ordered key -> total mapping
type SeriesPoint struct {
	Key   string  `json:"key"`
	Total float64 `json:"total"`
}

// Series is an ordered mapping from a group key to total sales.
// Order is significant and is decided by the producer.
type Series []SeriesPoint

// Keys returns the keys in series order
func (s Series) Keys() []string {
	keys := make([]string, len(s))
	for i, p := range s {
		keys[i] = p.Key
	}
	return keys
}

// Values returns the totals in series order
func (s Series) Values() []float64 {
	values := make([]float64, len(s))
	for i, p := range s {
		values[i] = p.Total
	}
	return values
}

// Sum adds up every total in the series
func (s Series) Sum() float64 {
	var sum float64
	for _, p := range s {
		sum += p.Total
	}
	return sum
}

// Get looks up the total for key
func (s Series) Get(key string) (float64, bool) {
	for _, p := range s {
		if p.Key == key {
			return p.Total, true
		}
	}
	return 0, false
}

// CleanStats describes what the cleaning step did to the raw input.
// Only counts are reported; dropped rows are not identified.
type CleanStats struct {
	RowsRead          int            `json:"rows_read"`
	DuplicatesRemoved int            `json:"duplicates_removed"`
	InvalidSales      int            `json:"invalid_sales"`
	InvalidDates      int            `json:"invalid_dates"`
	RowsKept          int            `json:"rows_kept"`
	BlankValues       map[string]int `json:"blank_values,omitempty"`
}

// RowsDropped returns the number of raw rows that did not make it into the dataset
func (s CleanStats) RowsDropped() int {
	return s.RowsRead - s.RowsKept
}

// SalesStatistics is a descriptive summary of the sales amount column
type SalesStatistics struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"q50"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// SalesReport bundles every aggregate view of one dataset
type SalesReport struct {
	ID           string          `json:"id"`
	Source       string          `json:"source"`
	GeneratedAt  time.Time       `json:"generated_at"`
	KPIs         KPISet          `json:"kpis"`
	Regions      Series          `json:"sales_by_region"`
	TopProducts  Series          `json:"top_products"`
	MonthlyTrend Series          `json:"monthly_trend"`
	Statistics   SalesStatistics `json:"statistics"`
	CleanStats   CleanStats      `json:"clean_stats"`
}

// ExportResult describes a written export file
type ExportResult struct {
	ID        string       `json:"id"`
	Format    ReportFormat `json:"format"`
	Path      string       `json:"path"`
	Size      int64        `json:"size"`
	CreatedAt time.Time    `json:"created_at"`
}
