package dataprocessing

import (
	"salespulse/pkg/contracts/domain"
)

// Dataset is a cleaned, immutable sequence of sales records.
// Every record has a finite sales amount and a parsed order date, and no two
// source rows that produced records were identical.
type Dataset struct {
	source     string
	records    []domain.SalesRecord
	stats      domain.CleanStats
	hasOrderID bool
}

// NewDataset builds a dataset from records that are already clean. The slice is
// copied. It is meant for callers that assemble records themselves, such as tests.
func NewDataset(source string, records []domain.SalesRecord) *Dataset {
	owned := make([]domain.SalesRecord, len(records))
	copy(owned, records)

	hasOrderID := false
	for _, r := range owned {
		if r.OrderID != "" {
			hasOrderID = true
			break
		}
	}

	return &Dataset{
		source:     source,
		records:    owned,
		hasOrderID: hasOrderID,
		stats: domain.CleanStats{
			RowsRead: len(owned),
			RowsKept: len(owned),
		},
	}
}

// Source returns the name of the input the dataset was loaded from
func (d *Dataset) Source() string {
	return d.source
}

// Len returns the number of records
func (d *Dataset) Len() int {
	return len(d.records)
}

// Records returns a copy of the records in input order
func (d *Dataset) Records() []domain.SalesRecord {
	out := make([]domain.SalesRecord, len(d.records))
	copy(out, d.records)
	return out
}

// Stats returns the counts collected while cleaning
func (d *Dataset) Stats() domain.CleanStats {
	stats := d.stats
	if d.stats.BlankValues != nil {
		stats.BlankValues = make(map[string]int, len(d.stats.BlankValues))
		for k, v := range d.stats.BlankValues {
			stats.BlankValues[k] = v
		}
	}
	return stats
}

// HasOrderID reports whether an order id column was mapped and populated
func (d *Dataset) HasOrderID() bool {
	return d.hasOrderID
}

// amounts returns the sales amounts in record order
func (d *Dataset) amounts() []float64 {
	values := make([]float64, len(d.records))
	for i, r := range d.records {
		values[i] = r.SalesAmount
	}
	return values
}
