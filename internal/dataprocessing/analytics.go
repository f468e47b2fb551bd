package dataprocessing

import (
	"sort"

	"salespulse/pkg/contracts/domain"
)

// DefaultTopN is the number of products TopProducts returns when asked for the default
const DefaultTopN = 5

// UnknownGroup is the group key for records with a blank region or product
const UnknownGroup = "Unknown"

// MonthKeyLayout formats the year-month key of the monthly trend
const MonthKeyLayout = "2006-01"

// CalculateKPIs computes the headline statistics. Total, average, max and min
// are rounded to two decimals. TotalOrders is the number of cleaned rows;
// DistinctOrders counts unique order ids when the source maps one.
func CalculateKPIs(ds *Dataset) (domain.KPISet, error) {
	if ds == nil || ds.Len() == 0 {
		return domain.KPISet{}, &EmptyDatasetError{Op: "calculate kpis"}
	}

	var sum float64
	maxSale := ds.records[0].SalesAmount
	minSale := ds.records[0].SalesAmount
	for _, r := range ds.records {
		sum += r.SalesAmount
		if r.SalesAmount > maxSale {
			maxSale = r.SalesAmount
		}
		if r.SalesAmount < minSale {
			minSale = r.SalesAmount
		}
	}

	kpis := domain.KPISet{
		TotalSales:   round2(sum),
		AverageSales: round2(sum / float64(ds.Len())),
		MaxSale:      round2(maxSale),
		MinSale:      round2(minSale),
		TotalOrders:  ds.Len(),
	}

	if ds.hasOrderID {
		distinct := make(map[string]struct{})
		for _, r := range ds.records {
			if r.OrderID != "" {
				distinct[r.OrderID] = struct{}{}
			}
		}
		kpis.DistinctOrders = len(distinct)
	}

	return kpis, nil
}

// SalesByRegion sums sales per region, largest total first. Regions with
// equal totals keep the order in which they were first seen.
func SalesByRegion(ds *Dataset) domain.Series {
	return groupAndRank(ds, func(r domain.SalesRecord) string { return r.Region })
}

// TopProducts returns the n best selling products. n must be positive; when
// fewer than n products exist all of them are returned.
func TopProducts(ds *Dataset, n int) (domain.Series, error) {
	if n <= 0 {
		return nil, &InvalidArgumentError{Name: "n", Value: n, Reason: "must be greater than zero"}
	}

	ranked := groupAndRank(ds, func(r domain.SalesRecord) string { return r.Product })
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// MonthlySalesTrend sums sales per calendar month in ascending month order
func MonthlySalesTrend(ds *Dataset) domain.Series {
	totals := make(map[string]float64)
	if ds != nil {
		for _, r := range ds.records {
			totals[r.OrderDate.Format(MonthKeyLayout)] += r.SalesAmount
		}
	}

	months := make([]string, 0, len(totals))
	for month := range totals {
		months = append(months, month)
	}
	// zero padded keys sort chronologically as strings
	sort.Strings(months)

	trend := make(domain.Series, len(months))
	for i, month := range months {
		trend[i] = domain.SeriesPoint{Key: month, Total: round2(totals[month])}
	}
	return trend
}

// groupAndRank sums sales by key and orders groups by total descending,
// breaking ties by first appearance
func groupAndRank(ds *Dataset, key func(domain.SalesRecord) string) domain.Series {
	if ds == nil {
		return domain.Series{}
	}

	index := make(map[string]int)
	groups := domain.Series{}
	for _, r := range ds.records {
		k := key(r)
		if k == "" {
			k = UnknownGroup
		}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, domain.SeriesPoint{Key: k})
		}
		groups[i].Total += r.SalesAmount
	}

	for i := range groups {
		groups[i].Total = round2(groups[i].Total)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Total > groups[j].Total
	})
	return groups
}
