package dataprocessing

import (
	"strings"
)

// Semantic field names used in errors, stats and logs
const (
	FieldSalesAmount = "sales_amount"
	FieldOrderDate   = "order_date"
	FieldRegion      = "region"
	FieldProduct     = "product"
	FieldOrderID     = "order_id"
)

// FieldMapping names the source columns that hold each semantic field.
// Names are matched after normalization, so "  Sales", "SALES" and "sales"
// all refer to the same column. OrderID is optional.
type FieldMapping struct {
	SalesAmount string `yaml:"sales_amount" json:"sales_amount" envconfig:"SALES_AMOUNT"`
	OrderDate   string `yaml:"order_date" json:"order_date" envconfig:"ORDER_DATE"`
	Region      string `yaml:"region" json:"region" envconfig:"REGION"`
	Product     string `yaml:"product" json:"product" envconfig:"PRODUCT"`
	OrderID     string `yaml:"order_id" json:"order_id" envconfig:"ORDER_ID"`
}

// SampleSalesMapping matches the classic sample sales export
// (SALES, ORDERDATE, TERRITORY, PRODUCTLINE, ORDERNUMBER).
func SampleSalesMapping() FieldMapping {
	return FieldMapping{
		SalesAmount: "SALES",
		OrderDate:   "ORDERDATE",
		Region:      "TERRITORY",
		Product:     "PRODUCTLINE",
		OrderID:     "ORDERNUMBER",
	}
}

// SimpleSalesMapping matches the small hand-made datasets
// (Sales, Date, Region, Product) that carry no order id.
func SimpleSalesMapping() FieldMapping {
	return FieldMapping{
		SalesAmount: "Sales",
		OrderDate:   "Date",
		Region:      "Region",
		Product:     "Product",
	}
}

// MappingPreset resolves a preset name. Unknown names return false.
func MappingPreset(name string) (FieldMapping, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sample", "sample_sales", "":
		return SampleSalesMapping(), true
	case "simple":
		return SimpleSalesMapping(), true
	default:
		return FieldMapping{}, false
	}
}

// IsZero reports whether no column has been mapped
func (m FieldMapping) IsZero() bool {
	return m == FieldMapping{}
}

// Normalized returns a copy with every column name normalized
func (m FieldMapping) Normalized() FieldMapping {
	return FieldMapping{
		SalesAmount: NormalizeFieldName(m.SalesAmount),
		OrderDate:   NormalizeFieldName(m.OrderDate),
		Region:      NormalizeFieldName(m.Region),
		Product:     NormalizeFieldName(m.Product),
		OrderID:     NormalizeFieldName(m.OrderID),
	}
}

// required lists the semantic fields that must be present, in report order
func (m FieldMapping) required() []fieldRef {
	return []fieldRef{
		{semantic: FieldSalesAmount, column: m.SalesAmount},
		{semantic: FieldOrderDate, column: m.OrderDate},
		{semantic: FieldRegion, column: m.Region},
		{semantic: FieldProduct, column: m.Product},
	}
}

type fieldRef struct {
	semantic string
	column   string
}

// NormalizeFieldName trims whitespace, zero-width characters and a UTF-8 BOM
// and lowercases the result. Every header and every lookup goes through it.
func NormalizeFieldName(name string) string {
	clean := strings.TrimSpace(name)
	clean = strings.Trim(clean, "\ufeff\u200b\u200c\u200d\u2060")
	clean = strings.Trim(clean, `"`)
	return strings.ToLower(strings.TrimSpace(clean))
}

// columnIndices holds header positions of the mapped fields; -1 means absent
type columnIndices struct {
	salesCol   int
	dateCol    int
	regionCol  int
	productCol int
	orderCol   int
}

// findColumnIndices resolves the mapping against a normalized header. The first
// occurrence wins when a header repeats a name.
func findColumnIndices(header []string, m FieldMapping) columnIndices {
	positions := make(map[string]int, len(header))
	for i, col := range header {
		if _, seen := positions[col]; !seen {
			positions[col] = i
		}
	}

	lookup := func(column string) int {
		if column == "" {
			return -1
		}
		if i, ok := positions[column]; ok {
			return i
		}
		return -1
	}

	return columnIndices{
		salesCol:   lookup(m.SalesAmount),
		dateCol:    lookup(m.OrderDate),
		regionCol:  lookup(m.Region),
		productCol: lookup(m.Product),
		orderCol:   lookup(m.OrderID),
	}
}

// validateSchema returns a SchemaError naming every required field that the
// header does not provide. Lookup goes through the normalized mapping; the
// error names columns as the caller spelled them.
func validateSchema(header []string, m FieldMapping) (columnIndices, error) {
	cols := findColumnIndices(header, m.Normalized())
	found := map[string]int{
		FieldSalesAmount: cols.salesCol,
		FieldOrderDate:   cols.dateCol,
		FieldRegion:      cols.regionCol,
		FieldProduct:     cols.productCol,
	}

	var missing []string
	for _, ref := range m.required() {
		if found[ref.semantic] == -1 {
			name := ref.semantic
			column := strings.TrimSpace(ref.column)
			if column != "" && NormalizeFieldName(column) != ref.semantic {
				name = ref.semantic + " (" + column + ")"
			}
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return cols, &SchemaError{Missing: missing, Header: header}
	}
	return cols, nil
}
