package dataprocessing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFieldName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"SALES", "sales"},
		{"  Sales ", "sales"},
		{"\ufeffORDERDATE", "orderdate"},
		{"\"Region\"", "region"},
		{"Product\u200b", "product"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeFieldName(tt.input))
		})
	}
}

func TestMappingPreset(t *testing.T) {
	tests := []struct {
		name   string
		want   FieldMapping
		wantOK bool
	}{
		{name: "sample", want: SampleSalesMapping(), wantOK: true},
		{name: "", want: SampleSalesMapping(), wantOK: true},
		{name: " SIMPLE ", want: SimpleSalesMapping(), wantOK: true},
		{name: "other", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MappingPreset(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateSchema(t *testing.T) {
	header := []string{"ordernumber", "sales", "orderdate", "territory", "productline", "sales"}
	mapping := SampleSalesMapping()

	cols, err := validateSchema(header, mapping)
	require.NoError(t, err)
	assert.Equal(t, columnIndices{salesCol: 1, dateCol: 2, regionCol: 3, productCol: 4, orderCol: 0}, cols)

	_, err = validateSchema([]string{"sales", "orderdate"}, mapping)
	require.Error(t, err)
	assert.Equal(t, "required fields not found: region (TERRITORY), product (PRODUCTLINE)", err.Error())
}

func TestValidateSchema_OptionalOrderID(t *testing.T) {
	cols, err := validateSchema([]string{"sales", "date", "region", "product"}, SampleSalesMapping().Normalized())
	require.Error(t, err)

	cols, err = validateSchema([]string{"sales", "date", "region", "product"}, SimpleSalesMapping().Normalized())
	require.NoError(t, err)
	assert.Equal(t, -1, cols.orderCol)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{input: "100", want: 100},
		{input: " 2871.00 ", want: 2871},
		{input: "1,250.50", want: 1250.5},
		{input: "$99.99", want: 99.99},
		{input: "-5", want: -5},
		{input: "", wantErr: true},
		{input: "bad", wantErr: true},
		{input: "NaN", wantErr: true},
		{input: "Inf", wantErr: true},
		{input: "12,345,678", want: 12345678},
		{input: "-$1,000.25", want: -1000.25},
		{input: "1,50", wantErr: true},
		{input: "1,5", wantErr: true},
		{input: "12,34,567", wantErr: true},
		{input: ",100", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{input: "2024-01-15", want: date(2024, 1, 15)},
		{input: "2/24/2003 0:00", want: date(2003, 2, 24)},
		{input: "12/1/2004 13:45", want: date(2004, 12, 1)},
		{input: "3/5/2024", want: date(2024, 3, 5)},
		{input: "2024-06-30 23:59:59", want: date(2024, 6, 30)},
		{input: "2024-06-30T23:59:59Z", want: date(2024, 6, 30)},
		{input: "2024/07/04", want: date(2024, 7, 4)},
		{input: "2024-02-30", wantErr: true},
		{input: "not a date", wantErr: true},
		{input: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseDate(tt.input, DefaultDateLayouts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.33, round2(1.0/3))
	assert.Equal(t, 2.5, round2(2.499999))
	assert.Equal(t, -1.24, round2(-1.235001))
	assert.True(t, math.IsNaN(round2(math.NaN())))
}
