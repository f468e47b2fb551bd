package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"salespulse/internal/cache"
	"salespulse/internal/dataprocessing"
	apierrors "salespulse/internal/errors"
	"salespulse/internal/files"
	"salespulse/internal/services"
	"salespulse/internal/shared/testutil"
	"salespulse/pkg/contracts/domain"
)

// MockSalesService is a mock implementation of SalesServiceInterface
type MockSalesService struct {
	mock.Mock
}

func (m *MockSalesService) Report(ctx context.Context, top int) (*domain.SalesReport, error) {
	args := m.Called(top)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalesReport), args.Error(1)
}

func (m *MockSalesService) KPIs(ctx context.Context) (domain.KPISet, error) {
	args := m.Called()
	return args.Get(0).(domain.KPISet), args.Error(1)
}

func (m *MockSalesService) Regions(ctx context.Context) (domain.Series, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Series), args.Error(1)
}

func (m *MockSalesService) Products(ctx context.Context, n int) (domain.Series, error) {
	args := m.Called(n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Series), args.Error(1)
}

func (m *MockSalesService) Trend(ctx context.Context) (domain.Series, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Series), args.Error(1)
}

func (m *MockSalesService) Describe(ctx context.Context) (domain.SalesStatistics, error) {
	args := m.Called()
	return args.Get(0).(domain.SalesStatistics), args.Error(1)
}

func (m *MockSalesService) Stats(ctx context.Context) (domain.CleanStats, error) {
	args := m.Called()
	return args.Get(0).(domain.CleanStats), args.Error(1)
}

func (m *MockSalesService) Preview(ctx context.Context, rows int) (*services.PreviewResult, error) {
	args := m.Called(rows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PreviewResult), args.Error(1)
}

func (m *MockSalesService) Export(ctx context.Context, format domain.ReportFormat, top int, name string) (*domain.ExportResult, error) {
	args := m.Called(format, top, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExportResult), args.Error(1)
}

func (m *MockSalesService) ListExports(ctx context.Context) ([]services.ExportFile, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.ExportFile), args.Error(1)
}

func (m *MockSalesService) Formats() []domain.ReportFormat {
	args := m.Called()
	return args.Get(0).([]domain.ReportFormat)
}

func (m *MockSalesService) Sources(ctx context.Context) ([]files.SourceFile, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]files.SourceFile), args.Error(1)
}

func (m *MockSalesService) InvalidateCache() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockSalesService) CacheStats() cache.Stats {
	args := m.Called()
	return args.Get(0).(cache.Stats)
}

func newTestRouter(t *testing.T, svc *MockSalesService) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	handler := NewSalesHandler(svc, 5, logger, errorHandler)

	r := chi.NewRouter()
	r.Mount("/api/sales", handler.Routes())
	return r
}

func serve(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestSalesHandler_GetKPIs(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockSalesService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "successful kpis",
			setupMock: func(m *MockSalesService) {
				m.On("KPIs").Return(domain.KPISet{TotalSales: 150, AverageSales: 75, TotalOrders: 2}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"total_sales":150`,
		},
		{
			name: "schema mismatch",
			setupMock: func(m *MockSalesService) {
				err := apierrors.NewSchemaError("sales.csv", &dataprocessing.SchemaError{Missing: []string{"sales_amount"}})
				m.On("KPIs").Return(domain.KPISet{}, err)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"missing_fields":["sales_amount"]`,
		},
		{
			name: "empty dataset",
			setupMock: func(m *MockSalesService) {
				err := apierrors.NewEmptyDatasetError("kpis", &dataprocessing.EmptyDatasetError{Op: "kpis"})
				m.On("KPIs").Return(domain.KPISet{}, err)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"No Sales Records"`,
		},
		{
			name: "internal error",
			setupMock: func(m *MockSalesService) {
				m.On("KPIs").Return(domain.KPISet{}, errors.New("disk on fire"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"Internal Server Error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockSalesService)
			tt.setupMock(mockService)

			rec := serve(t, newTestRouter(t, mockService), http.MethodGet, "/api/sales/kpis", "")

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}

func TestSalesHandler_SeriesEndpoints(t *testing.T) {
	series := domain.Series{{Key: "East", Total: 150}, {Key: "West", Total: 20}}

	tests := []struct {
		name   string
		target string
		setup  func(*MockSalesService)
	}{
		{"regions", "/api/sales/regions", func(m *MockSalesService) { m.On("Regions").Return(series, nil) }},
		{"trend", "/api/sales/trend", func(m *MockSalesService) { m.On("Trend").Return(series, nil) }},
		{"products default n", "/api/sales/products", func(m *MockSalesService) { m.On("Products", 5).Return(series, nil) }},
		{"products explicit n", "/api/sales/products?n=2", func(m *MockSalesService) { m.On("Products", 2).Return(series, nil) }},
		{"products n beyond catalog", "/api/sales/products?n=1001", func(m *MockSalesService) { m.On("Products", 1001).Return(series, nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockSalesService)
			tt.setup(mockService)

			rec := serve(t, newTestRouter(t, mockService), http.MethodGet, tt.target, "")

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			body := decodeBody(t, rec)
			assert.Equal(t, "success", body["status"])
			assert.Equal(t, float64(2), body["count"])
			data := body["data"].([]interface{})
			assert.Equal(t, "East", data[0].(map[string]interface{})["key"])
			mockService.AssertExpectations(t)
		})
	}
}

func TestSalesHandler_EmptySeriesIsArray(t *testing.T) {
	mockService := new(MockSalesService)
	mockService.On("Regions").Return(nil, nil)

	rec := serve(t, newTestRouter(t, mockService), http.MethodGet, "/api/sales/regions", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestSalesHandler_QueryValidation(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"products zero", "/api/sales/products?n=0"},
		{"products negative", "/api/sales/products?n=-3"},
		{"products not a number", "/api/sales/products?n=ten"},
		{"report zero top", "/api/sales/report?top=0"},
		{"preview too many rows", "/api/sales/preview?rows=501"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockSalesService)

			rec := serve(t, newTestRouter(t, mockService), http.MethodGet, tt.target, "")

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"VALIDATION_FAILED"`)
			mockService.AssertNotCalled(t, "Products", mock.Anything)
			mockService.AssertNotCalled(t, "Report", mock.Anything)
			mockService.AssertNotCalled(t, "Preview", mock.Anything)
		})
	}
}

func TestSalesHandler_GetReport(t *testing.T) {
	mockService := new(MockSalesService)
	report := &domain.SalesReport{ID: "r-1", Source: "sales.csv", KPIs: domain.KPISet{TotalSales: 10}}
	mockService.On("Report", 0).Return(report, nil)
	mockService.On("Report", 3).Return(report, nil)

	router := newTestRouter(t, mockService)

	rec := serve(t, router, http.MethodGet, "/api/sales/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"r-1"`)

	rec = serve(t, router, http.MethodGet, "/api/sales/report?top=3", "")
	require.Equal(t, http.StatusOK, rec.Code)

	mockService.AssertExpectations(t)
}

func TestSalesHandler_GetPreview(t *testing.T) {
	mockService := new(MockSalesService)
	mockService.On("Preview", 2).Return(&services.PreviewResult{
		Columns: []string{"order_id", "sales_amount"},
		Rows:    [][]string{{"1", "10.00"}, {"2", "20.00"}},
		Total:   7,
	}, nil)

	rec := serve(t, newTestRouter(t, mockService), http.MethodGet, "/api/sales/preview?rows=2", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["count"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(7), data["total"])
}

func TestSalesHandler_DescribeAndStats(t *testing.T) {
	mockService := new(MockSalesService)
	mockService.On("Describe").Return(domain.SalesStatistics{Count: 4, Mean: 12.5}, nil)
	mockService.On("Stats").Return(domain.CleanStats{RowsRead: 10, RowsKept: 8}, nil)

	router := newTestRouter(t, mockService)

	rec := serve(t, router, http.MethodGet, "/api/sales/describe", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":4`)

	rec = serve(t, router, http.MethodGet, "/api/sales/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"success"`)

	mockService.AssertExpectations(t)
}

func TestSalesHandler_CreateExport(t *testing.T) {
	result := &domain.ExportResult{
		ID:        "e-1",
		Format:    domain.ReportFormatExcel,
		Path:      "/reports/q1.xlsx",
		Size:      2048,
		CreatedAt: time.Now(),
	}

	tests := []struct {
		name           string
		body           string
		contentType    string
		setupMock      func(*MockSalesService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "excel alias",
			body: `{"format":"excel","top":10,"name":"q1"}`,
			setupMock: func(m *MockSalesService) {
				m.On("Export", domain.ReportFormatExcel, 10, "q1").Return(result, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"size_human":"2.0 kB"`,
		},
		{
			name:           "missing format",
			body:           `{"top":10}`,
			setupMock:      func(m *MockSalesService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"field":"format"`,
		},
		{
			name:           "unknown format",
			body:           `{"format":"pdf"}`,
			setupMock:      func(m *MockSalesService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `format must be one of: csv, xlsx, json, sqlite`,
		},
		{
			name:           "fractional top",
			body:           `{"format":"csv","top":0.5}`,
			setupMock:      func(m *MockSalesService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"INVALID_REQUEST"`,
		},
		{
			name:           "path in name",
			body:           `{"format":"csv","name":"../etc/passwd"}`,
			setupMock:      func(m *MockSalesService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"field":"name"`,
		},
		{
			name:           "invalid json",
			body:           `{"format":`,
			setupMock:      func(m *MockSalesService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"INVALID_JSON"`,
		},
		{
			name:           "wrong content type",
			body:           `format=csv`,
			contentType:    "application/x-www-form-urlencoded",
			setupMock:      func(m *MockSalesService) {},
			expectedStatus: http.StatusUnsupportedMediaType,
		},
		{
			name: "export failure",
			body: `{"format":"csv"}`,
			setupMock: func(m *MockSalesService) {
				m.On("Export", domain.ReportFormatCSV, 0, "").
					Return(nil, apierrors.NewStorageError("failed to write csv export", errors.New("disk full")))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error_type":"STORAGE"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockSalesService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/sales/exports", strings.NewReader(tt.body))
			contentType := tt.contentType
			if contentType == "" {
				contentType = "application/json"
			}
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			newTestRouter(t, mockService).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.expectedBody != "" {
				assert.Contains(t, rec.Body.String(), tt.expectedBody)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestSalesHandler_ListExports(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockSalesService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "exports found",
			setupMock: func(m *MockSalesService) {
				m.On("ListExports").Return([]services.ExportFile{
					{Name: "sales_summary.csv", Format: domain.ReportFormatCSV, Size: 120},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"count":1`,
		},
		{
			name: "no exports",
			setupMock: func(m *MockSalesService) {
				m.On("ListExports").Return(nil, services.ErrNoExportsFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"NO_EXPORTS_FOUND"`,
		},
		{
			name: "read failure",
			setupMock: func(m *MockSalesService) {
				m.On("ListExports").Return(nil, fmt.Errorf("permission denied"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"Internal Server Error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockSalesService)
			tt.setupMock(mockService)

			rec := serve(t, newTestRouter(t, mockService), http.MethodGet, "/api/sales/exports", "")

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}

func TestSalesHandler_Formats(t *testing.T) {
	mockService := new(MockSalesService)
	mockService.On("Formats").Return(domain.ReportFormats)

	rec := serve(t, newTestRouter(t, mockService), http.MethodGet, "/api/sales/formats", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":["csv","xlsx","json","sqlite"]`)
}

func TestSalesHandler_Sources(t *testing.T) {
	modified := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		sources    []files.SourceFile
		err        error
		wantStatus int
		wantCount  float64
	}{
		{
			name: "lists sources",
			sources: []files.SourceFile{
				{Name: "sales.csv", Path: "/data/sales.csv", Size: 2048, ModTime: modified, Active: true},
				{Name: "older.csv", Path: "/data/older.csv", Size: 10, ModTime: modified.Add(-time.Hour)},
			},
			wantStatus: http.StatusOK,
			wantCount:  2,
		},
		{
			name:       "empty directory",
			sources:    []files.SourceFile{},
			wantStatus: http.StatusOK,
			wantCount:  0,
		},
		{
			name:       "storage failure",
			err:        apierrors.NewStorageError("failed to read data directory", errors.New("permission denied")),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockSalesService)
			if tt.err != nil {
				mockService.On("Sources").Return(nil, tt.err)
			} else {
				mockService.On("Sources").Return(tt.sources, nil)
			}

			rec := serve(t, newTestRouter(t, mockService), http.MethodGet, "/api/sales/sources", "")

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.err == nil {
				body := decodeBody(t, rec)
				assert.Equal(t, tt.wantCount, body["count"])
				assert.NotContains(t, rec.Body.String(), "/data/", "absolute paths must not leak")
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestSalesHandler_InvalidateCache(t *testing.T) {
	mockService := new(MockSalesService)
	mockService.On("InvalidateCache").Return(true)
	mockService.On("CacheStats").Return(cache.Stats{Loads: 3, Hits: 9})

	rec := serve(t, newTestRouter(t, mockService), http.MethodDelete, "/api/sales/cache", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, true, data["invalidated"])
	assert.Equal(t, float64(9), data["cache"].(map[string]interface{})["hits"])
	mockService.AssertExpectations(t)
}
