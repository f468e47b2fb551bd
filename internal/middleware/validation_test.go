package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "salespulse/internal/errors"
)

type exportRequest struct {
	Format string `json:"format" validate:"required,reportformat"`
	Top    int    `json:"top" validate:"omitempty,min=1,max=1000"`
	Name   string `json:"name" validate:"omitempty,filename"`
}

func TestValidateStruct(t *testing.T) {
	m := NewValidationMiddleware(nil, nil)

	tests := []struct {
		name       string
		req        exportRequest
		wantFields []string
	}{
		{"valid", exportRequest{Format: "xlsx", Top: 5}, nil},
		{"format alias", exportRequest{Format: "excel"}, nil},
		{"missing format", exportRequest{}, []string{"format"}},
		{"unknown format", exportRequest{Format: "pdf"}, []string{"format"}},
		{"top out of range", exportRequest{Format: "csv", Top: 5000}, []string{"top"}},
		{"path in name", exportRequest{Format: "csv", Name: "../etc/passwd"}, []string{"name"}},
		{"several failures", exportRequest{Format: "pdf", Top: -1}, []string{"format", "top"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.ValidateStruct(tt.req)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok)
			fields := make([]string, 0, len(details.Errors))
			for _, e := range details.Errors {
				fields = append(fields, e.Field)
				assert.NotEmpty(t, e.Message)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestValidateStruct_FormatMessage(t *testing.T) {
	err := NewValidationMiddleware(nil, nil).ValidateStruct(exportRequest{Format: "pdf"})

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	details := apiErr.Details.(apierrors.ValidationErrors)
	assert.Equal(t, "format must be one of: csv, xlsx, json, sqlite", details.Errors[0].Message)
}

func TestValidateRequest(t *testing.T) {
	m := NewValidationMiddleware(nil, nil)
	m.maxBodySize = 64

	var seenBody string
	h := m.ValidateRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		seenBody = string(b)
		w.WriteHeader(http.StatusCreated)
	}))

	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
	}{
		{"valid json", http.MethodPost, `{"format":"csv"}`, http.StatusCreated},
		{"invalid json", http.MethodPost, `{"format":`, http.StatusBadRequest},
		{"too large", http.MethodPost, `{"format":"` + strings.Repeat("x", 100) + `"}`, http.StatusRequestEntityTooLarge},
		{"get skips checks", http.MethodGet, "", http.StatusCreated},
		{"empty body", http.MethodPost, "", http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seenBody = ""
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, "/api/sales/exports", body))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusCreated {
				assert.Equal(t, tt.body, seenBody, "body is restored for the handler")
			}
		})
	}
}

func TestContentTypeValidator(t *testing.T) {
	h := ContentTypeValidator("application/json")(http.HandlerFunc(okHandler))

	tests := []struct {
		name        string
		method      string
		contentType string
		wantStatus  int
	}{
		{"json", http.MethodPost, "application/json; charset=utf-8", http.StatusOK},
		{"missing", http.MethodPost, "", http.StatusBadRequest},
		{"form", http.MethodPost, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"delete skips check", http.MethodDelete, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/sales/exports", strings.NewReader("{}"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestQueryParamValidator_ValidateInt(t *testing.T) {
	v := NewQueryParamValidator(nil, nil)

	tests := []struct {
		name       string
		query      string
		want       int
		wantOK     bool
		wantStatus int
	}{
		{"default", "", 5, true, http.StatusOK},
		{"valid", "?n=10", 10, true, http.StatusOK},
		{"not a number", "?n=ten", 0, false, http.StatusBadRequest},
		{"zero", "?n=0", 0, false, http.StatusBadRequest},
		{"too large", "?n=1001", 0, false, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/sales/products"+tt.query, nil)

			got, ok := v.ValidateInt(rec, req, "n", 1, 1000, 5)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if !ok {
				assert.Equal(t, apierrors.TypeValidation, decodeBody(t, rec)["type"])
			}
		})
	}
}

func TestQueryParamValidator_ValidatePositiveInt(t *testing.T) {
	v := NewQueryParamValidator(nil, nil)

	tests := []struct {
		name   string
		query  string
		want   int
		wantOK bool
	}{
		{"default", "", 5, true},
		{"valid", "?n=3", 3, true},
		{"no upper bound", "?n=1001", 1001, true},
		{"zero", "?n=0", 0, false},
		{"negative", "?n=-2", 0, false},
		{"not a number", "?n=ten", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/sales/products"+tt.query, nil)

			got, ok := v.ValidatePositiveInt(rec, req, "n", 5)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			if !ok {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Contains(t, rec.Body.String(), "n must be a positive integer")
			}
		})
	}
}
