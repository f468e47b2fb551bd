package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	cause := errors.New("header row missing")

	tests := []struct {
		name    string
		err     *AppError
		want    string
		errType ErrorType
	}{
		{"with cause", NewSchemaError("sales.csv", cause), "[SCHEMA] source sales.csv does not match the field mapping: header row missing", ErrTypeSchema},
		{"without cause", NewEmptyDatasetError("calculate kpis", nil), "[EMPTY_DATASET] no records available for calculate kpis", ErrTypeEmptyDataset},
		{"parsing", NewParsingError("sales source is not valid delimited text", nil), "[PARSING] sales source is not valid delimited text", ErrTypeParsing},
		{"invalid argument", NewInvalidArgumentError("top", nil), "[INVALID_ARGUMENT] invalid top", ErrTypeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.Equal(t, tt.errType, tt.err.Type)
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageError("write export", cause)

	assert.ErrorIs(t, err, cause)

	var appErr *AppError
	require.ErrorAs(t, error(err), &appErr)
	assert.Equal(t, ErrTypeStorage, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeConfig, Message: "bad encoding"}
	err.WithContext("encoding", "ebcdic").WithContext("source", "sales.csv")

	assert.Equal(t, "ebcdic", err.Context["encoding"])
	assert.Equal(t, "sales.csv", err.Context["source"])
	assert.Equal(t, "n", NewInvalidArgumentError("n", nil).Context["argument"])
}

func TestAPIError(t *testing.T) {
	err := NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", ValidationError{Field: "n", Message: "must be positive"})
	assert.Equal(t, "Request validation failed", err.Error())

	data, jsonErr := json.Marshal(err)
	require.NoError(t, jsonErr)
	assert.JSONEq(t, `{"status_code":400,"error_code":"VALIDATION_FAILED","message":"Request validation failed","details":{"field":"n","message":"must be positive"}}`, string(data))
}

func TestAPIError_Render(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/sales/exports", nil)

	require.NoError(t, render.Render(rec, req, ErrNoExports))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, CodeNoExports, body.ErrorCode)
	assert.Nil(t, body.Details)
}

func TestInvalidRequestWithError(t *testing.T) {
	err := InvalidRequestWithError(errors.New("unexpected EOF"))
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, CodeInvalidRequest, err.ErrorCode)
	assert.Equal(t, "unexpected EOF", err.Details)
}

func TestNewValidationErrors(t *testing.T) {
	err := NewValidationErrors([]ValidationError{
		{Field: "format", Message: "is required"},
		{Field: "top", Message: "must be at least 1"},
	})

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	details, ok := err.Details.(ValidationErrors)
	require.True(t, ok)
	assert.Len(t, details.Errors, 2)
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusUnprocessableEntity, TypeSchema, "Schema Mismatch", "required fields not found: region", "/api/sales/kpis").
		WithExtension("missing_fields", []string{"region"}).
		WithExtension("status", "overridden")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, TypeSchema, body["type"])
	assert.Equal(t, float64(http.StatusUnprocessableEntity), body["status"], "standard members win over extensions")
	assert.Equal(t, []interface{}{"region"}, body["missing_fields"])

	bare, err := json.Marshal(&ProblemDetails{Type: TypeInternal, Title: "x", Status: 500})
	require.NoError(t, err)
	assert.NotContains(t, string(bare), "detail")
	assert.NotContains(t, string(bare), "instance")
}
