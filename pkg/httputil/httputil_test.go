package httputil

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteJSON(rec, http.StatusCreated, Response{Data: map[string]string{"id": "r-1"}})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"id":"r-1"`)
}

func TestNewListMeta(t *testing.T) {
	meta := NewListMeta(41, 2, 20)

	assert.Equal(t, 41, meta.Total)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 20, meta.PerPage)
	assert.Equal(t, 3, meta.TotalPages)

	exact := NewListMeta(40, 1, 20)
	assert.Equal(t, 2, exact.TotalPages)
}

func TestWriteError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/reviews/abc", nil)

	WriteError(rec, req, apperrors.NotFound("review", "abc"), discardLogger())

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "abc")
}

func TestWriteError_WrappedSentinel(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/reviews", nil)

	WriteError(rec, req, fmt.Errorf("insert: %w", apperrors.ErrConflict), discardLogger())

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "CONFLICT")
}

func TestWriteError_UnknownErrorIs500WithOpaqueBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/reviews", nil)

	WriteError(rec, req, fmt.Errorf("pq: connection reset"), discardLogger())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
	// The cause is logged, never serialized.
	assert.NotContains(t, rec.Body.String(), "connection reset")
}
