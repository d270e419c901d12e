package errors

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemDetail_MarshalFlattensExtensions(t *testing.T) {
	problem := NewValidationProblem(map[string]string{"heightD": "heightD is required"}).
		WithDetail("measurements are incomplete").
		WithExtension("status", 999)

	raw, err := json.Marshal(problem)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))

	assert.Equal(t, TypeValidation, body["type"])
	assert.Equal(t, float64(http.StatusBadRequest), body["status"])
	assert.Equal(t, "measurements are incomplete", body["detail"])
	assert.Equal(t, map[string]any{"heightD": "heightD is required"}, body["fields"])
	assert.NotContains(t, body, "instance")
}

func TestProblemDetail_WithExtensionCopies(t *testing.T) {
	base := ErrConflict.WithExtension("a", 1)
	derived := base.WithExtension("b", 2)
	assert.Len(t, base.Extensions, 1)
	assert.Len(t, derived.Extensions, 2)
	assert.Nil(t, ErrConflict.Extensions)
	assert.Equal(t, "Conflict: boom", ErrConflict.WithDetail("boom").Error())
}

var errWidget = errors.New("widget missing")

func TestResponder_RespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var logs bytes.Buffer
	responder := NewResponder("https://crates.example", func(err error) (ProblemDetail, bool) {
		if errors.Is(err, errWidget) {
			return NewNotFoundProblem("widget", 7), true
		}
		return ProblemDetail{}, false
	}).WithLogger(slog.New(slog.NewJSONHandler(&logs, nil)))

	cases := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"mapped", fmt.Errorf("lookup: %w", errWidget), http.StatusNotFound, "https://crates.example" + TypeNotFound},
		{"problem", ErrServiceUnavailable.WithDetail("auditor down"), http.StatusServiceUnavailable, "https://crates.example" + TypeUnavailable},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "https://crates.example" + TypeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/v1/crates/things", nil)

			responder.RespondError(c, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.kind, body["type"])
			assert.Equal(t, "/v1/crates/things", body["instance"])
		})
	}
	assert.Contains(t, logs.String(), "disk on fire")
	assert.NotContains(t, logs.String(), "widget")
}
