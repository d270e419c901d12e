package auditor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/pet-crate-sizer/internal/clients/http/crateaudit"
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/domain"
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/ports"
)

func auditRequest(t *testing.T) ports.AuditRequest {
	m := domain.Measurements{LengthA: 60, ElbowB: 30, WidthC: 35, HeightD: 55}
	rec, err := domain.SizeStrict(m, domain.DefaultCatalog())
	require.NoError(t, err)
	return ports.AuditRequest{Measurements: m, Recommendation: *rec, Breed: "Boxer", WeightKg: 30, Destination: "UK"}
}

func TestAuditor_Audit(t *testing.T) {
	var received crateaudit.AuditRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"safety_score":62,"comfort_analysis":"snug at the shoulders","pro_tip":"add absorbent bedding"}`))
	}))
	defer srv.Close()

	client, err := crateaudit.NewClient(srv.URL, crateaudit.WithRetryCount(0))
	require.NoError(t, err)

	finding, err := New(client).Audit(context.Background(), auditRequest(t))
	require.NoError(t, err)
	assert.Equal(t, 62, finding.SafetyScore)
	assert.Equal(t, VerdictReview, finding.Verdict)
	assert.Equal(t, []string{"snug at the shoulders"}, finding.Issues)

	assert.Equal(t, 75.0, received.Dimensions.Length)
	assert.Equal(t, "sky-700", received.Dimensions.RecommendedID)
	assert.Equal(t, "UK", received.Destination)
}

func TestAuditor_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := crateaudit.NewClient(srv.URL, crateaudit.WithRetryCount(0))
	require.NoError(t, err)

	_, err = New(client).Audit(context.Background(), auditRequest(t))
	require.ErrorIs(t, err, ports.ErrAuditUnavailable)
	require.True(t, IsUnavailable(err))
}

func TestNoop(t *testing.T) {
	_, err := Noop{}.Audit(context.Background(), ports.AuditRequest{})
	require.ErrorIs(t, err, ports.ErrAuditUnavailable)
}

func TestFromResponse(t *testing.T) {
	finding := FromResponse(&crateaudit.AuditResponse{SafetyScore: 140, Issues: []string{" ", "latch"}, AirlineWarning: "no plastic bolts"})
	assert.Equal(t, 100, finding.SafetyScore)
	assert.Equal(t, VerdictPass, finding.Verdict)
	assert.Equal(t, []string{"latch", "no plastic bolts"}, finding.Issues)

	assert.Equal(t, VerdictFail, FromResponse(&crateaudit.AuditResponse{SafetyScore: 10}).Verdict)
	assert.Equal(t, "review", FromResponse(&crateaudit.AuditResponse{SafetyScore: 90, Verdict: " Review "}).Verdict)
	assert.Nil(t, FromResponse(nil))
}
