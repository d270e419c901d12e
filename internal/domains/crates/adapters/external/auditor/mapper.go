package auditor

import (
	"strings"

	"github.com/Apurer/pet-crate-sizer/internal/clients/http/crateaudit"
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/domain"
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/ports"
)

const (
	VerdictPass   = "pass"
	VerdictReview = "review"
	VerdictFail   = "fail"

	passScore   = 75
	reviewScore = 50
)

// ToPayload converts an audit request into the audit endpoint body.
func ToPayload(req ports.AuditRequest) crateaudit.AuditRequest {
	m := req.Measurements
	required := req.Recommendation.MinInternal
	payload := crateaudit.AuditRequest{
		Dimensions: crateaudit.Dimensions{
			A:           m.LengthA,
			B:           m.ElbowB,
			C:           m.WidthC,
			D:           m.HeightD,
			IsSnubNosed: m.IsSnubNosed,
			Length:      required.Length,
			Width:       required.Width,
			Height:      required.Height,
		},
		Breed:       req.Breed,
		Weight:      req.WeightKg,
		Destination: req.Destination,
	}
	if req.Recommendation.RecommendedCrate != nil {
		payload.Dimensions.RecommendedID = req.Recommendation.RecommendedCrate.ID
	}
	return payload
}

// FromResponse turns the auditor response into a finding. Scores are clamped to 0..100.
func FromResponse(resp *crateaudit.AuditResponse) *domain.AuditFinding {
	if resp == nil {
		return nil
	}
	score := min(max(resp.SafetyScore, 0), 100)
	verdict := strings.ToLower(strings.TrimSpace(resp.Verdict))
	if verdict == "" {
		verdict = verdictFor(score)
	}
	issues := make([]string, 0, len(resp.Issues)+2)
	for _, issue := range resp.Issues {
		if issue = strings.TrimSpace(issue); issue != "" {
			issues = append(issues, issue)
		}
	}
	for _, note := range []string{resp.AirlineWarning, resp.ComfortAnalysis} {
		if note = strings.TrimSpace(note); note != "" {
			issues = append(issues, note)
		}
	}
	finding := &domain.AuditFinding{SafetyScore: score, Verdict: verdict}
	if len(issues) > 0 {
		finding.Issues = issues
	}
	return finding
}

func verdictFor(score int) string {
	switch {
	case score >= passScore:
		return VerdictPass
	case score >= reviewScore:
		return VerdictReview
	default:
		return VerdictFail
	}
}
