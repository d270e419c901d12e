package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/application/types"
)

type normalizedAssessmentInput struct {
	BookingRef   string                 `json:"bookingRef"`
	Breed        string                 `json:"breed"`
	WeightKg     float64                `json:"weightKg"`
	Destination  string                 `json:"destination"`
	Measurements normalizedMeasurements `json:"measurements"`
	Formula      string                 `json:"formula"`
}

type normalizedMeasurements struct {
	LengthA     float64 `json:"lengthA"`
	ElbowB      float64 `json:"elbowB"`
	WidthC      float64 `json:"widthC"`
	HeightD     float64 `json:"heightD"`
	IsSnubNosed bool    `json:"isSnubNosed"`
}

// FingerprintAssessment builds a deterministic hash of the assessment request payload (excluding the idempotency key).
func FingerprintAssessment(input types.CreateAssessmentInput) (string, error) {
	payload, err := json.Marshal(normalizeAssessmentInput(input))
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func normalizeAssessmentInput(input types.CreateAssessmentInput) normalizedAssessmentInput {
	m := input.Measurements
	return normalizedAssessmentInput{
		BookingRef:  strings.TrimSpace(input.BookingRef),
		Breed:       strings.TrimSpace(input.Breed),
		WeightKg:    input.WeightKg,
		Destination: strings.TrimSpace(input.Destination),
		Measurements: normalizedMeasurements{
			LengthA:     m.LengthA,
			ElbowB:      m.ElbowB,
			WidthC:      m.WidthC,
			HeightD:     m.HeightD,
			IsSnubNosed: m.IsSnubNosed,
		},
		Formula: strings.ToLower(strings.TrimSpace(string(input.Formula))),
	}
}
