package domain

import (
	"fmt"
	"math"
	"strings"
)

// Formula selects how the required internal height is derived.
type Formula string

const (
	// FormulaHeadClearance sizes height as HeightD plus bedding clearance.
	FormulaHeadClearance Formula = "head-clearance"
	// FormulaElbowStacked sizes height as ElbowB plus HeightD.
	FormulaElbowStacked Formula = "elbow-stacked"
)

// CrateType tells callers whether an off-the-shelf crate fits.
type CrateType string

const (
	CrateTypeStandard CrateType = "standard"
	CrateTypeCustom   CrateType = "custom"
)

const (
	// BeddingClearanceCm is added above the head for FormulaHeadClearance.
	BeddingClearanceCm = 3.0
	// SnubNosedFactor is the brachycephalic safety buffer applied to every axis.
	SnubNosedFactor = 1.10

	// fitTolerance absorbs float noise such as 70*1.1 = 77.00000000000001.
	fitTolerance = 1e-9
)

// ParseFormula maps a textual formula name, defaulting to FormulaHeadClearance when empty.
func ParseFormula(raw string) (Formula, error) {
	switch Formula(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormulaHeadClearance:
		return FormulaHeadClearance, nil
	case FormulaElbowStacked:
		return FormulaElbowStacked, nil
	default:
		return "", fmt.Errorf("unknown crate formula %q", raw)
	}
}

// Recommendation is the outcome of sizing a crate against a catalog.
type Recommendation struct {
	// MinInternal is the requirement rounded to one decimal for display.
	MinInternal Dimensions
	// Required is the full-precision requirement used for matching.
	Required            Dimensions
	RecommendedCrate    *CatalogEntry
	IsCustomBuildNeeded bool
	CrateType           CrateType
	CatalogVersion      string
	Formula             Formula
}

// SizeOption tunes a sizing call.
type SizeOption func(*sizeConfig)

type sizeConfig struct {
	formula Formula
}

// WithFormula overrides the height formula.
func WithFormula(f Formula) SizeOption {
	return func(cfg *sizeConfig) {
		if f != "" {
			cfg.formula = f
		}
	}
}

// RequiredDimensions applies the IATA container formula per axis, including the
// snub-nosed buffer, without rounding.
func RequiredDimensions(m Measurements, formula Formula) Dimensions {
	required := Dimensions{
		Length: m.LengthA + m.ElbowB*0.5,
		Width:  m.WidthC * 2,
		Height: m.HeightD + BeddingClearanceCm,
	}
	if formula == FormulaElbowStacked {
		required.Height = m.ElbowB + m.HeightD
	}
	if m.IsSnubNosed {
		required.Length *= SnubNosedFactor
		required.Width *= SnubNosedFactor
		required.Height *= SnubNosedFactor
	}
	return required
}

// Size computes the crate recommendation for an interactive caller. It returns nil
// while any measurement is missing or unusable.
func Size(m Measurements, catalog *Catalog, opts ...SizeOption) *Recommendation {
	if !m.Complete() {
		return nil
	}
	return size(m, catalog, opts...)
}

// SizeStrict computes the crate recommendation and rejects unusable measurements
// with a *MeasurementError.
func SizeStrict(m Measurements, catalog *Catalog, opts ...SizeOption) (*Recommendation, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return size(m, catalog, opts...), nil
}

func size(m Measurements, catalog *Catalog, opts ...SizeOption) *Recommendation {
	cfg := sizeConfig{formula: FormulaHeadClearance}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	required := RequiredDimensions(m, cfg.formula)
	rec := &Recommendation{
		MinInternal:    roundDimensions(required),
		Required:       required,
		CatalogVersion: catalog.Version(),
		Formula:        cfg.formula,
	}
	if entry, ok := catalog.FirstFit(required); ok {
		rec.RecommendedCrate = entry
		rec.CrateType = CrateTypeStandard
		return rec
	}
	rec.IsCustomBuildNeeded = true
	rec.CrateType = CrateTypeCustom
	return rec
}

func roundDimensions(d Dimensions) Dimensions {
	return Dimensions{
		Length: roundTenth(d.Length),
		Width:  roundTenth(d.Width),
		Height: roundTenth(d.Height),
	}
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
