package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referencePet() Measurements {
	return Measurements{LengthA: 60, ElbowB: 30, WidthC: 35, HeightD: 55}
}

func TestSize_ReferenceScenario(t *testing.T) {
	rec := Size(referencePet(), DefaultCatalog())
	require.NotNil(t, rec)

	assert.Equal(t, Dimensions{Length: 75, Width: 70, Height: 58}, rec.MinInternal)
	require.NotNil(t, rec.RecommendedCrate)
	assert.Equal(t, "sky-700", rec.RecommendedCrate.ID)
	assert.False(t, rec.IsCustomBuildNeeded)
	assert.Equal(t, CrateTypeStandard, rec.CrateType)
	assert.Equal(t, DefaultCatalogVersion, rec.CatalogVersion)
	assert.Equal(t, FormulaHeadClearance, rec.Formula)
}

func TestSize_SnubNosedMovesToCustomBuild(t *testing.T) {
	m := referencePet()
	m.IsSnubNosed = true

	rec := Size(m, DefaultCatalog())
	require.NotNil(t, rec)

	assert.Equal(t, Dimensions{Length: 82.5, Width: 77, Height: 63.8}, rec.MinInternal)
	assert.Nil(t, rec.RecommendedCrate)
	assert.True(t, rec.IsCustomBuildNeeded)
	assert.Equal(t, CrateTypeCustom, rec.CrateType)
}

func TestSize_SmallPetGetsSmallestCrate(t *testing.T) {
	rec := Size(Measurements{LengthA: 30, ElbowB: 10, WidthC: 12, HeightD: 25}, DefaultCatalog())
	require.NotNil(t, rec)
	require.NotNil(t, rec.RecommendedCrate)
	assert.Equal(t, "sky-100", rec.RecommendedCrate.ID)
	require.NotNil(t, rec.RecommendedCrate.External)
	assert.Equal(t, Dimensions{Length: 53, Width: 40, Height: 38}, *rec.RecommendedCrate.External)
}

func TestSize_ElbowStackedFormula(t *testing.T) {
	rec := Size(referencePet(), DefaultCatalog(), WithFormula(FormulaElbowStacked))
	require.NotNil(t, rec)
	assert.Equal(t, 85.0, rec.MinInternal.Height)
	assert.Equal(t, FormulaElbowStacked, rec.Formula)
	assert.True(t, rec.IsCustomBuildNeeded, "85cm exceeds the tallest catalog crate")
}

func TestSize_IncompleteInputYieldsNoResult(t *testing.T) {
	cases := map[string]Measurements{
		"zero width":      {LengthA: 60, ElbowB: 30, WidthC: 0, HeightD: 55},
		"negative length": {LengthA: -1, ElbowB: 30, WidthC: 35, HeightD: 55},
		"nan elbow":       {LengthA: 60, ElbowB: math.NaN(), WidthC: 35, HeightD: 55},
		"infinite height": {LengthA: 60, ElbowB: 30, WidthC: 35, HeightD: math.Inf(1)},
		"empty":           {},
	}
	for name, m := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, Size(m, DefaultCatalog()))
		})
	}
}

func TestSizeStrict_RejectsInvalidMeasurements(t *testing.T) {
	_, err := SizeStrict(Measurements{LengthA: 60, ElbowB: 30, WidthC: 0, HeightD: 55}, DefaultCatalog())
	require.ErrorIs(t, err, ErrInvalidMeasurement)
	require.ErrorIs(t, err, ErrIncompleteInput)
	var merr *MeasurementError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, "widthC", merr.Field)

	_, err = SizeStrict(Measurements{LengthA: 60, ElbowB: -4, WidthC: 35, HeightD: 55}, DefaultCatalog())
	require.ErrorIs(t, err, ErrInvalidMeasurement)
	assert.False(t, errors.Is(err, ErrIncompleteInput))
	assert.Contains(t, err.Error(), "elbowB")
}

func TestSizeStrict_ValidMatchesInteractive(t *testing.T) {
	rec, err := SizeStrict(referencePet(), DefaultCatalog())
	require.NoError(t, err)
	assert.Equal(t, Size(referencePet(), DefaultCatalog()), rec)
}

func TestSize_BoundaryIsInclusive(t *testing.T) {
	catalog, err := NewCatalog("test", []CatalogEntry{
		{ID: "exact", Name: "Exact", Internal: Dimensions{Length: 75, Width: 70, Height: 58}},
	})
	require.NoError(t, err)

	rec := Size(referencePet(), catalog)
	require.NotNil(t, rec)
	require.NotNil(t, rec.RecommendedCrate)
	assert.Equal(t, "exact", rec.RecommendedCrate.ID)
}

func TestSize_SnubNosedBoundaryAbsorbsFloatNoise(t *testing.T) {
	m := Measurements{LengthA: 20, ElbowB: 10, WidthC: 35, HeightD: 20, IsSnubNosed: true}
	required := RequiredDimensions(m, FormulaHeadClearance)
	catalog, err := NewCatalog("test", []CatalogEntry{
		{ID: "tight", Name: "Tight", Internal: Dimensions{Length: 27.5, Width: 77, Height: 25.3}},
	})
	require.NoError(t, err)

	rec := Size(m, catalog)
	require.NotNil(t, rec)
	require.NotNil(t, rec.RecommendedCrate, "required %+v", required)
	assert.Equal(t, "tight", rec.RecommendedCrate.ID)
}

func TestSize_EmptyCatalogNeedsCustomBuild(t *testing.T) {
	catalog, err := NewCatalog("empty", nil)
	require.NoError(t, err)
	rec := Size(referencePet(), catalog)
	require.NotNil(t, rec)
	assert.True(t, rec.IsCustomBuildNeeded)
	assert.Nil(t, rec.RecommendedCrate)
}

func TestRequiredDimensions_SnubNosedIsPureScale(t *testing.T) {
	base := Measurements{LengthA: 41.3, ElbowB: 17.9, WidthC: 22.4, HeightD: 38.6}
	snub := base
	snub.IsSnubNosed = true

	for _, formula := range []Formula{FormulaHeadClearance, FormulaElbowStacked} {
		plain := RequiredDimensions(base, formula)
		scaled := RequiredDimensions(snub, formula)
		assert.InDelta(t, plain.Length*SnubNosedFactor, scaled.Length, 1e-9)
		assert.InDelta(t, plain.Width*SnubNosedFactor, scaled.Width, 1e-9)
		assert.InDelta(t, plain.Height*SnubNosedFactor, scaled.Height, 1e-9)
	}
}

func TestRequiredDimensions_MonotonicInEveryInput(t *testing.T) {
	base := referencePet()
	bumps := []func(*Measurements){
		func(m *Measurements) { m.LengthA += 5 },
		func(m *Measurements) { m.ElbowB += 5 },
		func(m *Measurements) { m.WidthC += 5 },
		func(m *Measurements) { m.HeightD += 5 },
	}
	for _, formula := range []Formula{FormulaHeadClearance, FormulaElbowStacked} {
		before := RequiredDimensions(base, formula)
		for _, bump := range bumps {
			m := base
			bump(&m)
			after := RequiredDimensions(m, formula)
			assert.GreaterOrEqual(t, after.Length, before.Length)
			assert.GreaterOrEqual(t, after.Width, before.Width)
			assert.GreaterOrEqual(t, after.Height, before.Height)
		}
	}
}

func TestSize_RecommendationNeverUndersizedAndSmallest(t *testing.T) {
	catalog := DefaultCatalog()
	entries := catalog.Entries()
	for length := 10.0; length <= 120; length += 7.5 {
		for width := 5.0; width <= 45; width += 4 {
			for _, snub := range []bool{false, true} {
				m := Measurements{LengthA: length, ElbowB: length / 3, WidthC: width, HeightD: length * 0.6, IsSnubNosed: snub}
				rec := Size(m, catalog)
				require.NotNil(t, rec)
				if rec.RecommendedCrate == nil {
					require.True(t, rec.IsCustomBuildNeeded)
					for _, entry := range entries {
						require.False(t, entry.Internal.Covers(rec.Required), "%s fits but was not picked", entry.ID)
					}
					continue
				}
				require.False(t, rec.IsCustomBuildNeeded)
				require.True(t, rec.RecommendedCrate.Internal.Covers(rec.Required))
				for _, entry := range entries {
					if entry.Internal.Covers(rec.Required) {
						require.LessOrEqual(t, rec.RecommendedCrate.Internal.Volume(), entry.Internal.Volume())
					}
				}
			}
		}
	}
}

func TestParseFormula(t *testing.T) {
	f, err := ParseFormula("")
	require.NoError(t, err)
	assert.Equal(t, FormulaHeadClearance, f)

	f, err = ParseFormula(" Elbow-Stacked ")
	require.NoError(t, err)
	assert.Equal(t, FormulaElbowStacked, f)

	_, err = ParseFormula("guess")
	require.Error(t, err)
}
