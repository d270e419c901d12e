package mapper

import (
	"errors"
	"math"
	"time"

	cratestypes "github.com/Apurer/pet-crate-sizer/internal/domains/crates/application/types"
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/domain"
	"github.com/Apurer/pet-crate-sizer/internal/shared/units"
)

// Measurements is the inbound pet measurement block. Missing fields decode as zero and count as not yet entered.
type Measurements struct {
	LengthA     float64 `json:"lengthA"`
	ElbowB      float64 `json:"elbowB"`
	WidthC      float64 `json:"widthC"`
	HeightD     float64 `json:"heightD"`
	IsSnubNosed bool    `json:"isSnubNosed"`
}

// CalculateRequest sizes one pet.
type CalculateRequest struct {
	Measurements
	Unit    string `json:"unit,omitempty"`
	Formula string `json:"formula,omitempty"`
}

// BatchRequest sizes several pets sharing a unit and formula.
type BatchRequest struct {
	Unit    string         `json:"unit,omitempty"`
	Formula string         `json:"formula,omitempty"`
	Items   []Measurements `json:"items"`
}

// AssessmentRequest records a calculation against a booking.
type AssessmentRequest struct {
	BookingRef   string       `json:"bookingRef"`
	Breed        string       `json:"breed,omitempty"`
	WeightKg     float64      `json:"weightKg,omitempty"`
	Destination  string       `json:"destination,omitempty"`
	Unit         string       `json:"unit,omitempty"`
	Formula      string       `json:"formula,omitempty"`
	Measurements Measurements `json:"measurements"`
}

// AuditRequest asks for an advisory audit of a fresh calculation.
type AuditRequest struct {
	Measurements
	Unit        string  `json:"unit,omitempty"`
	Formula     string  `json:"formula,omitempty"`
	Breed       string  `json:"breed,omitempty"`
	WeightKg    float64 `json:"weightKg,omitempty"`
	Destination string  `json:"destination,omitempty"`
}

// Dimensions is a length/width/height triple in the response unit.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Crate describes a catalog crate.
type Crate struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Internal Dimensions  `json:"internal"`
	External *Dimensions `json:"external,omitempty"`
}

// Recommendation is the sizing result.
type Recommendation struct {
	Unit                string     `json:"unit"`
	MinInternal         Dimensions `json:"minInternal"`
	RecommendedCrate    *Crate     `json:"recommendedCrate"`
	IsCustomBuildNeeded bool       `json:"isCustomBuildNeeded"`
	CrateType           string     `json:"crateType"`
	CatalogVersion      string     `json:"catalogVersion"`
	Formula             string     `json:"formula"`
}

// CalculateResponse wraps a possibly absent recommendation.
type CalculateResponse struct {
	Complete       bool            `json:"complete"`
	Recommendation *Recommendation `json:"recommendation"`
}

// BatchItem is one batch outcome; exactly one of Recommendation and Error is set.
type BatchItem struct {
	Index          int               `json:"index"`
	Recommendation *Recommendation   `json:"recommendation,omitempty"`
	Error          string            `json:"error,omitempty"`
	Fields         map[string]string `json:"fields,omitempty"`
}

// BatchResponse lists batch outcomes in request order.
type BatchResponse struct {
	Results []BatchItem `json:"results"`
}

// Catalog is the crate catalog in the requested unit.
type Catalog struct {
	Version string  `json:"version"`
	Unit    string  `json:"unit"`
	Crates  []Crate `json:"crates"`
}

// Audit is the advisory auditor's finding.
type Audit struct {
	SafetyScore int       `json:"safetyScore"`
	Verdict     string    `json:"verdict"`
	Issues      []string  `json:"issues,omitempty"`
	AuditedAt   time.Time `json:"auditedAt,omitempty"`
}

// AuditResponse pairs the recommendation with the advisory finding.
type AuditResponse struct {
	Recommendation Recommendation `json:"recommendation"`
	Audit          Audit          `json:"audit"`
}

// Assessment is the stored assessment; measurements are echoed in centimeters.
type Assessment struct {
	ID             int64          `json:"id"`
	BookingRef     string         `json:"bookingRef"`
	Breed          string         `json:"breed,omitempty"`
	WeightKg       float64        `json:"weightKg,omitempty"`
	Destination    string         `json:"destination,omitempty"`
	Measurements   Measurements   `json:"measurements"`
	Recommendation Recommendation `json:"recommendation"`
	Audit          *Audit         `json:"audit,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

var errEmptyBatch = errors.New("items must not be empty")

// ToDomainMeasurements converts inbound measurements to centimeters.
func ToDomainMeasurements(m Measurements, u units.Unit) domain.Measurements {
	return domain.Measurements{
		LengthA:     units.ToCentimeters(m.LengthA, u),
		ElbowB:      units.ToCentimeters(m.ElbowB, u),
		WidthC:      units.ToCentimeters(m.WidthC, u),
		HeightD:     units.ToCentimeters(m.HeightD, u),
		IsSnubNosed: m.IsSnubNosed,
	}
}

// ToCalculateInput maps the request, rejecting unknown units.
func ToCalculateInput(req CalculateRequest, strict bool) (cratestypes.CalculateInput, units.Unit, error) {
	u, err := units.Parse(req.Unit)
	if err != nil {
		return cratestypes.CalculateInput{}, "", err
	}
	return cratestypes.CalculateInput{
		Measurements: ToDomainMeasurements(req.Measurements, u),
		Formula:      domain.Formula(req.Formula),
		Strict:       strict,
	}, u, nil
}

// ToBatchInput maps a batch request.
func ToBatchInput(req BatchRequest) (cratestypes.BatchInput, units.Unit, error) {
	if len(req.Items) == 0 {
		return cratestypes.BatchInput{}, "", errEmptyBatch
	}
	u, err := units.Parse(req.Unit)
	if err != nil {
		return cratestypes.BatchInput{}, "", err
	}
	items := make([]domain.Measurements, 0, len(req.Items))
	for _, m := range req.Items {
		items = append(items, ToDomainMeasurements(m, u))
	}
	return cratestypes.BatchInput{Items: items, Formula: domain.Formula(req.Formula)}, u, nil
}

// ToCreateAssessmentInput maps an assessment request.
func ToCreateAssessmentInput(req AssessmentRequest, idempotencyKey string) (cratestypes.CreateAssessmentInput, error) {
	u, err := units.Parse(req.Unit)
	if err != nil {
		return cratestypes.CreateAssessmentInput{}, err
	}
	return cratestypes.CreateAssessmentInput{
		IdempotencyKey: idempotencyKey,
		BookingRef:     req.BookingRef,
		Breed:          req.Breed,
		WeightKg:       req.WeightKg,
		Destination:    req.Destination,
		Measurements:   ToDomainMeasurements(req.Measurements, u),
		Formula:        domain.Formula(req.Formula),
	}, nil
}

// ToAuditInput maps an audit request.
func ToAuditInput(req AuditRequest) (cratestypes.AuditInput, units.Unit, error) {
	u, err := units.Parse(req.Unit)
	if err != nil {
		return cratestypes.AuditInput{}, "", err
	}
	return cratestypes.AuditInput{
		Measurements: ToDomainMeasurements(req.Measurements, u),
		Formula:      domain.Formula(req.Formula),
		Breed:        req.Breed,
		WeightKg:     req.WeightKg,
		Destination:  req.Destination,
	}, u, nil
}

// FromRecommendation renders a recommendation in unit u.
func FromRecommendation(rec *domain.Recommendation, u units.Unit) *Recommendation {
	if rec == nil {
		return nil
	}
	out := &Recommendation{
		Unit:                string(u),
		MinInternal:         fromDimensions(rec.MinInternal, u),
		IsCustomBuildNeeded: rec.IsCustomBuildNeeded,
		CrateType:           string(rec.CrateType),
		CatalogVersion:      rec.CatalogVersion,
		Formula:             string(rec.Formula),
	}
	if u != units.Centimeters {
		out.MinInternal = fromDimensions(rec.Required, u)
	}
	if rec.RecommendedCrate != nil {
		crate := FromCatalogEntry(*rec.RecommendedCrate, u)
		out.RecommendedCrate = &crate
	}
	return out
}

// FromCalculateResult renders a calculation result.
func FromCalculateResult(result *cratestypes.CalculateResult, u units.Unit) CalculateResponse {
	if result == nil {
		return CalculateResponse{}
	}
	return CalculateResponse{Complete: result.Complete, Recommendation: FromRecommendation(result.Recommendation, u)}
}

// FromBatchResults renders batch outcomes. Item errors carry field-level detail when available.
func FromBatchResults(results []cratestypes.BatchItemResult, u units.Unit) BatchResponse {
	out := BatchResponse{Results: make([]BatchItem, 0, len(results))}
	for _, r := range results {
		item := BatchItem{Index: r.Index}
		if r.Err != nil {
			item.Error = r.Err.Error()
			item.Fields = FieldErrors(r.Err)
		} else {
			item.Recommendation = FromRecommendation(r.Recommendation, u)
		}
		out.Results = append(out.Results, item)
	}
	return out
}

// FromCatalog renders the catalog in unit u.
func FromCatalog(catalog *domain.Catalog, u units.Unit) Catalog {
	out := Catalog{Version: catalog.Version(), Unit: string(u), Crates: make([]Crate, 0, catalog.Len())}
	for _, entry := range catalog.Entries() {
		out.Crates = append(out.Crates, FromCatalogEntry(entry, u))
	}
	return out
}

// FromCatalogEntry renders one crate in unit u.
func FromCatalogEntry(entry domain.CatalogEntry, u units.Unit) Crate {
	crate := Crate{ID: entry.ID, Name: entry.Name, Internal: fromDimensions(entry.Internal, u)}
	if entry.External != nil {
		external := fromDimensions(*entry.External, u)
		crate.External = &external
	}
	return crate
}

// FromAuditFinding renders the advisory finding.
func FromAuditFinding(finding *domain.AuditFinding) *Audit {
	if finding == nil {
		return nil
	}
	return &Audit{
		SafetyScore: finding.SafetyScore,
		Verdict:     finding.Verdict,
		Issues:      append([]string(nil), finding.Issues...),
		AuditedAt:   finding.AuditedAt,
	}
}

// FromAuditResult renders an audit result in unit u.
func FromAuditResult(result *cratestypes.AuditResult, u units.Unit) AuditResponse {
	out := AuditResponse{}
	if rec := FromRecommendation(result.Recommendation, u); rec != nil {
		out.Recommendation = *rec
	}
	if audit := FromAuditFinding(result.Finding); audit != nil {
		out.Audit = *audit
	}
	return out
}

// FromProjection renders a stored assessment in centimeters.
func FromProjection(p *cratestypes.AssessmentProjection) Assessment {
	if p == nil || p.Entity == nil {
		return Assessment{}
	}
	a := p.Entity
	out := Assessment{
		ID:          a.ID,
		BookingRef:  a.BookingRef,
		Breed:       a.Breed,
		WeightKg:    a.WeightKg,
		Destination: a.Destination,
		Measurements: Measurements{
			LengthA:     a.Measurements.LengthA,
			ElbowB:      a.Measurements.ElbowB,
			WidthC:      a.Measurements.WidthC,
			HeightD:     a.Measurements.HeightD,
			IsSnubNosed: a.Measurements.IsSnubNosed,
		},
		Audit:     FromAuditFinding(a.Audit),
		CreatedAt: p.Metadata.CreatedAt,
		UpdatedAt: p.Metadata.UpdatedAt,
	}
	if rec := FromRecommendation(&a.Recommendation, units.Centimeters); rec != nil {
		out.Recommendation = *rec
	}
	return out
}

// FromProjectionList renders assessments in order.
func FromProjectionList(list []*cratestypes.AssessmentProjection) []Assessment {
	out := make([]Assessment, 0, len(list))
	for _, p := range list {
		out = append(out, FromProjection(p))
	}
	return out
}

// FieldErrors extracts per-field messages from a measurement error, or nil.
func FieldErrors(err error) map[string]string {
	var merr *domain.MeasurementError
	if !errors.As(err, &merr) {
		return nil
	}
	return map[string]string{merr.Field: merr.Error()}
}

// MeasurementFieldErrors validates every field and reports all problems at once.
func MeasurementFieldErrors(m domain.Measurements) map[string]string {
	problems := m.ValidateAll()
	if len(problems) == 0 {
		return nil
	}
	out := make(map[string]string, len(problems))
	for field, err := range problems {
		out[field] = err.Error()
	}
	return out
}

func fromDimensions(d domain.Dimensions, u units.Unit) Dimensions {
	return Dimensions{
		Length: round1(units.FromCentimeters(d.Length, u)),
		Width:  round1(units.FromCentimeters(d.Width, u)),
		Height: round1(units.FromCentimeters(d.Height, u)),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
