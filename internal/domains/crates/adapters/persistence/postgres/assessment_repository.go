package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/domain"
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/ports"
	"github.com/Apurer/pet-crate-sizer/internal/shared/projection"
)

var _ ports.AssessmentRepository = (*AssessmentRepository)(nil)

// AssessmentRepository persists crate assessments in PostgreSQL using GORM-mapped columns.
type AssessmentRepository struct {
	db *gorm.DB
}

// NewAssessmentRepository wires a PostgreSQL-backed repository. The caller owns the DB lifecycle.
func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

type assessmentRecord struct {
	ID                  int64          `gorm:"primaryKey;autoIncrement;column:id"`
	BookingRef          string         `gorm:"column:booking_ref;size:128;index"`
	Breed               string         `gorm:"column:breed"`
	WeightKg            float64        `gorm:"column:weight_kg"`
	Destination         string         `gorm:"column:destination"`
	LengthA             float64        `gorm:"column:length_a_cm"`
	ElbowB              float64        `gorm:"column:elbow_b_cm"`
	WidthC              float64        `gorm:"column:width_c_cm"`
	HeightD             float64        `gorm:"column:height_d_cm"`
	IsSnubNosed         bool           `gorm:"column:is_snub_nosed"`
	Formula             string         `gorm:"column:formula;type:varchar(32)"`
	RequiredLength      float64        `gorm:"column:required_length_cm"`
	RequiredWidth       float64        `gorm:"column:required_width_cm"`
	RequiredHeight      float64        `gorm:"column:required_height_cm"`
	MinLength           float64        `gorm:"column:min_length_cm"`
	MinWidth            float64        `gorm:"column:min_width_cm"`
	MinHeight           float64        `gorm:"column:min_height_cm"`
	CrateType           string         `gorm:"column:crate_type;type:varchar(16);index"`
	CatalogVersion      string         `gorm:"column:catalog_version;size:64"`
	CrateID             string         `gorm:"column:crate_id;size:64"`
	CrateName           string         `gorm:"column:crate_name"`
	CrateInternalLength float64        `gorm:"column:crate_internal_length_cm"`
	CrateInternalWidth  float64        `gorm:"column:crate_internal_width_cm"`
	CrateInternalHeight float64        `gorm:"column:crate_internal_height_cm"`
	CrateExternalLength *float64       `gorm:"column:crate_external_length_cm"`
	CrateExternalWidth  *float64       `gorm:"column:crate_external_width_cm"`
	CrateExternalHeight *float64       `gorm:"column:crate_external_height_cm"`
	AuditScore          *int           `gorm:"column:audit_safety_score"`
	AuditVerdict        string         `gorm:"column:audit_verdict"`
	AuditIssues         pq.StringArray `gorm:"column:audit_issues;type:text[]"`
	AuditedAt           *time.Time     `gorm:"column:audited_at"`
	CreatedAt           time.Time      `gorm:"column:created_at"`
	UpdatedAt           time.Time      `gorm:"column:updated_at"`
}

func (assessmentRecord) TableName() string { return "crate_assessments" }

func newAssessmentRecord(a *domain.Assessment) assessmentRecord {
	rec := a.Recommendation
	record := assessmentRecord{
		ID:             a.ID,
		BookingRef:     a.BookingRef,
		Breed:          a.Breed,
		WeightKg:       a.WeightKg,
		Destination:    a.Destination,
		LengthA:        a.Measurements.LengthA,
		ElbowB:         a.Measurements.ElbowB,
		WidthC:         a.Measurements.WidthC,
		HeightD:        a.Measurements.HeightD,
		IsSnubNosed:    a.Measurements.IsSnubNosed,
		Formula:        string(rec.Formula),
		RequiredLength: rec.Required.Length,
		RequiredWidth:  rec.Required.Width,
		RequiredHeight: rec.Required.Height,
		MinLength:      rec.MinInternal.Length,
		MinWidth:       rec.MinInternal.Width,
		MinHeight:      rec.MinInternal.Height,
		CrateType:      string(rec.CrateType),
		CatalogVersion: rec.CatalogVersion,
	}
	if crate := rec.RecommendedCrate; crate != nil {
		record.CrateID = crate.ID
		record.CrateName = crate.Name
		record.CrateInternalLength = crate.Internal.Length
		record.CrateInternalWidth = crate.Internal.Width
		record.CrateInternalHeight = crate.Internal.Height
		if crate.External != nil {
			length, width, height := crate.External.Length, crate.External.Width, crate.External.Height
			record.CrateExternalLength = &length
			record.CrateExternalWidth = &width
			record.CrateExternalHeight = &height
		}
	}
	if a.Audit != nil {
		score := a.Audit.SafetyScore
		auditedAt := a.Audit.AuditedAt
		record.AuditScore = &score
		record.AuditVerdict = a.Audit.Verdict
		record.AuditIssues = append(pq.StringArray{}, a.Audit.Issues...)
		record.AuditedAt = &auditedAt
	}
	return record
}

// Save inserts a new assessment (ID zero) or updates an existing one.
func (r *AssessmentRepository) Save(ctx context.Context, assessment *domain.Assessment) (*projection.Projection[*domain.Assessment], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if assessment == nil {
		return nil, errors.New("cannot save nil assessment")
	}
	record := newAssessmentRecord(assessment)
	if record.ID == 0 {
		if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
			return nil, err
		}
		assessment.ID = record.ID
		return r.GetByID(ctx, record.ID)
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"breed":              record.Breed,
				"weight_kg":          record.WeightKg,
				"destination":        record.Destination,
				"audit_safety_score": record.AuditScore,
				"audit_verdict":      record.AuditVerdict,
				"audit_issues":       record.AuditIssues,
				"audited_at":         record.AuditedAt,
				"updated_at":         gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches an assessment by identifier.
func (r *AssessmentRepository) GetByID(ctx context.Context, id int64) (*projection.Projection[*domain.Assessment], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record assessmentRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

// ListByBookingRef returns every assessment recorded for the booking, oldest first.
func (r *AssessmentRepository) ListByBookingRef(ctx context.Context, bookingRef string) ([]*projection.Projection[*domain.Assessment], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []assessmentRecord
	if err := r.db.WithContext(ctx).
		Where("booking_ref = ?", bookingRef).
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*projection.Projection[*domain.Assessment], 0, len(records))
	for i := range records {
		list = append(list, records[i].toProjection())
	}
	return list, nil
}

func (r *assessmentRecord) toProjection() *projection.Projection[*domain.Assessment] {
	return projection.New(r.toDomain(), r.CreatedAt, r.UpdatedAt)
}

func (r *assessmentRecord) toDomain() *domain.Assessment {
	a := &domain.Assessment{
		ID:          r.ID,
		BookingRef:  r.BookingRef,
		Breed:       r.Breed,
		WeightKg:    r.WeightKg,
		Destination: r.Destination,
		Measurements: domain.Measurements{
			LengthA:     r.LengthA,
			ElbowB:      r.ElbowB,
			WidthC:      r.WidthC,
			HeightD:     r.HeightD,
			IsSnubNosed: r.IsSnubNosed,
		},
		Recommendation: domain.Recommendation{
			MinInternal:         domain.Dimensions{Length: r.MinLength, Width: r.MinWidth, Height: r.MinHeight},
			Required:            domain.Dimensions{Length: r.RequiredLength, Width: r.RequiredWidth, Height: r.RequiredHeight},
			CrateType:           domain.CrateType(r.CrateType),
			IsCustomBuildNeeded: domain.CrateType(r.CrateType) == domain.CrateTypeCustom,
			CatalogVersion:      r.CatalogVersion,
			Formula:             domain.Formula(r.Formula),
		},
	}
	if r.CrateID != "" {
		crate := domain.CatalogEntry{
			ID:       r.CrateID,
			Name:     r.CrateName,
			Internal: domain.Dimensions{Length: r.CrateInternalLength, Width: r.CrateInternalWidth, Height: r.CrateInternalHeight},
		}
		if r.CrateExternalLength != nil && r.CrateExternalWidth != nil && r.CrateExternalHeight != nil {
			crate.External = &domain.Dimensions{Length: *r.CrateExternalLength, Width: *r.CrateExternalWidth, Height: *r.CrateExternalHeight}
		}
		a.Recommendation.RecommendedCrate = &crate
	}
	if r.AuditScore != nil {
		finding := &domain.AuditFinding{SafetyScore: *r.AuditScore, Verdict: r.AuditVerdict}
		if len(r.AuditIssues) > 0 {
			finding.Issues = append([]string{}, r.AuditIssues...)
		}
		if r.AuditedAt != nil {
			finding.AuditedAt = *r.AuditedAt
		}
		a.Audit = finding
	}
	return a
}

func (r *AssessmentRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres assessment repository not configured")
	}
	return nil
}
