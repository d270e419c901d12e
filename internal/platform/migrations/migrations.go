package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the crate sizing schema.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&catalogRecord{},
		&catalogEntryRecord{},
		&assessmentRecord{},
		&idempotencyRecord{},
	)
}

// Catalog revisions; the latest published_at is current.
type catalogRecord struct {
	Version     string    `gorm:"primaryKey;column:version;size:64"`
	PublishedAt time.Time `gorm:"column:published_at;index"`
}

func (catalogRecord) TableName() string { return "crate_catalogs" }

type catalogEntryRecord struct {
	CatalogVersion string   `gorm:"primaryKey;column:catalog_version;size:64"`
	ID             string   `gorm:"primaryKey;column:id;size:64"`
	Position       int      `gorm:"column:position"`
	Name           string   `gorm:"column:name"`
	InternalLength float64  `gorm:"column:internal_length_cm"`
	InternalWidth  float64  `gorm:"column:internal_width_cm"`
	InternalHeight float64  `gorm:"column:internal_height_cm"`
	ExternalLength *float64 `gorm:"column:external_length_cm"`
	ExternalWidth  *float64 `gorm:"column:external_width_cm"`
	ExternalHeight *float64 `gorm:"column:external_height_cm"`
}

func (catalogEntryRecord) TableName() string { return "crate_catalog_entries" }

// Assessment schema mirrors the crates Postgres adapter.
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

// Idempotency keys for assessment creation.
type idempotencyRecord struct {
	Key          string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash  string    `gorm:"column:request_hash;size:128"`
	AssessmentID int64     `gorm:"column:assessment_id"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "crate_idempotency_keys" }
