package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/domain"
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/ports"
)

var _ ports.CatalogRepository = (*CatalogRepository)(nil)

// CatalogRepository stores catalog revisions in PostgreSQL. The most recently
// published revision is the current one.
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository wires a PostgreSQL-backed catalog repository. The caller owns the DB lifecycle.
func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

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

// Current loads the latest published catalog revision.
func (r *CatalogRepository) Current(ctx context.Context) (*domain.Catalog, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var head catalogRecord
	if err := r.db.WithContext(ctx).Order("published_at DESC").First(&head).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrCatalogNotFound
		}
		return nil, err
	}
	var records []catalogEntryRecord
	if err := r.db.WithContext(ctx).
		Where("catalog_version = ?", head.Version).
		Order("position ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	entries := make([]domain.CatalogEntry, 0, len(records))
	for i := range records {
		entries = append(entries, records[i].toDomain())
	}
	return domain.NewCatalog(head.Version, entries)
}

// Publish stores the catalog and makes it current. Republishing a version replaces its entries.
func (r *CatalogRepository) Publish(ctx context.Context, catalog *domain.Catalog) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if catalog == nil {
		return errors.New("cannot publish nil catalog")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		head := catalogRecord{Version: catalog.Version(), PublishedAt: time.Now().UTC()}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "version"}},
			DoUpdates: clause.AssignmentColumns([]string{"published_at"}),
		}).Create(&head).Error; err != nil {
			return err
		}
		if err := tx.Where("catalog_version = ?", head.Version).Delete(&catalogEntryRecord{}).Error; err != nil {
			return err
		}
		entries := catalog.Entries()
		if len(entries) == 0 {
			return nil
		}
		records := make([]catalogEntryRecord, 0, len(entries))
		for i, entry := range entries {
			records = append(records, newCatalogEntryRecord(head.Version, i, entry))
		}
		return tx.Create(&records).Error
	})
}

// EnsureSeeded publishes seed when no catalog revision exists yet.
func (r *CatalogRepository) EnsureSeeded(ctx context.Context, seed *domain.Catalog) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalogRecord{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return r.Publish(ctx, seed)
}

func newCatalogEntryRecord(version string, position int, entry domain.CatalogEntry) catalogEntryRecord {
	rec := catalogEntryRecord{
		CatalogVersion: version,
		ID:             entry.ID,
		Position:       position,
		Name:           entry.Name,
		InternalLength: entry.Internal.Length,
		InternalWidth:  entry.Internal.Width,
		InternalHeight: entry.Internal.Height,
	}
	if entry.External != nil {
		length, width, height := entry.External.Length, entry.External.Width, entry.External.Height
		rec.ExternalLength = &length
		rec.ExternalWidth = &width
		rec.ExternalHeight = &height
	}
	return rec
}

func (r *catalogEntryRecord) toDomain() domain.CatalogEntry {
	entry := domain.CatalogEntry{
		ID:       r.ID,
		Name:     r.Name,
		Internal: domain.Dimensions{Length: r.InternalLength, Width: r.InternalWidth, Height: r.InternalHeight},
	}
	if r.ExternalLength != nil && r.ExternalWidth != nil && r.ExternalHeight != nil {
		entry.External = &domain.Dimensions{Length: *r.ExternalLength, Width: *r.ExternalWidth, Height: *r.ExternalHeight}
	}
	return entry
}

func (r *CatalogRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres catalog repository not configured")
	}
	return nil
}
