package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Dimensions is a length/width/height triple in centimeters.
type Dimensions struct {
	Length float64
	Width  float64
	Height float64
}

// Volume returns the cubic volume in cm³.
func (d Dimensions) Volume() float64 {
	return d.Length * d.Width * d.Height
}

// Covers reports whether every axis of d is at least the matching axis of required.
func (d Dimensions) Covers(required Dimensions) bool {
	return d.Length >= required.Length-fitTolerance &&
		d.Width >= required.Width-fitTolerance &&
		d.Height >= required.Height-fitTolerance
}

// CatalogEntry is an off-the-shelf crate size.
type CatalogEntry struct {
	ID   string
	Name string
	// Internal is the usable cavity the crate guarantees.
	Internal Dimensions
	// External is the outer shell, informational only.
	External *Dimensions
}

// Catalog is an immutable, versioned list of crate sizes ordered by ascending internal volume.
type Catalog struct {
	version string
	entries []CatalogEntry
}

var (
	ErrEmptyCatalogVersion = errors.New("catalog version is required")
	ErrInvalidCatalogEntry = errors.New("invalid catalog entry")
)

// NewCatalog validates the entries and orders them by ascending internal volume.
// Entries with equal volume keep their supplied order.
func NewCatalog(version string, entries []CatalogEntry) (*Catalog, error) {
	if strings.TrimSpace(version) == "" {
		return nil, ErrEmptyCatalogVersion
	}
	seen := make(map[string]struct{}, len(entries))
	ordered := make([]CatalogEntry, 0, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.ID) == "" {
			return nil, fmt.Errorf("%w: id is required", ErrInvalidCatalogEntry)
		}
		if _, dup := seen[entry.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidCatalogEntry, entry.ID)
		}
		seen[entry.ID] = struct{}{}
		if !positive(entry.Internal) {
			return nil, fmt.Errorf("%w: %s internal dimensions must be positive", ErrInvalidCatalogEntry, entry.ID)
		}
		if entry.External != nil && !positive(*entry.External) {
			return nil, fmt.Errorf("%w: %s external dimensions must be positive", ErrInvalidCatalogEntry, entry.ID)
		}
		ordered = append(ordered, cloneEntry(entry))
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Internal.Volume() < ordered[j].Internal.Volume()
	})
	return &Catalog{version: version, entries: ordered}, nil
}

// Version identifies the catalog revision.
func (c *Catalog) Version() string {
	if c == nil {
		return ""
	}
	return c.version
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entries returns a copy of the ordered entries.
func (c *Catalog) Entries() []CatalogEntry {
	if c == nil {
		return nil
	}
	out := make([]CatalogEntry, 0, len(c.entries))
	for _, entry := range c.entries {
		out = append(out, cloneEntry(entry))
	}
	return out
}

// FirstFit returns the smallest entry whose internal cavity covers required.
func (c *Catalog) FirstFit(required Dimensions) (*CatalogEntry, bool) {
	if c == nil {
		return nil, false
	}
	for _, entry := range c.entries {
		if entry.Internal.Covers(required) {
			match := cloneEntry(entry)
			return &match, true
		}
	}
	return nil, false
}

// DefaultCatalogVersion identifies the built-in Sky kennel table.
const DefaultCatalogVersion = "sky-2024.1"

// DefaultCatalog returns the built-in Sky kennel series.
func DefaultCatalog() *Catalog {
	catalog, err := NewCatalog(DefaultCatalogVersion, []CatalogEntry{
		{ID: "sky-100", Name: "Small (Series 100)", Internal: Dimensions{48, 32, 36}, External: &Dimensions{53, 40, 38}},
		{ID: "sky-200", Name: "Medium (Series 200)", Internal: Dimensions{66, 46, 48}, External: &Dimensions{71, 52, 54}},
		{ID: "sky-300", Name: "Intermediate (Series 300)", Internal: Dimensions{77, 51, 54}, External: &Dimensions{81, 57, 61}},
		{ID: "sky-400", Name: "Large (Series 400)", Internal: Dimensions{86, 56, 61}, External: &Dimensions{91, 64, 69}},
		{ID: "sky-500", Name: "XL (Series 500)", Internal: Dimensions{94, 64, 71}, External: &Dimensions{102, 69, 76}},
		{ID: "sky-700", Name: "Giant (Series 700)", Internal: Dimensions{114, 73, 81}, External: &Dimensions{122, 81, 89}},
	})
	if err != nil {
		panic(err)
	}
	return catalog
}

func positive(d Dimensions) bool {
	return d.Length > 0 && d.Width > 0 && d.Height > 0
}

func cloneEntry(entry CatalogEntry) CatalogEntry {
	clone := entry
	if entry.External != nil {
		external := *entry.External
		clone.External = &external
	}
	return clone
}
