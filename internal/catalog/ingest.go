// Package catalog enriches supplier records, indexes them by name token and
// resolves free-text material requests to purchasable records.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"materials-quote-service/internal/domain"
	"materials-quote-service/internal/extract"
)

var ErrInvalidRecord = errors.New("catalog: invalid record")

// Enrich validates a raw supplier row and attaches its parsed attributes.
func Enrich(raw domain.RawCatalogRecord) (domain.CatalogRecord, error) {
	code := strings.TrimSpace(raw.Code)
	name := strings.TrimSpace(raw.Name)
	if code == "" {
		return domain.CatalogRecord{}, fmt.Errorf("%w: missing code for %q", ErrInvalidRecord, name)
	}
	if name == "" {
		return domain.CatalogRecord{}, fmt.Errorf("%w: %s has no name", ErrInvalidRecord, code)
	}
	if raw.Price.IsNegative() {
		return domain.CatalogRecord{}, fmt.Errorf("%w: %s has negative price %s", ErrInvalidRecord, code, raw.Price)
	}
	unit, ok := domain.ParseSellUnit(raw.Unit)
	if !ok {
		return domain.CatalogRecord{}, fmt.Errorf("%w: %s has unknown unit %q", ErrInvalidRecord, code, raw.Unit)
	}
	perPackage := raw.UnitsPerPackage
	if perPackage < 0 {
		return domain.CatalogRecord{}, fmt.Errorf("%w: %s has %d units per package", ErrInvalidRecord, code, perPackage)
	}
	if perPackage == 0 {
		perPackage = 1
	}
	unitType := strings.TrimSpace(raw.PackageUnitType)
	if unitType == "" {
		unitType = string(unit)
	}

	id := code
	if s := strings.TrimSpace(raw.Supplier); s != "" {
		id = s + ":" + code
	}
	return domain.CatalogRecord{
		ID:          id,
		Supplier:    strings.TrimSpace(raw.Supplier),
		Name:        name,
		Price:       raw.Price,
		Unit:        unit,
		Category:    strings.TrimSpace(raw.Category),
		Subcategory: strings.TrimSpace(raw.Subcategory),
		Attributes:  extract.Extract(name),
		Packaging: domain.Packaging{
			UnitType:        unitType,
			UnitsPerPackage: perPackage,
			SellUnit:        unit,
		},
	}, nil
}

// Ingest enriches a batch. Invalid or duplicate rows are skipped and
// reported; the rest keep their input order.
func Ingest(raws []domain.RawCatalogRecord) ([]domain.CatalogRecord, []error) {
	records := make([]domain.CatalogRecord, 0, len(raws))
	var errs []error
	seen := make(map[string]struct{}, len(raws))
	for i, raw := range raws {
		rec, err := Enrich(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", i, err))
			continue
		}
		if _, dup := seen[rec.ID]; dup {
			errs = append(errs, fmt.Errorf("row %d: %w: duplicate id %s", i, ErrInvalidRecord, rec.ID))
			continue
		}
		seen[rec.ID] = struct{}{}
		records = append(records, rec)
	}
	return records, errs
}
