package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SellUnit is the purchasable packaging granularity of a catalog item.
type SellUnit string

const (
	UnitEach        SellUnit = "each"
	UnitBox         SellUnit = "box"
	UnitPack        SellUnit = "pack"
	UnitBag         SellUnit = "bag"
	UnitSheet       SellUnit = "sheet"
	UnitRoll        SellUnit = "roll"
	UnitTube        SellUnit = "tube"
	UnitLinealMetre SellUnit = "lineal-metre"
	UnitSquareMetre SellUnit = "square-metre"
	UnitCubicMetre  SellUnit = "cubic-metre"
	UnitKilogram    SellUnit = "kilogram"
	UnitLitre       SellUnit = "litre"
	UnitSet         SellUnit = "set"
	UnitPair        SellUnit = "pair"
)

// sellUnitAliases maps supplier spellings onto the closed SellUnit set.
var sellUnitAliases = map[string]SellUnit{
	"EACH": UnitEach, "EA": UnitEach, "UNIT": UnitEach, "PC": UnitEach, "PCE": UnitEach, "LENGTH": UnitEach,
	"BOX": UnitBox, "BX": UnitBox, "CTN": UnitBox, "CARTON": UnitBox,
	"PACK": UnitPack, "PK": UnitPack, "PKT": UnitPack, "PACKET": UnitPack,
	"BAG": UnitBag, "BG": UnitBag,
	"SHEET": UnitSheet, "SHT": UnitSheet, "SH": UnitSheet,
	"ROLL": UnitRoll, "RL": UnitRoll,
	"TUBE": UnitTube, "CARTRIDGE": UnitTube,
	"LINEAL-METRE": UnitLinealMetre, "LM": UnitLinealMetre, "LIN M": UnitLinealMetre, "M": UnitLinealMetre, "METRE": UnitLinealMetre, "LINEAL METRE": UnitLinealMetre,
	"SQUARE-METRE": UnitSquareMetre, "M2": UnitSquareMetre, "SQM": UnitSquareMetre, "SQUARE METRE": UnitSquareMetre,
	"CUBIC-METRE": UnitCubicMetre, "M3": UnitCubicMetre, "CUBIC METRE": UnitCubicMetre,
	"KILOGRAM": UnitKilogram, "KG": UnitKilogram,
	"LITRE": UnitLitre, "L": UnitLitre, "LTR": UnitLitre, "LT": UnitLitre,
	"SET": UnitSet, "KIT": UnitSet,
	"PAIR": UnitPair, "PR": UnitPair,
}

// ParseSellUnit maps a free-form unit label onto the closed SellUnit set.
func ParseSellUnit(raw string) (SellUnit, bool) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	key = strings.TrimSuffix(key, ".")
	if u, ok := sellUnitAliases[key]; ok {
		return u, true
	}
	return "", false
}

// IsPackaged reports whether the unit is a multi-piece container (box or pack).
func (u SellUnit) IsPackaged() bool {
	return u == UnitBox || u == UnitPack
}

// Packaging converts a raw physical quantity into orderable packages.
type Packaging struct {
	UnitType        string   `json:"unit_type"`
	UnitsPerPackage int      `json:"units_per_package"`
	SellUnit        SellUnit `json:"sell_unit"`
}

// RawCatalogRecord is one row of the supplier catalog before enrichment.
type RawCatalogRecord struct {
	Code            string          `json:"code"`
	Supplier        string          `json:"supplier"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	Unit            string          `json:"unit"`
	Category        string          `json:"category"`
	Subcategory     string          `json:"subcategory"`
	UnitsPerPackage int             `json:"units_per_package"`
	PackageUnitType string          `json:"package_unit_type"`
}

// CatalogRecord is one purchasable item. Records are immutable once indexed.
type CatalogRecord struct {
	ID          string           `json:"id"`
	Supplier    string           `json:"supplier"`
	Name        string           `json:"name"`
	Price       decimal.Decimal  `json:"price"`
	Unit        SellUnit         `json:"unit"`
	Category    string           `json:"category"`
	Subcategory string           `json:"subcategory,omitempty"`
	Attributes  ParsedAttributes `json:"attributes"`
	Packaging   Packaging        `json:"packaging"`
}
