package compliance

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Thresholds are the sanity limits shared by the resolver and the validator.
// Quantity and value limits are strictly-greater comparisons; the total floor
// is strictly-less.
type Thresholds struct {
	MaxPackQty    int             `json:"max_pack_qty"`
	MaxPaintQty   int             `json:"max_paint_qty"`
	MaxBagQty     int             `json:"max_bag_qty"`
	MaxLineValue  decimal.Decimal `json:"max_line_value"`
	MinQuoteTotal decimal.Decimal `json:"min_quote_total"`
	MaxQuoteTotal decimal.Decimal `json:"max_quote_total"`
	FewItemsMax   int             `json:"few_items_max"`
}

// DefaultThresholds are calibrated for NZ residential jobs priced in NZD.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxPackQty:    50,
		MaxPaintQty:   20,
		MaxBagQty:     150,
		MaxLineValue:  decimal.NewFromInt(10000),
		MinQuoteTotal: decimal.NewFromInt(100),
		MaxQuoteTotal: decimal.NewFromInt(50000),
		FewItemsMax:   3,
	}
}

// thresholdsFile is the YAML override shape. Absent keys keep the default.
type thresholdsFile struct {
	MaxPackQty    *int     `yaml:"max_pack_qty"`
	MaxPaintQty   *int     `yaml:"max_paint_qty"`
	MaxBagQty     *int     `yaml:"max_bag_qty"`
	MaxLineValue  *float64 `yaml:"max_line_value"`
	MinQuoteTotal *float64 `yaml:"min_quote_total"`
	MaxQuoteTotal *float64 `yaml:"max_quote_total"`
	FewItemsMax   *int     `yaml:"few_items_max"`
}

// LoadThresholds reads a YAML override file on top of DefaultThresholds.
// An empty path returns the defaults.
func LoadThresholds(path string) (Thresholds, error) {
	th := DefaultThresholds()
	if path == "" {
		return th, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return th, fmt.Errorf("compliance: read thresholds %s: %w", path, err)
	}
	return ParseThresholds(raw)
}

// ParseThresholds applies YAML overrides to DefaultThresholds.
func ParseThresholds(raw []byte) (Thresholds, error) {
	th := DefaultThresholds()
	var f thresholdsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return th, fmt.Errorf("compliance: parse thresholds: %w", err)
	}
	setInt(&th.MaxPackQty, f.MaxPackQty)
	setInt(&th.MaxPaintQty, f.MaxPaintQty)
	setInt(&th.MaxBagQty, f.MaxBagQty)
	setInt(&th.FewItemsMax, f.FewItemsMax)
	setMoney(&th.MaxLineValue, f.MaxLineValue)
	setMoney(&th.MinQuoteTotal, f.MinQuoteTotal)
	setMoney(&th.MaxQuoteTotal, f.MaxQuoteTotal)

	if th.MaxPackQty < 1 || th.MaxPaintQty < 1 || th.MaxBagQty < 1 || th.FewItemsMax < 0 ||
		th.MaxLineValue.IsNegative() || th.MinQuoteTotal.IsNegative() || th.MaxQuoteTotal.LessThan(th.MinQuoteTotal) {
		return DefaultThresholds(), fmt.Errorf("compliance: thresholds out of range: %+v", th)
	}
	return th, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setMoney(dst *decimal.Decimal, v *float64) {
	if v != nil {
		*dst = decimal.NewFromFloat(*v)
	}
}
