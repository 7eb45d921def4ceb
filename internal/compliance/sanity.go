package compliance

import (
	"fmt"

	"materials-quote-service/internal/domain"
	"materials-quote-service/internal/extract"
)

// Finding codes. Codes are stable; messages may change.
const (
	CodeQuoteEmpty          = "QUOTE_EMPTY"
	CodeQuantityNotPositive = "QUANTITY_NOT_POSITIVE"
	CodeItemUnmatched       = "ITEM_UNMATCHED"
	CodeTreatmentInGround   = "TREATMENT_IN_GROUND"
	CodeTreatmentInterior   = "TREATMENT_INTERIOR_EXPOSED"
	CodeTreatmentMissing    = "TREATMENT_MISSING"
	CodeJoistUndersized     = "JOIST_UNDERSIZED"
	CodeWetAreaLining       = "WET_AREA_LINING"
	CodeLabourMissing       = "LABOUR_MISSING"
	CodeQtyPackHigh         = "QTY_PACK_HIGH"
	CodeQtyPaintHigh        = "QTY_PAINT_HIGH"
	CodeQtyBagHigh          = "QTY_BAG_HIGH"
	CodeLineValueHigh       = "LINE_VALUE_HIGH"
	CodeTotalLow            = "TOTAL_LOW"
	CodeTotalHighFewItems   = "TOTAL_HIGH_FEW_ITEMS"
	CodeFixingsMissing      = "FIXINGS_MISSING"
)

// Attributes returns the parsed attributes a rule should see for a line: the
// matched record's, or the line name's when unmatched.
func Attributes(item domain.ResolvedLineItem) domain.ParsedAttributes {
	if item.Kind == domain.LineLabour {
		return domain.ParsedAttributes{Type: domain.TypeLabour}
	}
	if item.Record != nil {
		return item.Record.Attributes
	}
	return extract.Extract(item.Name)
}

// CheckLine returns the per-line sanity warnings for one item. It never
// returns errors and leaves LineIndex unset.
func CheckLine(item domain.ResolvedLineItem, th Thresholds) []domain.ValidationFinding {
	var out []domain.ValidationFinding
	if item.Kind == domain.LineLabour {
		return lineValue(out, item, th)
	}
	attrs := Attributes(item)
	unit := domain.SellUnit("")
	if item.Record != nil {
		unit = item.Record.Unit
	}

	if unit.IsPackaged() && item.Quantity > th.MaxPackQty {
		out = append(out, warning(CodeQtyPackHigh,
			fmt.Sprintf("%d x %s of %s is unusually high", item.Quantity, unit, item.Name),
			"Check the pack size: the quantity may be in pieces rather than packs."))
	}
	if (attrs.Type == domain.TypePaint || attrs.Type == domain.TypeStain) && item.Quantity > th.MaxPaintQty {
		out = append(out, warning(CodeQtyPaintHigh,
			fmt.Sprintf("%d units of %s is unusually high", item.Quantity, item.Name),
			"Check coverage per tin against the area to coat."))
	}
	if (unit == domain.UnitBag || attrs.Type == domain.TypeConcrete) && item.Quantity > th.MaxBagQty {
		out = append(out, warning(CodeQtyBagHigh,
			fmt.Sprintf("%d bags of %s is unusually high", item.Quantity, item.Name),
			"Consider ready-mix delivery for large pours."))
	}
	return lineValue(out, item, th)
}

func lineValue(out []domain.ValidationFinding, item domain.ResolvedLineItem, th Thresholds) []domain.ValidationFinding {
	if v := item.Value(); v.GreaterThan(th.MaxLineValue) {
		out = append(out, warning(CodeLineValueHigh,
			fmt.Sprintf("%s line value %s exceeds %s", item.Name, v.StringFixed(2), th.MaxLineValue.StringFixed(2)),
			"Confirm quantity and unit price."))
	}
	return out
}

func warning(code, msg, fix string) domain.ValidationFinding {
	return domain.ValidationFinding{Severity: domain.SeverityWarning, Code: code, Message: msg, Remediation: fix}
}

func failure(code, msg, fix string) domain.ValidationFinding {
	return domain.ValidationFinding{Severity: domain.SeverityError, Code: code, Message: msg, Remediation: fix}
}
