package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FlexFloat decodes a JSON number or a numeric string such as "12" or "4.5 m".
// Model output is inconsistent about quoting numbers.
type FlexFloat float64

var (
	leadingNumber = regexp.MustCompile(`^-?\d+(?:\.\d+)?`)
	groupedNumber = regexp.MustCompile(`^-?\d{1,3}(?:,\d{3})+(?:\.\d+)?\b`)
	decimalComma  = regexp.MustCompile(`^(-?\d+),(\d+)`)
)

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = 0
		return nil
	}
	s = strings.TrimSpace(strings.Trim(s, `"`))
	if s == "" {
		*f = 0
		return nil
	}
	// "1,200" groups thousands; any other comma between digits is a decimal mark.
	if g := groupedNumber.FindString(s); g != "" {
		s = strings.ReplaceAll(g, ",", "")
	} else {
		s = decimalComma.ReplaceAllString(s, "${1}.${2}")
	}
	num := leadingNumber.FindString(s)
	if num == "" {
		return fmt.Errorf("domain: %q is not a number", s)
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return fmt.Errorf("domain: parse %q: %w", s, err)
	}
	*f = FlexFloat(v)
	return nil
}

// Suggestion is one line-item request produced by the assistant.
// JSON names follow the prompt contract the assistant is given.
type Suggestion struct {
	Name        string    `json:"name"`
	SearchTerm  string    `json:"searchTerm"`
	Calculation string    `json:"calculation,omitempty"`
	TotalNeeded FlexFloat `json:"totalNeeded,omitempty"`
	PackageSize FlexFloat `json:"packageSize,omitempty"`
	QtyToOrder  FlexFloat `json:"qtyToOrder"`
	Unit        string    `json:"unit,omitempty"`
}

// LineKind distinguishes catalog material lines from labour lines.
type LineKind string

const (
	LineMaterial LineKind = "material"
	LineLabour   LineKind = "labour"
)

// ResolvedLineItem is the outcome of resolving one request, matched or not.
type ResolvedLineItem struct {
	Kind        LineKind        `json:"kind"`
	Name        string          `json:"name"`
	SearchTerm  string          `json:"search_term,omitempty"`
	Record      *CatalogRecord  `json:"record,omitempty"`
	Confidence  float64         `json:"confidence,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Calculation string          `json:"calculation,omitempty"`
	Warnings    []string        `json:"warnings,omitempty"`
	Suggestions []string        `json:"suggestions,omitempty"`
}

// Matched reports whether the line resolved to a catalog record.
func (li ResolvedLineItem) Matched() bool {
	return li.Record != nil
}

// Price is the per-unit price: the record's price, or the labour rate.
func (li ResolvedLineItem) Price() decimal.Decimal {
	if li.Record != nil {
		return li.Record.Price
	}
	return li.UnitPrice
}

// Value is price times quantity.
func (li ResolvedLineItem) Value() decimal.Decimal {
	return li.Price().Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Severity of a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationFinding is one validator output entry. Error findings block finalization.
type ValidationFinding struct {
	Severity    Severity `json:"severity"`
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Remediation string   `json:"remediation,omitempty"`
	LineIndex   *int     `json:"line_index,omitempty"`
	LineName    string   `json:"line_name,omitempty"`
}

// Blocking reports whether the finding prevents finalization.
func (f ValidationFinding) Blocking() bool {
	return f.Severity == SeverityError
}
