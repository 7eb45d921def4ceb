// Package compliance checks a resolved quote against NZ building practice
// and sanity thresholds. Validation is pure: it never mutates its input and
// the same input always yields the same findings in the same order.
package compliance

import (
	"fmt"
	"strings"

	"materials-quote-service/internal/domain"
	"materials-quote-service/internal/extract"
	"materials-quote-service/internal/structural"

	"github.com/shopspring/decimal"
)

// Report is the outcome of one validation.
type Report struct {
	Findings []domain.ValidationFinding `json:"findings"`
}

// Errors returns the blocking findings.
func (r Report) Errors() []domain.ValidationFinding {
	return r.filter(domain.SeverityError)
}

// Warnings returns the advisory findings.
func (r Report) Warnings() []domain.ValidationFinding {
	return r.filter(domain.SeverityWarning)
}

// Blocking reports whether any finding prevents finalization.
func (r Report) Blocking() bool {
	for _, f := range r.Findings {
		if f.Blocking() {
			return true
		}
	}
	return false
}

func (r Report) filter(sev domain.Severity) []domain.ValidationFinding {
	out := []domain.ValidationFinding{}
	for _, f := range r.Findings {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}

type options struct {
	thresholds Thresholds
	joistSpanM float64
}

// Option configures a validation run.
type Option func(*options)

// WithThresholds replaces DefaultThresholds.
func WithThresholds(th Thresholds) Option {
	return func(o *options) { o.thresholds = th }
}

// WithJoistSpan makes the joist undersize rule use the minimum for this span
// instead of the smallest tabulated joist.
func WithJoistSpan(spanM float64) Option {
	return func(o *options) { o.joistSpanM = spanM }
}

// line is an item with the attributes the rules read.
type line struct {
	index int
	item  domain.ResolvedLineItem
	attrs domain.ParsedAttributes
}

func (l line) labour() bool {
	return l.item.Kind == domain.LineLabour || l.attrs.Type == domain.TypeLabour
}

// Validate checks line items for a job type. Findings come in a fixed order:
// completeness, per-item rules in item order, job-level rules, then sanity.
func Validate(items []domain.ResolvedLineItem, jobType string, opts ...Option) Report {
	o := options{thresholds: DefaultThresholds()}
	for _, opt := range opts {
		opt(&o)
	}
	profile := ProfileFor(jobType)

	lines := make([]line, len(items))
	for i, it := range items {
		lines[i] = line{index: i, item: it, attrs: Attributes(it)}
	}

	findings := []domain.ValidationFinding{}
	if len(items) == 0 {
		findings = append(findings, failure(CodeQuoteEmpty,
			"The quote has no line items.",
			"Add the materials and labour for the job."))
		return Report{Findings: findings}
	}

	for _, l := range lines {
		findings = append(findings, itemRules(l, profile, o)...)
	}
	findings = append(findings, jobRules(lines, profile)...)
	findings = append(findings, sanityRules(lines, o.thresholds)...)
	return Report{Findings: findings}
}

func at(l line, f domain.ValidationFinding) domain.ValidationFinding {
	idx := l.index
	f.LineIndex = &idx
	f.LineName = l.item.Name
	return f
}

func itemRules(l line, p JobProfile, o options) []domain.ValidationFinding {
	var out []domain.ValidationFinding
	if l.item.Quantity <= 0 {
		out = append(out, at(l, failure(CodeQuantityNotPositive,
			fmt.Sprintf("%s has quantity %d.", l.item.Name, l.item.Quantity),
			"Enter a quantity of at least 1 or remove the line.")))
	}
	if l.labour() {
		return out
	}
	if !l.item.Matched() {
		fix := "Search the catalog for a matching product."
		if len(l.item.Suggestions) > 0 {
			fix = "Try searching for: " + strings.Join(l.item.Suggestions, ", ") + "."
		}
		out = append(out, at(l, warning(CodeItemUnmatched,
			fmt.Sprintf("%s did not match a catalog product and is not priced.", l.item.Name), fix)))
	}
	out = append(out, treatmentRules(l, p)...)
	if f, ok := joistUndersized(l, p, o.joistSpanM); ok {
		out = append(out, at(l, f))
	}
	return out
}

// exteriorStructural are member types exposed to the weather in outdoor jobs.
var exteriorStructural = map[domain.MaterialType]bool{
	domain.TypeJoist:     true,
	domain.TypeBearer:    true,
	domain.TypePost:      true,
	domain.TypeFencePost: true,
	domain.TypePile:      true,
	domain.TypeDecking:   true,
	domain.TypePaling:    true,
	domain.TypeRail:      true,
}

// alwaysExposed are member types that are outdoor members in any job.
var alwaysExposed = map[domain.MaterialType]bool{
	domain.TypeDecking:   true,
	domain.TypePost:      true,
	domain.TypeFencePost: true,
	domain.TypePile:      true,
	domain.TypePaling:    true,
	domain.TypeRail:      true,
}

// requiredInGround is the minimum treatment for a member set into the
// ground, or "" when the rule does not apply.
func requiredInGround(t domain.MaterialType, p JobProfile) domain.Treatment {
	switch {
	case (t == domain.TypePost || t == domain.TypePile) && p.GroundContact:
		return domain.H5
	case t.InGround() && p.Fence:
		return domain.H4
	case t == domain.TypeFencePost && p.Exterior:
		return domain.H4
	}
	return ""
}

func treatmentRules(l line, p JobProfile) []domain.ValidationFinding {
	var out []domain.ValidationFinding
	t, a := l.attrs.Type, l.attrs
	if a.Treatment == nil {
		if p.Exterior && exteriorStructural[t] && !extract.NaturallyDurable(a.Species) {
			out = append(out, at(l, warning(CodeTreatmentMissing,
				fmt.Sprintf("%s has no recognisable treatment code for an outdoor %s.", l.item.Name, t),
				"Confirm the member is treated to the required hazard class.")))
		}
		return out
	}

	got := *a.Treatment
	if need := requiredInGround(t, p); need != "" && got.Rank() < need.Rank() {
		out = append(out, at(l, failure(CodeTreatmentInGround,
			fmt.Sprintf("%s is %s treated; in-ground %s members need %s or higher.", l.item.Name, got, t, need),
			fmt.Sprintf("Use %s treated timber for members set into the ground.", need))))
	}
	if got == domain.H12 && (alwaysExposed[t] || (p.Exterior && exteriorStructural[t])) {
		out = append(out, at(l, failure(CodeTreatmentInterior,
			fmt.Sprintf("%s is H1.2 (interior only) but used as an exposed %s.", l.item.Name, t),
			"Use H3.2 or higher for exterior structural members.")))
	}
	return out
}

func joistUndersized(l line, p JobProfile, spanM float64) (domain.ValidationFinding, bool) {
	if !p.Deck || l.attrs.Type != domain.TypeJoist || l.attrs.Timber == nil {
		return domain.ValidationFinding{}, false
	}
	want, ok := structural.MinJoistSection(spanM)
	if !ok {
		return failure(CodeJoistUndersized,
			fmt.Sprintf("Joist span %.2f m exceeds standard tables (max %.1f m).", spanM, structural.MaxJoistSpan()),
			"Shorten the span with an extra bearer or get a specific engineering design."), true
	}
	sec := l.attrs.Timber
	if sec.Width >= want.Width && sec.Depth >= want.Depth {
		return domain.ValidationFinding{}, false
	}
	span := "any deck span"
	if spanM > 0 {
		span = fmt.Sprintf("a %.2f m span", spanM)
	}
	return failure(CodeJoistUndersized,
		fmt.Sprintf("%s is %dx%d; %s needs at least %dx%d joists.", l.item.Name, sec.Width, sec.Depth, span, want.Width, want.Depth),
		fmt.Sprintf("Use %dx%d or larger joists.", want.Width, want.Depth)), true
}

func lining(l line) string {
	if l.attrs.Sheet == nil || l.attrs.Sheet.Lining == nil {
		return ""
	}
	return *l.attrs.Sheet.Lining
}

func isTimber(l line) bool {
	return !l.labour() && l.attrs.Type.Family() == domain.FamilyFraming
}

func jobRules(lines []line, p JobProfile) []domain.ValidationFinding {
	var out []domain.ValidationFinding
	if p.WetArea {
		var standard *line
		moisture := false
		for i := range lines {
			switch lining(lines[i]) {
			case domain.LiningStandard:
				if standard == nil {
					standard = &lines[i]
				}
			case domain.LiningMoisture:
				moisture = true
			}
		}
		if standard != nil && !moisture {
			out = append(out, at(*standard, failure(CodeWetAreaLining,
				"Standard lining board in a wet area with no moisture-rated board in the quote.",
				"Use a moisture-rated board such as GIB Aqualine for wet walls.")))
		}
	}

	timber, labour := false, false
	for _, l := range lines {
		timber = timber || isTimber(l)
		labour = labour || l.labour()
	}
	if timber && !labour {
		out = append(out, failure(CodeLabourMissing,
			"The quote has structural timber but no labour.",
			"Add an installation labour line."))
	}
	return out
}

func sanityRules(lines []line, th Thresholds) []domain.ValidationFinding {
	var out []domain.ValidationFinding
	total := decimal.Zero
	timber, fixings := false, false
	for _, l := range lines {
		for _, f := range CheckLine(l.item, th) {
			out = append(out, at(l, f))
		}
		total = total.Add(l.item.Value())
		timber = timber || isTimber(l)
		fixings = fixings || (!l.labour() && l.attrs.Type.Family() == domain.FamilyFixing)
	}

	if total.LessThan(th.MinQuoteTotal) {
		out = append(out, warning(CodeTotalLow,
			fmt.Sprintf("Quote total %s is below %s.", total.StringFixed(2), th.MinQuoteTotal.StringFixed(2)),
			"Check that nothing is missing from the quote."))
	}
	if total.GreaterThan(th.MaxQuoteTotal) && len(lines) <= th.FewItemsMax {
		out = append(out, warning(CodeTotalHighFewItems,
			fmt.Sprintf("Quote total %s across only %d lines.", total.StringFixed(2), len(lines)),
			"Check quantities and unit prices."))
	}
	if timber && !fixings {
		out = append(out, warning(CodeFixingsMissing,
			"The quote has structural timber but no nails, screws, bolts or hardware.",
			"Add fixings suited to the exposure."))
	}
	return out
}
