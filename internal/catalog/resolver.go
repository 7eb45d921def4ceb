package catalog

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"materials-quote-service/internal/compliance"
	"materials-quote-service/internal/domain"
	"materials-quote-service/internal/extract"

	lru "github.com/hashicorp/golang-lru/v2"
)

// fallbackNarrowTokens is how many ordinary tokens narrow the candidates
// when a request has no key token.
const fallbackNarrowTokens = 3

const fallbackSuggestion = "building supplies"

const warnDefaultQuantity = "No usable quantity was supplied; defaulted to 1."

const (
	maxOrderQuantity   = math.MaxInt32
	warnQuantityCapped = "Requested quantity %g exceeds %d; capped. Check the request."
)

// keyTokens are high-specificity tokens. When a request carries any of them
// only records containing all of them are considered.
var keyTokens = map[string]bool{
	"H1.2": true, "H3.1": true, "H3.2": true, "H4": true, "H5": true, "H6": true,
	"SG6": true, "SG8": true, "SG10": true, "MSG6": true, "MSG8": true, "MGP10": true, "MGP12": true,
	"AQUALINE": true, "FIRELINE": true, "NOISELINE": true, "BRACELINE": true, "TOUGHLINE": true,
	"VILLABOARD": true, "HARDIFLEX": true, "ECOPLY": true,
}

// Candidate is one ranked search hit.
type Candidate struct {
	Record     *domain.CatalogRecord `json:"record"`
	Score      int                   `json:"score"`
	Confidence float64               `json:"confidence"`
}

type match struct {
	pos   int
	score int
}

// Resolver matches requests against an Index. It is safe for concurrent use.
type Resolver struct {
	index      *Index
	thresholds compliance.Thresholds
	memo       *lru.Cache[string, match]
}

// Option configures a Resolver.
type Option func(*Resolver) error

// WithThresholds sets the sanity thresholds used for line warnings.
func WithThresholds(th compliance.Thresholds) Option {
	return func(r *Resolver) error {
		r.thresholds = th
		return nil
	}
}

// WithMemo caches up to size search-term lookups. Zero disables the cache.
func WithMemo(size int) Option {
	return func(r *Resolver) error {
		if size <= 0 {
			r.memo = nil
			return nil
		}
		c, err := lru.New[string, match](size)
		if err != nil {
			return fmt.Errorf("catalog: resolver memo: %w", err)
		}
		r.memo = c
		return nil
	}
}

// NewResolver returns a resolver over idx.
func NewResolver(idx *Index, opts ...Option) (*Resolver, error) {
	r := &Resolver{index: idx, thresholds: compliance.DefaultThresholds()}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Index returns the index the resolver reads.
func (r *Resolver) Index() *Index {
	return r.index
}

func narrowing(tokens []string) []string {
	var keys []string
	for _, tok := range tokens {
		if keyTokens[tok] {
			keys = append(keys, tok)
		}
	}
	if len(keys) > 0 {
		return keys
	}
	if len(tokens) > fallbackNarrowTokens {
		return tokens[:fallbackNarrowTokens]
	}
	return tokens
}

// best returns the highest-scoring candidate. Records whose type contradicts
// the request's type are skipped; among equal scores a record of the
// request's own type wins, then one of its family, then the earliest.
func (r *Resolver) best(want domain.MaterialType, tokens []string) (match, bool) {
	if len(tokens) == 0 {
		return match{}, false
	}
	key := string(want) + "|" + strings.Join(tokens, " ")
	if r.memo != nil {
		if m, ok := r.memo.Get(key); ok {
			return m, m.pos >= 0
		}
	}
	found := match{pos: -1}
	foundAffinity := -1
	for _, pos := range r.index.intersect(narrowing(tokens)) {
		got := r.index.Record(pos).Attributes.Type
		if conflicts(want, got) {
			continue
		}
		s, a := r.index.score(pos, tokens), affinity(want, got)
		if s > found.score || (s == found.score && a > foundAffinity) {
			found = match{pos: pos, score: s}
			foundAffinity = a
		}
	}
	if r.memo != nil {
		r.memo.Add(key, found)
	}
	return found, found.pos >= 0
}

// conflicts reports whether a record of type got can never satisfy a request
// classified as want. Fixings and framing timber share dimension tokens.
func conflicts(want, got domain.MaterialType) bool {
	a, b := want.Family(), got.Family()
	return (a == domain.FamilyFixing && b == domain.FamilyFraming) ||
		(a == domain.FamilyFraming && b == domain.FamilyFixing)
}

func affinity(want, got domain.MaterialType) int {
	switch {
	case want == domain.TypeOther:
		return 0
	case want == got:
		return 2
	case want.Family() == got.Family():
		return 1
	}
	return 0
}

// Search ranks catalog records for a free-text term.
func (r *Resolver) Search(term string, limit int) []Candidate {
	tokens := Tokenize(term)
	out := []Candidate{}
	if len(tokens) == 0 {
		return out
	}
	for _, pos := range r.index.intersect(narrowing(tokens)) {
		s := r.index.score(pos, tokens)
		out = append(out, Candidate{
			Record:     r.index.Record(pos),
			Score:      s,
			Confidence: float64(s) / float64(len(tokens)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Resolve turns one request into exactly one line item, matched or not.
func (r *Resolver) Resolve(s domain.Suggestion) domain.ResolvedLineItem {
	item := r.resolve(s)
	item.Warnings = r.annotate(item)
	return item
}

// ResolveAll resolves every request. Requests that land on the same record
// are merged into one line in first-seen order with quantities summed.
func (r *Resolver) ResolveAll(suggestions []domain.Suggestion) []domain.ResolvedLineItem {
	out := make([]domain.ResolvedLineItem, 0, len(suggestions))
	byRecord := make(map[string]int)
	for _, s := range suggestions {
		item := r.resolve(s)
		if item.Record != nil {
			if i, ok := byRecord[item.Record.ID]; ok {
				out[i] = merge(out[i], item)
				continue
			}
			byRecord[item.Record.ID] = len(out)
		}
		out = append(out, item)
	}
	for i := range out {
		out[i].Warnings = r.annotate(out[i])
	}
	return out
}

func (r *Resolver) resolve(s domain.Suggestion) domain.ResolvedLineItem {
	term := strings.TrimSpace(s.SearchTerm)
	if term == "" {
		term = strings.TrimSpace(s.Name)
	}
	name := strings.TrimSpace(s.Name)
	if name == "" {
		name = term
	}
	item := domain.ResolvedLineItem{
		Kind:        domain.LineMaterial,
		Name:        name,
		SearchTerm:  term,
		Calculation: s.Calculation,
	}

	tokens := Tokenize(term)
	m, ok := r.best(extract.Classify(term), tokens)
	if !ok {
		item.Quantity, item.Warnings = sellableQuantity(s, nil)
		item.Suggestions = suggestionsFor(term, tokens)
		return item
	}
	item.Record = r.index.Record(m.pos)
	item.Confidence = float64(m.score) / float64(len(tokens))
	item.Quantity, item.Warnings = sellableQuantity(s, item.Record)
	return item
}

func merge(into, from domain.ResolvedLineItem) domain.ResolvedLineItem {
	into.Quantity += from.Quantity
	switch {
	case into.Calculation == "":
		into.Calculation = from.Calculation
	case from.Calculation != "":
		into.Calculation += "; " + from.Calculation
	}
	into.Confidence = math.Max(into.Confidence, from.Confidence)
	for _, w := range from.Warnings {
		if !contains(into.Warnings, w) {
			into.Warnings = append(into.Warnings, w)
		}
	}
	return into
}

// annotate appends sanity warnings to the line's own warnings.
func (r *Resolver) annotate(item domain.ResolvedLineItem) []string {
	warnings := append([]string(nil), item.Warnings...)
	for _, f := range compliance.CheckLine(item, r.thresholds) {
		warnings = append(warnings, f.Message)
	}
	return warnings
}

// sellableQuantity converts a request into whole purchase units. The
// assistant's qtyToOrder is authoritative when present.
func sellableQuantity(s domain.Suggestion, rec *domain.CatalogRecord) (int, []string) {
	if q := float64(s.QtyToOrder); q > 0 {
		return ceilQty(q)
	}
	if total := float64(s.TotalNeeded); total > 0 {
		if pkg := float64(s.PackageSize); pkg > 0 {
			return ceilQty(total / pkg)
		}
		if rec != nil && rec.Packaging.UnitsPerPackage > 1 {
			return ceilQty(total / float64(rec.Packaging.UnitsPerPackage))
		}
		return ceilQty(total)
	}
	return 1, []string{warnDefaultQuantity}
}

// ceilQty rounds up to a whole unit, at least 1. Quantities beyond
// maxOrderQuantity are capped and flagged.
func ceilQty(q float64) (int, []string) {
	if math.IsNaN(q) {
		return 1, []string{warnDefaultQuantity}
	}
	if q > maxOrderQuantity {
		return maxOrderQuantity, []string{fmt.Sprintf(warnQuantityCapped, q, maxOrderQuantity)}
	}
	n := int(math.Ceil(q - 1e-9))
	if n < 1 {
		return 1, nil
	}
	return n, nil
}

// suggestionsFor derives refinement hints for an unmatched term: its
// dimension, its treatment and a category keyword from the type classifier.
func suggestionsFor(term string, tokens []string) []string {
	var out []string
	add := func(s string) {
		if s != "" && !contains(out, s) {
			out = append(out, s)
		}
	}
	attrs := extract.Extract(term)
	add(extract.DimensionToken(term))
	if attrs.Treatment != nil {
		add(string(*attrs.Treatment))
	}
	add(extract.SearchKeyword(attrs.Type))
	if len(out) == 0 && len(tokens) > 0 {
		add(strings.ToLower(strings.Join(tokens[:min(2, len(tokens))], " ")))
	}
	if len(out) == 0 {
		add(fallbackSuggestion)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
