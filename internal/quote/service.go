// Package quote assembles a priced, validated quote from assistant line-item
// suggestions, labour and optional deck geometry.
package quote

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"materials-quote-service/internal/catalog"
	"materials-quote-service/internal/compliance"
	"materials-quote-service/internal/domain"
	"materials-quote-service/internal/structural"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInvalidLabour = errors.New("quote: labour needs positive hours and a non-negative rate")

const defaultLabourName = "Labour"

// Labour is one labour line: hours at an hourly rate.
type Labour struct {
	Description string          `json:"description"`
	Hours       float64         `json:"hours"`
	Rate        decimal.Decimal `json:"rate"`
}

// Request is everything needed to build one quote. Suggestions win over
// AIResponse when both are set.
type Request struct {
	JobType     string
	Suggestions []domain.Suggestion
	AIResponse  string
	Labour      []Labour
	Geometry    *structural.Geometry
}

// Quote is a session-local result; nothing in it is shared between quotes.
type Quote struct {
	ID          uuid.UUID                 `json:"id"`
	JobType     string                    `json:"job_type"`
	CreatedAt   time.Time                 `json:"created_at"`
	Items       []domain.ResolvedLineItem `json:"items"`
	Span        *domain.SpanResult        `json:"span,omitempty"`
	Report      compliance.Report         `json:"report"`
	Total       decimal.Decimal           `json:"total"`
	Currency    string                    `json:"currency"`
	Finalizable bool                      `json:"finalizable"`
}

// Service builds quotes against one resolver.
type Service struct {
	resolver   *catalog.Resolver
	thresholds compliance.Thresholds
	currency   string
	now        func() time.Time
}

// NewService creates a Service.
func NewService(resolver *catalog.Resolver, th compliance.Thresholds, currency string) *Service {
	return &Service{
		resolver:   resolver,
		thresholds: th,
		currency:   currency,
		now:        time.Now,
	}
}

// Build resolves, validates and totals a quote. Validation findings never
// remove or change items; a quote with error findings is not finalizable.
func (s *Service) Build(ctx context.Context, req Request) (*Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	suggestions := req.Suggestions
	if len(suggestions) == 0 {
		if strings.TrimSpace(req.AIResponse) == "" {
			return nil, ErrNoSuggestions
		}
		parsed, err := ParseSuggestions(req.AIResponse)
		if err != nil {
			return nil, err
		}
		suggestions = parsed
	}

	items := s.resolver.ResolveAll(suggestions)
	labourItems, err := LabourItems(req.Labour)
	if err != nil {
		return nil, err
	}
	items = append(items, labourItems...)

	q := &Quote{
		ID:        uuid.New(),
		JobType:   req.JobType,
		CreatedAt: s.now().UTC(),
		Items:     items,
		Currency:  s.currency,
	}

	opts := []compliance.Option{compliance.WithThresholds(s.thresholds)}
	if req.Geometry != nil {
		span, err := structural.SizeDeck(*req.Geometry)
		if err != nil {
			return nil, err
		}
		q.Span = &span
		opts = append(opts, compliance.WithJoistSpan(span.JoistSpanM))
	}
	q.Report = compliance.Validate(items, req.JobType, opts...)
	q.Total = Total(items)
	q.Finalizable = !q.Report.Blocking()

	log.Printf("INFO: Built quote %s for job %q: %d items, total %s %s, %d errors, %d warnings",
		q.ID, q.JobType, len(items), q.Total.StringFixed(2), q.Currency, len(q.Report.Errors()), len(q.Report.Warnings()))
	return q, nil
}

// LabourItems converts labour entries into line items. Hours are rounded up
// to whole hours.
func LabourItems(labour []Labour) ([]domain.ResolvedLineItem, error) {
	out := make([]domain.ResolvedLineItem, 0, len(labour))
	for i, l := range labour {
		if l.Hours <= 0 || math.IsNaN(l.Hours) || math.IsInf(l.Hours, 0) || l.Rate.IsNegative() {
			return nil, fmt.Errorf("%w: entry %d", ErrInvalidLabour, i)
		}
		name := strings.TrimSpace(l.Description)
		if name == "" {
			name = defaultLabourName
		}
		out = append(out, domain.ResolvedLineItem{
			Kind:        domain.LineLabour,
			Name:        name,
			Quantity:    max(1, int(math.Ceil(l.Hours-1e-9))),
			UnitPrice:   l.Rate,
			Calculation: fmt.Sprintf("%g h @ %s/h", l.Hours, l.Rate.StringFixed(2)),
		})
	}
	return out, nil
}

// Total sums line values. Unmatched lines carry no price and add nothing.
func Total(items []domain.ResolvedLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Value())
	}
	return total
}
