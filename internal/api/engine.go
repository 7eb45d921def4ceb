package api

import (
	"context"
	"errors"
	"fmt"

	"materials-quote-service/internal/catalog"
	"materials-quote-service/internal/compliance"
	"materials-quote-service/internal/domain"
	"materials-quote-service/internal/extract"
	"materials-quote-service/internal/quote"
	"materials-quote-service/internal/structural"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput wraps request validation failures.
var ErrInvalidInput = errors.New("Validation failed")

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

// ExtractInput is a batch of product names to parse.
type ExtractInput struct {
	Names []string `json:"names" validate:"required,min=1,max=500,dive,required,max=300"`
}

// ExtractedName pairs a name with its parsed attributes.
type ExtractedName struct {
	Name       string                  `json:"name"`
	Normalized string                  `json:"normalized"`
	Attributes domain.ParsedAttributes `json:"attributes"`
}

// ExtractResponse is the result of ExtractAttributes.
type ExtractResponse struct {
	Items []ExtractedName `json:"items"`
}

// SearchResponse is the result of a catalog search.
type SearchResponse struct {
	Query      string              `json:"query"`
	Candidates []catalog.Candidate `json:"candidates"`
}

// ResolveInput carries material requests, either structured or as raw model output.
type ResolveInput struct {
	Suggestions []domain.Suggestion `json:"suggestions" validate:"omitempty,max=500"`
	AIResponse  string              `json:"ai_response" validate:"omitempty,max=200000"`
}

// ResolveResponse is the result of ResolveItems.
type ResolveResponse struct {
	Items     []domain.ResolvedLineItem `json:"items"`
	Matched   int                       `json:"matched"`
	Unmatched int                       `json:"unmatched"`
}

// ValidateInput is a resolved quote to check.
type ValidateInput struct {
	JobType    string                    `json:"job_type" validate:"required,max=200"`
	Items      []domain.ResolvedLineItem `json:"items" validate:"max=500"`
	JoistSpanM float64                   `json:"joist_span" validate:"gte=0"`
}

// ValidateResponse is the result of ValidateQuote.
type ValidateResponse struct {
	Findings    []domain.ValidationFinding `json:"findings"`
	Errors      int                        `json:"errors"`
	Warnings    int                        `json:"warnings"`
	Finalizable bool                       `json:"finalizable"`
}

// QuoteInput is the body for building a full quote.
type QuoteInput struct {
	JobType     string               `json:"job_type" validate:"required,max=200"`
	Suggestions []domain.Suggestion  `json:"suggestions" validate:"omitempty,max=500"`
	AIResponse  string               `json:"ai_response" validate:"omitempty,max=200000"`
	Labour      []quote.Labour       `json:"labour" validate:"omitempty,max=50"`
	Geometry    *structural.Geometry `json:"geometry"`
}

// Engine is the transport-neutral core shared by the HTTP and gRPC handlers.
type Engine struct {
	resolver   *catalog.Resolver
	quotes     *quote.Service
	thresholds compliance.Thresholds
	validate   *validator.Validate
}

// NewEngine creates an Engine.
func NewEngine(resolver *catalog.Resolver, quotes *quote.Service, th compliance.Thresholds) *Engine {
	return &Engine{
		resolver:   resolver,
		quotes:     quotes,
		thresholds: th,
		validate:   validator.New(),
	}
}

func (e *Engine) check(input interface{}) error {
	if err := e.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// ExtractAttributes parses every name in the batch.
func (e *Engine) ExtractAttributes(in ExtractInput) (*ExtractResponse, error) {
	if err := e.check(in); err != nil {
		return nil, err
	}
	out := &ExtractResponse{Items: make([]ExtractedName, 0, len(in.Names))}
	for _, name := range in.Names {
		out.Items = append(out.Items, ExtractedName{
			Name:       name,
			Normalized: extract.Normalize(name),
			Attributes: extract.Extract(name),
		})
	}
	return out, nil
}

// Search ranks catalog records for a term. Limits outside 1..100 are clamped.
func (e *Engine) Search(term string, limit int) (*SearchResponse, error) {
	if term == "" {
		return nil, fmt.Errorf("%w: query parameter q is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	return &SearchResponse{Query: term, Candidates: e.resolver.Search(term, limit)}, nil
}

// Record looks up one catalog record by ID.
func (e *Engine) Record(id string) (*domain.CatalogRecord, bool) {
	return e.resolver.Index().ByID(id)
}

// ResolveItems resolves requests against the catalog without validating them.
func (e *Engine) ResolveItems(in ResolveInput) (*ResolveResponse, error) {
	if err := e.check(in); err != nil {
		return nil, err
	}
	suggestions := in.Suggestions
	if len(suggestions) == 0 {
		if in.AIResponse == "" {
			return nil, quote.ErrNoSuggestions
		}
		parsed, err := quote.ParseSuggestions(in.AIResponse)
		if err != nil {
			return nil, err
		}
		suggestions = parsed
	}
	items := e.resolver.ResolveAll(suggestions)
	out := &ResolveResponse{Items: items}
	for _, it := range items {
		if it.Matched() {
			out.Matched++
		} else {
			out.Unmatched++
		}
	}
	return out, nil
}

// ValidateQuote runs the compliance and sanity rules over resolved items.
func (e *Engine) ValidateQuote(in ValidateInput) (*ValidateResponse, error) {
	if err := e.check(in); err != nil {
		return nil, err
	}
	opts := []compliance.Option{compliance.WithThresholds(e.thresholds)}
	if in.JoistSpanM > 0 {
		opts = append(opts, compliance.WithJoistSpan(in.JoistSpanM))
	}
	report := compliance.Validate(in.Items, in.JobType, opts...)
	return &ValidateResponse{
		Findings:    report.Findings,
		Errors:      len(report.Errors()),
		Warnings:    len(report.Warnings()),
		Finalizable: !report.Blocking(),
	}, nil
}

// BuildQuote resolves, sizes, validates and totals a quote.
func (e *Engine) BuildQuote(ctx context.Context, in QuoteInput) (*quote.Quote, error) {
	if err := e.check(in); err != nil {
		return nil, err
	}
	return e.quotes.Build(ctx, quote.Request{
		JobType:     in.JobType,
		Suggestions: in.Suggestions,
		AIResponse:  in.AIResponse,
		Labour:      in.Labour,
		Geometry:    in.Geometry,
	})
}

// SizeDeck sizes deck members from its geometry.
func (e *Engine) SizeDeck(g structural.Geometry) (*domain.SpanResult, error) {
	res, err := structural.SizeDeck(g)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// isCallerError reports whether err was caused by the request rather than the service.
func isCallerError(err error) bool {
	for _, target := range []error{
		ErrInvalidInput,
		quote.ErrNoSuggestions,
		quote.ErrMalformedAIResponse,
		quote.ErrInvalidLabour,
		structural.ErrMissingDimension,
		structural.ErrInvalidGeometry,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
