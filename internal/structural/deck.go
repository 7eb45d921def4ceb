// Package structural sizes deck bearers, joists, posts and footings from
// NZS 3604 style span tables.
package structural

import (
	"errors"
	"fmt"
	"math"

	"materials-quote-service/internal/domain"
)

var (
	ErrMissingDimension = errors.New("structural: deck length and width are required")
	ErrInvalidGeometry  = errors.New("structural: geometry values must be finite and not negative")
)

const (
	DefaultPostSpacingM = 1.8
	DefaultDeckingMM    = 32.0
	MaxBaySpanM         = 2.4

	StandardJoistSpacingMM = 450
	ThinDeckJoistSpacingMM = 400

	AdjustableFootingMaxMM = 1000.0
	BarrierHeightMM        = 1000.0
	ConsentHeightMM        = 1500.0
	ConsentAreaM2          = 30.0
)

const (
	FoundationAdjustable = "adjustable footing permitted"
	FoundationEmbedded   = "embedded concrete footing required"
)

const (
	NoteBarrier   = "Deck is 1 m or more above ground: a handrail/balustrade is required (NZBC F4)."
	NoteConsent   = "Building consent likely required: height over 1.5 m or area over 30 m²."
	NoteExemption = "Building consent exemption likely applies (Schedule 1): under 1.5 m high and 30 m² or less."
	NoteThinDeck  = "Decking thinner than 32 mm: joists at 400 mm centres to limit board deflection."
)

// Geometry describes a deck. Lengths are metres, height and decking
// thickness millimetres. Zero optional fields take the NZ defaults.
type Geometry struct {
	LengthM            float64 `json:"length"`
	WidthM             float64 `json:"width"`
	PostSpacingM       float64 `json:"post_spacing,omitempty"`
	JoistSpanM         float64 `json:"joist_span,omitempty"`
	HeightMM           float64 `json:"height,omitempty"`
	DeckingThicknessMM float64 `json:"decking_thickness,omitempty"`
}

func (g Geometry) check() error {
	for _, v := range []float64{g.LengthM, g.WidthM, g.PostSpacingM, g.JoistSpanM, g.HeightMM, g.DeckingThicknessMM} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return ErrInvalidGeometry
		}
	}
	if g.LengthM == 0 || g.WidthM == 0 {
		return ErrMissingDimension
	}
	return nil
}

func (g Geometry) withDefaults() Geometry {
	if g.PostSpacingM == 0 {
		g.PostSpacingM = DefaultPostSpacingM
	}
	if g.DeckingThicknessMM == 0 {
		g.DeckingThicknessMM = DefaultDeckingMM
	}
	return g
}

// SizeDeck picks member sizes for a deck. Joists span the width between
// bearer lines and bearers span between posts along the length.
func SizeDeck(g Geometry) (domain.SpanResult, error) {
	if err := g.check(); err != nil {
		return domain.SpanResult{}, err
	}
	g = g.withDefaults()

	area := g.LengthM * g.WidthM
	res := domain.SpanResult{
		AreaM2:          round2(area),
		HeightMM:        g.HeightMM,
		ComplianceNotes: []string{},
		Warnings:        []string{},
	}

	bays, joistSpan := joistBays(g)
	res.BearerLines = bays + 1
	res.JoistSpanM = round2(joistSpan)
	res.BearerSpanM = round2(g.PostSpacingM)

	if i := lookup(bearerTable, g.PostSpacingM); i < len(bearerTable) {
		res.BearerSize = bearerTable[i].size
		res.BearerDoubled = bearerTable[i].doubled
	} else {
		res.BearerSize = EngineeredSize
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"Bearer span %.2f m exceeds standard tables: engineered member required.", g.PostSpacingM))
	}

	size, ok := JoistSizeFor(joistSpan)
	res.JoistSize = size
	if !ok {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"Joist span %.2f m exceeds standard tables: engineered member required.", joistSpan))
	}
	res.JoistSpacingMM = StandardJoistSpacingMM
	if g.DeckingThicknessMM < DefaultDeckingMM {
		res.JoistSpacingMM = ThinDeckJoistSpacingMM
		res.ComplianceNotes = append(res.ComplianceNotes, NoteThinDeck)
	}

	if i := lookup(postTable, g.HeightMM); i < len(postTable) {
		res.PostSize = postTable[i].size
	} else {
		res.PostSize = EngineeredSize
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"Post height %.0f mm exceeds standard tables: engineered member required.", g.HeightMM))
	}
	postsPerLine := int(math.Ceil(g.LengthM/g.PostSpacingM-spanEpsilon)) + 1
	res.PostCount = postsPerLine * res.BearerLines

	if g.HeightMM < AdjustableFootingMaxMM {
		res.FoundationType = FoundationAdjustable
	} else {
		res.FoundationType = FoundationEmbedded
	}

	if g.HeightMM >= BarrierHeightMM {
		res.ComplianceNotes = append(res.ComplianceNotes, NoteBarrier)
	}
	if g.HeightMM > ConsentHeightMM || area > ConsentAreaM2+spanEpsilon {
		res.ComplianceNotes = append(res.ComplianceNotes, NoteConsent)
	} else {
		res.ComplianceNotes = append(res.ComplianceNotes, NoteExemption)
	}
	return res, nil
}

// joistBays splits the width into equal bays. A caller-supplied joist span
// sets the bay width; otherwise bays are no wider than MaxBaySpanM.
func joistBays(g Geometry) (int, float64) {
	bayLimit := MaxBaySpanM
	if g.JoistSpanM > 0 {
		bayLimit = g.JoistSpanM
	}
	bays := int(math.Ceil(g.WidthM/bayLimit - spanEpsilon))
	if bays < 1 {
		bays = 1
	}
	if g.JoistSpanM > 0 {
		return bays, g.JoistSpanM
	}
	return bays, g.WidthM / float64(bays)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
