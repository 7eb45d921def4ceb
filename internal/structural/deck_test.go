package structural

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeDeck_LowSmallDeck(t *testing.T) {
	res, err := SizeDeck(Geometry{LengthM: 6, WidthM: 4, PostSpacingM: 1.8, HeightMM: 600})
	require.NoError(t, err)

	assert.Equal(t, "140x70", res.BearerSize)
	assert.False(t, res.BearerDoubled)
	assert.Equal(t, 450, res.JoistSpacingMM)
	assert.Equal(t, 2.0, res.JoistSpanM)
	assert.Equal(t, "140x45", res.JoistSize)
	assert.Equal(t, "125x125", res.PostSize)
	assert.Equal(t, FoundationAdjustable, res.FoundationType)
	assert.Equal(t, 3, res.BearerLines)
	assert.Equal(t, 15, res.PostCount)
	assert.Equal(t, 24.0, res.AreaM2)
	assert.Contains(t, res.ComplianceNotes, NoteExemption)
	assert.NotContains(t, res.ComplianceNotes, NoteConsent)
	assert.NotContains(t, res.ComplianceNotes, NoteBarrier)
	assert.Empty(t, res.Warnings)
}

func TestSizeDeck_Defaults(t *testing.T) {
	res, err := SizeDeck(Geometry{LengthM: 3, WidthM: 2})
	require.NoError(t, err)
	assert.Equal(t, DefaultPostSpacingM, res.BearerSpanM)
	assert.Equal(t, StandardJoistSpacingMM, res.JoistSpacingMM)
	assert.Equal(t, 0.0, res.HeightMM)
	assert.Equal(t, FoundationAdjustable, res.FoundationType)
}

func TestSizeDeck_JoistBracketEdges(t *testing.T) {
	tests := []struct {
		span float64
		want string
	}{
		{2.0, "140x45"},
		{2.1, "190x45"},
		{2.6, "190x45"},
		{3.6, "240x45"},
		{3.7, "290x45"},
		{4.2, "290x45"},
	}
	for _, tt := range tests {
		res, err := SizeDeck(Geometry{LengthM: 5, WidthM: tt.span, JoistSpanM: tt.span})
		require.NoError(t, err)
		assert.Equal(t, tt.want, res.JoistSize, "span %.1f", tt.span)
		assert.Empty(t, res.Warnings, "span %.1f", tt.span)
	}
}

func TestSizeDeck_BeyondTablesNeedsEngineering(t *testing.T) {
	res, err := SizeDeck(Geometry{LengthM: 8, WidthM: 4.5, JoistSpanM: 4.5, PostSpacingM: 3.8, HeightMM: 3200})
	require.NoError(t, err)

	assert.Equal(t, EngineeredSize, res.JoistSize)
	assert.Equal(t, EngineeredSize, res.BearerSize)
	assert.Equal(t, EngineeredSize, res.PostSize)
	require.Len(t, res.Warnings, 3)
	for _, w := range res.Warnings {
		assert.Contains(t, w, "engineered member required")
	}
	assert.Equal(t, FoundationEmbedded, res.FoundationType)
	assert.Contains(t, res.ComplianceNotes, NoteBarrier)
	assert.Contains(t, res.ComplianceNotes, NoteConsent)
	assert.NotContains(t, res.ComplianceNotes, NoteExemption)
}

func TestSizeDeck_BearerDoubledAtTopBracket(t *testing.T) {
	res, err := SizeDeck(Geometry{LengthM: 7.2, WidthM: 3, PostSpacingM: 3.6})
	require.NoError(t, err)
	assert.Equal(t, "240x70", res.BearerSize)
	assert.True(t, res.BearerDoubled)
}

func TestSizeDeck_PostHeightBands(t *testing.T) {
	tests := []struct {
		height float64
		want   string
	}{
		{1200, "125x125"},
		{1201, "150x150"},
		{2400, "150x150"},
		{3000, "200x200"},
	}
	for _, tt := range tests {
		res, err := SizeDeck(Geometry{LengthM: 3, WidthM: 3, HeightMM: tt.height})
		require.NoError(t, err)
		assert.Equal(t, tt.want, res.PostSize, "height %.0f", tt.height)
	}
}

func TestSizeDeck_ConsentByArea(t *testing.T) {
	res, err := SizeDeck(Geometry{LengthM: 6, WidthM: 5.2, HeightMM: 400})
	require.NoError(t, err)
	assert.Contains(t, res.ComplianceNotes, NoteConsent)
	assert.NotContains(t, res.ComplianceNotes, NoteExemption)
}

func TestSizeDeck_ConsentAreaBoundary(t *testing.T) {
	atLimit, err := SizeDeck(Geometry{LengthM: 6, WidthM: 5, HeightMM: 400})
	require.NoError(t, err)
	assert.Contains(t, atLimit.ComplianceNotes, NoteExemption)

	// 6 x 5.0007 = 30.0042 m², shown as 30.00 but over the limit.
	over, err := SizeDeck(Geometry{LengthM: 6, WidthM: 5.0007, HeightMM: 400})
	require.NoError(t, err)
	assert.Equal(t, 30.0, over.AreaM2)
	assert.Contains(t, over.ComplianceNotes, NoteConsent)
	assert.NotContains(t, over.ComplianceNotes, NoteExemption)
}

func TestSizeDeck_BarrierWithoutConsent(t *testing.T) {
	res, err := SizeDeck(Geometry{LengthM: 4, WidthM: 3, HeightMM: 1000})
	require.NoError(t, err)
	assert.Contains(t, res.ComplianceNotes, NoteBarrier)
	assert.Contains(t, res.ComplianceNotes, NoteExemption)
	assert.Equal(t, FoundationEmbedded, res.FoundationType)
}

func TestSizeDeck_ThinDeckingTightensSpacing(t *testing.T) {
	res, err := SizeDeck(Geometry{LengthM: 4, WidthM: 3, DeckingThicknessMM: 19})
	require.NoError(t, err)
	assert.Equal(t, ThinDeckJoistSpacingMM, res.JoistSpacingMM)
	assert.Contains(t, res.ComplianceNotes, NoteThinDeck)
}

func TestSizeDeck_InvalidGeometry(t *testing.T) {
	_, err := SizeDeck(Geometry{WidthM: 3})
	assert.ErrorIs(t, err, ErrMissingDimension)

	_, err = SizeDeck(Geometry{LengthM: 3})
	assert.ErrorIs(t, err, ErrMissingDimension)

	_, err = SizeDeck(Geometry{LengthM: 3, WidthM: -2})
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	_, err = SizeDeck(Geometry{LengthM: 3, WidthM: 2, HeightMM: math.NaN()})
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	_, err = SizeDeck(Geometry{LengthM: math.Inf(1), WidthM: 2})
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestMinJoistSection(t *testing.T) {
	sec, ok := MinJoistSection(0)
	require.True(t, ok)
	assert.Equal(t, 140, sec.Width)
	assert.Equal(t, 45, sec.Depth)

	sec, ok = MinJoistSection(3.0)
	require.True(t, ok)
	assert.Equal(t, 240, sec.Width)

	_, ok = MinJoistSection(5)
	assert.False(t, ok)
}

func TestJoistSizeMonotonic(t *testing.T) {
	rank := map[string]int{EngineeredSize: len(joistTable)}
	for i, b := range joistTable {
		rank[b.size] = i
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("a longer joist span never picks a smaller joist", prop.ForAll(
		func(span, extra, spacing float64) bool {
			a, errA := SizeDeck(Geometry{LengthM: 6, WidthM: span, JoistSpanM: span, PostSpacingM: spacing})
			b, errB := SizeDeck(Geometry{LengthM: 6, WidthM: span + extra, JoistSpanM: span + extra, PostSpacingM: spacing})
			if errA != nil || errB != nil {
				return false
			}
			return rank[a.JoistSize] <= rank[b.JoistSize]
		},
		gen.Float64Range(0.3, 5),
		gen.Float64Range(0, 2),
		gen.Float64Range(0.9, 3.6),
	))

	properties.TestingRun(t)
}
