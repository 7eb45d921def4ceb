package structural

import (
	"materials-quote-service/internal/domain"
)

// EngineeredSize is the size label emitted when a span or height is beyond
// the tabulated range and a specific engineering design is needed.
const EngineeredSize = "SED"

// spanEpsilon absorbs float noise so that a value on a bracket edge
// (3.6 computed as 7.2/2, say) stays in that bracket.
const spanEpsilon = 1e-9

// bracket is one row of a span table: members spanning up to upTo take size.
type bracket struct {
	upTo    float64
	size    string
	width   int
	depth   int
	doubled bool
}

// Bearer sizes keyed by bearer span (post spacing), metres.
var bearerTable = []bracket{
	{upTo: 1.8, size: "140x70", width: 140, depth: 70},
	{upTo: 2.4, size: "190x70", width: 190, depth: 70},
	{upTo: 3.0, size: "240x70", width: 240, depth: 70},
	{upTo: 3.6, size: "240x70", width: 240, depth: 70, doubled: true},
}

// Joist sizes keyed by joist span, metres, at 450 mm centres.
var joistTable = []bracket{
	{upTo: 2.0, size: "140x45", width: 140, depth: 45},
	{upTo: 2.6, size: "190x45", width: 190, depth: 45},
	{upTo: 3.6, size: "240x45", width: 240, depth: 45},
	{upTo: 4.2, size: "290x45", width: 290, depth: 45},
}

// Post sizes keyed by deck height, millimetres.
var postTable = []bracket{
	{upTo: 1200, size: "125x125", width: 125, depth: 125},
	{upTo: 2400, size: "150x150", width: 150, depth: 150},
	{upTo: 3000, size: "200x200", width: 200, depth: 200},
}

// lookup returns the position of the first bracket that covers v, or
// len(table) when v is beyond every row.
func lookup(table []bracket, v float64) int {
	for i, b := range table {
		if v <= b.upTo+spanEpsilon {
			return i
		}
	}
	return len(table)
}

// JoistCategory is the joist table row chosen for a span. Larger categories
// are larger members; a span beyond the table returns the row count.
func JoistCategory(spanM float64) int {
	return lookup(joistTable, spanM)
}

// JoistSizeFor returns the joist size label for a span and whether the span
// is within the table.
func JoistSizeFor(spanM float64) (string, bool) {
	i := lookup(joistTable, spanM)
	if i == len(joistTable) {
		return EngineeredSize, false
	}
	return joistTable[i].size, true
}

// MinJoistSection is the smallest joist section allowed for a span. A span of
// zero or less returns the smallest tabulated joist.
func MinJoistSection(spanM float64) (domain.TimberAttributes, bool) {
	i := 0
	if spanM > 0 {
		i = lookup(joistTable, spanM)
	}
	if i == len(joistTable) {
		return domain.TimberAttributes{}, false
	}
	return domain.TimberAttributes{Width: joistTable[i].width, Depth: joistTable[i].depth}, true
}

// MaxJoistSpan is the largest span the joist table covers, in metres.
func MaxJoistSpan() float64 {
	return joistTable[len(joistTable)-1].upTo
}
