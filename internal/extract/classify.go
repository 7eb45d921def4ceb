package extract

import (
	"regexp"

	"materials-quote-service/internal/domain"
)

type typeRule struct {
	re  *regexp.Regexp
	typ domain.MaterialType
}

func rule(pattern string, t domain.MaterialType) typeRule {
	return typeRule{re: regexp.MustCompile(`\b(?:` + pattern + `)\b`), typ: t}
}

// typeRules is evaluated top to bottom and the first match wins. The most
// specific phrases come first: "JOIST HANGER" must never reach the joist rule,
// "DECKING OIL" must never reach decking, "POSTMIX" must never reach post.
var typeRules = []typeRule{
	rule(`LABOU?R|INSTALL\s+LABOU?R`, domain.TypeLabour),
	rule(`JOIST\s+HANGERS?`, domain.TypeHardware),
	rule(`HANGERS?|BRACKETS?|STIRRUPS?|STRAPS?|STRAPPING|TIES?|CONNECTORS?|NAIL\s*PLATES?|`+
		`POST\s+(?:ANCHORS?|SHOES?|SUPPORTS?|BASES?)|CLEATS?|ANGLES?|HINGES?|LATCH(?:ES)?|`+
		`TRIP\s*L?\s*GRIPS?|TRIPLE\s+GRIPS?|GUSSETS?|BOWMAC|PYTHON`, domain.TypeHardware),
	rule(`ADHESIVE|GLUE|LIQUID\s+NAILS`, domain.TypeAdhesive),
	rule(`NAILS?|BRADS?|CLOUTS?|STAPLES?`, domain.TypeNail),
	rule(`SCREWS?|TEKS?|SCREWBOLTS?`, domain.TypeScrew),
	rule(`BOLTS?|DYNABOLTS?|ANCHORS?|WASHERS?|NUTS?|THREADED\s+RODS?|ROD`, domain.TypeBolt),
	rule(`SEALANT|SILICONE|CAULK|GAP\s+FILLER|FILLER|STOPPING|COMPOUND|FLASHING\s+TAPE`, domain.TypeSealant),
	rule(`PAINT|PRIMER|UNDERCOAT|SEALER|ENAMEL|LOW\s+SHEEN|SEMI\s+GLOSS`, domain.TypePaint),
	rule(`STAIN|DECKING\s+OIL|DECK\s+OIL|OIL|VARNISH|WOODCARE|PRESERVATIVE`, domain.TypeStain),
	rule(`(?:CONCRETE|PRECAST)\s+PILES?`, domain.TypePile),
	rule(`CONCRETE|CEMENT|MORTAR|POST\s*MIX|READY\s*MIX|GROUT|QUICKSET|RAPID\s+SET`, domain.TypeConcrete),
	rule(`INSULATION|BATTS?|POLYSTYRENE|UNDERFLOOR\s+FOIL`, domain.TypeInsulation),
	rule(`FENCE\s*POSTS?|GATE\s+POSTS?|STRAINERS?`, domain.TypeFencePost),
	rule(`PILES?`, domain.TypePile),
	rule(`POSTS?`, domain.TypePost),
	rule(`JOISTS?`, domain.TypeJoist),
	rule(`BEARERS?`, domain.TypeBearer),
	rule(`DECKING|DECK\s+BOARDS?|DECKBOARDS?`, domain.TypeDecking),
	rule(`PALINGS?`, domain.TypePaling),
	rule(`RAILS?`, domain.TypeRail),
	rule(`GIB|GIBBOARD|PLASTERBOARD|AQUALINE|FIRELINE|NOISELINE|BRACELINE|TOUGHLINE|ULTRALINE|WALLBOARD`, domain.TypePlasterboard),
	rule(`FIBRE\s+CEMENT|HARDIFLEX|HARDIES|VILLABOARD|HARDIEBACKER|RAB\s+BOARD|TITAN\s+BOARD`, domain.TypeFibreCement),
	rule(`PLY|PLYWOOD|ECOPLY`, domain.TypePlywood),
	rule(`STUDS?|PLATES?|NOGS?|NOGGINGS?|DWANGS?|RAFTERS?|PURLINS?|BATTENS?|LINTELS?|FRAMING|TIMBER|`+
		`HANDRAILS?|CLADDING|WEATHERBOARDS?|FASCIA|BARGE|BALUSTERS?|TOP\s+PLATE`, domain.TypeFraming),
}

// Classify returns the material type of a product name.
func Classify(name string) domain.MaterialType {
	s := Normalize(name)
	_, hasSection := crossSection(s)
	return classify(s, hasSection)
}

func classify(s string, hasCrossSection bool) domain.MaterialType {
	for _, r := range typeRules {
		if r.re.MatchString(s) {
			return r.typ
		}
	}
	// A bare WxD token is dimensional timber.
	if hasCrossSection {
		return domain.TypeFraming
	}
	return domain.TypeOther
}

// SearchKeyword is the coarse catalog keyword for a type, used when an
// unmatched request needs a refinement hint. It is empty for TypeOther.
func SearchKeyword(t domain.MaterialType) string {
	switch t {
	case domain.TypeDecking:
		return "decking"
	case domain.TypeFencePost, domain.TypePaling, domain.TypeRail:
		return "fencing"
	case domain.TypePile:
		return "piles"
	case domain.TypePlasterboard:
		return "gib"
	case domain.TypeFibreCement:
		return "fibre cement"
	case domain.TypePlywood:
		return "plywood"
	case domain.TypePaint:
		return "paint"
	case domain.TypeStain:
		return "stain"
	case domain.TypeSealant:
		return "sealant"
	}
	switch t.Family() {
	case domain.FamilyFraming:
		return "framing"
	case domain.FamilyFixing:
		return "hardware"
	case domain.FamilyConcrete:
		return "concrete"
	case domain.FamilyInsulation:
		return "insulation"
	case domain.FamilyLabour:
		return "labour"
	}
	return ""
}
