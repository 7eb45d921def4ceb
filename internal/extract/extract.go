// Package extract parses supplier product names into structured attributes.
//
// Extraction never fails. A pattern that does not match leaves its field nil,
// and a name with nothing recognisable yields TypeOther with every other field
// nil. All functions are pure and safe for concurrent use.
package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"materials-quote-service/internal/domain"
)

const (
	minSectionMM = 20
	maxSectionMM = 300
	minSheetMM   = 1000
	minLengthMM  = 300
	maxLengthMM  = 12000
	maxLengthM   = 12.0
	minRValue    = 0.5
	maxRValue    = 8.0
)

var (
	dimSeparator = regexp.MustCompile(`(\d)\s*(?:MM)?\s*[X×\*]\s*(\d)`)

	// A section may be followed by a length: 90X45X2.4M or 140X45X4800.
	crossSectionRe = regexp.MustCompile(`\b(\d{2,3})X(\d{2,3})(?:MM)?(?:X|\b)`)
	sectionMetreRe = regexp.MustCompile(`\b\d{2,3}X\d{2,3}(?:MM)?X(\d{1,2}(?:\.\d{1,3})?)\s*M\b`)
	sheetRe        = regexp.MustCompile(`\b(\d{3,4})X(\d{3,4})(?:X(\d{1,2}(?:\.\d{1,2})?))?(?:MM)?\b`)
	thicknessRe    = regexp.MustCompile(`\b(\d{1,2}(?:\.\d)?)\s*MM\b`)

	metreRe      = regexp.MustCompile(`(?:^|[^\w.])(\d{1,2}(?:\.\d{1,3})?)\s*M\b`)
	millimetreRe = regexp.MustCompile(`\b(\d{3,5})\s*(?:MM)?\b`)
	emsRe        = regexp.MustCompile(`\bEMS\b`)

	treatmentRe = regexp.MustCompile(`\bH(\d)(?:\.(\d))?\b`)
	rValueRe    = regexp.MustCompile(`\bR(\d(?:\.\d{1,2})?)\b`)

	nailDimRe    = regexp.MustCompile(`\b(\d{2,3})X(\d(?:\.\d{1,2})?)(?:MM)?\b`)
	boltRe       = regexp.MustCompile(`\bM(\d{1,2})(?:X(\d{2,3}))?\b`)
	screwGaugeRe = regexp.MustCompile(`\b(\d{1,2})\s*(?:G|GA|GAUGE)\b`)
	fixLengthRe  = regexp.MustCompile(`\b(\d{2,3})\s*MM\b`)
	packBeforeRe = regexp.MustCompile(`\b(?:BOX|PACK|PK|PKT|TUB|BAG|CTN)\s*(?:OF\s*)?(\d{1,5})\b`)
	packAfterRe  = regexp.MustCompile(`\b(\d{1,5})\s*(?:PK|PACK|PKT|PCS|PC|PIECES|BOX)\b`)
)

// Normalize upper-cases a name and collapses dimension separators so that
// "140 x 45", "140×45" and "140*45" all read "140X45".
func Normalize(name string) string {
	s := strings.ToUpper(strings.TrimSpace(name))
	return dimSeparator.ReplaceAllString(s, "${1}X${2}")
}

// Extract parses a product name. Calling it twice on the same name yields
// equal results.
func Extract(name string) domain.ParsedAttributes {
	s := Normalize(name)
	section, hasSection := crossSection(s)

	attrs := domain.ParsedAttributes{Type: classify(s, hasSection)}
	attrs.Treatment = treatment(s)
	attrs.Grade = firstTerm(s, grades)
	attrs.Species = firstTerm(s, species)
	attrs.Finish = firstTerm(s, finishes)
	applyLength(s, &attrs)

	switch attrs.Type.Family() {
	case domain.FamilyFraming:
		if hasSection {
			attrs.Timber = &section
		}
	case domain.FamilySheet:
		attrs.Sheet = sheetAttributes(s, attrs.Type)
	case domain.FamilyFixing:
		attrs.Fixing = fixingAttributes(s)
	case domain.FamilyInsulation:
		if r := rValue(s); r != nil {
			attrs.Insulation = &domain.InsulationAttributes{RValue: r}
		}
	}
	return attrs
}

// CrossSection returns the WxD section of a name regardless of its type.
func CrossSection(name string) (domain.TimberAttributes, bool) {
	return crossSection(Normalize(name))
}

// DimensionToken returns the cross-section or sheet size as a search token
// such as "140x45" or "2400x1200", or "" when the name has neither.
func DimensionToken(name string) string {
	s := Normalize(name)
	if sec, ok := crossSection(s); ok {
		return strconv.Itoa(sec.Width) + "x" + strconv.Itoa(sec.Depth)
	}
	if m := sheetMatch(s); m != nil {
		return m[1] + "x" + m[2]
	}
	return ""
}

func crossSection(s string) (domain.TimberAttributes, bool) {
	for _, m := range crossSectionRe.FindAllStringSubmatch(s, -1) {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		lo, hi := min(a, b), max(a, b)
		if lo < minSectionMM || hi > maxSectionMM {
			continue
		}
		// Larger figure is width by NZ framing convention.
		return domain.TimberAttributes{Width: hi, Depth: lo}, true
	}
	return domain.TimberAttributes{}, false
}

func sheetMatch(s string) []string {
	for _, m := range sheetRe.FindAllStringSubmatch(s, -1) {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		if a >= minSheetMM || b >= minSheetMM {
			return m
		}
	}
	return nil
}

func sheetAttributes(s string, t domain.MaterialType) *domain.SheetAttributes {
	var out domain.SheetAttributes
	set := false
	if m := sheetMatch(s); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		w, h := min(a, b), max(a, b)
		out.Width, out.Height = &w, &h
		if m[3] != "" {
			if th, err := strconv.ParseFloat(m[3], 64); err == nil {
				out.Thickness = &th
			}
		}
		set = true
	}
	if out.Thickness == nil {
		if m := thicknessRe.FindStringSubmatch(s); m != nil {
			if th, err := strconv.ParseFloat(m[1], 64); err == nil {
				out.Thickness = &th
				set = true
			}
		}
	}
	out.Lining = firstTerm(s, liningVariants)
	if out.Lining == nil && t == domain.TypePlasterboard {
		std := domain.LiningStandard
		out.Lining = &std
	}
	if out.Lining != nil {
		set = true
	}
	if !set {
		return nil
	}
	return &out
}

func treatment(s string) *domain.Treatment {
	for _, m := range treatmentRe.FindAllStringSubmatch(s, -1) {
		code := "H" + m[1]
		if m[2] != "" {
			code += "." + m[2]
		}
		if t, ok := domain.ParseTreatment(code); ok {
			return &t
		}
	}
	return nil
}

func applyLength(s string, attrs *domain.ParsedAttributes) {
	if emsRe.MatchString(s) {
		attrs.VariableLength = true
		display := "EMS"
		attrs.LengthDisplay = &display
		return
	}
	metres := metreRe.FindAllStringSubmatch(s, -1)
	if m := sectionMetreRe.FindStringSubmatch(s); m != nil {
		metres = append([][]string{m}, metres...)
	}
	for _, m := range metres {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil || v <= 0 || v > maxLengthM {
			continue
		}
		setLength(attrs, int(math.Round(v*1000)))
		return
	}
	rest := stripDimensionTokens(s)
	for _, m := range millimetreRe.FindAllStringSubmatch(rest, -1) {
		mm, _ := strconv.Atoi(m[1])
		if mm < minLengthMM || mm > maxLengthMM {
			continue
		}
		setLength(attrs, mm)
		return
	}
}

func setLength(attrs *domain.ParsedAttributes, mm int) {
	display := strconv.FormatFloat(float64(mm)/1000, 'f', -1, 64) + "m"
	attrs.LengthMM = &mm
	attrs.LengthDisplay = &display
}

// stripDimensionTokens blanks out every token whose digits belong to some
// other attribute, so the bare-millimetre length rule cannot pick them up.
func stripDimensionTokens(s string) string {
	for _, re := range []*regexp.Regexp{sheetRe, crossSectionRe, nailDimRe, boltRe, packBeforeRe, packAfterRe} {
		s = re.ReplaceAllString(s, " ")
	}
	return s
}

func fixingAttributes(s string) *domain.FixingAttributes {
	var out domain.FixingAttributes
	set := false
	if m := boltRe.FindStringSubmatch(s); m != nil {
		g := "M" + m[1]
		out.Gauge = &g
		if m[2] != "" {
			l, _ := strconv.Atoi(m[2])
			out.LengthMM = &l
		}
		set = true
	} else if m := nailDimRe.FindStringSubmatch(s); m != nil {
		l, _ := strconv.Atoi(m[1])
		g := m[2] + "mm"
		out.LengthMM, out.Gauge = &l, &g
		set = true
	} else if m := screwGaugeRe.FindStringSubmatch(s); m != nil {
		g := m[1] + "g"
		out.Gauge = &g
		set = true
	}
	if out.LengthMM == nil {
		if m := fixLengthRe.FindStringSubmatch(s); m != nil {
			l, _ := strconv.Atoi(m[1])
			out.LengthMM = &l
			set = true
		}
	}
	if mat := firstTerm(s, fixingMaterials); mat != nil {
		out.Material = mat
		set = true
	}
	if p := packSize(s); p != nil {
		out.PackSize = p
		set = true
	}
	if !set {
		return nil
	}
	return &out
}

func packSize(s string) *int {
	for _, re := range []*regexp.Regexp{packBeforeRe, packAfterRe} {
		if m := re.FindStringSubmatch(s); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return &n
			}
		}
	}
	return nil
}

func rValue(s string) *float64 {
	m := rValueRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v < minRValue || v > maxRValue {
		return nil
	}
	return &v
}
