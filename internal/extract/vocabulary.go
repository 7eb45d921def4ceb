package extract

import (
	"regexp"

	"materials-quote-service/internal/domain"
)

// term is one entry of a closed vocabulary: a whole-word pattern and the
// canonical value it stands for. Vocabularies are scanned in order.
type term struct {
	re    *regexp.Regexp
	value string
}

func terms(pairs ...string) []term {
	out := make([]term, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, term{re: regexp.MustCompile(`\b(?:` + pairs[i] + `)\b`), value: pairs[i+1]})
	}
	return out
}

func firstTerm(s string, vocab []term) *string {
	for _, t := range vocab {
		if t.re.MatchString(s) {
			v := t.value
			return &v
		}
	}
	return nil
}

var grades = terms(
	`MSG6`, "MSG6",
	`MSG8`, "MSG8",
	`MGP10`, "MGP10",
	`MGP12`, "MGP12",
	`SG6`, "SG6",
	`SG8`, "SG8",
	`SG10`, "SG10",
)

var species = terms(
	`RADIATA|RAD`, "Radiata",
	`DOUGLAS\s+FIR|DOUG\s+FIR|DOUGFIR|DF|OREGON`, "Douglas Fir",
	`WESTERN\s+RED\s+CEDAR|WRC|CEDAR`, "Cedar",
	`MACROCARPA|MACRO`, "Macrocarpa",
	`KWILA|MERBAU`, "Kwila",
	`VITEX`, "Vitex",
	`LARCH`, "Larch",
	`HARDWOOD|HWD`, "Hardwood",
	`PINE`, "Pine",
)

var finishes = terms(
	`KD|KILN\s+DRIED`, "KD",
	`DAR|DRESSED`, "DAR",
	`RS|RGH|ROUGH\s+SAWN`, "RS",
	`PGB`, "PGB",
	`PRIMED|PRE-PRIMED|PREPRIMED`, "Primed",
	`GAUGED`, "Gauged",
)

var fixingMaterials = terms(
	`316|SS316|S/S\s*316`, "stainless 316",
	`STAINLESS|SS|S/S|304`, "stainless",
	`HOT\s+DIP\s+GALV\w*|HDG`, "hot-dip galvanised",
	`GALV\w*`, "galvanised",
	`SILICON\s+BRONZE`, "silicon bronze",
	`ZINC|ZP|ZN`, "zinc plated",
	`BRIGHT`, "bright",
)

var liningVariants = terms(
	`AQUALINE|AQUA|WR|WATER\s+RESISTANT|MOISTURE\w*|WET\s+AREA|VILLABOARD|HARDIEBACKER`, domain.LiningMoisture,
	`FIRELINE|FIRE\w*`, domain.LiningFire,
	`NOISELINE|ACOUSTIC`, domain.LiningAcoustic,
	`BRACELINE|BRACE|BRACING`, domain.LiningBracing,
	`TOUGHLINE|ULTRALINE|IMPACT`, domain.LiningImpact,
	`STANDARD|REGULAR|WALLBOARD|GIBBOARD`, domain.LiningStandard,
)

// naturallyDurable species need no preservative treatment above ground.
var naturallyDurable = map[string]bool{
	"Kwila": true,
	"Cedar": true,
	"Vitex": true,
	"Larch": true,
}

// NaturallyDurable reports whether the species is durable without treatment.
func NaturallyDurable(species *string) bool {
	return species != nil && naturallyDurable[*species]
}
