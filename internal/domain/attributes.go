package domain

// MaterialType classifies a catalog name. The set is closed.
type MaterialType string

const (
	TypeJoist        MaterialType = "joist"
	TypeBearer       MaterialType = "bearer"
	TypePost         MaterialType = "post"
	TypeFencePost    MaterialType = "fence_post"
	TypePile         MaterialType = "pile"
	TypeDecking      MaterialType = "decking"
	TypePaling       MaterialType = "paling"
	TypeRail         MaterialType = "rail"
	TypeFraming      MaterialType = "framing"
	TypePlasterboard MaterialType = "plasterboard"
	TypeFibreCement  MaterialType = "fibre_cement"
	TypePlywood      MaterialType = "plywood"
	TypeNail         MaterialType = "nail"
	TypeScrew        MaterialType = "screw"
	TypeBolt         MaterialType = "bolt"
	TypeHardware     MaterialType = "hardware"
	TypeAdhesive     MaterialType = "adhesive"
	TypePaint        MaterialType = "paint"
	TypeStain        MaterialType = "stain"
	TypeSealant      MaterialType = "sealant"
	TypeConcrete     MaterialType = "concrete"
	TypeInsulation   MaterialType = "insulation"
	TypeLabour       MaterialType = "labour"
	TypeOther        MaterialType = "other"
)

// Family groups material types that share an attribute group.
type Family string

const (
	FamilyFraming    Family = "framing"
	FamilySheet      Family = "sheet"
	FamilyFixing     Family = "fixing"
	FamilyFinish     Family = "finish"
	FamilyInsulation Family = "insulation"
	FamilyConcrete   Family = "concrete"
	FamilyLabour     Family = "labour"
	FamilyOther      Family = "other"
)

var typeFamilies = map[MaterialType]Family{
	TypeJoist:        FamilyFraming,
	TypeBearer:       FamilyFraming,
	TypePost:         FamilyFraming,
	TypeFencePost:    FamilyFraming,
	TypePile:         FamilyFraming,
	TypeDecking:      FamilyFraming,
	TypePaling:       FamilyFraming,
	TypeRail:         FamilyFraming,
	TypeFraming:      FamilyFraming,
	TypePlasterboard: FamilySheet,
	TypeFibreCement:  FamilySheet,
	TypePlywood:      FamilySheet,
	TypeNail:         FamilyFixing,
	TypeScrew:        FamilyFixing,
	TypeBolt:         FamilyFixing,
	TypeHardware:     FamilyFixing,
	TypeAdhesive:     FamilyFixing,
	TypePaint:        FamilyFinish,
	TypeStain:        FamilyFinish,
	TypeSealant:      FamilyFinish,
	TypeConcrete:     FamilyConcrete,
	TypeInsulation:   FamilyInsulation,
	TypeLabour:       FamilyLabour,
}

// Family returns the attribute family the type belongs to.
func (t MaterialType) Family() Family {
	if f, ok := typeFamilies[t]; ok {
		return f
	}
	return FamilyOther
}

// InGround reports whether members of this type are set into the ground.
func (t MaterialType) InGround() bool {
	return t == TypePost || t == TypePile || t == TypeFencePost
}

// Treatment is an NZ timber hazard class.
type Treatment string

const (
	H12 Treatment = "H1.2"
	H31 Treatment = "H3.1"
	H32 Treatment = "H3.2"
	H4  Treatment = "H4"
	H5  Treatment = "H5"
	H6  Treatment = "H6"
)

var treatmentRank = map[Treatment]int{H12: 1, H31: 2, H32: 3, H4: 4, H5: 5, H6: 6}

// ParseTreatment accepts only the closed set of valid codes.
func ParseTreatment(code string) (Treatment, bool) {
	t := Treatment(code)
	_, ok := treatmentRank[t]
	return t, ok
}

// Rank orders treatments by permitted exposure; unknown codes rank 0.
func (t Treatment) Rank() int {
	return treatmentRank[t]
}

// Lining variants for plasterboard and fibre-cement sheets.
const (
	LiningStandard = "standard"
	LiningMoisture = "moisture"
	LiningFire     = "fire"
	LiningAcoustic = "acoustic"
	LiningBracing  = "bracing"
	LiningImpact   = "impact"
)

// TimberAttributes is the cross-section of a framing member in millimetres.
type TimberAttributes struct {
	Width int `json:"width"`
	Depth int `json:"depth"`
}

// SheetAttributes holds sheet dimensions in millimetres.
type SheetAttributes struct {
	Width     *int     `json:"width,omitempty"`
	Height    *int     `json:"height,omitempty"`
	Thickness *float64 `json:"thickness,omitempty"`
	Lining    *string  `json:"lining,omitempty"`
}

// FixingAttributes holds nail, screw, bolt and hardware details.
type FixingAttributes struct {
	Gauge    *string `json:"gauge,omitempty"`
	LengthMM *int    `json:"length_mm,omitempty"`
	Material *string `json:"material,omitempty"`
	PackSize *int    `json:"pack_size,omitempty"`
}

// InsulationAttributes holds the thermal rating.
type InsulationAttributes struct {
	RValue *float64 `json:"r_value,omitempty"`
}

// ParsedAttributes are the structured facts extracted from a display name.
// Absent facts are nil. Only the group owned by Type's family is ever set.
type ParsedAttributes struct {
	Type           MaterialType `json:"type"`
	LengthMM       *int         `json:"length_mm,omitempty"`
	LengthDisplay  *string      `json:"length_display,omitempty"`
	VariableLength bool         `json:"variable_length,omitempty"`
	Treatment      *Treatment   `json:"treatment,omitempty"`
	Grade          *string      `json:"grade,omitempty"`
	Species        *string      `json:"species,omitempty"`
	Finish         *string      `json:"finish,omitempty"`

	Timber     *TimberAttributes     `json:"timber,omitempty"`
	Sheet      *SheetAttributes      `json:"sheet,omitempty"`
	Fixing     *FixingAttributes     `json:"fixing,omitempty"`
	Insulation *InsulationAttributes `json:"insulation,omitempty"`
}

// TreatmentCode returns the treatment or "" when absent.
func (a ParsedAttributes) TreatmentCode() Treatment {
	if a.Treatment == nil {
		return ""
	}
	return *a.Treatment
}
