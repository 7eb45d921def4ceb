package domain

// SpanResult is the member sizing for one deck geometry.
type SpanResult struct {
	BearerSize      string   `json:"bearer_size"`
	BearerDoubled   bool     `json:"bearer_doubled"`
	BearerSpanM     float64  `json:"bearer_span_m"`
	BearerLines     int      `json:"bearer_lines"`
	JoistSize       string   `json:"joist_size"`
	JoistSpanM      float64  `json:"joist_span_m"`
	JoistSpacingMM  int      `json:"joist_spacing_mm"`
	PostSize        string   `json:"post_size"`
	PostCount       int      `json:"post_count"`
	FoundationType  string   `json:"foundation_type"`
	AreaM2          float64  `json:"area_m2"`
	HeightMM        float64  `json:"height_mm"`
	ComplianceNotes []string `json:"compliance_notes"`
	Warnings        []string `json:"warnings"`
}
