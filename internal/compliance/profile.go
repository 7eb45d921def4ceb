package compliance

import (
	"regexp"
	"strings"
)

// JobProfile is the rule subset a job-type label selects.
type JobProfile struct {
	Deck          bool `json:"deck"`
	GroundContact bool `json:"ground_contact"`
	Fence         bool `json:"fence"`
	WetArea       bool `json:"wet_area"`
	Exterior      bool `json:"exterior"`
}

func keywords(words ...string) *regexp.Regexp {
	return regexp.MustCompile(`\b(?:` + strings.Join(words, "|") + `)`)
}

var (
	deckWords     = keywords("deck", "boardwalk")
	groundWords   = keywords("deck", "boardwalk", "pergola", "carport", "retaining", "pile", "foundation")
	fenceWords    = keywords("fence", "fencing", "gate")
	wetAreaWords  = keywords("bathroom", "ensuite", "shower", "laundry", "wet")
	exteriorWords = keywords("deck", "boardwalk", "fence", "fencing", "gate", "pergola", "carport",
		"retaining", "exterior", "outdoor", "outside", "garden", "cladding")
)

// ProfileFor reads a free-text job type such as "deck" or "Bathroom reno".
func ProfileFor(jobType string) JobProfile {
	s := strings.ToLower(jobType)
	return JobProfile{
		Deck:          deckWords.MatchString(s),
		GroundContact: groundWords.MatchString(s),
		Fence:         fenceWords.MatchString(s),
		WetArea:       wetAreaWords.MatchString(s),
		Exterior:      exteriorWords.MatchString(s),
	}
}
