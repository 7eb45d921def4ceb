package quote

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"materials-quote-service/internal/domain"
)

var (
	ErrNoSuggestions       = errors.New("quote: no line items to resolve")
	ErrMalformedAIResponse = errors.New("quote: AI response has no parsable item list")
)

var codeFence = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")

// listKeys are the wrapper keys the assistant sometimes nests its list under.
var listKeys = []string{"items", "materials", "suggestions", "lineItems", "line_items"}

// ParseSuggestions pulls the item list out of assistant output. The list may
// be wrapped in a code fence, surrounded by prose, or nested in an object.
func ParseSuggestions(text string) ([]domain.Suggestion, error) {
	candidates := []string{}
	for _, m := range codeFence.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, m[1])
	}
	candidates = append(candidates, text)

	for _, c := range candidates {
		if list, ok := decodeList(strings.TrimSpace(c)); ok {
			if len(list) == 0 {
				return nil, ErrNoSuggestions
			}
			return list, nil
		}
	}
	return nil, ErrMalformedAIResponse
}

func decodeList(s string) ([]domain.Suggestion, bool) {
	if strings.HasPrefix(s, "{") {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal([]byte(s), &wrapper); err == nil {
			for _, k := range listKeys {
				if raw, ok := wrapper[k]; ok {
					var list []domain.Suggestion
					if err := json.Unmarshal(raw, &list); err == nil {
						return list, true
					}
				}
			}
		}
	}
	// Try every '[' in turn: prose before the list may itself contain brackets.
	for i := strings.IndexByte(s, '['); i >= 0; {
		var list []domain.Suggestion
		dec := json.NewDecoder(bytes.NewReader([]byte(s[i:])))
		if err := dec.Decode(&list); err == nil {
			return list, true
		}
		next := strings.IndexByte(s[i+1:], '[')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return nil, false
}
