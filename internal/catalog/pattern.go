package catalog

import (
	"strconv"
	"strings"
)

// PatternKind classifies a free-text catalog query.
type PatternKind string

const (
	PatternCardNumber PatternKind = "card_number"
	PatternCardName   PatternKind = "card_name"
)

// SearchPattern is a parsed catalog query.
type SearchPattern struct {
	Kind    PatternKind `json:"kind"`
	LocalID string      `json:"local_id,omitempty"`
	Total   string      `json:"total,omitempty"`
	Name    string      `json:"name,omitempty"`
}

// DetectPattern classifies input. "25/167" is a card number with a set
// total, "25" is a bare card number, anything else is a name.
func DetectPattern(input string) SearchPattern {
	trimmed := strings.TrimSpace(input)

	if strings.Contains(trimmed, "/") {
		parts := strings.Split(trimmed, "/")
		if len(parts) == 2 {
			localID := strings.TrimSpace(parts[0])
			total := strings.TrimSpace(parts[1])
			if localID != "" && total != "" {
				return SearchPattern{Kind: PatternCardNumber, LocalID: localID, Total: total}
			}
		}
	}

	if _, err := strconv.Atoi(trimmed); err == nil {
		return SearchPattern{Kind: PatternCardNumber, LocalID: trimmed}
	}

	return SearchPattern{Kind: PatternCardName, Name: trimmed}
}
