package deckbuilder

import (
	"context"
	"fmt"

	"github.com/ramonehamilton/carddex/internal/storage/models"
)

// Severity grades a validation issue.
type Severity string

const (
	// SeverityError marks a deck that is not tournament legal.
	SeverityError Severity = "error"
	// SeverityWarning is advisory only.
	SeverityWarning Severity = "warning"
)

// Issue codes.
const (
	IssueTooFewCards     = "too_few_cards"
	IssueTooManyCards    = "too_many_cards"
	IssueIllegalQuantity = "illegal_quantity"
	IssueLowPokemon      = "low_pokemon_count"
	IssueLowEnergy       = "low_energy_count"
)

// Issue is one finding of Validate.
type Issue struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Validate checks a loaded deck. Every check runs regardless of the others.
func Validate(deck *models.Deck) []Issue {
	issues := []Issue{}

	total := deck.TotalCards()
	switch {
	case total < models.DeckSize:
		issues = append(issues, Issue{
			Code:     IssueTooFewCards,
			Severity: SeverityError,
			Message:  fmt.Sprintf("Need %d more cards to reach %d", models.DeckSize-total, models.DeckSize),
		})
	case total > models.DeckSize:
		issues = append(issues, Issue{
			Code:     IssueTooManyCards,
			Severity: SeverityError,
			Message:  fmt.Sprintf("Remove %d cards (currently over %d)", total-models.DeckSize, models.DeckSize),
		})
	}

	for _, e := range deck.Entries {
		if e.Quantity <= models.MaxCopiesPerCard {
			continue
		}
		name := "Unknown"
		if e.Card != nil {
			name = e.Card.Name
		}
		issues = append(issues, Issue{
			Code:     IssueIllegalQuantity,
			Severity: SeverityError,
			Message:  fmt.Sprintf("%s has %d copies (max %d allowed)", name, e.Quantity, models.MaxCopiesPerCard),
		})
	}

	if n := deck.PokemonCount(); n < models.RecommendedMinimum {
		issues = append(issues, Issue{
			Code:     IssueLowPokemon,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("Only %d Pokémon cards (recommended: %d+)", n, models.RecommendedMinimum),
		})
	}
	if n := deck.EnergyCount(); n < models.RecommendedMinimum {
		issues = append(issues, Issue{
			Code:     IssueLowEnergy,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("Only %d Energy cards (recommended: %d+)", n, models.RecommendedMinimum),
		})
	}

	return issues
}

// Report is the validation result of a stored deck. IsValid reflects the
// card count only; warnings never affect it.
type Report struct {
	DeckID       string  `json:"deck_id"`
	TotalCards   int     `json:"total_cards"`
	IsValid      bool    `json:"is_valid"`
	ErrorCount   int     `json:"error_count"`
	WarningCount int     `json:"warning_count"`
	Issues       []Issue `json:"issues"`
}

// ValidateDeck loads a deck and validates it.
func (s *Service) ValidateDeck(ctx context.Context, deckID string) (*Report, error) {
	deck, err := s.GetDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}

	report := &Report{
		DeckID:     deck.ID,
		TotalCards: deck.TotalCards(),
		IsValid:    deck.IsValid(),
		Issues:     Validate(deck),
	}
	for _, issue := range report.Issues {
		if issue.Severity == SeverityError {
			report.ErrorCount++
		} else {
			report.WarningCount++
		}
	}

	s.metrics.IncValidation(report.IsValid)
	return report, nil
}
