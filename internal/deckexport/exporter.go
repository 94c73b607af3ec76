// Package deckexport renders decks as shareable deck lists.
package deckexport

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ramonehamilton/carddex/internal/query"
	"github.com/ramonehamilton/carddex/internal/storage/models"
)

// ExportFormat represents the format to export the deck in.
type ExportFormat string

const (
	FormatText ExportFormat = "text" // Sectioned list (3 Pikachu sv01 25)
	FormatJSON ExportFormat = "json" // Structured deck list
)

// ParseFormat maps a request value to an ExportFormat. Empty means text.
func ParseFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText, "txt":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

// ExportOptions controls deck export behavior.
type ExportOptions struct {
	Format         ExportFormat
	IncludeHeaders bool // Include the deck name as a comment line
	IncludeStats   bool // Include card totals as comment lines
}

// DeckExport represents an exported deck.
type DeckExport struct {
	Content  string       `json:"content"`
	Format   ExportFormat `json:"format"`
	Filename string       `json:"filename"`
}

// Export renders a loaded deck (entries with linked cards, basic energy).
func Export(deck *models.Deck, options *ExportOptions) (*DeckExport, error) {
	if deck == nil {
		return nil, fmt.Errorf("deck is nil")
	}

	if options == nil {
		options = &ExportOptions{
			Format:         FormatText,
			IncludeHeaders: true,
		}
	}

	var (
		content  string
		filename string
		err      error
	)

	switch options.Format {
	case FormatText, "":
		content = exportText(deck, options)
		filename = sanitizeFilename(deck.Name) + ".txt"
	case FormatJSON:
		content, err = exportJSON(deck)
		if err != nil {
			return nil, err
		}
		filename = sanitizeFilename(deck.Name) + ".json"
	default:
		return nil, fmt.Errorf("unsupported export format: %s", options.Format)
	}

	format := options.Format
	if format == "" {
		format = FormatText
	}
	return &DeckExport{
		Content:  content,
		Format:   format,
		Filename: filename,
	}, nil
}

// section groups entries of one supertype.
type section struct {
	title   string
	entries []*models.DeckEntry
}

func sections(deck *models.Deck) []section {
	groups := []section{
		{title: "Pokémon"},
		{title: "Trainers"},
		{title: "Energy"},
	}
	for _, e := range query.SortEntries(deck.Entries, query.SortEntriesByName) {
		if e.Card == nil {
			continue
		}
		switch {
		case e.Card.IsPokemon():
			groups[0].entries = append(groups[0].entries, e)
		case e.Card.IsTrainer():
			groups[1].entries = append(groups[1].entries, e)
		default:
			groups[2].entries = append(groups[2].entries, e)
		}
	}
	return groups
}

func sum(entries []*models.DeckEntry) int {
	n := 0
	for _, e := range entries {
		n += e.Quantity
	}
	return n
}

// exportText writes one section per supertype.
// Format: "3 Pikachu sv01 25", basic energy as "8 Basic Lightning Energy"
func exportText(deck *models.Deck, options *ExportOptions) string {
	var sb strings.Builder

	if options.IncludeHeaders {
		sb.WriteString(fmt.Sprintf("// %s\n", deck.Name))
	}
	if options.IncludeStats {
		status := "incomplete"
		if deck.IsValid() {
			status = "valid"
		}
		sb.WriteString(fmt.Sprintf("// %d/%d cards (%s)\n", deck.TotalCards(), models.DeckSize, status))
	}
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}

	written := false
	for i, group := range sections(deck) {
		count := sum(group.entries)
		isEnergy := i == 2
		if isEnergy {
			count += deck.BasicEnergyTotal()
		}
		if count == 0 {
			continue
		}

		if written {
			sb.WriteString("\n")
		}
		written = true

		sb.WriteString(fmt.Sprintf("%s (%d)\n", group.title, count))
		for _, e := range group.entries {
			sb.WriteString(fmt.Sprintf("%d %s %s %s\n", e.Quantity, e.Card.Name, e.Card.SetID, e.Card.Number))
		}
		if isEnergy {
			for _, energyType := range models.BasicEnergyTypes {
				if n := deck.BasicEnergy[energyType]; n > 0 {
					sb.WriteString(fmt.Sprintf("%d Basic %s Energy\n", n, energyType))
				}
			}
		}
	}

	return sb.String()
}

type jsonCard struct {
	Quantity  int    `json:"quantity"`
	Name      string `json:"name"`
	Supertype string `json:"supertype"`
	SetID     string `json:"set_id"`
	Number    string `json:"number"`
}

type jsonEnergy struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
}

type jsonDeck struct {
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	TotalCards  int          `json:"total_cards"`
	IsValid     bool         `json:"is_valid"`
	Cards       []jsonCard   `json:"cards"`
	BasicEnergy []jsonEnergy `json:"basic_energy"`
}

func exportJSON(deck *models.Deck) (string, error) {
	out := jsonDeck{
		Name:        deck.Name,
		Description: deck.Description,
		TotalCards:  deck.TotalCards(),
		IsValid:     deck.IsValid(),
		Cards:       []jsonCard{},
		BasicEnergy: []jsonEnergy{},
	}
	for _, group := range sections(deck) {
		for _, e := range group.entries {
			out.Cards = append(out.Cards, jsonCard{
				Quantity:  e.Quantity,
				Name:      e.Card.Name,
				Supertype: e.Card.Supertype,
				SetID:     e.Card.SetID,
				Number:    e.Card.Number,
			})
		}
	}
	for _, energyType := range models.BasicEnergyTypes {
		if n := deck.BasicEnergy[energyType]; n > 0 {
			out.BasicEnergy = append(out.BasicEnergy, jsonEnergy{Type: energyType, Quantity: n})
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode deck: %w", err)
	}
	return string(data) + "\n", nil
}

// sanitizeFilename removes invalid characters from filename.
func sanitizeFilename(name string) string {
	// Replace invalid filename characters with underscore
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	// Trim spaces and limit length
	result = strings.TrimSpace(result)
	if len(result) > 100 {
		result = result[:100]
	}
	if result == "" {
		result = "deck"
	}
	return result
}
