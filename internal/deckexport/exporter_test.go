package deckexport

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ramonehamilton/carddex/internal/storage/models"
)

func createTestDeck() *models.Deck {
	pikachu := &models.Card{ID: "sv01-025", Name: "Pikachu", Supertype: models.SupertypePokemon, SetID: "sv01", Number: "25"}
	raichu := &models.Card{ID: "sv01-026", Name: "Raichu", Supertype: models.SupertypePokemon, SetID: "sv01", Number: "26"}
	ball := &models.Card{ID: "sv01-196", Name: "Ultra Ball", Supertype: models.SupertypeTrainer, SetID: "sv01", Number: "196"}
	turbo := &models.Card{ID: "sv02-151", Name: "Double Turbo Energy", Supertype: models.SupertypeEnergy, SetID: "sv02", Number: "151"}

	return &models.Deck{
		ID:   "test-deck-123",
		Name: "Sparks: Rush",
		Entries: []*models.DeckEntry{
			{CardID: raichu.ID, Quantity: 2, Card: raichu},
			{CardID: ball.ID, Quantity: 4, Card: ball},
			{CardID: pikachu.ID, Quantity: 4, Card: pikachu},
			{CardID: turbo.ID, Quantity: 2, Card: turbo},
		},
		BasicEnergy: map[string]int{"Metal": 2, "Lightning": 10},
	}
}

func TestExport_Text(t *testing.T) {
	export, err := Export(createTestDeck(), &ExportOptions{Format: FormatText, IncludeHeaders: true, IncludeStats: true})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	want := strings.Join([]string{
		"// Sparks: Rush",
		"// 24/60 cards (incomplete)",
		"",
		"Pokémon (6)",
		"4 Pikachu sv01 25",
		"2 Raichu sv01 26",
		"",
		"Trainers (4)",
		"4 Ultra Ball sv01 196",
		"",
		"Energy (14)",
		"2 Double Turbo Energy sv02 151",
		"10 Basic Lightning Energy",
		"2 Basic Metal Energy",
		"",
	}, "\n")
	if export.Content != want {
		t.Errorf("content mismatch\n got:\n%s\nwant:\n%s", export.Content, want)
	}
	if export.Filename != "Sparks_ Rush.txt" {
		t.Errorf("Filename = %q", export.Filename)
	}
	if export.Format != FormatText {
		t.Errorf("Format = %q", export.Format)
	}
}

func TestExport_TextSkipsEmptySections(t *testing.T) {
	deck := &models.Deck{Name: "Energy Only", BasicEnergy: map[string]int{"Water": 3}}

	export, err := Export(deck, &ExportOptions{Format: FormatText})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if export.Content != "Energy (3)\n3 Basic Water Energy\n" {
		t.Errorf("unexpected content: %q", export.Content)
	}
}

func TestExport_DefaultOptions(t *testing.T) {
	export, err := Export(&models.Deck{Name: "Empty"}, nil)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if export.Content != "// Empty\n\n" {
		t.Errorf("unexpected content: %q", export.Content)
	}
}

func TestExport_JSON(t *testing.T) {
	export, err := Export(createTestDeck(), &ExportOptions{Format: FormatJSON})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.HasSuffix(export.Filename, ".json") {
		t.Errorf("Filename = %q", export.Filename)
	}

	var decoded jsonDeck
	if err := json.Unmarshal([]byte(export.Content), &decoded); err != nil {
		t.Fatalf("content is not valid JSON: %v", err)
	}
	if decoded.TotalCards != 24 || decoded.IsValid {
		t.Errorf("totals = %d/%v", decoded.TotalCards, decoded.IsValid)
	}
	if len(decoded.Cards) != 4 || decoded.Cards[0].Name != "Pikachu" {
		t.Errorf("cards = %+v", decoded.Cards)
	}
	if len(decoded.BasicEnergy) != 2 || decoded.BasicEnergy[0].Type != "Lightning" {
		t.Errorf("basic energy = %+v", decoded.BasicEnergy)
	}
}

func TestExport_Errors(t *testing.T) {
	if _, err := Export(nil, nil); err == nil {
		t.Error("expected error for nil deck")
	}
	if _, err := Export(&models.Deck{Name: "x"}, &ExportOptions{Format: "ptcgo"}); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]ExportFormat{"": FormatText, "TEXT": FormatText, "txt": FormatText, "json": FormatJSON}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("mtgo"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Normal Deck", "Normal Deck"},
		{"Deck/With\\Slashes", "Deck_With_Slashes"},
		{"Deck:With*Special?Chars", "Deck_With_Special_Chars"},
		{"  Spaces  ", "Spaces"},
		{"", "deck"},
		{strings.Repeat("a", 150), strings.Repeat("a", 100)},
	}

	for _, tt := range tests {
		if result := sanitizeFilename(tt.input); result != tt.expected {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}
