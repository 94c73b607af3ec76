package models

import "time"

// Set is a card set (expansion) known to the collection.
type Set struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Series       string     `json:"series"`
	PrintedTotal int        `json:"printed_total"`
	Total        int        `json:"total"`
	ReleaseDate  string     `json:"release_date"`
	LogoURL      *string    `json:"logo_url"`
	SymbolURL    *string    `json:"symbol_url"`
	UpdatedAt    *time.Time `json:"updated_at"`
}
