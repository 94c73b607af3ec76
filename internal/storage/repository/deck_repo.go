package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ramonehamilton/carddex/internal/storage/models"
)

// DeckRepository handles database operations for decks, their card entries
// and their basic energy counts.
type DeckRepository interface {
	// Create inserts a new deck row.
	Create(ctx context.Context, deck *models.Deck) error

	// Update updates name, description, favourite flag and updated_at.
	Update(ctx context.Context, deck *models.Deck) error

	// Touch bumps updated_at.
	Touch(ctx context.Context, id string, at time.Time) error

	// GetByID retrieves a deck row by ID. Entries and energy are not loaded.
	// Returns nil if not found.
	GetByID(ctx context.Context, id string) (*models.Deck, error)

	// List retrieves all deck rows.
	List(ctx context.Context) ([]*models.Deck, error)

	// Delete deletes a deck row.
	Delete(ctx context.Context, id string) error

	// GetEntries retrieves the entries of a deck with their linked cards.
	GetEntries(ctx context.Context, deckID string) ([]*models.DeckEntry, error)

	// GetEntry retrieves a single entry. Returns nil if the card is not in the deck.
	GetEntry(ctx context.Context, deckID, cardID string) (*models.DeckEntry, error)

	// InsertEntry adds a card line to a deck.
	InsertEntry(ctx context.Context, entry *models.DeckEntry) error

	// UpdateEntryQuantity changes the quantity of an entry.
	UpdateEntryQuantity(ctx context.Context, deckID, cardID string, quantity int) error

	// DeleteEntry removes a card line from a deck.
	DeleteEntry(ctx context.Context, deckID, cardID string) error

	// DeleteEntriesForDeck removes every entry of a deck.
	DeleteEntriesForDeck(ctx context.Context, deckID string) error

	// DeleteEntriesForCard removes every entry referencing a card, across all decks.
	DeleteEntriesForCard(ctx context.Context, cardID string) error

	// GetBasicEnergy returns the basic energy counts of a deck.
	GetBasicEnergy(ctx context.Context, deckID string) (map[string]int, error)

	// SetBasicEnergy stores a basic energy count. A count <= 0 removes the row.
	SetBasicEnergy(ctx context.Context, deckID, energyType string, quantity int) error

	// DeleteBasicEnergyForDeck removes all basic energy of a deck.
	DeleteBasicEnergyForDeck(ctx context.Context, deckID string) error

	// BasicEnergyInUse sums basic energy of each type across all decks.
	BasicEnergyInUse(ctx context.Context) (map[string]int, error)
}

type deckRepository struct {
	db DBTX
}

// NewDeckRepository creates a new deck repository.
func NewDeckRepository(db DBTX) DeckRepository {
	return &deckRepository{db: db}
}

// Create inserts a new deck row.
func (r *deckRepository) Create(ctx context.Context, deck *models.Deck) error {
	query := `
		INSERT INTO decks (id, name, description, is_favorite, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		deck.ID,
		deck.Name,
		deck.Description,
		deck.IsFavorite,
		deck.CreatedAt,
		deck.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create deck: %w", err)
	}

	return nil
}

// Update updates name, description, favourite flag and updated_at.
func (r *deckRepository) Update(ctx context.Context, deck *models.Deck) error {
	query := `
		UPDATE decks
		SET name = ?, description = ?, is_favorite = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		deck.Name,
		deck.Description,
		deck.IsFavorite,
		deck.UpdatedAt,
		deck.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update deck: %w", err)
	}

	return nil
}

// Touch bumps updated_at.
func (r *deckRepository) Touch(ctx context.Context, id string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE decks SET updated_at = ? WHERE id = ?`, at, id); err != nil {
		return fmt.Errorf("failed to touch deck: %w", err)
	}
	return nil
}

func scanDeck(s rowScanner) (*models.Deck, error) {
	deck := &models.Deck{}
	err := s.Scan(
		&deck.ID,
		&deck.Name,
		&deck.Description,
		&deck.IsFavorite,
		&deck.CreatedAt,
		&deck.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return deck, nil
}

// GetByID retrieves a deck row by ID.
func (r *deckRepository) GetByID(ctx context.Context, id string) (*models.Deck, error) {
	query := `
		SELECT id, name, description, is_favorite, created_at, updated_at
		FROM decks
		WHERE id = ?
	`

	deck, err := scanDeck(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck by id: %w", err)
	}

	return deck, nil
}

// List retrieves all deck rows.
func (r *deckRepository) List(ctx context.Context) ([]*models.Deck, error) {
	query := `
		SELECT id, name, description, is_favorite, created_at, updated_at
		FROM decks
		ORDER BY updated_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var decks []*models.Deck
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		decks = append(decks, deck)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decks: %w", err)
	}

	return decks, nil
}

// Delete deletes a deck row.
func (r *deckRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	return nil
}

// GetEntries retrieves the entries of a deck with their linked cards.
func (r *deckRepository) GetEntries(ctx context.Context, deckID string) ([]*models.DeckEntry, error) {
	query := fmt.Sprintf(`
		SELECT e.id, e.deck_id, e.card_id, e.quantity, e.added_at, %s
		FROM deck_entries e
		JOIN cards c ON c.id = e.card_id
		WHERE e.deck_id = ?
		ORDER BY e.added_at, e.id
	`, cardSelectList("c"))

	rows, err := r.db.QueryContext(ctx, query, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get deck entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*models.DeckEntry
	for rows.Next() {
		entry, err := scanEntryWithCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deck entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deck entries: %w", err)
	}

	return entries, nil
}

// scanEntryWithCard scans the entry columns followed by the card columns.
func scanEntryWithCard(rows *sql.Rows) (*models.DeckEntry, error) {
	entry := &models.DeckEntry{}
	card, err := scanCard(prefixScanner{
		rows: rows,
		prefix: []any{
			&entry.ID,
			&entry.DeckID,
			&entry.CardID,
			&entry.Quantity,
			&entry.AddedAt,
		},
	})
	if err != nil {
		return nil, err
	}
	entry.Card = card
	return entry, nil
}

// prefixScanner prepends fixed destinations to a Scan call so scanCard can
// be reused on joined rows.
type prefixScanner struct {
	rows   *sql.Rows
	prefix []any
}

func (p prefixScanner) Scan(dest ...any) error {
	return p.rows.Scan(append(append([]any{}, p.prefix...), dest...)...)
}

// GetEntry retrieves a single entry.
func (r *deckRepository) GetEntry(ctx context.Context, deckID, cardID string) (*models.DeckEntry, error) {
	query := `
		SELECT id, deck_id, card_id, quantity, added_at
		FROM deck_entries
		WHERE deck_id = ? AND card_id = ?
	`

	entry := &models.DeckEntry{}
	err := r.db.QueryRowContext(ctx, query, deckID, cardID).Scan(
		&entry.ID,
		&entry.DeckID,
		&entry.CardID,
		&entry.Quantity,
		&entry.AddedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck entry: %w", err)
	}

	return entry, nil
}

// InsertEntry adds a card line to a deck.
func (r *deckRepository) InsertEntry(ctx context.Context, entry *models.DeckEntry) error {
	query := `
		INSERT INTO deck_entries (deck_id, card_id, quantity, added_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, entry.DeckID, entry.CardID, entry.Quantity, entry.AddedAt)
	if err != nil {
		return fmt.Errorf("failed to insert deck entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get deck entry id: %w", err)
	}
	entry.ID = id

	return nil
}

// UpdateEntryQuantity changes the quantity of an entry.
func (r *deckRepository) UpdateEntryQuantity(ctx context.Context, deckID, cardID string, quantity int) error {
	query := `UPDATE deck_entries SET quantity = ? WHERE deck_id = ? AND card_id = ?`
	if _, err := r.db.ExecContext(ctx, query, quantity, deckID, cardID); err != nil {
		return fmt.Errorf("failed to update deck entry: %w", err)
	}
	return nil
}

// DeleteEntry removes a card line from a deck.
func (r *deckRepository) DeleteEntry(ctx context.Context, deckID, cardID string) error {
	query := `DELETE FROM deck_entries WHERE deck_id = ? AND card_id = ?`
	if _, err := r.db.ExecContext(ctx, query, deckID, cardID); err != nil {
		return fmt.Errorf("failed to delete deck entry: %w", err)
	}
	return nil
}

// DeleteEntriesForDeck removes every entry of a deck.
func (r *deckRepository) DeleteEntriesForDeck(ctx context.Context, deckID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM deck_entries WHERE deck_id = ?`, deckID); err != nil {
		return fmt.Errorf("failed to clear deck entries: %w", err)
	}
	return nil
}

// DeleteEntriesForCard removes every entry referencing a card.
func (r *deckRepository) DeleteEntriesForCard(ctx context.Context, cardID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM deck_entries WHERE card_id = ?`, cardID); err != nil {
		return fmt.Errorf("failed to delete entries for card: %w", err)
	}
	return nil
}

// GetBasicEnergy returns the basic energy counts of a deck.
func (r *deckRepository) GetBasicEnergy(ctx context.Context, deckID string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT energy_type, quantity FROM deck_basic_energy WHERE deck_id = ?`, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get deck basic energy: %w", err)
	}
	return scanEnergyCounts(rows)
}

// SetBasicEnergy stores a basic energy count.
func (r *deckRepository) SetBasicEnergy(ctx context.Context, deckID, energyType string, quantity int) error {
	if quantity <= 0 {
		query := `DELETE FROM deck_basic_energy WHERE deck_id = ? AND energy_type = ?`
		if _, err := r.db.ExecContext(ctx, query, deckID, energyType); err != nil {
			return fmt.Errorf("failed to remove deck basic energy: %w", err)
		}
		return nil
	}

	query := `
		INSERT INTO deck_basic_energy (deck_id, energy_type, quantity)
		VALUES (?, ?, ?)
		ON CONFLICT(deck_id, energy_type) DO UPDATE SET quantity = excluded.quantity
	`
	if _, err := r.db.ExecContext(ctx, query, deckID, energyType, quantity); err != nil {
		return fmt.Errorf("failed to set deck basic energy: %w", err)
	}
	return nil
}

// DeleteBasicEnergyForDeck removes all basic energy of a deck.
func (r *deckRepository) DeleteBasicEnergyForDeck(ctx context.Context, deckID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM deck_basic_energy WHERE deck_id = ?`, deckID); err != nil {
		return fmt.Errorf("failed to clear deck basic energy: %w", err)
	}
	return nil
}

// BasicEnergyInUse sums basic energy of each type across all decks.
func (r *deckRepository) BasicEnergyInUse(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT energy_type, SUM(quantity) FROM deck_basic_energy GROUP BY energy_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to sum basic energy: %w", err)
	}
	return scanEnergyCounts(rows)
}

func scanEnergyCounts(rows *sql.Rows) (map[string]int, error) {
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var energyType string
		var quantity int
		if err := rows.Scan(&energyType, &quantity); err != nil {
			return nil, fmt.Errorf("failed to scan energy count: %w", err)
		}
		if quantity > 0 {
			counts[energyType] = quantity
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating energy counts: %w", err)
	}
	return counts, nil
}
