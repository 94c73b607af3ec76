package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ramonehamilton/carddex/internal/storage/models"
)

// CardRepository handles database operations for collection cards.
type CardRepository interface {
	// Create inserts a new card.
	Create(ctx context.Context, card *models.Card) error

	// Update rewrites every column of an existing card.
	Update(ctx context.Context, card *models.Card) error

	// GetByID retrieves a card by its catalog ID. Returns nil if not found.
	GetByID(ctx context.Context, id string) (*models.Card, error)

	// List retrieves every card in the collection ordered by name.
	List(ctx context.Context) ([]*models.Card, error)

	// ListBySet retrieves all cards belonging to a set.
	ListBySet(ctx context.Context, setID string) ([]*models.Card, error)

	// UpdateQuantity sets the owned quantity of a card.
	UpdateQuantity(ctx context.Context, id string, quantity int) error

	// Delete removes a card.
	Delete(ctx context.Context, id string) error
}

type cardRepository struct {
	db DBTX
}

// NewCardRepository creates a new card repository.
func NewCardRepository(db DBTX) CardRepository {
	return &cardRepository{db: db}
}

var cardColumns = []string{
	"id", "name", "supertype", "subtypes", "hp", "types", "evolves_from",
	"retreat_cost", "attacks", "ability", "weaknesses", "resistances",
	"effect", "trainer_type", "set_id", "set_name", "set_logo", "number",
	"rarity", "image_small", "image_large", "artist", "flavor_text",
	"regulation_mark", "quantity_owned", "date_added",
}

// cardSelectList renders the card column list, optionally qualified by a table alias.
func cardSelectList(alias string) string {
	if alias == "" {
		return strings.Join(cardColumns, ", ")
	}
	qualified := make([]string, len(cardColumns))
	for i, c := range cardColumns {
		qualified[i] = alias + "." + c
	}
	return strings.Join(qualified, ", ")
}

// cardArgs returns the column values of card in cardColumns order.
func cardArgs(card *models.Card) ([]any, error) {
	subtypes, err := marshalNullable(card.Subtypes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode subtypes: %w", err)
	}
	types, err := marshalNullable(card.Types)
	if err != nil {
		return nil, fmt.Errorf("failed to encode types: %w", err)
	}
	retreat, err := marshalNullable(card.RetreatCost)
	if err != nil {
		return nil, fmt.Errorf("failed to encode retreat cost: %w", err)
	}
	attacks, err := marshalNullable(card.Attacks)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attacks: %w", err)
	}
	ability, err := marshalPtr(card.Ability)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ability: %w", err)
	}
	weaknesses, err := marshalNullable(card.Weaknesses)
	if err != nil {
		return nil, fmt.Errorf("failed to encode weaknesses: %w", err)
	}
	resistances, err := marshalNullable(card.Resistances)
	if err != nil {
		return nil, fmt.Errorf("failed to encode resistances: %w", err)
	}

	return []any{
		card.ID, card.Name, card.Supertype, subtypes, card.HP, types, card.EvolvesFrom,
		retreat, attacks, ability, weaknesses, resistances,
		card.Effect, card.TrainerType, card.SetID, card.SetName, card.SetLogo, card.Number,
		card.Rarity, card.ImageSmall, card.ImageLarge, card.Artist, card.FlavorText,
		card.RegulationMark, card.QuantityOwned, card.DateAdded,
	}, nil
}

func scanCard(s rowScanner) (*models.Card, error) {
	card := &models.Card{}
	var subtypes, types, retreat, attacks, ability, weaknesses, resistances sql.NullString

	err := s.Scan(
		&card.ID, &card.Name, &card.Supertype, &subtypes, &card.HP, &types, &card.EvolvesFrom,
		&retreat, &attacks, &ability, &weaknesses, &resistances,
		&card.Effect, &card.TrainerType, &card.SetID, &card.SetName, &card.SetLogo, &card.Number,
		&card.Rarity, &card.ImageSmall, &card.ImageLarge, &card.Artist, &card.FlavorText,
		&card.RegulationMark, &card.QuantityOwned, &card.DateAdded,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalNullable(subtypes, &card.Subtypes, "subtypes"); err != nil {
		return nil, err
	}
	if err := unmarshalNullable(types, &card.Types, "types"); err != nil {
		return nil, err
	}
	if err := unmarshalNullable(retreat, &card.RetreatCost, "retreat cost"); err != nil {
		return nil, err
	}
	if err := unmarshalNullable(attacks, &card.Attacks, "attacks"); err != nil {
		return nil, err
	}
	if ability.Valid {
		card.Ability = &models.Ability{}
		if err := unmarshalNullable(ability, card.Ability, "ability"); err != nil {
			return nil, err
		}
	}
	if err := unmarshalNullable(weaknesses, &card.Weaknesses, "weaknesses"); err != nil {
		return nil, err
	}
	if err := unmarshalNullable(resistances, &card.Resistances, "resistances"); err != nil {
		return nil, err
	}

	return card, nil
}

// Create inserts a new card.
func (r *cardRepository) Create(ctx context.Context, card *models.Card) error {
	args, err := cardArgs(card)
	if err != nil {
		return err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cardColumns)), ", ")
	query := fmt.Sprintf("INSERT INTO cards (%s) VALUES (%s)", cardSelectList(""), placeholders)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

// Update rewrites every column of an existing card.
func (r *cardRepository) Update(ctx context.Context, card *models.Card) error {
	args, err := cardArgs(card)
	if err != nil {
		return err
	}

	assignments := make([]string, 0, len(cardColumns)-1)
	for _, c := range cardColumns[1:] {
		assignments = append(assignments, c+" = ?")
	}
	query := fmt.Sprintf("UPDATE cards SET %s WHERE id = ?", strings.Join(assignments, ", "))

	// id moves from the first to the last argument
	args = append(args[1:], card.ID)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	return nil
}

// GetByID retrieves a card by its catalog ID.
func (r *cardRepository) GetByID(ctx context.Context, id string) (*models.Card, error) {
	query := fmt.Sprintf("SELECT %s FROM cards WHERE id = ?", cardSelectList(""))

	card, err := scanCard(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card by id: %w", err)
	}
	return card, nil
}

// List retrieves every card in the collection.
func (r *cardRepository) List(ctx context.Context) ([]*models.Card, error) {
	query := fmt.Sprintf("SELECT %s FROM cards ORDER BY name, id", cardSelectList(""))
	return r.query(ctx, query)
}

// ListBySet retrieves all cards belonging to a set.
func (r *cardRepository) ListBySet(ctx context.Context, setID string) ([]*models.Card, error) {
	query := fmt.Sprintf("SELECT %s FROM cards WHERE set_id = ? ORDER BY name, id", cardSelectList(""))
	return r.query(ctx, query, setID)
}

func (r *cardRepository) query(ctx context.Context, query string, args ...any) ([]*models.Card, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []*models.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}
	return cards, nil
}

// UpdateQuantity sets the owned quantity of a card.
func (r *cardRepository) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE cards SET quantity_owned = ? WHERE id = ?`, quantity, id)
	if err != nil {
		return fmt.Errorf("failed to update card quantity: %w", err)
	}
	return nil
}

// Delete removes a card.
func (r *cardRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return nil
}
