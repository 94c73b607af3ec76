package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ramonehamilton/carddex/internal/storage/models"
)

// SetRepository handles database operations for card sets.
type SetRepository interface {
	// Upsert inserts a set or refreshes an existing one.
	Upsert(ctx context.Context, set *models.Set) error

	// GetByID retrieves a set by ID. Returns nil if not found.
	GetByID(ctx context.Context, id string) (*models.Set, error)

	// List retrieves all sets ordered by release date, newest first.
	List(ctx context.Context) ([]*models.Set, error)

	// Delete removes a set.
	Delete(ctx context.Context, id string) error
}

type setRepository struct {
	db DBTX
}

// NewSetRepository creates a new set repository.
func NewSetRepository(db DBTX) SetRepository {
	return &setRepository{db: db}
}

// Upsert inserts a set or refreshes an existing one.
func (r *setRepository) Upsert(ctx context.Context, set *models.Set) error {
	query := `
		INSERT INTO sets (
			id, name, series, printed_total, total, release_date,
			logo_url, symbol_url, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			series = excluded.series,
			printed_total = excluded.printed_total,
			total = excluded.total,
			release_date = excluded.release_date,
			logo_url = excluded.logo_url,
			symbol_url = excluded.symbol_url,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		set.ID,
		set.Name,
		set.Series,
		set.PrintedTotal,
		set.Total,
		set.ReleaseDate,
		set.LogoURL,
		set.SymbolURL,
		set.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert set: %w", err)
	}
	return nil
}

const setColumns = `id, name, series, printed_total, total, release_date, logo_url, symbol_url, updated_at`

func scanSet(s rowScanner) (*models.Set, error) {
	set := &models.Set{}
	var updatedAt sql.NullTime
	err := s.Scan(
		&set.ID,
		&set.Name,
		&set.Series,
		&set.PrintedTotal,
		&set.Total,
		&set.ReleaseDate,
		&set.LogoURL,
		&set.SymbolURL,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if updatedAt.Valid {
		set.UpdatedAt = &updatedAt.Time
	}
	return set, nil
}

// GetByID retrieves a set by ID.
func (r *setRepository) GetByID(ctx context.Context, id string) (*models.Set, error) {
	set, err := scanSet(r.db.QueryRowContext(ctx, `SELECT `+setColumns+` FROM sets WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get set by id: %w", err)
	}
	return set, nil
}

// List retrieves all sets.
func (r *setRepository) List(ctx context.Context) ([]*models.Set, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+setColumns+` FROM sets ORDER BY release_date DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sets []*models.Set
	for rows.Next() {
		set, err := scanSet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan set: %w", err)
		}
		sets = append(sets, set)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sets: %w", err)
	}
	return sets, nil
}

// Delete removes a set.
func (r *setRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete set: %w", err)
	}
	return nil
}
