package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ramonehamilton/carddex/internal/storage/models"
)

// EnergyRepository persists the owned basic-energy pool.
type EnergyRepository interface {
	// List returns every stored energy counter.
	List(ctx context.Context) ([]*models.BasicEnergy, error)

	// Get returns the counter for an energy type, or nil if it was never stored.
	Get(ctx context.Context, energyType string) (*models.BasicEnergy, error)

	// Set stores the owned count of an energy type.
	Set(ctx context.Context, energyType string, count int, modified time.Time) error

	// ResetAll sets every stored counter to zero.
	ResetAll(ctx context.Context, modified time.Time) error
}

type energyRepository struct {
	db DBTX
}

// NewEnergyRepository creates a new energy pool repository.
func NewEnergyRepository(db DBTX) EnergyRepository {
	return &energyRepository{db: db}
}

// List returns every stored energy counter.
func (r *energyRepository) List(ctx context.Context) ([]*models.BasicEnergy, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT energy_type, count, date_modified FROM basic_energy`)
	if err != nil {
		return nil, fmt.Errorf("failed to list basic energy: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var pool []*models.BasicEnergy
	for rows.Next() {
		e := &models.BasicEnergy{}
		if err := rows.Scan(&e.Type, &e.Count, &e.DateModified); err != nil {
			return nil, fmt.Errorf("failed to scan basic energy: %w", err)
		}
		pool = append(pool, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating basic energy: %w", err)
	}
	return pool, nil
}

// Get returns the counter for an energy type.
func (r *energyRepository) Get(ctx context.Context, energyType string) (*models.BasicEnergy, error) {
	e := &models.BasicEnergy{}
	err := r.db.QueryRowContext(ctx,
		`SELECT energy_type, count, date_modified FROM basic_energy WHERE energy_type = ?`,
		energyType,
	).Scan(&e.Type, &e.Count, &e.DateModified)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get basic energy: %w", err)
	}
	return e, nil
}

// Set stores the owned count of an energy type.
func (r *energyRepository) Set(ctx context.Context, energyType string, count int, modified time.Time) error {
	query := `
		INSERT INTO basic_energy (energy_type, count, date_modified)
		VALUES (?, ?, ?)
		ON CONFLICT(energy_type) DO UPDATE SET
			count = excluded.count,
			date_modified = excluded.date_modified
	`
	if _, err := r.db.ExecContext(ctx, query, energyType, count, modified); err != nil {
		return fmt.Errorf("failed to set basic energy: %w", err)
	}
	return nil
}

// ResetAll sets every stored counter to zero.
func (r *energyRepository) ResetAll(ctx context.Context, modified time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE basic_energy SET count = 0, date_modified = ?`, modified); err != nil {
		return fmt.Errorf("failed to reset basic energy: %w", err)
	}
	return nil
}
