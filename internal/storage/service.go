package storage

import (
	"context"
	"database/sql"

	"github.com/ramonehamilton/carddex/internal/storage/repository"
)

// Repositories groups every repository bound to one querier.
type Repositories struct {
	Cards  repository.CardRepository
	Sets   repository.SetRepository
	Decks  repository.DeckRepository
	Energy repository.EnergyRepository
}

// NewRepositories binds all repositories to q, which may be a *sql.DB or a *sql.Tx.
func NewRepositories(q repository.DBTX) *Repositories {
	return &Repositories{
		Cards:  repository.NewCardRepository(q),
		Sets:   repository.NewSetRepository(q),
		Decks:  repository.NewDeckRepository(q),
		Energy: repository.NewEnergyRepository(q),
	}
}

// Service is the entry point to the local store. Reads go through Repos;
// multi-row writes go through InTx so they commit or roll back as a unit.
type Service struct {
	db    *DB
	repos *Repositories
}

// NewService creates a new storage service.
func NewService(db *DB) *Service {
	return &Service{
		db:    db,
		repos: NewRepositories(db.Conn()),
	}
}

// Repos returns repositories bound to the connection pool.
func (s *Service) Repos() *Repositories {
	return s.repos
}

// InTx runs fn with repositories bound to a single transaction.
func (s *Service) InTx(ctx context.Context, fn func(*Repositories) error) error {
	return s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		return fn(NewRepositories(tx))
	})
}

// DB returns the underlying database.
func (s *Service) DB() *DB {
	return s.db
}

// Close closes the database.
func (s *Service) Close() error {
	return s.db.Close()
}
