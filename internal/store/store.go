package store

import (
	"context"
	"fmt"

	"doccontrol/internal/core"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// seqColumn is an identity column assigned by the database on insert.
const seqColumn = "seq"

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx so every repository can
// run inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories bundles the table repositories over a single connection or
// transaction.
type Repositories struct {
	*OrganizationRepository
	*UserRepository
	*ProjectRepository
	*DocumentRepository
	*RevisionRepository
	*EventRepository
	*TransmittalRepository
}

var _ core.Repository = (*Repositories)(nil)

func NewRepositories(db DBTX) *Repositories {
	return &Repositories{
		OrganizationRepository: NewOrganizationRepository(db),
		UserRepository:         NewUserRepository(db),
		ProjectRepository:      NewProjectRepository(db),
		DocumentRepository:     NewDocumentRepository(db),
		RevisionRepository:     NewRevisionRepository(db),
		EventRepository:        NewEventRepository(db),
		TransmittalRepository:  NewTransmittalRepository(db),
	}
}

// Store implements core.Store on a Postgres pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ core.Store = (*Store)(nil)

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) View(ctx context.Context, fn func(r core.Repository) error) error {
	return fn(NewRepositories(s.pool))
}

func (s *Store) Atomic(ctx context.Context, fn func(r core.Repository) error) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		repos := NewRepositories(tx)
		repos.DocumentRepository.forUpdate = true
		return fn(repos)
	})
	if err != nil {
		return fmt.Errorf("transaction rolled back: %w", err)
	}
	return nil
}
