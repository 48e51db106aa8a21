package problem

import (
	"context"
	"errors"
	"fmt"

	"github.com/itstheanurag/codejudge/internal/harness"
	"github.com/itstheanurag/codejudge/internal/judgeerr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const schema = `CREATE TABLE IF NOT EXISTS problems (
	id             TEXT PRIMARY KEY,
	metadata       JSONB NOT NULL,
	official_tests JSONB,
	marker         TEXT NOT NULL DEFAULT ''
)`

// Querier is the subset of *pgxpool.Pool the store uses.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresStore struct {
	db Querier
}

func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create problems table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Problem, error) {
	var data []byte
	if err := s.row(ctx, id, "SELECT metadata FROM problems WHERE id = $1", &data); err != nil {
		return nil, err
	}
	return decodeProblem(id, data)
}

func (s *PostgresStore) OfficialTests(ctx context.Context, id string) ([]harness.TestCase, error) {
	var data []byte
	if err := s.row(ctx, id, "SELECT official_tests FROM problems WHERE id = $1", &data); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return decodeTests(id, data)
}

func (s *PostgresStore) Marker(ctx context.Context, id string) (string, error) {
	var marker string
	if err := s.row(ctx, id, "SELECT marker FROM problems WHERE id = $1", &marker); err != nil {
		return "", err
	}
	return marker, nil
}

func (s *PostgresStore) row(ctx context.Context, id, query string, dest any) error {
	if err := checkID(id); err != nil {
		return err
	}
	err := s.db.QueryRow(ctx, query, id).Scan(dest)
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound(id)
	}
	if err != nil {
		return judgeerr.Wrap(err, judgeerr.KindInternal, "failed to query problem")
	}
	return nil
}
