package placement

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	id "careflow/pkg/domain"
	"careflow/pkg/platform/sentinel"
)

// PostgresStore persists placements in PostgreSQL. Updates carry an
// optimistic version check; a partial unique index on (child_id) WHERE
// status = 'ACTIVE' backs the one-active-placement invariant at the storage
// layer as well (see migrations/0001_init.sql).
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const placementColumns = `id, child_id, provider_id, type, status, start_date, end_date, version, created_at, updated_at`

func (s *PostgresStore) Save(ctx context.Context, p Placement) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO placements (`+placementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.UUID(p.ID), uuid.UUID(p.ChildID), uuid.UUID(p.ProviderID),
		string(p.Type), string(p.Status), p.StartDate, p.EndDate,
		p.Version, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert placement: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, placementID id.PlacementID) (Placement, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+placementColumns+`
		FROM placements WHERE id = $1`, uuid.UUID(placementID))
	return scanPlacement(row)
}

func (s *PostgresStore) Update(ctx context.Context, p Placement) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE placements
		SET status = $1, start_date = $2, end_date = $3, updated_at = $4, version = version + 1
		WHERE id = $5 AND version = $6`,
		string(p.Status), p.StartDate, p.EndDate, p.UpdatedAt,
		uuid.UUID(p.ID), p.Version,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update placement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the row is gone or someone got there first.
		var exists bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM placements WHERE id = $1)`,
			uuid.UUID(p.ID)).Scan(&exists); err != nil {
			return fmt.Errorf("check placement exists: %w", err)
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrStaleVersion
	}
	return nil
}

func (s *PostgresStore) FindActiveByChild(ctx context.Context, childID id.ChildID) (Placement, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+placementColumns+`
		FROM placements WHERE child_id = $1 AND status = 'ACTIVE'`, uuid.UUID(childID))
	return scanPlacement(row)
}

func (s *PostgresStore) ListByChild(ctx context.Context, childID id.ChildID) ([]Placement, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+placementColumns+`
		FROM placements WHERE child_id = $1
		ORDER BY created_at`, uuid.UUID(childID))
	if err != nil {
		return nil, fmt.Errorf("list placements: %w", err)
	}
	defer rows.Close()

	var out []Placement
	for rows.Next() {
		p, err := scanPlacement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlacement(row rowScanner) (Placement, error) {
	var (
		p                              Placement
		placementID, childID, provider uuid.UUID
		ptype, status                  string
	)
	err := row.Scan(&placementID, &childID, &provider, &ptype, &status,
		&p.StartDate, &p.EndDate, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Placement{}, sentinel.ErrNotFound
		}
		return Placement{}, fmt.Errorf("scan placement: %w", err)
	}
	p.ID = id.PlacementID(placementID)
	p.ChildID = id.ChildID(childID)
	p.ProviderID = id.ProviderID(provider)
	p.Type = Type(ptype)
	p.Status = Status(status)
	return p, nil
}

// PostgresTx runs the invariant-bearing write inside a serializable
// transaction so the active-placement check and the status write commit
// atomically. The key parameter is unused here; postgres row versioning and
// the partial unique index provide the serialisation the memory
// implementation gets from sharded locks.
type PostgresTx struct {
	pool *pgxpool.Pool
}

func NewPostgresTx(pool *pgxpool.Pool) *PostgresTx {
	return &PostgresTx{pool: pool}
}

func (t *PostgresTx) RunInTx(ctx context.Context, _ string, fn func(store Store) error) error {
	tx, err := t.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&txStore{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// txStore reuses the pool store's queries against a transaction handle.
type txStore struct {
	tx pgx.Tx
}

func (s *txStore) Save(ctx context.Context, p Placement) error {
	_, err := s.tx.Exec(ctx, `
		INSERT INTO placements (`+placementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.UUID(p.ID), uuid.UUID(p.ChildID), uuid.UUID(p.ProviderID),
		string(p.Type), string(p.Status), p.StartDate, p.EndDate,
		p.Version, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert placement: %w", err)
	}
	return nil
}

func (s *txStore) Find(ctx context.Context, placementID id.PlacementID) (Placement, error) {
	row := s.tx.QueryRow(ctx, `
		SELECT `+placementColumns+`
		FROM placements WHERE id = $1 FOR UPDATE`, uuid.UUID(placementID))
	return scanPlacement(row)
}

func (s *txStore) Update(ctx context.Context, p Placement) error {
	tag, err := s.tx.Exec(ctx, `
		UPDATE placements
		SET status = $1, start_date = $2, end_date = $3, updated_at = $4, version = version + 1
		WHERE id = $5 AND version = $6`,
		string(p.Status), p.StartDate, p.EndDate, p.UpdatedAt,
		uuid.UUID(p.ID), p.Version,
	)
	if err != nil {
		return fmt.Errorf("update placement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrStaleVersion
	}
	return nil
}

func (s *txStore) FindActiveByChild(ctx context.Context, childID id.ChildID) (Placement, error) {
	row := s.tx.QueryRow(ctx, `
		SELECT `+placementColumns+`
		FROM placements WHERE child_id = $1 AND status = 'ACTIVE'`, uuid.UUID(childID))
	return scanPlacement(row)
}

func (s *txStore) ListByChild(ctx context.Context, childID id.ChildID) ([]Placement, error) {
	rows, err := s.tx.Query(ctx, `
		SELECT `+placementColumns+`
		FROM placements WHERE child_id = $1
		ORDER BY created_at`, uuid.UUID(childID))
	if err != nil {
		return nil, fmt.Errorf("list placements: %w", err)
	}
	defer rows.Close()

	var out []Placement
	for rows.Next() {
		p, err := scanPlacement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
