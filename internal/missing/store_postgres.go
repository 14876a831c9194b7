package missing

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

// PostgresStore persists missing episodes in PostgreSQL. Updates carry an
// optimistic version check; a partial unique index on (placement_id) WHERE
// state IN ('REPORTED','ACTIVE') backs the one-open-episode invariant at the
// storage layer as well (see migrations/0001_init.sql).
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const episodeColumns = `id, child_id, placement_id, state, reported_at, last_known_location,
	police_notified, risk_level, triggers, returned_at, return_location, return_condition,
	return_interview_due, closed_at, version, created_at, updated_at`

func (s *PostgresStore) Save(ctx context.Context, e Episode) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO missing_episodes (`+episodeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		uuid.UUID(e.ID), uuid.UUID(e.ChildID), uuid.UUID(e.PlacementID),
		string(e.State), e.ReportedAt, e.LastKnownLocation,
		e.PoliceNotified, string(e.RiskLevel), triggerStrings(e.Triggers),
		e.ReturnedAt, e.ReturnLocation, e.ReturnCondition,
		e.ReturnInterviewDue, e.ClosedAt, e.Version, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert episode: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, episodeID id.EpisodeID) (Episode, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+episodeColumns+`
		FROM missing_episodes WHERE id = $1`, uuid.UUID(episodeID))
	return scanEpisode(row)
}

func (s *PostgresStore) Update(ctx context.Context, e Episode) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE missing_episodes
		SET state = $1, returned_at = $2, return_location = $3, return_condition = $4,
			return_interview_due = $5, closed_at = $6, updated_at = $7, version = version + 1
		WHERE id = $8 AND version = $9`,
		string(e.State), e.ReturnedAt, e.ReturnLocation, e.ReturnCondition,
		e.ReturnInterviewDue, e.ClosedAt, e.UpdatedAt,
		uuid.UUID(e.ID), e.Version,
	)
	if err != nil {
		return fmt.Errorf("update episode: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM missing_episodes WHERE id = $1)`,
			uuid.UUID(e.ID)).Scan(&exists); err != nil {
			return fmt.Errorf("check episode exists: %w", err)
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrStaleVersion
	}
	return nil
}

func (s *PostgresStore) FindOpenByPlacement(ctx context.Context, placementID id.PlacementID) (Episode, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+episodeColumns+`
		FROM missing_episodes
		WHERE placement_id = $1 AND state IN ('REPORTED', 'ACTIVE')`, uuid.UUID(placementID))
	return scanEpisode(row)
}

func (s *PostgresStore) ListByPlacement(ctx context.Context, placementID id.PlacementID) ([]Episode, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+episodeColumns+`
		FROM missing_episodes WHERE placement_id = $1
		ORDER BY reported_at`, uuid.UUID(placementID))
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer rows.Close()

	var out []Episode
	for rows.Next() {
		e, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEpisode(row rowScanner) (Episode, error) {
	var (
		e                           Episode
		episodeID, childID, placeID uuid.UUID
		state, risk                 string
		triggers                    []string
	)
	err := row.Scan(&episodeID, &childID, &placeID, &state, &e.ReportedAt, &e.LastKnownLocation,
		&e.PoliceNotified, &risk, &triggers, &e.ReturnedAt, &e.ReturnLocation, &e.ReturnCondition,
		&e.ReturnInterviewDue, &e.ClosedAt, &e.Version, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Episode{}, sentinel.ErrNotFound
		}
		return Episode{}, fmt.Errorf("scan episode: %w", err)
	}
	e.ID = id.EpisodeID(episodeID)
	e.ChildID = id.ChildID(childID)
	e.PlacementID = id.PlacementID(placeID)
	e.State = State(state)
	e.RiskLevel = RiskLevel(risk)
	for _, t := range triggers {
		e.Triggers = append(e.Triggers, Trigger(t))
	}
	return e, nil
}

func triggerStrings(triggers []Trigger) []string {
	out := make([]string, len(triggers))
	for i, t := range triggers {
		out[i] = string(t)
	}
	return out
}

// PostgresTx runs the invariant-bearing write inside a serializable
// transaction so the open-episode check and the insert commit atomically. The
// key parameter is unused here; postgres row versioning and the partial
// unique index provide the serialisation the memory implementation gets from
// sharded locks.
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

func (s *txStore) Save(ctx context.Context, e Episode) error {
	_, err := s.tx.Exec(ctx, `
		INSERT INTO missing_episodes (`+episodeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		uuid.UUID(e.ID), uuid.UUID(e.ChildID), uuid.UUID(e.PlacementID),
		string(e.State), e.ReportedAt, e.LastKnownLocation,
		e.PoliceNotified, string(e.RiskLevel), triggerStrings(e.Triggers),
		e.ReturnedAt, e.ReturnLocation, e.ReturnCondition,
		e.ReturnInterviewDue, e.ClosedAt, e.Version, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert episode: %w", err)
	}
	return nil
}

func (s *txStore) Find(ctx context.Context, episodeID id.EpisodeID) (Episode, error) {
	row := s.tx.QueryRow(ctx, `
		SELECT `+episodeColumns+`
		FROM missing_episodes WHERE id = $1 FOR UPDATE`, uuid.UUID(episodeID))
	return scanEpisode(row)
}

func (s *txStore) Update(ctx context.Context, e Episode) error {
	tag, err := s.tx.Exec(ctx, `
		UPDATE missing_episodes
		SET state = $1, returned_at = $2, return_location = $3, return_condition = $4,
			return_interview_due = $5, closed_at = $6, updated_at = $7, version = version + 1
		WHERE id = $8 AND version = $9`,
		string(e.State), e.ReturnedAt, e.ReturnLocation, e.ReturnCondition,
		e.ReturnInterviewDue, e.ClosedAt, e.UpdatedAt,
		uuid.UUID(e.ID), e.Version,
	)
	if err != nil {
		return fmt.Errorf("update episode: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrStaleVersion
	}
	return nil
}

func (s *txStore) FindOpenByPlacement(ctx context.Context, placementID id.PlacementID) (Episode, error) {
	row := s.tx.QueryRow(ctx, `
		SELECT `+episodeColumns+`
		FROM missing_episodes
		WHERE placement_id = $1 AND state IN ('REPORTED', 'ACTIVE')
		FOR UPDATE`, uuid.UUID(placementID))
	return scanEpisode(row)
}

func (s *txStore) ListByPlacement(ctx context.Context, placementID id.PlacementID) ([]Episode, error) {
	rows, err := s.tx.Query(ctx, `
		SELECT `+episodeColumns+`
		FROM missing_episodes WHERE placement_id = $1
		ORDER BY reported_at`, uuid.UUID(placementID))
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer rows.Close()

	var out []Episode
	for rows.Next() {
		e, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
