package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	dErrors "conocida/pkg/domain-errors"
)

// Schema creates the tables this store needs. Applied by deploy tooling and
// by the integration test container.
const Schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id          UUID PRIMARY KEY,
	first_name  TEXT NOT NULL,
	last_name   TEXT NOT NULL,
	country     TEXT NOT NULL,
	province    TEXT NOT NULL,
	city        TEXT NOT NULL,
	story       TEXT NOT NULL DEFAULT '',
	photos      TEXT[] NOT NULL DEFAULT '{}',
	approved    BOOLEAN NOT NULL DEFAULT FALSE,
	known_yes   BIGINT NOT NULL DEFAULT 0 CHECK (known_yes >= 0),
	known_no    BIGINT NOT NULL DEFAULT 0 CHECK (known_no >= 0),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS profiles_approved_idx ON profiles (approved);

CREATE TABLE IF NOT EXISTS votes (
	profile_id  UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
	voter_id    TEXT NOT NULL,
	choice      TEXT NOT NULL CHECK (choice IN ('yes', 'no')),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (profile_id, voter_id)
);
`

const profileColumns = `id, first_name, last_name, country, province, city, story, photos, approved, known_yes, known_no, created_at`

// PostgresStore persists profiles and votes in PostgreSQL via pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgreSQL-backed profile store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, p Profile) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.FirstName, p.LastName, p.Country, p.Province, p.City,
		p.Story, p.Photos, p.Approved, p.KnownYes, p.KnownNo, p.CreatedAt,
	)
	if err != nil {
		return wrapStoreErr("create profile", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (Profile, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, wrapStoreErr("get profile", err)
	}
	return p, nil
}

func (s *PostgresStore) ListApproved(ctx context.Context) ([]Profile, error) {
	return s.listByApproval(ctx, true)
}

func (s *PostgresStore) ListPending(ctx context.Context) ([]Profile, error) {
	return s.listByApproval(ctx, false)
}

func (s *PostgresStore) listByApproval(ctx context.Context, approved bool) ([]Profile, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+profileColumns+` FROM profiles WHERE approved = $1`, approved)
	if err != nil {
		return nil, wrapStoreErr("list profiles", err)
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, wrapStoreErr("scan profile", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr("list profiles", err)
	}
	return out, nil
}

func (s *PostgresStore) SetApproved(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE profiles SET approved = TRUE WHERE id = $1`, id)
	if err != nil {
		return wrapStoreErr("approve profile", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) AppendPhotos(ctx context.Context, id string, urls []string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE profiles SET photos = photos || $2 WHERE id = $1`, id, urls)
	if err != nil {
		return wrapStoreErr("append photos", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CastVote inserts the vote row and increments the matching counter in one
// transaction. The primary key on (profile_id, voter_id) is the duplicate
// guard; the counter update is a relative increment so concurrent voters
// never lose updates.
func (s *PostgresStore) CastVote(ctx context.Context, vote Vote) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return wrapStoreErr("begin vote tx", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		INSERT INTO votes (profile_id, voter_id, choice, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (profile_id, voter_id) DO NOTHING`,
		vote.ProfileID, vote.VoterID, string(vote.Choice), vote.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23503 foreign_key_violation: the profile does not exist.
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		if isInvalidUUID(err) {
			return ErrNotFound
		}
		return wrapStoreErr("insert vote", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyVoted
	}

	column := "known_no"
	if vote.Choice == ChoiceYes {
		column = "known_yes"
	}
	tag, err = tx.Exec(ctx, `UPDATE profiles SET `+column+` = `+column+` + 1 WHERE id = $1`, vote.ProfileID)
	if err != nil {
		return wrapStoreErr("increment vote counter", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return wrapStoreErr("commit vote tx", err)
	}
	return nil
}

// Delete removes the profile; votes go with it via ON DELETE CASCADE.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return wrapStoreErr("delete profile", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (Profile, error) {
	var p Profile
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Country, &p.Province, &p.City,
		&p.Story, &p.Photos, &p.Approved, &p.KnownYes, &p.KnownNo, &p.CreatedAt,
	)
	return p, err
}

// isInvalidUUID catches 22P02 invalid_text_representation for id params that
// are not UUIDs; callers treat those like a missing record.
func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

func wrapStoreErr(op string, err error) error {
	if isInvalidUUID(err) {
		return ErrNotFound
	}
	return dErrors.Wrap(fmt.Errorf("%s: %w", op, err), dErrors.CodeUnavailable, "profile store error")
}
