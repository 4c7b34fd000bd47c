package push

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Schema creates the device token registry table.
const Schema = `
CREATE TABLE IF NOT EXISTS push_tokens (
	token         TEXT PRIMARY KEY,
	platform      TEXT NOT NULL DEFAULT '',
	registered_at TIMESTAMPTZ NOT NULL
);
`

// PostgresTokenStore persists device tokens via database/sql.
type PostgresTokenStore struct {
	db *sql.DB
}

func NewPostgresTokenStore(db *sql.DB) *PostgresTokenStore {
	return &PostgresTokenStore{db: db}
}

func (s *PostgresTokenStore) Register(ctx context.Context, token DeviceToken) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO push_tokens (token, platform, registered_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO UPDATE SET platform = EXCLUDED.platform`,
		token.Token, token.Platform, token.RegisteredAt,
	)
	if err != nil {
		return fmt.Errorf("register push token: %w", err)
	}
	return nil
}

func (s *PostgresTokenStore) List(ctx context.Context) ([]DeviceToken, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, platform, registered_at FROM push_tokens ORDER BY token`)
	if err != nil {
		return nil, fmt.Errorf("list push tokens: %w", err)
	}
	defer rows.Close()

	var out []DeviceToken
	for rows.Next() {
		var t DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform, &t.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan push token: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list push tokens: %w", err)
	}
	return out, nil
}

func (s *PostgresTokenStore) Remove(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM push_tokens WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("remove push token: %w", err)
	}
	return nil
}
