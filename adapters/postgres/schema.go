package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS chats (
	id                 BIGSERIAL PRIMARY KEY,
	user_id            TEXT NOT NULL DEFAULT '',
	user_message       TEXT NOT NULL,
	assistant_response TEXT NOT NULL,
	timestamp          TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS chats_user_timestamp_idx ON chats (user_id, timestamp, id);

CREATE TABLE IF NOT EXISTS scheduled_items (
	id          BIGSERIAL PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	start_time  TIMESTAMPTZ,
	end_time    TIMESTAMPTZ,
	is_reminder BOOLEAN NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS scheduled_items_start_idx ON scheduled_items (start_time NULLS LAST, id);
`

// Migrate creates the tables used by the repositories if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	// No arguments, so pgx uses the simple protocol and accepts several statements.
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}
