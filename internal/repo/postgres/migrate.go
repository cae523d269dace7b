package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                  BIGSERIAL PRIMARY KEY,
		name                TEXT NOT NULL,
		email               TEXT NOT NULL UNIQUE,
		password_hash       TEXT NOT NULL,
		role                TEXT NOT NULL DEFAULT 'user',
		password_changed_at TIMESTAMPTZ,
		reset_token_hash    TEXT,
		reset_token_expires TIMESTAMPTZ,
		active              BOOLEAN NOT NULL DEFAULT TRUE,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS tours (
		id         BIGSERIAL PRIMARY KEY,
		title      TEXT NOT NULL,
		slug       TEXT NOT NULL,
		days       INTEGER NOT NULL CHECK (days >= 1),
		price      DOUBLE PRECISION NOT NULL CHECK (price > 1000),
		places     TEXT[] NOT NULL DEFAULT '{}',
		inclusions TEXT[] NOT NULL DEFAULT '{}',
		optional   TEXT[] NOT NULL DEFAULT '{}',
		img_link   TEXT NOT NULL,
		page       JSONB,
		guide_id   BIGINT REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tours_slug ON tours (slug)`,
	`CREATE INDEX IF NOT EXISTS idx_tours_search ON tours
		USING GIN (to_tsvector('english', title || ' ' || array_to_string(places, ' ')))`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id         BIGSERIAL PRIMARY KEY,
		title      TEXT NOT NULL DEFAULT '',
		body       TEXT NOT NULL,
		rating     DOUBLE PRECISION NOT NULL CHECK (rating >= 0 AND rating <= 5),
		user_id    BIGINT NOT NULL REFERENCES users(id),
		tour_id    BIGINT NOT NULL REFERENCES tours(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_tour ON reviews (tour_id)`,
	`CREATE INDEX IF NOT EXISTS idx_users_reset_token ON users (reset_token_hash)`,
}

// Migrate applies the schema at startup. Statements are idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
