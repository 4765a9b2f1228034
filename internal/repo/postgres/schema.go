package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the four relations on startup. The unique constraints
// here are the safety mechanism for the swipe/match engine: the engine treats
// a 23505 on swipes as the authoritative already-swiped signal, and the
// partial index on matches makes an active pair unique regardless of which
// side triggered reciprocity.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	telegram_id BIGINT NOT NULL UNIQUE,
	username TEXT NOT NULL DEFAULT '',
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
		`CREATE TABLE IF NOT EXISTS gifts (
	id BIGSERIAL PRIMARY KEY,
	owner_telegram_id BIGINT NOT NULL REFERENCES users (telegram_id) ON DELETE CASCADE,
	gift_id TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	is_visible BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
		`CREATE INDEX IF NOT EXISTS idx_gifts_owner ON gifts (owner_telegram_id)`,
		`CREATE TABLE IF NOT EXISTS swipes (
	id BIGSERIAL PRIMARY KEY,
	actor_telegram_id BIGINT NOT NULL REFERENCES users (telegram_id),
	gift_id BIGINT NOT NULL REFERENCES gifts (id) ON DELETE CASCADE,
	is_like BOOLEAN NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT swipes_actor_gift_unique UNIQUE (actor_telegram_id, gift_id)
)`,
		`CREATE TABLE IF NOT EXISTS matches (
	id BIGSERIAL PRIMARY KEY,
	user_a_id BIGINT NOT NULL REFERENCES users (telegram_id),
	user_b_id BIGINT NOT NULL REFERENCES users (telegram_id),
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT matches_pair_ordered CHECK (user_a_id < user_b_id)
)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_matches_active_pair
	ON matches (user_a_id, user_b_id) WHERE is_active`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}
