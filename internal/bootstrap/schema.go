package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied on every startup. Every statement is idempotent, so
// there is no separate migration step to run before deploying.
const schema = `
CREATE TABLE IF NOT EXISTS profiles (
    id                   TEXT PRIMARY KEY,
    email                TEXT NOT NULL DEFAULT '',
    generation_count     INT NOT NULL DEFAULT 0,
    is_subscribed        BOOLEAN NOT NULL DEFAULT FALSE,
    subscription_expiry  BIGINT NOT NULL DEFAULT 0,
    last_generation_date TIMESTAMPTZ,
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS projects (
    id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id    TEXT NOT NULL,
    name       TEXT NOT NULL,
    prompt     TEXT NOT NULL DEFAULT '',
    code       TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_projects_user_created
    ON projects(user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS synthesis_memory (
    id            SERIAL PRIMARY KEY,
    error_pattern  TEXT NOT NULL,
    solution_logic TEXT NOT NULL,
    brief_context  TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS shouts (
    id         BIGSERIAL PRIMARY KEY,
    author     TEXT NOT NULL,
    phrase     TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_shouts_created ON shouts(created_at DESC);
`

// EnsureSchema creates any missing tables and indexes.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
