package session

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresBackend struct {
	pool      *pgxpool.Pool
	namespace string
}

// NewPostgres returns a Store backed by the session_fields table. Fields are
// scoped by namespace so several storefront processes can share one database.
func NewPostgres(pool *pgxpool.Pool, namespace string) *Store {
	return New(&postgresBackend{pool: pool, namespace: namespace})
}

func (p *postgresBackend) Load(ctx context.Context, key string) (string, bool, error) {
	const q = `
SELECT value
FROM session_fields
WHERE namespace = $1 AND key = $2
`
	var value string
	if err := p.pool.QueryRow(ctx, q, p.namespace, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (p *postgresBackend) Save(ctx context.Context, key, value string) error {
	const q = `
INSERT INTO session_fields (namespace, key, value, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (namespace, key) DO UPDATE SET
    value = EXCLUDED.value,
    updated_at = EXCLUDED.updated_at
`
	_, err := p.pool.Exec(ctx, q, p.namespace, key, value)
	return err
}

func (p *postgresBackend) Remove(ctx context.Context, keys ...string) error {
	const q = `
DELETE FROM session_fields
WHERE namespace = $1 AND key = ANY($2)
`
	_, err := p.pool.Exec(ctx, q, p.namespace, keys)
	return err
}

// Close is a no-op; the pool is owned by the caller.
func (p *postgresBackend) Close() error {
	return nil
}
