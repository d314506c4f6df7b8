package data

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/itspaddysday/paddybot/internal/biz/repo"
)

// postgresStateRepo persists the four sets in Postgres. Same shape as the
// SQLite backend; a serial column preserves insertion order.
type postgresStateRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresStateRepo creates a Postgres-backed state repository.
func NewPostgresStateRepo(ctx context.Context, connStr string) (repo.StateRepo, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	r := &postgresStateRepo{pool: pool}
	if err := r.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

func (r *postgresStateRepo) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS blacklisted_subs (pos SERIAL, id TEXT PRIMARY KEY)`,
		`CREATE TABLE IF NOT EXISTS whitelisted_subs (pos SERIAL, id TEXT PRIMARY KEY)`,
		`CREATE TABLE IF NOT EXISTS blacklisted_users (pos SERIAL, id TEXT PRIMARY KEY)`,
		`CREATE TABLE IF NOT EXISTS responded_posts (pos SERIAL, id TEXT PRIMARY KEY)`,
	}
	for _, q := range queries {
		if _, err := r.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}
	return nil
}

func (r *postgresStateRepo) add(ctx context.Context, table, id string) error {
	_, err := r.pool.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (id) VALUES ($1) ON CONFLICT DO NOTHING`, table), id)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

func (r *postgresStateRepo) contains(ctx context.Context, table, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)`, table), id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query %s: %w", table, err)
	}
	return exists, nil
}

func (r *postgresStateRepo) BlacklistCommunity(ctx context.Context, name string) error {
	return r.add(ctx, "blacklisted_subs", name)
}

func (r *postgresStateRepo) WhitelistCommunity(ctx context.Context, name string) error {
	return r.add(ctx, "whitelisted_subs", name)
}

func (r *postgresStateRepo) ListWhitelistedCommunities(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM whitelisted_subs ORDER BY pos`)
	if err != nil {
		return nil, fmt.Errorf("failed to list whitelisted subs: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan whitelisted sub: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *postgresStateRepo) BlacklistAuthor(ctx context.Context, authorID string) error {
	return r.add(ctx, "blacklisted_users", authorID)
}

func (r *postgresStateRepo) IsAuthorBlacklisted(ctx context.Context, authorID string) (bool, error) {
	return r.contains(ctx, "blacklisted_users", authorID)
}

func (r *postgresStateRepo) IsResponded(ctx context.Context, itemID string) (bool, error) {
	return r.contains(ctx, "responded_posts", itemID)
}

func (r *postgresStateRepo) RecordResponded(ctx context.Context, itemID string) error {
	return r.add(ctx, "responded_posts", itemID)
}

// Flush is a no-op; Postgres writes through.
func (r *postgresStateRepo) Flush() error {
	return nil
}

func (r *postgresStateRepo) Close() error {
	r.pool.Close()
	return nil
}
