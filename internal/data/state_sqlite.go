package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/itspaddysday/paddybot/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// sqliteStateRepo persists the four sets in SQLite, one table per concern.
// INSERT OR IGNORE gives idempotent adds; rowid preserves insertion order.
type sqliteStateRepo struct {
	db *sql.DB
}

// NewSQLiteStateRepo creates a SQLite-backed state repository.
func NewSQLiteStateRepo(dbPath string) (repo.StateRepo, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, table := range []string{
		"blacklisted_subs",
		"whitelisted_subs",
		"blacklisted_users",
		"responded_posts",
	} {
		_, err = db.Exec(fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY
			)
		`, table))
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}

	return &sqliteStateRepo{db: db}, nil
}

func (r *sqliteStateRepo) add(ctx context.Context, table, id string) error {
	_, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT OR IGNORE INTO %s (id) VALUES (?)`, table), id)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

func (r *sqliteStateRepo) contains(ctx context.Context, table, id string) (bool, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT 1 FROM %s WHERE id = ?`, table), id)
	var one int
	err := row.Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query %s: %w", table, err)
	}
	return true, nil
}

func (r *sqliteStateRepo) BlacklistCommunity(ctx context.Context, name string) error {
	return r.add(ctx, "blacklisted_subs", name)
}

func (r *sqliteStateRepo) WhitelistCommunity(ctx context.Context, name string) error {
	return r.add(ctx, "whitelisted_subs", name)
}

func (r *sqliteStateRepo) ListWhitelistedCommunities(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM whitelisted_subs ORDER BY rowid`)
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

func (r *sqliteStateRepo) BlacklistAuthor(ctx context.Context, authorID string) error {
	return r.add(ctx, "blacklisted_users", authorID)
}

func (r *sqliteStateRepo) IsAuthorBlacklisted(ctx context.Context, authorID string) (bool, error) {
	return r.contains(ctx, "blacklisted_users", authorID)
}

func (r *sqliteStateRepo) IsResponded(ctx context.Context, itemID string) (bool, error) {
	return r.contains(ctx, "responded_posts", itemID)
}

func (r *sqliteStateRepo) RecordResponded(ctx context.Context, itemID string) error {
	return r.add(ctx, "responded_posts", itemID)
}

// Flush is a no-op; SQLite writes through.
func (r *sqliteStateRepo) Flush() error {
	return nil
}

func (r *sqliteStateRepo) Close() error {
	return r.db.Close()
}
