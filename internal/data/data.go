package data

import (
	"context"
	"fmt"

	"github.com/itspaddysday/paddybot/internal/biz/repo"
	"github.com/itspaddysday/paddybot/internal/conf"
)

// NewStateRepo creates the state repository for the configured backend.
func NewStateRepo(ctx context.Context, cfg conf.StateConfig) (repo.StateRepo, error) {
	switch cfg.Backend {
	case conf.BackendJSON:
		return NewJSONStateRepo(cfg.JSONPath)
	case conf.BackendSQLite:
		return NewSQLiteStateRepo(cfg.SQLitePath)
	case conf.BackendPostgres:
		return NewPostgresStateRepo(ctx, cfg.PostgresURL)
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.Backend)
	}
}
