package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/rsm-13/green-prism/internal/mlscore"
	"github.com/rsm-13/green-prism/internal/scorer"
	"github.com/rsm-13/green-prism/internal/store"
)

// newStore opens the configured store backend and runs migrations.
func newStore(ctx context.Context) (store.Store, error) {
	var (
		s   store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite", "":
		s, err = store.NewSQLite(cfg.Store.SQLitePath)
	case "postgres":
		s, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Migrate(ctx); err != nil {
		s.Close() //nolint:errcheck
		return nil, err
	}
	return s, nil
}

// newEngine builds the scoring engine with the learned scorer attached. The
// model artifact loads lazily on first use; a missing artifact just means
// learned and blend requests degrade to rule-only scoring.
func newEngine() (*scorer.Engine, error) {
	if err := scorer.ValidateConfig(cfg.Engine, cfg.Impact); err != nil {
		return nil, err
	}
	return scorer.New(cfg.Engine, cfg.Impact, mlscore.New(cfg.ML.ModelPath)), nil
}
