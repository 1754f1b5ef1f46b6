// Package store persists bond records and disclosure scores behind a small
// interface with SQLite and Postgres backends.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/rsm-13/green-prism/internal/model"
)

// ErrNotFound is returned when a requested bond or score does not exist.
var ErrNotFound = eris.New("store: not found")

// Store defines the persistence interface for bonds and their scores.
type Store interface {
	// Bonds
	ListBonds(ctx context.Context, limit int) ([]model.Bond, error)
	GetBond(ctx context.Context, bondID string) (*model.Bond, error)
	UpsertBonds(ctx context.Context, bonds []model.Bond) (int, error)

	// Scores
	SaveScore(ctx context.Context, bondID string, result *model.ScoreResult) error
	LatestScore(ctx context.Context, bondID string) (*model.ScoreResult, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
