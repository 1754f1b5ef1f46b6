package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/rsm-13/green-prism/internal/db"
	"github.com/rsm-13/green-prism/internal/model"
)

// PostgresStore implements Store using a pgx connection pool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS bonds (
	bond_id                 TEXT PRIMARY KEY,
	source_dataset          TEXT NOT NULL DEFAULT '',
	isin                    TEXT NOT NULL DEFAULT '',
	issuer_name             TEXT NOT NULL DEFAULT '',
	issuer_type             TEXT NOT NULL DEFAULT '',
	country                 TEXT NOT NULL DEFAULT '',
	currency                TEXT NOT NULL DEFAULT '',
	amount_issued_usd       DOUBLE PRECISION,
	issue_year              INTEGER,
	maturity_year           INTEGER,
	use_of_proceeds         TEXT NOT NULL DEFAULT '',
	disclosure_text         TEXT NOT NULL DEFAULT '',
	external_review_type    TEXT NOT NULL DEFAULT '',
	certification           TEXT NOT NULL DEFAULT '',
	claimed_impact_co2_tons DOUBLE PRECISION,
	project_category        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS disclosure_scores (
	id                 TEXT PRIMARY KEY,
	bond_id            TEXT NOT NULL REFERENCES bonds(bond_id),
	mode               TEXT NOT NULL,
	transparency_score DOUBLE PRECISION NOT NULL,
	result             JSONB NOT NULL,
	scored_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_bonds_issuer ON bonds(issuer_name);
CREATE INDEX IF NOT EXISTS idx_scores_bond_id ON disclosure_scores(bond_id);
CREATE INDEX IF NOT EXISTS idx_scores_scored_at ON disclosure_scores(scored_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) ListBonds(ctx context.Context, limit int) ([]model.Bond, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+bondColumns+` FROM bonds ORDER BY bond_id LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list bonds")
	}
	defer rows.Close()

	var bonds []model.Bond
	for rows.Next() {
		var b model.Bond
		if err := scanBond(rows, &b); err != nil {
			return nil, eris.Wrap(err, "postgres: scan bond")
		}
		bonds = append(bonds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate bonds")
	}
	return bonds, nil
}

func (s *PostgresStore) GetBond(ctx context.Context, bondID string) (*model.Bond, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+bondColumns+` FROM bonds WHERE bond_id = $1`, bondID)

	var b model.Bond
	if err := scanBond(row, &b); err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "postgres: get bond %s", bondID)
	}
	return &b, nil
}

func (s *PostgresStore) UpsertBonds(ctx context.Context, bonds []model.Bond) (int, error) {
	if len(bonds) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var n int
	for _, b := range bonds {
		if _, err := tx.Exec(ctx, `
			INSERT INTO bonds (`+bondColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			ON CONFLICT (bond_id) DO UPDATE SET
				source_dataset = excluded.source_dataset,
				isin = excluded.isin,
				issuer_name = excluded.issuer_name,
				issuer_type = excluded.issuer_type,
				country = excluded.country,
				currency = excluded.currency,
				amount_issued_usd = excluded.amount_issued_usd,
				issue_year = excluded.issue_year,
				maturity_year = excluded.maturity_year,
				use_of_proceeds = excluded.use_of_proceeds,
				disclosure_text = excluded.disclosure_text,
				external_review_type = excluded.external_review_type,
				certification = excluded.certification,
				claimed_impact_co2_tons = excluded.claimed_impact_co2_tons,
				project_category = excluded.project_category`,
			b.BondID, b.SourceDataset, b.ISIN, b.IssuerName, b.IssuerType,
			b.Country, b.Currency, b.AmountIssuedUSD, b.IssueYear, b.MaturityYear,
			b.UseOfProceeds, b.DisclosureText, b.ExternalReview, b.Certification,
			b.ClaimedImpactTons, b.ProjectCategory,
		); err != nil {
			return n, eris.Wrapf(err, "postgres: upsert bond %s", b.BondID)
		}
		n++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "postgres: commit upsert")
	}
	return n, nil
}

func (s *PostgresStore) SaveScore(ctx context.Context, bondID string, result *model.ScoreResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return eris.Wrapf(err, "postgres: marshal score for %s", bondID)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO disclosure_scores (id, bond_id, mode, transparency_score, result, scored_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New().String(), bondID, string(result.Mode), result.TransparencyScore,
		payload, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: insert score for %s", bondID)
}

func (s *PostgresStore) LatestScore(ctx context.Context, bondID string) (*model.ScoreResult, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT result FROM disclosure_scores WHERE bond_id = $1 ORDER BY scored_at DESC LIMIT 1`,
		bondID,
	).Scan(&payload)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "postgres: latest score for %s", bondID)
	}

	var result model.ScoreResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, eris.Wrapf(err, "postgres: decode score for %s", bondID)
	}
	return &result, nil
}
