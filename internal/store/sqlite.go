package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/rsm-13/green-prism/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS bonds (
	bond_id                 TEXT PRIMARY KEY,
	source_dataset          TEXT NOT NULL DEFAULT '',
	isin                    TEXT NOT NULL DEFAULT '',
	issuer_name             TEXT NOT NULL DEFAULT '',
	issuer_type             TEXT NOT NULL DEFAULT '',
	country                 TEXT NOT NULL DEFAULT '',
	currency                TEXT NOT NULL DEFAULT '',
	amount_issued_usd       REAL,
	issue_year              INTEGER,
	maturity_year           INTEGER,
	use_of_proceeds         TEXT NOT NULL DEFAULT '',
	disclosure_text         TEXT NOT NULL DEFAULT '',
	external_review_type    TEXT NOT NULL DEFAULT '',
	certification           TEXT NOT NULL DEFAULT '',
	claimed_impact_co2_tons REAL,
	project_category        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS disclosure_scores (
	id                 TEXT PRIMARY KEY,
	bond_id            TEXT NOT NULL REFERENCES bonds(bond_id),
	mode               TEXT NOT NULL,
	transparency_score REAL NOT NULL,
	result             TEXT NOT NULL,
	scored_at          DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_bonds_issuer ON bonds(issuer_name);
CREATE INDEX IF NOT EXISTS idx_scores_bond_id ON disclosure_scores(bond_id);
CREATE INDEX IF NOT EXISTS idx_scores_scored_at ON disclosure_scores(scored_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const bondColumns = `bond_id, source_dataset, isin, issuer_name, issuer_type, country, currency,
	amount_issued_usd, issue_year, maturity_year, use_of_proceeds, disclosure_text,
	external_review_type, certification, claimed_impact_co2_tons, project_category`

func (s *SQLiteStore) ListBonds(ctx context.Context, limit int) ([]model.Bond, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bondColumns+` FROM bonds ORDER BY bond_id LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list bonds")
	}
	defer rows.Close()

	var bonds []model.Bond
	for rows.Next() {
		var b model.Bond
		if err := scanBond(rows, &b); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan bond")
		}
		bonds = append(bonds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate bonds")
	}
	return bonds, nil
}

func (s *SQLiteStore) GetBond(ctx context.Context, bondID string) (*model.Bond, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bondColumns+` FROM bonds WHERE bond_id = ?`, bondID)

	var b model.Bond
	if err := scanBond(row, &b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "sqlite: get bond %s", bondID)
	}
	return &b, nil
}

func (s *SQLiteStore) UpsertBonds(ctx context.Context, bonds []model.Bond) (int, error) {
	if len(bonds) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bonds (`+bondColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(bond_id) DO UPDATE SET
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
			project_category = excluded.project_category`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close()

	var n int
	for _, b := range bonds {
		if _, err := stmt.ExecContext(ctx,
			b.BondID, b.SourceDataset, b.ISIN, b.IssuerName, b.IssuerType,
			b.Country, b.Currency, b.AmountIssuedUSD, b.IssueYear, b.MaturityYear,
			b.UseOfProceeds, b.DisclosureText, b.ExternalReview, b.Certification,
			b.ClaimedImpactTons, b.ProjectCategory,
		); err != nil {
			return n, eris.Wrapf(err, "sqlite: upsert bond %s", b.BondID)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert")
	}
	return n, nil
}

func (s *SQLiteStore) SaveScore(ctx context.Context, bondID string, result *model.ScoreResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return eris.Wrapf(err, "sqlite: marshal score for %s", bondID)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO disclosure_scores (id, bond_id, mode, transparency_score, result, scored_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), bondID, string(result.Mode), result.TransparencyScore,
		string(payload), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert score for %s", bondID)
}

func (s *SQLiteStore) LatestScore(ctx context.Context, bondID string) (*model.ScoreResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT result FROM disclosure_scores WHERE bond_id = ? ORDER BY scored_at DESC LIMIT 1`,
		bondID,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "sqlite: latest score for %s", bondID)
	}

	var result model.ScoreResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, eris.Wrapf(err, "sqlite: decode score for %s", bondID)
	}
	return &result, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanBond(row scanner, b *model.Bond) error {
	return row.Scan(
		&b.BondID, &b.SourceDataset, &b.ISIN, &b.IssuerName, &b.IssuerType,
		&b.Country, &b.Currency, &b.AmountIssuedUSD, &b.IssueYear, &b.MaturityYear,
		&b.UseOfProceeds, &b.DisclosureText, &b.ExternalReview, &b.Certification,
		&b.ClaimedImpactTons, &b.ProjectCategory,
	)
}
