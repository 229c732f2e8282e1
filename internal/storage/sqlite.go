// Package storage persists computed tax data in SQLite for querying. The
// ledger JSONL remains the source of truth; the database is derived and
// can always be rebuilt from a fresh computation.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/eprbell/rp2go/internal/amount"
	"github.com/eprbell/rp2go/internal/tax"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		-- Gain/loss fragments per asset
		CREATE TABLE IF NOT EXISTS gains (
			asset TEXT NOT NULL,
			kind TEXT NOT NULL,
			crypto_amount TEXT NOT NULL,
			fiat_proceeds TEXT NOT NULL,
			fiat_cost_basis TEXT NOT NULL,
			fiat_gain TEXT NOT NULL,
			acquired_at INTEGER NOT NULL,
			disposed_at INTEGER NOT NULL,
			acquired_line INTEGER NOT NULL,
			disposed_line INTEGER NOT NULL,
			disposed_year INTEGER NOT NULL,
			long_term INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_gains_asset_year ON gains(asset, disposed_year);

		-- Final account balances per asset
		CREATE TABLE IF NOT EXISTS balances (
			asset TEXT NOT NULL,
			exchange TEXT NOT NULL,
			holder TEXT NOT NULL,
			crypto TEXT NOT NULL,
			PRIMARY KEY (asset, exchange, holder)
		);

		-- Source ledger hash per asset, for staleness detection
		CREATE TABLE IF NOT EXISTS meta (
			asset TEXT PRIMARY KEY,
			ledger_hash TEXT NOT NULL,
			computed_at INTEGER NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromComputed clears an asset's derived rows and reloads them
// from a computation result. ledgerHash identifies the ledger content the
// result came from.
func (d *DB) RebuildFromComputed(data *tax.ComputedData, ledgerHash string) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM gains WHERE asset = ?", data.Asset); err != nil {
		return 0, fmt.Errorf("clearing gains: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM balances WHERE asset = ?", data.Asset); err != nil {
		return 0, fmt.Errorf("clearing balances: %w", err)
	}

	gainStmt, err := tx.Prepare(`
		INSERT INTO gains (
			asset, kind, crypto_amount, fiat_proceeds, fiat_cost_basis, fiat_gain,
			acquired_at, disposed_at, acquired_line, disposed_line, disposed_year, long_term
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing gains insert: %w", err)
	}
	defer gainStmt.Close()

	count := 0
	for _, g := range data.GainLoss.Entries {
		longTerm := 0
		if g.LongTerm {
			longTerm = 1
		}
		_, err := gainStmt.Exec(
			g.Asset, string(g.Kind), g.CryptoAmount.Exact(),
			g.FiatProceeds.Exact(), g.FiatCostBasis.Exact(), g.Gain().Exact(),
			g.AcquiredAt.UTC().Unix(), g.DisposedAt.UTC().Unix(),
			g.AcquiredLine, g.DisposedLine, g.DisposedAt.UTC().Year(), longTerm,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting gain (disposed line %d): %w", g.DisposedLine, err)
		}
		count++
	}

	balStmt, err := tx.Prepare(`
		INSERT INTO balances (asset, exchange, holder, crypto) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing balances insert: %w", err)
	}
	defer balStmt.Close()

	for _, b := range data.Balances.Sorted() {
		if _, err := balStmt.Exec(data.Asset, b.Exchange, b.Holder, b.Crypto.Exact()); err != nil {
			return 0, fmt.Errorf("inserting balance %s/%s: %w", b.Exchange, b.Holder, err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO meta (asset, ledger_hash, computed_at) VALUES (?, ?, ?)
		ON CONFLICT(asset) DO UPDATE SET ledger_hash = excluded.ledger_hash, computed_at = excluded.computed_at
	`, data.Asset, ledgerHash, time.Now().UTC().Unix()); err != nil {
		return 0, fmt.Errorf("recording meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	return count, nil
}

// NeedsRebuild reports whether the stored rows for an asset are missing
// or derived from a different ledger content.
func (d *DB) NeedsRebuild(asset, ledgerHash string) (bool, error) {
	var stored string
	err := d.db.QueryRow("SELECT ledger_hash FROM meta WHERE asset = ?", asset).Scan(&stored)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("reading meta: %w", err)
	}
	return stored != ledgerHash, nil
}

// YearSummary aggregates an asset's stored gains for one year.
type YearSummary struct {
	Asset          string        `json:"asset"`
	Year           int           `json:"year"`
	Entries        int           `json:"entries"`
	TotalGain      amount.Amount `json:"total_gain"`
	LongTermGain   amount.Amount `json:"long_term_gain"`
	ShortTermGain  amount.Amount `json:"short_term_gain"`
	OrdinaryIncome amount.Amount `json:"ordinary_income"`
}

// SummarizeYear computes the per-year totals for an asset from stored
// rows.
func (d *DB) SummarizeYear(asset string, year int) (*YearSummary, error) {
	rows, err := d.db.Query(`
		SELECT kind, fiat_gain, long_term FROM gains
		WHERE asset = ? AND disposed_year = ?
		ORDER BY disposed_at, disposed_line
	`, asset, year)
	if err != nil {
		return nil, fmt.Errorf("querying gains: %w", err)
	}
	defer rows.Close()

	summary := &YearSummary{Asset: asset, Year: year}
	for rows.Next() {
		var kind, gainStr string
		var longTerm int
		if err := rows.Scan(&kind, &gainStr, &longTerm); err != nil {
			return nil, fmt.Errorf("scanning gain row: %w", err)
		}
		gain, err := amount.ParseExact(gainStr)
		if err != nil {
			return nil, fmt.Errorf("parsing stored gain: %w", err)
		}

		summary.Entries++
		summary.TotalGain = summary.TotalGain.Add(gain)
		switch {
		case tax.Kind(kind) == tax.KindOrdinary:
			summary.OrdinaryIncome = summary.OrdinaryIncome.Add(gain)
		case longTerm == 1:
			summary.LongTermGain = summary.LongTermGain.Add(gain)
		default:
			summary.ShortTermGain = summary.ShortTermGain.Add(gain)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading gain rows: %w", err)
	}

	return summary, nil
}

// Balances returns the stored final balances for an asset, ordered by
// exchange then holder.
func (d *DB) Balances(asset string) ([]tax.Balance, error) {
	rows, err := d.db.Query(`
		SELECT exchange, holder, crypto FROM balances
		WHERE asset = ? ORDER BY exchange, holder
	`, asset)
	if err != nil {
		return nil, fmt.Errorf("querying balances: %w", err)
	}
	defer rows.Close()

	var out []tax.Balance
	for rows.Next() {
		var b tax.Balance
		var crypto string
		if err := rows.Scan(&b.Exchange, &b.Holder, &crypto); err != nil {
			return nil, fmt.Errorf("scanning balance row: %w", err)
		}
		b.Crypto, err = amount.ParseExact(crypto)
		if err != nil {
			return nil, fmt.Errorf("parsing stored balance: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading balance rows: %w", err)
	}
	return out, nil
}
