package recorder

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"StockBoard/internal/model"
)

// SQLiteRecorder persists the run journal to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			fx_rate     REAL,
			fx_source   TEXT,
			succeeded   INTEGER NOT NULL,
			failed      INTEGER NOT NULL,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS instrument_results (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id    TEXT NOT NULL REFERENCES runs(id),
			position  INTEGER NOT NULL,
			symbol    TEXT NOT NULL,
			ok        INTEGER NOT NULL,
			price_eur REAL,
			error     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run ON instrument_results(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores the run and its per-symbol outcomes in one transaction.
// A report without an ID gets a fresh one.
func (r *SQLiteRecorder) RecordRun(rep *model.RunReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs
		(id, started_at, finished_at, fx_rate, fx_source, succeeded, failed, error)
		VALUES (?,?,?,?,?,?,?,?)`,
		rep.ID, rep.StartedAt.Unix(), rep.FinishedAt.Unix(),
		nullFloat(rep.Rate.Value), rep.Rate.Source,
		len(rep.Succeeded()), len(rep.Failed()), errText(rep.Err),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, res := range rep.Results {
		var price any
		if res.OK() && res.Record.PriceEUR != nil {
			price = *res.Record.PriceEUR
		}
		if _, err := tx.Exec(`INSERT INTO instrument_results
			(run_id, position, symbol, ok, price_eur, error)
			VALUES (?,?,?,?,?,?)`,
			rep.ID, i, res.Symbol, res.OK(), price, errText(res.Err),
		); err != nil {
			return fmt.Errorf("insert result %s: %w", res.Symbol, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func nullFloat(v float64) any {
	if v == 0 {
		return nil
	}
	return v
}

func errText(err error) any {
	if err == nil {
		return nil
	}
	return err.Error()
}
