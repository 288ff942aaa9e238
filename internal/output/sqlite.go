package output

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/user/prodcheck/pkg/plugin"
)

// SQLiteWriter persists records into a local database, upserting by URL.
// Useful when the result set will be queried rather than eyeballed.
type SQLiteWriter struct {
	db *sql.DB
}

// NewSQLiteWriter opens (or creates) the database and initializes the schema.
func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	w := &SQLiteWriter{db: db}
	if err := w.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return w, nil
}

func (w *SQLiteWriter) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS results (
		url TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		title TEXT,
		product_id TEXT,
		price TEXT,
		availability TEXT,
		color TEXT,
		category TEXT,
		attempts INTEGER DEFAULT 0,
		checked_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_results_status ON results(status);
	`
	_, err := w.db.Exec(schema)
	return err
}

func (w *SQLiteWriter) Name() string { return "sqlite" }

func (w *SQLiteWriter) Flush(records []*plugin.ProductRecord) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO results (url, status, title, product_id, price, availability, color, category, attempts, checked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			status = EXCLUDED.status,
			title = EXCLUDED.title,
			product_id = EXCLUDED.product_id,
			price = EXCLUDED.price,
			availability = EXCLUDED.availability,
			color = EXCLUDED.color,
			category = EXCLUDED.category,
			attempts = EXCLUDED.attempts,
			checked_at = EXCLUDED.checked_at
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.Exec(rec.URL, string(rec.Status), rec.Title, rec.ProductID,
			rec.Price, rec.Availability, rec.Color, rec.Category,
			rec.Attempts, formatTimestamp(rec.Timestamp))
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to upsert result for %s: %w", rec.URL, err)
		}
	}

	return tx.Commit()
}

func (w *SQLiteWriter) Finalize(summary *plugin.RunSummary) error {
	if err := w.Flush(summary.Records); err != nil {
		w.db.Close()
		return err
	}
	return w.db.Close()
}
