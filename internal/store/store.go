// Package store provides SQLite-backed persistence for campaigns, opt-ins and
// the reminder audit log. The store is the single point of serialization for
// state mutations; it exclusively owns all rows.
package store

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the SQLite database connection.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the campaign database at path and applies migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate ensures the schema exists and applies incremental migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS campaigns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT,
		channel_id TEXT NOT NULL,
		message_id TEXT NOT NULL,
		emoji TEXT NOT NULL,
		remind_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		status TEXT NOT NULL DEFAULT 'active'
	);

	-- Uniqueness of (channel, message, emoji) is scoped to non-deleted rows so
	-- a tombstoned campaign can be recreated.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_campaigns_identity
		ON campaigns(channel_id, message_id, emoji) WHERE status != 'deleted';
	CREATE INDEX IF NOT EXISTS idx_campaigns_status ON campaigns(status);
	CREATE INDEX IF NOT EXISTS idx_campaigns_remind_at ON campaigns(remind_at);

	CREATE TABLE IF NOT EXISTS opt_ins (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		campaign_id INTEGER NOT NULL,
		user_id TEXT NOT NULL,
		username TEXT,
		tallied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (campaign_id) REFERENCES campaigns(id) ON DELETE CASCADE,
		UNIQUE(campaign_id, user_id)
	);

	CREATE INDEX IF NOT EXISTS idx_opt_ins_campaign ON opt_ins(campaign_id);
	CREATE INDEX IF NOT EXISTS idx_opt_ins_user ON opt_ins(user_id);

	CREATE TABLE IF NOT EXISTS reminder_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		campaign_id INTEGER NOT NULL,
		sent_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		recipient_count INTEGER NOT NULL,
		message_chunks INTEGER NOT NULL,
		success BOOLEAN NOT NULL,
		error_message TEXT,
		FOREIGN KEY (campaign_id) REFERENCES campaigns(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_reminder_logs_campaign ON reminder_logs(campaign_id);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return s.runMigrations()
}

// runMigrations applies incremental schema changes beyond the base schema.
func (s *Store) runMigrations() error {
	var version int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version); err != nil {
		version = 1
	}

	// No incremental migrations yet beyond v1.
	_ = version

	log.Printf("[store] opened %s (schema v%d)", s.path, version)
	return nil
}
