package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ShredDB manages the SQLite database for shred history
type ShredDB struct {
	db *sql.DB
}

// Actions recorded per target
const (
	ActionShred = "SHRED" // All passes completed
	ActionSkip  = "SKIP"  // Target refused before any write (safety, dry-run)
	ActionError = "ERROR" // Target failed partway
)

// ShredRecord represents one target outcome
type ShredRecord struct {
	ID           int64
	Timestamp    time.Time
	Action       string
	Path         string
	FileName     string
	Size         int64
	Passes       int
	Blocks       int64
	BlockLen     int64
	SafeMode     bool
	Removed      bool
	DurationMs   int64
	ErrorMessage string
	CreatedAt    time.Time
}

// NewShredDB creates a new database connection and initializes schema
func NewShredDB(dbPath string) (*ShredDB, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// file: prefix with _loc=auto enables automatic DATETIME parsing
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	// A trivial query both tests the connection and creates the file
	if _, err = db.Exec("SELECT 1"); err != nil {
		return nil, fmt.Errorf("failed to initialize database (check permissions on %s): %w", dbPath, err)
	}

	// WAL mode so the query tool can read while a shred run writes
	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err = db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	sdb := &ShredDB{db: db}
	if err = sdb.initSchema(); err != nil {
		return nil, err
	}

	// Clear the deferred error handler since we succeeded
	err = nil
	return sdb, nil
}

// initSchema creates tables and indexes if they don't exist
func (d *ShredDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS shreds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		action TEXT NOT NULL,
		path TEXT NOT NULL,
		file_name TEXT,
		size INTEGER NOT NULL,

		passes INTEGER NOT NULL,
		blocks INTEGER NOT NULL,
		block_len INTEGER NOT NULL,
		safe_mode INTEGER NOT NULL,
		removed INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,

		error_message TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_timestamp ON shreds(timestamp);
	CREATE INDEX IF NOT EXISTS idx_action ON shreds(action);
	CREATE INDEX IF NOT EXISTS idx_path ON shreds(path);
	CREATE INDEX IF NOT EXISTS idx_size ON shreds(size);

	-- Metadata table for schema versioning
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := d.db.Exec(schema)
	return err
}

// RecordShred inserts one target outcome into the database
func (d *ShredDB) RecordShred(rec ShredRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	query := `
	INSERT INTO shreds (
		timestamp, action, path, file_name, size,
		passes, blocks, block_len, safe_mode, removed,
		duration_ms, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := d.db.Exec(
		query,
		rec.Timestamp,
		rec.Action,
		rec.Path,
		filepath.Base(rec.Path),
		rec.Size,
		rec.Passes,
		rec.Blocks,
		rec.BlockLen,
		rec.SafeMode,
		rec.Removed,
		rec.DurationMs,
		rec.ErrorMessage,
	)

	return err
}

// Close closes the database connection
func (d *ShredDB) Close() error {
	return d.db.Close()
}

// Vacuum optimizes the database (run periodically)
func (d *ShredDB) Vacuum() error {
	_, err := d.db.Exec("VACUUM")
	return err
}
