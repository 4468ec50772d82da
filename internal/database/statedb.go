package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/zonecheck/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "zonecheck.db"

// ErrCheckNotFound is returned when a check ID is not in the history.
var ErrCheckNotFound = errors.New("check not found")

// StateDB provides SQLite-based storage for configuration entries and
// check history.
type StateDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// now returns the current time; replaced in tests.
	now func() time.Time
}

// Options configures StateDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so that readers in other
	// processes are not blocked by a writer.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a StateDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*StateDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &StateDB{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := db.ExecContext(context.Background(), "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Path returns the path of the database file.
func (sdb *StateDB) Path() string {
	return sdb.dbPath
}

// Close closes the database connection.
func (sdb *StateDB) Close() error {
	return sdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (sdb *StateDB) createTables() error {
	schema := `
	-- Configuration entries, one row per storage key
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Completed security checks stored as JSON
	CREATE TABLE IF NOT EXISTS checks (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		checked_at TEXT NOT NULL,
		zone TEXT NOT NULL,
		score REAL,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_checks_checked_at ON checks(checked_at);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// Get returns the value stored under key. The second return value is
// false when the key has never been written.
func (sdb *StateDB) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := sdb.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return value, true, nil
}

// Put writes every entry in a single transaction: either all entries are
// stored or none is.
func (sdb *StateDB) Put(ctx context.Context, entries map[string]string) (err error) {
	tx, err := sdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
	INSERT INTO kv (key, value, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at
	`
	updatedAt := formatTimestamp(sdb.now())
	for key, value := range entries {
		if _, err = tx.ExecContext(ctx, query, key, value, updatedAt); err != nil {
			return fmt.Errorf("failed to write %q: %w", key, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// CheckMetadata is the summary of a stored check, used for listing.
type CheckMetadata struct {
	ID        string
	CheckedAt time.Time
	Zone      model.Zone
	Score     float64
}

// SaveCheck stores a completed check as JSON.
func (sdb *StateDB) SaveCheck(ctx context.Context, result *model.CheckResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to serialize check: %w", err)
	}

	query := `
	INSERT INTO checks (id, checked_at, zone, score, result_json)
	VALUES (?, ?, ?, ?, ?)
	`
	_, err = sdb.db.ExecContext(ctx, query,
		result.ID,
		formatTimestamp(result.CheckedAt),
		result.Zone().String(),
		result.Response.Score,
		string(resultJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save check: %w", err)
	}
	return nil
}

// ListChecks returns the metadata of the most recent checks, newest first.
// A non-positive limit returns every check.
func (sdb *StateDB) ListChecks(ctx context.Context, limit int) ([]CheckMetadata, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `
	SELECT id, checked_at, zone, score FROM checks
	ORDER BY checked_at DESC, seq DESC
	LIMIT ?
	`
	rows, err := sdb.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list checks: %w", err)
	}
	defer rows.Close()

	var results []CheckMetadata
	for rows.Next() {
		var (
			meta      CheckMetadata
			checkedAt string
			zone      string
			score     sql.NullFloat64
		)
		if err := rows.Scan(&meta.ID, &checkedAt, &zone, &score); err != nil {
			return nil, fmt.Errorf("failed to scan check: %w", err)
		}
		meta.CheckedAt = parseTimestamp(checkedAt)
		meta.Zone = model.ZoneOrYellow(zone)
		meta.Score = score.Float64
		results = append(results, meta)
	}
	return results, rows.Err()
}

// GetCheck retrieves a stored check by its ID.
func (sdb *StateDB) GetCheck(ctx context.Context, id string) (*model.CheckResult, error) {
	var resultJSON string
	err := sdb.db.QueryRowContext(ctx, `SELECT result_json FROM checks WHERE id = ?`, id).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCheckNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query check: %w", err)
	}
	return decodeCheck(resultJSON)
}

// LatestChecks returns up to n full checks, newest first.
func (sdb *StateDB) LatestChecks(ctx context.Context, n int) ([]*model.CheckResult, error) {
	query := `
	SELECT result_json FROM checks
	ORDER BY checked_at DESC, seq DESC
	LIMIT ?
	`
	rows, err := sdb.db.QueryContext(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query checks: %w", err)
	}
	defer rows.Close()

	var results []*model.CheckResult
	for rows.Next() {
		var resultJSON string
		if err := rows.Scan(&resultJSON); err != nil {
			return nil, fmt.Errorf("failed to scan check: %w", err)
		}
		result, err := decodeCheck(resultJSON)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

func decodeCheck(resultJSON string) (*model.CheckResult, error) {
	var result model.CheckResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse check: %w", err)
	}
	return &result, nil
}

// timestampLayout is the layout written by StateDB. It has a fixed width
// so that lexical order in SQLite equals chronological order.
const timestampLayout = "2006-01-02 15:04:05.000000000"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",  // SQLite default datetime format, fractional seconds accepted
	"2006-01-02T15:04:05Z", // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",  // ISO 8601 without timezone
	time.RFC3339,
	time.RFC3339Nano,
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
