package migrate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Cache remembers content hashes of already-migrated files so repeated runs
// skip unchanged inputs. Backed by a small SQLite database.
type Cache struct {
	conn *sqlite.Conn
	log  *zap.Logger
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS migrated (
	path        TEXT PRIMARY KEY,
	hash        TEXT NOT NULL,
	run_id      TEXT NOT NULL,
	warnings    INTEGER NOT NULL DEFAULT 0,
	migrated_at TEXT NOT NULL
);`

// OpenCache opens or creates the cache database.
func OpenCache(path string, log *zap.Logger) (*Cache, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate)
	if err != nil {
		return nil, fmt.Errorf("unable to open cache database %q: %w", path, err)
	}
	if err := sqlitex.ExecuteTransient(conn, cacheSchema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to initialize cache schema: %w", err)
	}
	return &Cache{conn: conn, log: log.Named("cache")}, nil
}

func (c *Cache) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Hash returns the content hash used as the cache key.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Unchanged reports whether the file was already migrated with this exact
// content.
func (c *Cache) Unchanged(path, hash string) bool {
	if c == nil || c.conn == nil {
		return false
	}
	var stored string
	err := sqlitex.Execute(c.conn, `SELECT hash FROM migrated WHERE path = ?`,
		&sqlitex.ExecOptions{
			Args: []any{path},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				stored = stmt.ColumnText(0)
				return nil
			},
		})
	if err != nil {
		c.log.Warn("Cache lookup failed", zap.String("path", path), zap.Error(err))
		return false
	}
	return stored == hash
}

// Record stores the migration outcome for a file.
func (c *Cache) Record(path, hash, runID string, warnings int) error {
	if c == nil || c.conn == nil {
		return nil
	}
	return sqlitex.Execute(c.conn,
		`INSERT INTO migrated (path, hash, run_id, warnings, migrated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET hash = excluded.hash, run_id = excluded.run_id,
			warnings = excluded.warnings, migrated_at = excluded.migrated_at`,
		&sqlitex.ExecOptions{
			Args: []any{path, hash, runID, warnings, time.Now().UTC().Format(time.RFC3339)},
		})
}
