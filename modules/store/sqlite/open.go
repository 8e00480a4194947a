package sqlite

import (
	"database/sql"
	"log/slog"
	"path/filepath"

	"github.com/flemzord/tiermem/internal/tier"
)

// DefaultPath returns the database path used when none is configured.
func DefaultPath(dataDir string) string {
	return filepath.Join(dataDir, defaultDBFile)
}

// OpenStore opens a SQLite database at the given path and returns a
// tier.Store backed by it. The caller is responsible for closing the
// returned *sql.DB when done.
//
// The database is created with WAL mode, a 5 s busy timeout, and a single
// connection (SQLite serialises writes). The schema is migrated automatically.
// Used by one-shot CLI commands that run outside the module lifecycle.
func OpenStore(path string, logger *slog.Logger) (tier.Store, *sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := openDB(path, true, defaultBusyTimeout)
	if err != nil {
		return nil, nil, err
	}

	return &recordStore{db: db, logger: logger}, db, nil
}
