package source

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const (
	sqliteDriver = "sqlite"

	createSQLiteEntitiesTable = `CREATE TABLE IF NOT EXISTS entities (
		seq INTEGER PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		detail TEXT NOT NULL DEFAULT '{}'
	)`
)

//nolint:gochecknoglobals // Immutable dialect description.
var sqliteDialect = dialect{name: "sqlite"}

// OpenSQLite opens (and creates when missing) the entity database at path.
func OpenSQLite(path string, pageSize int) (*SQLSource, error) {
	if path == "" {
		return nil, errors.New("sqlite path cannot be empty")
	}
	if pageSize <= 0 {
		pageSize = DefaultMockPageSize
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open(sqliteDriver, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(createSQLiteEntitiesTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create entities table: %w", err)
	}
	return &SQLSource{db: db, dialect: sqliteDialect, pageSize: pageSize}, nil
}
