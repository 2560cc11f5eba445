package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const (
	postgresDriver = "pgx"

	createPostgresEntitiesTable = `CREATE TABLE IF NOT EXISTS entities (
		seq BIGINT PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		detail TEXT NOT NULL DEFAULT '{}'
	)`
)

//nolint:gochecknoglobals // Immutable dialect description.
var postgresDialect = dialect{
	name:        "postgres",
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
}

// OpenPostgres connects to dsn, checks the connection and creates the entities table
// when it is missing.
func OpenPostgres(ctx context.Context, dsn string, pageSize int) (*SQLSource, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn cannot be empty")
	}
	if pageSize <= 0 {
		pageSize = DefaultMockPageSize
	}
	db, err := sql.Open(postgresDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &TransportError{Op: "connect", Err: err}
	}
	if _, err = db.ExecContext(ctx, createPostgresEntitiesTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create entities table: %w", err)
	}
	return &SQLSource{db: db, dialect: postgresDialect, pageSize: pageSize}, nil
}
