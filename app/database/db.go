package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB is the explicit store handle, opened once at process start and closed
// on shutdown.
type DB struct {
	*sql.DB
}

// NewConnection opens the SQLite database at path and verifies it is
// reachable. ":memory:" is accepted for tests.
func NewConnection(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// modernc's driver is not safe for concurrent writers over multiple
	// connections on one file.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}
