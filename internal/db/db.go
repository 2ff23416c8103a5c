package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens a SQLite database. The pragmas ride in the DSN so that every
// connection the pool opens gets them: a plain Exec would configure only
// whichever connection happened to serve it, leaving later connections
// with foreign keys off and cascade deletes broken. WAL mode keeps
// readers unblocked during the moderation workflow's write transactions.
func Open(path string) (*sql.DB, error) {
	dsn := "file:" + path +
		"?_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)"

	database, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return database, nil
}
