package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	sqliteBusyTimeout = 5 * time.Second
	sqliteReaderConns = 4
)

// sqliteDSN builds the go-sqlite3 connection string for the task database.
// The writer takes the write lock when a transaction begins so a column
// rebalance can not interleave with a concurrent move.
func sqliteDSN(path string, readOnly bool) string {
	q := url.Values{}
	q.Set("_busy_timeout", fmt.Sprint(sqliteBusyTimeout.Milliseconds()))
	if readOnly {
		q.Set("_mode", "ro")
	} else {
		q.Set("_mode", "rwc")
		q.Set("_journal_mode", "WAL")
		q.Set("_synchronous", "NORMAL")
		q.Set("_txlock", "immediate")
	}
	return "file:" + path + "?" + q.Encode()
}

// openSQLite returns the single-connection writer and the read-only pool
// for the task database at path, creating the file and its directory.
func openSQLite(path string) (writer, reader *sql.DB, err error) {
	path, err = prepareSQLiteFile(path)
	if err != nil {
		return nil, nil, err
	}

	writer, err = sql.Open(SQLite3, sqliteDSN(path, false))
	if err != nil {
		return nil, nil, fmt.Errorf("open task database %s: %w", path, err)
	}
	writer.SetMaxOpenConns(1)
	writer.SetMaxIdleConns(1)

	reader, err = sql.Open(SQLite3, sqliteDSN(path, true))
	if err != nil {
		_ = writer.Close()
		return nil, nil, fmt.Errorf("open task database %s read-only: %w", path, err)
	}
	reader.SetMaxOpenConns(sqliteReaderConns)
	reader.SetMaxIdleConns(sqliteReaderConns)

	return writer, reader, nil
}

// prepareSQLiteFile makes path absolute and creates it if missing. The
// read-only pool can not open a file that does not exist yet.
func prepareSQLiteFile(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("sqlite database path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve database path %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("create database directory: %w", err)
	}
	f, err := os.OpenFile(abs, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return "", fmt.Errorf("create database file: %w", err)
	}
	return abs, f.Close()
}
