package db

import "github.com/jmoiron/sqlx"

// Pool provides separate read and write connections to the task database.
//
// With SQLite in WAL mode the writer is limited to one connection so writes
// serialize without SQLITE_BUSY, while list queries use the reader pool.
// With PostgreSQL both sides share the same *sqlx.DB.
type Pool struct {
	driver string
	writer *sqlx.DB
	reader *sqlx.DB
}

// NewPool creates a Pool from separate writer and reader connections.
func NewPool(driver string, writer, reader *sqlx.DB) *Pool {
	return &Pool{driver: driver, writer: writer, reader: reader}
}

// Driver returns the sqlx driver name (SQLite3 or PGX).
func (p *Pool) Driver() string { return p.driver }

// Writer returns the connection pool used for mutations and transactions.
func (p *Pool) Writer() *sqlx.DB { return p.writer }

// Reader returns the connection pool used for SELECT queries.
func (p *Pool) Reader() *sqlx.DB { return p.reader }

// Close closes both the writer and reader pools.
func (p *Pool) Close() error {
	wErr := p.writer.Close()
	if p.reader != p.writer {
		if rErr := p.reader.Close(); rErr != nil && wErr == nil {
			return rErr
		}
	}
	return wErr
}
