// Package db opens the task store database for either SQLite or PostgreSQL.
package db

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/kandev/taskboard/internal/common/config"
)

// sqlx driver names.
const (
	SQLite3 = "sqlite3"
	PGX     = "pgx"
)

// IsPostgres returns true if the driver is PostgreSQL (pgx).
func IsPostgres(driver string) bool {
	return driver == PGX
}

// Open returns a Pool for the configured driver.
func Open(cfg config.DatabaseConfig) (*Pool, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "sqlite":
		writer, reader, err := openSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		return NewPool(SQLite3, sqlx.NewDb(writer, SQLite3), sqlx.NewDb(reader, SQLite3)), nil
	case "postgres":
		conn, err := openPostgres(cfg)
		if err != nil {
			return nil, err
		}
		shared := sqlx.NewDb(conn, PGX)
		return NewPool(PGX, shared, shared), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}
