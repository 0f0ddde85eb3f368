package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kandev/taskboard/internal/common/config"
)

const (
	postgresPingTimeout = 5 * time.Second
	postgresMaxConns    = 25
	postgresIdleConns   = 5
)

// openPostgres connects to the task database through pgx's database/sql
// driver. Zero pool sizes in cfg fall back to 25 open and 5 idle connections.
func openPostgres(cfg config.DatabaseConfig) (*sql.DB, error) {
	conn, err := sql.Open(PGX, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres %s/%s: %w", cfg.Host, cfg.DBName, err)
	}

	maxConns, idle := cfg.MaxConns, cfg.MinConns
	if maxConns <= 0 {
		maxConns = postgresMaxConns
	}
	if idle <= 0 {
		idle = postgresIdleConns
	}
	if idle > maxConns {
		idle = maxConns
	}
	conn.SetMaxOpenConns(maxConns)
	conn.SetMaxIdleConns(idle)

	ctx, cancel := context.WithTimeout(context.Background(), postgresPingTimeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping postgres %s/%s: %w", cfg.Host, cfg.DBName, err)
	}
	return conn, nil
}
