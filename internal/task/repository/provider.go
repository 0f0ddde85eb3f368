package repository

import (
	"github.com/kandev/taskboard/internal/db"
	"github.com/kandev/taskboard/internal/task/repository/sqlite"
)

// Provide creates the SQL repository on top of the pool's writer and reader.
func Provide(pool *db.Pool) (*sqlite.Repository, func() error, error) {
	repo, err := sqlite.NewWithDB(pool.Writer(), pool.Reader())
	if err != nil {
		return nil, nil, err
	}
	return repo, repo.Close, nil
}

var _ Repository = (*sqlite.Repository)(nil)
