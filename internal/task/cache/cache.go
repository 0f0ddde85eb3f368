// Package cache wraps a task repository with a Redis cache for list queries.
//
// Cached lists are keyed by column and query parameters plus a per-column
// generation counter. A mutation bumps the generation of every column it
// touches (and of the unfiltered listing), so stale entries become unreachable
// and age out through their TTL. Redis errors never fail a request; the cache
// falls back to the wrapped repository.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kandev/taskboard/internal/common/logger"
	"github.com/kandev/taskboard/internal/task/models"
	"github.com/kandev/taskboard/internal/task/repository"
)

const allColumns = "_all"

// Repository decorates a repository.Repository with list caching.
type Repository struct {
	base   repository.Repository
	redis  *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

var _ repository.Repository = (*Repository)(nil)

// New wraps base. A nil client or a zero ttl disables caching.
func New(base repository.Repository, client *redis.Client, ttl time.Duration, log *logger.Logger) *Repository {
	if base == nil {
		panic("cache.New: base repository is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Repository{base: base, redis: client, ttl: ttl, logger: log}
}

type cachedList struct {
	Tasks []*models.Task `json:"tasks"`
	Total int            `json:"total"`
}

// ListTasks serves from Redis when possible.
func (r *Repository) ListTasks(ctx context.Context, opts models.ListOptions) ([]*models.Task, int, error) {
	key, ok := r.listKey(ctx, opts)
	if ok {
		if hit, found := r.load(ctx, key); found {
			return hit.Tasks, hit.Total, nil
		}
	}

	tasks, total, err := r.base.ListTasks(ctx, opts)
	if err != nil {
		return nil, 0, err
	}
	if ok {
		r.store(ctx, key, cachedList{Tasks: tasks, Total: total})
	}
	return tasks, total, nil
}

func (r *Repository) GetTask(ctx context.Context, id string) (*models.Task, error) {
	return r.base.GetTask(ctx, id)
}

func (r *Repository) CreateTask(ctx context.Context, task *models.Task) error {
	if err := r.base.CreateTask(ctx, task); err != nil {
		return err
	}
	r.Evict(ctx, task.Column)
	return nil
}

// UpdateTask evicts both the previous and the new column of a moved task.
func (r *Repository) UpdateTask(ctx context.Context, task *models.Task) error {
	touched := []models.Column{task.Column}
	if prev, err := r.base.GetTask(ctx, task.ID); err == nil && prev.Column != task.Column {
		touched = append(touched, prev.Column)
	}
	if err := r.base.UpdateTask(ctx, task); err != nil {
		return err
	}
	r.Evict(ctx, touched...)
	return nil
}

func (r *Repository) DeleteTask(ctx context.Context, id string) error {
	prev, getErr := r.base.GetTask(ctx, id)
	if err := r.base.DeleteTask(ctx, id); err != nil {
		return err
	}
	if getErr == nil {
		r.Evict(ctx, prev.Column)
	} else {
		r.Evict(ctx, models.Columns...)
	}
	return nil
}

func (r *Repository) RebalanceColumn(ctx context.Context, column models.Column, renumber repository.Renumberer) ([]*models.Task, error) {
	tasks, err := r.base.RebalanceColumn(ctx, column, renumber)
	if err != nil {
		return nil, err
	}
	r.Evict(ctx, column)
	return tasks, nil
}

func (r *Repository) Close() error {
	return r.base.Close()
}

// Evict invalidates cached lists for the given columns and the unfiltered listing.
func (r *Repository) Evict(ctx context.Context, columns ...models.Column) {
	if r.redis == nil {
		return
	}
	pipe := r.redis.TxPipeline()
	pipe.Incr(ctx, generationKey(allColumns))
	for _, c := range columns {
		pipe.Incr(ctx, generationKey(string(c)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Warn("failed to evict task list cache", zap.Error(err))
	}
}

func (r *Repository) listKey(ctx context.Context, opts models.ListOptions) (string, bool) {
	if r.redis == nil || r.ttl == 0 {
		return "", false
	}
	scope := allColumns
	if opts.Column != "" {
		scope = string(opts.Column)
	}
	gen, err := r.redis.Get(ctx, generationKey(scope)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", false
	}
	return fmt.Sprintf("tasks:list:%s:%d:%s:%t:%d:%d:%d",
		scope, gen, opts.Sort, opts.Desc, opts.Page, opts.PerPage, opts.Limit), true
}

func (r *Repository) load(ctx context.Context, key string) (cachedList, bool) {
	data, err := r.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			_ = r.redis.Del(ctx, key).Err()
		}
		return cachedList{}, false
	}
	var hit cachedList
	if err := json.Unmarshal(data, &hit); err != nil {
		_ = r.redis.Del(ctx, key).Err()
		return cachedList{}, false
	}
	return hit, true
}

func (r *Repository) store(ctx context.Context, key string, list cachedList) {
	data, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := r.redis.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.logger.Debug("failed to cache task list", zap.String("key", key), zap.Error(err))
	}
}

func generationKey(scope string) string {
	return "tasks:gen:" + scope
}
