// Package columncache keeps the pages of each board column that have been fetched
// from the task store.
//
// A column's view is the concatenation of its pages in fetch order. Because pages
// are requested sorted by position, the view is the column's ascending order up to
// the last loaded page. Pages are never patched in place: after a mutation the
// affected columns are invalidated and the next read starts again from page 1.
//
// Each column carries a generation counter that Invalidate bumps. A fetch records
// the generation it was issued under and its result is dropped if the column was
// invalidated before it landed, so a slow response can not resurrect a view that
// a later move already discarded.
package columncache

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/kandev/taskboard/internal/board/state"
	"github.com/kandev/taskboard/internal/common/logger"
	"github.com/kandev/taskboard/internal/task/models"
	"github.com/kandev/taskboard/internal/taskclient"
)

// DefaultPageSize is the number of tasks requested per page.
const DefaultPageSize = 5

// maxLoadAttempts bounds how often Load refetches page 1 when its result keeps
// arriving after an invalidation.
const maxLoadAttempts = 3

var (
	// ErrFetchSuspended is returned by FetchNextPage while a drag is in progress.
	ErrFetchSuspended = errors.New("fetching more tasks is suspended while dragging")
	// ErrNoMorePages is returned by FetchNextPage once the column is fully loaded.
	ErrNoMorePages = errors.New("no more pages")
	// ErrStaleFetch is returned when a fetched page was dropped because the
	// column changed while the request was in flight.
	ErrStaleFetch = errors.New("column changed while fetching")
)

// PageFetcher loads one page of a column sorted by ascending position.
// *taskclient.Client implements it.
type PageFetcher interface {
	ColumnPage(ctx context.Context, column models.Column, number, perPage int) (taskclient.Page, error)
}

// Cache is safe for concurrent use.
type Cache struct {
	fetcher  PageFetcher
	ui       *state.UI
	pageSize int
	log      *logger.Logger

	mu    sync.Mutex
	pages map[models.Column][]taskclient.Page
	gens  map[models.Column]uint64
}

// New creates a cache. A pageSize <= 0 selects DefaultPageSize.
func New(fetcher PageFetcher, ui *state.UI, pageSize int, log *logger.Logger) *Cache {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if ui == nil {
		ui = state.New()
	}
	return &Cache{
		fetcher:  fetcher,
		ui:       ui,
		pageSize: pageSize,
		log:      log,
		pages:    make(map[models.Column][]taskclient.Page),
		gens:     make(map[models.Column]uint64),
	}
}

// PageSize returns the number of tasks requested per page.
func (c *Cache) PageSize() int {
	return c.pageSize
}

// Load returns the column's view, fetching page 1 first when nothing is loaded.
func (c *Cache) Load(ctx context.Context, column models.Column) ([]taskclient.Task, error) {
	for attempt := 0; attempt < maxLoadAttempts; attempt++ {
		if c.Loaded(column) {
			return c.Tasks(column), nil
		}
		err := c.fetchPage(ctx, column, 1)
		switch {
		case err == nil, errors.Is(err, errPageRace):
			return c.Tasks(column), nil
		case errors.Is(err, ErrStaleFetch):
			continue
		default:
			return nil, err
		}
	}
	return nil, ErrStaleFetch
}

// FetchNextPage loads the page after the last loaded one and returns the
// extended view. It loads page 1 when the column is empty.
func (c *Cache) FetchNextPage(ctx context.Context, column models.Column) ([]taskclient.Task, error) {
	if c.ui.Dragging() {
		return nil, ErrFetchSuspended
	}

	c.mu.Lock()
	pages := c.pages[column]
	next := len(pages) + 1
	if len(pages) > 0 && !pages[len(pages)-1].HasMore {
		c.mu.Unlock()
		return nil, ErrNoMorePages
	}
	c.mu.Unlock()

	if err := c.fetchPage(ctx, column, next); err != nil {
		if errors.Is(err, errPageRace) {
			return c.Tasks(column), nil
		}
		return nil, err
	}
	return c.Tasks(column), nil
}

// errPageRace means another caller already stored the page being fetched.
var errPageRace = errors.New("page already loaded")

// fetchPage requests page number of column and stores it if the column was not
// invalidated in the meantime and the page is still the next one expected.
func (c *Cache) fetchPage(ctx context.Context, column models.Column, number int) error {
	c.mu.Lock()
	gen := c.gens[column]
	c.mu.Unlock()

	page, err := c.fetcher.ColumnPage(ctx, column, number, c.pageSize)
	if err != nil {
		c.log.WithContext(ctx).WithColumn(string(column)).WithError(err).
			Warn("failed to fetch column page", zap.Int("page", number))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[column] != gen {
		c.log.Debug("dropping stale column page",
			zap.String("column", string(column)),
			zap.Int("page", number),
			zap.Uint64("issued_gen", gen),
			zap.Uint64("current_gen", c.gens[column]))
		return ErrStaleFetch
	}
	if len(c.pages[column]) != number-1 {
		return errPageRace
	}
	page.Number = number
	c.pages[column] = append(c.pages[column], page)
	return nil
}

// Tasks returns a copy of the column's currently loaded view.
func (c *Cache) Tasks(column models.Column) []taskclient.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []taskclient.Task{}
	for _, p := range c.pages[column] {
		out = append(out, p.Tasks...)
	}
	return out
}

// HasMore reports whether the store may hold tasks past the loaded view.
// A column with nothing loaded yet reports true.
func (c *Cache) HasMore(column models.Column) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	pages := c.pages[column]
	if len(pages) == 0 {
		return true
	}
	return pages[len(pages)-1].HasMore
}

// LoadedPages returns how many pages of the column are loaded.
func (c *Cache) LoadedPages(column models.Column) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pages[column])
}

// Loaded reports whether the column has at least one page loaded.
func (c *Cache) Loaded(column models.Column) bool {
	return c.LoadedPages(column) > 0
}

// Generation returns the column's invalidation counter.
func (c *Cache) Generation(column models.Column) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[column]
}

// Invalidate discards the loaded pages of each column.
func (c *Cache) Invalidate(columns ...models.Column) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, col := range columns {
		delete(c.pages, col)
		c.gens[col]++
	}
	if len(columns) > 0 {
		c.log.Debug("invalidated columns", zap.Int("count", len(columns)))
	}
}

// InvalidateAll discards every loaded column.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	cols := append([]models.Column(nil), models.Columns...)
	for col := range c.pages {
		if !col.Valid() {
			cols = append(cols, col)
		}
	}
	c.mu.Unlock()
	c.Invalidate(cols...)
}

// Refresh invalidates the column and fetches again as many pages as were
// loaded before, stopping early when the store has no more.
func (c *Cache) Refresh(ctx context.Context, column models.Column) ([]taskclient.Task, error) {
	n := c.LoadedPages(column)
	if n == 0 {
		n = 1
	}
	c.Invalidate(column)

	for number := 1; number <= n; number++ {
		if err := c.fetchPage(ctx, column, number); err != nil && !errors.Is(err, errPageRace) {
			return nil, err
		}
		if !c.HasMore(column) {
			break
		}
	}
	return c.Tasks(column), nil
}
