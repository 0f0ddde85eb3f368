// Package seed loads task fixtures from YAML into the store.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	apperrors "github.com/kandev/taskboard/internal/common/errors"
	"github.com/kandev/taskboard/internal/common/logger"
	"github.com/kandev/taskboard/internal/task/models"
	"github.com/kandev/taskboard/internal/task/service"
)

// File is the fixture document:
//
//	tasks:
//	  - id: t1
//	    title: Write docs
//	    column: backlog
//	    position: 65536
type File struct {
	Tasks []Task `yaml:"tasks"`
}

// Task is one fixture entry. A missing position appends to the column.
type Task struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Column      string `yaml:"column"`
	Position    *int64 `yaml:"position"`
}

// Result counts what Load did.
type Result struct {
	Created int
	Skipped int
}

// Parse decodes a fixture document.
func Parse(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return &f, nil
}

// LoadFile parses path and loads it.
func LoadFile(ctx context.Context, path string, svc *service.Service, log *logger.Logger) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open fixtures: %w", err)
	}
	defer func() { _ = f.Close() }()

	doc, err := Parse(f)
	if err != nil {
		return Result{}, err
	}
	return Load(ctx, doc, svc, log)
}

// Load creates every fixture task. Tasks whose id already exists are skipped,
// so seeding twice is harmless.
func Load(ctx context.Context, doc *File, svc *service.Service, log *logger.Logger) (Result, error) {
	var res Result
	for i, t := range doc.Tasks {
		column, err := models.ParseColumn(t.Column)
		if err != nil {
			return res, fmt.Errorf("fixture %d: %w", i, err)
		}
		if t.ID != "" {
			if _, err := svc.GetTask(ctx, t.ID); err == nil {
				res.Skipped++
				continue
			} else if !apperrors.IsNotFound(err) {
				return res, fmt.Errorf("fixture %d: %w", i, err)
			}
		}

		_, err = svc.CreateTask(ctx, &service.CreateTaskRequest{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Column:      column,
			Position:    t.Position,
		})
		if err != nil {
			return res, fmt.Errorf("fixture %d: %w", i, err)
		}
		res.Created++
	}

	log.Info("fixtures loaded", zap.Int("created", res.Created), zap.Int("skipped", res.Skipped))
	return res, nil
}
