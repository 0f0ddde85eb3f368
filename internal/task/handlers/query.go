package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kandev/taskboard/internal/common/errors"
	"github.com/kandev/taskboard/internal/task/models"
)

// defaultPerPage applies when _page is given without _per_page.
const defaultPerPage = 10

// parseListOptions reads the json-server style query parameters:
// column, _page, _per_page, _sort (a leading '-' sorts descending), _order and _limit.
func parseListOptions(c *gin.Context) (models.ListOptions, error) {
	var opts models.ListOptions

	if col := c.Query("column"); col != "" {
		column, err := models.ParseColumn(col)
		if err != nil {
			return opts, apperrors.ValidationError("column", err.Error())
		}
		opts.Column = column
	}

	sortParam := c.Query("_sort")
	if strings.HasPrefix(sortParam, "-") {
		opts.Desc = true
		sortParam = strings.TrimPrefix(sortParam, "-")
	}
	field, err := models.ParseSortField(sortParam)
	if err != nil {
		return opts, apperrors.ValidationError("_sort", err.Error())
	}
	opts.Sort = field

	switch strings.ToLower(c.Query("_order")) {
	case "", "asc":
	case "desc":
		opts.Desc = true
	default:
		return opts, apperrors.ValidationError("_order", "must be asc or desc")
	}

	if opts.Page, err = positiveInt(c, "_page"); err != nil {
		return opts, err
	}
	if opts.PerPage, err = positiveInt(c, "_per_page"); err != nil {
		return opts, err
	}
	if opts.Page > 0 && opts.PerPage == 0 {
		opts.PerPage = defaultPerPage
	}
	if opts.Limit, err = positiveInt(c, "_limit"); err != nil {
		return opts, err
	}
	return opts, nil
}

func positiveInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, apperrors.ValidationError(name, "must be a positive integer")
	}
	return v, nil
}

// pageEnvelope is the paginated list response.
type pageEnvelope struct {
	First int            `json:"first"`
	Prev  *int           `json:"prev"`
	Next  *int           `json:"next"`
	Last  int            `json:"last"`
	Pages int            `json:"pages"`
	Items int            `json:"items"`
	Data  []*models.Task `json:"data"`
}

func newPageEnvelope(tasks []*models.Task, total, page, perPage int) pageEnvelope {
	pages := (total + perPage - 1) / perPage
	if pages == 0 {
		pages = 1
	}
	env := pageEnvelope{
		First: 1,
		Last:  pages,
		Pages: pages,
		Items: total,
		Data:  tasks,
	}
	if page > 1 {
		prev := page - 1
		env.Prev = &prev
	}
	if page < pages {
		next := page + 1
		env.Next = &next
	}
	return env
}
