// Package handlers exposes the task service over HTTP with gin.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kandev/taskboard/internal/common/errors"
	"github.com/kandev/taskboard/internal/common/logger"
	"github.com/kandev/taskboard/internal/task/models"
	"github.com/kandev/taskboard/internal/task/service"
)

// TaskHandlers serves the /tasks resource.
type TaskHandlers struct {
	service *service.Service
	logger  *logger.Logger
}

// NewTaskHandlers creates new task handlers.
func NewTaskHandlers(svc *service.Service, log *logger.Logger) *TaskHandlers {
	return &TaskHandlers{service: svc, logger: log}
}

// RegisterTaskRoutes mounts the task routes on router.
func RegisterTaskRoutes(router gin.IRouter, svc *service.Service, log *logger.Logger) {
	h := NewTaskHandlers(svc, log)
	router.GET("/tasks", h.httpListTasks)
	router.GET("/tasks/:id", h.httpGetTask)
	router.POST("/tasks", h.httpCreateTask)
	router.PATCH("/tasks/:id", h.httpUpdateTask)
	router.DELETE("/tasks/:id", h.httpDeleteTask)
	router.POST("/columns/:column/rebalance", h.httpRebalanceColumn)
}

// httpListTasks answers with a page envelope when _page is present and a bare array otherwise.
func (h *TaskHandlers) httpListTasks(c *gin.Context) {
	opts, err := parseListOptions(c)
	if err != nil {
		handleError(c, h.logger, err, "failed to list tasks")
		return
	}

	result, err := h.service.ListTasks(c.Request.Context(), opts)
	if err != nil {
		handleError(c, h.logger, err, "failed to list tasks")
		return
	}

	if opts.Page > 0 {
		c.JSON(http.StatusOK, newPageEnvelope(result.Tasks, result.Total, opts.Page, opts.PerPage))
		return
	}
	c.JSON(http.StatusOK, result.Tasks)
}

func (h *TaskHandlers) httpGetTask(c *gin.Context) {
	task, err := h.service.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, h.logger, err, "failed to get task")
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandlers) httpCreateTask(c *gin.Context) {
	var req service.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	task, err := h.service.CreateTask(c.Request.Context(), &req)
	if err != nil {
		handleError(c, h.logger, err, "failed to create task")
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandlers) httpUpdateTask(c *gin.Context) {
	var req service.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	task, err := h.service.UpdateTask(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleError(c, h.logger, err, "failed to update task")
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandlers) httpDeleteTask(c *gin.Context) {
	if err := h.service.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, h.logger, err, "failed to delete task")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TaskHandlers) httpRebalanceColumn(c *gin.Context) {
	column, err := models.ParseColumn(c.Param("column"))
	if err != nil {
		handleError(c, h.logger, apperrors.ValidationError("column", err.Error()), "failed to rebalance column")
		return
	}

	tasks, err := h.service.RebalanceColumn(c.Request.Context(), column)
	if err != nil {
		handleError(c, h.logger, err, "failed to rebalance column")
		return
	}
	c.JSON(http.StatusOK, tasks)
}
