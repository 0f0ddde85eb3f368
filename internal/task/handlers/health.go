package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kandev/taskboard/internal/events/bus"
)

// RegisterHealthRoutes mounts GET /health. The event bus is reported but never
// fails the check; the store works without it.
func RegisterHealthRoutes(router gin.IRouter, eventBus bus.EventBus) {
	router.GET("/health", func(c *gin.Context) {
		connected := eventBus != nil && eventBus.IsConnected()
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"event_bus": connected,
		})
	})
}
