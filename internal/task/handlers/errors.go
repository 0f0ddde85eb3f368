package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/kandev/taskboard/internal/common/errors"
	"github.com/kandev/taskboard/internal/common/logger"
)

// handleError maps service errors to HTTP responses. Unknown errors are logged
// and reported as 500 without their details.
func handleError(c *gin.Context, log *logger.Logger, err error, fallback string) {
	status := apperrors.GetHTTPStatus(err)
	switch {
	case apperrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperrors.IsBadRequest(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.WithContext(c.Request.Context()).Error(fallback, zap.Error(err))
		c.JSON(status, gin.H{"error": fallback})
	}
}
