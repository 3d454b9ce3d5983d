package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Seifallahbhj/beyana-Naturellement-Bio/config"
	"github.com/Seifallahbhj/beyana-Naturellement-Bio/services"
	"github.com/Seifallahbhj/beyana-Naturellement-Bio/utils"
)

// respondError is the single translation layer from service and store
// errors to the uniform JSON error body. Every handler failure that is not
// a binding error funnels through here.
func respondError(c *gin.Context, err error) {
	var appErr *services.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	var uploadErr *utils.FileUploadError
	if errors.As(err, &uploadErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    uploadErr.Code,
				"message": uploadErr.Message,
			},
		})
		return
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Resource not found",
			},
		})
		return
	}

	if isDuplicateKeyError(err) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DUPLICATE_VALUE",
				"message": "A record with this value already exists",
			},
		})
		return
	}

	body := gin.H{
		"code":    "SERVER_ERROR",
		"message": "Something went wrong",
	}
	// Error details are only exposed outside production
	if cfg := config.GetConfig(); cfg == nil || !cfg.IsProduction() {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   body,
	})
}

// respondBindingError renders a request binding/validation failure
func respondBindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": utils.FormatBindingError(err),
		},
	})
}

// isDuplicateKeyError detects unique constraint violations
// (works with both PostgreSQL and SQLite)
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique")
}
