package controllers

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// paginationParams reads page/limit query parameters with sane defaults
func paginationParams(c *gin.Context) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit, (page - 1) * limit
}

// paginationMeta builds the pagination block for list responses
func paginationMeta(page, limit int, total int64) gin.H {
	return gin.H{
		"page":       page,
		"limit":      limit,
		"totalPages": int(math.Ceil(float64(total) / float64(limit))),
	}
}

// parseSort turns a comma-separated sort parameter ("-created_at,name")
// into an ORDER BY clause. Only whitelisted columns are accepted; anything
// else falls back to the default clause.
func parseSort(c *gin.Context, allowed map[string]bool, defaultOrder string) string {
	raw := c.Query("sort")
	if raw == "" {
		return defaultOrder
	}

	var clauses []string
	for _, field := range strings.Split(raw, ",") {
		direction := "ASC"
		if strings.HasPrefix(field, "-") {
			field = strings.TrimPrefix(field, "-")
			direction = "DESC"
		}
		if allowed[field] {
			clauses = append(clauses, field+" "+direction)
		}
	}
	if len(clauses) == 0 {
		return defaultOrder
	}
	return strings.Join(clauses, ", ")
}

// paramID parses a numeric id path parameter; ok is false after an error
// response has been written.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(400, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid " + name + " parameter",
			},
		})
		return 0, false
	}
	return uint(id), true
}
