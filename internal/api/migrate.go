package api

import (
	"net/http"
	"strconv"
	"time"

	"hunter-market/internal/migration"

	"github.com/gin-gonic/gin"
)

// RunMigration: POST /api/v1/migration/run?limit=&keyword=&startDate=&endDate=
// Always answers 200 with both success and failure tallies; per-record
// failures never abort the batch.
func (h *APIHandler) RunMigration(c *gin.Context) {
	opts := migration.RunOptions{Keyword: c.Query("keyword")}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "limit must be a positive integer"})
			return
		}
		opts.Limit = limit
	}
	if startStr := c.Query("startDate"); startStr != "" {
		start, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "startDate must be formatted as YYYY-MM-DD"})
			return
		}
		opts.StartDate = start
	}
	if endStr := c.Query("endDate"); endStr != "" {
		end, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "endDate must be formatted as YYYY-MM-DD"})
			return
		}
		opts.EndDate = end.Add(24*time.Hour - time.Nanosecond)
	}

	result, err := h.migrator.Run(opts)
	if err != nil {
		h.internalError(c, err)
		return
	}
	status, err := h.migrator.Status()
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Migration batch completed",
		"stats": gin.H{
			"totalSource":     status.TotalSource,
			"migratedCount":   status.MigratedCount,
			"remaining":       status.Remaining,
			"percentComplete": status.PercentComplete,
		},
		"results": result,
	})
}

// MigrationStatus: GET /api/v1/migration/status
func (h *APIHandler) MigrationStatus(c *gin.Context) {
	status, err := h.migrator.Status()
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
