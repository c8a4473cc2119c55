package api

import (
	"fmt"
	"net/http"
	"time"

	"hunter-market/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHunts: GET /api/v1/hunt/export?status= — operator export of
// listings to a spreadsheet.
func (h *APIHandler) ExportHunts(c *gin.Context) {
	q := h.db.Model(&models.Hunt{})
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var items []models.Hunt
	if err := q.Order("post_number ASC").Find(&items).Error; err != nil {
		h.internalError(c, err)
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := "Sheet1"

	headers := []interface{}{
		"post_number", "title", "author", "category", "condition",
		"price", "status", "views", "from_everytime", "everytime_url", "created_at",
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		h.internalError(c, err)
		return
	}

	for i, item := range items {
		sourceURL := ""
		if item.EverytimeURL != nil {
			sourceURL = *item.EverytimeURL
		}
		row := []interface{}{
			item.PostNumber, item.Title, item.Author, item.Category, item.Condition,
			item.Price, item.Status, item.Views, item.IsFromEverytime, sourceURL,
			item.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			h.internalError(c, err)
			return
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		h.internalError(c, err)
		return
	}

	filename := fmt.Sprintf("hunts_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
