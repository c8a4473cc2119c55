package api

import (
	"errors"
	"net/http"
	"strconv"

	"hunter-market/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListHunts: GET /api/v1/hunt?page=&limit=&status=&sort=&order=
func (h *APIHandler) ListHunts(c *gin.Context) {
	page, limit := pageParams(c)
	sort := c.DefaultQuery("sort", "created_at")
	order := c.DefaultQuery("order", "desc")
	switch sort {
	case "created_at", "price", "post_number", "views", "likes":
	default:
		sort = "created_at"
	}
	if order != "asc" {
		order = "desc"
	}

	q := h.db.Model(&models.Hunt{})
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var items []models.Hunt
	var total int64
	if err := q.Count(&total).Error; err != nil {
		h.internalError(c, err)
		return
	}
	if err := q.Order(sort + " " + order).
		Offset((page - 1) * limit).Limit(limit).
		Find(&items).Error; err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
		"totalItems":  total,
	})
}

// SearchHunts: GET /api/v1/hunt/search?keyword=&category=&status=
func (h *APIHandler) SearchHunts(c *gin.Context) {
	page, limit := pageParams(c)

	q := h.db.Model(&models.Hunt{})
	if keyword := c.Query("keyword"); keyword != "" {
		like := "%" + keyword + "%"
		q = q.Where("title LIKE ? OR content LIKE ?", like, like)
	}
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var items []models.Hunt
	var total int64
	if err := q.Count(&total).Error; err != nil {
		h.internalError(c, err)
		return
	}
	if err := q.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&items).Error; err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
		"totalItems":  total,
	})
}

// GetHunt: GET /api/v1/hunt/:id — also bumps the view counter.
func (h *APIHandler) GetHunt(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return
	}

	var item models.Hunt
	if err := h.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Hunt item not found"})
			return
		}
		h.internalError(c, err)
		return
	}

	item.Views++
	_ = h.db.Model(&models.Hunt{}).Where("id = ?", item.ID).
		UpdateColumn("views", item.Views).Error

	c.JSON(http.StatusOK, item)
}

type createHuntRequest struct {
	Title        string `json:"title" binding:"required"`
	Content      string `json:"content" binding:"required"`
	Category     string `json:"category" binding:"required"`
	Condition    string `json:"condition" binding:"required"`
	Price        int    `json:"price"`
	ImageURL     string `json:"image_url"`
	EverytimeURL string `json:"everytime_url"`
}

// CreateHunt: POST /api/v1/hunt (auth required). Allocates the next
// postNumber the same best-effort way the migration does.
func (h *APIHandler) CreateHunt(c *gin.Context) {
	var req createHuntRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields"})
		return
	}
	if req.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Price must be non-negative"})
		return
	}
	user := currentUser(c)

	if req.EverytimeURL != "" {
		var existing models.Hunt
		err := h.db.Where("everytime_url = ?", req.EverytimeURL).First(&existing).Error
		if err == nil {
			c.JSON(http.StatusConflict, gin.H{"message": "An item with this source URL already exists"})
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			h.internalError(c, err)
			return
		}
	}

	var max int
	if err := h.db.Model(&models.Hunt{}).
		Select("COALESCE(MAX(post_number), 0)").Scan(&max).Error; err != nil {
		h.internalError(c, err)
		return
	}

	item := models.Hunt{
		PostNumber: max + 1,
		Title:      req.Title,
		Content:    req.Content,
		Author:     user.Nickname,
		Category:   req.Category,
		Condition:  req.Condition,
		Price:      req.Price,
		ImageURL:   req.ImageURL,
		Status:     models.StatusActive,
		UserID:     &user.ID,
	}
	if req.EverytimeURL != "" {
		url := req.EverytimeURL
		item.EverytimeURL = &url
	}

	if err := h.db.Create(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"message": "Duplicate post number or source URL, please retry"})
			return
		}
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Hunt item created successfully", "item": item})
}

// updatableHuntFields whitelists what PUT may touch.
var updatableHuntFields = map[string]bool{
	"title": true, "content": true, "category": true, "condition": true,
	"price": true, "image_url": true, "status": true,
}

// UpdateHunt: PUT /api/v1/hunt/:id
func (h *APIHandler) UpdateHunt(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}
	updates := map[string]interface{}{}
	for k, v := range body {
		if updatableHuntFields[k] {
			updates[k] = v
		}
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "no updatable fields"})
		return
	}

	var item models.Hunt
	if err := h.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Hunt item not found"})
			return
		}
		h.internalError(c, err)
		return
	}

	if err := h.db.Model(&item).Updates(updates).Error; err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Hunt item updated successfully", "item": item})
}

// DeleteHunt: DELETE /api/v1/hunt/:id
func (h *APIHandler) DeleteHunt(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return
	}

	result := h.db.Delete(&models.Hunt{}, id)
	if result.Error != nil {
		h.internalError(c, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Hunt item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Hunt item deleted successfully"})
}

// AnalyzeHunt: POST /api/v1/hunt/:id/analyze — re-runs the price resolver.
func (h *APIHandler) AnalyzeHunt(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return
	}

	item, err := h.migrator.Reanalyze(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Hunt item not found"})
			return
		}
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Price analysis updated", "item": item})
}
