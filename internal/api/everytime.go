package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hunter-market/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// pageParams reads page/limit with the defaults the frontend expects.
func pageParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func totalPages(total int64, limit int) int64 {
	return int64(math.Ceil(float64(total) / float64(limit)))
}

// ListEverytimePosts: GET /api/v1/everytime?page=&limit=&sort=&order=
func (h *APIHandler) ListEverytimePosts(c *gin.Context) {
	page, limit := pageParams(c)
	sort := c.DefaultQuery("sort", "created_at")
	order := c.DefaultQuery("order", "desc")
	switch sort {
	case "created_at", "id", "author":
	default:
		sort = "created_at"
	}
	if order != "asc" {
		order = "desc"
	}

	var posts []models.EverytimePost
	var total int64
	q := h.db.Model(&models.EverytimePost{})
	if err := q.Count(&total).Error; err != nil {
		h.internalError(c, err)
		return
	}
	if err := q.Order(sort + " " + order).
		Offset((page - 1) * limit).Limit(limit).
		Find(&posts).Error; err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":       posts,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
		"totalPosts":  total,
	})
}

// SearchEverytimePosts: GET /api/v1/everytime/search?keyword=
func (h *APIHandler) SearchEverytimePosts(c *gin.Context) {
	keyword := c.Query("keyword")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Search keyword is required"})
		return
	}
	page, limit := pageParams(c)
	like := "%" + keyword + "%"

	var posts []models.EverytimePost
	var total int64
	q := h.db.Model(&models.EverytimePost{}).
		Where("title LIKE ? OR content LIKE ?", like, like)
	if err := q.Count(&total).Error; err != nil {
		h.internalError(c, err)
		return
	}
	if err := q.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&posts).Error; err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":       posts,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
		"totalPosts":  total,
	})
}

// EverytimePostsByDateRange: GET /api/v1/everytime/date-range?startDate=&endDate=
func (h *APIHandler) EverytimePostsByDateRange(c *gin.Context) {
	startStr := c.Query("startDate")
	endStr := c.Query("endDate")
	if startStr == "" || endStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Start date and end date are required"})
		return
	}
	start, err1 := time.Parse("2006-01-02", startStr)
	end, err2 := time.Parse("2006-01-02", endStr)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Dates must be formatted as YYYY-MM-DD"})
		return
	}
	page, limit := pageParams(c)

	var posts []models.EverytimePost
	var total int64
	q := h.db.Model(&models.EverytimePost{}).
		Where("created_at >= ? AND created_at <= ?", start, end.Add(24*time.Hour-time.Nanosecond))
	if err := q.Count(&total).Error; err != nil {
		h.internalError(c, err)
		return
	}
	if err := q.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&posts).Error; err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":       posts,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
		"totalPosts":  total,
	})
}

// EverytimePostsByAuthor: GET /api/v1/everytime/author/:author
func (h *APIHandler) EverytimePostsByAuthor(c *gin.Context) {
	author := c.Param("author")
	page, limit := pageParams(c)

	var posts []models.EverytimePost
	var total int64
	q := h.db.Model(&models.EverytimePost{}).Where("author = ?", author)
	if err := q.Count(&total).Error; err != nil {
		h.internalError(c, err)
		return
	}
	if err := q.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&posts).Error; err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":       posts,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
		"totalPosts":  total,
	})
}

// GetEverytimePostByURL: GET /api/v1/everytime/url/*url
// The catch-all keeps slashes in the source URL inside one param; the
// router has already percent-decoded the path, so the param arrives plain
// whether or not the client encoded it.
func (h *APIHandler) GetEverytimePostByURL(c *gin.Context) {
	target := strings.TrimPrefix(c.Param("url"), "/")
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Post URL is required"})
		return
	}

	var post models.EverytimePost
	if err := h.db.Where("url = ?", target).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Everytime post not found"})
			return
		}
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// GetEverytimePost: GET /api/v1/everytime/:id
func (h *APIHandler) GetEverytimePost(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return
	}

	var post models.EverytimePost
	if err := h.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Everytime post not found"})
			return
		}
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}
