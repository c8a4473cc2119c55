package api

import (
	"net/http"

	"hunter-market/internal/config"
	"hunter-market/internal/migration"
	"hunter-market/internal/services/classify"
	"hunter-market/internal/services/shopsearch"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type APIHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	migrator *migration.Service
	hub      *Hub
}

func SetupRoutes(r *gin.RouterGroup, db *gorm.DB, cfg *config.Config) *APIHandler {
	handler := &APIHandler{
		db:  db,
		cfg: cfg,
		hub: NewHub(),
	}

	// 가격 분석이 설정된 경우에만 외부 클라이언트를 연결
	var classifier migration.Classifier
	var searcher migration.Searcher
	if cfg.OpenAIAPIKey != "" {
		classifier = classify.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	if cfg.NaverClientID != "" {
		searcher = shopsearch.NewClient(cfg.NaverClientID, cfg.NaverClientSecret)
	}
	handler.migrator = migration.NewService(db, classifier, searcher)
	handler.migrator.SetProgressFunc(handler.hub.Broadcast)

	// Everytime 원본 게시글 조회
	everytime := r.Group("/everytime")
	{
		everytime.GET("", handler.ListEverytimePosts)
		everytime.GET("/search", handler.SearchEverytimePosts)
		everytime.GET("/date-range", handler.EverytimePostsByDateRange)
		everytime.GET("/author/:author", handler.EverytimePostsByAuthor)
		everytime.GET("/url/*url", handler.GetEverytimePostByURL)
		everytime.GET("/:id", handler.GetEverytimePost)
	}

	// Hunt 마켓플레이스
	hunt := r.Group("/hunt")
	{
		hunt.GET("", handler.ListHunts)
		hunt.GET("/search", handler.SearchHunts)
		hunt.GET("/export", handler.ExportHunts)
		hunt.GET("/:id", handler.GetHunt)
		hunt.POST("", handler.Protect(), handler.CreateHunt)
		hunt.PUT("/:id", handler.Protect(), handler.UpdateHunt)
		hunt.DELETE("/:id", handler.Protect(), handler.DeleteHunt)
		hunt.POST("/:id/analyze", handler.Protect(), handler.AnalyzeHunt)
	}

	// 마이그레이션
	mig := r.Group("/migration")
	{
		mig.POST("/run", handler.RunMigration)
		mig.GET("/status", handler.MigrationStatus)
		mig.GET("/ws", handler.MigrationProgressWS)
	}

	// 사용자
	users := r.Group("/users")
	{
		users.POST("/register", handler.Register)
		users.POST("/login", handler.Login)
		users.GET("/me", handler.Protect(), handler.Me)
	}

	return handler
}

// internalError hides detail in production, per the error taxonomy.
func (h *APIHandler) internalError(c *gin.Context, err error) {
	body := gin.H{"message": "internal server error"}
	if !h.cfg.IsProduction() {
		body["detail"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}
