package migration

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"hunter-market/internal/models"
	"hunter-market/internal/pricing"

	"gorm.io/gorm"
)

// Classifier is the generative classification call. Implementations never
// fail; they fall back internally.
type Classifier interface {
	Classify(title, content string) pricing.Classification
}

// Searcher is the comparable-price shopping search. Implementations return
// an empty slice on any failure.
type Searcher interface {
	Search(query string, display int) []pricing.SearchResult
}

// ProgressEvent is emitted once per processed record.
type ProgressEvent struct {
	Index  int    `json:"index"`
	Total  int    `json:"total"`
	PostID uint   `json:"post_id"`
	Title  string `json:"title"`
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// Service runs the everytime -> hunt migration.
type Service struct {
	db         *gorm.DB
	classifier Classifier
	searcher   Searcher
	progress   func(ProgressEvent)
}

func NewService(db *gorm.DB, classifier Classifier, searcher Searcher) *Service {
	return &Service{db: db, classifier: classifier, searcher: searcher}
}

// SetProgressFunc registers a per-record callback (websocket broadcast).
func (s *Service) SetProgressFunc(fn func(ProgressEvent)) {
	s.progress = fn
}

// RunOptions scope the candidate set for one batch.
type RunOptions struct {
	Limit     int
	Keyword   string
	StartDate time.Time
	EndDate   time.Time
}

// FailedItem records one per-record save failure.
type FailedItem struct {
	ID     uint   `json:"id"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// RunResult aggregates one batch.
type RunResult struct {
	Total          int          `json:"total"`
	TotalRemaining int          `json:"totalRemaining"`
	Success        int          `json:"success"`
	Failed         int          `json:"failed"`
	FailedItems    []FailedItem `json:"failedItems"`
}

// Run migrates up to opts.Limit not-yet-migrated posts. Individual save
// failures are recorded and the batch continues; only query errors against
// the store abort the run.
func (s *Service) Run(opts RunOptions) (*RunResult, error) {
	if opts.Limit <= 0 {
		opts.Limit = 20
	}

	q := s.db.Model(&models.EverytimePost{})
	if kw := strings.TrimSpace(opts.Keyword); kw != "" {
		like := "%" + kw + "%"
		q = q.Where("title LIKE ? OR content LIKE ?", like, like)
	}
	if !opts.StartDate.IsZero() {
		q = q.Where("created_at >= ?", opts.StartDate)
	}
	if !opts.EndDate.IsZero() {
		q = q.Where("created_at <= ?", opts.EndDate)
	}

	var posts []models.EverytimePost
	if err := q.Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to load everytime posts: %w", err)
	}

	migratedURLs, err := s.migratedURLs()
	if err != nil {
		return nil, err
	}
	candidates := FilterMigrated(posts, migratedURLs)

	batch := candidates
	if len(batch) > opts.Limit {
		batch = batch[:opts.Limit]
	}

	// postNumber allocation reads the max once and counts up locally. Two
	// concurrent batches can collide here; the unique index turns that into
	// a recorded per-item failure rather than a corrupted store.
	nextNumber, err := s.maxPostNumber()
	if err != nil {
		return nil, err
	}

	result := &RunResult{Total: len(batch), FailedItems: []FailedItem{}}
	for i, post := range batch {
		nextNumber++
		draft := MapPost(post, nextNumber)
		if s.classifier != nil {
			s.enrich(&draft)
		}

		if err := s.db.Create(&draft).Error; err != nil {
			item := FailedItem{ID: post.ID, Title: post.Title, Reason: err.Error()}
			if isDuplicateKey(err) {
				item.Reason = "duplicate key"
				item.Detail = duplicateDetail(err, draft)
			}
			result.Failed++
			result.FailedItems = append(result.FailedItems, item)
			s.emit(ProgressEvent{Index: i + 1, Total: len(batch), PostID: post.ID, Title: post.Title, Reason: item.Reason})
			log.Printf("[migration] failed to save post %d (%s): %v", post.ID, post.Title, err)
			continue
		}

		result.Success++
		s.emit(ProgressEvent{Index: i + 1, Total: len(batch), PostID: post.ID, Title: post.Title, OK: true})
	}
	result.TotalRemaining = len(candidates) - result.Success
	return result, nil
}

// enrich runs the price resolver against a draft: classification, shopping
// search, comparable campus listings, then the merged analysis.
func (s *Service) enrich(draft *models.Hunt) {
	cls := s.classifier.Classify(draft.Title, draft.Content)

	query := draft.Title
	if cls.Category != models.CategoryOther && cls.Category != models.CategoryUnknown {
		query += " " + cls.Category
	}
	var results []pricing.SearchResult
	if s.searcher != nil {
		results = s.searcher.Search(query, 10)
	}

	comparables, err := s.comparableHunts(cls.Category, draft.ID)
	if err != nil {
		log.Printf("[migration] comparable lookup failed: %v", err)
	}

	price, analysis := pricing.Analyze(cls, results, comparables, time.Now())
	draft.Category = cls.Category
	draft.Condition = cls.Condition
	draft.Price = price
	draft.PriceAnalysis = &analysis
}

// Reanalyze re-runs the price resolver against an existing listing and
// persists the refreshed analysis.
func (s *Service) Reanalyze(huntID uint) (*models.Hunt, error) {
	if s.classifier == nil {
		return nil, errors.New("price analysis is not configured")
	}
	var hunt models.Hunt
	if err := s.db.First(&hunt, huntID).Error; err != nil {
		return nil, err
	}
	s.enrich(&hunt)
	if err := s.db.Model(&models.Hunt{}).Where("id = ?", hunt.ID).
		Updates(map[string]interface{}{
			"category":       hunt.Category,
			"condition":      hunt.Condition,
			"price":          hunt.Price,
			"price_analysis": hunt.PriceAnalysis,
		}).Error; err != nil {
		return nil, err
	}
	return &hunt, nil
}

func (s *Service) migratedURLs() ([]string, error) {
	var urls []string
	err := s.db.Model(&models.Hunt{}).
		Where("is_from_everytime = ? AND everytime_url IS NOT NULL", true).
		Distinct().
		Pluck("everytime_url", &urls).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load migrated urls: %w", err)
	}
	return urls, nil
}

func (s *Service) maxPostNumber() (int, error) {
	var max int
	err := s.db.Model(&models.Hunt{}).
		Select("COALESCE(MAX(post_number), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read max post number: %w", err)
	}
	return max, nil
}

// comparableHunts finds priced active listings in the same category.
func (s *Service) comparableHunts(category string, excludeID uint) ([]models.Hunt, error) {
	if category == "" || category == models.CategoryUnknown {
		return nil, nil
	}
	var hunts []models.Hunt
	q := s.db.Where("category = ? AND price > 0 AND status = ?", category, models.StatusActive)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Order("created_at DESC").Limit(5).Find(&hunts).Error; err != nil {
		return nil, err
	}
	return hunts, nil
}

func (s *Service) emit(ev ProgressEvent) {
	if s.progress != nil {
		s.progress(ev)
	}
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint")
}

// duplicateDetail names the conflicting key and value from the driver error.
func duplicateDetail(err error, draft models.Hunt) string {
	msg := err.Error()
	if strings.Contains(msg, "post_number") {
		return fmt.Sprintf("post_number=%d", draft.PostNumber)
	}
	if strings.Contains(msg, "everytime_url") && draft.EverytimeURL != nil {
		return fmt.Sprintf("everytime_url=%s", *draft.EverytimeURL)
	}
	return msg
}
