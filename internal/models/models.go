package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// NoImageSentinel is the marker the crawler writes when a post has no image.
const NoImageSentinel = "이미지 없음"

// Listing status values
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusExpired   = "expired"
)

// Condition labels, ordered best to worst
const (
	ConditionBest    = "best"
	ConditionGood    = "good"
	ConditionSoso    = "soso"
	ConditionBad     = "bad"
	ConditionWorst   = "worst"
	ConditionUnknown = "unknown"
)

// Category values as shown in the sell form
const (
	CategoryMobility    = "모빌리티"
	CategoryFridge      = "냉장고"
	CategoryElectronics = "전자제품"
	CategoryBooks       = "책/문서"
	CategoryGifticon    = "기프티콘"
	CategoryRoom        = "원룸"
	CategoryJokbo       = "족보"
	CategoryOther       = "기타"
	CategoryUnknown     = "unknown"
)

// Categories lists every selectable category.
var Categories = []string{
	CategoryMobility, CategoryFridge, CategoryElectronics, CategoryBooks,
	CategoryGifticon, CategoryRoom, CategoryJokbo, CategoryOther,
}

// EverytimePost is a scraped marketplace post. Rows are written once by the
// crawler and never mutated afterwards; URL is the dedup key for migration.
type EverytimePost struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"type:text"`
	Content   string    `json:"content" gorm:"type:text"`
	Author    string    `json:"author"`
	ImageURL  string    `json:"image_url"`
	URL       string    `json:"url" gorm:"uniqueIndex;size:512;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// Hunt is a marketplace listing. Listings either come from the sell form or
// from the everytime migration; migrated rows keep a sparse-unique link back
// to the source URL so the same post can never be imported twice.
type Hunt struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	PostNumber int    `json:"post_number" gorm:"uniqueIndex;not null"`
	Title      string `json:"title" gorm:"type:text"`
	Content    string `json:"content" gorm:"type:text"`
	Author     string `json:"author"`
	Category   string `json:"category" gorm:"index"`
	Condition  string `json:"condition"`
	Price      int    `json:"price" gorm:"index"`
	ImageURL   string `json:"image_url"`
	Status     string `json:"status" gorm:"default:'active';index"`
	Views      int    `json:"views" gorm:"default:0"`
	Likes      int    `json:"likes" gorm:"default:0"`
	UserID     *uint  `json:"user_id,omitempty"`

	// Everytime 마이그레이션 필드
	IsFromEverytime bool    `json:"is_from_everytime" gorm:"index"`
	EverytimeURL    *string `json:"everytime_url,omitempty" gorm:"uniqueIndex;size:512"`
	EverytimeID     *uint   `json:"everytime_id,omitempty"`

	PriceAnalysis *PriceAnalysis `json:"price_analysis,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ComparableListing is an existing hunt judged similar enough to inform
// price estimation.
type ComparableListing struct {
	HuntID    uint   `json:"hunt_id"`
	Title     string `json:"title"`
	Price     int    `json:"price"`
	Condition string `json:"condition"`
}

// PricePoint is one observed price in the assembled history.
type PricePoint struct {
	Price      int       `json:"price"`
	Condition  string    `json:"condition"`
	Source     string    `json:"source"`
	URL        string    `json:"url,omitempty"`
	HuntID     uint      `json:"hunt_id,omitempty"`
	ObservedAt time.Time `json:"observed_at"`
}

// ExternalPriceResult is one shopping-search hit kept for auditing.
type ExternalPriceResult struct {
	Price      int     `json:"price"`
	Condition  string  `json:"condition"`
	Source     string  `json:"source"`
	URL        string  `json:"url"`
	Title      string  `json:"title"`
	Confidence float64 `json:"confidence"`
}

// PriceAnalysis is the price-resolver output, stored as JSON in a text
// column on hunts.
type PriceAnalysis struct {
	Confidence           float64               `json:"confidence"`
	ComparableListings   []ComparableListing   `json:"comparable_listings"`
	PriceHistory         []PricePoint          `json:"price_history"`
	ExternalPriceResults []ExternalPriceResult `json:"external_price_results"`
	LastAnalyzedAt       time.Time             `json:"last_analyzed_at"`
}

func (a *PriceAnalysis) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *PriceAnalysis) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("unsupported price analysis column type %T", value)
	}
}

// User represents a registered student account.
type User struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Username      string    `json:"username" gorm:"not null"`
	Nickname      string    `json:"nickname" gorm:"not null"`
	Email         string    `json:"email" gorm:"uniqueIndex;size:191;not null"`
	Password      string    `json:"-" gorm:"not null"`
	PhoneNumber   string    `json:"phone_number"`
	MannerScore   float64   `json:"manner_score" gorm:"default:4.3"`
	AccountNumber string    `json:"account_number"`
	BankName      string    `json:"bank_name"`
	OpenChatLink  string    `json:"open_chat_link"`
	Major         string    `json:"major"`
	Grade         int       `json:"grade" gorm:"default:1"`
	Gender        string    `json:"gender" gorm:"default:'not_specified'"`
	Interests     string    `json:"interests" gorm:"type:text"` // JSON array stored as string
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
