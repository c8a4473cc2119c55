package migration

import (
	"strings"

	"hunter-market/internal/models"
)

// Placeholders for fields the scraper could not fill.
const (
	placeholderTitle   = "제목 없음"
	placeholderContent = "내용 없음"
	placeholderAuthor  = "익명"
)

// MapPost builds a hunt draft from a scraped post. Category, condition and
// price stay at their pending defaults until the price resolver runs.
// postNumber must be allocated by the caller; the batch loop serializes
// allocation across one run.
func MapPost(post models.EverytimePost, postNumber int) models.Hunt {
	title := strings.TrimSpace(post.Title)
	if title == "" {
		title = placeholderTitle
	}
	content := strings.TrimSpace(post.Content)
	if content == "" {
		content = placeholderContent
	}
	author := strings.TrimSpace(post.Author)
	if author == "" {
		author = placeholderAuthor
	}
	imageURL := post.ImageURL
	if imageURL == models.NoImageSentinel {
		imageURL = ""
	}

	url := post.URL
	sourceID := post.ID
	return models.Hunt{
		PostNumber:      postNumber,
		Title:           title,
		Content:         content,
		Author:          author,
		Category:        models.CategoryUnknown,
		Condition:       models.ConditionUnknown,
		Price:           0,
		ImageURL:        imageURL,
		Status:          models.StatusActive,
		IsFromEverytime: true,
		EverytimeURL:    &url,
		EverytimeID:     &sourceID,
		CreatedAt:       post.CreatedAt,
	}
}
