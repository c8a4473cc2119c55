package migration

import (
	"fmt"
	"time"

	"hunter-market/internal/models"
)

// Status is the read-only migration progress aggregate.
type Status struct {
	TotalSource     int64        `json:"totalSource"`
	MigratedCount   int64        `json:"migratedCount"`
	Remaining       int64        `json:"remaining"`
	PercentComplete string       `json:"percentComplete"`
	Samples         []SamplePost `json:"samples"`
}

// SamplePost is a not-yet-migrated post shown for operator inspection.
type SamplePost struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// Status computes totals, the migrated share and up to 5 sample
// un-migrated posts. Pure read, no mutation.
func (s *Service) Status() (*Status, error) {
	var total int64
	if err := s.db.Model(&models.EverytimePost{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count everytime posts: %w", err)
	}
	var migrated int64
	if err := s.db.Model(&models.Hunt{}).
		Where("is_from_everytime = ?", true).
		Count(&migrated).Error; err != nil {
		return nil, fmt.Errorf("failed to count migrated hunts: %w", err)
	}

	st := &Status{
		TotalSource:     total,
		MigratedCount:   migrated,
		Remaining:       total - migrated,
		PercentComplete: percentComplete(total, migrated),
		Samples:         []SamplePost{},
	}

	migratedSub := s.db.Model(&models.Hunt{}).
		Select("everytime_url").
		Where("is_from_everytime = ? AND everytime_url IS NOT NULL", true)
	var posts []models.EverytimePost
	if err := s.db.Where("url NOT IN (?)", migratedSub).
		Order("created_at DESC").
		Limit(5).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to load sample posts: %w", err)
	}
	for _, p := range posts {
		st.Samples = append(st.Samples, SamplePost{
			ID: p.ID, Title: p.Title, Author: p.Author, URL: p.URL, CreatedAt: p.CreatedAt,
		})
	}
	return st, nil
}

func percentComplete(total, migrated int64) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", float64(migrated)/float64(total)*100)
}
