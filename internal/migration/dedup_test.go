package migration

import (
	"testing"

	"hunter-market/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterMigratedPreservesOrder(t *testing.T) {
	posts := []models.EverytimePost{
		{ID: 1, URL: "https://everytime.kr/420883/v/1"},
		{ID: 2, URL: "https://everytime.kr/420883/v/2"},
		{ID: 3, URL: "https://everytime.kr/420883/v/3"},
	}

	got := FilterMigrated(posts, []string{"https://everytime.kr/420883/v/2"})
	require.Len(t, got, 2)
	assert.Equal(t, uint(1), got[0].ID)
	assert.Equal(t, uint(3), got[1].ID)
}

func TestFilterMigratedFullyMigrated(t *testing.T) {
	posts := []models.EverytimePost{
		{ID: 1, URL: "a"},
		{ID: 2, URL: "b"},
	}
	got := FilterMigrated(posts, []string{"a", "b"})
	assert.Empty(t, got)
}

func TestFilterMigratedNoMigrations(t *testing.T) {
	posts := []models.EverytimePost{{ID: 1, URL: "a"}}
	got := FilterMigrated(posts, nil)
	assert.Equal(t, posts, got)
}
