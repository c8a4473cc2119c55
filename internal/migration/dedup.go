package migration

import "hunter-market/internal/models"

// FilterMigrated drops posts whose URL already appears on a migrated
// listing, preserving the input order. An empty result just means the
// collection is fully migrated.
func FilterMigrated(posts []models.EverytimePost, migratedURLs []string) []models.EverytimePost {
	seen := make(map[string]struct{}, len(migratedURLs))
	for _, u := range migratedURLs {
		seen[u] = struct{}{}
	}
	candidates := make([]models.EverytimePost, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.URL]; ok {
			continue
		}
		candidates = append(candidates, p)
	}
	return candidates
}
