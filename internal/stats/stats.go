// Package stats aggregates the collection for the stats view.
package stats

import (
	"github.com/colecta/colecta-cli/internal/models"
)

// UncategorizedName labels items whose category_id matches no existing
// category (for example after a category was deleted remotely).
const UncategorizedName = "Uncategorized"

// Bucket is one bar of the items-per-category breakdown.
type Bucket struct {
	Name  string
	Icon  string
	Count int
}

// ItemsPerCategory counts items by category, in category order. Every
// category gets a bucket even when empty; dangling items collect into a
// trailing Uncategorized bucket that only appears when needed.
func ItemsPerCategory(categories []models.Category, items []models.Item) []Bucket {
	buckets := make([]Bucket, len(categories))
	index := make(map[string]int, len(categories))
	for i, c := range categories {
		buckets[i] = Bucket{Name: c.Name, Icon: c.Icon}
		index[c.ID] = i
	}

	uncategorized := 0
	for _, it := range items {
		if i, ok := index[it.CategoryID]; ok {
			buckets[i].Count++
		} else {
			uncategorized++
		}
	}

	if uncategorized > 0 {
		buckets = append(buckets, Bucket{Name: UncategorizedName, Count: uncategorized})
	}
	return buckets
}
