package stats

import (
	"testing"

	"github.com/colecta/colecta-cli/internal/models"
)

func TestItemsPerCategory(t *testing.T) {
	categories := []models.Category{
		{ID: "cat_1", Name: "Películas", Icon: "🎬"},
		{ID: "cat_2", Name: "Libros", Icon: "📚"},
	}
	items := []models.Item{
		{ID: "i1", CategoryID: "cat_1"},
		{ID: "i2", CategoryID: "cat_1"},
		{ID: "i3", CategoryID: "cat_2"},
	}

	buckets := ItemsPerCategory(categories, items)
	if len(buckets) != 2 {
		t.Fatalf("len(buckets) = %d, want 2", len(buckets))
	}
	if buckets[0].Name != "Películas" || buckets[0].Count != 2 {
		t.Errorf("buckets[0] = %+v", buckets[0])
	}
	if buckets[1].Name != "Libros" || buckets[1].Count != 1 {
		t.Errorf("buckets[1] = %+v", buckets[1])
	}
}

func TestEmptyCategoryKeepsBucket(t *testing.T) {
	categories := []models.Category{{ID: "cat_1", Name: "Películas"}}

	buckets := ItemsPerCategory(categories, nil)
	if len(buckets) != 1 {
		t.Fatalf("len(buckets) = %d, want 1", len(buckets))
	}
	if buckets[0].Count != 0 {
		t.Errorf("Count = %d, want 0", buckets[0].Count)
	}
}

func TestDanglingItemsCollectIntoUncategorized(t *testing.T) {
	categories := []models.Category{{ID: "cat_1", Name: "Películas"}}
	items := []models.Item{
		{ID: "i1", CategoryID: "cat_1"},
		{ID: "i2", CategoryID: "cat_gone"},
		{ID: "i3", CategoryID: "cat_gone"},
	}

	buckets := ItemsPerCategory(categories, items)
	if len(buckets) != 2 {
		t.Fatalf("len(buckets) = %d, want 2", len(buckets))
	}
	last := buckets[len(buckets)-1]
	if last.Name != UncategorizedName || last.Count != 2 {
		t.Errorf("trailing bucket = %+v, want Uncategorized with 2", last)
	}
}

func TestNoUncategorizedBucketWhenAllMatch(t *testing.T) {
	categories := []models.Category{{ID: "cat_1", Name: "Películas"}}
	items := []models.Item{{ID: "i1", CategoryID: "cat_1"}}

	buckets := ItemsPerCategory(categories, items)
	for _, b := range buckets {
		if b.Name == UncategorizedName {
			t.Errorf("unexpected Uncategorized bucket: %+v", buckets)
		}
	}
}
