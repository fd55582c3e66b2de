package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/colecta/colecta-cli/internal/auth"
	"github.com/colecta/colecta-cli/internal/backup"
	"github.com/colecta/colecta-cli/internal/models"
)

func anonymous() *auth.Session { return nil }

func newLocalTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	return New(anonymous, nil, NewLocalStore(dir)), dir
}

func TestFetchCategoriesSeedsDefaults(t *testing.T) {
	s, _ := newLocalTestStore(t)

	s.FetchCategories(context.Background())

	categories := s.Categories()
	if len(categories) != 2 {
		t.Fatalf("len(categories) = %d, want 2 seed categories", len(categories))
	}
	if categories[0].Name != "Películas" || categories[1].Name != "Libros" {
		t.Errorf("seed names = %q, %q", categories[0].Name, categories[1].Name)
	}
	if categories[0].OrderIndex != 0 || categories[1].OrderIndex != 1 {
		t.Errorf("seed order indexes = %d, %d, want 0, 1", categories[0].OrderIndex, categories[1].OrderIndex)
	}
	for _, c := range categories {
		if c.UserID != models.LocalOwner {
			t.Errorf("category %s owner = %q, want %q", c.ID, c.UserID, models.LocalOwner)
		}
	}
}

func TestAddCategoryLocal(t *testing.T) {
	s, _ := newLocalTestStore(t)
	s.FetchCategories(context.Background())

	if err := s.AddCategory(context.Background(), "Juegos", ""); err != nil {
		t.Fatalf("AddCategory() error = %v", err)
	}

	categories := s.Categories()
	added := categories[len(categories)-1]
	if added.Name != "Juegos" {
		t.Errorf("Name = %q, want Juegos", added.Name)
	}
	if added.Icon != models.DefaultIcon {
		t.Errorf("Icon = %q, want default %q", added.Icon, models.DefaultIcon)
	}
	if added.OrderIndex != 2 {
		t.Errorf("OrderIndex = %d, want 2", added.OrderIndex)
	}
	if !strings.HasPrefix(added.ID, "local_") {
		t.Errorf("ID = %q, want local_ prefix", added.ID)
	}
}

func TestLocalIDsAreDistinct(t *testing.T) {
	s, _ := newLocalTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := s.localID()
		if seen[id] {
			t.Fatalf("duplicate local id %q", id)
		}
		seen[id] = true
	}
}

func TestLocalRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := New(anonymous, nil, NewLocalStore(dir))
	s.FetchCategories(context.Background())
	s.FetchItems(context.Background())

	catID := s.Categories()[0].ID
	if err := s.AddItem(context.Background(), models.Item{Title: "Dune", CategoryID: catID, Rating: 5}); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}

	reloaded := New(anonymous, nil, NewLocalStore(dir))
	reloaded.FetchCategories(context.Background())
	reloaded.FetchItems(context.Background())

	if len(reloaded.Items()) != 1 {
		t.Fatalf("len(items) after reload = %d, want 1", len(reloaded.Items()))
	}
	got := reloaded.Items()[0]
	if got.Title != "Dune" || got.Rating != 5 || got.CategoryID != catID {
		t.Errorf("reloaded item = %+v", got)
	}
	if got.CreatedAt == "" {
		t.Error("reloaded item has no created_at")
	}
}

func TestAddItemPrependsAndStamps(t *testing.T) {
	s, _ := newLocalTestStore(t)
	s.FetchCategories(context.Background())

	if err := s.AddItem(context.Background(), models.Item{Title: "First", CategoryID: "cat_1"}); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if err := s.AddItem(context.Background(), models.Item{Title: "Second", CategoryID: "cat_1"}); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}

	items := s.Items()
	if items[0].Title != "Second" || items[1].Title != "First" {
		t.Errorf("order = %q, %q, want newest first", items[0].Title, items[1].Title)
	}
	if items[0].UserID != models.LocalOwner {
		t.Errorf("UserID = %q, want %q", items[0].UserID, models.LocalOwner)
	}
	if items[0].CreatedAt == "" {
		t.Error("CreatedAt not stamped")
	}
}

func TestEmptyImageURLOmittedFromSnapshot(t *testing.T) {
	s, dir := newLocalTestStore(t)
	s.FetchCategories(context.Background())

	if err := s.AddItem(context.Background(), models.Item{Title: "Solaris", CategoryID: "cat_1"}); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "items.json"))
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if strings.Contains(string(data), "image_url") {
		t.Errorf("snapshot contains image_url for an item without one: %s", data)
	}
}

func TestUpdateItemLocalMerges(t *testing.T) {
	s, _ := newLocalTestStore(t)
	s.FetchCategories(context.Background())
	if err := s.AddItem(context.Background(), models.Item{Title: "Dune", CategoryID: "cat_1", Rating: 3, Description: "classic"}); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	id := s.Items()[0].ID

	if err := s.UpdateItem(context.Background(), id, map[string]any{"rating": 5}); err != nil {
		t.Fatalf("UpdateItem() error = %v", err)
	}

	got := s.Items()[0]
	if got.Rating != 5 {
		t.Errorf("Rating = %d, want 5", got.Rating)
	}
	if got.Title != "Dune" || got.Description != "classic" {
		t.Errorf("untouched fields changed: %+v", got)
	}
}

func TestUpdateUnknownIDStillNotifies(t *testing.T) {
	s, _ := newLocalTestStore(t)
	s.FetchCategories(context.Background())

	var fired int
	s.Subscribe(func(*Store) { fired++ })

	if err := s.UpdateItem(context.Background(), "nope", map[string]any{"rating": 1}); err != nil {
		t.Fatalf("UpdateItem() error = %v", err)
	}
	if fired != 1 {
		t.Errorf("listener fired %d times, want 1", fired)
	}
}

func TestDeleteCategoryCascades(t *testing.T) {
	s, _ := newLocalTestStore(t)
	s.FetchCategories(context.Background())
	for _, title := range []string{"Dune", "Solaris"} {
		if err := s.AddItem(context.Background(), models.Item{Title: title, CategoryID: "cat_1"}); err != nil {
			t.Fatalf("AddItem() error = %v", err)
		}
	}
	if err := s.AddItem(context.Background(), models.Item{Title: "Hyperion", CategoryID: "cat_2"}); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}

	if err := s.DeleteCategory(context.Background(), "cat_1"); err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}

	for _, c := range s.Categories() {
		if c.ID == "cat_1" {
			t.Error("cat_1 still present")
		}
	}
	items := s.Items()
	if len(items) != 1 || items[0].Title != "Hyperion" {
		t.Errorf("items after cascade = %+v, want only Hyperion", items)
	}
}

func TestItemsByCategory(t *testing.T) {
	s, _ := newLocalTestStore(t)
	s.FetchCategories(context.Background())
	titlesByCat := map[string][]string{
		"cat_1": {"Dune", "Solaris"},
		"cat_2": {"Hyperion"},
	}
	for cat, titles := range titlesByCat {
		for _, title := range titles {
			if err := s.AddItem(context.Background(), models.Item{Title: title, CategoryID: cat}); err != nil {
				t.Fatalf("AddItem() error = %v", err)
			}
		}
	}

	if got := len(s.ItemsByCategory("cat_1")); got != 2 {
		t.Errorf("cat_1 count = %d, want 2", got)
	}
	if got := len(s.ItemsByCategory("cat_2")); got != 1 {
		t.Errorf("cat_2 count = %d, want 1", got)
	}
	if got := len(s.ItemsByCategory(CategoryAll)); got != 3 {
		t.Errorf("all count = %d, want 3", got)
	}
	if got := s.ItemsByCategory("cat_missing"); len(got) != 0 {
		t.Errorf("missing category returned %d items", len(got))
	}
}

func TestReorderItems(t *testing.T) {
	s, _ := newLocalTestStore(t)
	s.FetchCategories(context.Background())
	// Prepend order means insertion c, b, a yields a, b, c in memory.
	for _, title := range []string{"c", "b", "a"} {
		if err := s.AddItem(context.Background(), models.Item{Title: title, CategoryID: "cat_1"}); err != nil {
			t.Fatalf("AddItem() error = %v", err)
		}
	}
	items := s.Items()
	idByTitle := map[string]string{}
	for _, it := range items {
		idByTitle[it.Title] = it.ID
	}

	var fired int
	s.Subscribe(func(*Store) { fired++ })

	s.ReorderItems([]string{idByTitle["b"], idByTitle["c"], "ghost"})

	var titles []string
	for _, it := range s.Items() {
		titles = append(titles, it.Title)
	}
	want := []string{"b", "c", "a"}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("order = %v, want %v", titles, want)
		}
	}
	if fired != 0 {
		t.Errorf("reorder broadcast %d notifications, want none", fired)
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	s, _ := newLocalTestStore(t)

	var first, second int
	sub := s.Subscribe(func(*Store) { first++ })
	s.Subscribe(func(*Store) { second++ })

	s.FetchCategories(context.Background())
	sub.Unsubscribe()
	sub.Unsubscribe() // second call must be harmless
	s.FetchCategories(context.Background())

	if first != 1 {
		t.Errorf("unsubscribed listener fired %d times, want 1", first)
	}
	if second != 2 {
		t.Errorf("remaining listener fired %d times, want 2", second)
	}
}

func TestImportDataReplacesCollections(t *testing.T) {
	s, dir := newLocalTestStore(t)
	s.FetchCategories(context.Background())

	doc := backup.New(
		[]models.Category{{ID: "cat_9", Name: "Música", Icon: "🎵", UserID: models.LocalOwner}},
		[]models.Item{{ID: "it_1", Title: "Kind of Blue", CategoryID: "cat_9", UserID: models.LocalOwner}},
	)
	if err := s.ImportData(doc); err != nil {
		t.Fatalf("ImportData() error = %v", err)
	}

	if len(s.Categories()) != 1 || s.Categories()[0].Name != "Música" {
		t.Errorf("categories after import = %+v", s.Categories())
	}
	if len(s.Items()) != 1 || s.Items()[0].Title != "Kind of Blue" {
		t.Errorf("items after import = %+v", s.Items())
	}

	data, err := os.ReadFile(filepath.Join(dir, "categories.json"))
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var persisted []models.Category
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(persisted) != 1 || persisted[0].ID != "cat_9" {
		t.Errorf("persisted categories = %+v", persisted)
	}
}

func TestImportDataRejectsMissingCollections(t *testing.T) {
	s, _ := newLocalTestStore(t)

	err := s.ImportData(&backup.Document{Items: []models.Item{}})
	if !errors.Is(err, backup.ErrInvalid) {
		t.Errorf("ImportData() error = %v, want ErrInvalid", err)
	}

	err = s.ImportData(&backup.Document{Categories: []models.Category{}})
	if !errors.Is(err, backup.ErrInvalid) {
		t.Errorf("ImportData() error = %v, want ErrInvalid", err)
	}
}

func TestEmptiedCollectionsStayEmptyAfterReload(t *testing.T) {
	dir := t.TempDir()
	s := New(anonymous, nil, NewLocalStore(dir))
	s.FetchCategories(context.Background())
	s.FetchItems(context.Background())

	for _, c := range append([]models.Category(nil), s.Categories()...) {
		if err := s.DeleteCategory(context.Background(), c.ID); err != nil {
			t.Fatalf("DeleteCategory() error = %v", err)
		}
	}
	if len(s.Categories()) != 0 {
		t.Fatalf("categories not emptied: %+v", s.Categories())
	}

	reloaded := New(anonymous, nil, NewLocalStore(dir))
	reloaded.FetchCategories(context.Background())
	if len(reloaded.Categories()) != 0 {
		t.Errorf("emptied collection came back as %+v, want it to stay empty", reloaded.Categories())
	}
}
