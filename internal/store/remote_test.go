package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/colecta/colecta-cli/internal/auth"
	"github.com/colecta/colecta-cli/internal/backup"
	"github.com/colecta/colecta-cli/internal/models"
	"github.com/colecta/colecta-cli/internal/rest"
)

func signedIn() *auth.Session {
	return &auth.Session{
		User:        models.User{ID: "user-1", Email: "ana@example.com"},
		AccessToken: "token",
	}
}

func newRemoteTestStore(t *testing.T, handler http.HandlerFunc) (*Store, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	dir := t.TempDir()
	table := rest.NewTableClient(srv.URL, "anon-key")
	return New(signedIn, table, NewLocalStore(dir)), dir
}

func TestFetchCategoriesRemote(t *testing.T) {
	s, _ := newRemoteTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/categories" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.RawQuery != "order=order_index.asc" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		w.Write([]byte(`[{"id":"srv-1","name":"Series","icon":"📺","user_id":"user-1","order_index":0}]`))
	})

	s.FetchCategories(context.Background())

	categories := s.Categories()
	if len(categories) != 1 || categories[0].ID != "srv-1" {
		t.Fatalf("categories = %+v, want the server row", categories)
	}
}

func TestFetchFailureKeepsStaleState(t *testing.T) {
	var failing bool
	s, _ := newRemoteTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if failing {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"boom"}`))
			return
		}
		w.Write([]byte(`[{"id":"srv-1","name":"Series","user_id":"user-1"}]`))
	})

	s.FetchCategories(context.Background())
	if len(s.Categories()) != 1 {
		t.Fatalf("initial fetch failed: %+v", s.Categories())
	}

	failing = true
	s.FetchCategories(context.Background())

	if len(s.Categories()) != 1 || s.Categories()[0].ID != "srv-1" {
		t.Errorf("categories after failed refetch = %+v, want stale value kept", s.Categories())
	}
}

func TestAddCategoryRemoteUsesServerRow(t *testing.T) {
	s, dir := newRemoteTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var sent models.Category
		if err := json.NewDecoder(r.Body).Decode(&sent); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if sent.UserID != "user-1" {
			t.Errorf("sent user_id = %q, want user-1", sent.UserID)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[{"id":"srv-9","name":"Series","icon":"📺","user_id":"user-1","order_index":0}]`))
	})

	if err := s.AddCategory(context.Background(), "Series", "📺"); err != nil {
		t.Fatalf("AddCategory() error = %v", err)
	}

	categories := s.Categories()
	if len(categories) != 1 || categories[0].ID != "srv-9" {
		t.Fatalf("categories = %+v, want the server-assigned row", categories)
	}

	if _, err := os.Stat(filepath.Join(dir, "categories.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("local snapshot written while signed in (stat err = %v)", err)
	}
}

func TestUpdateItemRemoteReplacesWholesale(t *testing.T) {
	s, _ := newRemoteTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`[{"id":"it-1","title":"Dune","category_id":"cat-1","rating":3,"description":"classic","user_id":"user-1"}]`))
		case http.MethodPatch:
			// Server row deliberately drops description.
			w.Write([]byte(`[{"id":"it-1","title":"Dune","category_id":"cat-1","rating":5,"user_id":"user-1"}]`))
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})

	s.FetchItems(context.Background())
	if err := s.UpdateItem(context.Background(), "it-1", map[string]any{"rating": 5}); err != nil {
		t.Fatalf("UpdateItem() error = %v", err)
	}

	got := s.Items()[0]
	if got.Rating != 5 {
		t.Errorf("Rating = %d, want 5", got.Rating)
	}
	if got.Description != "" {
		t.Errorf("Description = %q, want replaced wholesale by the server row", got.Description)
	}
}

func TestMutationErrorLeavesMemoryUntouched(t *testing.T) {
	s, _ := newRemoteTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`[{"id":"it-1","title":"Dune","category_id":"cat-1","user_id":"user-1"}]`))
		default:
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message":"row level security"}`))
		}
	})

	s.FetchItems(context.Background())
	var fired int
	s.Subscribe(func(*Store) { fired++ })

	if err := s.DeleteItem(context.Background(), "it-1"); err == nil {
		t.Fatal("DeleteItem() error = nil, want failure")
	}

	if len(s.Items()) != 1 {
		t.Errorf("items = %+v, want untouched after failed delete", s.Items())
	}
	if fired != 0 {
		t.Errorf("listener fired %d times after failed mutation, want 0", fired)
	}
}

func TestDeleteCategoryRemote(t *testing.T) {
	var deleted string
	s, dir := newRemoteTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/rest/v1/categories":
			w.Write([]byte(`[{"id":"cat-1","name":"Series","user_id":"user-1"}]`))
		case r.Method == http.MethodGet && r.URL.Path == "/rest/v1/items":
			w.Write([]byte(`[{"id":"it-1","title":"Dune","category_id":"cat-1","user_id":"user-1"}]`))
		case r.Method == http.MethodDelete:
			deleted = r.URL.RawQuery
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL)
		}
	})

	s.FetchCategories(context.Background())
	s.FetchItems(context.Background())

	if err := s.DeleteCategory(context.Background(), "cat-1"); err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}

	if deleted != "id=eq.cat-1" {
		t.Errorf("delete query = %q, want id=eq.cat-1", deleted)
	}
	if len(s.Categories()) != 0 {
		t.Errorf("categories = %+v, want empty", s.Categories())
	}
	if len(s.Items()) != 0 {
		t.Errorf("items = %+v, want cascade removal in memory", s.Items())
	}

	if _, err := os.Stat(filepath.Join(dir, "categories.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("local snapshot written while signed in (stat err = %v)", err)
	}
}

func TestImportRejectedWhileSignedIn(t *testing.T) {
	s, _ := newRemoteTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	doc := backup.New([]models.Category{}, []models.Item{})
	err := s.ImportData(doc)
	if !errors.Is(err, ErrImportSignedIn) {
		t.Errorf("ImportData() error = %v, want ErrImportSignedIn", err)
	}
}
