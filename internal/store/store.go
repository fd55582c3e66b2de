// Package store is the single source of truth for the categories and items
// collections. Every operation routes to one of two persistence backends
// depending on whether a session is present at call time: the remote
// PostgREST client when signed in, local JSON snapshots otherwise.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/colecta/colecta-cli/internal/auth"
	"github.com/colecta/colecta-cli/internal/backup"
	"github.com/colecta/colecta-cli/internal/models"
	"github.com/colecta/colecta-cli/internal/rest"
)

const (
	categoriesTable = "categories"
	itemsTable      = "items"

	// CategoryAll is the sentinel passed to ItemsByCategory to select every
	// item regardless of category.
	CategoryAll = "all"
)

// ErrImportSignedIn is returned when a backup import is attempted while a
// session is active. Import never syncs to the remote backend, so allowing
// it while signed in would silently fork local and remote state.
var ErrImportSignedIn = errors.New("import is only supported while signed out")

// SessionFunc reports the current principal. It is consulted on every
// operation, never cached, so signing in or out between calls switches the
// backend immediately.
type SessionFunc func() *auth.Session

// Store owns the in-memory collections and their change notifications.
// It is not safe for concurrent use; all access is expected from the
// single command goroutine.
type Store struct {
	session SessionFunc
	remote  *rest.TableClient
	local   *LocalStore

	categories []models.Category
	items      []models.Item

	listeners []listener
	nextID    int

	lastID int64
}

type listener struct {
	id int
	fn func(*Store)
}

// Subscription is the handle returned by Subscribe; Unsubscribe stops
// further deliveries.
type Subscription struct {
	store *Store
	id    int
}

// New creates an empty store. Collections are populated by the fetch calls.
func New(session SessionFunc, remote *rest.TableClient, local *LocalStore) *Store {
	return &Store{
		session: session,
		remote:  remote,
		local:   local,
	}
}

// Categories returns the in-memory categories collection.
func (s *Store) Categories() []models.Category {
	return s.categories
}

// Items returns the in-memory items collection.
func (s *Store) Items() []models.Item {
	return s.items
}

// Subscribe registers a listener invoked with the store after every
// successful mutation and fetch.
func (s *Store) Subscribe(fn func(*Store)) *Subscription {
	s.nextID++
	sub := &Subscription{store: s, id: s.nextID}
	s.listeners = append(s.listeners, listener{id: sub.id, fn: fn})
	return sub
}

// Unsubscribe removes the listener. Safe to call more than once.
func (sub *Subscription) Unsubscribe() {
	listeners := sub.store.listeners
	for i, l := range listeners {
		if l.id == sub.id {
			sub.store.listeners = append(listeners[:i], listeners[i+1:]...)
			return
		}
	}
}

func (s *Store) notify() {
	for _, l := range s.listeners {
		l.fn(s)
	}
}

// seedCategories is the first-run fallback for anonymous mode.
func seedCategories() []models.Category {
	return []models.Category{
		{ID: "cat_1", Name: "Películas", Icon: "🎬", UserID: models.LocalOwner, OrderIndex: 0},
		{ID: "cat_2", Name: "Libros", Icon: "📚", UserID: models.LocalOwner, OrderIndex: 1},
	}
}

// FetchCategories replaces the categories collection from the active
// backend. Remote failures are logged and swallowed, leaving the previous
// in-memory value in place.
func (s *Store) FetchCategories(ctx context.Context) {
	if s.session() == nil {
		categories, err := s.local.LoadCategories()
		if err != nil {
			slog.Warn("failed to load local categories, using seed", "error", err)
			categories = nil
		}
		if categories == nil {
			categories = seedCategories()
		}
		s.categories = categories
		s.notify()
		return
	}

	raw, err := s.remote.GetAll(ctx, categoriesTable, "order=order_index.asc")
	if err != nil {
		slog.Error("failed to fetch categories", "error", err)
		return
	}
	var categories []models.Category
	if err := json.Unmarshal(raw, &categories); err != nil {
		slog.Error("failed to decode categories", "error", err)
		return
	}
	s.categories = categories
	s.notify()
}

// FetchItems replaces the items collection from the active backend, newest
// first in remote mode. Remote failures are logged and swallowed.
func (s *Store) FetchItems(ctx context.Context) {
	if s.session() == nil {
		items, err := s.local.LoadItems()
		if err != nil {
			slog.Warn("failed to load local items", "error", err)
		}
		if items == nil {
			items = []models.Item{}
		}
		s.items = items
		s.notify()
		return
	}

	raw, err := s.remote.GetAll(ctx, itemsTable, "order=created_at.desc")
	if err != nil {
		slog.Error("failed to fetch items", "error", err)
		return
	}
	var items []models.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		slog.Error("failed to decode items", "error", err)
		return
	}
	s.items = items
	s.notify()
}

// AddCategory creates a category at the end of the manual order. The server
// is authoritative for the id in remote mode; local mode synthesizes one.
func (s *Store) AddCategory(ctx context.Context, name, icon string) error {
	sess := s.session()
	if icon == "" {
		icon = models.DefaultIcon
	}
	category := models.Category{
		Name:       name,
		Icon:       icon,
		UserID:     models.LocalOwner,
		OrderIndex: len(s.categories),
	}

	if sess != nil {
		category.UserID = sess.User.ID
		raw, err := s.remote.Create(ctx, categoriesTable, category)
		if err != nil {
			return err
		}
		var saved models.Category
		if err := json.Unmarshal(raw, &saved); err != nil {
			return fmt.Errorf("failed to decode created category: %w", err)
		}
		s.categories = append(s.categories, saved)
	} else {
		category.ID = s.localID()
		s.categories = append(s.categories, category)
		s.SaveLocal()
	}

	s.notify()
	return nil
}

// UpdateCategory applies a partial update. Remote mode replaces the entry
// with the server's returned row wholesale; local mode merges the fields
// onto the existing entry. An unknown id is a no-op that still notifies.
func (s *Store) UpdateCategory(ctx context.Context, id string, updates map[string]any) error {
	if s.session() != nil {
		raw, err := s.remote.Update(ctx, categoriesTable, id, updates)
		if err != nil {
			return err
		}
		if raw != nil {
			if i := indexOfCategory(s.categories, id); i != -1 {
				var updated models.Category
				if err := json.Unmarshal(raw, &updated); err != nil {
					return fmt.Errorf("failed to decode updated category: %w", err)
				}
				s.categories[i] = updated
			}
		}
	} else {
		if i := indexOfCategory(s.categories, id); i != -1 {
			if err := mergePatch(&s.categories[i], updates); err != nil {
				return err
			}
			s.SaveLocal()
		}
	}

	s.notify()
	return nil
}

// DeleteCategory removes the category and, in memory, every item that
// belonged to it. The remote delete runs first and its failure aborts the
// operation; a remote item cascade is the backend's responsibility. The
// trailing SaveLocal is intentionally unconditional — the guard inside
// SaveLocal makes it a no-op while signed in.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	if s.session() != nil {
		if _, err := s.remote.DeleteByID(ctx, categoriesTable, id); err != nil {
			return err
		}
	}

	kept := s.categories[:0]
	for _, c := range s.categories {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.categories = kept

	keptItems := s.items[:0]
	for _, it := range s.items {
		if it.CategoryID != id {
			keptItems = append(keptItems, it)
		}
	}
	s.items = keptItems

	s.SaveLocal()
	s.notify()
	return nil
}

// AddItem creates an item at the front of the collection, stamping owner
// and creation time. The caller's ImageURL is persisted as given — empty
// stays empty.
func (s *Store) AddItem(ctx context.Context, item models.Item) error {
	sess := s.session()
	item.UserID = models.LocalOwner
	item.CreatedAt = models.Timestamp(time.Now())

	if sess != nil {
		item.UserID = sess.User.ID
		raw, err := s.remote.Create(ctx, itemsTable, item)
		if err != nil {
			return err
		}
		var saved models.Item
		if err := json.Unmarshal(raw, &saved); err != nil {
			return fmt.Errorf("failed to decode created item: %w", err)
		}
		s.items = append([]models.Item{saved}, s.items...)
	} else {
		item.ID = s.localID()
		s.items = append([]models.Item{item}, s.items...)
		s.SaveLocal()
	}

	s.notify()
	return nil
}

// UpdateItem applies a partial update with the same replace-vs-merge split
// as UpdateCategory.
func (s *Store) UpdateItem(ctx context.Context, id string, updates map[string]any) error {
	if s.session() != nil {
		raw, err := s.remote.Update(ctx, itemsTable, id, updates)
		if err != nil {
			return err
		}
		if raw != nil {
			if i := indexOfItem(s.items, id); i != -1 {
				var updated models.Item
				if err := json.Unmarshal(raw, &updated); err != nil {
					return fmt.Errorf("failed to decode updated item: %w", err)
				}
				s.items[i] = updated
			}
		}
	} else {
		if i := indexOfItem(s.items, id); i != -1 {
			if err := mergePatch(&s.items[i], updates); err != nil {
				return err
			}
			s.SaveLocal()
		}
	}

	s.notify()
	return nil
}

// DeleteItem removes a single item.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	if s.session() != nil {
		if _, err := s.remote.DeleteByID(ctx, itemsTable, id); err != nil {
			return err
		}
	}

	kept := s.items[:0]
	for _, it := range s.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	s.items = kept

	s.SaveLocal()
	s.notify()
	return nil
}

// ItemsByCategory filters the items collection. CategoryAll returns the
// whole collection. Pure read: no mutation, no notification.
func (s *Store) ItemsByCategory(categoryID string) []models.Item {
	if categoryID == CategoryAll {
		return s.items
	}
	var filtered []models.Item
	for _, it := range s.items {
		if it.CategoryID == categoryID {
			filtered = append(filtered, it)
		}
	}
	return filtered
}

// ImportData destructively replaces both collections from a backup
// document. Local mode only: the remote backend is never synced from an
// import, so while signed in this returns ErrImportSignedIn with state
// untouched.
func (s *Store) ImportData(doc *backup.Document) error {
	if doc.Categories == nil || doc.Items == nil {
		return backup.ErrInvalid
	}
	if s.session() != nil {
		return ErrImportSignedIn
	}

	s.categories = doc.Categories
	s.items = doc.Items
	s.SaveLocal()
	s.notify()
	return nil
}

// ReorderItems rebuilds the collection placing the named ids first, in the
// given order, followed by the remaining items in their prior relative
// order. Ids that match nothing are skipped. The new order is snapshotted
// locally but deliberately not broadcast, and never written to the remote
// backend — items carry no durable order field.
func (s *Store) ReorderItems(orderedIDs []string) {
	byID := make(map[string]models.Item, len(s.items))
	for _, it := range s.items {
		byID[it.ID] = it
	}

	touched := make(map[string]bool, len(orderedIDs))
	reordered := make([]models.Item, 0, len(s.items))
	for _, id := range orderedIDs {
		if it, ok := byID[id]; ok {
			reordered = append(reordered, it)
			touched[id] = true
		}
	}
	for _, it := range s.items {
		if !touched[it.ID] {
			reordered = append(reordered, it)
		}
	}

	s.items = reordered
	s.SaveLocal()
}

// SaveLocal snapshots both collections to local storage. No-op while a
// session is present: the remote backend is the durable copy then, and the
// local snapshot must keep belonging to the anonymous profile.
func (s *Store) SaveLocal() {
	if s.session() != nil {
		return
	}
	if err := s.local.Save(s.categories, s.items); err != nil {
		slog.Error("failed to write local snapshot", "error", err)
	}
}

// localID generates monotonic time-based ids for offline rows. Consecutive
// calls within the same millisecond still produce distinct ids.
func (s *Store) localID() string {
	now := time.Now().UnixMilli()
	if now <= s.lastID {
		now = s.lastID + 1
	}
	s.lastID = now
	return "local_" + strconv.FormatInt(now, 10)
}

func indexOfCategory(categories []models.Category, id string) int {
	for i, c := range categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func indexOfItem(items []models.Item, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// mergePatch overlays the update fields onto an existing entity in place,
// reusing the JSON names the wire format already defines.
func mergePatch(dst any, updates map[string]any) error {
	patch, err := json.Marshal(updates)
	if err != nil {
		return fmt.Errorf("failed to encode update: %w", err)
	}
	if err := json.Unmarshal(patch, dst); err != nil {
		return fmt.Errorf("failed to apply update: %w", err)
	}
	return nil
}
