package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/colecta/colecta-cli/internal/models"
)

const (
	dataDirName    = ".colecta"
	categoriesFile = "categories.json"
	itemsFile      = "items.json"
)

// LocalStore persists the two collections as JSON files in a directory,
// one file per collection, in exactly the in-memory entity shape.
type LocalStore struct {
	dir string
}

// NewLocalStore returns a store rooted at dir.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

// DefaultDataDir returns ~/.colecta, the standard snapshot location.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, dataDirName), nil
}

// LoadCategories reads the persisted categories. A missing snapshot yields
// (nil, nil) so the caller can apply its seed fallback.
func (l *LocalStore) LoadCategories() ([]models.Category, error) {
	var categories []models.Category
	ok, err := l.read(categoriesFile, &categories)
	if err != nil || !ok {
		return nil, err
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

// LoadItems reads the persisted items. A missing snapshot yields (nil, nil).
func (l *LocalStore) LoadItems() ([]models.Item, error) {
	var items []models.Item
	ok, err := l.read(itemsFile, &items)
	if err != nil || !ok {
		return nil, err
	}
	if items == nil {
		items = []models.Item{}
	}
	return items, nil
}

// Save writes a full snapshot of both collections. Nil collections are
// written as empty lists so that an emptied collection does not read back as
// "never stored".
func (l *LocalStore) Save(categories []models.Category, items []models.Item) error {
	if categories == nil {
		categories = []models.Category{}
	}
	if items == nil {
		items = []models.Item{}
	}
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := l.write(categoriesFile, categories); err != nil {
		return err
	}
	return l.write(itemsFile, items)
}

func (l *LocalStore) read(name string, out any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(l.dir, name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("corrupt snapshot %s: %w", name, err)
	}
	return true, nil
}

func (l *LocalStore) write(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(l.dir, name), data, 0644)
}
