// Package backup defines the export file format: a JSON document with the
// full categories and items collections plus an export timestamp.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/colecta/colecta-cli/internal/models"
)

// ErrInvalid marks a structurally malformed backup document. Both
// collections must be present (empty is fine, missing is not).
var ErrInvalid = errors.New("invalid backup: missing categories or items")

// Document is one exported snapshot of the collection.
type Document struct {
	Categories []models.Category `json:"categories"`
	Items      []models.Item     `json:"items"`
	Timestamp  string            `json:"timestamp"`
}

// New builds a document from the current collections, stamped with the
// export time.
func New(categories []models.Category, items []models.Item) *Document {
	return &Document{
		Categories: categories,
		Items:      items,
		Timestamp:  models.Timestamp(time.Now()),
	}
}

// Parse decodes and structurally validates a backup document. Validation
// happens before the caller touches any state, so a rejected document leaves
// everything as it was.
func Parse(data []byte) (*Document, error) {
	var probe struct {
		Categories *[]models.Category `json:"categories"`
		Items      *[]models.Item     `json:"items"`
		Timestamp  string             `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("invalid backup: %w", err)
	}
	if probe.Categories == nil || probe.Items == nil {
		return nil, ErrInvalid
	}
	return &Document{
		Categories: *probe.Categories,
		Items:      *probe.Items,
		Timestamp:  probe.Timestamp,
	}, nil
}

// Marshal renders the document as indented JSON, suitable for a backup file
// or the clipboard.
func (d *Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
