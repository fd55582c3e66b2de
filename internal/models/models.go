package models

import (
	"net/url"
	"time"
)

// LocalOwner is the sentinel user_id for rows created without a signed-in
// session. Locally generated ids carry the "local_" prefix so they can never
// collide with server-assigned uuids.
const LocalOwner = "local"

// DefaultIcon is used when a category is created without an explicit glyph.
const DefaultIcon = "📁"

// User identifies the authenticated principal as reported by the identity
// provider session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Category represents one shelf of the collection (Movies, Books, ...).
type Category struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	Icon       string `json:"icon"`
	UserID     string `json:"user_id"`
	OrderIndex int    `json:"order_index"`
}

// Item represents a single cataloged entry. CreatedAt is an RFC 3339
// timestamp set once at creation and never mutated. ImageURL is optional and
// stays empty when the user supplies none; a placeholder is derived at
// render time only, never persisted.
type Item struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	CategoryID  string `json:"category_id"`
	Rating      int    `json:"rating"`
	ImageURL    string `json:"image_url,omitempty"`
	Description string `json:"description,omitempty"`
	UserID      string `json:"user_id"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// Timestamp returns the canonical creation-time format.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// PlaceholderImageURL derives a deterministic cover image URL from the item
// title, for items that have no image_url of their own.
func PlaceholderImageURL(title string) string {
	return "https://placehold.co/400x600/e5e7eb/374151?text=" + url.QueryEscape(title)
}
