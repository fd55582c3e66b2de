// Package search looks up titles on external providers to pre-fill new
// items: OMDB for movies and series, Google Books for books. Results are
// merged; a provider failing only drops its share of the results.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/colecta/colecta-cli/internal/rest"
)

const (
	omdbBaseURL  = "https://www.omdbapi.com"
	booksBaseURL = "https://www.googleapis.com/books/v1"
)

// Result is one provider hit, normalized for display and item creation.
// Raw keeps the provider's original payload.
type Result struct {
	Title       string          `json:"title"`
	Image       string          `json:"image,omitempty"`
	Description string          `json:"description,omitempty"`
	Source      string          `json:"source"`
	Raw         json.RawMessage `json:"raw,omitempty"`
}

// Searcher queries the configured providers. OMDB is skipped when no API
// key is configured; Google Books needs none.
type Searcher struct {
	omdb    *rest.Client
	books   *rest.Client
	omdbKey string
}

// New creates a searcher. omdbKey may be empty.
func New(omdbKey string) *Searcher {
	return &Searcher{
		omdb:    rest.New(omdbBaseURL, nil),
		books:   rest.New(booksBaseURL, nil),
		omdbKey: omdbKey,
	}
}

// Search queries all available providers and merges their results, movies
// first. Provider failures are logged and swallowed; a single attempt each,
// no retries.
func (s *Searcher) Search(ctx context.Context, query string) []Result {
	var results []Result

	if s.omdbKey != "" {
		movies, err := s.searchOMDB(ctx, query)
		if err != nil {
			slog.Error("omdb search failed", "error", err)
		} else {
			results = append(results, movies...)
		}
	}

	books, err := s.searchBooks(ctx, query)
	if err != nil {
		slog.Error("google books search failed", "error", err)
	} else {
		results = append(results, books...)
	}

	return results
}

func (s *Searcher) searchOMDB(ctx context.Context, query string) ([]Result, error) {
	raw, err := s.omdb.Get(ctx, "/?s="+url.QueryEscape(query)+"&apikey="+url.QueryEscape(s.omdbKey))
	if err != nil {
		return nil, err
	}

	var body struct {
		Search []struct {
			Title  string `json:"Title"`
			Year   string `json:"Year"`
			Type   string `json:"Type"`
			Poster string `json:"Poster"`
		} `json:"Search"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("failed to decode omdb response: %w", err)
	}

	var rawEntries []json.RawMessage
	var listing struct {
		Search []json.RawMessage `json:"Search"`
	}
	if err := json.Unmarshal(raw, &listing); err == nil {
		rawEntries = listing.Search
	}

	results := make([]Result, 0, len(body.Search))
	for i, m := range body.Search {
		image := m.Poster
		if image == "N/A" {
			image = ""
		}
		r := Result{
			Title:       m.Title,
			Image:       image,
			Description: fmt.Sprintf("Year: %s | Type: %s", m.Year, m.Type),
			Source:      "OMDB",
		}
		if i < len(rawEntries) {
			r.Raw = rawEntries[i]
		}
		results = append(results, r)
	}
	return results, nil
}

func (s *Searcher) searchBooks(ctx context.Context, query string) ([]Result, error) {
	raw, err := s.books.Get(ctx, "/volumes?q="+url.QueryEscape(query))
	if err != nil {
		return nil, err
	}

	var body struct {
		Items []struct {
			VolumeInfo struct {
				Title       string   `json:"title"`
				Description string   `json:"description"`
				Authors     []string `json:"authors"`
				ImageLinks  struct {
					Thumbnail string `json:"thumbnail"`
				} `json:"imageLinks"`
			} `json:"volumeInfo"`
		} `json:"items"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("failed to decode google books response: %w", err)
	}

	var rawEntries []json.RawMessage
	var listing struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(raw, &listing); err == nil {
		rawEntries = listing.Items
	}

	results := make([]Result, 0, len(body.Items))
	for i, b := range body.Items {
		info := b.VolumeInfo
		description := info.Description
		if description == "" && len(info.Authors) > 0 {
			description = "By " + strings.Join(info.Authors, ", ")
		}
		r := Result{
			Title:       info.Title,
			Image:       info.ImageLinks.Thumbnail,
			Description: description,
			Source:      "Google Books",
		}
		if i < len(rawEntries) {
			r.Raw = rawEntries[i]
		}
		results = append(results, r)
	}
	return results, nil
}
