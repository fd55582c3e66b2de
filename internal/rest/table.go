package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// tablePath is the PostgREST mount point on the backend.
const tablePath = "/rest/v1"

// TableClient layers PostgREST collection semantics on the generic Client:
// tables addressed by name, row filters as query parameters, mutating
// requests asking the backend to echo affected rows.
type TableClient struct {
	*Client
}

// NewTableClient creates a table client for the backend at baseURL. The
// anonymous API key doubles as the initial bearer token until SetAuthToken
// replaces it after sign-in.
func NewTableClient(baseURL, apiKey string) *TableClient {
	return &TableClient{
		Client: New(baseURL+tablePath, map[string]string{
			"apikey":        apiKey,
			"Authorization": "Bearer " + apiKey,
			"Prefer":        "return=representation",
		}),
	}
}

// SetAuthToken scopes subsequent requests to the signed-in principal. The
// apikey header is left untouched.
func (t *TableClient) SetAuthToken(token string) {
	t.SetHeaders(map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// GetAll lists rows of a table. query is a raw filter string such as
// "order=order_index.asc" and may be empty.
func (t *TableClient) GetAll(ctx context.Context, table, query string) (json.RawMessage, error) {
	return t.Get(ctx, "/"+table+"?"+query)
}

// GetByID fetches a single row. A missing row is (nil, nil), not an error.
func (t *TableClient) GetByID(ctx context.Context, table, id string) (json.RawMessage, error) {
	raw, err := t.Get(ctx, "/"+table+"?id=eq."+url.QueryEscape(id))
	if err != nil {
		return nil, err
	}
	return firstRow(raw)
}

// Create inserts a row and returns the server's copy of it (the backend
// echoes a single-element list).
func (t *TableClient) Create(ctx context.Context, table string, data any) (json.RawMessage, error) {
	raw, err := t.Post(ctx, "/"+table, data)
	if err != nil {
		return nil, err
	}
	return firstRow(raw)
}

// Update patches the row with the given id and returns the server's copy.
func (t *TableClient) Update(ctx context.Context, table, id string, data any) (json.RawMessage, error) {
	raw, err := t.Patch(ctx, "/"+table+"?id=eq."+url.QueryEscape(id), data)
	if err != nil {
		return nil, err
	}
	return firstRow(raw)
}

// DeleteByID removes the row with the given id. The result is whatever the
// transport yields, typically "no value".
func (t *TableClient) DeleteByID(ctx context.Context, table, id string) (json.RawMessage, error) {
	return t.Delete(ctx, "/"+table+"?id=eq."+url.QueryEscape(id))
}

// firstRow unwraps the single-element list the backend returns for filtered
// and mutating requests. An empty list means "no value".
func firstRow(raw json.RawMessage) (json.RawMessage, error) {
	if raw == nil {
		return nil, nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("expected a list response: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}
