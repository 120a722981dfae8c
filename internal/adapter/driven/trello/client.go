// Package trello implements the TaskClient port against the Trello REST API.
package trello

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/taskdeck/internal/domain/model"
	"github.com/ericfisherdev/taskdeck/internal/domain/port/driven"
)

const defaultBaseURL = "https://api.trello.com/1"

// Compile-time interface satisfaction check.
var _ driven.TaskClient = (*Client)(nil)

// Client implements the driven.TaskClient port over the Trello REST API.
// Requests go through an httpcache memory-cache transport so repeated board
// fetches within one session reuse conditional responses. Authentication is
// the key/token query-parameter pair Trello requires on every call.
type Client struct {
	httpClient *http.Client
	baseURL    string
	key        string
	token      string
}

// NewClient creates a Trello API client with an in-memory caching transport.
func NewClient(key, token string) *Client {
	return &Client{
		httpClient: httpcache.NewMemoryCacheTransport().Client(),
		baseURL:    defaultBaseURL,
		key:        key,
		token:      token,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base
// URL. This constructor is intended for testing, allowing injection of an
// httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, key, token string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		key:        key,
		token:      token,
	}
}

// FetchBoards returns all boards reachable by the credential.
func (c *Client) FetchBoards(ctx context.Context) ([]model.Board, error) {
	var boards []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	if err := c.get(ctx, "/members/me/boards", url.Values{"fields": {"name,url"}}, &boards); err != nil {
		return nil, fmt.Errorf("listing boards: %w", err)
	}

	out := make([]model.Board, 0, len(boards))
	for _, b := range boards {
		out = append(out, model.Board{ID: b.ID, Name: b.Name, URL: b.URL})
	}
	return out, nil
}

// FetchCards returns the raw cards of one board.
func (c *Client) FetchCards(ctx context.Context, boardID string) ([]model.Card, error) {
	var cards []struct {
		Name   string  `json:"name"`
		Due    *string `json:"due"`
		Closed bool    `json:"closed"`
	}
	path := fmt.Sprintf("/boards/%s/cards", url.PathEscape(boardID))
	if err := c.get(ctx, path, url.Values{"fields": {"name,due,closed"}}, &cards); err != nil {
		return nil, fmt.Errorf("listing cards for board %s: %w", boardID, err)
	}

	out := make([]model.Card, 0, len(cards))
	for _, card := range cards {
		due := ""
		if card.Due != nil {
			due = *card.Due
		}
		out = append(out, model.Card{Name: card.Name, Due: due, Closed: card.Closed})
	}
	return out, nil
}

// get issues one authenticated GET and decodes the JSON response into v.
func (c *Client) get(ctx context.Context, path string, params url.Values, v any) error {
	params.Set("key", c.key)
	params.Set("token", c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("trello returned %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
