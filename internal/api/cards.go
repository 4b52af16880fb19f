package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// SearchFilter holds the optional query parameters for /cards/search.
type SearchFilter struct {
	Name      string // partial or full card name
	Type      string // card type, e.g. "Spell Card", "Normal Monster"
	FrameType string // frame type, e.g. "normal", "link", "pendulum"
	Limit     int    // max results (server default 20)
	Offset    int    // results to skip
}

// SearchResponse is the paginated result of a card search.
type SearchResponse struct {
	TotalCards int    `json:"totalCards"`
	Cards      []Card `json:"cards"`
}

// GetCards returns one page of the unfiltered card catalog. The response is
// the same {totalCards, cards} envelope the search endpoint uses; limit
// defaults to 20 server-side when zero.
func (c *Client) GetCards(ctx context.Context, limit, offset int) (*SearchResponse, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}

	path := "/cards/"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp SearchResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("failed to get cards: %w", err)
	}
	if resp.Cards == nil {
		resp.Cards = []Card{}
	}
	return &resp, nil
}

// GetCard retrieves a single card by numeric ID or exact name.
func (c *Client) GetCard(ctx context.Context, param string) (*Card, error) {
	var card Card
	if err := c.get(ctx, "/cards/"+url.PathEscape(param), &card); err != nil {
		return nil, fmt.Errorf("failed to get card %q: %w", param, err)
	}
	return &card, nil
}

// SearchCards queries the catalog with optional filters. A 400 response with
// the server's "Invalid search term" message is a recoverable empty result:
// the term matched nothing upstream, so an empty response is returned with no
// error. All other failures are real errors.
func (c *Client) SearchCards(ctx context.Context, filter SearchFilter) (*SearchResponse, error) {
	q := url.Values{}
	if filter.Name != "" {
		q.Set("name", filter.Name)
	}
	if filter.Type != "" {
		q.Set("type", filter.Type)
	}
	if filter.FrameType != "" {
		q.Set("frameType", filter.FrameType)
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		q.Set("offset", strconv.Itoa(filter.Offset))
	}

	path := "/cards/search"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp SearchResponse
	if err := c.get(ctx, path, &resp); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Kind == KindValidation {
			return &SearchResponse{Cards: []Card{}}, nil
		}
		return nil, fmt.Errorf("card search failed: %w", err)
	}
	if resp.Cards == nil {
		resp.Cards = []Card{}
	}
	return &resp, nil
}
