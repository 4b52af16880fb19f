package api

import (
	"context"
	"fmt"
)

// GetCollectionStats returns server-computed aggregates for the authenticated
// user's collection.
func (c *Client) GetCollectionStats(ctx context.Context) (*CollectionStats, error) {
	var stats CollectionStats
	if err := c.get(ctx, "/stats/collection", &stats); err != nil {
		return nil, fmt.Errorf("failed to get collection stats: %w", err)
	}
	return &stats, nil
}

// GetDeckStats returns server-computed aggregates for one deck.
func (c *Client) GetDeckStats(ctx context.Context, deckID uint) (*CollectionStats, error) {
	var stats CollectionStats
	if err := c.get(ctx, fmt.Sprintf("/stats/deck/%d", deckID), &stats); err != nil {
		return nil, fmt.Errorf("failed to get deck stats: %w", err)
	}
	return &stats, nil
}
