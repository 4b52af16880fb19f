package api

import (
	"context"
	"fmt"
	"net/http"
)

// collectionEnvelope wraps the list the server returns from GET /collections/.
type collectionEnvelope struct {
	Collection []CollectionItem `json:"collection"`
}

// addCardRequest is the body for POST /collections/. Quantity is the positive
// number of copies to add, not an absolute value.
type addCardRequest struct {
	CardID   uint `json:"card_id"`
	Quantity int  `json:"quantity"`
}

// removeQuantityRequest is the body for DELETE /collections/:cardId. Quantity
// is the positive number of copies to remove; the server deletes the row when
// it reaches zero.
type removeQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// GetCollection returns every item in the authenticated user's collection.
func (c *Client) GetCollection(ctx context.Context) ([]CollectionItem, error) {
	var env collectionEnvelope
	if err := c.get(ctx, "/collections/", &env); err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	if env.Collection == nil {
		env.Collection = []CollectionItem{}
	}
	return env.Collection, nil
}

// GetCollectionItem returns a single collection item, or KindNotFound when
// the card is not in the collection.
func (c *Client) GetCollectionItem(ctx context.Context, cardID uint) (*CollectionItem, error) {
	var item CollectionItem
	if err := c.get(ctx, fmt.Sprintf("/collections/%d", cardID), &item); err != nil {
		return nil, fmt.Errorf("failed to get collection item %d: %w", cardID, err)
	}
	return &item, nil
}

// AddToCollection adds quantity copies of a card to the collection. The
// server upserts: the first add creates the item, later adds increment it.
func (c *Client) AddToCollection(ctx context.Context, cardID uint, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	err := c.send(ctx, http.MethodPost, "/collections/", addCardRequest{CardID: cardID, Quantity: quantity}, nil)
	if err != nil {
		return fmt.Errorf("failed to add card %d to collection: %w", cardID, err)
	}
	return nil
}

// RemoveFromCollection removes quantity copies of a card from the collection.
// Removing the full owned quantity deletes the item server-side.
func (c *Client) RemoveFromCollection(ctx context.Context, cardID uint, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	err := c.send(ctx, http.MethodDelete, fmt.Sprintf("/collections/%d", cardID), removeQuantityRequest{Quantity: quantity}, nil)
	if err != nil {
		return fmt.Errorf("failed to remove card %d from collection: %w", cardID, err)
	}
	return nil
}
