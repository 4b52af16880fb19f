package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
)

// createDeckRequest is the body for POST /decks/.
type createDeckRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// deckCardRequest is the body for deck card mutations. Quantity is always a
// positive delta.
type deckCardRequest struct {
	CardID   uint `json:"card_id"`
	Quantity int  `json:"quantity"`
}

type removeDeckCardRequest struct {
	Quantity int `json:"quantity"`
}

// GetDecks returns the authenticated user's decks with their card entries
// embedded.
func (c *Client) GetDecks(ctx context.Context) ([]Deck, error) {
	var decks []Deck
	if err := c.get(ctx, "/decks/", &decks); err != nil {
		return nil, fmt.Errorf("failed to get decks: %w", err)
	}
	return decks, nil
}

// CreateDeck creates an empty named deck. Duplicate names and the per-user
// deck limit surface as KindConflict with the server's message.
func (c *Client) CreateDeck(ctx context.Context, name, description string) (*Deck, error) {
	var deck Deck
	err := c.send(ctx, http.MethodPost, "/decks/", createDeckRequest{Name: name, Description: description}, &deck)
	if err != nil {
		return nil, fmt.Errorf("failed to create deck: %w", err)
	}
	return &deck, nil
}

// DeleteDeck deletes a deck and all its card entries.
func (c *Client) DeleteDeck(ctx context.Context, deckID uint) error {
	if err := c.send(ctx, http.MethodDelete, fmt.Sprintf("/decks/%d", deckID), nil, nil); err != nil {
		return fmt.Errorf("failed to delete deck %d: %w", deckID, err)
	}
	return nil
}

// GetDeckCards returns the flat card list of one deck. Zone assignment and
// quantity caps are server-enforced; callers partition for display only.
func (c *Client) GetDeckCards(ctx context.Context, deckID uint) ([]DeckCard, error) {
	var cards []DeckCard
	if err := c.get(ctx, fmt.Sprintf("/decks/%d/cards", deckID), &cards); err != nil {
		return nil, fmt.Errorf("failed to get cards for deck %d: %w", deckID, err)
	}
	if cards == nil {
		cards = []DeckCard{}
	}
	return cards, nil
}

// AddCardToDeck adds quantity copies of a card to a deck. The server decides
// the zone from the card's frame type.
func (c *Client) AddCardToDeck(ctx context.Context, deckID, cardID uint, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	err := c.send(ctx, http.MethodPost, fmt.Sprintf("/decks/%d/cards", deckID), deckCardRequest{CardID: cardID, Quantity: quantity}, nil)
	if err != nil {
		return fmt.Errorf("failed to add card %d to deck %d: %w", cardID, deckID, err)
	}
	return nil
}

// RemoveCardFromDeck removes quantity copies of a card from a deck. Removing
// the last copy deletes the entry server-side.
func (c *Client) RemoveCardFromDeck(ctx context.Context, deckID, cardID uint, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	err := c.send(ctx, http.MethodDelete, fmt.Sprintf("/decks/%d/cards/%d", deckID, cardID), removeDeckCardRequest{Quantity: quantity}, nil)
	if err != nil {
		return fmt.Errorf("failed to remove card %d from deck %d: %w", cardID, deckID, err)
	}
	return nil
}

// ImportDeck uploads a deck-list file into an existing deck. The file is
// forwarded opaquely; the server owns the format's semantics.
func (c *Client) ImportDeck(ctx context.Context, deckID uint, filename string, file io.Reader) error {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read deck file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize upload: %w", err)
	}

	resp, err := c.roundTrip(ctx, http.MethodPost, fmt.Sprintf("/decks/import/%d", deckID), buf, writer.FormDataContentType())
	if err != nil {
		return fmt.Errorf("failed to import deck: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("failed to import deck: %w", c.errorFromResponse(resp))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// ExportDeck downloads the server-rendered deck list as an opaque byte
// stream. The client does not interpret the bytes.
func (c *Client) ExportDeck(ctx context.Context, deckID uint) ([]byte, error) {
	resp, err := c.roundTrip(ctx, http.MethodPost, fmt.Sprintf("/decks/export/%d", deckID), nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to export deck: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to export deck: %w", c.errorFromResponse(resp))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read exported deck: %w", err)
	}
	return data, nil
}
