// Package deck presents a deck's flat card list as main/extra/side zones and
// mediates quantity-bounded mutations against the deck service. Zone
// assignment and quantity caps live server-side, so every successful mutation
// is followed by a full refetch of the deck's card list rather than a local
// patch: correctness over the extra round trip.
package deck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ramonehamilton/YGO-Companion/internal/api"
)

// Soft limits shown as UI hints. Nothing client-side clamps to them; whether
// the backend enforces them is part of its contract, not ours.
const (
	MainZoneCap  = 60
	ExtraZoneCap = 15
	SideZoneCap  = 10
	MaxCopies    = 3
)

var (
	// ErrNoDeckSelected is returned by mutations before a deck is loaded.
	ErrNoDeckSelected = errors.New("no deck selected")

	// ErrCardNotInDeck is returned when removing copies of a card the deck
	// does not contain.
	ErrCardNotInDeck = errors.New("card not in deck")

	// ErrMutationInFlight mirrors the collection reconciler: at most one
	// unresolved mutation per card.
	ErrMutationInFlight = errors.New("mutation already in flight for this card")
)

// Zones is a deck's card list partitioned for display.
type Zones struct {
	Main  []api.DeckCard
	Extra []api.DeckCard
	Side  []api.DeckCard
}

// PartitionByZone routes every entry to exactly one bucket: "main" to Main,
// "extra" to Extra, and anything else - including unknown or empty zone
// tags - to Side. The permissive fallback keeps a drifted server zone value
// visible instead of dropping the card.
func PartitionByZone(cards []api.DeckCard) Zones {
	var z Zones
	for _, card := range cards {
		switch card.Zone {
		case api.ZoneMain:
			z.Main = append(z.Main, card)
		case api.ZoneExtra:
			z.Extra = append(z.Extra, card)
		default:
			z.Side = append(z.Side, card)
		}
	}
	return z
}

// ZoneCapacity returns the soft size cap for a zone tag.
func ZoneCapacity(zone string) int {
	switch zone {
	case api.ZoneMain:
		return MainZoneCap
	case api.ZoneExtra:
		return ExtraZoneCap
	default:
		return SideZoneCap
	}
}

// count returns the total number of cards (quantities summed) in a bucket.
func count(cards []api.DeckCard) int {
	total := 0
	for _, c := range cards {
		total += c.Quantity
	}
	return total
}

// CapWarnings lists the soft limits the current composition exceeds. Warnings
// are display hints only.
func (z Zones) CapWarnings() []string {
	var warnings []string
	if n := count(z.Main); n > MainZoneCap {
		warnings = append(warnings, fmt.Sprintf("main deck has %d cards (limit %d)", n, MainZoneCap))
	}
	if n := count(z.Extra); n > ExtraZoneCap {
		warnings = append(warnings, fmt.Sprintf("extra deck has %d cards (limit %d)", n, ExtraZoneCap))
	}
	if n := count(z.Side); n > SideZoneCap {
		warnings = append(warnings, fmt.Sprintf("side deck has %d cards (limit %d)", n, SideZoneCap))
	}
	for _, bucket := range [][]api.DeckCard{z.Main, z.Extra, z.Side} {
		for _, c := range bucket {
			if c.Quantity > MaxCopies {
				warnings = append(warnings, fmt.Sprintf("%q has %d copies (limit %d)", c.Card.Name, c.Quantity, MaxCopies))
			}
		}
	}
	return warnings
}

// ViewModel holds the selected deck and its partitioned card mirror.
type ViewModel struct {
	client *api.Client
	logger *slog.Logger

	mu       sync.Mutex
	deck     *api.Deck
	cards    []api.DeckCard
	inflight map[uint]bool
}

// NewViewModel creates a view-model with no deck selected.
func NewViewModel(client *api.Client, logger *slog.Logger) *ViewModel {
	if logger == nil {
		logger = slog.Default()
	}
	return &ViewModel{
		client:   client,
		logger:   logger,
		inflight: make(map[uint]bool),
	}
}

// Select loads a deck's card list from the server and makes it current.
func (vm *ViewModel) Select(ctx context.Context, deck api.Deck) error {
	cards, err := vm.client.GetDeckCards(ctx, deck.ID)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.deck = &deck
	vm.cards = cards
	vm.mu.Unlock()
	return nil
}

// Deck returns a copy of the selected deck, or nil.
func (vm *ViewModel) Deck() *api.Deck {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.deck == nil {
		return nil
	}
	d := *vm.deck
	return &d
}

// Zones returns the current card mirror partitioned into zone buckets.
func (vm *ViewModel) Zones() Zones {
	vm.mu.Lock()
	cards := make([]api.DeckCard, len(vm.cards))
	copy(cards, vm.cards)
	vm.mu.Unlock()
	return PartitionByZone(cards)
}

// AddCopies adds count copies of a card to the selected deck, then refetches
// and re-partitions. On failure the mirror is left stale and the error
// surfaces.
func (vm *ViewModel) AddCopies(ctx context.Context, cardID uint, count int) error {
	return vm.mutate(ctx, cardID, false, count)
}

// RemoveCopies removes count copies of a card from the selected deck. The
// card must currently be in the deck with quantity > 0.
func (vm *ViewModel) RemoveCopies(ctx context.Context, cardID uint, count int) error {
	return vm.mutate(ctx, cardID, true, count)
}

func (vm *ViewModel) mutate(ctx context.Context, cardID uint, remove bool, count int) error {
	if count <= 0 {
		count = 1
	}

	vm.mu.Lock()
	if vm.deck == nil {
		vm.mu.Unlock()
		return ErrNoDeckSelected
	}
	deckID := vm.deck.ID
	if remove && vm.quantityLocked(cardID) <= 0 {
		vm.mu.Unlock()
		return ErrCardNotInDeck
	}
	if vm.inflight[cardID] {
		vm.mu.Unlock()
		return ErrMutationInFlight
	}
	vm.inflight[cardID] = true
	vm.mu.Unlock()

	var err error
	if remove {
		err = vm.client.RemoveCardFromDeck(ctx, deckID, cardID, count)
	} else {
		err = vm.client.AddCardToDeck(ctx, deckID, cardID, count)
	}

	if err != nil {
		vm.mu.Lock()
		delete(vm.inflight, cardID)
		vm.mu.Unlock()
		vm.logger.Error("deck mutation failed", "deckId", deckID, "cardId", cardID, "remove", remove, "error", err)
		return err
	}

	// Full refetch: the server owns zone assignment and caps, so the mirror
	// is rebuilt from its answer instead of patched.
	cards, fetchErr := vm.client.GetDeckCards(ctx, deckID)

	vm.mu.Lock()
	delete(vm.inflight, cardID)
	if fetchErr == nil && vm.deck != nil && vm.deck.ID == deckID {
		vm.cards = cards
	}
	vm.mu.Unlock()

	if fetchErr != nil {
		vm.logger.Error("deck refetch failed, mirror is stale", "deckId", deckID, "error", fetchErr)
		return fetchErr
	}
	return nil
}

func (vm *ViewModel) quantityLocked(cardID uint) int {
	for _, c := range vm.cards {
		if c.CardID == cardID {
			return c.Quantity
		}
	}
	return 0
}

// Import uploads a deck-list file into the selected deck and refetches. The
// file is forwarded opaquely; its format belongs to the server.
func (vm *ViewModel) Import(ctx context.Context, path string) error {
	vm.mu.Lock()
	if vm.deck == nil {
		vm.mu.Unlock()
		return ErrNoDeckSelected
	}
	deck := *vm.deck
	vm.mu.Unlock()

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open deck file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := vm.client.ImportDeck(ctx, deck.ID, path, file); err != nil {
		return err
	}
	return vm.Select(ctx, deck)
}

// Export downloads the server-rendered deck list and saves it under dir,
// returning the written path. The bytes are not interpreted.
func (vm *ViewModel) Export(ctx context.Context, dir string) (string, error) {
	vm.mu.Lock()
	if vm.deck == nil {
		vm.mu.Unlock()
		return "", ErrNoDeckSelected
	}
	deck := *vm.deck
	vm.mu.Unlock()

	data, err := vm.client.ExportDeck(ctx, deck.ID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, exportFilename(deck.Name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write deck file: %w", err)
	}
	return path, nil
}

// exportFilename turns a deck name into a safe .ydk filename.
func exportFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "deck"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "deck.ydk"
	}
	return b.String() + ".ydk"
}
