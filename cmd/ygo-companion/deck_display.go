package main

import (
	"fmt"
	"sort"

	"github.com/ramonehamilton/YGO-Companion/internal/api"
	"github.com/ramonehamilton/YGO-Companion/internal/deck"
)

// displayDecks displays the deck list.
func displayDecks(decks []api.Deck) {
	if len(decks) == 0 {
		fmt.Println("No decks yet. Create one with: deck create <name>")
		return
	}

	fmt.Println("Decks")
	fmt.Println("=====")
	fmt.Println()

	for _, d := range decks {
		fmt.Printf("  #%-4d %s", d.ID, d.Name)
		if d.Description != "" {
			fmt.Printf(" - %s", d.Description)
		}
		fmt.Println()
	}
	fmt.Println()
}

// displayDeck displays one deck partitioned into zones.
func displayDeck(d api.Deck, zones deck.Zones) {
	fmt.Printf("Deck: %s (#%d)\n", d.Name, d.ID)
	fmt.Println("==================")
	if d.Description != "" {
		fmt.Println(d.Description)
	}
	fmt.Println()

	displayZone("Main Deck", zones.Main, deck.MainZoneCap)
	displayZone("Extra Deck", zones.Extra, deck.ExtraZoneCap)
	displayZone("Side Deck", zones.Side, deck.SideZoneCap)

	for _, warning := range zones.CapWarnings() {
		fmt.Printf("  ! %s\n", warning)
	}
	fmt.Println()
}

// displayZone displays a single deck zone.
func displayZone(title string, cards []api.DeckCard, limit int) {
	total := 0
	for _, card := range cards {
		total += card.Quantity
	}
	fmt.Printf("%s (%d/%d):\n", title, total, limit)

	if len(cards) == 0 {
		fmt.Println("  (empty)")
		fmt.Println()
		return
	}

	sorted := make([]api.DeckCard, len(cards))
	copy(sorted, cards)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Card.Name != sorted[j].Card.Name {
			return sorted[i].Card.Name < sorted[j].Card.Name
		}
		return sorted[i].CardID < sorted[j].CardID
	})

	for _, card := range sorted {
		name := card.Card.Name
		if name == "" {
			name = fmt.Sprintf("Card #%d", card.CardID)
		}
		fmt.Printf("  %s x%d\n", name, card.Quantity)
	}
	fmt.Println()
}
