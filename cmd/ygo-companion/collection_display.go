package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/ramonehamilton/YGO-Companion/internal/api"
	"github.com/ramonehamilton/YGO-Companion/internal/storage"
)

// displayCollection displays the live collection mirror.
func displayCollection(items []api.CollectionItem) {
	if len(items) == 0 {
		fmt.Println("The collection is empty.")
		return
	}

	fmt.Println("Card Collection")
	fmt.Println("===============")
	fmt.Println()

	sort.Slice(items, func(i, j int) bool {
		if items[i].Card.Name != items[j].Card.Name {
			return items[i].Card.Name < items[j].Card.Name
		}
		return items[i].CardID < items[j].CardID
	})

	total := 0
	for _, item := range items {
		total += item.Quantity
		displayCollectionItem(item)
	}

	fmt.Println()
	fmt.Printf("  Total Cards:  %d\n", total)
	fmt.Printf("  Unique Cards: %d\n", len(items))
	fmt.Println()
}

// displayCollectionItem displays a single collection row.
func displayCollectionItem(item api.CollectionItem) {
	name := item.Card.Name
	if name == "" {
		name = fmt.Sprintf("Card #%d", item.CardID)
	}

	typeInfo := ""
	if item.Card.Type != "" {
		typeInfo = fmt.Sprintf(" [%s]", item.Card.Type)
	}

	fmt.Printf("  %s%s: x%d\n", name, typeInfo, item.Quantity)
}

// displaySnapshot displays the offline snapshot with a staleness banner.
func displaySnapshot(snapshot *storage.Snapshot) {
	fmt.Println("Card Collection (OFFLINE SNAPSHOT)")
	fmt.Println("==================================")
	fmt.Printf("Server unreachable; showing data from %s (%s old).\n",
		snapshot.FetchedAt.Local().Format("2006-01-02 15:04"),
		snapshot.Age(time.Now()).Round(time.Minute))
	fmt.Println()

	if len(snapshot.Cards) == 0 {
		fmt.Println("The snapshot is empty.")
		return
	}

	total := 0
	for _, card := range snapshot.Cards {
		total += card.Quantity
		typeInfo := ""
		if card.CardType != "" {
			typeInfo = fmt.Sprintf(" [%s]", card.CardType)
		}
		fmt.Printf("  %s%s: x%d\n", card.Name, typeInfo, card.Quantity)
	}

	fmt.Println()
	fmt.Printf("  Total Cards:  %d\n", total)
	fmt.Printf("  Unique Cards: %d\n", len(snapshot.Cards))
	fmt.Println()
}

// displayCatalogPage displays one page of the unfiltered card catalogue.
func displayCatalogPage(result *api.SearchResponse, offset int) {
	if result.TotalCards == 0 {
		fmt.Println("The catalogue is empty.")
		return
	}

	fmt.Println("Card Catalogue")
	fmt.Println("==============")
	fmt.Println()

	for _, card := range result.Cards {
		fmt.Printf("  #%-6d %s [%s]\n", card.ID, card.Name, card.Type)
	}

	fmt.Println()
	fmt.Printf("  Showing cards %d-%d of %d\n", offset+1, offset+len(result.Cards), result.TotalCards)
	fmt.Println()
}

// displayCard displays one card's full details.
func displayCard(card *api.Card) {
	fmt.Printf("%s (#%d)\n", card.Name, card.ID)
	fmt.Println("==================")
	fmt.Printf("  Type:  %s\n", card.Type)
	if card.FrameType != "" {
		fmt.Printf("  Frame: %s\n", card.FrameType)
	}

	switch {
	case card.MonsterCard != nil:
		d := card.MonsterCard
		displayStatLine("ATK", d.Atk)
		displayStatLine("DEF", d.Def)
		displayStatLine("Level", d.Level)
		displayStatLine("Rank", d.Rank)
		displayDetailLine("Attribute", d.Attribute)
		displayDetailLine("Race", d.Race)
	case card.LinkMonsterCard != nil:
		d := card.LinkMonsterCard
		displayStatLine("ATK", d.Atk)
		displayStatLine("Link", d.LinkValue)
		displayDetailLine("Attribute", d.Attribute)
		displayDetailLine("Race", d.Race)
	case card.PendulumMonsterCard != nil:
		d := card.PendulumMonsterCard
		displayStatLine("ATK", d.Atk)
		displayStatLine("DEF", d.Def)
		displayStatLine("Level", d.Level)
		displayStatLine("Scale", d.PendulumScale)
		displayDetailLine("Attribute", d.Attribute)
		displayDetailLine("Race", d.Race)
	case card.SpellTrapCard != nil:
		fmt.Printf("  Subtype: %s\n", card.SpellTrapCard.Type)
	}

	if card.Desc != "" {
		fmt.Println()
		fmt.Println("  " + card.Desc)
	}
	fmt.Println()
}

func displayStatLine(label string, value *int) {
	if value != nil {
		fmt.Printf("  %-6s %d\n", label+":", *value)
	}
}

func displayDetailLine(label string, value *string) {
	if value != nil && *value != "" {
		fmt.Printf("  %-6s %s\n", label+":", *value)
	}
}

// displaySearchResults displays a card search result page.
func displaySearchResults(term string, result *api.SearchResponse) {
	if result.TotalCards == 0 {
		fmt.Printf("No cards matched %q.\n", term)
		return
	}

	fmt.Printf("Search Results for %q\n", term)
	fmt.Println("=====================")
	fmt.Println()

	for _, card := range result.Cards {
		fmt.Printf("  #%-6d %s [%s]\n", card.ID, card.Name, card.Type)
	}

	fmt.Println()
	fmt.Printf("  Showing %d of %d matching cards\n", len(result.Cards), result.TotalCards)
	fmt.Println()
}
