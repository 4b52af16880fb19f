// Package stats computes display aggregates over card lists. The collection
// aggregate comes from the server; the deck overview here uses the same
// counting rules so the two read consistently side by side.
package stats

import (
	"sort"
	"strings"

	"github.com/ramonehamilton/YGO-Companion/internal/api"
)

// DeckOverview summarizes one deck's composition for display.
type DeckOverview struct {
	MonsterCount int            // monster cards, quantities summed
	SpellCount   int            // spell cards, quantities summed
	TrapCount    int            // trap cards, quantities summed
	Attributes   map[string]int // monster attribute -> quantity
	AvgATK       float64        // quantity-weighted over monster cards
	AvgDEF       float64
}

// ComputeDeckOverview aggregates a deck's card list. Counts are weighted by
// quantity; averages cover monster cards only and a deck with no monsters
// yields zero averages.
func ComputeDeckOverview(cards []api.DeckCard) DeckOverview {
	overview := DeckOverview{
		Attributes: make(map[string]int),
	}

	var totalATK, totalDEF, monsterQty int

	for _, dc := range cards {
		qty := dc.Quantity
		cardType := strings.ToLower(dc.Card.Type)

		switch {
		case strings.Contains(cardType, "monster"):
			overview.MonsterCount += qty
		case strings.Contains(cardType, "spell"):
			overview.SpellCount += qty
		case strings.Contains(cardType, "trap"):
			overview.TrapCount += qty
		}

		atk, def, attribute := monsterStats(dc.Card)
		if attribute != "" {
			overview.Attributes[strings.ToUpper(attribute)] += qty
		}
		if atk != nil || def != nil {
			if atk != nil && *atk >= 0 {
				totalATK += *atk * qty
			}
			if def != nil && *def >= 0 {
				totalDEF += *def * qty
			}
			monsterQty += qty
		}
	}

	if monsterQty > 0 {
		overview.AvgATK = float64(totalATK) / float64(monsterQty)
		overview.AvgDEF = float64(totalDEF) / float64(monsterQty)
	}
	return overview
}

// monsterStats pulls ATK/DEF/attribute from whichever detail block the card
// carries. Link monsters have no DEF; spells and traps have neither.
func monsterStats(card api.Card) (atk, def *int, attribute string) {
	switch {
	case card.MonsterCard != nil:
		d := card.MonsterCard
		if d.Attribute != nil {
			attribute = *d.Attribute
		}
		return d.Atk, d.Def, attribute
	case card.LinkMonsterCard != nil:
		d := card.LinkMonsterCard
		if d.Attribute != nil {
			attribute = *d.Attribute
		}
		return d.Atk, nil, attribute
	case card.PendulumMonsterCard != nil:
		d := card.PendulumMonsterCard
		if d.Attribute != nil {
			attribute = *d.Attribute
		}
		return d.Atk, d.Def, attribute
	default:
		return nil, nil, ""
	}
}

// AttributeRanking returns attribute counts sorted by descending quantity,
// then name, for stable display.
func AttributeRanking(attributes map[string]int) []AttributeCount {
	out := make([]AttributeCount, 0, len(attributes))
	for name, count := range attributes {
		out = append(out, AttributeCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// AttributeCount is one entry of an attribute ranking.
type AttributeCount struct {
	Name  string
	Count int
}
