package stats

import (
	"math"
	"testing"

	"github.com/ramonehamilton/YGO-Companion/internal/api"
)

func intp(v int) *int       { return &v }
func strp(s string) *string { return &s }

func monster(cardID uint, name string, atk, def int, attribute string, quantity int) api.DeckCard {
	return api.DeckCard{
		CardID:   cardID,
		Quantity: quantity,
		Zone:     "main",
		Card: api.Card{
			ID:   cardID,
			Name: name,
			Type: "Effect Monster",
			MonsterCard: &api.MonsterDetail{
				Atk:       intp(atk),
				Def:       intp(def),
				Attribute: strp(attribute),
			},
		},
	}
}

func spell(cardID uint, name string, quantity int) api.DeckCard {
	return api.DeckCard{
		CardID:   cardID,
		Quantity: quantity,
		Zone:     "main",
		Card: api.Card{
			ID:            cardID,
			Name:          name,
			Type:          "Spell Card",
			SpellTrapCard: &api.SpellTrapDetail{CardID: cardID, Type: "Normal"},
		},
	}
}

func TestComputeDeckOverview_Counts(t *testing.T) {
	cards := []api.DeckCard{
		monster(1, "Dark Magician", 2500, 2100, "DARK", 3),
		monster(2, "Blue-Eyes White Dragon", 3000, 2500, "LIGHT", 2),
		spell(3, "Pot of Greed", 1),
		{
			CardID:   4,
			Quantity: 2,
			Card:     api.Card{ID: 4, Name: "Mirror Force", Type: "Trap Card"},
		},
	}

	o := ComputeDeckOverview(cards)

	if o.MonsterCount != 5 {
		t.Errorf("expected 5 monsters (quantity-weighted), got %d", o.MonsterCount)
	}
	if o.SpellCount != 1 {
		t.Errorf("expected 1 spell, got %d", o.SpellCount)
	}
	if o.TrapCount != 2 {
		t.Errorf("expected 2 traps, got %d", o.TrapCount)
	}
	if o.Attributes["DARK"] != 3 || o.Attributes["LIGHT"] != 2 {
		t.Errorf("unexpected attribute distribution: %v", o.Attributes)
	}
}

func TestComputeDeckOverview_WeightedAverages(t *testing.T) {
	cards := []api.DeckCard{
		monster(1, "Dark Magician", 2500, 2100, "DARK", 3),
		monster(2, "Kuriboh", 300, 200, "DARK", 1),
	}

	o := ComputeDeckOverview(cards)

	// (2500*3 + 300*1) / 4 = 1950, (2100*3 + 200*1) / 4 = 1625
	if math.Abs(o.AvgATK-1950) > 1e-9 {
		t.Errorf("expected AvgATK 1950, got %f", o.AvgATK)
	}
	if math.Abs(o.AvgDEF-1625) > 1e-9 {
		t.Errorf("expected AvgDEF 1625, got %f", o.AvgDEF)
	}
}

func TestComputeDeckOverview_NoMonstersYieldsZeroAverages(t *testing.T) {
	o := ComputeDeckOverview([]api.DeckCard{spell(1, "Pot of Greed", 3)})

	if o.AvgATK != 0 || o.AvgDEF != 0 {
		t.Errorf("expected zero averages, got atk=%f def=%f", o.AvgATK, o.AvgDEF)
	}
	if o.MonsterCount != 0 {
		t.Errorf("expected no monsters, got %d", o.MonsterCount)
	}
}

func TestComputeDeckOverview_LinkMonsterHasNoDef(t *testing.T) {
	cards := []api.DeckCard{
		{
			CardID:   1,
			Quantity: 1,
			Zone:     "extra",
			Card: api.Card{
				ID:   1,
				Name: "Decode Talker",
				Type: "Link Monster",
				LinkMonsterCard: &api.LinkMonsterDetail{
					Atk:       intp(2300),
					Attribute: strp("DARK"),
					LinkValue: intp(3),
				},
			},
		},
	}

	o := ComputeDeckOverview(cards)
	if o.AvgATK != 2300 {
		t.Errorf("expected AvgATK 2300, got %f", o.AvgATK)
	}
	if o.AvgDEF != 0 {
		t.Errorf("expected AvgDEF 0 for link-only deck, got %f", o.AvgDEF)
	}
	if o.Attributes["DARK"] != 1 {
		t.Errorf("expected DARK attribute counted, got %v", o.Attributes)
	}
}

func TestAttributeRanking(t *testing.T) {
	ranking := AttributeRanking(map[string]int{"DARK": 3, "LIGHT": 5, "EARTH": 3})

	if len(ranking) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(ranking))
	}
	if ranking[0].Name != "LIGHT" {
		t.Errorf("expected LIGHT first, got %s", ranking[0].Name)
	}
	// Ties break alphabetically for stable output.
	if ranking[1].Name != "DARK" || ranking[2].Name != "EARTH" {
		t.Errorf("expected DARK then EARTH, got %s then %s", ranking[1].Name, ranking[2].Name)
	}
}
