package main

import (
	"fmt"

	"github.com/ramonehamilton/YGO-Companion/internal/api"
	ygostats "github.com/ramonehamilton/YGO-Companion/internal/stats"
)

// displayStats displays a collection or deck statistics response.
func displayStats(title string, stats *api.CollectionStats) {
	fmt.Println(title)
	fmt.Println("==============================")
	fmt.Println()

	fmt.Println("Card Types:")
	fmt.Printf("  Monsters: %d\n", stats.MonsterCount)
	fmt.Printf("  Spells:   %d\n", stats.SpellCount)
	fmt.Printf("  Traps:    %d\n", stats.TrapCount)
	fmt.Println()

	if len(stats.Attributes) > 0 {
		fmt.Println("Monster Attributes:")
		for _, entry := range ygostats.AttributeRanking(stats.Attributes) {
			fmt.Printf("  %-8s %d\n", entry.Name, entry.Count)
		}
		fmt.Println()
	}

	fmt.Println("Average Monster Stats:")
	fmt.Printf("  ATK: %.1f\n", stats.AverageStats.AvgATK)
	fmt.Printf("  DEF: %.1f\n", stats.AverageStats.AvgDEF)
	fmt.Println()
}
