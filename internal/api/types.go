package api

// Wire types for the collection backend. The backend serializes its Go models
// directly, so field names arrive in exported-Go casing ("Name", "CardID").
// Older deployments emitted lowercase keys for some card fields; encoding/json
// matches keys case-insensitively, which covers both generations of the
// contract. Per-card-type detail objects are optional and may be absent or
// null depending on the card's frame type, so they are pointers here.

// User is the authenticated identity returned by /auth/me and /auth/login.
type User struct {
	ID       uint   `json:"ID"`
	Username string `json:"Username"`
	Email    string `json:"Email"`
}

// Card is immutable reference data for a single card. It is never mutated
// client-side.
type Card struct {
	ID        uint   `json:"ID"`
	CardYGOID int    `json:"CardYGOID"`
	Name      string `json:"Name"`
	Desc      string `json:"Desc"`
	FrameType string `json:"FrameType"`
	Type      string `json:"Type"`
	ImageURL  string `json:"ImageURL"`

	MonsterCard         *MonsterDetail         `json:"MonsterCard"`
	SpellTrapCard       *SpellTrapDetail       `json:"SpellTrapCard"`
	LinkMonsterCard     *LinkMonsterDetail     `json:"LinkMonsterCard"`
	PendulumMonsterCard *PendulumMonsterDetail `json:"PendulumMonsterCard"`
}

// MonsterDetail holds the attributes shared by normal, effect, ritual, fusion,
// synchro and xyz monsters. Numeric fields are pointers because the contract
// sends null for stats that do not apply (e.g. Level on an Xyz monster).
type MonsterDetail struct {
	Atk       *int    `json:"Atk"`
	Def       *int    `json:"Def"`
	Level     *int    `json:"Level"`
	Rank      *int    `json:"Rank"`
	Attribute *string `json:"Attribute"`
	Race      *string `json:"Race"`
	Archetype *string `json:"Archetype"`
}

// SpellTrapDetail holds the spell/trap subtype. Some server versions nest a
// redundant copy of the parent card here; it is intentionally not modeled.
type SpellTrapDetail struct {
	CardID uint   `json:"CardID"`
	Type   string `json:"Type"`
}

// LinkMonsterDetail holds link-monster specific attributes.
type LinkMonsterDetail struct {
	Atk         *int     `json:"Atk"`
	Attribute   *string  `json:"Attribute"`
	Race        *string  `json:"Race"`
	Archetype   *string  `json:"Archetype"`
	LinkValue   *int     `json:"LinkValue"`
	LinkMarkers []string `json:"LinkMarkers"`
}

// PendulumMonsterDetail holds pendulum-monster specific attributes.
type PendulumMonsterDetail struct {
	Atk            *int    `json:"Atk"`
	Def            *int    `json:"Def"`
	Level          *int    `json:"Level"`
	Attribute      *string `json:"Attribute"`
	Race           *string `json:"Race"`
	Archetype      *string `json:"Archetype"`
	PendulumScale  *int    `json:"PendulumScale"`
	PendulumEffect *string `json:"PendulumEffect"`
}

// CollectionItem is one (user, card) row of the collection with a positive
// quantity. A quantity reaching zero deletes the row server-side; a zero
// quantity is never observed on the wire.
type CollectionItem struct {
	ID       uint `json:"ID"`
	UserID   uint `json:"UserID"`
	CardID   uint `json:"CardID"`
	Quantity int  `json:"Quantity"`
	Card     Card `json:"Card"`
}

// Deck is a named, user-owned grouping of cards.
type Deck struct {
	ID          uint       `json:"ID"`
	UserID      uint       `json:"UserID"`
	Name        string     `json:"Name"`
	Description string     `json:"Description"`
	DeckCards   []DeckCard `json:"DeckCards"`
}

// Deck zones. Any unrecognized zone value is treated as the side deck.
const (
	ZoneMain  = "main"
	ZoneExtra = "extra"
	ZoneSide  = "side"
)

// DeckCard is a (deck, card, zone) entry with a positive quantity.
type DeckCard struct {
	DeckID   uint   `json:"DeckID"`
	CardID   uint   `json:"CardID"`
	Quantity int    `json:"Quantity"`
	Zone     string `json:"Zone"`
	Card     Card   `json:"Card"`
}

// AvgStats is the average ATK/DEF block of a stats response.
type AvgStats struct {
	AvgATK float64 `json:"avg_atk"`
	AvgDEF float64 `json:"avg_def"`
}

// CollectionStats is the aggregate returned by /stats/collection and
// /stats/deck/:id. Counts are weighted by quantity.
type CollectionStats struct {
	MonsterCount int            `json:"monster"`
	SpellCount   int            `json:"spell"`
	TrapCount    int            `json:"trap"`
	Attributes   map[string]int `json:"attributes"`
	AverageStats AvgStats       `json:"average_stats"`
}
