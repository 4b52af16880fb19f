package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchCards_QueryParameters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("name") != "dark magician" {
			t.Errorf("expected name=dark magician, got %q", q.Get("name"))
		}
		if q.Get("type") != "Spell Card" {
			t.Errorf("expected type=Spell Card, got %q", q.Get("type"))
		}
		if q.Get("frameType") != "normal" {
			t.Errorf("expected frameType=normal, got %q", q.Get("frameType"))
		}
		if q.Get("limit") != "5" {
			t.Errorf("expected limit=5, got %q", q.Get("limit"))
		}
		_ = json.NewEncoder(w).Encode(SearchResponse{
			TotalCards: 1,
			Cards:      []Card{{ID: 10, Name: "Dark Magician"}},
		})
	}))
	defer server.Close()

	client := testClient(t, server)
	resp, err := client.SearchCards(context.Background(), SearchFilter{
		Name:      "dark magician",
		Type:      "Spell Card",
		FrameType: "normal",
		Limit:     5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalCards != 1 || len(resp.Cards) != 1 {
		t.Errorf("expected 1 result, got total=%d len=%d", resp.TotalCards, len(resp.Cards))
	}
}

func TestGetCards_DecodesCatalogEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cards/" {
			t.Errorf("expected path /cards/, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("limit") != "50" {
			t.Errorf("expected limit=50, got %q", q.Get("limit"))
		}
		if q.Get("offset") != "100" {
			t.Errorf("expected offset=100, got %q", q.Get("offset"))
		}
		// The catalog endpoint wraps its page in the same envelope as search.
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"totalCards": 1, "cards": []Card{{ID: 7, Name: "Pot of Greed"}},
		})
	}))
	defer server.Close()

	client := testClient(t, server)
	resp, err := client.GetCards(context.Background(), 50, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalCards != 1 || len(resp.Cards) != 1 {
		t.Fatalf("expected 1 result, got total=%d len=%d", resp.TotalCards, len(resp.Cards))
	}
	if resp.Cards[0].Name != "Pot of Greed" {
		t.Errorf("expected card decoded, got %+v", resp.Cards[0])
	}
}

func TestGetCard_ByIDAndByName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cards/42", "/cards/Dark%20Magician", "/cards/Dark Magician":
			_ = json.NewEncoder(w).Encode(Card{ID: 42, Name: "Dark Magician"})
		default:
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "card not found"})
		}
	}))
	defer server.Close()

	client := testClient(t, server)
	for _, param := range []string{"42", "Dark Magician"} {
		card, err := client.GetCard(context.Background(), param)
		if err != nil {
			t.Fatalf("lookup %q failed: %v", param, err)
		}
		if card.ID != 42 {
			t.Errorf("lookup %q: expected card 42, got %+v", param, card)
		}
	}

	_, err := client.GetCard(context.Background(), "nonexistent")
	if !IsKind(err, KindNotFound) {
		t.Errorf("expected not-found kind, got %v", err)
	}
}

func TestSearchCards_InvalidTermIsEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid search term"})
	}))
	defer server.Close()

	client := testClient(t, server)
	resp, err := client.SearchCards(context.Background(), SearchFilter{Name: "zzzzz"})
	if err != nil {
		t.Fatalf("a 400 invalid-term response must not be an error, got: %v", err)
	}
	if len(resp.Cards) != 0 {
		t.Errorf("expected empty result set, got %d cards", len(resp.Cards))
	}
}

func TestSearchCards_ServerErrorIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Failed to retrieve cards from database"})
	}))
	defer server.Close()

	config := DefaultClientConfig(server.URL)
	config.MaxRetries = 0
	config.RequestsPerSecond = 0
	client, err := NewClient(config)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	_, err = client.SearchCards(context.Background(), SearchFilter{Name: "dark"})
	if !IsKind(err, KindServer) {
		t.Errorf("expected server error kind, got %v", err)
	}
}

func TestCardDecode_AcceptsLowercaseKeys(t *testing.T) {
	// Older deployments emit lowercase JSON keys. encoding/json matches keys
	// case-insensitively, so both contract generations must decode.
	raw := `{
		"id": 42,
		"cardygoid": 46986414,
		"name": "Dark Magician",
		"desc": "The ultimate wizard.",
		"frametype": "normal",
		"type": "Normal Monster",
		"imageurl": "https://example.com/46986414.jpg",
		"monstercard": {"atk": 2500, "def": 2100, "level": 7, "attribute": "DARK", "race": "Spellcaster"}
	}`

	var card Card
	if err := json.Unmarshal([]byte(raw), &card); err != nil {
		t.Fatalf("failed to decode lowercase card: %v", err)
	}
	if card.Name != "Dark Magician" {
		t.Errorf("expected name decoded, got %q", card.Name)
	}
	if card.CardYGOID != 46986414 {
		t.Errorf("expected CardYGOID decoded, got %d", card.CardYGOID)
	}
	if card.MonsterCard == nil {
		t.Fatal("expected monster detail decoded")
	}
	if card.MonsterCard.Atk == nil || *card.MonsterCard.Atk != 2500 {
		t.Errorf("expected atk 2500, got %v", card.MonsterCard.Atk)
	}
}

func TestCardDecode_ToleratesMissingDetails(t *testing.T) {
	raw := `{"ID": 5, "Name": "Pot of Greed", "Type": "Spell Card", "MonsterCard": null}`

	var card Card
	if err := json.Unmarshal([]byte(raw), &card); err != nil {
		t.Fatalf("failed to decode card: %v", err)
	}
	if card.MonsterCard != nil || card.SpellTrapCard != nil {
		t.Error("expected nil detail pointers for absent objects")
	}
}
