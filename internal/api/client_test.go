package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	config := DefaultClientConfig(server.URL)
	config.RetryBaseDelay = time.Millisecond
	config.RequestsPerSecond = 0
	client, err := NewClient(config)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestDefaultClientConfig(t *testing.T) {
	config := DefaultClientConfig("http://localhost:8080/api/")

	if config.BaseURL != "http://localhost:8080/api" {
		t.Errorf("expected trailing slash trimmed, got %s", config.BaseURL)
	}
	if config.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", config.Timeout)
	}
	if config.MaxRetries != 3 {
		t.Errorf("expected max retries 3, got %d", config.MaxRetries)
	}
}

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		status int
		kind   ErrorKind
	}{
		{400, KindValidation},
		{401, KindUnauthorized},
		{403, KindForbidden},
		{404, KindNotFound},
		{409, KindConflict},
		{500, KindServer},
		{503, KindServer},
		// Statuses the backend never emits collapse to the server kind.
		{405, KindServer},
		{418, KindServer},
		{302, KindServer},
	}
	for _, tt := range tests {
		if got := KindForStatus(tt.status); got != tt.kind {
			t.Errorf("KindForStatus(%d) = %s, want %s", tt.status, got, tt.kind)
		}
	}
}

func TestClient_ErrorPrefersServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Deck already exists"})
	}))
	defer server.Close()

	client := testClient(t, server)
	_, err := client.CreateDeck(context.Background(), "Blue Eyes", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsKind(err, KindConflict) {
		t.Errorf("expected conflict kind, got %s", KindOf(err))
	}

	apiErr := &Error{}
	if !asError(err, &apiErr) {
		t.Fatal("expected *Error in chain")
	}
	if apiErr.Message != "Deck already exists" {
		t.Errorf("expected server message preserved, got %q", apiErr.Message)
	}
}

func TestClient_ErrorFallbackOnNonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := testClient(t, server)
	_, err := client.GetCollectionItem(context.Background(), 7)
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr := &Error{}
	if !asError(err, &apiErr) {
		t.Fatal("expected *Error in chain")
	}
	if apiErr.Message != "not found" {
		t.Errorf("expected generic fallback message, got %q", apiErr.Message)
	}
}

func TestClient_NetworkFailureIsNetworkKind(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	config := DefaultClientConfig(server.URL)
	config.MaxRetries = 0
	config.RequestsPerSecond = 0
	client, err := NewClient(config)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	err = client.AddToCollection(context.Background(), 1, 1)
	if !IsKind(err, KindNetwork) {
		t.Errorf("expected network kind, got %v", err)
	}
}

func TestClient_GetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(collectionEnvelope{Collection: []CollectionItem{}})
	}))
	defer server.Close()

	client := testClient(t, server)
	items, err := client.GetCollection(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items == nil {
		t.Fatal("expected non-nil empty collection")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestClient_MutationsAreNeverRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(t, server)
	err := client.AddToCollection(context.Background(), 1, 2)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected exactly 1 request for a failed mutation, got %d", got)
	}
}

func TestClient_SessionCookieRoundTrip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "abc123", Path: "/"})
		_ = json.NewEncoder(w).Encode(authResponse{
			Message: "login successful",
			User:    &User{ID: 1, Username: "yugi", Email: "yugi@example.com"},
		})
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("token")
		if err != nil || cookie.Value != "abc123" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
			return
		}
		_ = json.NewEncoder(w).Encode(User{ID: 1, Username: "yugi", Email: "yugi@example.com"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := testClient(t, server)
	ctx := context.Background()

	user, err := client.Login(ctx, "yugi", "secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.Username != "yugi" {
		t.Errorf("expected username yugi, got %s", user.Username)
	}

	me, err := client.Me(ctx)
	if err != nil {
		t.Fatalf("expected session cookie to carry over: %v", err)
	}
	if me.ID != 1 {
		t.Errorf("expected user ID 1, got %d", me.ID)
	}

	if err := client.ClearSession(); err != nil {
		t.Fatalf("clear session failed: %v", err)
	}
	if _, err := client.Me(ctx); !IsKind(err, KindUnauthorized) {
		t.Errorf("expected unauthorized after clearing session, got %v", err)
	}
}

// asError wraps errors.As for the local *Error type so tests read cleanly.
func asError(err error, target **Error) bool {
	return errors.As(err, target)
}
