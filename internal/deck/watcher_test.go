package deck

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ramonehamilton/YGO-Companion/internal/api"
)

func TestWatcher_UploadsDroppedDeckFile(t *testing.T) {
	var mu sync.Mutex
	var uploads []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/decks/import/5" {
			t.Errorf("expected path /decks/import/5, got %s", r.URL.Path)
		}
		_, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("expected multipart upload: %v", err)
			return
		}
		mu.Lock()
		uploads = append(uploads, header.Filename)
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "imported"})
	}))
	defer server.Close()

	config := api.DefaultClientConfig(server.URL)
	config.RequestsPerSecond = 0
	client, err := api.NewClient(config)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	dir := t.TempDir()
	wc := DefaultWatcherConfig(dir, 5)
	wc.SettleDelay = 10 * time.Millisecond
	watcher := NewWatcher(client, wc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := watcher.Start(ctx); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	defer watcher.Stop()

	// A non-deck file must be ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	// The dropped deck list must be uploaded exactly once.
	if err := os.WriteFile(filepath.Join(dir, "exodia.ydk"), []byte("#main\n33396948\n"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		mu.Lock()
		n := len(uploads)
		mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for upload")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Allow any spurious duplicate events to drain.
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(uploads) != 1 {
		t.Errorf("expected exactly one upload, got %d", len(uploads))
	}
	if uploads[0] != "exodia.ydk" {
		t.Errorf("expected exodia.ydk uploaded, got %s", uploads[0])
	}
}

func TestWatcher_RejectsMissingDirectory(t *testing.T) {
	client, err := api.NewClient(api.DefaultClientConfig("http://localhost:1"))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	watcher := NewWatcher(client, DefaultWatcherConfig("/does/not/exist", 1))
	if err := watcher.Start(context.Background()); err == nil {
		t.Error("expected error for missing directory")
	}
}
