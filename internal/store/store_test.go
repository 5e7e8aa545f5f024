package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"seo-strategist-pipeline/internal/config"
	"seo-strategist-pipeline/internal/models"
	"seo-strategist-pipeline/internal/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(config.LogConfig{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func newTestStore(t *testing.T, limit int) *Store {
	t.Helper()
	store, err := New(context.Background(), NewMemoryBackend(), limit, testLogger(t))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	return store
}

func TestHistoryPrependAndCap(t *testing.T) {
	store := newTestStore(t, 3)
	ctx := context.Background()

	for index := 0; index < 5; index++ {
		entry := models.NewHistoryEntry("Acme", fmt.Sprintf("kw-%d", index), "brief", nil)
		if err := store.AddHistoryEntry(ctx, entry); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	history := store.History()
	if len(history) != 3 {
		t.Fatalf("expected cap of 3, got %d", len(history))
	}
	if history[0].Keyword != "kw-4" {
		t.Errorf("newest entry should be first, got %s", history[0].Keyword)
	}
	if history[2].Keyword != "kw-2" {
		t.Errorf("oldest entries should fall off the tail, got %s", history[2].Keyword)
	}
}

func TestUpdateHistoryEntryByID(t *testing.T) {
	store := newTestStore(t, 20)
	ctx := context.Background()

	first := models.NewHistoryEntry("Acme", "widgets", "brief one", nil)
	second := models.NewHistoryEntry("Acme", "widgets", "brief two", nil)
	store.AddHistoryEntry(ctx, first)
	store.AddHistoryEntry(ctx, second)

	// Two entries share a keyword; the id must address the right one.
	err := store.UpdateHistoryEntry(ctx, first.ID, "", func(entry *models.HistoryEntry) {
		entry.Research = "dossier"
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	updated, ok := store.HistoryEntry(first.ID)
	if !ok || updated.Research != "dossier" {
		t.Error("entry addressed by id was not updated")
	}
	other, _ := store.HistoryEntry(second.ID)
	if other.Research != "" {
		t.Error("entry with the same keyword must not be touched")
	}
}

func TestUpdateHistoryEntryKeywordFallback(t *testing.T) {
	store := newTestStore(t, 20)
	ctx := context.Background()

	entry := models.NewHistoryEntry("Acme", "widgets", "brief", nil)
	store.AddHistoryEntry(ctx, entry)

	err := store.UpdateHistoryEntry(ctx, "", "widgets", func(e *models.HistoryEntry) {
		e.Article = "<p>done</p>"
	})
	if err != nil {
		t.Fatalf("fallback update: %v", err)
	}

	updated, _ := store.HistoryEntry(entry.ID)
	if updated.Article != "<p>done</p>" {
		t.Error("keyword fallback did not reach the entry")
	}
}

func TestUpdateHistoryEntryMissing(t *testing.T) {
	store := newTestStore(t, 20)
	err := store.UpdateHistoryEntry(context.Background(), "nope", "", func(*models.HistoryEntry) {})
	if err == nil {
		t.Fatal("expected an error for a missing entry")
	}
	if models.KindOf(err) != models.ErrorKindPersistence {
		t.Errorf("expected persistence error, got %v", err)
	}
}

func TestDeleteHistoryEntry(t *testing.T) {
	store := newTestStore(t, 20)
	ctx := context.Background()
	entry := models.NewHistoryEntry("Acme", "widgets", "brief", nil)
	store.AddHistoryEntry(ctx, entry)

	if err := store.DeleteHistoryEntry(ctx, entry.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(store.History()) != 0 {
		t.Error("entry should be gone")
	}
	if err := store.DeleteHistoryEntry(ctx, entry.ID); err == nil {
		t.Error("deleting a missing entry should error")
	}
}

func TestClientUpsertAndDelete(t *testing.T) {
	store := newTestStore(t, 20)
	ctx := context.Background()

	client := models.NewClientProfile("Acme", "makes widgets", "friendly tone")
	if err := store.SaveClient(ctx, client); err != nil {
		t.Fatalf("save: %v", err)
	}

	client.Brief = "makes better widgets"
	if err := store.SaveClient(ctx, client); err != nil {
		t.Fatalf("update: %v", err)
	}

	clients := store.Clients()
	if len(clients) != 1 {
		t.Fatalf("upsert should not duplicate, got %d clients", len(clients))
	}
	if clients[0].Brief != "makes better widgets" {
		t.Error("client update lost")
	}

	if err := store.DeleteClient(ctx, client.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(store.Clients()) != 0 {
		t.Error("client should be gone")
	}
}

func TestCorruptCollectionTreatedAsEmpty(t *testing.T) {
	backend := NewMemoryBackend()
	backend.Write(context.Background(), "history", []byte("{not json"))

	store, err := New(context.Background(), backend, 20, testLogger(t))
	if err != nil {
		t.Fatalf("corrupt data must not fail store construction: %v", err)
	}
	if len(store.History()) != 0 {
		t.Error("corrupt history should load as empty")
	}

	// The store must still accept writes afterwards.
	if err := store.AddHistoryEntry(context.Background(), models.NewHistoryEntry("Acme", "kw", "brief", nil)); err != nil {
		t.Fatalf("write after corrupt load: %v", err)
	}
}

func TestSubscribeSignalsOnMutation(t *testing.T) {
	store := newTestStore(t, 20)
	changes := store.Subscribe()

	store.AddHistoryEntry(context.Background(), models.NewHistoryEntry("Acme", "kw", "brief", nil))

	select {
	case <-changes:
	default:
		t.Error("expected a change signal after a mutation")
	}
}

func TestFileBackendRoundTripAndAtomicity(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	ctx := context.Background()

	if _, err := backend.Read(ctx, "history"); err != ErrNotFound {
		t.Errorf("missing key should be ErrNotFound, got %v", err)
	}

	payload, _ := json.Marshal([]models.HistoryEntry{models.NewHistoryEntry("Acme", "kw", "brief", nil)})
	if err := backend.Write(ctx, "history", payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := backend.Read(ctx, "history")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != string(payload) {
		t.Error("round trip mismatch")
	}

	// No temp files may linger after a successful write.
	entries, _ := os.ReadDir(dir)
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".tmp" {
			t.Errorf("temp file left behind: %s", entry.Name())
		}
	}
}
