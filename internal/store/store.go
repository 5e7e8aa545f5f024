// Package store persists the durable workspace collections: the brief
// history and the client roster. Every mutation writes through the
// injected backend immediately; reads degrade to empty collections so a
// damaged data file never blocks the workflow.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"seo-strategist-pipeline/internal/models"
	"seo-strategist-pipeline/internal/pkg/logger"
)

const (
	keyHistory = "history"
	keyClients = "clients"
)

// ErrNotFound is returned by backends when a key has never been written.
var ErrNotFound = errors.New("store: key not found")

// Backend is the raw byte storage under the store. Implementations:
// file (default), redis, memory (tests).
type Backend interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Close() error
}

type Store struct {
	backend      Backend
	logger       *logger.Logger
	historyLimit int

	mu          sync.RWMutex
	history     []models.HistoryEntry
	clients     []models.ClientProfile
	subscribers []chan struct{}
}

func New(ctx context.Context, backend Backend, historyLimit int, log *logger.Logger) (*Store, error) {
	store := &Store{
		backend:      backend,
		logger:       log,
		historyLimit: historyLimit,
	}

	store.history = loadCollection[models.HistoryEntry](ctx, store, keyHistory)
	store.clients = loadCollection[models.ClientProfile](ctx, store, keyClients)

	log.Info("Store initialized",
		"history_entries", len(store.history),
		"clients", len(store.clients),
		"history_limit", historyLimit)

	return store, nil
}

// loadCollection reads one collection from the backend. A missing key is
// a first run; corrupt data is logged and treated as empty.
func loadCollection[T any](ctx context.Context, store *Store, key string) []T {
	data, err := store.backend.Read(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			store.logger.WithError(err).Warn("Failed to read stored collection", "key", key)
		}
		return nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		store.logger.WithError(err).Warn("Stored collection is corrupt, starting empty", "key", key)
		return nil
	}
	return items
}

func (store *Store) persist(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return models.NewPersistenceError("STORE_MARSHAL_FAILED", "Failed to encode collection").WithCause(err)
	}
	if err := store.backend.Write(ctx, key, data); err != nil {
		return models.NewPersistenceError("STORE_WRITE_FAILED", "Failed to write collection").
			WithCause(err).
			WithMetadata("key", key)
	}
	return nil
}

// History returns a copy of the saved runs, newest first.
func (store *Store) History() []models.HistoryEntry {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return append([]models.HistoryEntry(nil), store.history...)
}

// HistoryEntry returns the entry with the given id.
func (store *Store) HistoryEntry(id string) (models.HistoryEntry, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	for _, entry := range store.history {
		if entry.ID == id {
			return entry, true
		}
	}
	return models.HistoryEntry{}, false
}

// AddHistoryEntry prepends a new run and truncates the tail beyond the
// history limit.
func (store *Store) AddHistoryEntry(ctx context.Context, entry models.HistoryEntry) error {
	store.mu.Lock()
	store.history = append([]models.HistoryEntry{entry}, store.history...)
	if len(store.history) > store.historyLimit {
		store.history = store.history[:store.historyLimit]
	}
	snapshot := append([]models.HistoryEntry(nil), store.history...)
	store.mu.Unlock()

	if err := store.persist(ctx, keyHistory, snapshot); err != nil {
		return err
	}
	store.notify()
	return nil
}

// UpdateHistoryEntry applies mutate to the entry with the given id. When
// id is empty it falls back to the newest entry matching keyword, which
// covers entries saved before ids existed.
func (store *Store) UpdateHistoryEntry(ctx context.Context, id, keyword string, mutate func(*models.HistoryEntry)) error {
	store.mu.Lock()
	index := store.findHistoryIndex(id, keyword)
	if index < 0 {
		store.mu.Unlock()
		return models.NewPersistenceError("HISTORY_ENTRY_NOT_FOUND", "No matching history entry").
			WithMetadata("id", id).
			WithMetadata("keyword", keyword)
	}
	mutate(&store.history[index])
	snapshot := append([]models.HistoryEntry(nil), store.history...)
	store.mu.Unlock()

	if err := store.persist(ctx, keyHistory, snapshot); err != nil {
		return err
	}
	store.notify()
	return nil
}

func (store *Store) findHistoryIndex(id, keyword string) int {
	if id != "" {
		for index, entry := range store.history {
			if entry.ID == id {
				return index
			}
		}
		return -1
	}
	for index, entry := range store.history {
		if entry.Keyword == keyword {
			return index
		}
	}
	return -1
}

// DeleteHistoryEntry removes one run by id.
func (store *Store) DeleteHistoryEntry(ctx context.Context, id string) error {
	store.mu.Lock()
	kept := store.history[:0]
	found := false
	for _, entry := range store.history {
		if entry.ID == id {
			found = true
			continue
		}
		kept = append(kept, entry)
	}
	store.history = kept
	snapshot := append([]models.HistoryEntry(nil), store.history...)
	store.mu.Unlock()

	if !found {
		return models.NewPersistenceError("HISTORY_ENTRY_NOT_FOUND", "No matching history entry").
			WithMetadata("id", id)
	}
	if err := store.persist(ctx, keyHistory, snapshot); err != nil {
		return err
	}
	store.notify()
	return nil
}

// Clients returns a copy of the client roster.
func (store *Store) Clients() []models.ClientProfile {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return append([]models.ClientProfile(nil), store.clients...)
}

// ClientByID returns one client profile.
func (store *Store) ClientByID(id string) (models.ClientProfile, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	for _, client := range store.clients {
		if client.ID == id {
			return client, true
		}
	}
	return models.ClientProfile{}, false
}

// SaveClient inserts or replaces a client profile by id.
func (store *Store) SaveClient(ctx context.Context, client models.ClientProfile) error {
	store.mu.Lock()
	replaced := false
	for index := range store.clients {
		if store.clients[index].ID == client.ID {
			store.clients[index] = client
			replaced = true
			break
		}
	}
	if !replaced {
		store.clients = append(store.clients, client)
	}
	snapshot := append([]models.ClientProfile(nil), store.clients...)
	store.mu.Unlock()

	if err := store.persist(ctx, keyClients, snapshot); err != nil {
		return err
	}
	store.notify()
	return nil
}

// DeleteClient removes a client profile by id.
func (store *Store) DeleteClient(ctx context.Context, id string) error {
	store.mu.Lock()
	kept := store.clients[:0]
	found := false
	for _, client := range store.clients {
		if client.ID == id {
			found = true
			continue
		}
		kept = append(kept, client)
	}
	store.clients = kept
	snapshot := append([]models.ClientProfile(nil), store.clients...)
	store.mu.Unlock()

	if !found {
		return models.NewPersistenceError("CLIENT_NOT_FOUND", "No matching client").
			WithMetadata("id", id)
	}
	if err := store.persist(ctx, keyClients, snapshot); err != nil {
		return err
	}
	store.notify()
	return nil
}

// Subscribe returns a channel that receives a signal after every
// successful mutation. The channel is never closed; slow consumers miss
// signals rather than block writers.
func (store *Store) Subscribe() <-chan struct{} {
	store.mu.Lock()
	defer store.mu.Unlock()
	channel := make(chan struct{}, 1)
	store.subscribers = append(store.subscribers, channel)
	return channel
}

func (store *Store) notify() {
	store.mu.RLock()
	defer store.mu.RUnlock()
	for _, channel := range store.subscribers {
		select {
		case channel <- struct{}{}:
		default:
		}
	}
}

func (store *Store) Close() error {
	return store.backend.Close()
}
