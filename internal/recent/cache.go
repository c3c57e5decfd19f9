// Package recent keeps the most recently opened procedures available offline.
package recent

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/raphaelgruber/procview/internal/models"
	"github.com/raphaelgruber/procview/internal/store"
)

// Capacity is the maximum number of procedures kept.
const Capacity = 5

// Cache is the in-memory recent list backed by write-through persistence.
// After Load, reads never touch storage and the in-memory list stays
// authoritative even when a write fails.
type Cache struct {
	store  store.Store
	logger *slog.Logger

	mu     sync.Mutex
	items  []models.ProcedureNode
	loaded bool
}

// New creates a cache over s. Call Load before use.
func New(s store.Store, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{store: s, logger: logger}
}

// Load reads the persisted list once. Missing or unreadable records yield an
// empty list; later calls are no-ops.
func (c *Cache) Load(ctx context.Context) []models.ProcedureNode {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loadLocked(ctx)
	return c.copyLocked()
}

func (c *Cache) loadLocked(ctx context.Context) {
	if c.loaded {
		return
	}
	c.loaded = true

	var list []models.ProcedureNode
	err := store.GetJSON(ctx, c.store, store.KeyRecent, &list)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.logger.Debug("no recent procedures stored")
	case err != nil:
		c.logger.Warn("discarding unreadable recent procedures", "error", err)
	default:
		c.items = normalize(list)
	}
}

// Add moves doc to the front of the list, evicting the oldest entries beyond
// Capacity, and persists the result. The stored list is loaded first if
// Load has not run yet. Persistence failures are logged.
func (c *Cache) Add(ctx context.Context, doc models.ProcedureNode) []models.ProcedureNode {
	c.mu.Lock()
	c.loadLocked(ctx)
	next := make([]models.ProcedureNode, 0, Capacity)
	next = append(next, doc)
	for _, it := range c.items {
		if it.ID != doc.ID {
			next = append(next, it)
		}
	}
	if len(next) > Capacity {
		next = next[:Capacity]
	}
	c.items = next
	snapshot := c.copyLocked()
	c.mu.Unlock()

	if err := c.Persist(ctx, snapshot); err != nil {
		c.logger.Warn("failed to persist recent procedures", "error", err)
	}
	return snapshot
}

// Persist writes list to storage as is.
func (c *Cache) Persist(ctx context.Context, list []models.ProcedureNode) error {
	if list == nil {
		list = []models.ProcedureNode{}
	}
	return store.SetJSON(ctx, c.store, store.KeyRecent, list)
}

// List returns the current list, most recent first.
func (c *Cache) List() []models.ProcedureNode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyLocked()
}

// Find returns the cached procedure with the given id.
func (c *Cache) Find(id string) (models.ProcedureNode, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		if it.ID == id {
			return it, true
		}
	}
	return models.ProcedureNode{}, false
}

// Filter returns the cached procedures whose name contains term, ignoring
// case. A blank term returns the whole list.
func (c *Cache) Filter(term string) []models.ProcedureNode {
	list := c.List()
	if strings.TrimSpace(term) == "" {
		return list
	}
	var out []models.ProcedureNode
	for _, it := range list {
		if models.NameContains(it, term) {
			out = append(out, it)
		}
	}
	return out
}

func (c *Cache) copyLocked() []models.ProcedureNode {
	return append([]models.ProcedureNode(nil), c.items...)
}

// normalize enforces uniqueness and capacity on a list read from storage,
// keeping the first occurrence of each id.
func normalize(list []models.ProcedureNode) []models.ProcedureNode {
	seen := make(map[string]bool, len(list))
	out := make([]models.ProcedureNode, 0, Capacity)
	for _, it := range list {
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		out = append(out, it)
		if len(out) == Capacity {
			break
		}
	}
	return out
}
