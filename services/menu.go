package services

import (
	"context"
	"sync"

	"cafe-pos/models"
)

type MenuSource interface {
	FetchMenu(ctx context.Context) ([]models.MenuItem, error)
}

type CatalogState int

const (
	CatalogNotLoaded CatalogState = iota
	CatalogReady
	CatalogEmpty
	CatalogFailed
)

func (s CatalogState) String() string {
	switch s {
	case CatalogReady:
		return "ready"
	case CatalogEmpty:
		return "empty"
	case CatalogFailed:
		return "failed"
	default:
		return "not_loaded"
	}
}

// MenuCatalog caches the last successfully fetched menu. A failed fetch
// keeps the previous items but moves the catalog to CatalogFailed, so
// "no items" and "could not load" stay distinguishable.
type MenuCatalog struct {
	source MenuSource

	mu      sync.RWMutex
	items   []models.MenuItem
	state   CatalogState
	lastErr error
}

func NewMenuCatalog(source MenuSource) *MenuCatalog {
	return &MenuCatalog{source: source}
}

// Fetch makes one call to the menu API and replaces the cached list on success.
func (c *MenuCatalog) Fetch(ctx context.Context) ([]models.MenuItem, error) {
	items, err := c.source.FetchMenu(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = CatalogFailed
		c.lastErr = err
		return nil, err
	}
	c.items = append([]models.MenuItem(nil), items...)
	c.lastErr = nil
	if len(c.items) == 0 {
		c.state = CatalogEmpty
	} else {
		c.state = CatalogReady
	}
	return c.copyLocked(), nil
}

func (c *MenuCatalog) Items() []models.MenuItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copyLocked()
}

func (c *MenuCatalog) ByCategory(category string) []models.MenuItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []models.MenuItem
	for _, it := range c.items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out
}

func (c *MenuCatalog) Lookup(id string) (models.MenuItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, it := range c.items {
		if it.ID == id {
			return it, true
		}
	}
	return models.MenuItem{}, false
}

func (c *MenuCatalog) State() CatalogState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *MenuCatalog) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

func (c *MenuCatalog) copyLocked() []models.MenuItem {
	out := make([]models.MenuItem, len(c.items))
	copy(out, c.items)
	return out
}
