package services

import (
	"context"
	"sync"

	"cafe-pos/models"
)

type TableSource interface {
	FetchTables(ctx context.Context) ([]models.Table, error)
}

// TableDirectory keeps the last snapshot of free tables for order submission.
type TableDirectory struct {
	source TableSource

	mu        sync.RWMutex
	available []models.Table
	fetched   bool
}

func NewTableDirectory(source TableSource) *TableDirectory {
	return &TableDirectory{source: source}
}

// FetchAvailable makes one call and keeps only tables flagged available,
// whether or not the server already filtered them.
func (d *TableDirectory) FetchAvailable(ctx context.Context) ([]models.Table, error) {
	tables, err := d.source.FetchTables(ctx)
	if err != nil {
		return nil, err
	}
	free := FilterAvailable(tables)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.available = free
	d.fetched = true

	out := make([]models.Table, len(free))
	copy(out, free)
	return out, nil
}

func (d *TableDirectory) Available() []models.Table {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]models.Table, len(d.available))
	copy(out, d.available)
	return out
}

func (d *TableDirectory) Lookup(id string) (models.Table, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, t := range d.available {
		if t.ID == id {
			return t, true
		}
	}
	return models.Table{}, false
}

// HasSnapshot reports whether at least one fetch has succeeded.
func (d *TableDirectory) HasSnapshot() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.fetched
}

func FilterAvailable(tables []models.Table) []models.Table {
	out := make([]models.Table, 0, len(tables))
	for _, t := range tables {
		if t.Available {
			out = append(out, t)
		}
	}
	return out
}
