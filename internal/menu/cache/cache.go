package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"fogon/internal/dto"
)

// Snapshot is the persisted materialization of the derived menu. It is
// disposable: losing it only costs a recomputation, never information.
type Snapshot struct {
	Products    []dto.ProductView  `json:"products"`
	Categories  []dto.CategoryView `json:"categories"`
	Combos      []dto.ComboView    `json:"combos"`
	LastUpdated time.Time          `json:"lastUpdated"`
	Version     string             `json:"version"`
}

// SnapshotStore persists the single named snapshot blob. Load returns
// (nil, nil) when no snapshot exists; Delete of an absent snapshot is not an
// error.
type SnapshotStore interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snapshot *Snapshot) error
	Delete(ctx context.Context) error
}

// Cache is a read-through, TTL-bounded view over the snapshot store. It is an
// explicitly constructed instance, injected where needed; it holds no state
// of its own beyond configuration, so concurrent use is safe and the last
// writer wins on the underlying blob.
type Cache struct {
	store   SnapshotStore
	ttl     time.Duration
	version string
	logger  *zap.Logger
	now     func() time.Time
}

func New(store SnapshotStore, ttl time.Duration, version string, logger *zap.Logger) *Cache {
	return &Cache{
		store:   store,
		ttl:     ttl,
		version: version,
		logger:  logger,
		now:     time.Now,
	}
}

// Load returns the persisted snapshot, or nil when absent. A snapshot whose
// version does not match the running schema version is treated as absent, not
// as an error.
func (c *Cache) Load(ctx context.Context) (*Snapshot, error) {
	snapshot, err := c.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, nil
	}
	if snapshot.Version != c.version {
		c.logger.Info("discarding snapshot with stale schema version",
			zap.String("snapshotVersion", snapshot.Version),
			zap.String("currentVersion", c.version),
		)
		return nil, nil
	}
	return snapshot, nil
}

// IsValid reports whether the snapshot is still within its TTL window.
func (c *Cache) IsValid(snapshot *Snapshot) bool {
	if snapshot == nil {
		return false
	}
	return c.now().Sub(snapshot.LastUpdated) < c.ttl
}

// Save replaces the persisted snapshot wholesale. Partial updates of the blob
// are disallowed; a half-updated derived view must never be observable.
func (c *Cache) Save(ctx context.Context, products []dto.ProductView, categories []dto.CategoryView, combos []dto.ComboView) (*Snapshot, error) {
	snapshot := &Snapshot{
		Products:    products,
		Categories:  categories,
		Combos:      combos,
		LastUpdated: c.now().UTC(),
		Version:     c.version,
	}
	if err := c.store.Save(ctx, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Invalidate drops the persisted snapshot. Idempotent.
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.store.Delete(ctx)
}
