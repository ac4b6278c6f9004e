package trackd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pkt.systems/pslog"

	"pkt.systems/trackd/internal/coordination"
	"pkt.systems/trackd/internal/rank"
)

// OverflowObserver is notified once per entry evicted by a shrink pass,
// with the un-prefixed tracking id, in sweep order. A returned error aborts
// the pass and fails the Put/PutIfAbsent the pass was running for.
type OverflowObserver func(ctx context.Context, id string) error

// BoundedOption customises a BoundedMap at construction.
type BoundedOption func(*BoundedMap)

// WithOverflowObserver installs the overflow callback. Default: no
// notification.
func WithOverflowObserver(fn OverflowObserver) BoundedOption {
	return func(b *BoundedMap) { b.observer = fn }
}

// WithLogger routes eviction events to logger. Default: no logging.
func WithLogger(logger pslog.Logger) BoundedOption {
	return func(b *BoundedMap) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMetrics attaches eviction counters. Default: no metrics.
func WithMetrics(metrics *Metrics) BoundedOption {
	return func(b *BoundedMap) { b.metrics = metrics }
}

// BoundedMap is a tracking table with a size cap. When the tracked set
// reaches maxSize, the next insert first evicts the oldest maxSize/10
// entries by modification stamp. Eviction reflects the pre-insert state, so
// the set may transiently exceed the cap by the one entry being inserted.
//
// Multiple processes may point a BoundedMap at the same directory. There is
// no cross-process lock around the shrink pass: concurrent passes each work
// from their own snapshot and may together evict more than one quota. The
// pass tolerates entries vanishing underneath it at every step.
type BoundedMap struct {
	*Map
	store        coordination.Store
	maxSize      int
	cleanupCount int
	observer     OverflowObserver
	logger       pslog.Logger
	metrics      *Metrics
}

// NewBoundedMap wraps a tracking table at dir with a maxSize cap. The
// cleanup quota is maxSize/10; a maxSize below 10 yields a zero quota and
// disables eviction entirely rather than failing.
func NewBoundedMap(store coordination.Store, dir string, maxSize int, opts ...BoundedOption) (*BoundedMap, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("trackd: max size must be positive, got %d", maxSize)
	}
	b := &BoundedMap{
		Map:          NewMap(store, dir),
		store:        store,
		maxSize:      maxSize,
		cleanupCount: maxSize / 10,
		logger:       pslog.NoopLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// MaxSize reports the configured cap.
func (b *BoundedMap) MaxSize() int { return b.maxSize }

// CleanupCount reports the minimum number of entries a shrink pass evicts.
func (b *BoundedMap) CleanupCount() int { return b.cleanupCount }

// Put inserts payload under id, evicting the oldest entries first when the
// table is at capacity.
func (b *BoundedMap) Put(ctx context.Context, id string, payload []byte) error {
	if err := b.shrinkIfNeeded(ctx); err != nil {
		return err
	}
	if err := b.Map.Put(ctx, id, payload); err != nil {
		return err
	}
	if b.metrics != nil {
		b.metrics.Puts.Inc()
	}
	return nil
}

// PutIfAbsent inserts payload under id unless already tracked. The shrink
// pass runs regardless, so repeated calls against a full table keep
// trimming it even when no insert happens.
func (b *BoundedMap) PutIfAbsent(ctx context.Context, id string, payload []byte) (bool, error) {
	if err := b.shrinkIfNeeded(ctx); err != nil {
		return false, err
	}
	inserted, err := b.Map.PutIfAbsent(ctx, id, payload)
	if err != nil {
		return false, err
	}
	if inserted && b.metrics != nil {
		b.metrics.Puts.Inc()
	}
	return inserted, nil
}

// shrinkIfNeeded evicts the oldest cleanupCount entries when the table has
// reached maxSize. The pass is best effort over a non-transactional store:
// list, stat and delete are separate round trips, and entries may appear or
// vanish between them. Entries inserted after the listing carry no observed
// stamp and are never deleted by this pass.
func (b *BoundedMap) shrinkIfNeeded(ctx context.Context) error {
	size, err := b.Size(ctx)
	if err != nil {
		return err
	}
	if size < b.maxSize {
		return nil
	}
	if b.cleanupCount == 0 {
		// maxSize < 10: no quota, nothing to evict.
		b.logger.Debug("trackmap.shrink.zero_quota", "size", size, "max_size", b.maxSize)
		return nil
	}
	if b.metrics != nil {
		b.metrics.EvictionPasses.Inc()
	}

	children, err := b.store.Children(ctx, b.dir)
	if errors.Is(err, coordination.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	selector := rank.NewSmallest(b.cleanupCount)
	stamps := make(map[string]int64, len(children))
	for _, child := range children {
		stat, err := b.store.Stat(ctx, b.dir+"/"+child)
		if errors.Is(err, coordination.ErrNotFound) {
			// Deleted by another actor between list and stat.
			continue
		}
		if err != nil {
			return err
		}
		selector.Offer(stat.Mzxid)
		stamps[child] = stat.Mzxid
	}

	cutoff, ok := selector.Boundary()
	if !ok {
		return nil
	}
	b.logger.Debug("trackmap.shrink.pass",
		"size", size, "max_size", b.maxSize,
		"quota", b.cleanupCount, "cutoff", cutoff)

	deleted := 0
	for _, child := range children {
		stamp, seen := stamps[child]
		if !seen || stamp > cutoff {
			continue
		}
		// No version guard: a node rewritten since the stat is still
		// removed. Accepted last-write-wins behaviour.
		err := b.store.Delete(ctx, b.dir+"/"+child, coordination.AnyVersion)
		if errors.Is(err, coordination.ErrNotFound) {
			continue
		}
		if err != nil {
			if b.metrics != nil {
				b.metrics.EvictionErrors.Inc()
			}
			return fmt.Errorf("evict %s: %w", child, err)
		}
		deleted++
		if b.metrics != nil {
			b.metrics.EvictedEntries.Inc()
		}
		if b.observer != nil {
			if err := b.observer(ctx, strings.TrimPrefix(child, idPrefix)); err != nil {
				if b.metrics != nil {
					b.metrics.EvictionErrors.Inc()
				}
				return fmt.Errorf("overflow observer: %w", err)
			}
		}
	}
	b.logger.Debug("trackmap.shrink.done", "deleted", deleted, "cutoff", cutoff)
	return nil
}
