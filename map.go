package trackd

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"pkt.systems/trackd/internal/coordination"
)

// idPrefix namespaces tracking entries inside the directory so foreign
// children never collide with tracked ids. Observers and Keys always see the
// un-prefixed id.
const idPrefix = "tr-"

// ErrInvalidID rejects empty ids and ids containing a path separator.
var ErrInvalidID = errors.New("trackd: invalid tracking id")

// ErrNotFound indicates the tracking id is absent.
var ErrNotFound = errors.New("trackd: entry not found")

// Map is the base tracking table: one coordination node per tracking id
// under a fixed directory. It carries no eviction policy; see BoundedMap.
type Map struct {
	store coordination.Store
	dir   string
}

// NewMap returns a tracking table rooted at dir. The directory node is
// created lazily on first insert.
func NewMap(store coordination.Store, dir string) *Map {
	return &Map{store: store, dir: cleanDir(dir)}
}

// Dir reports the directory node backing the table.
func (m *Map) Dir() string { return m.dir }

// Put stores payload under id, overwriting any previous payload.
func (m *Map) Put(ctx context.Context, id string, payload []byte) error {
	if err := validateID(id); err != nil {
		return err
	}
	return m.store.Put(ctx, m.entryPath(id), payload)
}

// PutIfAbsent stores payload under id unless the id is already tracked.
// Reports whether an insert actually happened.
func (m *Map) PutIfAbsent(ctx context.Context, id string, payload []byte) (bool, error) {
	if err := validateID(id); err != nil {
		return false, err
	}
	err := m.store.Create(ctx, m.entryPath(id), payload)
	if errors.Is(err, coordination.ErrNodeExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Get returns the payload stored under id, or ErrNotFound.
func (m *Map) Get(ctx context.Context, id string) ([]byte, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	data, _, err := m.store.Get(ctx, m.entryPath(id))
	if errors.Is(err, coordination.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Contains reports whether id is currently tracked.
func (m *Map) Contains(ctx context.Context, id string) (bool, error) {
	if err := validateID(id); err != nil {
		return false, err
	}
	_, err := m.store.Stat(ctx, m.entryPath(id))
	if errors.Is(err, coordination.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes the entry for id. Removing an absent id is not an error.
func (m *Map) Remove(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	err := m.store.Delete(ctx, m.entryPath(id), coordination.AnyVersion)
	if errors.Is(err, coordination.ErrNotFound) {
		return nil
	}
	return err
}

// Size counts the tracked entries. A directory that does not exist yet
// counts as empty.
func (m *Map) Size(ctx context.Context) (int, error) {
	ids, err := m.Keys(ctx)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Keys lists the tracked ids, un-prefixed. Children that do not carry the
// tracking prefix are ignored.
func (m *Map) Keys(ctx context.Context) ([]string, error) {
	children, err := m.store.Children(ctx, m.dir)
	if errors.Is(err, coordination.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(children))
	for _, child := range children {
		if !strings.HasPrefix(child, idPrefix) {
			continue
		}
		ids = append(ids, strings.TrimPrefix(child, idPrefix))
	}
	sort.Strings(ids)
	return ids, nil
}

// Entry pairs a tracking id with the node metadata backing it.
type Entry struct {
	ID         string
	Stamp      int64
	ModifiedAt time.Time
	Size       int32
}

// Entries lists the tracked entries with their modification metadata,
// ordered by id. Entries removed concurrently are skipped.
func (m *Map) Entries(ctx context.Context) ([]Entry, error) {
	ids, err := m.Keys(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		stat, err := m.store.Stat(ctx, m.entryPath(id))
		if errors.Is(err, coordination.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			ID:         id,
			Stamp:      stat.Mzxid,
			ModifiedAt: stat.ModifiedAt,
			Size:       stat.DataLength,
		})
	}
	return entries, nil
}

// Clear removes every tracked entry. Entries removed concurrently by other
// actors are tolerated.
func (m *Map) Clear(ctx context.Context) error {
	ids, err := m.Keys(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := m.Remove(ctx, id); err != nil {
			return fmt.Errorf("clear %s: %w", id, err)
		}
	}
	return nil
}

func (m *Map) entryPath(id string) string {
	return m.dir + "/" + idPrefix + id
}

func validateID(id string) error {
	if id == "" || strings.ContainsRune(id, '/') {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func cleanDir(dir string) string {
	dir = strings.TrimRight(dir, "/")
	if dir == "" {
		dir = "/"
	}
	if !strings.HasPrefix(dir, "/") {
		dir = "/" + dir
	}
	return dir
}
