// Package memstore implements coordination.Store in memory; intended for
// tests and local experimentation (store URL "mem://").
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"pkt.systems/trackd/internal/coordination"
)

// Store keeps the whole namespace in a map guarded by a mutex. A single
// counter stands in for the zxid so modification stamps stay strictly
// increasing and totally ordered across the namespace.
type Store struct {
	mu    sync.Mutex
	nodes map[string]*node
	zxid  int64
}

type node struct {
	data    []byte
	mzxid   int64
	version int32
	mtime   time.Time
}

// New returns a ready to use in-memory store containing only the root node.
func New() *Store {
	return &Store{nodes: map[string]*node{"/": {}}}
}

// Close satisfies coordination.Store; the in-memory store holds no resources.
func (s *Store) Close() error { return nil }

func (s *Store) nextZxid() int64 {
	s.zxid++
	return s.zxid
}

// Children lists the direct child names under dir.
func (s *Store) Children(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[clean(dir)]; !ok {
		return nil, coordination.ErrNotFound
	}
	prefix := clean(dir)
	if prefix != "/" {
		prefix += "/"
	}
	var names []string
	for path := range s.nodes {
		if path == "/" || !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := path[len(prefix):]
		if rest == "" || strings.Contains(rest, "/") {
			continue
		}
		names = append(names, rest)
	}
	sort.Strings(names)
	return names, nil
}

// Stat reads the node's stat or reports ErrNotFound.
func (s *Store) Stat(ctx context.Context, path string) (coordination.NodeStat, error) {
	if err := ctx.Err(); err != nil {
		return coordination.NodeStat{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[clean(path)]
	if !ok {
		return coordination.NodeStat{}, coordination.ErrNotFound
	}
	return n.stat(), nil
}

// Get returns the payload and stat for path.
func (s *Store) Get(ctx context.Context, path string) ([]byte, coordination.NodeStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, coordination.NodeStat{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[clean(path)]
	if !ok {
		return nil, coordination.NodeStat{}, coordination.ErrNotFound
	}
	return append([]byte(nil), n.data...), n.stat(), nil
}

// Create makes a new node, creating missing parents along the way.
func (s *Store) Create(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	path = clean(path)
	if _, ok := s.nodes[path]; ok {
		return coordination.ErrNodeExists
	}
	s.ensureParents(path)
	s.nodes[path] = &node{
		data:  append([]byte(nil), data...),
		mzxid: s.nextZxid(),
		mtime: time.Now(),
	}
	return nil
}

// Put creates the node or overwrites its payload, bumping the stamp.
func (s *Store) Put(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	path = clean(path)
	if n, ok := s.nodes[path]; ok {
		n.data = append([]byte(nil), data...)
		n.mzxid = s.nextZxid()
		n.version++
		n.mtime = time.Now()
		return nil
	}
	s.ensureParents(path)
	s.nodes[path] = &node{
		data:  append([]byte(nil), data...),
		mzxid: s.nextZxid(),
		mtime: time.Now(),
	}
	return nil
}

// Delete removes the node, honouring the version guard unless AnyVersion.
func (s *Store) Delete(ctx context.Context, path string, version int32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	path = clean(path)
	n, ok := s.nodes[path]
	if !ok {
		return coordination.ErrNotFound
	}
	if version != coordination.AnyVersion && n.version != version {
		return coordination.ErrBadVersion
	}
	delete(s.nodes, path)
	return nil
}

func (s *Store) ensureParents(path string) {
	for dir := parent(path); dir != "/"; dir = parent(dir) {
		if _, ok := s.nodes[dir]; ok {
			break
		}
		s.nodes[dir] = &node{mzxid: s.nextZxid(), mtime: time.Now()}
	}
}

func (n *node) stat() coordination.NodeStat {
	return coordination.NodeStat{
		Mzxid:      n.mzxid,
		Version:    n.version,
		ModifiedAt: n.mtime,
		DataLength: int32(len(n.data)),
	}
}

func clean(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

func parent(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx <= 0 {
		return "/"
	}
	return path[:idx]
}
