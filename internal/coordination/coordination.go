// Package coordination defines the contract trackd expects from the
// hierarchical coordination service backing the tracking map. The interface
// is deliberately small: a directory of nodes, per-node modification stamps,
// and guarded deletes. ZooKeeper is the production implementation; an
// in-memory store backs tests and local experimentation.
package coordination

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the requested node is missing.
var (
	ErrNotFound   = errors.New("coordination: node not found")
	ErrNodeExists = errors.New("coordination: node already exists")
	ErrBadVersion = errors.New("coordination: version guard mismatch")
)

// AnyVersion disables the version guard on Delete.
const AnyVersion int32 = -1

// NodeStat carries the per-node metadata trackd relies on. Mzxid is the
// modification stamp: strictly increasing, assigned by the store at each
// write, totally ordered across the whole namespace, never reused.
type NodeStat struct {
	Mzxid      int64
	Version    int32
	ModifiedAt time.Time
	DataLength int32
}

// Store is the coordination-service contract. Every call may block on a
// store round trip; cancellation and timeouts are inherited from ctx where
// the underlying client supports them. Errors other than the sentinels above
// mean the store is unavailable and propagate verbatim.
type Store interface {
	// Children lists the child names (not paths) under dir. A missing dir
	// yields ErrNotFound.
	Children(ctx context.Context, dir string) ([]string, error)

	// Stat reads the node's stat. Returns ErrNotFound when the node is gone,
	// which callers treat as a lost race rather than a failure.
	Stat(ctx context.Context, path string) (NodeStat, error)

	// Get returns the node payload together with its stat.
	Get(ctx context.Context, path string) ([]byte, NodeStat, error)

	// Create makes a persistent node, creating missing parents. Returns
	// ErrNodeExists when the node is already present.
	Create(ctx context.Context, path string, data []byte) error

	// Put creates the node or overwrites its payload when it exists.
	Put(ctx context.Context, path string, data []byte) error

	// Delete removes the node. version guards against concurrent rewrites;
	// AnyVersion deletes unconditionally. Deleting an absent node returns
	// ErrNotFound.
	Delete(ctx context.Context, path string, version int32) error

	// Close releases client resources.
	Close() error
}
