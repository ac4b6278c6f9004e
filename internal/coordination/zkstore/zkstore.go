// Package zkstore implements coordination.Store on ZooKeeper via
// github.com/go-zookeeper/zk.
package zkstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
	"pkt.systems/pslog"

	"pkt.systems/trackd/internal/coordination"
)

// DefaultSessionTimeout is used when Config.SessionTimeout is zero.
const DefaultSessionTimeout = 10 * time.Second

// Config configures the ZooKeeper-backed store.
type Config struct {
	// Servers is the ensemble host:port list.
	Servers []string
	// SessionTimeout bounds the ZooKeeper session; the client negotiates the
	// effective value with the server.
	SessionTimeout time.Duration
	// Logger receives connection-state events from the zk client. Nil means
	// no connection logging.
	Logger pslog.Logger
}

// Store adapts a ZooKeeper connection to the coordination.Store contract.
type Store struct {
	conn *zk.Conn
}

// New connects to the ensemble and returns the adapter. The connection is
// established asynchronously; operations block until the session is live or
// the client gives up.
func New(cfg Config) (*Store, error) {
	if len(cfg.Servers) == 0 {
		return nil, fmt.Errorf("zkstore: no servers configured")
	}
	timeout := cfg.SessionTimeout
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	var (
		conn *zk.Conn
		err  error
	)
	if cfg.Logger != nil {
		conn, _, err = zk.Connect(cfg.Servers, timeout,
			zk.WithLogInfo(false), zk.WithLogger(zkLogger{logger: cfg.Logger}))
	} else {
		conn, _, err = zk.Connect(cfg.Servers, timeout, zk.WithLogInfo(false))
	}
	if err != nil {
		return nil, fmt.Errorf("zkstore: connect: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close tears down the ZooKeeper session.
func (s *Store) Close() error {
	s.conn.Close()
	return nil
}

// Children lists the child names under dir.
func (s *Store) Children(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	children, _, err := s.conn.Children(dir)
	if err != nil {
		return nil, mapErr(err)
	}
	return children, nil
}

// Stat reads the node's stat via an existence check.
func (s *Store) Stat(ctx context.Context, path string) (coordination.NodeStat, error) {
	if err := ctx.Err(); err != nil {
		return coordination.NodeStat{}, err
	}
	ok, stat, err := s.conn.Exists(path)
	if err != nil {
		return coordination.NodeStat{}, mapErr(err)
	}
	if !ok {
		return coordination.NodeStat{}, coordination.ErrNotFound
	}
	return fromZkStat(stat), nil
}

// Get returns the node payload and stat.
func (s *Store) Get(ctx context.Context, path string) ([]byte, coordination.NodeStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, coordination.NodeStat{}, err
	}
	data, stat, err := s.conn.Get(path)
	if err != nil {
		return nil, coordination.NodeStat{}, mapErr(err)
	}
	return data, fromZkStat(stat), nil
}

// Create makes a persistent node, creating missing parents first.
func (s *Store) Create(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.create(path, data)
	if errors.Is(err, coordination.ErrNotFound) {
		if err := s.ensureParents(ctx, path); err != nil {
			return err
		}
		err = s.create(path, data)
	}
	return err
}

func (s *Store) create(path string, data []byte) error {
	_, err := s.conn.Create(path, data, 0, zk.WorldACL(zk.PermAll))
	return mapErr(err)
}

// Put creates the node or overwrites its payload when it already exists.
func (s *Store) Put(ctx context.Context, path string, data []byte) error {
	err := s.Create(ctx, path, data)
	if !errors.Is(err, coordination.ErrNodeExists) {
		return err
	}
	if _, err := s.conn.Set(path, data, -1); err != nil {
		if errors.Is(mapErr(err), coordination.ErrNotFound) {
			// Deleted between Create and Set; recreate.
			return s.Create(ctx, path, data)
		}
		return mapErr(err)
	}
	return nil
}

// Delete removes the node, passing the version guard straight through.
func (s *Store) Delete(ctx context.Context, path string, version int32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return mapErr(s.conn.Delete(path, version))
}

func (s *Store) ensureParents(ctx context.Context, path string) error {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 {
		return nil
	}
	node := ""
	for _, part := range parts[:len(parts)-1] {
		if err := ctx.Err(); err != nil {
			return err
		}
		node += "/" + part
		err := s.create(node, nil)
		if err != nil && !errors.Is(err, coordination.ErrNodeExists) {
			return err
		}
	}
	return nil
}

func fromZkStat(stat *zk.Stat) coordination.NodeStat {
	return coordination.NodeStat{
		Mzxid:      stat.Mzxid,
		Version:    stat.Version,
		ModifiedAt: time.UnixMilli(stat.Mtime),
		DataLength: stat.DataLength,
	}
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, zk.ErrNoNode):
		return coordination.ErrNotFound
	case errors.Is(err, zk.ErrNodeExists):
		return coordination.ErrNodeExists
	case errors.Is(err, zk.ErrBadVersion):
		return coordination.ErrBadVersion
	default:
		return err
	}
}

// zkLogger routes the zk client's printf-style messages onto pslog.
type zkLogger struct {
	logger pslog.Logger
}

func (l zkLogger) Printf(format string, args ...interface{}) {
	l.logger.Debug("zk.client", "message", fmt.Sprintf(format, args...))
}
