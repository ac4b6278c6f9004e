package trackd

import (
	"fmt"
	"net/url"
	"strings"

	"pkt.systems/trackd/internal/coordination"
	"pkt.systems/trackd/internal/coordination/memstore"
	"pkt.systems/trackd/internal/coordination/zkstore"
)

// Open connects the configured coordination store and wraps it in a
// BoundedMap. The returned close function tears down the store connection
// and must be called when the map is no longer needed.
func Open(cfg Config) (*BoundedMap, func() error, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	store, dir, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	opts := []BoundedOption{WithLogger(cfg.Logger)}
	if cfg.OnOverflow != nil {
		opts = append(opts, WithOverflowObserver(cfg.OnOverflow))
	}
	if cfg.Metrics != nil {
		opts = append(opts, WithMetrics(cfg.Metrics))
	}
	m, err := NewBoundedMap(store, dir, cfg.MaxSize, opts...)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return m, store.Close, nil
}

func openStore(cfg Config) (coordination.Store, string, error) {
	u, err := url.Parse(cfg.Store)
	if err != nil {
		return nil, "", fmt.Errorf("parse store URL: %w", err)
	}
	switch u.Scheme {
	case "mem", "memory", "":
		return memstore.New(), cfg.Dir, nil
	case "zk", "zookeeper":
		servers := strings.Split(u.Host, ",")
		if u.Host == "" {
			return nil, "", fmt.Errorf("zk store URL %q has no servers", cfg.Store)
		}
		dir := zkDir(u, cfg.Dir)
		store, err := zkstore.New(zkstore.Config{
			Servers:        servers,
			SessionTimeout: cfg.SessionTimeout,
			Logger:         cfg.Logger,
		})
		if err != nil {
			return nil, "", err
		}
		return store, dir, nil
	default:
		return nil, "", fmt.Errorf("unsupported store scheme %q", u.Scheme)
	}
}

// zkDir lets a zk:// URL carry the table directory in its path; an empty
// path falls back to the configured dir.
func zkDir(u *url.URL, fallback string) string {
	if path := strings.TrimRight(u.Path, "/"); path != "" {
		return path
	}
	return fallback
}
