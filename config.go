package trackd

import (
	"fmt"
	"strings"
	"time"

	"pkt.systems/pslog"
)

const (
	// DefaultStore points the factory at the in-memory store when no store
	// URL is provided.
	DefaultStore = "mem://"
	// DefaultDir is the directory node holding tracking entries.
	DefaultDir = "/trackd/entries"
	// DefaultMaxSize caps the tracked set when no explicit cap is configured.
	DefaultMaxSize = 10000
	// DefaultSessionTimeout bounds the ZooKeeper session negotiation.
	DefaultSessionTimeout = 10 * time.Second
)

// Config describes a bounded tracking map. The zero value is usable after
// Normalize: an in-memory store with the default directory and cap.
type Config struct {
	// Store selects the coordination service:
	//   - mem:// - in-memory (tests and local experimentation)
	//   - zk://host:port[,host:port][/dir] - ZooKeeper ensemble; a non-empty
	//     URL path overrides Dir
	Store string
	// Dir is the directory node the table lives under.
	Dir string
	// MaxSize caps the tracked set. Must be positive. The eviction quota is
	// MaxSize/10; caps below 10 disable eviction.
	MaxSize int
	// SessionTimeout applies to ZooKeeper stores only.
	SessionTimeout time.Duration
	// OnOverflow is invoked once per evicted entry. Optional.
	OnOverflow OverflowObserver
	// Logger receives eviction and connection events. Optional.
	Logger pslog.Logger
	// Metrics attaches Prometheus counters. Optional.
	Metrics *Metrics
}

// Normalize fills unset fields with defaults.
func (c *Config) Normalize() {
	if strings.TrimSpace(c.Store) == "" {
		c.Store = DefaultStore
	}
	if strings.TrimSpace(c.Dir) == "" {
		c.Dir = DefaultDir
	}
	if c.MaxSize == 0 {
		c.MaxSize = DefaultMaxSize
	}
	if c.SessionTimeout <= 0 {
		c.SessionTimeout = DefaultSessionTimeout
	}
	if c.Logger == nil {
		c.Logger = pslog.NoopLogger()
	}
}

// Validate reports configuration errors Normalize cannot repair.
func (c Config) Validate() error {
	if c.MaxSize < 0 {
		return fmt.Errorf("config: max size must not be negative, got %d", c.MaxSize)
	}
	return nil
}
