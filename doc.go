// Package trackd maintains a size-bounded tracking table in a hierarchical
// coordination service (ZooKeeper in production). Participants insert
// short-lived tracking entries - markers for completed or failed units of
// work - as one node per id under a fixed directory. When the tracked set
// reaches the configured maximum, the next insert first evicts the oldest
// maxSize/10 entries by modification stamp and notifies an optional
// overflow observer once per evicted entry.
//
// # Opening a map
//
//	cfg := trackd.Config{
//	    Store:   "zk://zk1:2181,zk2:2181",
//	    Dir:     "/jobs/completed",
//	    MaxSize: 10000,
//	    OnOverflow: func(ctx context.Context, id string) error {
//	        log.Printf("evicted %s", id)
//	        return nil
//	    },
//	}
//	m, closeStore, err := trackd.Open(cfg)
//	if err != nil { log.Fatal(err) }
//	defer closeStore()
//
//	if err := m.Put(ctx, "job-1337", []byte(`{"state":"completed"}`)); err != nil {
//	    log.Fatal(err)
//	}
//
// Use `mem://` as the store URL for tests and local experimentation.
//
// # Eviction semantics
//
// Eviction is a best-effort pressure-release mechanism, not an exact bound.
// The shrink pass runs before the insert and reflects the pre-insert state,
// so the set may transiently exceed the cap by one entry. Several processes
// sharing a directory may each run a pass from their own snapshot; together
// they can evict more than one quota, and every per-entry step tolerates the
// entry having been removed concurrently. Entries sharing the boundary stamp
// are all evicted, so a pass can remove more than the quota. A cap below 10
// yields a zero quota and disables eviction.
package trackd
