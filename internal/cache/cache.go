package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/mathquest/engine/internal/problem"
)

// Config bounds the cache.
type Config struct {
	// TTL is the lifetime assigned to a session on Put.
	TTL time.Duration

	// MaxPerLearner caps live entries per learner; the least recently
	// accessed entries are evicted beyond it.
	MaxPerLearner int

	// SweepInterval is the period of the background expiry sweep.
	SweepInterval time.Duration
}

// DefaultConfig returns the standard bounds.
func DefaultConfig() Config {
	return Config{
		TTL:           time.Hour,
		MaxPerLearner: 5,
		SweepInterval: 10 * time.Minute,
	}
}

type key struct {
	learner string
	session string
}

type entry struct {
	session     *problem.Session
	lastAccess  time.Time
	accessCount int

	// elem is this entry's node in its learner's recency list.
	elem *list.Element
}

// Stats is a point-in-time snapshot of cache occupancy and traffic.
// Counts may be briefly stale relative to in-flight operations.
type Stats struct {
	Total               int
	Active              int
	ExpiredPendingSweep int
	UniqueLearners      int
	Hits                int64
	Misses              int64
	Evictions           int64
}

// Cache is the in-process store of active sessions. It is the source of
// truth while a session is hot; losing an entry costs only one extra
// generate round trip, so there is no write-ahead durability here.
//
// A single mutex guards the whole store. All methods are safe for
// concurrent use.
type Cache struct {
	cfg Config

	mu       sync.Mutex
	entries  map[key]*entry
	learners map[string]*list.List // per-learner recency, front = most recent

	hits      int64
	misses    int64
	evictions int64

	now func() time.Time
}

// New creates a Cache with the given config. Zero config fields fall back
// to DefaultConfig values.
func New(cfg Config) *Cache {
	def := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.MaxPerLearner <= 0 {
		cfg.MaxPerLearner = def.MaxPerLearner
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}
	return &Cache{
		cfg:      cfg,
		entries:  make(map[key]*entry),
		learners: make(map[string]*list.List),
		now:      time.Now,
	}
}

// Put stores a clone of the session and stamps the expiry to now + TTL on
// both the stored copy and the caller's session, so callers replicating the
// session downstream carry the same expiry the cache enforces. It then
// enforces the per-learner cap by evicting least-recently-accessed entries.
func (c *Cache) Put(s *problem.Session) {
	stored := s.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	stored.ExpiresAt = now.Add(c.cfg.TTL)
	s.ExpiresAt = stored.ExpiresAt

	k := key{learner: stored.LearnerID, session: stored.ID}
	if old, ok := c.entries[k]; ok {
		c.removeLocked(k, old)
	}

	lst := c.learners[stored.LearnerID]
	if lst == nil {
		lst = list.New()
		c.learners[stored.LearnerID] = lst
	}

	e := &entry{session: stored, lastAccess: now, accessCount: 0}
	e.elem = lst.PushFront(k)
	c.entries[k] = e

	for lst.Len() > c.cfg.MaxPerLearner {
		back := lst.Back()
		bk := back.Value.(key)
		c.removeLocked(bk, c.entries[bk])
		c.evictions++
	}
}

// Get returns the learner's session by ID. Expired entries are evicted
// lazily on read and reported as a miss. A hit refreshes the last-access
// time and increments the access counter.
func (c *Cache) Get(learnerID, sessionID string) (*problem.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key{learner: learnerID, session: sessionID}
	e, ok := c.entries[k]
	if !ok {
		c.misses++
		return nil, false
	}

	now := c.now()
	if e.session.Expired(now) {
		c.removeLocked(k, e)
		c.misses++
		return nil, false
	}

	e.lastAccess = now
	e.accessCount++
	c.learners[learnerID].MoveToFront(e.elem)
	c.hits++

	return e.session.Clone(), true
}

// Complete removes the entry unconditionally and reports whether anything
// was removed. Calling it twice for the same session is safe; the second
// call returns false.
func (c *Cache) Complete(learnerID, sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key{learner: learnerID, session: sessionID}
	e, ok := c.entries[k]
	if !ok {
		return false
	}
	c.removeLocked(k, e)
	return true
}

// ListByLearner returns the learner's cached sessions in recency order,
// most recently accessed first. Expired entries are skipped but not
// evicted; that is the sweep's job.
func (c *Cache) ListByLearner(learnerID string) []*problem.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	lst := c.learners[learnerID]
	if lst == nil {
		return nil
	}

	now := c.now()
	var out []*problem.Session
	for el := lst.Front(); el != nil; el = el.Next() {
		e := c.entries[el.Value.(key)]
		if e.session.Expired(now) {
			continue
		}
		out = append(out, e.session.Clone())
	}
	return out
}

// Stats returns occupancy counts and traffic counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	st := Stats{
		Total:     len(c.entries),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	for _, e := range c.entries {
		if e.session.Expired(now) {
			st.ExpiredPendingSweep++
		} else {
			st.Active++
		}
	}
	for _, lst := range c.learners {
		if lst.Len() > 0 {
			st.UniqueLearners++
		}
	}
	return st
}

// Sweep removes every expired entry across all learners and returns how
// many were removed. It is the only operation that scans the whole store,
// and it holds the guard for a single pass.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if e.session.Expired(now) {
			c.removeLocked(k, e)
			removed++
		}
	}
	return removed
}

// StartSweeper launches the periodic sweep on its own timer, independent of
// request handling. It stops when ctx is cancelled.
func (c *Cache) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Sweep()
			}
		}
	}()
}

// removeLocked deletes an entry from both indexes. Caller holds c.mu.
func (c *Cache) removeLocked(k key, e *entry) {
	if lst := c.learners[k.learner]; lst != nil && e.elem != nil {
		lst.Remove(e.elem)
		if lst.Len() == 0 {
			delete(c.learners, k.learner)
		}
	}
	delete(c.entries, k)
}
