package table

import (
	"sync"
	"time"

	"github.com/picn-go/icnfwd/defn"
	pq "github.com/picn-go/icnfwd/types/priority_queue"
)

// CSEntry is a single Content Store record: the cached Content, the
// monotonic timestamp of its last hit or admission, and whether it is
// statically pinned (never aged out).
type CSEntry struct {
	Content   *defn.Content
	Timestamp time.Time
	Static    bool

	key  uint64
	item *pq.Item[*CSEntry, int64]
}

// ContentStore is a Name -> Content cache with TTL-based aging and
// static pinning. Lookup is exact-name match only; the CS performs no
// prefix matching.
type ContentStore struct {
	mu      sync.RWMutex
	buckets map[uint64][]*CSEntry
	aging   pq.Queue[*CSEntry, int64]
}

// NewContentStore constructs an empty Content Store.
func NewContentStore() *ContentStore {
	return &ContentStore{
		buckets: make(map[uint64][]*CSEntry),
		aging:   pq.New[*CSEntry, int64](),
	}
}

// Find returns the CS entry cached under name, or nil if absent. It does
// not refresh the entry's timestamp; callers that treat this as a cache
// hit must call UpdateTimestamp explicitly.
func (cs *ContentStore) Find(name defn.Name) *CSEntry {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.lookup(name)
}

// lookup must be called with cs.mu held (read or write).
func (cs *ContentStore) lookup(name defn.Name) *CSEntry {
	for _, e := range cs.buckets[nameKey(name)] {
		if e.Content.NameV.Equal(name) {
			return e
		}
	}
	return nil
}

// Add inserts content into the CS. Admission is unconditional: if an
// entry already exists for this name it is overwritten and its
// timestamp reset.
func (cs *ContentStore) Add(content *defn.Content, static bool) *CSEntry {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	now := time.Now()
	key := nameKey(content.NameV)

	if e := cs.lookup(content.NameV); e != nil {
		e.Content = content
		e.Timestamp = now
		e.Static = static
		if e.item != nil {
			cs.aging.UpdatePriority(e.item, now.UnixNano())
		}
		return e
	}

	e := &CSEntry{Content: content, Timestamp: now, Static: static, key: key}
	cs.buckets[key] = append(cs.buckets[key], e)
	if !static {
		e.item = cs.aging.Push(e, now.UnixNano())
	}
	return e
}

// Remove deletes the CS entry for name, if any.
func (cs *ContentStore) Remove(name defn.Name) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.remove(name)
}

func (cs *ContentStore) remove(name defn.Name) {
	key := nameKey(name)
	bucket := cs.buckets[key]
	for i, e := range bucket {
		if e.Content.NameV.Equal(name) {
			if e.item != nil {
				cs.aging.Remove(e.item)
			}
			cs.buckets[key] = append(bucket[:i], bucket[i+1:]...)
			if len(cs.buckets[key]) == 0 {
				delete(cs.buckets, key)
			}
			return
		}
	}
}

// UpdateTimestamp refreshes entry's last-hit time to now, as required on
// every CS hit so a live entry is never picked for eviction ahead of a
// genuinely stale one.
func (cs *ContentStore) UpdateTimestamp(entry *CSEntry) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	entry.Timestamp = time.Now()
	if entry.item != nil {
		cs.aging.UpdatePriority(entry.item, entry.Timestamp.UnixNano())
	}
}

// Iter calls f for every CS entry. f must not mutate the store.
func (cs *ContentStore) Iter(f func(*CSEntry)) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	for _, bucket := range cs.buckets {
		for _, e := range bucket {
			f(e)
		}
	}
}

// AgeOut evicts every non-static entry whose timestamp+ttl has passed
// now. It scans every entry and judges each on its Timestamp and Static
// fields.
func (cs *ContentStore) AgeOut(now time.Time, ttl time.Duration) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	var expired []defn.Name
	for _, bucket := range cs.buckets {
		for _, e := range bucket {
			if !e.Static && now.After(e.Timestamp.Add(ttl)) {
				expired = append(expired, e.Content.NameV)
			}
		}
	}
	for _, name := range expired {
		cs.remove(name)
	}
}

// Len returns the number of entries currently cached.
func (cs *ContentStore) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	n := 0
	for _, b := range cs.buckets {
		n += len(b)
	}
	return n
}
