package table

import (
	"sync"
	"time"

	"github.com/picn-go/icnfwd/defn"
	pq "github.com/picn-go/icnfwd/types/priority_queue"
)

// PitIncoming is a single (face, origin) pair recorded against a PIT
// entry. LocalApp identifies whether this waiter must be answered
// upward (to the application face) rather than downward (to a network
// face).
type PitIncoming struct {
	FaceID   defn.FaceID
	LocalApp bool
}

// PITEntry is a single Pending Interest Table record.
type PITEntry struct {
	Name        defn.Name
	Incoming    []PitIncoming
	Interest    *defn.Interest
	Timestamp   time.Time
	Retransmits int
	UsedFIB     map[*FIBEntry]struct{}

	key  uint64
	item *pq.Item[*PITEntry, int64]
}

// hasIncoming reports whether (faceID, localApp) is already recorded.
func (e *PITEntry) hasIncoming(faceID defn.FaceID, localApp bool) bool {
	for _, in := range e.Incoming {
		if in.FaceID == faceID && in.LocalApp == localApp {
			return true
		}
	}
	return false
}

// PIT is the Pending Interest Table: at most one entry per name, no
// duplicate (face_id, local_app) pairs within an entry's incoming list,
// and a used-FIB set that only ever grows until the entry is removed.
type PIT struct {
	mu      sync.Mutex
	buckets map[uint64][]*PITEntry
	aging   pq.Queue[*PITEntry, int64]
}

// NewPIT constructs an empty PIT.
func NewPIT() *PIT {
	return &PIT{
		buckets: make(map[uint64][]*PITEntry),
		aging:   pq.New[*PITEntry, int64](),
	}
}

// Find returns the PIT entry for name, or nil if none exists.
func (p *PIT) Find(name defn.Name) *PITEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lookup(name)
}

func (p *PIT) lookup(name defn.Name) *PITEntry {
	for _, e := range p.buckets[nameKey(name)] {
		if e.Name.Equal(name) {
			return e
		}
	}
	return nil
}

// Add records a waiter for an Interest on name. If no entry exists yet,
// one is created with retransmits 0, timestamp now, and a single
// incoming waiter. If an entry already exists, (faceID, localApp) is
// appended only if not already present: this is aggregation, and it
// must not reset the entry's timestamp or retransmit count.
func (p *PIT) Add(name defn.Name, faceID defn.FaceID, interest *defn.Interest, localApp bool) *PITEntry {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e := p.lookup(name); e != nil {
		if !e.hasIncoming(faceID, localApp) {
			e.Incoming = append(e.Incoming, PitIncoming{FaceID: faceID, LocalApp: localApp})
		}
		return e
	}

	now := time.Now()
	key := nameKey(name)
	e := &PITEntry{
		Name:      name,
		Incoming:  []PitIncoming{{FaceID: faceID, LocalApp: localApp}},
		Interest:  interest,
		Timestamp: now,
		UsedFIB:   make(map[*FIBEntry]struct{}),
		key:       key,
	}
	p.buckets[key] = append(p.buckets[key], e)
	e.item = p.aging.Push(e, now.UnixNano())
	return e
}

// Remove deletes the PIT entry for name, if any.
func (p *PIT) Remove(name defn.Name) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.remove(name)
}

func (p *PIT) remove(name defn.Name) {
	key := nameKey(name)
	bucket := p.buckets[key]
	for i, e := range bucket {
		if e.Name.Equal(name) {
			if e.item != nil {
				p.aging.Remove(e.item)
			}
			p.buckets[key] = append(bucket[:i], bucket[i+1:]...)
			if len(p.buckets[key]) == 0 {
				delete(p.buckets, key)
			}
			return
		}
	}
}

// AddUsedFIB records that fibEntry has been tried for this PIT entry,
// so it is never reused during Nack failover.
func (p *PIT) AddUsedFIB(name defn.Name, fibEntry *FIBEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e := p.lookup(name); e != nil {
		e.UsedFIB[fibEntry] = struct{}{}
	}
}

// UpdateTimestamp refreshes entry's activity time and re-orders it in
// the aging queue so the least-recently-active entry ages first.
func (p *PIT) UpdateTimestamp(entry *PITEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry.Timestamp = time.Now()
	if entry.item != nil {
		p.aging.UpdatePriority(entry.item, entry.Timestamp.UnixNano())
	}
}

// Bump increments entry's retransmit counter and re-inserts it at the
// back of activity order, keeping the aging container ordered by
// most-recent activity. entry.Timestamp is left unchanged, so the
// pit_timeout check keeps measuring from the entry's own timestamp.
func (p *PIT) Bump(entry *PITEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry.Retransmits++
	if entry.item != nil {
		p.aging.UpdatePriority(entry.item, time.Now().UnixNano())
	}
}

// Iter calls f for every PIT entry. f must not mutate the PIT.
func (p *PIT) Iter(f func(*PITEntry)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, bucket := range p.buckets {
		for _, e := range bucket {
			f(e)
		}
	}
}

// Oldest returns the PIT entry least recently active, or nil if the PIT
// is empty. The aging driver does not call it; it scans every entry
// with Iter.
func (p *PIT) Oldest() *PITEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.aging.Len() == 0 {
		return nil
	}
	return p.aging.Peek()
}

// Len returns the number of PIT entries.
func (p *PIT) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, b := range p.buckets {
		n += len(b)
	}
	return n
}
