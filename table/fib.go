package table

import (
	"sync"

	"github.com/picn-go/icnfwd/defn"
)

// FIBEntry maps a name prefix to an outgoing face. Identity for
// "already used" bookkeeping is the pointer itself: every FIB.Add call
// creates a distinct *FIBEntry, even one that repeats an existing
// (prefix, face_id, static) registration.
type FIBEntry struct {
	Prefix defn.Name
	FaceID defn.FaceID
	Static bool

	seq int // insertion order, used to break longest-prefix ties
}

// FIB is the Forwarding Information Base: a longest-prefix-match table
// from Name to outgoing face. It is read-mostly from the Forwarder's
// perspective but must support concurrent readers since it is also
// mutated by an external management interface.
type FIB struct {
	mu      sync.RWMutex
	entries []*FIBEntry
	seq     int
}

// NewFIB constructs an empty FIB.
func NewFIB() *FIB {
	return &FIB{}
}

// Find returns the longest-prefix match for name among entries not
// present in alreadyUsed, or nil if none exists. Ties on prefix length
// are broken by insertion order (earliest registered wins).
func (f *FIB) Find(name defn.Name, alreadyUsed map[*FIBEntry]struct{}) *FIBEntry {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var best *FIBEntry
	for _, e := range f.entries {
		if _, used := alreadyUsed[e]; used {
			continue
		}
		if !e.Prefix.IsPrefixOf(name) {
			continue
		}
		if best == nil ||
			len(e.Prefix) > len(best.Prefix) ||
			(len(e.Prefix) == len(best.Prefix) && e.seq < best.seq) {
			best = e
		}
	}
	return best
}

// Add registers a new FIB entry and returns it. Management tooling uses
// this to populate routes; the forwarding core only ever reads via
// Find.
func (f *FIB) Add(prefix defn.Name, faceID defn.FaceID, static bool) *FIBEntry {
	f.mu.Lock()
	defer f.mu.Unlock()

	e := &FIBEntry{Prefix: prefix, FaceID: faceID, Static: static, seq: f.seq}
	f.seq++
	f.entries = append(f.entries, e)
	return e
}

// Remove deletes every FIB entry exactly matching prefix.
func (f *FIB) Remove(prefix defn.Name) {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.entries[:0]
	for _, e := range f.entries {
		if !e.Prefix.Equal(prefix) {
			kept = append(kept, e)
		}
	}
	f.entries = kept
}

// Len returns the number of registered FIB entries.
func (f *FIB) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.entries)
}

// List returns a snapshot of every registered FIB entry, for
// introspection by the management layer.
func (f *FIB) List() []*FIBEntry {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*FIBEntry, len(f.entries))
	copy(out, f.entries)
	return out
}
