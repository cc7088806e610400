// Package repo implements the on-disk repository collaborator spec.md
// describes as out of scope for the forwarding core proper: a store that
// seeds the Content Store from persisted Data packets at startup and
// accepts static pins, rather than living on the hot forwarding path.
package repo

import (
	"github.com/picn-go/icnfwd/defn"
)

// Store persists wire-encoded Content packets by name. Implementations
// need not be safe for the Forwarder's ingress path directly; the daemon
// only reads them, at startup, to populate static CS entries.
type Store interface {
	// Get returns the wire bytes stored under name, or nil if absent.
	Get(name defn.Name) ([]byte, error)
	// Put persists wire under name, overwriting any existing entry.
	Put(name defn.Name, wire []byte) error
	// Remove deletes the entry stored under name, if any.
	Remove(name defn.Name) error
	// Iter calls f for every (name, wire) pair in the store.
	Iter(f func(name defn.Name, wire []byte)) error
	Close() error
}
