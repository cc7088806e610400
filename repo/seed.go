package repo

import (
	"github.com/picn-go/icnfwd/defn"
	"github.com/picn-go/icnfwd/table"
	"github.com/picn-go/icnfwd/tlv"
)

// Seed populates cs with every Content packet persisted in store,
// pinned static so the aging loop never evicts repository-backed
// content, and records each entry in idx if non-nil. Malformed entries
// are skipped rather than aborting the whole seed.
func Seed(store Store, idx *SQLiteIndex, cs *table.ContentStore) error {
	return store.Iter(func(name defn.Name, wire []byte) {
		pkt, err := tlv.Decode(wire)
		if err != nil || pkt.Content == nil {
			return
		}
		cs.Add(pkt.Content, true)
		if idx != nil {
			_ = idx.Record(name, len(pkt.Content.PayloadV), true)
		}
	})
}
