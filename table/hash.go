package table

import (
	"github.com/cespare/xxhash/v2"
	"github.com/picn-go/icnfwd/defn"
)

// nameKey hashes a Name's canonical string form down to a fixed-size map
// key. Collisions are possible (if vanishingly unlikely for real
// workloads), so every table bucketed on nameKey still confirms an exact
// Name.Equal match before returning a hit. A Name is a slice of slices
// and so is not itself comparable, which rules out using it as a map
// key directly.
func nameKey(n defn.Name) uint64 {
	return xxhash.Sum64String(n.String())
}
