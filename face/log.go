package face

import (
	"fmt"

	"github.com/picn-go/icnfwd/core"
)

// logDrop records a malformed-frame drop at warn level, matching
// spec.md §7's disposition for MalformedPacket: drop, do not respond.
func logDrop(who fmt.Stringer, err error) {
	core.Log.Warn(who, "dropping malformed frame", "err", err.Error())
}
