package face

import (
	"fmt"

	"github.com/picn-go/icnfwd/defn"
)

// NullFace discards every packet sent to it. It is useful for testing
// the forwarding core in isolation and as a placeholder face_id, the
// same role the teacher's NullTransport plays.
type NullFace struct {
	base
	close chan struct{}
}

// NewNullFace constructs a NullFace.
func NewNullFace() *NullFace {
	return &NullFace{close: make(chan struct{})}
}

// String identifies the face for logging.
func (f *NullFace) String() string {
	return fmt.Sprintf("null-face (faceid=%d)", f.ID())
}

// Send discards pkt.
func (f *NullFace) Send(defn.Packet) error { return nil }

// Run marks the face running and blocks until Close.
func (f *NullFace) Run(recv chan<- defn.FromFace) {
	f.running.Store(true)
	<-f.close
}

// Close stops the face.
func (f *NullFace) Close() {
	if f.running.Swap(false) {
		close(f.close)
	}
}
