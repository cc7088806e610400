// Package face implements the link layer's Face abstraction: the
// bidirectional, integer-identified endpoint the Forwarder's ingress and
// egress APIs are keyed on (spec.md §6). The Forwarder itself only ever
// sees (face_id, packet) pairs; everything in this package is the
// external collaborator spec.md §1 calls out as "out of scope, treated
// as an interface" for the forwarding logic proper.
package face

import (
	"fmt"
	"sync/atomic"

	"github.com/picn-go/icnfwd/defn"
	"github.com/picn-go/icnfwd/tlv"
)

// Face is a bidirectional endpoint: a network link or a local
// application, identified by an integer (spec.md's "Face" glossary
// entry). It mirrors the teacher's fw/face.transport interface, narrowed
// to what the forwarding core and its runtime actually need.
type Face interface {
	fmt.Stringer
	ID() defn.FaceID
	SetID(defn.FaceID)
	IsRunning() bool
	// Send transmits pkt on this face. Implementations encode via the
	// tlv package before writing to the wire.
	Send(pkt defn.Packet) error
	// Run starts the receive loop, decoding frames and delivering them
	// to recv until the face closes or an unrecoverable error occurs.
	// Malformed frames are dropped, never delivered (spec.md §4.1).
	Run(recv chan<- defn.FromFace)
	Close()
}

// base provides the bookkeeping every concrete Face shares: an assigned
// id and a running flag, matching the teacher's transportBase pattern.
type base struct {
	id      atomic.Uint64
	running atomic.Bool
}

// ID returns the face's assigned identifier.
func (b *base) ID() defn.FaceID { return defn.FaceID(b.id.Load()) }

// SetID assigns this face's identifier; called once by the face table
// at registration time.
func (b *base) SetID(id defn.FaceID) { b.id.Store(uint64(id)) }

// IsRunning reports whether the receive loop is active.
func (b *base) IsRunning() bool { return b.running.Load() }

// encodePacket is the shared Send-side helper every concrete Face uses
// to turn an outgoing Packet into wire bytes.
func encodePacket(pkt defn.Packet) ([]byte, error) {
	return tlv.Encode(pkt)
}

// deliverFrame decodes a raw wire frame and, if well-formed, sends it to
// recv tagged with this face's id. Malformed frames are dropped per
// spec.md §4.1 / §7 (MalformedPacket).
func deliverFrame(b *base, who fmt.Stringer, frame []byte, recv chan<- defn.FromFace) {
	pkt, err := tlv.Decode(frame)
	if err != nil {
		logDrop(who, err)
		return
	}
	recv <- defn.FromFace{FaceID: b.ID(), Packet: pkt}
}
