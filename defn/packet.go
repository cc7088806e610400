package defn

import "fmt"

// FaceID identifies a face, network-facing or local-application, in a
// way stable enough to key tables and log messages with.
type FaceID uint64

// Interest is a name-addressed request. Nonce only exists on the wire
// (see tlv.EncodeInterest); it plays no role in this core's forwarding
// decisions, which is why it is not part of PIT identity.
type Interest struct {
	NameV Name
}

// Name returns the Interest's name.
func (i *Interest) Name() Name { return i.NameV }

// String identifies the Interest for logging.
func (i *Interest) String() string {
	return fmt.Sprintf("Interest(%s)", i.NameV)
}

// Content is a name-addressed response carrying a payload. WireV, if
// non-nil, is the verbatim encoded form received from the wire (or
// produced upstream); the codec emits it unchanged rather than
// re-encoding, which preserves signatures this core never generates.
type Content struct {
	NameV    Name
	PayloadV []byte
	WireV    []byte
}

// Name returns the Content's name.
func (c *Content) Name() Name { return c.NameV }

// Payload returns the Content's application payload.
func (c *Content) Payload() []byte { return c.PayloadV }

// String identifies the Content for logging.
func (c *Content) String() string {
	return fmt.Sprintf("Content(%s, %d bytes)", c.NameV, len(c.PayloadV))
}

// NackReason enumerates why an Interest could not be satisfied.
type NackReason int

const (
	NackNotSet NackReason = iota
	NackNoRoute
	NackNoContent
	NackCompException
)

// String renders the NackReason the way it would appear in a log line.
func (r NackReason) String() string {
	switch r {
	case NackNoRoute:
		return "NO_ROUTE"
	case NackNoContent:
		return "NO_CONTENT"
	case NackCompException:
		return "COMP_EXCEPTION"
	default:
		return "NOT_SET"
	}
}

// Nack is a negative acknowledgment referring to a previously issued
// Interest.
type Nack struct {
	NameV     Name
	ReasonV   NackReason
	InterestV *Interest
}

// Name returns the Nack's name.
func (n *Nack) Name() Name { return n.NameV }

// Reason returns why the Interest failed.
func (n *Nack) Reason() NackReason { return n.ReasonV }

// Interest returns the original Interest this Nack refers to.
func (n *Nack) Interest() *Interest { return n.InterestV }

// String identifies the Nack for logging.
func (n *Nack) String() string {
	return fmt.Sprintf("Nack(%s, %s)", n.NameV, n.ReasonV)
}

// Packet is the tagged union the Forwarder, codec, and faces all
// exchange. Exactly one of Interest, Content, Nack is non-nil.
type Packet struct {
	Interest *Interest
	Content  *Content
	Nack     *Nack
}

// Name returns the name carried by whichever variant is set.
func (p Packet) Name() Name {
	switch {
	case p.Interest != nil:
		return p.Interest.NameV
	case p.Content != nil:
		return p.Content.NameV
	case p.Nack != nil:
		return p.Nack.NameV
	default:
		return nil
	}
}

// String identifies the Packet for logging.
func (p Packet) String() string {
	switch {
	case p.Interest != nil:
		return p.Interest.String()
	case p.Content != nil:
		return p.Content.String()
	case p.Nack != nil:
		return p.Nack.String()
	default:
		return "Packet(empty)"
	}
}

// FromFace is the message shape crossing the ingress/egress API: a
// packet tagged with the face it arrived on or should be sent to.
type FromFace struct {
	FaceID FaceID
	Packet Packet
}
