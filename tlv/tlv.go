// Package tlv implements the NDN-TLV wire codec for Interest and Data
// (Content) packets. Nack has no wire form: Encode rejects it and Decode
// never produces one. Each element on the wire is Type (varnum) |
// Length (varnum) | Value.
package tlv

import (
	"crypto/rand"

	"github.com/picn-go/icnfwd/defn"
)

// Recognized NDN-TLV type numbers.
const (
	TypeInterest      varNum = 0x05
	TypeData          varNum = 0x06
	TypeName          varNum = 0x07
	TypeNameComponent varNum = 0x08
	TypeNonce         varNum = 0x0a
	TypeMetaInfo      varNum = 0x14
	TypeContent       varNum = 0x15
)

// errUnknown is the sentinel Decode returns for any outer type other
// than Interest or Data, the reserved Nack encoding included; callers
// drop these frames rather than misclassify them.
var errUnknown = ErrFormat{"unknown or reserved outer packet type"}

// EncodeInterest serializes an Interest as
// Interest{ Name{ NameComponent* }, Nonce(4 random bytes) }.
func EncodeInterest(i *defn.Interest) []byte {
	nameBuf := encodeName(i.NameV)

	nonce := make([]byte, 4)
	_, _ = rand.Read(nonce)
	nonceBuf := encodeTLV(TypeNonce, nonce)

	inner := append(nameBuf, nonceBuf...)
	return encodeTLV(TypeInterest, inner)
}

// EncodeData serializes a Content as Data{ Name{...}, MetaInfo{empty},
// Content{payload} }. If c.WireV is already populated it is emitted
// verbatim, preserving any upstream encoding (e.g. a signature this
// core does not itself produce).
func EncodeData(c *defn.Content) []byte {
	if c.WireV != nil {
		return c.WireV
	}

	nameBuf := encodeName(c.NameV)
	metaBuf := encodeTLV(TypeMetaInfo, nil)
	contentBuf := encodeTLV(TypeContent, c.PayloadV)

	inner := make([]byte, 0, len(nameBuf)+len(metaBuf)+len(contentBuf))
	inner = append(inner, nameBuf...)
	inner = append(inner, metaBuf...)
	inner = append(inner, contentBuf...)
	return encodeTLV(TypeData, inner)
}

// Encode serializes pkt for transmission on a face. A Nack is a signal
// internal to the forwarding core, not a wire packet type, so Encode
// rejects it rather than inventing a wire form.
func Encode(pkt defn.Packet) ([]byte, error) {
	switch {
	case pkt.Interest != nil:
		return EncodeInterest(pkt.Interest), nil
	case pkt.Content != nil:
		return EncodeData(pkt.Content), nil
	default:
		return nil, ErrFormat{"cannot encode a Nack onto the wire"}
	}
}

// Decode dispatches on the first byte of wire and returns the decoded
// Packet. Malformed TLV (length overrun, unknown outer type, truncated
// nested structure) yields ErrFormat; the caller drops the frame.
func Decode(wire []byte) (defn.Packet, error) {
	if len(wire) == 0 {
		return defn.Packet{}, ErrFormat{"empty wire buffer"}
	}

	switch varNum(wire[0]) {
	case TypeData:
		return decodeData(wire)
	case TypeInterest:
		return decodeInterest(wire)
	default:
		// Nack wire format is reserved; return the unknown sentinel so
		// callers drop rather than misclassify.
		return defn.Packet{}, errUnknown
	}
}

func decodeInterest(wire []byte) (defn.Packet, error) {
	typ, tn, err := parseVarNum(wire)
	if err != nil {
		return defn.Packet{}, err
	}
	if typ != TypeInterest {
		return defn.Packet{}, ErrFormat{"expected Interest TLV"}
	}
	length, ln, err := parseVarNum(wire[tn:])
	if err != nil {
		return defn.Packet{}, err
	}
	start := tn + ln
	end := start + int(length)
	if end > len(wire) {
		return defn.Packet{}, ErrFormat{"Interest length overruns buffer"}
	}
	body := wire[start:end]

	name, _, err := decodeName(body)
	if err != nil {
		return defn.Packet{}, err
	}
	// Nonce and any trailing elements are skipped.
	return defn.Packet{Interest: &defn.Interest{NameV: name}}, nil
}

func decodeData(wire []byte) (defn.Packet, error) {
	typ, tn, err := parseVarNum(wire)
	if err != nil {
		return defn.Packet{}, err
	}
	if typ != TypeData {
		return defn.Packet{}, ErrFormat{"expected Data TLV"}
	}
	length, ln, err := parseVarNum(wire[tn:])
	if err != nil {
		return defn.Packet{}, err
	}
	start := tn + ln
	end := start + int(length)
	if end > len(wire) {
		return defn.Packet{}, ErrFormat{"Data length overruns buffer"}
	}
	body := wire[start:end]

	name, consumed, err := decodeName(body)
	if err != nil {
		return defn.Packet{}, err
	}
	body = body[consumed:]

	// Skip MetaInfo; received meta-info is not parsed. MetaInfo is
	// optional on the wire in full NDN, but this core only ever emits it
	// (empty) itself, so presence immediately after Name is assumed
	// here rather than treated as optional.
	metaTyp, mtn, err := parseVarNum(body)
	if err != nil {
		return defn.Packet{}, err
	}
	if metaTyp != TypeMetaInfo {
		return defn.Packet{}, ErrFormat{"expected MetaInfo TLV"}
	}
	metaLen, mln, err := parseVarNum(body[mtn:])
	if err != nil {
		return defn.Packet{}, err
	}
	metaEnd := mtn + mln + int(metaLen)
	if metaEnd > len(body) {
		return defn.Packet{}, ErrFormat{"MetaInfo length overruns buffer"}
	}
	body = body[metaEnd:]

	contentTyp, ctn, err := parseVarNum(body)
	if err != nil {
		return defn.Packet{}, err
	}
	if contentTyp != TypeContent {
		return defn.Packet{}, ErrFormat{"expected Content TLV"}
	}
	contentLen, cln, err := parseVarNum(body[ctn:])
	if err != nil {
		return defn.Packet{}, err
	}
	cstart := ctn + cln
	cend := cstart + int(contentLen)
	if cend > len(body) {
		return defn.Packet{}, ErrFormat{"Content length overruns buffer"}
	}
	payload := append([]byte(nil), body[cstart:cend]...)

	wireCopy := append([]byte(nil), wire[:end]...)
	return defn.Packet{Content: &defn.Content{
		NameV:    name,
		PayloadV: payload,
		WireV:    wireCopy,
	}}, nil
}

// encodeTLV wraps value with its Type/Length header.
func encodeTLV(typ varNum, value []byte) []byte {
	lenBuf := make([]byte, varNum(len(value)).encodingLength())
	varNum(len(value)).encodeInto(lenBuf)

	typBuf := make([]byte, typ.encodingLength())
	typ.encodeInto(typBuf)

	out := make([]byte, 0, len(typBuf)+len(lenBuf)+len(value))
	out = append(out, typBuf...)
	out = append(out, lenBuf...)
	out = append(out, value...)
	return out
}

// encodeName emits a Name TLV of in-order NameComponent TLVs.
func encodeName(name defn.Name) []byte {
	var inner []byte
	for _, c := range name {
		inner = append(inner, encodeTLV(TypeNameComponent, c)...)
	}
	return encodeTLV(TypeName, inner)
}

// decodeName reads a Name TLV from the front of buf and returns the
// parsed Name along with how many bytes it consumed.
func decodeName(buf []byte) (defn.Name, int, error) {
	typ, tn, err := parseVarNum(buf)
	if err != nil {
		return nil, 0, err
	}
	if typ != TypeName {
		return nil, 0, ErrFormat{"expected Name TLV"}
	}
	length, ln, err := parseVarNum(buf[tn:])
	if err != nil {
		return nil, 0, err
	}
	start := tn + ln
	end := start + int(length)
	if end > len(buf) {
		return nil, 0, ErrFormat{"Name length overruns buffer"}
	}

	var name defn.Name
	pos := start
	for pos < end {
		ctyp, ctn, err := parseVarNum(buf[pos:])
		if err != nil {
			return nil, 0, err
		}
		if ctyp != TypeNameComponent {
			return nil, 0, ErrFormat{"expected NameComponent TLV"}
		}
		clen, cln, err := parseVarNum(buf[pos+ctn:])
		if err != nil {
			return nil, 0, err
		}
		cstart := pos + ctn + cln
		cend := cstart + int(clen)
		if cend > end {
			return nil, 0, ErrFormat{"NameComponent length overruns Name"}
		}
		comp := make(defn.Component, clen)
		copy(comp, buf[cstart:cend])
		name = append(name, comp)
		pos = cend
	}

	return name, end, nil
}
