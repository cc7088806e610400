package tlv

import "encoding/binary"

// ErrFormat is returned for any malformed TLV input: a length that
// overruns the buffer, an unrecognized outer type, or a truncated
// nested structure. The caller (a face, or repo.Seed) drops the frame
// on this error; it is never fatal.
type ErrFormat struct {
	Msg string
}

// Error implements the error interface.
func (e ErrFormat) Error() string {
	return e.Msg
}

// varNum is an NDN-TLV variable-length number (used for both Type and
// Length fields): 1, 3, 5, or 9 bytes on the wire depending on
// magnitude.
type varNum uint64

// encodingLength returns how many bytes v needs on the wire.
func (v varNum) encodingLength() int {
	switch x := uint64(v); {
	case x <= 0xfc:
		return 1
	case x <= 0xffff:
		return 3
	case x <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// encodeInto writes v into buf and returns the number of bytes written.
func (v varNum) encodeInto(buf []byte) int {
	switch x := uint64(v); {
	case x <= 0xfc:
		buf[0] = byte(x)
		return 1
	case x <= 0xffff:
		buf[0] = 0xfd
		binary.BigEndian.PutUint16(buf[1:], uint16(x))
		return 3
	case x <= 0xffffffff:
		buf[0] = 0xfe
		binary.BigEndian.PutUint32(buf[1:], uint32(x))
		return 5
	default:
		buf[0] = 0xff
		binary.BigEndian.PutUint64(buf[1:], uint64(x))
		return 9
	}
}

// parseVarNum parses a varNum from the front of buf, returning the value
// and the number of bytes it consumed. It reports ErrFormat if buf is
// too short for the length prefix it claims.
func parseVarNum(buf []byte) (val varNum, n int, err error) {
	if len(buf) == 0 {
		return 0, 0, ErrFormat{"truncated varnum"}
	}
	switch x := buf[0]; {
	case x <= 0xfc:
		return varNum(x), 1, nil
	case x == 0xfd:
		if len(buf) < 3 {
			return 0, 0, ErrFormat{"truncated varnum"}
		}
		return varNum(binary.BigEndian.Uint16(buf[1:3])), 3, nil
	case x == 0xfe:
		if len(buf) < 5 {
			return 0, 0, ErrFormat{"truncated varnum"}
		}
		return varNum(binary.BigEndian.Uint32(buf[1:5])), 5, nil
	default:
		if len(buf) < 9 {
			return 0, 0, ErrFormat{"truncated varnum"}
		}
		return varNum(binary.BigEndian.Uint64(buf[1:9])), 9, nil
	}
}
