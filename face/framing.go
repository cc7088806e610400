package face

import (
	"bufio"
	"io"

	"github.com/picn-go/icnfwd/tlv"
)

// readVarNum reads one NDN-TLV variable-length number from r, returning
// both its value and the raw bytes it was encoded in (the caller needs
// the raw bytes to reassemble the full frame).
func readVarNum(r *bufio.Reader) (val uint64, raw []byte, err error) {
	first, err := r.ReadByte()
	if err != nil {
		return 0, nil, err
	}

	var n int
	switch {
	case first <= 0xfc:
		return uint64(first), []byte{first}, nil
	case first == 0xfd:
		n = 2
	case first == 0xfe:
		n = 4
	default:
		n = 8
	}

	rest := make([]byte, n)
	if _, err := io.ReadFull(r, rest); err != nil {
		return 0, nil, err
	}

	val = 0
	for _, b := range rest {
		val = val<<8 | uint64(b)
	}
	return val, append([]byte{first}, rest...), nil
}

// ReadFrame reads one complete NDN-TLV frame (Type | Length | Value) off
// a byte stream such as a TCP connection, where packet boundaries are
// not otherwise delimited. It returns io.EOF (or the underlying read
// error) once the stream ends cleanly between frames.
func ReadFrame(r *bufio.Reader) ([]byte, error) {
	_, typeRaw, err := readVarNum(r)
	if err != nil {
		return nil, err
	}

	length, lengthRaw, err := readVarNum(r)
	if err != nil {
		return nil, err
	}

	value := make([]byte, length)
	if _, err := io.ReadFull(r, value); err != nil {
		return nil, tlv.ErrFormat{Msg: "truncated frame: " + err.Error()}
	}

	frame := make([]byte, 0, len(typeRaw)+len(lengthRaw)+len(value))
	frame = append(frame, typeRaw...)
	frame = append(frame, lengthRaw...)
	frame = append(frame, value...)
	return frame, nil
}
