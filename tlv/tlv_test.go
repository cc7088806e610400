package tlv

import (
	"testing"

	"github.com/picn-go/icnfwd/defn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterestRoundTripModuloNonce(t *testing.T) {
	i := &defn.Interest{NameV: defn.NameFromString("/a/x")}
	wire := EncodeInterest(i)

	pkt, err := Decode(wire)
	require.NoError(t, err)
	require.NotNil(t, pkt.Interest)
	assert.True(t, pkt.Interest.NameV.Equal(i.NameV))
}

func TestContentRoundTripModuloMetaInfo(t *testing.T) {
	c := &defn.Content{NameV: defn.NameFromString("/a/x"), PayloadV: []byte("DATA")}
	wire := EncodeData(c)

	pkt, err := Decode(wire)
	require.NoError(t, err)
	require.NotNil(t, pkt.Content)
	assert.True(t, pkt.Content.NameV.Equal(c.NameV))
	assert.Equal(t, c.PayloadV, pkt.Content.PayloadV)
	assert.Equal(t, wire, pkt.Content.WireV)
}

func TestEncodeDataEmitsWireVVerbatim(t *testing.T) {
	preEncoded := []byte{byte(TypeData), 0x00}
	c := &defn.Content{NameV: defn.NameFromString("/a/x"), PayloadV: []byte("DATA"), WireV: preEncoded}
	assert.Equal(t, preEncoded, EncodeData(c))
}

func TestDecodeEmptyBufferIsFormatError(t *testing.T) {
	_, err := Decode(nil)
	require.Error(t, err)
	var fe ErrFormat
	assert.ErrorAs(t, err, &fe)
}

func TestDecodeUnknownOuterTypeIsDropped(t *testing.T) {
	_, err := Decode([]byte{0xff, 0x00})
	assert.Equal(t, errUnknown, err)
}

func TestDecodeTruncatedNameOverrun(t *testing.T) {
	// Interest TLV claiming a body longer than what follows.
	wire := []byte{byte(TypeInterest), 0x10, byte(TypeName), 0x02, byte(TypeNameComponent), 0x01}
	_, err := Decode(wire)
	require.Error(t, err)
}

func TestEncodeNameComponentOrderPreserved(t *testing.T) {
	n := defn.NameFromString("/a/b/c")
	i := &defn.Interest{NameV: n}
	pkt, err := Decode(EncodeInterest(i))
	require.NoError(t, err)
	assert.Equal(t, "/a/b/c", pkt.Interest.NameV.String())
}

func TestDecodeToleratesMissingNonce(t *testing.T) {
	// Hand-build an Interest TLV with only a Name, no Nonce.
	nameBuf := encodeName(defn.NameFromString("/x"))
	wire := encodeTLV(TypeInterest, nameBuf)

	pkt, err := Decode(wire)
	require.NoError(t, err)
	assert.Equal(t, "/x", pkt.Interest.NameV.String())
}
