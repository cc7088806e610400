package table

import (
	"testing"
	"time"

	"github.com/picn-go/icnfwd/defn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentStoreAddAndFind(t *testing.T) {
	cs := NewContentStore()
	c := &defn.Content{NameV: defn.NameFromString("/a/x"), PayloadV: []byte("DATA")}
	cs.Add(c, false)

	got := cs.Find(defn.NameFromString("/a/x"))
	require.NotNil(t, got)
	assert.Equal(t, []byte("DATA"), got.Content.PayloadV)
}

func TestContentStoreExactMatchOnly(t *testing.T) {
	cs := NewContentStore()
	cs.Add(&defn.Content{NameV: defn.NameFromString("/a/x/y"), PayloadV: []byte("D")}, false)

	assert.Nil(t, cs.Find(defn.NameFromString("/a/x")))
	assert.Nil(t, cs.Find(defn.NameFromString("/a")))
}

func TestContentStoreOverwriteResetsTimestamp(t *testing.T) {
	cs := NewContentStore()
	name := defn.NameFromString("/a/x")
	e1 := cs.Add(&defn.Content{NameV: name, PayloadV: []byte("old")}, false)
	e1.Timestamp = time.Now().Add(-time.Hour)
	old := e1.Timestamp

	e2 := cs.Add(&defn.Content{NameV: name, PayloadV: []byte("new")}, false)
	assert.Equal(t, 1, cs.Len())
	assert.Equal(t, []byte("new"), e2.Content.PayloadV)
	assert.True(t, e2.Timestamp.After(old))
}

func TestContentStoreStaticNeverAged(t *testing.T) {
	cs := NewContentStore()
	c := &defn.Content{NameV: defn.NameFromString("/a/x"), PayloadV: []byte("D")}
	e := cs.Add(c, true)
	e.Timestamp = time.Now().Add(-time.Hour)

	cs.AgeOut(time.Now(), 10*time.Second)
	assert.NotNil(t, cs.Find(defn.NameFromString("/a/x")))
}

func TestContentStoreAgesOutExpiredNonStatic(t *testing.T) {
	cs := NewContentStore()
	c := &defn.Content{NameV: defn.NameFromString("/a/x"), PayloadV: []byte("D")}
	e := cs.Add(c, false)
	e.Timestamp = time.Now().Add(-time.Hour)

	cs.AgeOut(time.Now(), 10*time.Second)
	assert.Nil(t, cs.Find(defn.NameFromString("/a/x")))
}

func TestContentStoreUpdateTimestampOnHit(t *testing.T) {
	cs := NewContentStore()
	c := &defn.Content{NameV: defn.NameFromString("/a/x"), PayloadV: []byte("D")}
	e := cs.Add(c, false)
	old := e.Timestamp
	time.Sleep(time.Millisecond)

	cs.UpdateTimestamp(e)
	assert.True(t, e.Timestamp.After(old))
}

func TestContentStoreRemove(t *testing.T) {
	cs := NewContentStore()
	name := defn.NameFromString("/a/x")
	cs.Add(&defn.Content{NameV: name}, false)
	cs.Remove(name)
	assert.Nil(t, cs.Find(name))
	assert.Equal(t, 0, cs.Len())
}
