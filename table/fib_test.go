package table

import (
	"testing"

	"github.com/picn-go/icnfwd/defn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFIBLongestPrefixMatch(t *testing.T) {
	fib := NewFIB()
	fib.Add(defn.NameFromString("/a"), 7, false)
	fib.Add(defn.NameFromString("/a/x"), 9, false)

	got := fib.Find(defn.NameFromString("/a/x/y"), nil)
	require.NotNil(t, got)
	assert.Equal(t, defn.FaceID(9), got.FaceID)
}

func TestFIBNoMatchReturnsNil(t *testing.T) {
	fib := NewFIB()
	fib.Add(defn.NameFromString("/a"), 7, false)
	assert.Nil(t, fib.Find(defn.NameFromString("/b/y"), nil))
}

func TestFIBTieBrokenByInsertionOrder(t *testing.T) {
	fib := NewFIB()
	first := fib.Add(defn.NameFromString("/a"), 7, false)
	fib.Add(defn.NameFromString("/a"), 8, false)

	got := fib.Find(defn.NameFromString("/a/x"), nil)
	assert.Same(t, first, got)
}

func TestFIBFindExcludesAlreadyUsed(t *testing.T) {
	fib := NewFIB()
	e1 := fib.Add(defn.NameFromString("/a"), 7, false)
	e2 := fib.Add(defn.NameFromString("/a"), 8, false)

	used := map[*FIBEntry]struct{}{e1: {}}
	got := fib.Find(defn.NameFromString("/a/x"), used)
	assert.Same(t, e2, got)

	used[e2] = struct{}{}
	assert.Nil(t, fib.Find(defn.NameFromString("/a/x"), used))
}

func TestFIBRemove(t *testing.T) {
	fib := NewFIB()
	fib.Add(defn.NameFromString("/a"), 7, false)
	fib.Remove(defn.NameFromString("/a"))
	assert.Equal(t, 0, fib.Len())
	assert.Nil(t, fib.Find(defn.NameFromString("/a/x"), nil))
}
