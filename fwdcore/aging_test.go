package fwdcore

import (
	"testing"
	"time"

	"github.com/picn-go/icnfwd/defn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPITAgingEvictsAfterRetransmitBudget(t *testing.T) {
	f := newTestForwarder()
	name := defn.NameFromString("/a/x")
	entry := f.PIT.Add(name, 3, &defn.Interest{NameV: name}, false)
	entry.Timestamp = time.Now().Add(-time.Hour)
	entry.Retransmits = 4 // already beyond the default budget of 3

	aging := NewAging(f, AgingConfig{PITTimeout: 10 * time.Second, PITRetransmits: 3, Interval: time.Second}, nil)
	aging.pitAging()

	assert.Nil(t, f.PIT.Find(name))
}

func TestPITAgingRetransmitsWithoutMutatingUsedFIB(t *testing.T) {
	f := newTestForwarder()
	name := defn.NameFromString("/a/x")
	entry := f.PIT.Add(name, 3, &defn.Interest{NameV: name}, false)
	entry.Timestamp = time.Now().Add(-time.Hour)

	toLower := make(chan defn.FromFace, 1)
	aging := NewAging(f, AgingConfig{PITTimeout: 10 * time.Second, PITRetransmits: 3, Interval: time.Second}, toLower)
	aging.pitAging()

	require.NotNil(t, f.PIT.Find(name))
	assert.Equal(t, 1, f.PIT.Find(name).Retransmits)
	assert.Empty(t, f.PIT.Find(name).UsedFIB, "a retransmit is not a failover: used_fib must not change")

	select {
	case ff := <-toLower:
		assert.Equal(t, defn.FaceID(7), ff.FaceID)
	default:
		t.Fatal("expected a retransmitted Interest on toLower")
	}
}

func TestPITAgingRetransmitsEveryTickRegardlessOfAge(t *testing.T) {
	f := newTestForwarder()
	name := defn.NameFromString("/a/x")
	entry := f.PIT.Add(name, 3, &defn.Interest{NameV: name}, false)
	// entry.Timestamp is fresh (just added), well under PITTimeout: the
	// spec's "otherwise" branch retransmits on every tick regardless of
	// age, it does not wait for the entry to cross pit_timeout first.

	toLower := make(chan defn.FromFace, 1)
	aging := NewAging(f, AgingConfig{PITTimeout: 10 * time.Second, PITRetransmits: 3, Interval: time.Second}, toLower)
	aging.pitAging()

	require.NotNil(t, f.PIT.Find(name))
	assert.Equal(t, 1, f.PIT.Find(name).Retransmits)

	select {
	case ff := <-toLower:
		assert.Equal(t, defn.FaceID(7), ff.FaceID)
	default:
		t.Fatal("expected an immediate retransmit even though the entry is not yet past pit_timeout")
	}
}

func TestCSAgingEvictsExpiredNonStatic(t *testing.T) {
	f := newTestForwarder()
	c := &defn.Content{NameV: defn.NameFromString("/a/x"), PayloadV: []byte("D")}
	entry := f.CS.Add(c, false)
	entry.Timestamp = time.Now().Add(-time.Hour)

	aging := NewAging(f, AgingConfig{CSTimeout: 10 * time.Second, Interval: time.Second}, nil)
	aging.csAging()

	assert.Nil(t, f.CS.Find(defn.NameFromString("/a/x")))
}

func TestCSAgingPreservesStatic(t *testing.T) {
	f := newTestForwarder()
	c := &defn.Content{NameV: defn.NameFromString("/a/x"), PayloadV: []byte("D")}
	entry := f.CS.Add(c, true)
	entry.Timestamp = time.Now().Add(-time.Hour)

	aging := NewAging(f, AgingConfig{CSTimeout: 10 * time.Second, Interval: time.Second}, nil)
	aging.csAging()

	assert.NotNil(t, f.CS.Find(defn.NameFromString("/a/x")))
}
