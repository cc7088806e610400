package table

import (
	"testing"
	"time"

	"github.com/picn-go/icnfwd/defn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPITAddCreatesEntry(t *testing.T) {
	pit := NewPIT()
	name := defn.NameFromString("/a/x")
	interest := &defn.Interest{NameV: name}

	e := pit.Add(name, 3, interest, false)
	assert.Equal(t, 0, e.Retransmits)
	assert.Equal(t, []PitIncoming{{FaceID: 3, LocalApp: false}}, e.Incoming)
	assert.Empty(t, e.UsedFIB)
}

func TestPITAtMostOneEntryPerName(t *testing.T) {
	pit := NewPIT()
	name := defn.NameFromString("/a/x")
	interest := &defn.Interest{NameV: name}

	e1 := pit.Add(name, 3, interest, false)
	e2 := pit.Add(name, 5, interest, false)
	assert.Same(t, e1, e2)
	assert.Equal(t, 1, pit.Len())
}

func TestPITAggregationDeduplicatesSameFace(t *testing.T) {
	pit := NewPIT()
	name := defn.NameFromString("/a/x")
	interest := &defn.Interest{NameV: name}

	pit.Add(name, 3, interest, false)
	pit.Add(name, 3, interest, false) // same (face, local_app) pair
	e := pit.Find(name)
	assert.Len(t, e.Incoming, 1)
}

func TestPITAggregationDoesNotResetTimestampOrRetransmits(t *testing.T) {
	pit := NewPIT()
	name := defn.NameFromString("/a/x")
	interest := &defn.Interest{NameV: name}

	e := pit.Add(name, 3, interest, false)
	e.Retransmits = 2
	before := e.Timestamp

	pit.Add(name, 5, interest, false)
	assert.Equal(t, 2, e.Retransmits)
	assert.Equal(t, before, e.Timestamp)
	assert.Len(t, e.Incoming, 2)
}

func TestPITUsedFIBGrowsMonotonically(t *testing.T) {
	pit := NewPIT()
	name := defn.NameFromString("/a/x")
	interest := &defn.Interest{NameV: name}
	pit.Add(name, 3, interest, false)

	f1 := &FIBEntry{FaceID: 7}
	f2 := &FIBEntry{FaceID: 8}
	pit.AddUsedFIB(name, f1)
	pit.AddUsedFIB(name, f2)

	e := pit.Find(name)
	require.Len(t, e.UsedFIB, 2)
	_, ok := e.UsedFIB[f1]
	assert.True(t, ok)
}

func TestPITRemove(t *testing.T) {
	pit := NewPIT()
	name := defn.NameFromString("/a/x")
	pit.Add(name, 3, &defn.Interest{NameV: name}, false)
	pit.Remove(name)
	assert.Nil(t, pit.Find(name))
	assert.Equal(t, 0, pit.Len())
}

func TestPITOldestTracksLeastRecentlyActive(t *testing.T) {
	pit := NewPIT()
	n1 := defn.NameFromString("/a/1")
	n2 := defn.NameFromString("/a/2")
	pit.Add(n1, 1, &defn.Interest{NameV: n1}, false)
	time.Sleep(time.Millisecond)
	pit.Add(n2, 1, &defn.Interest{NameV: n2}, false)

	oldest := pit.Oldest()
	require.NotNil(t, oldest)
	assert.True(t, oldest.Name.Equal(n1))
}
