package fwdcore

import (
	"testing"

	"github.com/picn-go/icnfwd/defn"
	"github.com/picn-go/icnfwd/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestForwarder() *Forwarder {
	fib := table.NewFIB()
	fib.Add(defn.NameFromString("/a"), 7, false)
	return New(table.NewContentStore(), table.NewPIT(), fib)
}

// Scenario 1: CS hit.
func TestScenarioCSHit(t *testing.T) {
	f := newTestForwarder()
	content := &defn.Content{NameV: defn.NameFromString("/a/x"), PayloadV: []byte("DATA")}
	f.CS.Add(content, false)

	out := f.OnIngress(3, defn.Packet{Interest: &defn.Interest{NameV: defn.NameFromString("/a/x")}})

	require.Len(t, out, 1)
	assert.Equal(t, defn.FaceID(3), out[0].FaceID)
	assert.False(t, out[0].ToApp)
	assert.Equal(t, content, out[0].Packet.Content)
	assert.Equal(t, 0, f.PIT.Len())
}

// Scenario 2: forward on FIB.
func TestScenarioForwardOnFIB(t *testing.T) {
	f := newTestForwarder()
	out := f.OnIngress(3, defn.Packet{Interest: &defn.Interest{NameV: defn.NameFromString("/a/x")}})

	require.Len(t, out, 1)
	assert.Equal(t, defn.FaceID(7), out[0].FaceID)
	assert.False(t, out[0].ToApp)

	entry := f.PIT.Find(defn.NameFromString("/a/x"))
	require.NotNil(t, entry)
	assert.Equal(t, []table.PitIncoming{{FaceID: 3, LocalApp: false}}, entry.Incoming)

	require.Len(t, entry.UsedFIB, 1)
	var usedEntry *table.FIBEntry
	for e := range entry.UsedFIB {
		usedEntry = e
	}
	assert.Equal(t, defn.FaceID(7), usedEntry.FaceID)
}

// Scenario 3: aggregation.
func TestScenarioAggregation(t *testing.T) {
	f := newTestForwarder()
	f.OnIngress(3, defn.Packet{Interest: &defn.Interest{NameV: defn.NameFromString("/a/x")}})

	out := f.OnIngress(5, defn.Packet{Interest: &defn.Interest{NameV: defn.NameFromString("/a/x")}})
	assert.Empty(t, out)

	entry := f.PIT.Find(defn.NameFromString("/a/x"))
	require.NotNil(t, entry)
	assert.Equal(t, []table.PitIncoming{
		{FaceID: 3, LocalApp: false},
		{FaceID: 5, LocalApp: false},
	}, entry.Incoming)
}

// Scenario 4: Content satisfies both.
func TestScenarioContentSatisfiesBoth(t *testing.T) {
	f := newTestForwarder()
	f.OnIngress(3, defn.Packet{Interest: &defn.Interest{NameV: defn.NameFromString("/a/x")}})
	f.OnIngress(5, defn.Packet{Interest: &defn.Interest{NameV: defn.NameFromString("/a/x")}})

	content := &defn.Content{NameV: defn.NameFromString("/a/x"), PayloadV: []byte("D")}
	out := f.OnIngress(7, defn.Packet{Content: content})

	require.Len(t, out, 2)
	faces := map[defn.FaceID]bool{}
	for _, e := range out {
		assert.False(t, e.ToApp)
		assert.Equal(t, content, e.Packet.Content)
		faces[e.FaceID] = true
	}
	assert.True(t, faces[3] && faces[5])

	assert.Equal(t, 0, f.PIT.Len())
	assert.NotNil(t, f.CS.Find(defn.NameFromString("/a/x")))
}

// Scenario 5: no route -> Nack.
func TestScenarioNoRouteNack(t *testing.T) {
	f := newTestForwarder()
	out := f.OnIngress(3, defn.Packet{Interest: &defn.Interest{NameV: defn.NameFromString("/b/y")}})

	require.Len(t, out, 1)
	assert.Equal(t, defn.FaceID(3), out[0].FaceID)
	require.NotNil(t, out[0].Packet.Nack)
	assert.Equal(t, defn.NackNoRoute, out[0].Packet.Nack.ReasonV)
	assert.Equal(t, 0, f.PIT.Len())
}

// Scenario 6: Nack failover.
func TestScenarioNackFailover(t *testing.T) {
	fib := table.NewFIB()
	fib.Add(defn.NameFromString("/a"), 7, false)
	fib.Add(defn.NameFromString("/a"), 8, false)
	f := New(table.NewContentStore(), table.NewPIT(), fib)

	out := f.OnIngress(3, defn.Packet{Interest: &defn.Interest{NameV: defn.NameFromString("/a/x")}})
	require.Len(t, out, 1)
	assert.Equal(t, defn.FaceID(7), out[0].FaceID)

	nack := &defn.Nack{NameV: defn.NameFromString("/a/x"), ReasonV: defn.NackNoRoute}
	out = f.OnIngress(7, defn.Packet{Nack: nack})
	require.Len(t, out, 1)
	assert.Equal(t, defn.FaceID(8), out[0].FaceID)
	require.NotNil(t, out[0].Packet.Interest)

	entry := f.PIT.Find(defn.NameFromString("/a/x"))
	require.NotNil(t, entry)
	assert.Len(t, entry.UsedFIB, 2)
}

func TestNackDropsWhenNoPITEntry(t *testing.T) {
	f := newTestForwarder()
	nack := &defn.Nack{NameV: defn.NameFromString("/a/x"), ReasonV: defn.NackNoRoute}
	out := f.OnIngress(3, defn.Packet{Nack: nack})
	assert.Nil(t, out)
}

func TestContentDropsWhenUnsolicited(t *testing.T) {
	f := newTestForwarder()
	out := f.OnIngress(3, defn.Packet{Content: &defn.Content{NameV: defn.NameFromString("/a/x")}})
	assert.Nil(t, out)
	assert.Equal(t, 0, f.CS.Len(), "unsolicited Content must not be admitted to CS")
}

func TestNackTerminalWithMixedAppAndNetworkWaiters(t *testing.T) {
	f := New(table.NewContentStore(), table.NewPIT(), table.NewFIB())
	name := defn.NameFromString("/a/x")
	interest := &defn.Interest{NameV: name}
	f.PIT.Add(name, 3, interest, false) // network waiter
	f.PIT.Add(name, 9, interest, true)  // app waiter

	out := f.OnIngress(1, defn.Packet{Nack: &defn.Nack{NameV: name, ReasonV: defn.NackNoRoute}})

	require.Len(t, out, 1)
	assert.True(t, out[0].ToApp)
	assert.Equal(t, defn.FaceID(9), out[0].FaceID)

	entry := f.PIT.Find(name)
	require.NotNil(t, entry, "entry must be preserved for the remaining network waiter")
	assert.Equal(t, []table.PitIncoming{{FaceID: 3, LocalApp: false}}, entry.Incoming)
}

func TestInterestToAppPuntsBeforeFIB(t *testing.T) {
	f := newTestForwarder()
	f.InterestToApp = true
	f.HasApp = true

	out := f.OnIngress(3, defn.Packet{Interest: &defn.Interest{NameV: defn.NameFromString("/a/x")}})
	require.Len(t, out, 1)
	assert.True(t, out[0].ToApp)
	require.NotNil(t, out[0].Packet.Interest)

	entry := f.PIT.Find(defn.NameFromString("/a/x"))
	require.NotNil(t, entry)
	assert.Empty(t, entry.UsedFIB, "punted Interests never touch the FIB")
}
