// Package fwdcore implements the Forwarder state machine: the
// stateless-per-packet logic that consults the Content Store, Pending
// Interest Table, and Forwarding Information Base to route Interest,
// Content, and Nack packets, per spec.md §4.5.
package fwdcore

import (
	"fmt"

	"github.com/picn-go/icnfwd/core"
	"github.com/picn-go/icnfwd/defn"
	"github.com/picn-go/icnfwd/table"
)

// Emission is a single packet this core wants delivered, either to a
// network face (ToApp=false) or up to the local application (ToApp=true).
type Emission struct {
	FaceID defn.FaceID
	ToApp  bool
	Packet defn.Packet
}

// Outcome is everything a single call into the Forwarder produced.
type Outcome []Emission

func downward(faceID defn.FaceID, pkt defn.Packet) Emission {
	return Emission{FaceID: faceID, ToApp: false, Packet: pkt}
}

func upward(appID defn.FaceID, pkt defn.Packet) Emission {
	return Emission{FaceID: appID, ToApp: true, Packet: pkt}
}

// Forwarder owns references to the three tables and is stateless per
// call: every invocation reads and mutates only the tables, never
// internal Forwarder state, so ingress events can be processed one at a
// time by a single actor with no other synchronization (spec.md §5).
type Forwarder struct {
	CS  *table.ContentStore
	PIT *table.PIT
	FIB *table.FIB

	// InterestToApp mirrors spec.md §6's interest_to_app option: when
	// true (and HasApp is true), Interests arriving on a network face
	// are punted to the application layer instead of FIB-forwarded.
	InterestToApp bool
	// HasApp reports whether a higher (application) layer is attached
	// at all; with no app attached, InterestToApp has no effect.
	HasApp bool
}

// New constructs a Forwarder over the given tables.
func New(cs *table.ContentStore, pit *table.PIT, fib *table.FIB) *Forwarder {
	return &Forwarder{CS: cs, PIT: pit, FIB: fib}
}

// String identifies the Forwarder for logging.
func (f *Forwarder) String() string { return "forwarder" }

// OnIngress processes a packet arriving on a network face, per spec.md
// §4.5 (the "from face" case, local_app=false).
func (f *Forwarder) OnIngress(faceID defn.FaceID, pkt defn.Packet) Outcome {
	return f.dispatch(faceID, pkt, false)
}

// OnLocal processes a packet arriving from the local application face,
// per spec.md §4.5 (the "from local" case, local_app=true).
func (f *Forwarder) OnLocal(appID defn.FaceID, pkt defn.Packet) Outcome {
	return f.dispatch(appID, pkt, true)
}

func (f *Forwarder) dispatch(id defn.FaceID, pkt defn.Packet, fromLocal bool) Outcome {
	switch {
	case pkt.Interest != nil:
		return f.handleInterest(id, pkt.Interest, fromLocal)
	case pkt.Content != nil:
		return f.handleContent(id, pkt.Content, fromLocal)
	case pkt.Nack != nil:
		return f.handleNack(id, pkt.Nack, fromLocal)
	default:
		core.Log.Warn(f, "dropping empty packet")
		return nil
	}
}

// handleInterest implements spec.md §4.5.1.
func (f *Forwarder) handleInterest(id defn.FaceID, interest *defn.Interest, fromLocal bool) Outcome {
	name := interest.NameV

	// 1. CS hit.
	if entry := f.CS.Find(name); entry != nil {
		core.Log.Debug(f, "CS hit", "name", name.String())
		f.CS.UpdateTimestamp(entry)
		pkt := defn.Packet{Content: entry.Content}
		if fromLocal {
			return Outcome{upward(id, pkt)}
		}
		return Outcome{downward(id, pkt)}
	}

	// 2. PIT hit: aggregate.
	if entry := f.PIT.Find(name); entry != nil {
		core.Log.Debug(f, "PIT hit, aggregating", "name", name.String())
		f.PIT.UpdateTimestamp(entry)
		f.PIT.Add(name, id, interest, fromLocal)
		return nil
	}

	// 3. App punt.
	if !fromLocal && f.InterestToApp && f.HasApp {
		core.Log.Debug(f, "punting Interest to app", "name", name.String())
		f.PIT.Add(name, id, interest, fromLocal)
		return Outcome{upward(id, defn.Packet{Interest: interest})}
	}

	// 4. FIB lookup.
	if fibEntry := f.FIB.Find(name, nil); fibEntry != nil {
		core.Log.Debug(f, "forwarding via FIB", "name", name.String(), "face", fibEntry.FaceID)
		f.PIT.Add(name, id, interest, fromLocal)
		f.PIT.AddUsedFIB(name, fibEntry)
		return Outcome{downward(fibEntry.FaceID, defn.Packet{Interest: interest})}
	}

	// 5. No route.
	core.Log.Info(f, "no FIB entry, sending Nack", "name", name.String())
	nack := &defn.Nack{NameV: name, ReasonV: defn.NackNoRoute, InterestV: interest}
	if fromLocal {
		return Outcome{upward(id, defn.Packet{Nack: nack})}
	}
	return Outcome{downward(id, defn.Packet{Nack: nack})}
}

// handleContent implements spec.md §4.5.2. The arriving face/app id is
// not used; recipients come entirely from the PIT entry's incoming list.
func (f *Forwarder) handleContent(_ defn.FaceID, content *defn.Content, _ bool) Outcome {
	name := content.NameV
	entry := f.PIT.Find(name)
	if entry == nil {
		core.Log.Debug(f, "unsolicited Content, dropping", "name", name.String())
		return nil
	}

	out := make(Outcome, 0, len(entry.Incoming))
	for _, in := range entry.Incoming {
		pkt := defn.Packet{Content: content}
		if in.LocalApp {
			out = append(out, upward(in.FaceID, pkt))
		} else {
			out = append(out, downward(in.FaceID, pkt))
		}
	}

	// All recipients are notified (built above) before the PIT entry is
	// removed, per spec.md §4.5.2's ordering requirement.
	f.PIT.Remove(name)
	f.CS.Add(content, false)
	return out
}

// handleNack implements spec.md §4.5.3.
func (f *Forwarder) handleNack(_ defn.FaceID, nack *defn.Nack, _ bool) Outcome {
	name := nack.NameV
	entry := f.PIT.Find(name)
	if entry == nil {
		core.Log.Debug(f, "unsolicited Nack, dropping", "name", name.String())
		return nil
	}

	if fibEntry := f.FIB.Find(name, entry.UsedFIB); fibEntry != nil {
		core.Log.Debug(f, "Nack failover", "name", name.String(), "face", fibEntry.FaceID)
		f.PIT.AddUsedFIB(name, fibEntry)
		return Outcome{downward(fibEntry.FaceID, defn.Packet{Interest: entry.Interest})}
	}

	// No failover available: the request has truly failed.
	hasAppWaiter := false
	for _, in := range entry.Incoming {
		if in.LocalApp {
			hasAppWaiter = true
			break
		}
	}

	if !hasAppWaiter {
		core.Log.Info(f, "Nack terminal, notifying all waiters", "name", name.String())
		out := make(Outcome, 0, len(entry.Incoming))
		for _, in := range entry.Incoming {
			out = append(out, downward(in.FaceID, defn.Packet{Nack: nack}))
		}
		f.PIT.Remove(name)
		return out
	}

	// At least one app waiter: deliver the Nack upward only, then
	// preserve the entry (minus its app recipients) so that an eventual
	// Content can still satisfy the remaining network waiters.
	core.Log.Info(f, "Nack terminal for app waiters, preserving entry for network waiters", "name", name.String())
	var out Outcome
	remaining := entry.Incoming[:0]
	for _, in := range entry.Incoming {
		if in.LocalApp {
			out = append(out, upward(in.FaceID, defn.Packet{Nack: nack}))
		} else {
			remaining = append(remaining, in)
		}
	}
	entry.Incoming = remaining
	return out
}

var _ fmt.Stringer = (*Forwarder)(nil)
