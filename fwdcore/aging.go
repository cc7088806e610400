package fwdcore

import (
	"context"
	"time"

	"github.com/picn-go/icnfwd/core"
	"github.com/picn-go/icnfwd/defn"
	"github.com/picn-go/icnfwd/table"
)

// AgingConfig carries the aging driver's timing options.
type AgingConfig struct {
	CSTimeout      time.Duration
	PITTimeout     time.Duration
	PITRetransmits int
	Interval       time.Duration
}

// DefaultAgingConfig returns the documented defaults:
// cs_timeout=10s, pit_timeout=10s, pit_retransmits=3, ageing_interval=4s.
func DefaultAgingConfig() AgingConfig {
	return AgingConfig{
		CSTimeout:      10 * time.Second,
		PITTimeout:     10 * time.Second,
		PITRetransmits: 3,
		Interval:       4 * time.Second,
	}
}

// Aging periodically evicts stale Content Store and Pending Interest
// Table entries and retransmits Interests still within budget. It is
// advisory: eviction is the only externally visible consequence of
// timing, and it tolerates races with concurrent forwarding.
type Aging struct {
	fwd     *Forwarder
	cfg     AgingConfig
	toLower chan<- defn.FromFace
}

// String identifies the aging driver for logging.
func (a *Aging) String() string { return "aging" }

// NewAging constructs an aging driver. Retransmitted Interests are sent
// on toLower; the caller owns draining that channel into the link
// layer.
func NewAging(fwd *Forwarder, cfg AgingConfig, toLower chan<- defn.FromFace) *Aging {
	return &Aging{fwd: fwd, cfg: cfg, toLower: toLower}
}

// Run drives the aging loop every cfg.Interval until ctx is canceled.
func (a *Aging) Run(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.tick()
		}
	}
}

func (a *Aging) tick() {
	core.Log.Debug(a, "ageing")
	a.pitAging()
	a.csAging()
}

// pitAging implements spec.md §4.6's PIT aging rule.
func (a *Aging) pitAging() {
	now := time.Now()

	var stale []defn.Name
	var touched []*table.PITEntry

	a.fwd.PIT.Iter(func(e *table.PITEntry) {
		if now.After(e.Timestamp.Add(a.cfg.PITTimeout)) && e.Retransmits > a.cfg.PITRetransmits {
			stale = append(stale, e.Name)
			return
		}
		touched = append(touched, e)
	})

	for _, n := range stale {
		core.Log.Debug(a, "evicting PIT entry: retransmit budget exhausted", "name", n.String())
		a.fwd.PIT.Remove(n)
	}

	for _, e := range touched {
		a.fwd.PIT.Bump(e)
		if fibEntry := a.fwd.FIB.Find(e.Name, e.UsedFIB); fibEntry != nil {
			core.Log.Debug(a, "retransmitting Interest", "name", e.Name.String(), "face", fibEntry.FaceID)
			if a.toLower != nil {
				a.toLower <- defn.FromFace{
					FaceID: fibEntry.FaceID,
					Packet: defn.Packet{Interest: e.Interest},
				}
			}
		}
	}
}

// csAging implements spec.md §4.6's CS aging rule.
func (a *Aging) csAging() {
	a.fwd.CS.AgeOut(time.Now(), a.cfg.CSTimeout)
}
