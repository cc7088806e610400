package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/picn-go/icnfwd/core"
	"github.com/picn-go/icnfwd/defn"
	"github.com/picn-go/icnfwd/face"
	"github.com/picn-go/icnfwd/fwdcore"
	"github.com/picn-go/icnfwd/mgmt"
	"github.com/picn-go/icnfwd/repo"
	"github.com/picn-go/icnfwd/table"
)

// daemon owns every long-lived piece of a running forwarder: the three
// tables, the Forwarder state machine, the aging driver, the attached
// faces, the repository, and the management server.
type daemon struct {
	cfg *core.Config

	cs  *table.ContentStore
	pit *table.PIT
	fib *table.FIB
	fwd *fwdcore.Forwarder

	// facesMu guards faces and nextID: the tcp/ws/quic listeners call
	// registerFace from their own goroutines while pumpIngress (the
	// actor goroutine) and pumpRetransmits (a goroutine of its own) read
	// faces via sendTo — all concurrently with each other.
	facesMu sync.Mutex
	faces   map[defn.FaceID]face.Face
	nextID  defn.FaceID

	ingress chan defn.FromFace
	aging   *fwdcore.Aging

	store      repo.Store
	index      *repo.SQLiteIndex
	mgmtServer *mgmt.Server

	tcpListener *face.TCPListener
	wsListener  *face.WebSocketListener
	quicListener *face.QUICListener

	cancel context.CancelFunc
}

func newDaemon(cfg *core.Config) *daemon {
	cs := table.NewContentStore()
	pit := table.NewPIT()
	fib := table.NewFIB()
	fwd := fwdcore.New(cs, pit, fib)
	fwd.InterestToApp = cfg.Table.InterestToApp

	return &daemon{
		cfg:     cfg,
		cs:      cs,
		pit:     pit,
		fib:     fib,
		fwd:     fwd,
		faces:   make(map[defn.FaceID]face.Face),
		nextID:  1,
		ingress: make(chan defn.FromFace, 1024),
	}
}

func (d *daemon) String() string { return "icnfwd" }

// start brings every configured subsystem up: it opens the repository,
// seeds the Content Store, starts the aging loop, opens any configured
// faces, and starts the management server.
func (d *daemon) start() error {
	core.SetLevel(parseLevel(d.cfg.LogLvl))

	if err := d.openRepo(); err != nil {
		return fmt.Errorf("open repo: %w", err)
	}
	if d.store != nil {
		if err := repo.Seed(d.store, d.index, d.cs); err != nil {
			core.Log.Warn(d, "failed to seed content store from repository", "err", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	toLower := make(chan defn.FromFace, 256)
	agingCfg := fwdcore.AgingConfig{
		CSTimeout:      time.Duration(d.cfg.Table.CSTimeoutSec) * time.Second,
		PITTimeout:     time.Duration(d.cfg.Table.PITTimeoutSec) * time.Second,
		PITRetransmits: d.cfg.Table.PITRetransmits,
		Interval:       time.Duration(d.cfg.Table.AgeingIntervalSec) * time.Second,
	}
	d.aging = fwdcore.NewAging(d.fwd, agingCfg, toLower)
	go d.aging.Run(ctx)
	go d.pumpRetransmits(ctx, toLower)

	d.openFaces()
	go d.pumpIngress(ctx)

	if d.cfg.MgmtBind != "" {
		d.mgmtServer = mgmt.NewServer(d.cfg.MgmtBind, d.fwd)
		go d.mgmtServer.Run(ctx)
		core.Log.Info(d, "management server listening", "bind", d.cfg.MgmtBind)
	}

	return nil
}

// stop tears every subsystem back down, in roughly the reverse order
// they were started.
func (d *daemon) stop() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.tcpListener != nil {
		d.tcpListener.Close()
	}
	if d.wsListener != nil {
		d.wsListener.Close()
	}
	if d.quicListener != nil {
		d.quicListener.Close()
	}
	d.facesMu.Lock()
	faces := make([]face.Face, 0, len(d.faces))
	for _, f := range d.faces {
		faces = append(faces, f)
	}
	d.facesMu.Unlock()
	for _, f := range faces {
		f.Close()
	}
	if d.index != nil {
		_ = d.index.Close()
	}
	if d.store != nil {
		_ = d.store.Close()
	}
}

func (d *daemon) openRepo() error {
	switch d.cfg.Repo.Engine {
	case "", "memory":
		d.store = repo.NewMemoryStore()
	case "badger":
		store, err := repo.NewBadgerStore(d.cfg.Repo.Path)
		if err != nil {
			return err
		}
		d.store = store
		idx, err := repo.NewSQLiteIndex(d.cfg.Repo.Path + ".catalog.db")
		if err != nil {
			core.Log.Warn(d, "failed to open catalog index", "err", err)
		} else {
			d.index = idx
		}
	default:
		return fmt.Errorf("unknown repo engine %q", d.cfg.Repo.Engine)
	}
	return nil
}

// openFaces starts every listener named in the configuration. No
// dial-out faces are opened, here or by the management server; this
// daemon only accepts.
func (d *daemon) openFaces() {
	if bind := d.cfg.Faces.TCPBind; bind != "" {
		d.tcpListener = face.NewTCPListener(bind)
		go d.tcpListener.Run(func(f *face.TCPFace) { d.registerFace(f) })
	}
	if bind := d.cfg.Faces.WebSocketBind; bind != "" {
		ln, err := face.NewWebSocketListener(face.WebSocketListenerConfig{
			Bind:    bind,
			TLSCert: d.cfg.Faces.TLSCert,
			TLSKey:  d.cfg.Faces.TLSKey,
			OnAccept: func(f *face.WebSocketFace) { d.registerFace(f) },
		})
		if err != nil {
			core.Log.Error(d, "failed to configure WebSocket listener", "err", err)
		} else {
			d.wsListener = ln
			go d.wsListener.Run()
		}
	}
	if bind := d.cfg.Faces.QUICBind; bind != "" && d.cfg.Faces.TLSCert != "" {
		ln, err := face.NewQUICListener(bind, d.cfg.Faces.TLSCert, d.cfg.Faces.TLSKey)
		if err != nil {
			core.Log.Error(d, "failed to configure QUIC listener", "err", err)
		} else {
			d.quicListener = ln
			go d.quicListener.Run(func(f *face.QUICFace) { d.registerFace(f) })
		}
	}
}

func (d *daemon) registerFace(f face.Face) {
	d.facesMu.Lock()
	id := d.nextID
	d.nextID++
	f.SetID(id)
	d.faces[id] = f
	d.facesMu.Unlock()

	core.Log.Info(d, "registered face", "face", f.String())
	go f.Run(d.ingress)
}

// pumpIngress is the single logical actor spec.md §5 requires: every
// packet arriving from any face is processed by the Forwarder one at a
// time, serialized through this one goroutine.
func (d *daemon) pumpIngress(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ff := <-d.ingress:
			out := d.fwd.OnIngress(ff.FaceID, ff.Packet)
			d.emit(out)
		}
	}
}

// pumpRetransmits forwards PIT-aging-driven retransmissions produced by
// the aging loop onto the appropriate face. It runs on its own goroutine,
// concurrently with pumpIngress; sendTo's facesMu is what keeps the two
// from racing on the shared face table.
func (d *daemon) pumpRetransmits(ctx context.Context, toLower <-chan defn.FromFace) {
	for {
		select {
		case <-ctx.Done():
			return
		case ff := <-toLower:
			d.sendTo(ff.FaceID, ff.Packet)
		}
	}
}

func (d *daemon) emit(out fwdcore.Outcome) {
	for _, e := range out {
		if e.ToApp {
			// No application face is wired into this daemon; app-bound
			// emissions are logged rather than silently dropped.
			core.Log.Debug(d, "dropping app-bound emission, no app face attached", "face", e.FaceID)
			continue
		}
		d.sendTo(e.FaceID, e.Packet)
	}
}

func (d *daemon) sendTo(id defn.FaceID, pkt defn.Packet) {
	d.facesMu.Lock()
	f, ok := d.faces[id]
	d.facesMu.Unlock()
	if !ok {
		core.Log.Warn(d, "dropping emission for unknown face", "face", id)
		return
	}
	if err := f.Send(pkt); err != nil {
		core.Log.Warn(d, "send failed", "face", id, "err", err)
	}
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
