// Package mgmt implements a local HTTP status and management surface
// over the forwarding tables, the spec.md §1 "management API" collaborator
// that sits outside the core forwarding loop. It mirrors the teacher's
// fw/mgmt dispatch-by-verb shape (cs.go, fib.go, forwarder-status.go)
// but over plain HTTP instead of local NDN Interests, since this core
// has no notion of an NDN management protocol of its own.
package mgmt

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/picn-go/icnfwd/core"
	"github.com/picn-go/icnfwd/defn"
	"github.com/picn-go/icnfwd/fwdcore"
	"github.com/picn-go/icnfwd/table"
)

var decoder = schema.NewDecoder()

// Server exposes forwarder status and table contents over HTTP, bound
// to /localhost in spirit (operators are expected to bind it to a
// loopback address; this package does not itself enforce that).
type Server struct {
	fwd    *fwdcore.Forwarder
	server http.Server
}

// NewServer constructs a management Server bound to addr, reporting on
// fwd's tables.
func NewServer(addr string, fwd *fwdcore.Forwarder) *Server {
	s := &Server{fwd: fwd}

	mux := http.NewServeMux()
	mux.HandleFunc("/status/general", s.handleGeneral)
	mux.HandleFunc("/status/fib", s.handleFIB)
	mux.HandleFunc("/status/cs", s.handleCS)
	mux.HandleFunc("/status/pit", s.handlePIT)
	s.server = http.Server{Addr: addr, Handler: mux}

	return s
}

func (s *Server) String() string { return "mgmt-server" }

// Run serves HTTP until the context is cancelled or Close is called.
func (s *Server) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		_ = s.server.Shutdown(context.Background())
	}()

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		core.Log.Error(s, "management server stopped", "err", err)
	}
}

// Close shuts the server down immediately.
func (s *Server) Close() error {
	return s.server.Close()
}

// generalStatus mirrors the teacher's mgmt.GeneralStatus dataset, pared
// down to the counters this simpler single-threaded core actually keeps.
type generalStatus struct {
	NFIBEntries int `json:"n_fib_entries"`
	NCSEntries  int `json:"n_cs_entries"`
	NPITEntries int `json:"n_pit_entries"`
}

func (s *Server) handleGeneral(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, generalStatus{
		NFIBEntries: s.fwd.FIB.Len(),
		NCSEntries:  s.fwd.CS.Len(),
		NPITEntries: s.fwd.PIT.Len(),
	})
}

// fibQuery is decoded from the request's query string via gorilla/schema,
// the pack-wide convention for binding query parameters onto a struct
// (spec.md's expanded domain stack names this pairing explicitly).
type fibQuery struct {
	Prefix string `schema:"prefix"`
}

type fibEntryView struct {
	Prefix string      `json:"prefix"`
	FaceID defn.FaceID `json:"face_id"`
	Static bool        `json:"static"`
}

func (s *Server) handleFIB(w http.ResponseWriter, r *http.Request) {
	var q fibQuery
	if err := decoder.Decode(&q, r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	prefix := defn.NameFromString(q.Prefix)
	var out []fibEntryView
	for _, e := range s.fwd.FIB.List() {
		if q.Prefix != "" && !prefix.IsPrefixOf(e.Prefix) {
			continue
		}
		out = append(out, fibEntryView{Prefix: e.Prefix.String(), FaceID: e.FaceID, Static: e.Static})
	}
	writeJSON(w, out)
}

type csQuery struct {
	Prefix string `schema:"prefix"`
}

type csEntryView struct {
	Name   string `json:"name"`
	Static bool   `json:"static"`
	Bytes  int    `json:"bytes"`
}

func (s *Server) handleCS(w http.ResponseWriter, r *http.Request) {
	var q csQuery
	if err := decoder.Decode(&q, r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	prefix := defn.NameFromString(q.Prefix)
	var out []csEntryView
	s.fwd.CS.Iter(func(e *table.CSEntry) {
		if q.Prefix != "" && !prefix.IsPrefixOf(e.Content.NameV) {
			return
		}
		out = append(out, csEntryView{
			Name:   e.Content.NameV.String(),
			Static: e.Static,
			Bytes:  len(e.Content.PayloadV),
		})
	})
	writeJSON(w, out)
}

type pitEntryView struct {
	Name        string `json:"name"`
	NIncoming   int    `json:"n_incoming"`
	Retransmits int    `json:"retransmits"`
}

func (s *Server) handlePIT(w http.ResponseWriter, r *http.Request) {
	var out []pitEntryView
	s.fwd.PIT.Iter(func(e *table.PITEntry) {
		out = append(out, pitEntryView{
			Name:        e.Name.String(),
			NIncoming:   len(e.Incoming),
			Retransmits: e.Retransmits,
		})
	})
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		core.Log.Warn(nopStringer{}, "failed to encode management response", "err", err)
	}
}

type nopStringer struct{}

func (nopStringer) String() string { return "mgmt" }
