//go:build !tinygo

package face

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/picn-go/icnfwd/core"
	"github.com/picn-go/icnfwd/defn"
)

// maxFrameSize bounds a single WebSocket message, guarding against a
// misbehaving browser client that never sends a terminated TLV block.
const maxFrameSize = 1 << 20

// WebSocketFace communicates with a browser or other WebSocket-capable
// application. WebSocket already frames messages, so unlike TCPFace it
// needs no explicit length delimiting.
type WebSocketFace struct {
	base
	conn *websocket.Conn
}

// NewWebSocketFace wraps an already-upgraded WebSocket connection.
func NewWebSocketFace(conn *websocket.Conn) *WebSocketFace {
	return &WebSocketFace{conn: conn}
}

func (f *WebSocketFace) String() string {
	return fmt.Sprintf("web-socket-face (faceid=%d, remote=%s)", f.ID(), f.conn.RemoteAddr())
}

// Send writes pkt as a single binary WebSocket message.
func (f *WebSocketFace) Send(pkt defn.Packet) error {
	wire, err := encodePacket(pkt)
	if err != nil {
		return err
	}
	return f.conn.WriteMessage(websocket.BinaryMessage, wire)
}

// Run reads binary messages until the connection closes. Non-binary
// messages and oversized frames are logged and skipped rather than
// treated as a fatal transport error.
func (f *WebSocketFace) Run(recv chan<- defn.FromFace) {
	f.running.Store(true)
	defer f.Close()

	for f.IsRunning() {
		mt, message, err := f.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				core.Log.Info(f, "WebSocket closed unexpectedly", "err", err)
			}
			return
		}
		if mt != websocket.BinaryMessage {
			core.Log.Warn(f, "ignored non-binary WebSocket message")
			continue
		}
		if len(message) > maxFrameSize {
			core.Log.Warn(f, "dropping oversized WebSocket message")
			continue
		}
		deliverFrame(&f.base, f, message, recv)
	}
}

// Close shuts the connection down.
func (f *WebSocketFace) Close() {
	if f.running.Swap(false) {
		f.conn.Close()
	}
}

// WebSocketListenerConfig configures a WebSocketListener.
type WebSocketListenerConfig struct {
	Bind     string
	TLSCert  string
	TLSKey   string
	OnAccept func(*WebSocketFace)
}

// WebSocketListener upgrades incoming HTTP connections to WebSocket and
// hands each one off as a new WebSocketFace.
type WebSocketListener struct {
	cfg      WebSocketListenerConfig
	server   http.Server
	upgrader websocket.Upgrader
}

// NewWebSocketListener constructs a listener bound per cfg. TLS is used
// when both TLSCert and TLSKey are set.
func NewWebSocketListener(cfg WebSocketListenerConfig) (*WebSocketListener, error) {
	l := &WebSocketListener{
		cfg:    cfg,
		server: http.Server{Addr: cfg.Bind},
		upgrader: websocket.Upgrader{
			WriteBufferPool: &sync.Pool{},
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	if cfg.TLSCert != "" && cfg.TLSKey != "" {
		cert, err := tls.LoadX509KeyPair(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			return nil, fmt.Errorf("tls.LoadX509KeyPair(%s, %s): %w", cfg.TLSCert, cfg.TLSKey, err)
		}
		l.server.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
	}
	return l, nil
}

func (l *WebSocketListener) String() string {
	return fmt.Sprintf("web-socket-listener (%s)", l.cfg.Bind)
}

// Run serves HTTP(S) until Close is called.
func (l *WebSocketListener) Run() {
	l.server.Handler = http.HandlerFunc(l.handler)

	var err error
	if l.server.TLSConfig == nil {
		err = l.server.ListenAndServe()
	} else {
		err = l.server.ListenAndServeTLS("", "")
	}
	if !errors.Is(err, http.ErrServerClosed) {
		core.Log.Error(l, "WebSocket listener stopped", "err", err)
	}
}

func (l *WebSocketListener) handler(w http.ResponseWriter, r *http.Request) {
	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	face := NewWebSocketFace(conn)
	core.Log.Info(l, "accepting new WebSocket face", "remote", conn.RemoteAddr())
	if l.cfg.OnAccept != nil {
		l.cfg.OnAccept(face)
	}
}

// Close gracefully shuts the HTTP server down.
func (l *WebSocketListener) Close() {
	core.Log.Info(l, "stopping WebSocket listener")
	l.server.Shutdown(context.Background())
}
