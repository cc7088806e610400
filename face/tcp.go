package face

import (
	"bufio"
	"errors"
	"fmt"
	"net"

	"github.com/picn-go/icnfwd/core"
	"github.com/picn-go/icnfwd/defn"
)

// TCPFace is a unicast TCP transport: a reliable, ordered stream on which
// NDN-TLV frames are delimited only by their own Type/Length fields (no
// additional framing is needed, unlike UDP/WebSocket datagrams).
type TCPFace struct {
	base
	conn net.Conn
}

// NewTCPFace wraps an already-established TCP connection, either a
// listener's accepted connection or one produced by DialTCP.
func NewTCPFace(conn net.Conn) *TCPFace {
	return &TCPFace{conn: conn}
}

// DialTCP opens an outgoing unicast TCP face to addr (host:port).
func DialTCP(addr string) (*TCPFace, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewTCPFace(conn), nil
}

func (f *TCPFace) String() string {
	return fmt.Sprintf("tcp-face (faceid=%d, remote=%s)", f.ID(), f.conn.RemoteAddr())
}

// Send encodes pkt and writes it to the connection.
func (f *TCPFace) Send(pkt defn.Packet) error {
	wire, err := encodePacket(pkt)
	if err != nil {
		return err
	}
	_, err = f.conn.Write(wire)
	return err
}

// Run reads TLV frames off the connection until it closes.
func (f *TCPFace) Run(recv chan<- defn.FromFace) {
	f.running.Store(true)
	defer f.running.Store(false)

	r := bufio.NewReader(f.conn)
	for f.IsRunning() {
		frame, err := ReadFrame(r)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				core.Log.Info(f, "TCP face closed", "err", err)
			}
			return
		}
		deliverFrame(&f.base, f, frame, recv)
	}
}

// Close tears down the underlying connection.
func (f *TCPFace) Close() {
	if f.running.Swap(false) {
		f.conn.Close()
	}
}

// TCPListener accepts incoming unicast TCP connections and hands each one
// off to onAccept as a new TCPFace, mirroring the teacher's accept-loop
// shape but without the richer face-management bookkeeping (canonical
// URIs, persistency, NDNLP link services) that sits outside this
// forwarder's scope.
type TCPListener struct {
	bind     string
	listener net.Listener
	stopped  chan struct{}
}

// NewTCPListener constructs a TCPListener bound to addr (host:port).
func NewTCPListener(bind string) *TCPListener {
	return &TCPListener{bind: bind, stopped: make(chan struct{})}
}

func (l *TCPListener) String() string {
	return fmt.Sprintf("tcp-listener (%s)", l.bind)
}

// Run accepts connections until Close is called, invoking onAccept with
// each newly-established TCPFace.
func (l *TCPListener) Run(onAccept func(*TCPFace)) {
	defer close(l.stopped)

	ln, err := net.Listen("tcp", l.bind)
	if err != nil {
		core.Log.Error(l, "unable to start TCP listener", "err", err)
		return
	}
	l.listener = ln

	for {
		conn, err := l.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			core.Log.Warn(l, "unable to accept connection", "err", err)
			continue
		}

		core.Log.Info(l, "accepting new TCP face", "remote", conn.RemoteAddr())
		onAccept(NewTCPFace(conn))
	}
}

// Close stops accepting new connections and waits for the accept loop to
// exit.
func (l *TCPListener) Close() {
	if l.listener != nil {
		l.listener.Close()
		<-l.stopped
	}
}
