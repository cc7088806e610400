//go:build !tinygo

package face

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"

	"github.com/picn-go/icnfwd/core"
	"github.com/picn-go/icnfwd/defn"
	"github.com/quic-go/quic-go"
)

// alpn is the ALPN protocol identifier negotiated for this forwarder's
// QUIC faces, distinguishing them from unrelated QUIC traffic on the
// same port.
const alpn = "icnfwd/1"

// QUICFace is a unicast transport over a single bidirectional QUIC
// stream. Like TCPFace it carries a reliable ordered byte stream, so
// frames are delimited the same way, by their own TLV Type/Length.
type QUICFace struct {
	base
	conn   *quic.Conn
	stream *quic.Stream
	r      *bufio.Reader
}

func newQUICFace(conn *quic.Conn, stream *quic.Stream) *QUICFace {
	return &QUICFace{conn: conn, stream: stream, r: bufio.NewReader(stream)}
}

func (f *QUICFace) String() string {
	return fmt.Sprintf("quic-face (faceid=%d, remote=%s)", f.ID(), f.conn.RemoteAddr())
}

// Send encodes pkt and writes it to the stream.
func (f *QUICFace) Send(pkt defn.Packet) error {
	wire, err := encodePacket(pkt)
	if err != nil {
		return err
	}
	_, err = f.stream.Write(wire)
	return err
}

// Run reads TLV frames off the stream until it closes.
func (f *QUICFace) Run(recv chan<- defn.FromFace) {
	f.running.Store(true)
	defer f.running.Store(false)

	for f.IsRunning() {
		frame, err := ReadFrame(f.r)
		if err != nil {
			core.Log.Info(f, "QUIC face closed", "err", err)
			return
		}
		deliverFrame(&f.base, f, frame, recv)
	}
}

// Close tears the stream and connection down.
func (f *QUICFace) Close() {
	if f.running.Swap(false) {
		f.stream.Close()
		f.conn.CloseWithError(0, "")
	}
}

// DialQUIC opens an outgoing QUIC face to addr (host:port). insecure
// skips server certificate verification, for use with self-signed
// deployments; production use should supply a proper tls.Config instead.
func DialQUIC(ctx context.Context, addr string, insecure bool) (*QUICFace, error) {
	tlsConf := &tls.Config{NextProtos: []string{alpn}, InsecureSkipVerify: insecure}
	conn, err := quic.DialAddr(ctx, addr, tlsConf, nil)
	if err != nil {
		return nil, err
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return nil, err
	}
	return newQUICFace(conn, stream), nil
}

// QUICListener accepts incoming QUIC connections, each contributing one
// QUICFace for the first bidirectional stream it opens.
type QUICListener struct {
	bind     string
	tlsConf  *tls.Config
	listener *quic.Listener
	stopped  chan struct{}
}

// NewQUICListener constructs a QUICListener bound to addr, serving TLS
// certificate certFile/keyFile.
func NewQUICListener(bind, certFile, keyFile string) (*QUICListener, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("tls.LoadX509KeyPair(%s, %s): %w", certFile, keyFile, err)
	}
	tlsConf := &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{alpn},
	}
	return &QUICListener{bind: bind, tlsConf: tlsConf, stopped: make(chan struct{})}, nil
}

func (l *QUICListener) String() string {
	return fmt.Sprintf("quic-listener (%s)", l.bind)
}

// Run accepts connections and their first stream until Close is called,
// invoking onAccept with each newly-established QUICFace.
func (l *QUICListener) Run(onAccept func(*QUICFace)) {
	defer close(l.stopped)

	ln, err := quic.ListenAddr(l.bind, l.tlsConf, nil)
	if err != nil {
		core.Log.Error(l, "unable to start QUIC listener", "err", err)
		return
	}
	l.listener = ln

	ctx := context.Background()
	for {
		conn, err := l.listener.Accept(ctx)
		if err != nil {
			return
		}

		stream, err := conn.AcceptStream(ctx)
		if err != nil {
			core.Log.Warn(l, "unable to accept QUIC stream", "err", err)
			continue
		}

		core.Log.Info(l, "accepting new QUIC face", "remote", conn.RemoteAddr())
		onAccept(newQUICFace(conn, stream))
	}
}

// Close stops accepting new connections and waits for the accept loop to
// exit.
func (l *QUICListener) Close() {
	if l.listener != nil {
		l.listener.Close()
		<-l.stopped
	}
}
