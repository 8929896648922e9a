// Package tcp is the participant transport: a raw net.Listener speaking the
// binary framed codec protocol end to end, grounded on the teacher's
// internal/websocket.Bridge read/write-pump pair (bridge.go's ClientV2,
// readPump, writePump) but carrying internal/battle/codec frames over a
// plain net.Conn instead of a websocket.Conn, per SPEC_FULL.md's "External
// Interfaces" note that participants get the lower-latency raw socket while
// spectators get the browser-friendly websocket.
package tcp

import (
	"context"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/nfrund/battlehub/internal/battle/codec"
	"github.com/nfrund/battlehub/internal/battle/room"
	"github.com/nfrund/battlehub/internal/battle/transport"
)

// sendBufferSize is the per-connection outbound queue depth before Room
// treats a connection as a slow consumer and drops it.
const sendBufferSize = 256

// Listener accepts participant connections and decodes inbound frames onto
// a single shared channel for the module layer to route.
type Listener struct {
	addr     string
	incoming chan transport.ClientFrame
	log      *slog.Logger

	mu    sync.Mutex
	ln    net.Listener
	ready chan struct{}
}

// NewListener constructs a listener bound to addr once Serve is called.
func NewListener(addr string) *Listener {
	return &Listener{
		addr:     addr,
		incoming: make(chan transport.ClientFrame, 256),
		log:      slog.Default().With("transport", "tcp"),
		ready:    make(chan struct{}),
	}
}

// Addr blocks until Serve has bound its listening socket, then returns its
// address — useful for tests that bind an ephemeral port ("127.0.0.1:0").
func (l *Listener) Addr() net.Addr {
	<-l.ready
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ln.Addr()
}

// Incoming returns the channel of decoded client frames, mirroring the
// teacher bridge's Incoming() channel.
func (l *Listener) Incoming() <-chan transport.ClientFrame { return l.incoming }

// Serve accepts connections until ctx is canceled, invoking onAccept for
// each new Conn so the caller can join it to a room.
func (l *Listener) Serve(ctx context.Context, onAccept func(*Conn)) error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.ln = ln
	l.mu.Unlock()
	close(l.ready)

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	l.log.Info("tcp transport listening", "addr", l.addr)
	for {
		nc, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				l.log.Error("accept error", "error", err)
				return err
			}
		}

		c := &Conn{
			id:       uuid.New().String(),
			conn:     nc,
			send:     make(chan []byte, sendBufferSize),
			incoming: l.incoming,
			log:      l.log,
		}
		onAccept(c)
		go c.writePump()
		go c.readPump()
	}
}

// Conn wraps one participant's raw socket and satisfies room.Member.
type Conn struct {
	id       string
	conn     net.Conn
	send     chan []byte
	incoming chan<- transport.ClientFrame
	log      *slog.Logger

	closeOnce sync.Once
}

var _ room.Member = (*Conn)(nil)

// ID returns the connection's generated identity.
func (c *Conn) ID() string { return c.id }

// Send queues frame for delivery without blocking; a full queue returns
// false so Room can drop this member.
func (c *Conn) Send(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Close tears down the connection exactly once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}

func (c *Conn) readPump() {
	defer c.Close()
	for {
		dec, err := codec.ReadFrame(c.conn)
		if err != nil {
			c.log.Info("connection read ended", "member_id", c.id, "error", err)
			return
		}
		c.incoming <- transport.ClientFrame{MemberID: c.id, Opcode: dec.Opcode(), Decoder: dec}
	}
}

func (c *Conn) writePump() {
	for frame := range c.send {
		if _, err := c.conn.Write(frame); err != nil {
			c.log.Warn("connection write failed", "member_id", c.id, "error", err)
			c.conn.Close()
			return
		}
	}
}
