// Package ws is the spectator transport: browser clients upgrade to a
// WebSocket and receive the same binary codec frames participants get over
// raw TCP, grounded directly on the teacher's internal/websocket.Bridge
// (bridge.go's ClientV2, Handler, readPump, writePump) — coder/websocket,
// a registration channel and bounded per-client send queues — adapted from
// JSON/echo to the battle engine's binary frames and a plain net/http
// handler (spec.md §6's websocket carriage for observers).
package ws

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/nfrund/battlehub/internal/battle/codec"
	"github.com/nfrund/battlehub/internal/battle/room"
	"github.com/nfrund/battlehub/internal/battle/transport"
)

const sendBufferSize = 256

// Bridge upgrades incoming HTTP requests to WebSocket spectator connections
// and decodes inbound frames onto a single shared channel.
type Bridge struct {
	incoming chan transport.ClientFrame
	log      *slog.Logger
}

// NewBridge constructs a spectator bridge.
func NewBridge() *Bridge {
	return &Bridge{
		incoming: make(chan transport.ClientFrame, 256),
		log:      slog.Default().With("transport", "ws"),
	}
}

// Incoming returns the channel of decoded client frames.
func (b *Bridge) Incoming() <-chan transport.ClientFrame { return b.incoming }

// Handler returns an http.HandlerFunc that upgrades the request and invokes
// onAccept with the new connection so the caller can join it to a room.
func (b *Bridge) Handler(onAccept func(*Conn)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true, // spectators are unauthenticated observers; see DESIGN.md
		})
		if err != nil {
			b.log.Error("websocket upgrade failed", "error", err)
			return
		}

		c := &Conn{
			id:       uuid.New().String(),
			conn:     wsConn,
			send:     make(chan []byte, sendBufferSize),
			incoming: b.incoming,
			log:      b.log,
		}
		onAccept(c)
		go c.writePump()
		go c.readPump()
	}
}

// Conn wraps one spectator's websocket connection and satisfies room.Member.
type Conn struct {
	id       string
	conn     *websocket.Conn
	send     chan []byte
	incoming chan<- transport.ClientFrame
	log      *slog.Logger

	closeOnce sync.Once
}

var _ room.Member = (*Conn)(nil)

// ID returns the connection's generated identity.
func (c *Conn) ID() string { return c.id }

// Send queues frame for delivery without blocking.
func (c *Conn) Send(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Close tears down the websocket connection exactly once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
		c.conn.Close(websocket.StatusNormalClosure, "room closed")
	})
}

func (c *Conn) readPump() {
	defer func() {
		c.conn.Close(websocket.StatusNormalClosure, "client disconnected")
	}()
	for {
		_, message, err := c.conn.Read(context.Background())
		if err != nil {
			c.log.Info("spectator connection closed", "member_id", c.id, "error", err)
			return
		}
		dec, err := codec.ReadFrame(bytes.NewReader(message))
		if err != nil {
			c.log.Warn("malformed spectator frame, dropping", "member_id", c.id, "error", err)
			continue
		}
		c.incoming <- transport.ClientFrame{MemberID: c.id, Opcode: dec.Opcode(), Decoder: dec}
	}
}

func (c *Conn) writePump() {
	defer func() {
		c.conn.Close(websocket.StatusNormalClosure, "server shutdown")
	}()
	for frame := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := c.conn.Write(ctx, websocket.MessageBinary, frame)
		cancel()
		if err != nil {
			c.log.Warn("spectator write failed", "member_id", c.id, "error", err)
			return
		}
	}
}
