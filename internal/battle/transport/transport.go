// Package transport defines the wire-level message shared between the TCP
// participant transport (internal/battle/transport/tcp) and the WebSocket
// spectator transport (internal/battle/transport/ws), per SPEC_FULL.md's
// "both transports terminate at the same room.Member interface" rule
// (spec.md §6). Only the inbound, client-to-server half lives here: outbound
// events already have a home in internal/battle/events.
package transport

import (
	"github.com/nfrund/battlehub/internal/battle/codec"
)

// Client-to-server opcodes. These never appear in internal/battle/codec's
// opcode table because that table is the server's outbound event set;
// inbound commands are a disjoint, smaller vocabulary.
const (
	OpSubmitOrder byte = 20
	OpCancelOrder byte = 21
)

// ClientFrame is one decoded inbound frame plus the connection it arrived
// on, queued onto a transport's Incoming channel for the module layer to
// route into the right battle's turn.Controller.
type ClientFrame struct {
	MemberID string
	Opcode   byte
	Decoder  *codec.Decoder
}

// SubmitOrder is the decoded payload of OpSubmitOrder: byte slot, byte kind
// (0 = move, 1 = switch), byte moveIndex, byte target.
type SubmitOrder struct {
	Slot      byte
	Kind      byte
	MoveIndex byte
	Target    byte
}

// DecodeSubmitOrder reads a SubmitOrder payload off d.
func DecodeSubmitOrder(d *codec.Decoder) (SubmitOrder, error) {
	var s SubmitOrder
	var err error
	if s.Slot, err = d.Byte(); err != nil {
		return s, err
	}
	if s.Kind, err = d.Byte(); err != nil {
		return s, err
	}
	if s.MoveIndex, err = d.Byte(); err != nil {
		return s, err
	}
	if s.Target, err = d.Byte(); err != nil {
		return s, err
	}
	return s, nil
}

// EncodeSubmitOrder renders a SubmitOrder for test clients and the CLI's
// replay-scenario driver.
func EncodeSubmitOrder(s SubmitOrder) []byte {
	return codec.NewEncoder(OpSubmitOrder).
		Byte(s.Slot).Byte(s.Kind).Byte(s.MoveIndex).Byte(s.Target).Finalise()
}

// EncodeCancelOrder renders a bare OpCancelOrder frame (no payload).
func EncodeCancelOrder() []byte {
	return codec.NewEncoder(OpCancelOrder).Finalise()
}
