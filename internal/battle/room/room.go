// Package room implements the broadcast channel (C2) and its battle-channel
// specialization (C7): membership, non-blocking fan-out, join/part
// notifications, and the forced dual-join / forfeit-on-part / idle-timeout
// lifecycle of a running battle, per spec.md §4.2 and §4.7.
//
// The fan-out loop is the same shape as the teacher's
// internal/hub.Hub.Run and internal/websocket.Bridge.Run: a
// select-default-drop send against a per-member bounded outbound queue. Here
// that loop lives inside each Member implementation (internal/battle/transport
// owns the actual channel); Room only needs to know whether a send
// succeeded, so it holds a map guarded by a sync.RWMutex rather than running
// its own goroutine.
package room

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/nfrund/battlehub/internal/battle/events"
)

// Flags are the per-member status bits spec.md §4.2 calls OP/OWNER/PROTECTED.
type Flags uint8

const (
	FlagOwner     Flags = 1 << iota // owner of the "main" channel
	FlagOp                          // battle participant: operator privileges in-room
	FlagProtected                   // battle participant: immune to ordinary kicks
)

// Has reports whether flags includes flag.
func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

// ErrAlreadyJoined is returned by Join when the member is already a room member.
var ErrAlreadyJoined = errors.New("room: already joined")

// ErrDisconnected names the condition of a member that has already been
// dropped from the room. No Room method returns it.
var ErrDisconnected = errors.New("room: member disconnected")

// Member is anything that can belong to a room. Both transports
// (internal/battle/transport/tcp and .../ws) terminate at this interface, so
// the broadcast/room layer never knows which wire format a given client
// speaks (spec.md §6).
type Member interface {
	// ID uniquely identifies the member for join/part announcements and
	// logging.
	ID() string
	// Send delivers one already-encoded wire frame to the member's outbound
	// queue. It never blocks: implementations hold their own bounded channel
	// and return false on overflow, mirroring internal/hub.Hub.Run's
	// select-default drop. A false return causes Room to drop the member.
	Send(frame []byte) bool
	// Close tears down the member's underlying transport. Called once after
	// the member has been removed from every room it belonged to.
	Close()
}

// InitialFlagsFunc computes a joining member's starting flags; the battle
// channel specialization uses this to grant OWNER/OP/PROTECTED per spec.md
// §4.2's "battle-channel specialization" rule. A plain room has none.
type InitialFlagsFunc func(m Member) Flags

// PartHook runs before a leaving member is removed from membership, so a
// specialized channel can still observe who left (spec.md §4.2 part:
// "invoke the subclass hook BEFORE removal").
type PartHook func(m Member)

// SnapshotFunc produces the room-state events delivered privately to a
// member immediately after it joins (spec.md §4.2 join: "deliver a
// room-state snapshot to the joiner").
type SnapshotFunc func(m Member) []events.Event

// Room is a broadcast channel: a unique id, membership with status flags,
// and a non-blocking fan-out broadcast.
type Room struct {
	ID    int32
	Name  string
	Topic string

	mu      sync.RWMutex
	members map[Member]Flags

	initialFlags InitialFlagsFunc
	onPart       PartHook
	snapshot     SnapshotFunc

	log *slog.Logger
}

// New constructs an empty room.
func New(id int32, name, topic string) *Room {
	return &Room{
		ID:      id,
		Name:    name,
		Topic:   topic,
		members: make(map[Member]Flags),
		log:     slog.Default().With("room_id", id),
	}
}

// SetInitialFlags installs the function used to compute a joiner's starting
// flags. Must be called before the first Join.
func (r *Room) SetInitialFlags(fn InitialFlagsFunc) { r.initialFlags = fn }

// SetPartHook installs the function run before a member is removed on part.
func (r *Room) SetPartHook(fn PartHook) { r.onPart = fn }

// SetSnapshot installs the function used to build a joiner's private
// room-state snapshot.
func (r *Room) SetSnapshot(fn SnapshotFunc) { r.snapshot = fn }

// Join adds m to the room: computes its initial flags, announces it to the
// members already present, then delivers its private snapshot (spec.md §4.2
// join). The joiner itself never receives its own join announcement.
func (r *Room) Join(m Member) (Flags, error) {
	r.mu.Lock()
	if _, ok := r.members[m]; ok {
		r.mu.Unlock()
		return 0, ErrAlreadyJoined
	}
	var flags Flags
	if r.initialFlags != nil {
		flags = r.initialFlags(m)
	}
	existing := make([]Member, 0, len(r.members))
	for other := range r.members {
		existing = append(existing, other)
	}
	r.members[m] = flags
	r.mu.Unlock()

	r.log.Info("member joined", "member_id", m.ID())
	frame := events.RoomJoin{MemberID: m.ID()}.Encode(r.ID)
	var stale []Member
	for _, other := range existing {
		if !other.Send(frame) {
			stale = append(stale, other)
		}
	}
	for _, other := range stale {
		r.dropStale(other)
	}

	if r.snapshot != nil {
		for _, ev := range r.snapshot(m) {
			r.sendTo(m, ev)
		}
	}
	return flags, nil
}

// Part removes m from the room, running the part hook first so it can
// observe the outgoing membership (spec.md §4.2 part).
func (r *Room) Part(m Member) {
	r.mu.Lock()
	_, ok := r.members[m]
	r.mu.Unlock()
	if !ok {
		return
	}

	if r.onPart != nil {
		r.onPart(m)
	}

	r.mu.Lock()
	delete(r.members, m)
	remaining := len(r.members)
	r.mu.Unlock()

	r.log.Info("member left", "member_id", m.ID(), "remaining", remaining)
	r.broadcastFrame(events.RoomPart{MemberID: m.ID()}.Encode(r.ID))
}

// Members returns a snapshot slice of current members, for callers that need
// to iterate without holding the room lock (e.g. idle-timeout sweeps).
func (r *Room) Members() []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Member, 0, len(r.members))
	for m := range r.members {
		out = append(out, m)
	}
	return out
}

// Flags returns m's current status flags, or 0 if it is not a member.
func (r *Room) Flags(m Member) Flags {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.members[m]
}

// Broadcast encodes ev once and fans it out to every member. The channel
// never blocks on a slow member; a full send queue drops that member
// (spec.md §4.2 broadcast).
func (r *Room) Broadcast(ev events.Event) {
	r.broadcastFrame(ev.Encode(r.ID))
}

// SendTo privately delivers ev to a single member.
func (r *Room) SendTo(m Member, ev events.Event) {
	r.sendTo(m, ev)
}

func (r *Room) sendTo(m Member, ev events.Event) {
	if !m.Send(ev.Encode(r.ID)) {
		r.dropStale(m)
	}
}

func (r *Room) broadcastFrame(frame []byte) {
	r.mu.RLock()
	var stale []Member
	for m := range r.members {
		if !m.Send(frame) {
			stale = append(stale, m)
		}
	}
	r.mu.RUnlock()

	for _, m := range stale {
		r.dropStale(m)
	}
}

// dropStale removes a member whose send queue overflowed, exactly as the
// teacher's internal/hub.Hub.Run treats a full channel as a hard disconnect
// rather than merely dropping the one message.
func (r *Room) dropStale(m Member) {
	r.log.Warn("member send queue full, dropping", "member_id", m.ID())
	r.Part(m)
	m.Close()
}
