package room

import (
	"log/slog"
	"sync"
	"time"

	"github.com/nfrund/battlehub/internal/battle"
	"github.com/nfrund/battlehub/internal/battle/events"
	"github.com/nfrund/battlehub/internal/battle/turn"
)

// DefaultIdleTimeout is the battle room's idle-destruction timer when no
// broadcast occurs, resolving spec.md §4.7's "configurable idle timeout"
// Open Question to 10 minutes (see DESIGN.md).
const DefaultIdleTimeout = 10 * time.Minute

// Terminator is the subset of *field.Field a BattleRoom needs on
// termination: stopping its turn controller's worker goroutine. Kept local
// to avoid importing internal/battle/field from the room package.
type Terminator interface {
	Stop()
}

// BattleRoom binds a Room to one running battle: both participants are
// forced to join on construction, a participant parting forfeits to their
// opponent, and the room is torn down on victory or idle timeout (spec.md
// §4.7).
type BattleRoom struct {
	*Room

	mu           sync.Mutex
	participants [2]Member
	field        Terminator
	terminated   bool

	idleTimeout time.Duration
	idleTimer   *time.Timer

	onTerminate func()
	onVictory   func(events.Victory)

	log *slog.Logger
}

// NewBattleRoom constructs a battle room, forcibly joins both participants,
// and arms the idle-destruction timer. idleTimeout <= 0 disables the timer.
func NewBattleRoom(id int32, name string, participantA, participantB Member, idleTimeout time.Duration) *BattleRoom {
	br := &BattleRoom{
		Room:         New(id, name, "battle"),
		participants: [2]Member{participantA, participantB},
		idleTimeout:  idleTimeout,
		log:          slog.Default().With("room_id", id),
	}
	br.Room.SetInitialFlags(br.initialFlags)
	br.Room.SetPartHook(br.onPart)

	br.Room.Join(participantA)
	br.Room.Join(participantB)
	br.armIdleTimer()
	return br
}

// Bind attaches the running battle so Terminate can stop its worker. Called
// once the field has been constructed against this room's Emitter.
func (br *BattleRoom) Bind(field Terminator) {
	br.mu.Lock()
	defer br.mu.Unlock()
	br.field = field
}

// SetOnTerminate registers a callback invoked once, after the field has been
// stopped, when this battle room tears down — the module layer uses it to
// publish a lifecycle event and drop the session from its registry.
func (br *BattleRoom) SetOnTerminate(fn func()) {
	br.mu.Lock()
	defer br.mu.Unlock()
	br.onTerminate = fn
}

// SetOnVictory registers a callback invoked synchronously when a Victory
// event is broadcast, before the asynchronous Terminate begins — the module
// layer uses it to publish a lifecycle event carrying the winner.
func (br *BattleRoom) SetOnVictory(fn func(events.Victory)) {
	br.mu.Lock()
	defer br.mu.Unlock()
	br.onVictory = fn
}

// initialFlags grants OP|PROTECTED to the two forced participants and
// nothing to spectators who join afterward (spec.md §4.2's battle-channel
// specialization).
func (br *BattleRoom) initialFlags(m Member) Flags {
	if m == br.participants[0] || m == br.participants[1] {
		return FlagOp | FlagProtected
	}
	return 0
}

// onPart declares victory for the opposing party when a participant leaves
// before the battle ends (spec.md §4.2 "if the leaver was a participant,
// declare victory for the opposing party").
func (br *BattleRoom) onPart(m Member) {
	br.mu.Lock()
	already := br.terminated
	br.mu.Unlock()
	if already {
		return
	}
	for i, p := range br.participants {
		if p != m {
			continue
		}
		winner := battle.Party(i).Opponent()
		br.log.Warn("participant left, declaring forfeit", "member_id", m.ID(), "winner", winner)
		br.Broadcast(events.Victory{Party: int16(winner)})
		return
	}
}

// Broadcast forwards to the embedded Room, resets the idle timer, and
// terminates the battle once a BATTLE_VICTORY has gone out — the same event
// already required to tell clients the battle is over (spec.md §4.7's
// termination-ordering rule: notify while the field handle is still live,
// then tear down).
func (br *BattleRoom) Broadcast(ev events.Event) {
	br.Room.Broadcast(ev)
	br.noteActivity()
	if victory, ok := ev.(events.Victory); ok {
		br.mu.Lock()
		onVictory := br.onVictory
		br.mu.Unlock()
		if onVictory != nil {
			onVictory(victory)
		}
		go br.Terminate()
	}
}

// ToParty privately delivers ev to the participant occupying party.
func (br *BattleRoom) ToParty(party battle.Party, ev events.Event) {
	br.noteActivity()
	m := br.participants[party]
	if m == nil {
		return
	}
	br.Room.SendTo(m, ev)
}

var _ turn.Emitter = (*BattleRoom)(nil)

func (br *BattleRoom) noteActivity() {
	if br.idleTimeout <= 0 {
		return
	}
	br.armIdleTimer()
}

func (br *BattleRoom) armIdleTimer() {
	br.mu.Lock()
	defer br.mu.Unlock()
	if br.terminated || br.idleTimeout <= 0 {
		return
	}
	if br.idleTimer != nil {
		br.idleTimer.Stop()
	}
	br.idleTimer = time.AfterFunc(br.idleTimeout, br.onIdleTimeout)
}

func (br *BattleRoom) onIdleTimeout() {
	br.log.Info("battle room idle timeout, declaring a draw")
	br.Broadcast(events.Victory{Party: -1})
}

// Terminate tears down the battle: it acquires the room lock, detaches the
// field handle, stops its worker, then lets the room itself go empty. Safe
// to call more than once or concurrently with a part-triggered forfeit.
func (br *BattleRoom) Terminate() {
	br.mu.Lock()
	if br.terminated {
		br.mu.Unlock()
		return
	}
	br.terminated = true
	f := br.field
	br.field = nil
	if br.idleTimer != nil {
		br.idleTimer.Stop()
	}
	onTerminate := br.onTerminate
	br.mu.Unlock()

	if f != nil {
		f.Stop()
	}
	br.log.Info("battle room terminated")
	if onTerminate != nil {
		onTerminate()
	}
}
