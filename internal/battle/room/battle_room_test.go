package room

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/battlehub/internal/battle"
	"github.com/nfrund/battlehub/internal/battle/codec"
	"github.com/nfrund/battlehub/internal/battle/events"
)

type fakeTerminator struct {
	mu      sync.Mutex
	stopped bool
}

func (f *fakeTerminator) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeTerminator) wasStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

func TestBattleRoom_Construction_ForcesDualJoinWithOpAndProtected(t *testing.T) {
	a := newFakeMember("a")
	b := newFakeMember("b")
	br := NewBattleRoom(1, "battle-1", a, b, 0)

	assert.Len(t, br.Members(), 2)
	assert.Equal(t, FlagOp|FlagProtected, br.Flags(a))
	assert.Equal(t, FlagOp|FlagProtected, br.Flags(b))
}

func TestBattleRoom_ParticipantParting_DeclaresForfeitToOpponent(t *testing.T) {
	a := newFakeMember("a")
	b := newFakeMember("b")
	br := NewBattleRoom(1, "battle-1", a, b, 0)
	term := &fakeTerminator{}
	br.Bind(term)

	br.Part(a)

	require.Eventually(t, func() bool { return b.count() > 0 }, time.Second, 5*time.Millisecond)
	var sawVictory bool
	for _, frame := range b.snapshotFrames() {
		if frame[0] == byte(codec.OpBattleVictory) {
			sawVictory = true
		}
	}
	assert.True(t, sawVictory)
	require.Eventually(t, term.wasStopped, time.Second, 5*time.Millisecond)
}

func TestBattleRoom_ToParty_DeliversOnlyToThatSlot(t *testing.T) {
	a := newFakeMember("a")
	b := newFakeMember("b")
	br := NewBattleRoom(1, "battle-1", a, b, 0)

	before := b.count()
	br.ToParty(battle.PartyA, events.Victory{Party: 0})

	assert.Greater(t, a.count(), 0)
	assert.Equal(t, before, b.count())
}

func TestBattleRoom_Terminate_IsIdempotent(t *testing.T) {
	a := newFakeMember("a")
	b := newFakeMember("b")
	br := NewBattleRoom(1, "battle-1", a, b, 0)
	term := &fakeTerminator{}
	br.Bind(term)

	br.Terminate()
	br.Terminate()

	assert.True(t, term.wasStopped())
}

func TestBattleRoom_IdleTimeout_DestroysRoomWithDraw(t *testing.T) {
	a := newFakeMember("a")
	b := newFakeMember("b")
	br := NewBattleRoom(1, "battle-1", a, b, 20*time.Millisecond)
	term := &fakeTerminator{}
	br.Bind(term)

	require.Eventually(t, term.wasStopped, time.Second, 5*time.Millisecond)

	var sawDraw bool
	for _, frame := range append(a.snapshotFrames(), b.snapshotFrames()...) {
		if frame[0] == byte(codec.OpBattleVictory) {
			sawDraw = true
		}
	}
	assert.True(t, sawDraw)
}

func TestBattleRoom_Terminate_InvokesOnTerminateAfterFieldStopped(t *testing.T) {
	a := newFakeMember("a")
	b := newFakeMember("b")
	br := NewBattleRoom(1, "battle-1", a, b, 0)
	term := &fakeTerminator{}
	br.Bind(term)

	var called bool
	br.SetOnTerminate(func() {
		assert.True(t, term.wasStopped())
		called = true
	})

	br.Terminate()
	assert.True(t, called)

	br.Terminate()
	assert.True(t, called)
}

func TestBattleRoom_Broadcast_ResetsIdleTimerOnActivity(t *testing.T) {
	a := newFakeMember("a")
	b := newFakeMember("b")
	br := NewBattleRoom(1, "battle-1", a, b, 50*time.Millisecond)
	term := &fakeTerminator{}
	br.Bind(term)

	for i := 0; i < 3; i++ {
		time.Sleep(20 * time.Millisecond)
		br.Broadcast(events.BeginTurn{TurnCount: int16(i)})
	}
	assert.False(t, term.wasStopped())
}
