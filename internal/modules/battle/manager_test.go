package battle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/battlehub/internal/battle/transport"
	"github.com/nfrund/battlehub/internal/pubsub"
)

type recordingPublisher struct {
	messages []pubsub.Message
}

func (p *recordingPublisher) Publish(ctx context.Context, msg pubsub.Message) error {
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestManager_CreateBattle_RegistersSessionAndMembers(t *testing.T) {
	pub := &recordingPublisher{}
	mgr := NewManager(SeedDex(), pub, 0, time.Minute)

	teamA, teamB := DemoTeams()
	a := discardTestMember{id: "member-a"}
	b := discardTestMember{id: "member-b"}

	session, err := mgr.CreateBattle(context.Background(), 3, 1, noopFactory{}, teamA, teamB, a, b)
	require.NoError(t, err)
	require.NotNil(t, session)

	ids := mgr.Sessions()
	assert.Contains(t, ids, session.ID)

	found := false
	for _, msg := range pub.messages {
		if msg.Topic == TopicBattleCreated {
			found = true
		}
	}
	assert.True(t, found, "expected a battle.created publish")
}

func TestManager_RouteFrame_UnknownMemberIsDropped(t *testing.T) {
	mgr := NewManager(SeedDex(), nil, 0, time.Minute)
	assert.NotPanics(t, func() {
		mgr.RouteFrame(transport.ClientFrame{MemberID: "nonexistent-member", Opcode: transport.OpCancelOrder})
	})
}
