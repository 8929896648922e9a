package battle

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nfrund/battlehub/internal/battle"
	"github.com/nfrund/battlehub/internal/battle/creature"
	batdex "github.com/nfrund/battlehub/internal/battle/dex"
	"github.com/nfrund/battlehub/internal/battle/events"
	"github.com/nfrund/battlehub/internal/battle/room"
	"github.com/nfrund/battlehub/internal/battle/transport"
	"github.com/nfrund/battlehub/internal/battle/turn"
	"github.com/nfrund/battlehub/internal/pubsub"
	"github.com/nfrund/battlehub/internal/topicmgr"
)

// Lifecycle topics published to the bus, mirroring the teacher's
// damage-event topics in internal/modules/wargame/engine.go. They're also
// registered with topicmgr below so the framework's topic registry has a
// record of what this module publishes, the way the teacher's other
// modules self-document their topics.
const (
	TopicBattleCreated    = "battle.created"
	TopicBattleVictory    = "battle.victory"
	TopicBattleTerminated = "battle.terminated"
)

func registerLifecycleTopics(topics *topicmgr.Manager) {
	defs := []topicmgr.TopicConfig{
		{Name: TopicBattleCreated, Module: "battle", Scope: topicmgr.ScopeModule,
			Description: "Published when a new battle session starts.", Example: "battle.created"},
		{Name: TopicBattleVictory, Module: "battle", Scope: topicmgr.ScopeModule,
			Description: "Published when a battle reaches a decisive victor.", Example: "battle.victory"},
		{Name: TopicBattleTerminated, Module: "battle", Scope: topicmgr.ScopeModule,
			Description: "Published when a battle room is torn down.", Example: "battle.terminated"},
	}
	for _, cfg := range defs {
		if err := topics.ValidateAndRegister(topicmgr.DefineModule(cfg)); err != nil {
			slog.Default().Warn("battle lifecycle topic registration failed", "topic", cfg.Name, "error", err)
		}
	}
}

// Manager tracks every live Session and routes inbound client frames
// (SubmitOrder/CancelOrder) from both transports to the right battle,
// grounded on the teacher's internal/hub.Hub owning the membership the
// bridges feed into.
type Manager struct {
	dex       batdex.Dex
	publisher pubsub.Publisher
	log       *slog.Logger
	topics    *topicmgr.Manager

	turnIdleTimeout time.Duration
	roomIdleTimeout time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session     // battle uuid -> session
	members  map[string]*memberRoute // connection id -> routing info
}

type memberRoute struct {
	session *Session
	party   battle.Party
}

// NewManager constructs an empty manager. turnIdleTimeout is the per-round
// client idle timer (spec.md §7); roomIdleTimeout is the room-level idle
// timer checked once the battle goes quiet.
func NewManager(dexImpl batdex.Dex, publisher pubsub.Publisher, turnIdleTimeout, roomIdleTimeout time.Duration) *Manager {
	topics := topicmgr.NewManager()
	registerLifecycleTopics(topics)
	return &Manager{
		dex:             dexImpl,
		publisher:       publisher,
		turnIdleTimeout: turnIdleTimeout,
		roomIdleTimeout: roomIdleTimeout,
		log:             slog.Default().With("component", "battle.manager"),
		topics:          topics,
		sessions:        map[string]*Session{},
		members:         map[string]*memberRoute{},
	}
}

// CreateBattle builds a new session for two already-connected participants
// and registers its members for frame routing, per spec.md §4.2's forced
// dual-join on battle creation.
func (m *Manager) CreateBattle(ctx context.Context, generation, partySize int, factory creature.EffectFactory,
	teamA, teamB []TeamMemberSpec, participantA, participantB room.Member) (*Session, error) {

	id := uuid.New().String()
	rng := rand.New(rand.NewSource(int64(hashID(id))))

	session, err := NewSession(id, generation, partySize, m.dex, factory, teamA, teamB,
		participantA, participantB, rng, battle.PartyA, m.turnIdleTimeout, m.roomIdleTimeout)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[id] = session
	m.members[participantA.ID()] = &memberRoute{session: session, party: battle.PartyA}
	m.members[participantB.ID()] = &memberRoute{session: session, party: battle.PartyB}
	m.mu.Unlock()

	session.Room.SetOnVictory(func(events.Victory) {
		m.publish(context.Background(), TopicBattleVictory, id)
	})
	session.Room.SetOnTerminate(func() {
		m.mu.Lock()
		delete(m.sessions, id)
		delete(m.members, participantA.ID())
		delete(m.members, participantB.ID())
		m.mu.Unlock()
		m.publish(context.Background(), TopicBattleTerminated, id)
	})

	m.publish(ctx, TopicBattleCreated, id)
	m.log.Info("battle created", "battle_id", id)
	return session, nil
}

// Sessions returns a snapshot of every live battle id, for the CLI's
// "rooms list" and the module's debug route.
func (m *Manager) Sessions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// RouteFrame dispatches one decoded client frame to its battle's turn
// controller, per spec.md §4.6's HandleTurn/CancelAction entry points.
func (m *Manager) RouteFrame(cf transport.ClientFrame) {
	m.mu.RLock()
	route, ok := m.members[cf.MemberID]
	m.mu.RUnlock()
	if !ok {
		m.log.Warn("frame from unrouted member, dropping", "member_id", cf.MemberID)
		return
	}

	switch cf.Opcode {
	case transport.OpSubmitOrder:
		order, err := transport.DecodeSubmitOrder(cf.Decoder)
		if err != nil {
			m.log.Warn("malformed submit-order frame", "member_id", cf.MemberID, "error", err)
			return
		}
		turnOrder := turn.Order{
			Kind:      turn.ActionKind(order.Kind),
			MoveIndex: int(order.MoveIndex),
			Target:    int(order.Target),
		}
		if err := route.session.Field.HandleTurn(route.party, int(order.Slot), turnOrder); err != nil {
			m.log.Info("order rejected", "member_id", cf.MemberID, "error", err)
		}
	case transport.OpCancelOrder:
		route.session.Field.CancelAction(route.party)
	default:
		m.log.Warn("unknown client opcode, dropping", "member_id", cf.MemberID, "opcode", cf.Opcode)
	}
}

// Forget drops a member's routing entry once its connection has closed, so
// a reused connection id from a later battle can't accidentally land here.
func (m *Manager) Forget(memberID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.members, memberID)
}

func (m *Manager) publish(ctx context.Context, topic, battleID string) {
	if !m.topics.CheckTopicExists(topic) {
		m.log.Warn("publishing to unregistered topic", "topic", topic)
	}
	if m.publisher == nil {
		return
	}
	if err := m.publisher.Publish(ctx, pubsub.Message{
		Topic:   topic,
		Payload: []byte(battleID),
	}); err != nil {
		m.log.Warn("failed to publish battle lifecycle event", "topic", topic, "error", err)
	}
}
