// Package turn implements the per-battle turn state machine and its
// capacity-1 synchronous execution hand-off (spec.md §4.6), grounded on
// NetworkBattleImpl and original_source/src/network/ThreadedQueue.h: Post
// blocks the caller only while the worker is still busy with the prior
// batch, exactly what an unbuffered Go channel send does against a
// receiver loop.
package turn

import (
	"errors"
	"sync"
	"time"

	"github.com/nfrund/battlehub/internal/battle"
	"github.com/nfrund/battlehub/internal/battle/events"
)

// ErrIllegalOrder is returned by HandleTurn when the order itself is
// disallowed (wrong move index, vetoed, duplicate switch target, …).
var ErrIllegalOrder = errors.New("turn: illegal order")

// ErrOutOfOrder is returned when a party submits for a slot that isn't
// next in its own request list.
var ErrOutOfOrder = errors.New("turn: order submitted out of turn")

// ErrTimeoutForfeit is the error kind spec.md §7 names for a per-round idle
// timeout; the controller neither returns nor logs it (the forfeit is
// broadcast as a Victory event).
var ErrTimeoutForfeit = errors.New("turn: timeout forfeit")

// ActionKind tags a PokemonTurn's two variants (spec.md §3).
type ActionKind int

const (
	ActionMove ActionKind = iota
	ActionSwitch
)

// Order is one submitted PokemonTurn.
type Order struct {
	Party     battle.Party
	Slot      int
	Kind      ActionKind
	MoveIndex int
	Target    int // switch: bench index; move: target encoding
}

// SlotLegality is the subset of creature.LegalActions the turn controller
// needs; kept local to avoid an import of internal/battle/creature here.
type SlotLegality struct {
	SwitchLegal bool
	Moves       [4]bool
	Forced      bool
}

// Roster gives the controller read access to what each side may legally do,
// without depending on the field's full data model.
type Roster interface {
	ActiveSlots(party battle.Party) []int
	// ReplaceableSlots returns the active slots needing a replacement
	// switch during a replacement sub-round.
	ReplaceableSlots(party battle.Party) []int
	Legality(party battle.Party, slot int) SlotLegality
	BenchSize(party battle.Party) int
}

// Outcome is what executing one order batch produced.
type Outcome struct {
	Victory          bool
	Winner           int16
	NeedsReplacement bool
}

// Executor runs a resolved order batch; the battle field implements this.
type Executor interface {
	ProcessTurn(orders []Order) Outcome
	ProcessReplacements(orders []Order) Outcome
}

// Emitter delivers battle events outward; turn never touches transport.
type Emitter interface {
	Broadcast(events.Event)
	ToParty(party battle.Party, event events.Event)
}

type turnBatch struct {
	orders      map[battle.Party][]Order
	replacement bool
}

// Controller holds the per-party request/turn lists and owns the
// single-worker execution hand-off for one battle.
type Controller struct {
	mu sync.Mutex

	requestList map[battle.Party][]int
	turnList    map[battle.Party][]Order
	replacement bool
	victory     bool
	turnCount   int16

	executor Executor
	roster   Roster
	emit     Emitter

	idleTimeout time.Duration
	idleTimer   *time.Timer

	hand chan turnBatch
	done chan struct{}
}

var parties = [2]battle.Party{battle.PartyA, battle.PartyB}

// NewController wires a controller to its battle field collaborators and
// starts its dedicated execution worker goroutine. idleTimeout <= 0 disables
// the per-round forfeit timer (spec.md §7's "per-round client idle timer,
// default 150s").
func NewController(executor Executor, roster Roster, emit Emitter, idleTimeout time.Duration) *Controller {
	c := &Controller{
		requestList: map[battle.Party][]int{},
		turnList:    map[battle.Party][]Order{},
		executor:    executor,
		roster:      roster,
		emit:        emit,
		idleTimeout: idleTimeout,
		hand:        make(chan turnBatch),
		done:        make(chan struct{}),
	}
	go c.run()
	return c
}

// Stop shuts down the worker goroutine once the battle has ended.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.idleTimer != nil {
		c.idleTimer.Stop()
	}
	c.mu.Unlock()
	close(c.done)
}

// Victory reports whether the worker has recorded a terminal outcome.
func (c *Controller) Victory() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.victory
}

func (c *Controller) run() {
	for {
		select {
		case batch := <-c.hand:
			var outcome Outcome
			if batch.replacement {
				outcome = c.executor.ProcessReplacements(flatten(batch.orders))
			} else {
				outcome = c.executor.ProcessTurn(flatten(batch.orders))
			}

			if outcome.Victory {
				c.mu.Lock()
				c.victory = true
				c.mu.Unlock()
				c.emit.Broadcast(events.Victory{Party: outcome.Winner})
				continue
			}

			c.mu.Lock()
			c.replacement = outcome.NeedsReplacement
			c.mu.Unlock()

			if outcome.NeedsReplacement {
				c.requestReplacements()
			} else {
				c.BeginTurn()
			}
		case <-c.done:
			return
		}
	}
}

func flatten(orders map[battle.Party][]Order) []Order {
	out := make([]Order, 0, len(orders[battle.PartyA])+len(orders[battle.PartyB]))
	out = append(out, orders[battle.PartyA]...)
	out = append(out, orders[battle.PartyB]...)
	return out
}

// BeginTurn increments the turn counter, announces it, and opens a fresh
// request round (spec.md §4.6 beginTurn).
func (c *Controller) BeginTurn() {
	c.mu.Lock()
	c.turnCount++
	count := c.turnCount
	c.mu.Unlock()

	c.emit.Broadcast(events.BeginTurn{TurnCount: count})
	c.requestMoves()
}

func (c *Controller) requestMoves() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, party := range parties {
		c.requestList[party] = c.roster.ActiveSlots(party)
		c.turnList[party] = nil
	}
	for _, party := range parties {
		if len(c.requestList[party]) > 0 {
			c.emitNextRequestLocked(party)
		}
	}
	c.armIdleTimerLocked()
}

func (c *Controller) requestReplacements() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, party := range parties {
		c.requestList[party] = c.roster.ReplaceableSlots(party)
		c.turnList[party] = nil
	}
	for _, party := range parties {
		if len(c.requestList[party]) > 0 {
			c.emitNextRequestLocked(party)
		}
	}
	c.armIdleTimerLocked()
}

// armIdleTimerLocked (re)starts the per-round forfeit timer for the request
// round that just opened. Call with c.mu held.
func (c *Controller) armIdleTimerLocked() {
	if c.idleTimer != nil {
		c.idleTimer.Stop()
	}
	if c.idleTimeout <= 0 || c.victory {
		return
	}
	c.idleTimer = time.AfterFunc(c.idleTimeout, c.onIdleTimeout)
}

// disarmIdleTimerLocked stops the round's forfeit timer once both sides have
// submitted. Call with c.mu held.
func (c *Controller) disarmIdleTimerLocked() {
	if c.idleTimer != nil {
		c.idleTimer.Stop()
		c.idleTimer = nil
	}
}

// onIdleTimeout fires when a round's idle timer expires before both parties
// have submitted a full order batch; the silent party forfeits and the
// other is declared the winner (spec.md §7 TimeoutForfeit, §4.6 "times out
// → informVictory(opponent)").
func (c *Controller) onIdleTimeout() {
	c.mu.Lock()
	if c.victory {
		c.mu.Unlock()
		return
	}
	var loser battle.Party
	found := false
	for _, party := range parties {
		if len(c.turnList[party]) < len(c.requestList[party]) {
			loser = party
			found = true
			break
		}
	}
	if found {
		c.victory = true
	}
	c.mu.Unlock()
	if !found {
		return
	}
	c.emit.Broadcast(events.Victory{Party: int16(loser.Opponent())})
}

func (c *Controller) emitNextRequestLocked(party battle.Party) {
	idx := len(c.turnList[party])
	if idx >= len(c.requestList[party]) {
		return
	}
	slot := c.requestList[party][idx]
	legality := c.roster.Legality(party, slot)
	benchSize := c.roster.BenchSize(party)
	scheduled := c.scheduledSwitchTargetsLocked(party, benchSize)

	var switchMask uint32
	for i := 0; i < benchSize; i++ {
		if !scheduled[i] {
			switchMask |= 1 << uint(i)
		}
	}

	switchLegal := legality.SwitchLegal || c.replacement
	forced := legality.Forced && !c.replacement
	var moveMask uint8
	if !c.replacement {
		for i, ok := range legality.Moves {
			if ok {
				moveMask |= 1 << uint(i)
			}
		}
	}

	c.emit.ToParty(party, events.RequestAction{
		Slot:          byte(slot),
		Position:      byte(idx),
		Replacement:   c.replacement,
		LegalSwitches: switchMask,
		SwitchLegal:   switchLegal,
		Forced:        forced,
		LegalMoves:    moveMask,
	})
}

func (c *Controller) scheduledSwitchTargetsLocked(party battle.Party, benchSize int) []bool {
	scheduled := make([]bool, benchSize)
	for _, order := range c.turnList[party] {
		if order.Kind == ActionSwitch && order.Target >= 0 && order.Target < benchSize {
			scheduled[order.Target] = true
		}
	}
	return scheduled
}

// HandleTurn validates and records one submitted order under the battle
// lock, per spec.md §4.6.
func (c *Controller) HandleTurn(party battle.Party, slot int, order Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := len(c.turnList[party])
	if idx >= len(c.requestList[party]) || c.requestList[party][idx] != slot {
		return ErrOutOfOrder
	}
	if !c.isTurnLegalLocked(party, order) {
		return ErrIllegalOrder
	}

	order.Party = party
	c.turnList[party] = append(c.turnList[party], order)
	if len(c.turnList[party]) < len(c.requestList[party]) {
		c.emitNextRequestLocked(party)
		return nil
	}
	c.maybeExecuteTurnLocked()
	return nil
}

func (c *Controller) isTurnLegalLocked(party battle.Party, order Order) bool {
	legality := c.roster.Legality(party, order.Slot)
	switch order.Kind {
	case ActionSwitch:
		if !legality.SwitchLegal && !c.replacement {
			return false
		}
		benchSize := c.roster.BenchSize(party)
		if order.Target < 0 || order.Target >= benchSize {
			return false
		}
		return !c.scheduledSwitchTargetsLocked(party, benchSize)[order.Target]
	case ActionMove:
		if c.replacement {
			return false
		}
		if legality.Forced {
			return true
		}
		if order.MoveIndex < 0 || order.MoveIndex >= len(legality.Moves) {
			return false
		}
		return legality.Moves[order.MoveIndex]
	default:
		return false
	}
}

// CancelAction undoes the most recently submitted order for party if the
// round isn't fully submitted yet; a no-op once every order is already in
// (spec.md §4.6: "too late").
func (c *Controller) CancelAction(party battle.Party) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.turnList[party]) == 0 || len(c.turnList[party]) >= len(c.requestList[party]) {
		return
	}
	c.turnList[party] = c.turnList[party][:len(c.turnList[party])-1]
	c.emitNextRequestLocked(party)
}

// maybeExecuteTurnLocked hands the combined batch to the execution worker
// once both parties have submitted a full round. The channel send blocks
// the caller only while the worker is still busy with a prior batch.
func (c *Controller) maybeExecuteTurnLocked() {
	for _, party := range parties {
		if len(c.turnList[party]) != len(c.requestList[party]) {
			return
		}
	}

	c.disarmIdleTimerLocked()

	batch := turnBatch{
		orders:      map[battle.Party][]Order{battle.PartyA: c.turnList[battle.PartyA], battle.PartyB: c.turnList[battle.PartyB]},
		replacement: c.replacement,
	}
	for _, party := range parties {
		c.requestList[party] = nil
		c.turnList[party] = nil
	}

	c.hand <- batch
}
