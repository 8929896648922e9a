// Package events defines the domain message set emitted by the battle
// engine (spec §4.8) and encodes each one via internal/battle/codec. Shapes
// mirror the teacher's internal/modules/wargame/messages.go envelope
// approach, but on the wire every event is a binary codec frame, not JSON.
package events

import (
	"math"

	"github.com/nfrund/battlehub/internal/battle"
	"github.com/nfrund/battlehub/internal/battle/codec"
)

// Recipient says who should receive an encoded event.
type Recipient int

const (
	// RecipientBroadcast means every room member.
	RecipientBroadcast Recipient = iota
	// RecipientParticipant means a single participant's client only.
	RecipientParticipant
)

// Event is anything the battle engine emits toward the room.
type Event interface {
	// Encode renders the event as a complete wire frame, leading with the
	// int32 field (room) id every opcode in spec.md §4.8 carries.
	Encode(fieldID int32) []byte
	// Recipient says whether this event goes to everyone or one client.
	Recipient() Recipient
}

// BattleBegin is sent privately to each participant when a battle starts.
type BattleBegin struct {
	Opponent string
	Party    battle.Party
}

func (e BattleBegin) Encode(fieldID int32) []byte {
	return codec.NewEncoder(byte(codec.OpBattleBegin)).
		Int32(fieldID).
		String(e.Opponent).
		Byte(byte(e.Party)).
		Finalise()
}
func (e BattleBegin) Recipient() Recipient { return RecipientParticipant }

// PokemonSlot describes one active-slot's revealed appearance, or "none" via
// Species == -1 for a benched/fainted slot.
type PokemonSlot struct {
	Species int16 // -1 means no creature revealed in this slot
	Gender  byte
	Shiny   byte
}

// BattlePokemon reveals the species/gender/shiny grid for all active slots.
type BattlePokemon struct {
	Slots [2][]PokemonSlot // indexed by party
}

func (e BattlePokemon) Encode(fieldID int32) []byte {
	enc := codec.NewEncoder(byte(codec.OpBattlePokemon)).Int32(fieldID)
	for party := 0; party < 2; party++ {
		for _, slot := range e.Slots[party] {
			enc.Int16(slot.Species)
			if slot.Species != -1 {
				enc.Byte(slot.Gender).Byte(slot.Shiny)
			}
		}
	}
	return enc.Finalise()
}
func (e BattlePokemon) Recipient() Recipient { return RecipientBroadcast }

// Print carries a category/message-id/args textual notification, resolved
// client-side against the text table (internal/battle/dex.Dex.Text).
type Print struct {
	Category byte
	MessageID int16
	Args      []string
}

func (e Print) Encode(fieldID int32) []byte {
	enc := codec.NewEncoder(byte(codec.OpBattlePrint)).
		Int32(fieldID).
		Byte(e.Category).
		Int16(e.MessageID).
		Byte(byte(len(e.Args)))
	for _, a := range e.Args {
		enc.String(a)
	}
	return enc.Finalise()
}
func (e Print) Recipient() Recipient { return RecipientBroadcast }

// Victory announces the winning party, or -1 for a draw.
type Victory struct {
	Party int16
}

func (e Victory) Encode(fieldID int32) []byte {
	return codec.NewEncoder(byte(codec.OpBattleVictory)).Int32(fieldID).Int16(e.Party).Finalise()
}
func (e Victory) Recipient() Recipient { return RecipientBroadcast }

// UseMove announces a creature using a named move.
type UseMove struct {
	Party  battle.Party
	Slot   byte
	Name   string
	MoveID int16
}

func (e UseMove) Encode(fieldID int32) []byte {
	return codec.NewEncoder(byte(codec.OpBattleUseMove)).
		Int32(fieldID).Byte(byte(e.Party)).Byte(e.Slot).String(e.Name).Int16(e.MoveID).Finalise()
}
func (e UseMove) Recipient() Recipient { return RecipientBroadcast }

// Withdraw announces a creature being switched out.
type Withdraw struct {
	Party battle.Party
	Slot  byte
	Name  string
}

func (e Withdraw) Encode(fieldID int32) []byte {
	return codec.NewEncoder(byte(codec.OpBattleWithdraw)).
		Int32(fieldID).Byte(byte(e.Party)).Byte(e.Slot).String(e.Name).Finalise()
}
func (e Withdraw) Recipient() Recipient { return RecipientBroadcast }

// SendOut announces a creature being switched in, at a given roster index.
type SendOut struct {
	Party battle.Party
	Slot  byte
	Index byte
	Name  string
}

func (e SendOut) Encode(fieldID int32) []byte {
	return codec.NewEncoder(byte(codec.OpBattleSendOut)).
		Int32(fieldID).Byte(byte(e.Party)).Byte(e.Slot).Byte(e.Index).String(e.Name).Finalise()
}
func (e SendOut) Recipient() Recipient { return RecipientBroadcast }

// HealthChange reports a coarse health delta (-48..48) and total (0..48), per spec.md §4.8's
// leak-only-approximate-health rule.
type HealthChange struct {
	Party battle.Party
	Slot  byte
	Name  string
	Delta int16
	Total int16
}

func (e HealthChange) Encode(fieldID int32) []byte {
	return codec.NewEncoder(byte(codec.OpHealthChange)).
		Int32(fieldID).Byte(byte(e.Party)).Byte(e.Slot).String(e.Name).Int16(e.Delta).Int16(e.Total).Finalise()
}
func (e HealthChange) Recipient() Recipient { return RecipientBroadcast }

// ScaleHealthTo48 converts a raw delta or current HP value against max into
// the coarse units the wire format carries, per round(48*value/max), clamped
// to -48..48 (a negative value is a damage delta).
func ScaleHealthTo48(value, max int) int16 {
	if max <= 0 {
		return 0
	}
	scaled := int(math.Floor(48*float64(value)/float64(max) + 0.5))
	if scaled > 48 {
		scaled = 48
	}
	if scaled < -48 {
		scaled = -48
	}
	return int16(scaled)
}

// SetPP is sent only to the owning client — spec.md deliberately withholds an
// opponent's remaining PP from broadcast, so players can't count down a
// status move's uses against them.
type SetPP struct {
	Index byte
	Move  byte
	PP    byte
}

func (e SetPP) Encode(fieldID int32) []byte {
	return codec.NewEncoder(byte(codec.OpBattleSetPP)).
		Int32(fieldID).Byte(e.Index).Byte(e.Move).Byte(e.PP).Finalise()
}
func (e SetPP) Recipient() Recipient { return RecipientParticipant }

// Fainted announces a creature fainting.
type Fainted struct {
	Party battle.Party
	Slot  byte
	Name  string
}

func (e Fainted) Encode(fieldID int32) []byte {
	return codec.NewEncoder(byte(codec.OpBattleFainted)).
		Int32(fieldID).Byte(byte(e.Party)).Byte(e.Slot).String(e.Name).Finalise()
}
func (e Fainted) Recipient() Recipient { return RecipientBroadcast }

// BeginTurn announces the start of a new turn counter.
type BeginTurn struct {
	TurnCount int16
}

func (e BeginTurn) Encode(fieldID int32) []byte {
	return codec.NewEncoder(byte(codec.OpBattleBeginTurn)).Int32(fieldID).Int16(e.TurnCount).Finalise()
}
func (e BeginTurn) Recipient() Recipient { return RecipientBroadcast }

// RequestAction asks one client to submit its next order.
type RequestAction struct {
	Slot          byte
	Position      byte
	Replacement   bool
	LegalSwitches uint32 // bitmask over bench slots, 1 = legal
	SwitchLegal   bool
	Forced        bool
	LegalMoves    uint8 // bitmask over up to 4 moves, 1 = legal; ignored if Forced
}

func (e RequestAction) Encode(fieldID int32) []byte {
	enc := codec.NewEncoder(byte(codec.OpRequestAction)).
		Int32(fieldID).
		Byte(e.Slot).
		Byte(e.Position).
		Bool(e.Replacement).
		Int32(int32(e.LegalSwitches)).
		Bool(e.SwitchLegal).
		Bool(e.Forced)
	if !e.Forced {
		enc.Byte(e.LegalMoves)
	}
	return enc.Finalise()
}
func (e RequestAction) Recipient() Recipient { return RecipientParticipant }

// RoomJoin announces a member joining a room to the rest of its membership,
// per spec.md §4.2 join's "emit a join event to existing members".
type RoomJoin struct {
	MemberID string
}

func (e RoomJoin) Encode(fieldID int32) []byte {
	return codec.NewEncoder(byte(codec.OpRoomJoin)).Int32(fieldID).String(e.MemberID).Finalise()
}
func (e RoomJoin) Recipient() Recipient { return RecipientBroadcast }

// RoomPart announces a member leaving a room, per spec.md §4.2 part's "emit
// a part event".
type RoomPart struct {
	MemberID string
}

func (e RoomPart) Encode(fieldID int32) []byte {
	return codec.NewEncoder(byte(codec.OpRoomPart)).Int32(fieldID).String(e.MemberID).Finalise()
}
func (e RoomPart) Recipient() Recipient { return RecipientBroadcast }
