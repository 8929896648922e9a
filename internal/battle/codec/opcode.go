package codec

// Opcode identifies a frame's payload shape. Values are stable across the
// wire and must never be renumbered once shipped.
type Opcode byte

const (
	OpBattleBegin      Opcode = 1
	OpBattlePokemon    Opcode = 2
	OpBattlePrint      Opcode = 3
	OpBattleVictory    Opcode = 4
	OpBattleUseMove    Opcode = 5
	OpBattleWithdraw   Opcode = 6
	OpBattleSendOut    Opcode = 7
	OpHealthChange     Opcode = 8
	OpBattleSetPP      Opcode = 9
	OpBattleFainted    Opcode = 10
	OpBattleBeginTurn  Opcode = 11
	OpRequestAction    Opcode = 12

	// Room-membership opcodes (spec.md §4.2's join/part notifications) —
	// not battle-turn events, but carried over the same framed codec.
	OpRoomJoin Opcode = 13
	OpRoomPart Opcode = 14
)
