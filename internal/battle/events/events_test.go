package events

import (
	"bytes"
	"testing"

	"github.com/nfrund/battlehub/internal/battle"
	"github.com/nfrund/battlehub/internal/battle/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVictoryEncodeDecode(t *testing.T) {
	frame := Victory{Party: 0}.Encode(42)

	dec, err := codec.ReadFrame(bytes.NewReader(frame))
	require.NoError(t, err)
	assert.Equal(t, byte(codec.OpBattleVictory), dec.Opcode())

	fieldID, err := dec.Int32()
	require.NoError(t, err)
	assert.Equal(t, int32(42), fieldID)

	party, err := dec.Int16()
	require.NoError(t, err)
	assert.Equal(t, int16(0), party)
	assert.Equal(t, 0, dec.Remaining())
}

func TestHealthChangeEncodeDecode(t *testing.T) {
	ev := HealthChange{Party: battle.PartyB, Slot: 0, Name: "Snorlax", Delta: -48, Total: 0}
	frame := ev.Encode(7)

	dec, err := codec.ReadFrame(bytes.NewReader(frame))
	require.NoError(t, err)

	_, err = dec.Int32() // field id
	require.NoError(t, err)
	party, _ := dec.Byte()
	slot, _ := dec.Byte()
	name, _ := dec.String()
	delta, _ := dec.Int16()
	total, _ := dec.Int16()

	assert.Equal(t, byte(1), party)
	assert.Equal(t, byte(0), slot)
	assert.Equal(t, "Snorlax", name)
	assert.Equal(t, int16(-48), delta)
	assert.Equal(t, int16(0), total)
}

func TestScaleHealthTo48(t *testing.T) {
	assert.Equal(t, int16(48), ScaleHealthTo48(100, 100))
	assert.Equal(t, int16(0), ScaleHealthTo48(0, 100))
	assert.Equal(t, int16(24), ScaleHealthTo48(50, 100))
	// never exceeds 48 in magnitude even for an overshoot delta
	assert.Equal(t, int16(48), ScaleHealthTo48(150, 100))
}

func TestScaleHealthTo48_FullKOIsNegative48(t *testing.T) {
	assert.Equal(t, int16(-48), ScaleHealthTo48(-100, 100))
	assert.Equal(t, int16(-24), ScaleHealthTo48(-50, 100))
	// never exceeds -48 in magnitude even for an overshoot delta
	assert.Equal(t, int16(-48), ScaleHealthTo48(-150, 100))
}

func TestRequestActionForcedOmitsMoveMask(t *testing.T) {
	ev := RequestAction{Slot: 0, Position: 0, Forced: true, SwitchLegal: false}
	frame := ev.Encode(1)

	dec, err := codec.ReadFrame(bytes.NewReader(frame))
	require.NoError(t, err)

	_, _ = dec.Int32()
	_, _ = dec.Byte() // slot
	_, _ = dec.Byte() // position
	_, _ = dec.Bool() // replacement
	_, _ = dec.Int32() // legal switches
	_, _ = dec.Bool()  // switch legal
	forced, _ := dec.Bool()
	assert.True(t, forced)
	assert.Equal(t, 0, dec.Remaining())
}

func TestRecipients(t *testing.T) {
	assert.Equal(t, RecipientParticipant, BattleBegin{}.Recipient())
	assert.Equal(t, RecipientBroadcast, Victory{}.Recipient())
	assert.Equal(t, RecipientParticipant, SetPP{}.Recipient())
	assert.Equal(t, RecipientParticipant, RequestAction{}.Recipient())
}
