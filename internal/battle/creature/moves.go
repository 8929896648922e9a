package creature

import "github.com/nfrund/battlehub/internal/battle/dex"

// MoveSlot is one of a creature's up to four known moves: the static
// template plus per-battle mutable state (remaining PP, PP-up count, used
// flag), per spec.md §3.
type MoveSlot struct {
	Template dex.Move
	PP       int
	PPUp     int
	Used     bool
}

// Name and Priority satisfy effect.Move so a *MoveSlot can be passed
// directly to any capability hook expecting one.
func (m *MoveSlot) Name() string  { return m.Template.Name }
func (m *MoveSlot) Priority() int { return m.Template.Priority }

// DeductPP decrements this move's PP, floored at zero, per
// Pokemon::deductPp. Callers emit events.SetPP to the owning client only;
// creature itself has no transport access.
func (m *MoveSlot) DeductPP() int {
	if m.PP > 0 {
		m.PP--
	}
	return m.PP
}
