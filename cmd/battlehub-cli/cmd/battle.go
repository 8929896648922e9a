package cmd

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/nfrund/battlehub/internal/battle"
	"github.com/nfrund/battlehub/internal/battle/codec"
	"github.com/nfrund/battlehub/internal/battle/effect/catalog"
	"github.com/nfrund/battlehub/internal/battle/turn"
	battlemod "github.com/nfrund/battlehub/internal/modules/battle"
	"github.com/nfrund/battlehub/internal/script"
)

var battleCmd = &cobra.Command{
	Use:   "battle",
	Short: "Drive a battle session outside of a running server",
}

var replayMaxTurns int

var battleReplayCmd = &cobra.Command{
	Use:   "replay-scenario [name]",
	Short: "Run a seeded battle scenario headlessly and print its event stream",
	Long: `replay-scenario builds a battle session entirely in-process, against
the same SeedDex/DemoTeams fixture the debug HTTP route uses, submits each
side's only move every turn, and prints the opcode/size of every event the
battle room broadcasts. Currently only the "simple-ko" scenario is
available.`,
	Args: cobra.MaximumNArgs(1),
	RunE: battleReplayHandler,
}

func init() {
	battleCmd.AddCommand(battleReplayCmd)
	battleReplayCmd.Flags().IntVarP(&replayMaxTurns, "max-turns", "t", 10,
		"stop submitting orders after this many turns if the battle hasn't ended")
}

// recordingMember is a headless room.Member: it never delivers frames over
// a real connection, just prints the opcode and payload size of each one,
// for operator inspection.
type recordingMember struct {
	id string
}

func newRecordingMember(id string) *recordingMember {
	return &recordingMember{id: id}
}

func (m *recordingMember) ID() string { return m.id }

func (m *recordingMember) Send(frame []byte) bool {
	if len(frame) == 0 {
		return true
	}
	fmt.Printf("[%s] opcode=%d bytes=%d\n", m.id, codec.Opcode(frame[0]), len(frame))
	return true
}

func (m *recordingMember) Close() {}

func battleReplayHandler(cmd *cobra.Command, args []string) error {
	name := "simple-ko"
	if len(args) == 1 {
		name = args[0]
	}
	if name != "simple-ko" {
		return fmt.Errorf("replay-scenario: unknown scenario %q (only \"simple-ko\" is seeded)", name)
	}

	dex := battlemod.SeedDex()
	teamA, teamB := battlemod.DemoTeams()

	scriptEngine := script.NewContextAwareEngine(script.NewEngine(), 4)
	factory := &catalog.Factory{Engine: scriptEngine, Catalog: catalog.New()}

	a := newRecordingMember("party-a")
	b := newRecordingMember("party-b")
	rng := rand.New(rand.NewSource(1))

	session, err := battlemod.NewSession("replay-"+name, 3, 1, dex, factory, teamA, teamB,
		a, b, rng, battle.PartyA, 0, time.Minute)
	if err != nil {
		return fmt.Errorf("replay-scenario: building session: %w", err)
	}

	victory := make(chan struct{})
	var victoryClosed bool
	session.Room.SetOnTerminate(func() {
		if !victoryClosed {
			victoryClosed = true
			close(victory)
		}
	})

	order := turn.Order{Kind: turn.ActionMove, MoveIndex: 0, Target: 0}
	for i := 0; i < replayMaxTurns; i++ {
		select {
		case <-victory:
			fmt.Println("battle concluded")
			return nil
		default:
		}
		if err := session.Field.HandleTurn(battle.PartyA, 0, order); err != nil {
			fmt.Printf("party A order rejected on turn %d: %v\n", i+1, err)
		}
		if err := session.Field.HandleTurn(battle.PartyB, 0, order); err != nil {
			fmt.Printf("party B order rejected on turn %d: %v\n", i+1, err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case <-victory:
		fmt.Println("battle concluded")
	default:
		fmt.Println("max turns reached without a conclusion")
	}
	return nil
}
