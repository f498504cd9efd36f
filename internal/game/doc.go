// Package game implements a poker hand state machine and the chip
// settlement engine behind it.
//
// The main type is Game, the aggregate root of one match. It owns the
// roster (PlayerManager), the pots (PotManager), the seat positions
// (PositionManager) and the per-hand and per-round betting records. Cards
// are not modelled: the caller decides who won each pot.
//
// # Driving a game
//
// A Game holds a single Phase telling the caller what runs next. Step runs
// one transition; Advance steps until the game needs input:
//
//	g, _ := game.NewGame(10, game.WithRand(randutil.New(42)))
//	_ = g.SetRoster([]game.Seating{{ID: "alice", Chips: 500}, {ID: "bob", Chips: 500}})
//
//	for {
//	    phase, err := g.Advance()
//	    if err != nil || phase == game.PhaseGameOver {
//	        break
//	    }
//	    switch phase {
//	    case game.PhaseActionSelector:
//	        actions, _ := g.LegalActions()
//	        _ = g.Act(actions[0], 0)
//	    case game.PhaseWinnerSelector:
//	        _ = g.SubmitResult(map[game.PotIndex][]string{0: {"alice"}})
//	    }
//	}
//
// # Architecture
//
// Three validators form the state machine, one per level:
//   - HandStageValidator: start another hand or end the game
//   - BettingStageValidator: start another betting stage or end the hand
//   - TurnValidator: give the seat on turn its options, skip it, or close the stage
//
// Each exposes a pure Validate and an Apply that mutates the game and
// returns the next Phase. ActionSelector lists the legal actions and
// ActionExecutor applies one.
//
// Chips only ever move between holders. Every operation validates before
// it mutates, so TotalChips is constant from SetRoster onward.
//
// A Game does no locking; callers serialise access per game.
package game
