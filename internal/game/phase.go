package game

import (
	"fmt"
	"slices"
)

// Phase is the engine's program counter: the next thing the driver loop
// should run.
type Phase int

const (
	PhaseHandStageValidator Phase = iota
	PhaseBettingStageValidator
	PhaseTurnValidator
	PhaseActionSelector
	PhaseWinnerSelector
	PhaseGameOver
)

var phaseNames = []string{
	"handStageValidator", "bettingStageValidator", "turnValidator",
	"actionSelector", "winnerSelector", "gameOver",
}

func (p Phase) String() string { return enumName(phaseNames, int(p)) }

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(text []byte) error {
	return parseEnum(phaseNames, "phase", text, (*int)(p))
}

// AwaitsInput reports whether the phase can only be left through Act or
// SubmitResult, or not at all.
func (p Phase) AwaitsInput() bool {
	return p == PhaseActionSelector || p == PhaseWinnerSelector || p == PhaseGameOver
}

// HandOutcome is the hand-level validator's verdict.
type HandOutcome int

const (
	StartHandStage HandOutcome = iota
	EndGame
)

var handOutcomeNames = []string{"startHandStage", "endGame"}

func (o HandOutcome) String() string { return enumName(handOutcomeNames, int(o)) }

// StageOutcome is the betting-stage validator's verdict.
type StageOutcome int

const (
	StartBettingStage StageOutcome = iota
	EndHandStage
)

var stageOutcomeNames = []string{"startBettingStage", "endHand"}

func (o StageOutcome) String() string { return enumName(stageOutcomeNames, int(o)) }

// TurnOutcome is the turn validator's verdict.
type TurnOutcome int

const (
	GiveActions TurnOutcome = iota
	NextPlayer
	EndBettingStage
)

var turnOutcomeNames = []string{"giveActions", "nextPlayer", "finishRound"}

func (o TurnOutcome) String() string { return enumName(turnOutcomeNames, int(o)) }

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("unknown(%d)", i)
	}
	return names[i]
}

func parseEnum(names []string, kind string, text []byte, dst *int) error {
	i := slices.Index(names, string(text))
	if i < 0 {
		return fmt.Errorf("%w: unknown %s %q", ErrNotFound, kind, text)
	}
	*dst = i
	return nil
}
