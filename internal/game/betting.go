package game

// Street represents the betting stage
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
)

// StreetCount is the number of betting stages in a hand.
const StreetCount = 4

var streetNames = []string{"preFlop", "flop", "turn", "river"}

func (s Street) String() string { return enumName(streetNames, int(s)) }

func (s Street) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Street) UnmarshalText(text []byte) error {
	return parseEnum(streetNames, "street", text, (*int)(s))
}

// BettingStage holds the transient state of one betting round.
type BettingStage struct {
	street        Street
	bigBlindCheck bool
	actualBet     int
	minimumRaise  int
	checkCount    int
}

// NewBettingStage returns a pre-flop stage with nothing bet.
func NewBettingStage() *BettingStage {
	return &BettingStage{street: Preflop}
}

// Street is the betting stage being played.
func (bs *BettingStage) Street() Street { return bs.street }

// BigBlindChecked reports whether the big blind used their free check.
func (bs *BettingStage) BigBlindChecked() bool { return bs.bigBlindCheck }

// ActualBet is the amount every contender must match.
func (bs *BettingStage) ActualBet() int { return bs.actualBet }

// MinimumRaise is the smallest total a raise may bring the bet to.
func (bs *BettingStage) MinimumRaise() int { return bs.minimumRaise }

// CheckCount counts checks since the last bet.
func (bs *BettingStage) CheckCount() int { return bs.checkCount }

// Reset prepares the record for the next stage of the hand.
func (bs *BettingStage) Reset(hs *HandStage) {
	bs.street = Street(min(len(hs.played), StreetCount-1))
	bs.bigBlindCheck = false
	bs.actualBet = 0
	bs.minimumRaise = hs.bigBlind
	bs.checkCount = 0
}

// BettingStageValidator decides whether the hand goes on to another
// betting stage or ends.
type BettingStageValidator struct{}

// Validate ends the hand once winners are recorded or the river is done.
func (BettingStageValidator) Validate(g *Game) StageOutcome {
	if len(g.positions.winners) > 0 || len(g.handStage.played) >= StreetCount {
		return EndHandStage
	}
	return StartBettingStage
}

// Apply carries out the verdict and returns the next phase.
func (BettingStageValidator) Apply(g *Game, outcome StageOutcome) (Phase, error) {
	switch outcome {
	case EndHandStage:
		g.logger.Debug("Hand awaiting winners", "pots", len(g.pots.pots))
		return PhaseWinnerSelector, nil
	case StartBettingStage:
		g.bettingStage.Reset(g.handStage)
		g.logger.Debug("Starting betting stage", "street", g.bettingStage.street)
		return PhaseTurnValidator, nil
	}
	return g.phase, invalidOutcome(outcome)
}
