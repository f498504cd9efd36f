package game

// ActionType represents a player action
type ActionType int

const (
	PutSmallBlind ActionType = iota
	PutBigBlind
	CheckSmallBlind
	CheckBigBlind
	Check
	Bet
	Call
	Raise
	MustAllIn
	RaiseAllIn
	Fold
)

var actionNames = []string{
	"putSmallBlind", "putBigBlind", "checkSmallBlind", "checkBigBlind",
	"check", "bet", "call", "raise", "allIn", "raiseAllIn", "fold",
}

func (a ActionType) String() string { return enumName(actionNames, int(a)) }

func (a ActionType) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *ActionType) UnmarshalText(text []byte) error {
	return parseEnum(actionNames, "action", text, (*int)(a))
}

// ParseActionType converts a wire tag such as "raiseAllIn" to an ActionType.
func ParseActionType(s string) (ActionType, error) {
	var a ActionType
	err := a.UnmarshalText([]byte(s))
	return a, err
}

// NeedsAmount reports whether the action takes an explicit chip amount.
func (a ActionType) NeedsAmount() bool {
	return a == Bet || a == Raise
}

// ActionSelector computes the legal actions for the seat on turn.
type ActionSelector struct{}

// Options returns the ordered set of legal actions. Blind posting takes
// precedence pre-flop; outside of it the choice depends on whether the
// player can cover the outstanding bet.
func (ActionSelector) Options(g *Game) []ActionType {
	player := g.players.At(g.positions.turn)
	if player == nil {
		return nil
	}
	bs := g.bettingStage
	bigBlind := g.handStage.bigBlind

	isBetting := player.pending > 0
	mustEqualBet := player.pending < bs.actualBet
	mustAllIn := player.Total() < bs.actualBet
	canRaise := player.Total() > bs.minimumRaise

	if bs.street == Preflop {
		switch g.positions.turn {
		case g.positions.smallBlind:
			if !isBetting {
				return []ActionType{PutSmallBlind}
			}
		case g.positions.bigBlind:
			if !isBetting {
				return []ActionType{PutBigBlind}
			}
			if player.pending == bigBlind && !mustEqualBet {
				return []ActionType{CheckBigBlind, Raise}
			}
		}
	}

	switch {
	case mustAllIn:
		return []ActionType{MustAllIn, Fold}
	case mustEqualBet && canRaise:
		return []ActionType{Call, Raise, Fold}
	case mustEqualBet:
		return []ActionType{Call, RaiseAllIn, Fold}
	}
	return []ActionType{Check, Bet}
}
