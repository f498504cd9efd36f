package game

// Snapshot is a serialisable copy of the whole game state. It shares no
// memory with the Game it was taken from.
type Snapshot struct {
	Phase        Phase                `json:"phase"`
	Hands        int                  `json:"hands"`
	TotalChips   int                  `json:"totalChips"`
	Players      []PlayerSnapshot     `json:"players"`
	Pots         []PotSnapshot        `json:"pots"`
	Positions    PositionSnapshot     `json:"positions"`
	HandStage    HandStageSnapshot    `json:"handStage"`
	BettingStage BettingStageSnapshot `json:"bettingStage"`
}

type PlayerSnapshot struct {
	ID           string `json:"id"`
	Chips        int    `json:"chips"`
	PendingChips int    `json:"pendingChips"`
	IsPlaying    bool   `json:"isPlaying"`
}

type PotSnapshot struct {
	Index           PotIndex `json:"id"`
	Chips           int      `json:"chips"`
	PendingChips    int      `json:"pendingChips"`
	ActivePlayerIDs []string `json:"activePlayerIds"`
}

type PositionSnapshot struct {
	Dealer     Seat   `json:"dealerIndex"`
	SmallBlind Seat   `json:"smallBlindIndex"`
	BigBlind   Seat   `json:"bigBlindIndex"`
	Turn       Seat   `json:"turnIndex"`
	Raiser     Seat   `json:"raiserIndex"`
	Winners    []Seat `json:"winnersIndex"`
}

type HandStageSnapshot struct {
	SmallBlind   int      `json:"smallBlindValue"`
	BigBlind     int      `json:"bigBlindValue"`
	StagesPlayed []Street `json:"stagesPlayed"`
}

type BettingStageSnapshot struct {
	Stage         Street `json:"stage"`
	BigBlindCheck bool   `json:"doBigBlindCheck"`
	ActualBet     int    `json:"actualBetValue"`
	MinimumRaise  int    `json:"minimumRaise"`
	CheckCount    int    `json:"checkCount"`
}

// Snapshot captures the current state.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Phase:      g.phase,
		Hands:      g.hands,
		TotalChips: g.TotalChips(),
		Players:    make([]PlayerSnapshot, 0, g.players.Len()),
		Pots:       make([]PotSnapshot, 0, len(g.pots.pots)),
		Positions: PositionSnapshot{
			Dealer:     g.positions.dealer,
			SmallBlind: g.positions.smallBlind,
			BigBlind:   g.positions.bigBlind,
			Turn:       g.positions.turn,
			Raiser:     g.positions.raiser,
			Winners:    g.positions.Winners(),
		},
		HandStage: HandStageSnapshot{
			SmallBlind:   g.handStage.smallBlind,
			BigBlind:     g.handStage.bigBlind,
			StagesPlayed: g.handStage.StagesPlayed(),
		},
		BettingStage: BettingStageSnapshot{
			Stage:         g.bettingStage.street,
			BigBlindCheck: g.bettingStage.bigBlindCheck,
			ActualBet:     g.bettingStage.actualBet,
			MinimumRaise:  g.bettingStage.minimumRaise,
			CheckCount:    g.bettingStage.checkCount,
		},
	}
	for _, p := range g.players.players {
		s.Players = append(s.Players, PlayerSnapshot{
			ID:           p.id,
			Chips:        p.chips,
			PendingChips: p.pending,
			IsPlaying:    p.playing,
		})
	}
	for _, p := range g.pots.pots {
		s.Pots = append(s.Pots, PotSnapshot{
			Index:           p.index,
			Chips:           p.chips,
			PendingChips:    p.pending,
			ActivePlayerIDs: p.ActiveIDs(),
		})
	}
	return s
}

// Player returns the snapshot of the player with the given id.
func (s Snapshot) Player(id string) (PlayerSnapshot, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerSnapshot{}, false
}
