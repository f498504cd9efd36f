package game

import (
	"sync"
	"time"
)

// GameEvent represents anything the engine announces while running
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// HandStartedEvent is published when a hand begins
type HandStartedEvent struct {
	Hand       int
	Dealer     Seat
	SmallBlind Seat
	BigBlind   Seat
	Blinds     [2]int
	Players    []string
	timestamp  time.Time
}

func (e HandStartedEvent) EventType() EventType { return EventTypeHandStarted }
func (e HandStartedEvent) Timestamp() time.Time { return e.timestamp }

// NewHandStartedEvent captures the positions and blind levels of the hand
// about to be played.
func NewHandStartedEvent(g *Game) HandStartedEvent {
	var playing []string
	for _, p := range g.players.players {
		if p.playing {
			playing = append(playing, p.id)
		}
	}
	return HandStartedEvent{
		Hand:       g.hands + 1,
		Dealer:     g.positions.dealer,
		SmallBlind: g.positions.smallBlind,
		BigBlind:   g.positions.bigBlind,
		Blinds:     [2]int{g.handStage.smallBlind, g.handStage.bigBlind},
		Players:    playing,
		timestamp:  time.Now(),
	}
}

// ActionAppliedEvent is published after a player's action is executed
type ActionAppliedEvent struct {
	PlayerID string
	Seat     Seat
	Action   ActionType
	Staged   int // chips moved to pending by this action
	Street   Street
	// CommittedPots is the total already swept into pots by earlier
	// stages; it excludes every stake still pending this stage.
	CommittedPots int
	timestamp     time.Time
}

func (e ActionAppliedEvent) EventType() EventType { return EventTypeActionApplied }
func (e ActionAppliedEvent) Timestamp() time.Time { return e.timestamp }

func NewActionAppliedEvent(playerID string, seat Seat, action ActionType, staged int, street Street, committedPots int) ActionAppliedEvent {
	return ActionAppliedEvent{
		PlayerID:      playerID,
		Seat:          seat,
		Action:        action,
		Staged:        staged,
		Street:        street,
		CommittedPots: committedPots,
		timestamp:     time.Now(),
	}
}

// StageEndedEvent is published when a betting stage closes and staged
// chips have been swept into the pots.
type StageEndedEvent struct {
	Street    Street
	PotTotal  int
	timestamp time.Time
}

func (e StageEndedEvent) EventType() EventType { return EventTypeStageEnded }
func (e StageEndedEvent) Timestamp() time.Time { return e.timestamp }

func NewStageEndedEvent(street Street, potTotal int) StageEndedEvent {
	return StageEndedEvent{Street: street, PotTotal: potTotal, timestamp: time.Now()}
}

// SidePotCreatedEvent is published when unequal stakes split off a new pot
type SidePotCreatedEvent struct {
	Pot       PotIndex
	Active    []string
	timestamp time.Time
}

func (e SidePotCreatedEvent) EventType() EventType { return EventTypeSidePotCreated }
func (e SidePotCreatedEvent) Timestamp() time.Time { return e.timestamp }

func NewSidePotCreatedEvent(pot *Pot) SidePotCreatedEvent {
	return SidePotCreatedEvent{Pot: pot.index, Active: pot.ActiveIDs(), timestamp: time.Now()}
}

// PotAwardedEvent is published for every pot paid out at the end of a hand
type PotAwardedEvent struct {
	Pot       PotIndex
	Winners   []string
	Amount    int
	timestamp time.Time
}

func (e PotAwardedEvent) EventType() EventType { return EventTypePotAwarded }
func (e PotAwardedEvent) Timestamp() time.Time { return e.timestamp }

func NewPotAwardedEvent(pot PotIndex, winners []string, amount int) PotAwardedEvent {
	return PotAwardedEvent{
		Pot:       pot,
		Winners:   append([]string(nil), winners...),
		Amount:    amount,
		timestamp: time.Now(),
	}
}

// GameOverEvent is published once, when fewer than two players have chips
type GameOverEvent struct {
	Hands     int
	timestamp time.Time
}

func (e GameOverEvent) EventType() EventType { return EventTypeGameOver }
func (e GameOverEvent) Timestamp() time.Time { return e.timestamp }

func NewGameOverEvent(hands int) GameOverEvent {
	return GameOverEvent{Hands: hands, timestamp: time.Now()}
}

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is an in-memory bus delivering events synchronously, in
// subscription order.
type SimpleEventBus struct {
	mu          sync.RWMutex
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event GameEvent) {
	bus.mu.RLock()
	subs := append([]EventSubscriber(nil), bus.subscribers...)
	bus.mu.RUnlock()
	for _, subscriber := range subs {
		subscriber.OnEvent(event)
	}
}
