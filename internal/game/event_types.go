package game

// EventType represents a game event type with type safety
type EventType string

// EventType constants for engine events, published in the order the
// state machine produces them.
const (
	EventTypeHandStarted    EventType = "hand_started"
	EventTypeActionApplied  EventType = "action_applied"
	EventTypeStageEnded     EventType = "stage_ended"
	EventTypeSidePotCreated EventType = "side_pot_created"
	EventTypePotAwarded     EventType = "pot_awarded"
	EventTypeGameOver       EventType = "game_over"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}
