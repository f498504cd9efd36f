package game

import "errors"

// Error taxonomy surfaced by the engine. Callers match with errors.Is;
// returned errors wrap one of these with call-site context.
var (
	// ErrInvalidAmount is returned for negative amounts and for bets or
	// raises below the table minimum.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientFunds is returned when a debit exceeds the balance it
	// is drawn from.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNotFound is returned when an id or index lookup misses.
	ErrNotFound = errors.New("not found")

	// ErrIllegalAction is returned for actions outside the legal set and
	// for operations attempted in the wrong phase.
	ErrIllegalAction = errors.New("illegal action")

	// ErrInvariantViolation signals an internal consistency failure. It
	// is never the caller's fault.
	ErrInvariantViolation = errors.New("invariant violation")
)
