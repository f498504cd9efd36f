package game

import "fmt"

// Holder is anything that owns a chip ledger. Player and Pot satisfy it by
// embedding ChipHolder.
type Holder interface {
	ledger() *ChipHolder
}

// ChipHolder is the base accounting unit. It tracks a spendable balance and
// a pending balance that has been staged but not yet committed anywhere.
// Both balances are unexported so they can only move through the validated
// methods below; every method either applies fully or returns an error and
// leaves the holder untouched.
type ChipHolder struct {
	chips   int
	pending int
}

func (c *ChipHolder) ledger() *ChipHolder { return c }

// Chips returns the spendable balance.
func (c *ChipHolder) Chips() int { return c.chips }

// PendingChips returns the staged balance.
func (c *ChipHolder) PendingChips() int { return c.pending }

// Total returns chips plus pending chips.
func (c *ChipHolder) Total() int { return c.chips + c.pending }

func checkAmount(amount int) error {
	if amount < 0 {
		return fmt.Errorf("%w: %d is negative", ErrInvalidAmount, amount)
	}
	return nil
}

// IncrementChips credits the spendable balance.
func (c *ChipHolder) IncrementChips(amount int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	c.chips += amount
	return nil
}

// DecrementChips debits the spendable balance.
func (c *ChipHolder) DecrementChips(amount int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if c.chips < amount {
		return fmt.Errorf("%w: have %d chips, need %d", ErrInsufficientFunds, c.chips, amount)
	}
	c.chips -= amount
	return nil
}

// IncrementPendingChips credits the pending balance.
func (c *ChipHolder) IncrementPendingChips(amount int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	c.pending += amount
	return nil
}

// DecrementPendingChips debits the pending balance.
func (c *ChipHolder) DecrementPendingChips(amount int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if c.pending < amount {
		return fmt.Errorf("%w: have %d pending chips, need %d", ErrInsufficientFunds, c.pending, amount)
	}
	c.pending -= amount
	return nil
}

// Prepare stages amount from the spendable balance into the pending balance.
func (c *ChipHolder) Prepare(amount int) error {
	if err := c.DecrementChips(amount); err != nil {
		return err
	}
	c.pending += amount
	return nil
}

// PrepareAll stages the whole spendable balance.
func (c *ChipHolder) PrepareAll() error {
	return c.Prepare(c.chips)
}

// Refund moves amount from the pending balance back to the spendable one.
func (c *ChipHolder) Refund(amount int) error {
	if err := c.DecrementPendingChips(amount); err != nil {
		return err
	}
	c.chips += amount
	return nil
}

// Transfer moves amount out of this holder's pending balance into the
// target's spendable balance. It is the only way chips cross from one
// holder to another.
func (c *ChipHolder) Transfer(target Holder, amount int) error {
	if target == nil {
		return fmt.Errorf("%w: transfer target is nil", ErrNotFound)
	}
	if err := c.DecrementPendingChips(amount); err != nil {
		return err
	}
	target.ledger().chips += amount
	return nil
}

// TransferAll moves the whole pending balance to target.
func (c *ChipHolder) TransferAll(target Holder) error {
	return c.Transfer(target, c.pending)
}
