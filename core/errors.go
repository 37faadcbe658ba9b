package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for business-rule violations. These are expected,
// recoverable conditions; match them with errors.Is.
var (
	// ErrInvalidAmount is returned for non-positive amounts or counts.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientHearts is returned when a consume exceeds the current
	// heart count in limited mode.
	ErrInsufficientHearts = errors.New("insufficient hearts")

	// ErrInsufficientFunds is returned when a debit exceeds the balance.
	// Spends are rejected outright, never clamped.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNoFreezeAvailable is returned when consuming a streak freeze with
	// none in stock.
	ErrNoFreezeAvailable = errors.New("no streak freeze available")

	// ErrFreezeNotApplicable is returned when a freeze cannot cover the gap:
	// either nothing was missed or more than one day was.
	ErrFreezeNotApplicable = errors.New("streak freeze not applicable")

	// ErrUnknownItem is returned for purchases of items not in the catalog.
	ErrUnknownItem = errors.New("unknown store item")
)

// InsufficientHeartsError carries the shortfall detail for UI messaging.
type InsufficientHeartsError struct {
	Current   int
	Requested int
}

func (e *InsufficientHeartsError) Error() string {
	return fmt.Sprintf("insufficient hearts: have %d, need %d", e.Current, e.Requested)
}

func (e *InsufficientHeartsError) Unwrap() error { return ErrInsufficientHearts }

// InsufficientFundsError carries the shortfall detail for UI messaging.
type InsufficientFundsError struct {
	Balance   int
	Requested int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %d, requested %d", e.Balance, e.Requested)
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// IsClientError reports whether the error is a business-rule rejection the
// caller can recover from, as opposed to a storage or programming failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInsufficientHearts) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrNoFreezeAvailable) ||
		errors.Is(err, ErrFreezeNotApplicable) ||
		errors.Is(err, ErrUnknownItem)
}
