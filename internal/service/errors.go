package service

import (
	"errors"
	"fmt"
)

var (
	ErrOfferNotFound = errors.New("offer not found")
	ErrMatchNotFound = errors.New("match not found")
	ErrMarketClosed  = errors.New("market not offered for this event")
	ErrKeyConflict   = errors.New("wager group key already used by another match")
	ErrInvalidResult = errors.New("invalid result")
	// ErrStaleState means another process stored the ledger since it was loaded
	ErrStaleState = errors.New("ledger state changed in the store")
)

// InvalidWagerError rejects a wager before anything is changed
type InvalidWagerError struct {
	Reason string
	Err    error
}

func (e *InvalidWagerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid wager: %s: %v", e.Reason, e.Err)
	}
	return "invalid wager: " + e.Reason
}

func (e *InvalidWagerError) Unwrap() error {
	return e.Err
}
