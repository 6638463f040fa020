package game

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine's rejection taxonomy. Every rejected
// operation wraps one of these and leaves the deal state unchanged; the
// session layer decides whether to notify the offending client.
var (
	// ErrOutOfTurn rejects a submission from a seat whose turn it is not,
	// including dummy submitting its own plays.
	ErrOutOfTurn = errors.New("out of turn")

	// ErrIllegalBid rejects an insufficient call or an illegal double or
	// redouble.
	ErrIllegalBid = errors.New("illegal bid")

	// ErrIllegalPlay rejects a revoke (must follow suit) or a card the
	// seat does not hold.
	ErrIllegalPlay = errors.New("illegal play")

	// ErrInvalidDealState rejects an operation attempted in the wrong
	// phase, such as a play before the auction settles.
	ErrInvalidDealState = errors.New("invalid deal state")
)

func outOfTurnError(seat, turn Seat) error {
	return fmt.Errorf("%w: %s acted on %s's turn", ErrOutOfTurn, seat, turn)
}

func illegalBidError(bid Bid, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrIllegalBid, bid, reason)
}

func illegalPlayError(reason string) error {
	return fmt.Errorf("%w: %s", ErrIllegalPlay, reason)
}

func invalidStateError(op string, phase Phase) error {
	return fmt.Errorf("%w: %s during %s", ErrInvalidDealState, op, phase)
}
