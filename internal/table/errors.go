package table

import (
	"errors"
	"fmt"

	"github.com/lox/fairholdem/internal/fairness"
)

// ErrProtocol is the root of every rejected input. A protocol error always
// comes back with the caller's state unchanged.
var ErrProtocol = errors.New("protocol violation")

var (
	ErrUnknownSeat      = fmt.Errorf("%w: seat is not occupied", ErrProtocol)
	ErrNotYourTurn      = fmt.Errorf("%w: not this seat's turn", ErrProtocol)
	ErrSeatInactive     = fmt.Errorf("%w: seat cannot act in this hand", ErrProtocol)
	ErrInvalidAction    = fmt.Errorf("%w: unknown action", ErrProtocol)
	ErrInvalidAmount    = fmt.Errorf("%w: invalid amount", ErrProtocol)
	ErrCannotCheck      = fmt.Errorf("%w: cannot check facing a bet", ErrProtocol)
	ErrNoHand           = fmt.Errorf("%w: no hand in progress", ErrProtocol)
	ErrHandInProgress   = fmt.Errorf("%w: hand in progress", ErrProtocol)
	ErrBettingOpen      = fmt.Errorf("%w: betting is still open", ErrProtocol)
	ErrNotEnoughPlayers = fmt.Errorf("%w: fewer than 2 eligible seats", ErrProtocol)
	ErrTableFull        = fmt.Errorf("%w: table is full", ErrProtocol)
	ErrDuplicatePlayer  = fmt.Errorf("%w: player already seated", ErrProtocol)
	ErrEliminated       = fmt.Errorf("%w: seat is eliminated", ErrProtocol)
	ErrInvalidTable     = fmt.Errorf("%w: invalid table config", ErrProtocol)
)

var (
	// ErrNonceReused means a hand was dealt with a nonce that is not above the
	// table's current hand number.
	ErrNonceReused = fmt.Errorf("%w: nonce not above current hand number", fairness.ErrFairnessViolation)

	// ErrHalted is returned for every deal after a fairness violation.
	ErrHalted = fmt.Errorf("%w: table halted", fairness.ErrFairnessViolation)
)

// IsProtocol reports whether err is a rejected input.
func IsProtocol(err error) bool { return errors.Is(err, ErrProtocol) }

// IsFairness reports whether err is a fairness violation.
func IsFairness(err error) bool { return errors.Is(err, fairness.ErrFairnessViolation) }
