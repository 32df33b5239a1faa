package table

import (
	"fmt"
	"strings"

	"github.com/lox/fairholdem/internal/chips"
)

// Street represents the phase of a hand
type Street int

const (
	Waiting Street = iota
	Preflop
	Flop
	Turn
	River
	Showdown
)

var streetNames = [...]string{"waiting", "pre-flop", "flop", "turn", "river", "showdown"}

func (s Street) String() string {
	if s < 0 || int(s) >= len(streetNames) {
		return fmt.Sprintf("street(%d)", int(s))
	}
	return streetNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s Street) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Betting reports whether s is one of the four betting streets.
func (s Street) Betting() bool {
	return s >= Preflop && s <= River
}

// Action represents a player action
type Action int

const (
	Fold Action = iota
	Check
	Call
	Raise
)

func (a Action) String() string {
	switch a {
	case Fold:
		return "fold"
	case Check:
		return "check"
	case Call:
		return "call"
	case Raise:
		return "raise"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// ParseAction converts wire text to an Action.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fold":
		return Fold, nil
	case "check":
		return Check, nil
	case "call":
		return Call, nil
	case "raise", "bet":
		return Raise, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}

// Status is a seat's lifecycle state.
type Status int

const (
	Active Status = iota
	Folded
	AllIn
	SittingOut
	Eliminated
)

var statusNames = [...]string{"active", "folded", "all-in", "sitting-out", "eliminated"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Mode selects the economic rules of a table.
type Mode int

const (
	Cash Mode = iota
	Tournament
	Fun
)

func (m Mode) String() string {
	switch m {
	case Cash:
		return "cash"
	case Tournament:
		return "tournament"
	case Fun:
		return "fun"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseMode converts config text to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "cash", "":
		return Cash, nil
	case "tournament":
		return Tournament, nil
	case "fun":
		return Fun, nil
	default:
		return 0, fmt.Errorf("unknown game mode %q", s)
	}
}

// Raked reports whether the mode charges rake.
func (m Mode) Raked() bool {
	return m == Cash
}

// raiseTarget is the total bet level a raise to amount is clamped up to:
// at least double the current bet and never below the big blind.
func raiseTarget(amount, currentBet, bigBlind chips.Amount) chips.Amount {
	return max(amount, 2*currentBet, bigBlind)
}

// bettingClosed reports whether the current street needs no further action.
// Every active seat must have matched the bet and acted since it last changed.
// A lone active seat that has matched has nobody left to bet against.
func (s *State) bettingClosed() bool {
	active := 0
	for i := range s.Seats {
		if s.Seats[i].Status == Active && s.Seats[i].inHand() {
			active++
		}
	}
	for i := range s.Seats {
		seat := &s.Seats[i]
		if seat.Status != Active || !seat.inHand() {
			continue
		}
		if seat.Bet != s.CurrentBet {
			return false
		}
		if active > 1 && !seat.Acted {
			return false
		}
	}
	return true
}

// needsAction reports whether the seat at i still owes a decision.
func (s *State) needsAction(i int) bool {
	seat := &s.Seats[i]
	return seat.Status == Active && seat.inHand() && (!seat.Acted || seat.Bet != s.CurrentBet)
}

// nextActor returns the first seat clockwise after from that owes a decision,
// or -1.
func (s *State) nextActor(from int) int {
	n := len(s.Seats)
	for k := 1; k <= n; k++ {
		i := (from + k) % n
		if s.needsAction(i) {
			return i
		}
	}
	return -1
}

// canAct counts seats that may still put chips in.
func (s *State) canAct() int {
	n := 0
	for i := range s.Seats {
		if s.Seats[i].Status == Active && s.Seats[i].inHand() {
			n++
		}
	}
	return n
}

// contenders returns the positions of seats still eligible to win, clockwise
// starting left of the dealer.
func (s *State) contenders() []int {
	var out []int
	for _, i := range s.clockwise() {
		if st := s.Seats[i].Status; (st == Active || st == AllIn) && s.Seats[i].inHand() {
			out = append(out, i)
		}
	}
	return out
}

// clockwise lists every seat position starting left of the dealer.
func (s *State) clockwise() []int {
	n := len(s.Seats)
	out := make([]int, 0, n)
	start := s.Dealer + 1
	if s.Dealer < 0 {
		start = 0
	}
	for k := 0; k < n; k++ {
		out = append(out, (start+k)%n)
	}
	return out
}
