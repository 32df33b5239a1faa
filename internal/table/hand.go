package table

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/fairholdem/internal/chips"
	"github.com/lox/fairholdem/internal/fairness"
	"github.com/lox/fairholdem/poker"
)

// DealHand starts the next hand with a deck that must be exactly the one rec
// derives. It rotates the button, posts blinds, deals two cards to every
// eligible seat and hands the turn to the first seat after the big blind.
//
// Too few eligible seats is a protocol error and leaves s unchanged. A record
// whose secret, seeds or nonce do not check out is a fairness violation: the
// returned state is halted and no further hands can be dealt on it.
func (e *Engine) DealHand(s State, rec fairness.Record, deck poker.Deck) (State, error) {
	logger := e.logger.With("table", s.Config.ID, "nonce", rec.Nonce)
	if s.Halted {
		return s, ErrHalted
	}
	if s.InHand() {
		return s, ErrHandInProgress
	}

	out := s.clone()
	out.archiveHand()
	out.resetHand()

	eligible := out.eligible()
	if len(eligible) < 2 {
		logger.Debug("deal skipped", "eligible", len(eligible))
		return s, fmt.Errorf("%w: %d eligible", ErrNotEnoughPlayers, len(eligible))
	}

	if rec.Nonce <= s.HandNumber {
		return e.halt(s, logger, fmt.Errorf("%w: nonce %d, hand %d", ErrNonceReused, rec.Nonce, s.HandNumber))
	}
	if err := rec.CheckDeck(deck); err != nil {
		return e.halt(s, logger, err)
	}
	fresh, err := poker.DeckFrom(deck.Cards())
	if err != nil {
		return e.halt(s, logger, fmt.Errorf("%w: %v", fairness.ErrDeckMismatch, err))
	}
	out.deck = fresh

	out.Dealer = out.nextEligible(s.Dealer)
	sb := out.nextEligible(out.Dealer)
	bb := out.nextEligible(sb)

	for _, i := range eligible {
		out.Seats[i].Dealt = true
		out.Seats[i].HandsPlayed++
	}

	out.Pot += out.Seats[sb].commit(out.Config.SmallBlind)
	out.Seats[sb].LastAction = "small blind"
	out.Pot += out.Seats[bb].commit(out.Config.BigBlind)
	out.Seats[bb].LastAction = "big blind"
	out.CurrentBet = max(out.Seats[sb].Bet, out.Seats[bb].Bet)

	// One card at a time, starting left of the button.
	order := out.clockwise()
	for round := 0; round < 2; round++ {
		for _, i := range order {
			if !out.Seats[i].Dealt {
				continue
			}
			c, _ := out.deck.Draw()
			out.Seats[i].HoleCards = append(out.Seats[i].HoleCards, c)
			out.HoleCardsDealt++
		}
	}

	out.Street = Preflop
	out.HandNumber = rec.Nonce
	out.Fairness = rec
	out.Actor = -1
	if !out.bettingClosed() {
		out.Actor = out.nextActor(bb)
	}
	out.Log = fmt.Sprintf("Hand #%d started.", out.HandNumber)

	logger.Info("hand dealt",
		"hand", out.HandNumber,
		"seats", len(eligible),
		"dealer", out.Dealer,
		"commitment", rec.ServerSeedHash)
	return out, nil
}

func (e *Engine) halt(s State, logger *log.Logger, err error) (State, error) {
	logger.Error("fairness violation, table halted", "hand", s.HandNumber, "error", err)
	out := s.clone()
	out.Halted = true
	out.Log = "Dealing halted: " + err.Error()
	return out, err
}

// archiveHand moves a settled hand's outcome into LastHand.
func (s *State) archiveHand() {
	if s.Street != Showdown {
		return
	}
	s.LastHand = &HandSummary{
		HandNumber:     s.HandNumber,
		CommunityCards: append([]poker.Card(nil), s.CommunityCards...),
		Winners:        cloneWinners(s.Winners),
		Fairness:       s.Fairness,
	}
}

// resetHand clears per-hand fields and settles lifecycle status. A seat left
// with no chips is eliminated in tournaments and sat out otherwise.
func (s *State) resetHand() {
	for i := range s.Seats {
		seat := &s.Seats[i]
		seat.Bet = 0
		seat.TotalBet = 0
		seat.HoleCards = nil
		seat.CardsHidden = false
		seat.Dealt = false
		seat.Acted = false
		seat.LastAction = ""
		seat.Hand = nil
		if !seat.Occupied() {
			continue
		}
		switch seat.Status {
		case Active, Folded, AllIn:
			switch {
			case seat.Balance > 0:
				seat.Status = Active
			case s.Config.Mode == Tournament:
				seat.Status = Eliminated
			default:
				seat.Status = SittingOut
			}
		}
	}
	s.CommunityCards = nil
	s.Pot = 0
	s.CurrentBet = 0
	s.Actor = -1
	s.HoleCardsDealt = 0
	s.Pots = nil
	s.Winners = nil
	s.HandRake = 0
	s.Exhausted = false
}

// eligible lists seats that will be dealt in, clockwise from seat 0.
func (s *State) eligible() []int {
	var out []int
	for i := range s.Seats {
		if s.Seats[i].Occupied() && s.Seats[i].Status == Active && s.Seats[i].Balance > 0 {
			out = append(out, i)
		}
	}
	return out
}

// nextEligible returns the first seat after from that is being dealt in.
func (s *State) nextEligible(from int) int {
	n := len(s.Seats)
	for k := 1; k <= n; k++ {
		i := ((from+k)%n + n) % n
		if s.Seats[i].Occupied() && s.Seats[i].Status == Active && s.Seats[i].Balance > 0 {
			return i
		}
	}
	return -1
}

// ApplyAction validates and applies one decision. Only the seat whose turn it
// is may act, except that any active seat may fold at any time. For Raise,
// amount is the total bet level wanted; it is raised to at least twice the
// current bet and reduced to an all-in when the seat cannot cover it. Amount
// is ignored for every other action.
//
// When a fold leaves one contender the hand settles immediately. When betting
// on the street closes, Actor becomes -1 and the caller advances the street.
func (e *Engine) ApplyAction(s State, position int, action Action, amount chips.Amount) (State, error) {
	logger := e.logger.With("table", s.Config.ID, "hand", s.HandNumber, "seat", position, "action", action)
	out, err := e.applyAction(s, position, action, amount)
	if err != nil {
		logger.Debug("action rejected", "error", err)
		return s, err
	}
	logger.Debug("action applied", "log", out.Log)
	return out, nil
}

func (e *Engine) applyAction(s State, position int, action Action, amount chips.Amount) (State, error) {
	if !s.InHand() {
		return s, ErrNoHand
	}
	seat, ok := s.Seat(position)
	if !ok {
		return s, ErrUnknownSeat
	}
	if action < Fold || action > Raise {
		return s, fmt.Errorf("%w: %d", ErrInvalidAction, action)
	}
	if !seat.inHand() || seat.Status != Active {
		return s, ErrSeatInactive
	}
	if action != Fold && position != s.Actor {
		return s, ErrNotYourTurn
	}

	out := s.clone()
	p := &out.Seats[position]

	switch action {
	case Fold:
		p.Status = Folded
		p.Hand = nil
		out.Log = fmt.Sprintf("%s folds.", p.Name)

	case Check:
		if p.Bet != out.CurrentBet {
			return s, fmt.Errorf("%w: %s to call", ErrCannotCheck, out.CurrentBet-p.Bet)
		}
		out.Log = fmt.Sprintf("%s checks.", p.Name)

	case Call:
		owed := out.CurrentBet - p.Bet
		if owed <= 0 {
			out.Log = fmt.Sprintf("%s checks.", p.Name)
			break
		}
		out.Pot += p.commit(owed)
		if p.Status == AllIn {
			out.Log = fmt.Sprintf("%s calls all-in.", p.Name)
		} else {
			out.Log = fmt.Sprintf("%s calls %s.", p.Name, owed)
		}

	case Raise:
		if amount < 0 {
			return s, fmt.Errorf("%w: raise to %d", ErrInvalidAmount, amount)
		}
		target := raiseTarget(amount, out.CurrentBet, out.Config.BigBlind)
		target = min(target, p.Balance+p.Bet)
		out.Pot += p.commit(target - p.Bet)
		switch {
		case p.Bet > out.CurrentBet:
			out.CurrentBet = p.Bet
			for i := range out.Seats {
				if i != position && out.Seats[i].Status == Active {
					out.Seats[i].Acted = false
				}
			}
			if p.Status == AllIn {
				out.Log = fmt.Sprintf("%s raises all-in to %s.", p.Name, p.Bet)
			} else {
				out.Log = fmt.Sprintf("%s raises to %s.", p.Name, p.Bet)
			}
		default:
			out.Log = fmt.Sprintf("%s calls all-in.", p.Name)
		}
	}

	p.Acted = true
	p.LastAction = action.String()
	return e.progress(out, position), nil
}

// progress settles, closes the street or passes the turn after an action by from.
func (e *Engine) progress(s State, from int) State {
	if len(s.contenders()) <= 1 {
		return e.settle(s)
	}
	if s.bettingClosed() {
		s.Actor = -1
		return s
	}
	if s.Actor == from || s.Actor < 0 || !s.needsAction(s.Actor) {
		s.Actor = s.nextActor(from)
	}
	return s
}

// AdvanceStreet deals the next street once betting has closed: burn one and
// reveal three for the flop, burn one and reveal one for the turn and river.
// After the river it settles. If fewer than two seats can still bet, it keeps
// dealing without betting until the hand is settled.
func (e *Engine) AdvanceStreet(s State) (State, error) {
	if !s.InHand() {
		return s, ErrNoHand
	}
	if !s.bettingClosed() {
		return s, ErrBettingOpen
	}
	return e.advance(s.clone()), nil
}

// Settle finishes a hand whose betting is over for good: on the river, or
// with fewer than two seats able to bet. Remaining streets are dealt first.
func (e *Engine) Settle(s State) (State, error) {
	if !s.InHand() {
		return s, ErrNoHand
	}
	if !s.bettingClosed() {
		return s, ErrBettingOpen
	}
	if s.Street != River && s.canAct() >= 2 {
		return s, fmt.Errorf("%w: %s betting still to come", ErrHandInProgress, s.Street+1)
	}
	return e.advance(s.clone()), nil
}

func (e *Engine) advance(s State) State {
	for {
		for i := range s.Seats {
			s.Seats[i].Bet = 0
			s.Seats[i].Acted = false
		}
		s.CurrentBet = 0

		var dealt bool
		switch s.Street {
		case Preflop:
			dealt = s.dealStreet(Flop, 3)
		case Flop:
			dealt = s.dealStreet(Turn, 1)
		case Turn:
			dealt = s.dealStreet(River, 1)
		}
		if !dealt {
			return e.settle(s)
		}
		e.rateContenders(&s)

		if !s.bettingClosed() {
			s.Actor = s.nextActor(s.Dealer)
			return s
		}
	}
}

// dealStreet burns one card and reveals n. It reports false, marking the
// deck exhausted, when not enough cards remain.
func (s *State) dealStreet(next Street, n int) bool {
	if s.deck.Remaining() < n+1 {
		s.Exhausted = true
		return false
	}
	s.deck.Draw()
	cards, _ := s.deck.DrawN(n)
	s.CommunityCards = append(s.CommunityCards, cards...)
	s.Street = next
	s.Actor = -1
	s.Log = fmt.Sprintf("%s dealt: %s.", titleStreet(next), poker.FormatCards(cards))
	return true
}

func titleStreet(s Street) string {
	switch s {
	case Flop:
		return "Flop"
	case Turn:
		return "Turn"
	case River:
		return "River"
	default:
		return s.String()
	}
}
