package table

import (
	"fmt"

	"github.com/lox/fairholdem/internal/chips"
)

// NewTable returns an empty table waiting for players.
func (e *Engine) NewTable(cfg Config) (State, error) {
	if err := cfg.Validate(); err != nil {
		return State{}, err
	}
	s := State{
		Config: cfg,
		Seats:  make([]Seat, cfg.MaxSeats),
		Street: Waiting,
		Actor:  -1,
		Dealer: -1,
	}
	for i := range s.Seats {
		s.Seats[i].Position = i
	}
	s.Log = "Table opened."
	return s, nil
}

// AddPlayer seats a player at the requested position, or the first free seat
// if that one is taken or out of range. Pass -1 for no preference. A player
// joining during a hand sits folded until the next deal.
func (e *Engine) AddPlayer(s State, id, name string, buyIn chips.Amount, position int) (State, error) {
	if id == "" {
		return s, fmt.Errorf("%w: empty player id", ErrProtocol)
	}
	if buyIn < 0 {
		return s, fmt.Errorf("%w: buy-in %d", ErrInvalidAmount, buyIn)
	}
	if _, ok := s.SeatByID(id); ok {
		return s, fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
	}

	pos := -1
	if position >= 0 && position < len(s.Seats) && !s.Seats[position].Occupied() {
		pos = position
	} else {
		for i := range s.Seats {
			if !s.Seats[i].Occupied() {
				pos = i
				break
			}
		}
	}
	if pos < 0 {
		return s, ErrTableFull
	}

	if name == "" {
		name = id
	}
	out := s.clone()
	seat := Seat{Position: pos, ID: id, Name: name, Balance: buyIn, Status: Active}
	if out.InHand() {
		seat.Status = Folded
	}
	out.Seats[pos] = seat
	out.Log = fmt.Sprintf("%s sits down in seat %d.", name, pos+1)
	e.logger.Debug("player seated", "table", s.Config.ID, "player", id, "seat", pos, "buy_in", buyIn)
	return out, nil
}

// SitOut toggles a seat between sitting out and playing. Sitting out during a
// live hand folds the seat first. Returning takes effect at the next deal.
func (e *Engine) SitOut(s State, position int) (State, error) {
	if _, ok := s.Seat(position); !ok {
		return s, ErrUnknownSeat
	}
	seat := s.Seats[position]
	switch seat.Status {
	case Eliminated:
		return s, ErrEliminated
	case SittingOut:
		out := s.clone()
		out.Seats[position].Status = Active
		if out.InHand() {
			out.Seats[position].Status = Folded
		}
		out.Log = fmt.Sprintf("%s is back.", seat.Name)
		return out, nil
	}

	if s.InHand() && seat.inHand() && seat.Status == AllIn {
		return s, ErrHandInProgress
	}
	out := s
	if s.InHand() && seat.Live() {
		var err error
		out, err = e.ApplyAction(s, position, Fold, 0)
		if err != nil {
			return s, err
		}
	}
	out = out.clone()
	out.Seats[position].Status = SittingOut
	out.Log = fmt.Sprintf("%s sits out.", seat.Name)
	return out, nil
}

// Rebuy adds chips to a seat between hands.
func (e *Engine) Rebuy(s State, position int, amount chips.Amount) (State, error) {
	if _, ok := s.Seat(position); !ok {
		return s, ErrUnknownSeat
	}
	if s.InHand() {
		return s, ErrHandInProgress
	}
	if amount <= 0 {
		return s, fmt.Errorf("%w: rebuy %d", ErrInvalidAmount, amount)
	}
	if s.Seats[position].Status == Eliminated {
		return s, ErrEliminated
	}
	out := s.clone()
	seat := &out.Seats[position]
	if seat.Balance == 0 && seat.Status == SittingOut {
		seat.Status = Active
	}
	seat.Balance += amount
	out.Log = fmt.Sprintf("%s rebuys for %s.", seat.Name, amount)
	e.logger.Debug("rebuy", "table", s.Config.ID, "player", seat.ID, "amount", amount)
	return out, nil
}
