package table

import (
	"fmt"

	"github.com/lox/fairholdem/internal/chips"
	"github.com/lox/fairholdem/internal/fairness"
	"github.com/lox/fairholdem/poker"
)

// MaxSeats is the largest table the engine accepts. Twenty-six seats use all
// 52 cards for hole cards, after which every street is skipped.
const MaxSeats = poker.DeckSize / 2

// Config describes a table's fixed parameters.
type Config struct {
	ID         string       `json:"id"`
	Mode       Mode         `json:"mode"`
	MaxSeats   int          `json:"maxSeats"`
	SmallBlind chips.Amount `json:"smallBlind"`
	BigBlind   chips.Amount `json:"bigBlind"`
}

// Validate checks seat count and blinds.
func (c Config) Validate() error {
	if c.MaxSeats < 2 || c.MaxSeats > MaxSeats {
		return fmt.Errorf("%w: max seats %d outside 2..%d", ErrInvalidTable, c.MaxSeats, MaxSeats)
	}
	if c.SmallBlind <= 0 || c.BigBlind < c.SmallBlind {
		return fmt.Errorf("%w: blinds %d/%d", ErrInvalidTable, c.SmallBlind, c.BigBlind)
	}
	return nil
}

// Pot is one settled slice of the hand's chips.
type Pot struct {
	Level        chips.Amount `json:"level"`
	Amount       chips.Amount `json:"amount"`
	Rake         chips.Amount `json:"rake"`
	Contributors int          `json:"contributors"`
	Eligible     []int        `json:"eligible"`
	Winners      []int        `json:"winners,omitempty"`
}

// Winner records what one seat took from the hand.
type Winner struct {
	Position    int          `json:"position"`
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Amount      chips.Amount `json:"amount"`
	HandName    string       `json:"handName,omitempty"`
	Description string       `json:"description"`
	Cards       []poker.Card `json:"cards,omitempty"`
}

// HandSummary archives a finished hand once the next one is dealt.
type HandSummary struct {
	HandNumber     uint64          `json:"handNumber"`
	CommunityCards []poker.Card    `json:"communityCards"`
	Winners        []Winner        `json:"winners"`
	Fairness       fairness.Record `json:"fairness"`
}

// State is a complete table snapshot. Engine methods never modify a State
// they are given; they return a new one.
type State struct {
	Config         Config          `json:"config"`
	Seats          []Seat          `json:"seats"`
	Street         Street          `json:"street"`
	CommunityCards []poker.Card    `json:"communityCards"`
	Pot            chips.Amount    `json:"pot"`
	CurrentBet     chips.Amount    `json:"currentBet"`
	Actor          int             `json:"actor"`
	Dealer         int             `json:"dealer"`
	HandNumber     uint64          `json:"handNumber"`
	Fairness       fairness.Record `json:"fairness"`
	HoleCardsDealt int             `json:"holeCardsDealt"`
	Pots           []Pot           `json:"pots,omitempty"`
	Winners        []Winner        `json:"winners,omitempty"`
	HandRake       chips.Amount    `json:"handRake"`
	RakeCollected  chips.Amount    `json:"rakeCollected"`
	Exhausted      bool            `json:"exhausted,omitempty"`
	Halted         bool            `json:"halted,omitempty"`
	LastHand       *HandSummary    `json:"lastHand,omitempty"`
	Log            string          `json:"log,omitempty"`

	deck poker.Deck
}

// InHand reports whether a hand has been dealt and not yet settled.
func (s State) InHand() bool {
	return s.Street.Betting()
}

// Seat returns the seat at position, if it is occupied.
func (s State) Seat(position int) (Seat, bool) {
	if position < 0 || position >= len(s.Seats) || !s.Seats[position].Occupied() {
		return Seat{}, false
	}
	return s.Seats[position].clone(), true
}

// SeatByID finds a seated player.
func (s State) SeatByID(id string) (Seat, bool) {
	for _, seat := range s.Seats {
		if seat.ID == id && id != "" {
			return seat.clone(), true
		}
	}
	return Seat{}, false
}

// Owed is what the seat must add to call.
func (s State) Owed(position int) chips.Amount {
	if position < 0 || position >= len(s.Seats) {
		return 0
	}
	return max(0, min(s.CurrentBet-s.Seats[position].Bet, s.Seats[position].Balance))
}

// ChipTotal is every chip the table accounts for: balances, the pot and
// all rake taken so far. It only changes through AddPlayer and Rebuy.
func ChipTotal(s State) chips.Amount {
	total := s.Pot + s.RakeCollected
	for _, seat := range s.Seats {
		total += seat.Balance
	}
	return total
}

func (s State) clone() State {
	out := s
	out.Seats = make([]Seat, len(s.Seats))
	for i, seat := range s.Seats {
		out.Seats[i] = seat.clone()
	}
	out.CommunityCards = append([]poker.Card(nil), s.CommunityCards...)
	out.Pots = clonePots(s.Pots)
	out.Winners = cloneWinners(s.Winners)
	if s.LastHand != nil {
		lh := *s.LastHand
		lh.CommunityCards = append([]poker.Card(nil), lh.CommunityCards...)
		lh.Winners = cloneWinners(lh.Winners)
		out.LastHand = &lh
	}
	return out
}

func clonePots(pots []Pot) []Pot {
	if pots == nil {
		return nil
	}
	out := make([]Pot, len(pots))
	for i, p := range pots {
		p.Eligible = append([]int(nil), p.Eligible...)
		p.Winners = append([]int(nil), p.Winners...)
		out[i] = p
	}
	return out
}

func cloneWinners(ws []Winner) []Winner {
	if ws == nil {
		return nil
	}
	out := make([]Winner, len(ws))
	for i, w := range ws {
		w.Cards = append([]poker.Card(nil), w.Cards...)
		out[i] = w
	}
	return out
}

// Public returns the snapshot every observer may see: no hole cards except
// those shown down, and no server secret before reveal.
func Public(s State) State {
	return Redact(s, -1)
}

// Redact returns the snapshot as seen from one seat, which keeps its own cards.
// Hand strength is hidden along with the cards it was computed from. At a
// contested showdown every evaluated seat is shown.
func Redact(s State, viewer int) State {
	out := s.clone()
	out.Fairness = out.Fairness.Public()
	for i := range out.Seats {
		seat := &out.Seats[i]
		if i == viewer || (out.Street == Showdown && seat.Hand != nil) {
			continue
		}
		seat.Hand = nil
		if len(seat.HoleCards) == 0 {
			continue
		}
		seat.HoleCards = nil
		seat.CardsHidden = true
	}
	return out
}
