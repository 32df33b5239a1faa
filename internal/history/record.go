// Package history stores settled hands as TOML records that anyone can
// re-verify once the server secret has been revealed.
package history

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/lox/fairholdem/internal/chips"
	"github.com/lox/fairholdem/internal/fairness"
	"github.com/lox/fairholdem/internal/table"
	"github.com/lox/fairholdem/poker"
)

var (
	// ErrNotSettled is returned when a state has no finished hand to record.
	ErrNotSettled = errors.New("history: hand not settled")
	// ErrNotRevealed means the record's server secret is still private.
	ErrNotRevealed = errors.New("history: server secret not revealed")
)

// Record is one settled hand.
type Record struct {
	HandID         string          `toml:"hand_id"`
	Table          string          `toml:"table"`
	Mode           string          `toml:"mode"`
	HandNumber     uint64          `toml:"hand_number"`
	Time           time.Time       `toml:"time"`
	SmallBlind     chips.Amount    `toml:"small_blind"`
	BigBlind       chips.Amount    `toml:"big_blind"`
	Dealer         int             `toml:"dealer"`
	Board          []string        `toml:"board"`
	HoleCardsDealt int             `toml:"hole_cards_dealt"`
	Rake           chips.Amount    `toml:"rake"`
	Exhausted      bool            `toml:"exhausted,omitempty"`
	Fairness       fairness.Record `toml:"fairness"`
	Players        []Player        `toml:"players"`
	Pots           []Pot           `toml:"pots"`
}

// Player is a dealt seat's view of the hand.
type Player struct {
	Seat     int          `toml:"seat"`
	ID       string       `toml:"id"`
	Name     string       `toml:"name,omitempty"`
	Cards    []string     `toml:"cards,omitempty"`
	Invested chips.Amount `toml:"invested"`
	Won      chips.Amount `toml:"won"`
	Stack    chips.Amount `toml:"stack"`
	Status   string       `toml:"status"`
	Hand     string       `toml:"hand,omitempty"`
	Finish   int          `toml:"finish,omitempty"`
}

// Pot is a settled slice.
type Pot struct {
	Amount   chips.Amount `toml:"amount"`
	Rake     chips.Amount `toml:"rake"`
	Eligible []int        `toml:"eligible"`
	Winners  []int        `toml:"winners"`
}

// NewID returns a time-ordered hand id.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FromState builds the record for the hand that s has just settled.
func FromState(s table.State, id string, at time.Time) (*Record, error) {
	if s.Street != table.Showdown {
		return nil, fmt.Errorf("%w: table %s is %s", ErrNotSettled, s.Config.ID, s.Street)
	}
	if id == "" {
		id = NewID()
	}

	rec := &Record{
		HandID:         id,
		Table:          s.Config.ID,
		Mode:           s.Config.Mode.String(),
		HandNumber:     s.HandNumber,
		Time:           at.UTC().Truncate(time.Millisecond),
		SmallBlind:     s.Config.SmallBlind,
		BigBlind:       s.Config.BigBlind,
		Dealer:         s.Dealer,
		Board:          poker.CardStrings(s.CommunityCards),
		HoleCardsDealt: s.HoleCardsDealt,
		Rake:           s.HandRake,
		Exhausted:      s.Exhausted,
		Fairness:       s.Fairness,
	}

	won := make(map[int]table.Winner, len(s.Winners))
	for _, w := range s.Winners {
		won[w.Position] = w
	}
	for _, seat := range s.Seats {
		if !seat.Dealt {
			continue
		}
		p := Player{
			Seat:     seat.Position,
			ID:       seat.ID,
			Name:     seat.Name,
			Cards:    poker.CardStrings(seat.HoleCards),
			Invested: seat.TotalBet,
			Stack:    seat.Balance,
			Status:   seat.Status.String(),
			Finish:   seat.FinishRank,
		}
		if w, ok := won[seat.Position]; ok {
			p.Won = w.Amount
			p.Hand = w.Description
		} else if seat.Hand != nil {
			p.Hand = seat.Hand.Description
		}
		rec.Players = append(rec.Players, p)
	}
	for _, pot := range s.Pots {
		rec.Pots = append(rec.Pots, Pot{
			Amount:   pot.Amount,
			Rake:     pot.Rake,
			Eligible: pot.Eligible,
			Winners:  pot.Winners,
		})
	}
	return rec, nil
}

// Encode writes the record as TOML.
func Encode(w io.Writer, rec *Record) error {
	if rec == nil {
		return fmt.Errorf("history: record is nil")
	}
	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(rec)
}

// EncodeToBytes encodes and returns the result as bytes.
func EncodeToBytes(rec *Record) ([]byte, error) {
	var buf strings.Builder
	if err := Encode(&buf, rec); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

// Decode reads a TOML record.
func Decode(r io.Reader) (*Record, error) {
	var rec Record
	md, err := toml.NewDecoder(r).Decode(&rec)
	if err != nil {
		return nil, fmt.Errorf("history: decode: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("history: unknown field %s", undecoded[0])
	}
	return &rec, nil
}

// Verify re-derives the hand's deck from the revealed record and checks the
// commitment and the board.
func (r *Record) Verify() (fairness.Report, error) {
	if !r.Fairness.Revealed || r.Fairness.ServerSeed == "" {
		return fairness.Report{}, ErrNotRevealed
	}
	board, err := poker.ParseCards(r.Board...)
	if err != nil {
		return fairness.Report{}, fmt.Errorf("history: board: %w", err)
	}
	return fairness.VerifyHand(r.Fairness.Request(r.HoleCardsDealt, board)), nil
}
