package table

import (
	"github.com/lox/fairholdem/internal/chips"
	"github.com/lox/fairholdem/poker"
)

// Seat is one chair at the table. An empty chair has no ID.
type Seat struct {
	Position    int               `json:"position"`
	ID          string            `json:"id,omitempty"`
	Name        string            `json:"name,omitempty"`
	Balance     chips.Amount      `json:"balance"`
	Bet         chips.Amount      `json:"bet"`      // this street
	TotalBet    chips.Amount      `json:"totalBet"` // this hand
	HoleCards   []poker.Card      `json:"holeCards,omitempty"`
	CardsHidden bool              `json:"cardsHidden,omitempty"`
	Status      Status            `json:"status"`
	Dealt       bool              `json:"dealt"`
	Acted       bool              `json:"acted"`
	LastAction  string            `json:"lastAction,omitempty"`
	HandsPlayed int               `json:"handsPlayed"`
	Hand        *poker.HandResult `json:"hand,omitempty"`       // best hand on the board so far
	FinishRank  int               `json:"finishRank,omitempty"` // tournaments only
}

// Occupied reports whether a player sits here.
func (s Seat) Occupied() bool {
	return s.ID != ""
}

// inHand reports whether the seat was dealt into the current hand.
func (s Seat) inHand() bool {
	return s.ID != "" && s.Dealt
}

// Live reports whether the seat can still win the current hand.
func (s Seat) Live() bool {
	return s.inHand() && (s.Status == Active || s.Status == AllIn)
}

func (s Seat) clone() Seat {
	if s.HoleCards != nil {
		s.HoleCards = append([]poker.Card(nil), s.HoleCards...)
	}
	if s.Hand != nil {
		h := *s.Hand
		h.Cards = append([]poker.Card(nil), h.Cards...)
		s.Hand = &h
	}
	return s
}

// commit moves up to amount from balance into the bet. Running out of
// balance puts the seat all-in.
func (s *Seat) commit(amount chips.Amount) chips.Amount {
	amount = min(amount, s.Balance)
	s.Balance -= amount
	s.Bet += amount
	s.TotalBet += amount
	if s.Balance == 0 {
		s.Status = AllIn
	}
	return amount
}
