package poker

import (
	"errors"
	"fmt"
)

// DeckSize is the number of cards in a standard deck.
const DeckSize = NumSuits * NumRanks

// ErrInvalidDeck is returned when a card sequence is not a permutation of the 52 standard cards.
var ErrInvalidDeck = errors.New("invalid deck")

// Deck is an ordered 52-card deck. Cards are drawn from the end, and burns and
// deals share the same draw pointer so a deck can be replayed position by position.
// Deck is a value type; copying it copies the draw pointer too.
type Deck struct {
	cards [DeckSize]Card
	drawn int
}

// OrderedCards returns the canonical domain order: spades, hearts, diamonds, clubs,
// each running two through ace.
func OrderedCards() [DeckSize]Card {
	var cards [DeckSize]Card
	i := 0
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			cards[i] = NewCard(rank, suit)
			i++
		}
	}
	return cards
}

// NewOrderedDeck returns an unshuffled deck in canonical order.
func NewOrderedDeck() Deck {
	return Deck{cards: OrderedCards()}
}

// DeckFrom builds a deck from an explicit card order. The cards must be a
// permutation of the standard 52.
func DeckFrom(cards []Card) (Deck, error) {
	if err := CheckPermutation(cards); err != nil {
		return Deck{}, err
	}
	var d Deck
	copy(d.cards[:], cards)
	return d, nil
}

// CheckPermutation verifies that cards contains each standard card exactly once.
func CheckPermutation(cards []Card) error {
	if len(cards) != DeckSize {
		return fmt.Errorf("%w: %d cards, want %d", ErrInvalidDeck, len(cards), DeckSize)
	}
	var seen [DeckSize]bool
	for i, c := range cards {
		idx := c.Index()
		if idx < 0 {
			return fmt.Errorf("%w: invalid card at position %d", ErrInvalidDeck, i)
		}
		if seen[idx] {
			return fmt.Errorf("%w: duplicate %s at position %d", ErrInvalidDeck, c, i)
		}
		seen[idx] = true
	}
	return nil
}

// Cards returns a copy of the full deck order, including drawn cards.
func (d Deck) Cards() []Card {
	out := make([]Card, DeckSize)
	copy(out, d.cards[:])
	return out
}

// Draw pops the card at the end of the undrawn portion.
func (d *Deck) Draw() (Card, bool) {
	if d.drawn >= DeckSize {
		return Card{}, false
	}
	d.drawn++
	return d.cards[DeckSize-d.drawn], true
}

// DrawN draws n cards, or none if fewer than n remain.
func (d *Deck) DrawN(n int) ([]Card, bool) {
	if n < 0 || d.Remaining() < n {
		return nil, false
	}
	out := make([]Card, n)
	for i := range out {
		out[i], _ = d.Draw()
	}
	return out, true
}

// Remaining returns the number of undrawn cards.
func (d Deck) Remaining() int {
	return DeckSize - d.drawn
}

// Drawn returns how many cards have been drawn so far.
func (d Deck) Drawn() int {
	return d.drawn
}

// DrawSequence returns every card in the order Draw would produce it from a fresh deck.
func (d Deck) DrawSequence() []Card {
	return DrawSequence(d.cards[:])
}

// DrawSequence reverses a deck order into draw order.
func DrawSequence(cards []Card) []Card {
	out := make([]Card, len(cards))
	for i, c := range cards {
		out[len(cards)-1-i] = c
	}
	return out
}

// Equal reports whether both decks hold the same card order. Draw pointers are ignored.
func (d Deck) Equal(other Deck) bool {
	return d.cards == other.cards
}
