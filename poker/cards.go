package poker

import (
	"fmt"
	"strings"
)

// Suit represents a card suit. The declaration order is the canonical deck order.
type Suit uint8

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// NumSuits is the number of suits in a standard deck.
const NumSuits = 4

// String returns the single-letter suit code used in card notation.
func (s Suit) String() string {
	switch s {
	case Spades:
		return "s"
	case Hearts:
		return "h"
	case Diamonds:
		return "d"
	case Clubs:
		return "c"
	default:
		return "?"
	}
}

// Name returns the long suit name.
func (s Suit) Name() string {
	switch s {
	case Spades:
		return "spades"
	case Hearts:
		return "hearts"
	case Diamonds:
		return "diamonds"
	case Clubs:
		return "clubs"
	default:
		return "unknown"
	}
}

// Rank represents a card rank. Values match pip counts, with the ace high at 14.
type Rank uint8

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// NumRanks is the number of ranks per suit.
const NumRanks = 13

const rankChars = "23456789TJQKA"

// String returns the single-character rank code ("T" for ten).
func (r Rank) String() string {
	if r < Two || r > Ace {
		return "?"
	}
	return string(rankChars[r-Two])
}

// Name returns the rank spelled out, e.g. "Queen".
func (r Rank) Name() string {
	names := [...]string{"Two", "Three", "Four", "Five", "Six", "Seven", "Eight",
		"Nine", "Ten", "Jack", "Queen", "King", "Ace"}
	if r < Two || r > Ace {
		return "Unknown"
	}
	return names[r-Two]
}

// Plural returns the plural rank name, e.g. "Sixes" or "Kings".
func (r Rank) Plural() string {
	if r == Six {
		return "Sixes"
	}
	return r.Name() + "s"
}

// Card is an immutable (suit, rank) pair.
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a card from rank and suit.
func NewCard(rank Rank, suit Suit) Card {
	return Card{Suit: suit, Rank: rank}
}

// Valid reports whether the card is one of the 52 standard cards.
func (c Card) Valid() bool {
	return c.Suit < NumSuits && c.Rank >= Two && c.Rank <= Ace
}

// Index returns the card's position in the canonical deck order (0-51), or -1 if invalid.
func (c Card) Index() int {
	if !c.Valid() {
		return -1
	}
	return int(c.Suit)*NumRanks + int(c.Rank-Two)
}

// String returns the two-character notation, e.g. "As" or "Td".
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return c.Rank.String() + c.Suit.String()
}

// MarshalText implements encoding.TextMarshaler.
func (c Card) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid card: suit=%d rank=%d", c.Suit, c.Rank)
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCard parses card notation such as "As", "Td" or "10h".
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "10") {
		s = "T" + s[2:]
	}
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card string: %q", s)
	}

	idx := strings.IndexByte(rankChars, upper(s[0]))
	if idx < 0 {
		return Card{}, fmt.Errorf("invalid rank: %c", s[0])
	}
	rank := Two + Rank(idx)

	var suit Suit
	switch s[1] {
	case 's', 'S':
		suit = Spades
	case 'h', 'H':
		suit = Hearts
	case 'd', 'D':
		suit = Diamonds
	case 'c', 'C':
		suit = Clubs
	default:
		return Card{}, fmt.Errorf("invalid suit: %c", s[1])
	}

	return NewCard(rank, suit), nil
}

// ParseCards parses each string with ParseCard.
func ParseCards(ss ...string) ([]Card, error) {
	cards := make([]Card, 0, len(ss))
	for _, s := range ss {
		c, err := ParseCard(s)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// FormatCards joins card notations with spaces.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// CardStrings returns the notation of each card.
func CardStrings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}
