package poker

import (
	"errors"
	"fmt"
	"sort"
)

// Category enumerates the poker hand classes ordered from weakest to strongest.
type Category uint8

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns a human-readable category name.
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// Score is a totally ordered hand strength. Higher is stronger.
//
// Layout: category in bits 20 and up, then five 4-bit tie-break ranks from
// most to least significant. Tie-break ranks never exceed 14, so no kicker
// combination can reach the next category.
type Score uint32

const (
	categoryShift = 20
	tieBreakSlots = 5
)

// Category extracts the hand category from the score.
func (s Score) Category() Category {
	return Category(s >> categoryShift)
}

// HandResult is the judgment for one evaluation call: a comparable score,
// the category name and the cards (at most five) that justify it.
type HandResult struct {
	Score       Score    `json:"score"`
	Category    Category `json:"category"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Cards       []Card   `json:"cards"`
}

// ErrCardCount is returned when Evaluate receives fewer than 5 or more than 7 cards.
var ErrCardCount = errors.New("evaluate: need between 5 and 7 cards")

// ErrDuplicateCard is returned when the same card appears twice.
var ErrDuplicateCard = errors.New("evaluate: duplicate card")

// Evaluate ranks 5 to 7 cards and returns the best 5-card hand.
func Evaluate(cards []Card) (HandResult, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return HandResult{}, fmt.Errorf("%w: got %d", ErrCardCount, len(cards))
	}
	return EvaluateBest(cards)
}

// EvaluateBest ranks between 1 and 7 cards. With fewer than five cards only
// the categories the available cards can form are considered and missing
// kickers count as nothing. Used when a showdown happens on a short board.
func EvaluateBest(cards []Card) (HandResult, error) {
	if len(cards) == 0 || len(cards) > 7 {
		return HandResult{}, fmt.Errorf("%w: got %d", ErrCardCount, len(cards))
	}
	var seen [DeckSize]bool
	for _, c := range cards {
		idx := c.Index()
		if idx < 0 {
			return HandResult{}, fmt.Errorf("evaluate: invalid card %v", c)
		}
		if seen[idx] {
			return HandResult{}, fmt.Errorf("%w: %s", ErrDuplicateCard, c)
		}
		seen[idx] = true
	}
	return evaluate(cards), nil
}

// MustEvaluate is Evaluate for inputs known to be valid. It panics on error.
func MustEvaluate(cards []Card) HandResult {
	res, err := Evaluate(cards)
	if err != nil {
		panic(err)
	}
	return res
}

// Compare returns 1 if a beats b, -1 if b beats a and 0 for an exact tie.
func Compare(a, b HandResult) int {
	switch {
	case a.Score > b.Score:
		return 1
	case a.Score < b.Score:
		return -1
	default:
		return 0
	}
}

func evaluate(input []Card) HandResult {
	cards := make([]Card, len(input))
	copy(cards, input)
	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].Rank != cards[j].Rank {
			return cards[i].Rank > cards[j].Rank
		}
		return cards[i].Suit < cards[j].Suit
	})

	var bySuit [NumSuits][]Card
	for _, c := range cards {
		bySuit[c.Suit] = append(bySuit[c.Suit], c)
	}
	var flushCards []Card
	for _, suited := range bySuit {
		if len(suited) >= 5 {
			flushCards = suited
			break
		}
	}

	if flushCards != nil {
		if run := findStraight(flushCards); run != nil {
			high := run[0].Rank
			if high == Ace {
				return result(RoyalFlush, run, "Unbeatable", high)
			}
			return result(StraightFlush, run, high.Name()+" High", high)
		}
	}

	var byRank [Ace + 1][]Card
	for _, c := range cards {
		byRank[c.Rank] = append(byRank[c.Rank], c)
	}
	var quads, trips, pairs []Rank
	for r := Ace; r >= Two; r-- {
		switch len(byRank[r]) {
		case 4:
			quads = append(quads, r)
		case 3:
			trips = append(trips, r)
		case 2:
			pairs = append(pairs, r)
		}
	}

	if len(quads) > 0 {
		q := quads[0]
		hand := append(clone(byRank[q]), kickers(cards, 1, q)...)
		return result(FourOfAKind, hand, q.Plural(), q, rankAt(hand, 4))
	}

	if len(trips) > 0 && (len(trips) > 1 || len(pairs) > 0) {
		t := trips[0]
		var p Rank
		if len(trips) > 1 {
			p = trips[1]
		}
		if len(pairs) > 0 && pairs[0] > p {
			p = pairs[0]
		}
		hand := append(clone(byRank[t]), byRank[p][:2]...)
		return result(FullHouse, hand, t.Plural()+" full of "+p.Plural(), t, p)
	}

	if flushCards != nil {
		hand := clone(flushCards[:5])
		return result(Flush, hand, hand[0].Rank.Name()+" High", ranksOf(hand)...)
	}

	if run := findStraight(cards); run != nil {
		high := run[0].Rank
		return result(Straight, run, high.Name()+" High", high)
	}

	if len(trips) > 0 {
		t := trips[0]
		hand := append(clone(byRank[t]), kickers(cards, 2, t)...)
		return result(ThreeOfAKind, hand, t.Plural(), t, rankAt(hand, 3), rankAt(hand, 4))
	}

	if len(pairs) >= 2 {
		hi, lo := pairs[0], pairs[1]
		hand := append(clone(byRank[hi]), byRank[lo]...)
		hand = append(hand, kickers(cards, 1, hi, lo)...)
		return result(TwoPair, hand, hi.Plural()+" and "+lo.Plural(), hi, lo, rankAt(hand, 4))
	}

	if len(pairs) == 1 {
		p := pairs[0]
		hand := append(clone(byRank[p]), kickers(cards, 3, p)...)
		return result(Pair, hand, "Pair of "+p.Plural(), p, rankAt(hand, 2), rankAt(hand, 3), rankAt(hand, 4))
	}

	n := min(5, len(cards))
	hand := clone(cards[:n])
	return result(HighCard, hand, hand[0].Rank.Name()+" High", ranksOf(hand)...)
}

// findStraight returns the highest five-card run in cards (sorted high to low),
// ordered from the top card down. The wheel is returned as 5-4-3-2-A.
func findStraight(sorted []Card) []Card {
	unique := make([]Card, 0, len(sorted))
	for _, c := range sorted {
		if len(unique) == 0 || unique[len(unique)-1].Rank != c.Rank {
			unique = append(unique, c)
		}
	}
	if len(unique) < 5 {
		return nil
	}

	for i := 0; i+5 <= len(unique); i++ {
		if unique[i].Rank-unique[i+4].Rank == 4 {
			return clone(unique[i : i+5])
		}
	}

	if unique[0].Rank != Ace {
		return nil
	}
	wheel := make([]Card, 0, 5)
	for _, want := range []Rank{Five, Four, Three, Two} {
		for _, c := range unique {
			if c.Rank == want {
				wheel = append(wheel, c)
				break
			}
		}
	}
	if len(wheel) != 4 {
		return nil
	}
	return append(wheel, unique[0])
}

// kickers returns the n highest cards whose rank is not excluded.
func kickers(sorted []Card, n int, exclude ...Rank) []Card {
	out := make([]Card, 0, n)
	for _, c := range sorted {
		if len(out) == n {
			break
		}
		skip := false
		for _, r := range exclude {
			if c.Rank == r {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, c)
		}
	}
	return out
}

func result(cat Category, hand []Card, desc string, tieBreak ...Rank) HandResult {
	score := Score(cat) << categoryShift
	for i := 0; i < tieBreakSlots; i++ {
		var r Rank
		if i < len(tieBreak) {
			r = tieBreak[i]
		}
		score |= Score(r) << (4 * (tieBreakSlots - 1 - i))
	}
	return HandResult{
		Score:       score,
		Category:    cat,
		Name:        cat.String(),
		Description: desc,
		Cards:       hand,
	}
}

func rankAt(hand []Card, i int) Rank {
	if i < len(hand) {
		return hand[i].Rank
	}
	return 0
}

func ranksOf(hand []Card) []Rank {
	out := make([]Rank, len(hand))
	for i, c := range hand {
		out[i] = c.Rank
	}
	return out
}

func clone(cards []Card) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}
