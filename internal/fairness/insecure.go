//go:build insecureshuffle

package fairness

import (
	"github.com/lox/fairholdem/internal/randutil"
	"github.com/lox/fairholdem/poker"
)

// InsecureShuffle orders a deck from a plain PCG seed. It is only compiled
// with the insecureshuffle build tag and its output cannot be verified.
func InsecureShuffle(seed int64) poker.Deck {
	cards := poker.OrderedCards()
	rng := randutil.New(seed)
	rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	deck, err := poker.DeckFrom(cards[:])
	if err != nil {
		panic(err)
	}
	return deck
}
