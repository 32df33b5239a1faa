package fairness

import (
	"fmt"

	"github.com/lox/fairholdem/poker"
)

// CommunityDraws is the number of draw positions the board consumes after the
// hole cards: burn, three flop cards, burn, turn, burn, river.
const CommunityDraws = 8

// CommunityOffsets are the board positions within the community draws:
// [1..3] flop, [5] turn, [7] river. Offsets 0, 4 and 6 are burns.
var CommunityOffsets = [5]int{1, 2, 3, 5, 7}

// VerifyCommunityCards checks that the five observed board cards sit at the
// community offsets of seq.
func VerifyCommunityCards(seq []poker.Card, observed []poker.Card) bool {
	if len(observed) != len(CommunityOffsets) {
		return false
	}
	return boardMatches(seq, observed)
}

// boardMatches compares a board of 0 to 5 cards against the leading offsets.
func boardMatches(seq []poker.Card, observed []poker.Card) bool {
	if len(observed) > len(CommunityOffsets) {
		return false
	}
	for i, c := range observed {
		off := CommunityOffsets[i]
		if off >= len(seq) || seq[off] != c {
			return false
		}
	}
	return true
}

// CommunitySequence returns the draw order that remains after holeCards hole
// cards have been dealt from d.
func CommunitySequence(d poker.Deck, holeCards int) []poker.Card {
	seq := d.DrawSequence()
	if holeCards < 0 || holeCards >= len(seq) {
		return nil
	}
	return seq[holeCards:]
}

// Request carries everything an outside verifier receives for one hand.
// HoleCardsDealt of zero selects the legacy layout where the board offsets
// index the deck order directly.
type Request struct {
	ServerSeed     string       `json:"serverSeed"`
	ServerSeedHash string       `json:"serverSeedHash"`
	ClientSeed     string       `json:"clientSeed"`
	Nonce          uint64       `json:"nonce"`
	HoleCardsDealt int          `json:"holeCardsDealt,omitempty"`
	CommunityCards []poker.Card `json:"communityCards"`
	Deck           []poker.Card `json:"deck,omitempty"`
}

// Check is the outcome of one verification step.
type Check int

const (
	CheckSkipped Check = iota
	CheckPassed
	CheckFailed
)

func (c Check) String() string {
	return [...]string{"skipped", "passed", "failed"}[c]
}

// MarshalText implements encoding.TextMarshaler.
func (c Check) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Report is the structured result of VerifyHand. Details holds one line per step.
type Report struct {
	Valid          bool     `json:"valid"`
	SeedHash       Check    `json:"seedHash"`
	Deck           Check    `json:"deck"`
	CommunityCards Check    `json:"communityCards"`
	Details        []string `json:"details"`
}

// Err returns nil for a valid report and a wrapped fairness violation otherwise.
func (r Report) Err() error {
	if r.Valid {
		return nil
	}
	switch {
	case r.SeedHash != CheckPassed:
		return ErrHashMismatch
	case r.Deck == CheckFailed:
		return ErrDeckMismatch
	default:
		return fmt.Errorf("%w: community cards do not match deck", ErrFairnessViolation)
	}
}

func (r *Report) logf(format string, args ...any) {
	r.Details = append(r.Details, fmt.Sprintf(format, args...))
}

// VerifyHand runs every check it has inputs for: the seed hash, the supplied
// deck against a fresh shuffle, and the observed board against the derived
// deck's community positions.
func VerifyHand(req Request) Report {
	var rep Report

	switch {
	case req.ServerSeed == "":
		rep.SeedHash = CheckFailed
		rep.logf("server seed not revealed")
	case req.ServerSeedHash == "":
		rep.SeedHash = CheckSkipped
		rep.logf("no commitment hash recorded")
	case Verify(req.ServerSeed, req.ServerSeedHash):
		rep.SeedHash = CheckPassed
		rep.logf("server seed hash verified")
	default:
		rep.SeedHash = CheckFailed
		rep.logf("server seed does not match hash %s", req.ServerSeedHash)
	}

	derived := Shuffle(req.ServerSeed, req.ClientSeed, req.Nonce)

	switch {
	case req.Deck == nil:
		rep.Deck = CheckSkipped
		rep.logf("no deck supplied, board checked against re-derived deck")
	case VerifyDeck(req.ServerSeed, req.ClientSeed, req.Nonce, req.Deck):
		rep.Deck = CheckPassed
		rep.logf("deck reproduced from seeds (nonce %d)", req.Nonce)
	default:
		rep.Deck = CheckFailed
		rep.logf("deck mismatch, shuffle is not reproducible from seeds")
	}

	var seq []poker.Card
	if req.HoleCardsDealt > 0 {
		seq = CommunitySequence(derived, req.HoleCardsDealt)
	} else {
		seq = derived.Cards()
	}

	switch n := len(req.CommunityCards); {
	case req.HoleCardsDealt < 0:
		rep.CommunityCards = CheckFailed
		rep.logf("invalid hole card count %d", req.HoleCardsDealt)
	case n == 0:
		rep.CommunityCards = CheckSkipped
		rep.logf("no community cards dealt")
	case n == 5 && VerifyCommunityCards(seq, req.CommunityCards):
		rep.CommunityCards = CheckPassed
		rep.logf("community cards verified")
	case (n == 3 || n == 4) && boardMatches(seq, req.CommunityCards):
		rep.CommunityCards = CheckPassed
		rep.logf("partial board of %d cards verified", n)
	default:
		rep.CommunityCards = CheckFailed
		rep.logf("community cards %s do not match deck", poker.FormatCards(req.CommunityCards))
	}

	rep.Valid = rep.SeedHash == CheckPassed &&
		rep.Deck != CheckFailed &&
		rep.CommunityCards != CheckFailed
	return rep
}
