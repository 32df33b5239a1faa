// Package fairness implements the provably-fair shuffle: a commit/reveal
// protocol over a server secret, a player-supplied client seed and a per-hand
// nonce, plus the pure functions an outside verifier needs to re-derive a deck.
package fairness

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/lox/fairholdem/poker"
)

// SecretSize is the number of random bytes in a server secret (256 bits).
const SecretSize = 32

// bytesPerSwap is the fixed stream consumption of one Fisher-Yates step.
const bytesPerSwap = 8

// streamSize is the keyed stream length produced per shuffle.
const streamSize = poker.DeckSize * bytesPerSwap

var (
	// ErrEntropy is returned when the secure random source fails. There is no fallback.
	ErrEntropy = errors.New("fairness: secure random source failed")

	// ErrFairnessViolation is the root of every verification failure.
	ErrFairnessViolation = errors.New("fairness violation")

	// ErrHashMismatch means a revealed secret does not hash to its commitment.
	ErrHashMismatch = fmt.Errorf("%w: server secret does not match commitment", ErrFairnessViolation)

	// ErrDeckMismatch means a deck cannot be reproduced from its seeds.
	ErrDeckMismatch = fmt.Errorf("%w: deck is not reproducible from seeds", ErrFairnessViolation)
)

// Committer generates server secrets from a cryptographically secure source.
type Committer struct {
	entropy io.Reader
}

// NewCommitter returns a Committer reading from r. A nil r uses crypto/rand.
func NewCommitter(r io.Reader) *Committer {
	if r == nil {
		r = rand.Reader
	}
	return &Committer{entropy: r}
}

// Commit generates a fresh hex-encoded secret and its commitment hash. Only the
// hash may be shown to players before the hand.
func (c *Committer) Commit() (secret, hash string, err error) {
	buf := make([]byte, SecretSize)
	if _, err := io.ReadFull(c.entropy, buf); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrEntropy, err)
	}
	secret = hex.EncodeToString(buf)
	return secret, Hash(secret), nil
}

// Commit generates a secret using crypto/rand.
func Commit() (secret, hash string, err error) {
	return NewCommitter(nil).Commit()
}

// Hash returns the lowercase hex SHA-256 commitment of the secret's text.
func Hash(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether secret hashes to the published commitment.
func Verify(secret, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(Hash(secret)), []byte(hash)) == 1
}

// Shuffle derives the deck for (secret, clientSeed, nonce). Fisher-Yates runs
// from the last index down to 1; step i swaps with the next 8 stream bytes read
// as a big-endian uint64 modulo i+1. Any change to this order breaks verification.
func Shuffle(secret, clientSeed string, nonce uint64) poker.Deck {
	cards := poker.OrderedCards()
	stream := keyedStream(hmacKey(secret), clientSeed+":"+strconv.FormatUint(nonce, 10), streamSize)

	offset := 0
	for i := len(cards) - 1; i > 0; i-- {
		v := binary.BigEndian.Uint64(stream[offset : offset+bytesPerSwap])
		offset += bytesPerSwap
		j := int(v % uint64(i+1))
		cards[i], cards[j] = cards[j], cards[i]
	}

	deck, err := poker.DeckFrom(cards[:])
	if err != nil {
		// A swap-only shuffle of the ordered deck is always a permutation.
		panic(err)
	}
	return deck
}

// keyedStream concatenates HMAC-SHA256(key, base:counter) for counter = 0, 1, ...
// until n bytes are available.
func keyedStream(key []byte, base string, n int) []byte {
	out := make([]byte, 0, n+sha256.Size)
	for counter := 0; len(out) < n; counter++ {
		mac := hmac.New(sha256.New, key)
		mac.Write([]byte(base + ":" + strconv.Itoa(counter)))
		out = mac.Sum(out)
	}
	return out[:n]
}

// hmacKey decodes hex secrets (the form Commit produces) and uses any other
// secret's bytes as-is.
func hmacKey(secret string) []byte {
	if key, err := hex.DecodeString(secret); err == nil && len(key) > 0 {
		return key
	}
	return []byte(secret)
}

// VerifyDeck re-runs Shuffle and compares the result element-wise with expected.
func VerifyDeck(secret, clientSeed string, nonce uint64, expected []poker.Card) bool {
	if len(expected) != poker.DeckSize {
		return false
	}
	derived := Shuffle(secret, clientSeed, nonce).Cards()
	for i := range derived {
		if derived[i] != expected[i] {
			return false
		}
	}
	return true
}
