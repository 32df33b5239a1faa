package fairness

import (
	"fmt"

	"github.com/lox/fairholdem/poker"
)

// ErrSecretMissing means a record has no server secret to derive or check a deck with.
var ErrSecretMissing = fmt.Errorf("%w: server secret missing", ErrFairnessViolation)

// Record is the fairness state of one hand. The secret stays private until
// Reveal; Public strips it from anything broadcast before then.
type Record struct {
	ServerSeed     string `json:"serverSeed,omitempty" toml:"server_seed,omitempty"`
	ServerSeedHash string `json:"serverSeedHash" toml:"server_seed_hash"`
	ClientSeed     string `json:"clientSeed" toml:"client_seed"`
	Nonce          uint64 `json:"nonce" toml:"nonce"`
	Revealed       bool   `json:"revealed" toml:"revealed"`
}

// NewRecord commits to a fresh secret for the hand with the given nonce.
func NewRecord(c *Committer, clientSeed string, nonce uint64) (Record, error) {
	secret, hash, err := c.Commit()
	if err != nil {
		return Record{}, err
	}
	return Record{
		ServerSeed:     secret,
		ServerSeedHash: hash,
		ClientSeed:     clientSeed,
		Nonce:          nonce,
	}, nil
}

// Deck checks the commitment and derives the hand's deck.
func (r Record) Deck() (poker.Deck, error) {
	if r.ServerSeed == "" {
		return poker.Deck{}, ErrSecretMissing
	}
	if !Verify(r.ServerSeed, r.ServerSeedHash) {
		return poker.Deck{}, ErrHashMismatch
	}
	return Shuffle(r.ServerSeed, r.ClientSeed, r.Nonce), nil
}

// CheckDeck returns a fairness violation unless d is exactly the deck this
// record derives.
func (r Record) CheckDeck(d poker.Deck) error {
	derived, err := r.Deck()
	if err != nil {
		return err
	}
	if !derived.Equal(d) {
		return fmt.Errorf("%w (nonce %d)", ErrDeckMismatch, r.Nonce)
	}
	return nil
}

// Reveal marks the secret as public. Call only once the hand has resolved.
func (r Record) Reveal() Record {
	r.Revealed = true
	return r
}

// Public returns the record as players may see it: without the secret until reveal.
func (r Record) Public() Record {
	if !r.Revealed {
		r.ServerSeed = ""
	}
	return r
}

// Request builds a verification request from a revealed record and the
// observed table outcome.
func (r Record) Request(holeCardsDealt int, community []poker.Card) Request {
	return Request{
		ServerSeed:     r.ServerSeed,
		ServerSeedHash: r.ServerSeedHash,
		ClientSeed:     r.ClientSeed,
		Nonce:          r.Nonce,
		HoleCardsDealt: holeCardsDealt,
		CommunityCards: community,
	}
}
