package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/lox/fairholdem/internal/fairness"
	"github.com/lox/fairholdem/internal/history"
	"github.com/lox/fairholdem/poker"
)

// CommitCmd prints a fresh secret and its commitment.
type CommitCmd struct{}

func (cmd CommitCmd) Run() error {
	secret, hash, err := fairness.Commit()
	if err != nil {
		return err
	}
	fmt.Printf("server_seed      = %s\n", secret)
	fmt.Printf("server_seed_hash = %s\n", hash)
	return nil
}

// ShuffleCmd prints the deck a secret derives.
type ShuffleCmd struct {
	Secret     string `required:"" help:"Server secret (hex)"`
	ClientSeed string `required:"" help:"Client seed"`
	Nonce      uint64 `required:"" help:"Hand nonce"`
	Draws      bool   `help:"Print cards in the order they are dealt"`
}

func (cmd ShuffleCmd) Run() error {
	deck := fairness.Shuffle(cmd.Secret, cmd.ClientSeed, cmd.Nonce)
	cards := deck.Cards()
	if cmd.Draws {
		cards = deck.DrawSequence()
	}
	fmt.Println(poker.FormatCards(cards))
	return nil
}

// VerifyCmd checks revealed hands, either from history records or from flags.
type VerifyCmd struct {
	Files []string `arg:"" optional:"" type:"existingfile" help:"Hand history records to verify"`

	Secret     string `help:"Revealed server secret"`
	Hash       string `help:"Commitment published before the hand"`
	ClientSeed string `help:"Client seed"`
	Nonce      uint64 `help:"Hand nonce"`
	HoleCards  int    `help:"Hole cards dealt before the board (0 for the legacy layout)"`
	Board      string `help:"Observed community cards, e.g. \"As Kd 7c 2h 2s\""`
	Deck       string `help:"Observed full deck order"`
}

func (cmd VerifyCmd) Run() error {
	if len(cmd.Files) == 0 {
		req, err := cmd.request()
		if err != nil {
			return err
		}
		return report("flags", fairness.VerifyHand(req))
	}

	var failed int
	for _, path := range cmd.Files {
		rec, err := history.Load(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		rep, err := rec.Verify()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if report(path, rep) != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d hands failed verification", failed, len(cmd.Files))
	}
	return nil
}

func (cmd VerifyCmd) request() (fairness.Request, error) {
	if cmd.Secret == "" || cmd.ClientSeed == "" {
		return fairness.Request{}, errors.New("verify needs --secret and --client-seed, or record files")
	}
	req := fairness.Request{
		ServerSeed:     cmd.Secret,
		ServerSeedHash: cmd.Hash,
		ClientSeed:     cmd.ClientSeed,
		Nonce:          cmd.Nonce,
		HoleCardsDealt: cmd.HoleCards,
	}
	var err error
	if req.CommunityCards, err = poker.ParseCards(strings.Fields(cmd.Board)...); err != nil {
		return req, fmt.Errorf("board: %w", err)
	}
	if req.Deck, err = poker.ParseCards(strings.Fields(cmd.Deck)...); err != nil {
		return req, fmt.Errorf("deck: %w", err)
	}
	return req, nil
}

func report(source string, rep fairness.Report) error {
	status := "VALID"
	if !rep.Valid {
		status = "INVALID"
	}
	fmt.Fprintf(os.Stdout, "%s: %s (seed hash %s, deck %s, board %s)\n",
		source, status, rep.SeedHash, rep.Deck, rep.CommunityCards)
	for _, line := range rep.Details {
		fmt.Fprintf(os.Stdout, "  %s\n", line)
	}
	return rep.Err()
}
