package table

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/fairholdem/internal/chips"
	"github.com/lox/fairholdem/internal/fairness"
	"github.com/lox/fairholdem/poker"
)

const testSecret = "5f2b7c1e9a0d4e3f8b6a2c1d0e9f8a7b6c5d4e3f2a1b0c9d8e7f6a5b4c3d2e1f"

func record(nonce uint64) fairness.Record {
	return fairness.Record{
		ServerSeed:     testSecret,
		ServerSeedHash: fairness.Hash(testSecret),
		ClientSeed:     "table-test",
		Nonce:          nonce,
	}
}

func testConfig(seats int) Config {
	return Config{ID: "test", Mode: Cash, MaxSeats: seats, SmallBlind: 5, BigBlind: 10}
}

// seated returns a table with one player per stack in seats 0..n-1.
func seated(t *testing.T, e *Engine, cfg Config, stacks ...chips.Amount) State {
	t.Helper()
	s, err := e.NewTable(cfg)
	require.NoError(t, err)
	for i, stack := range stacks {
		s, err = e.AddPlayer(s, fmt.Sprintf("p%d", i), fmt.Sprintf("Player%d", i), stack, i)
		require.NoError(t, err)
	}
	return s
}

// deal starts the next hand with a correct record and deck.
func deal(t *testing.T, e *Engine, s State) State {
	t.Helper()
	rec := record(s.HandNumber + 1)
	deck, err := rec.Deck()
	require.NoError(t, err)
	s, err = e.DealHand(s, rec, deck)
	require.NoError(t, err)
	return s
}

// playPassive calls or checks every decision until the hand settles.
func playPassive(t *testing.T, e *Engine, s State) State {
	t.Helper()
	for steps := 0; s.InHand(); steps++ {
		require.Less(t, steps, 1000, "hand did not finish")
		var err error
		if s.Actor < 0 {
			s, err = e.AdvanceStreet(s)
		} else {
			s, err = e.ApplyAction(s, s.Actor, Call, 0)
		}
		require.NoError(t, err)
	}
	return s
}

type testSeat struct {
	hole   string
	total  chips.Amount
	status Status
	hands  int
}

// showdownState builds a river state directly, for settlement tests that
// need specific cards. The dealer is seat 0.
func showdownState(t *testing.T, mode Mode, board string, seats ...testSeat) State {
	t.Helper()
	s := State{
		Config:   Config{ID: "manual", Mode: mode, MaxSeats: len(seats), SmallBlind: 1, BigBlind: 2},
		Street:   River,
		Dealer:   0,
		Actor:    -1,
		Fairness: record(1),
	}
	s.CommunityCards = cards(t, board)
	for i, ts := range seats {
		s.Seats = append(s.Seats, Seat{
			Position:    i,
			ID:          fmt.Sprintf("p%d", i),
			Name:        fmt.Sprintf("Player%d", i),
			TotalBet:    ts.total,
			HoleCards:   cards(t, ts.hole),
			Status:      ts.status,
			Dealt:       true,
			Acted:       true,
			HandsPlayed: ts.hands,
		})
		s.Pot += ts.total
	}
	return s
}

func cards(t *testing.T, text string) []poker.Card {
	t.Helper()
	if text == "" {
		return nil
	}
	var out []poker.Card
	for _, f := range strings.Fields(text) {
		c, err := poker.ParseCard(f)
		require.NoError(t, err)
		out = append(out, c)
	}
	return out
}
