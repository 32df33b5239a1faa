package table

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/fairholdem/internal/chips"
	"github.com/lox/fairholdem/internal/fairness"
	"github.com/lox/fairholdem/internal/rake"
	"github.com/lox/fairholdem/internal/randutil"
	"github.com/lox/fairholdem/poker"
)

func TestDealHandPostsBlindsAndDeals(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	s := seated(t, e, testConfig(6), 1000, 1000, 1000)
	before := ChipTotal(s)
	s = deal(t, e, s)

	assert.Equal(t, Preflop, s.Street)
	assert.Equal(t, uint64(1), s.HandNumber)
	assert.Equal(t, 0, s.Dealer)
	assert.Equal(t, chips.Amount(5), s.Seats[1].Bet, "small blind left of the dealer")
	assert.Equal(t, chips.Amount(10), s.Seats[2].Bet, "big blind")
	assert.Equal(t, chips.Amount(10), s.CurrentBet)
	assert.Equal(t, chips.Amount(15), s.Pot)
	assert.Equal(t, 0, s.Actor, "first seat after the big blind acts")
	assert.Equal(t, 6, s.HoleCardsDealt)
	assert.Equal(t, "Hand #1 started.", s.Log)
	assert.Equal(t, before, ChipTotal(s))
	for i := 0; i < 3; i++ {
		assert.Len(t, s.Seats[i].HoleCards, 2)
		assert.Equal(t, 1, s.Seats[i].HandsPlayed)
	}
	assert.False(t, s.Seats[3].Occupied())
}

func TestDealHandNeedsTwoPlayers(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	s := seated(t, e, testConfig(6), 1000)
	rec := record(1)
	deck, err := rec.Deck()
	require.NoError(t, err)

	out, err := e.DealHand(s, rec, deck)
	require.ErrorIs(t, err, ErrNotEnoughPlayers)
	assert.True(t, IsProtocol(err))
	assert.Equal(t, s, out)
}

func TestDealHandRejectsBadFairness(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	s := seated(t, e, testConfig(6), 1000, 1000)

	t.Run("irreproducible deck", func(t *testing.T) {
		other, err := record(2).Deck()
		require.NoError(t, err)
		out, err := e.DealHand(s, record(1), other)
		require.ErrorIs(t, err, fairness.ErrDeckMismatch)
		assert.True(t, IsFairness(err))
		assert.True(t, out.Halted)
		assert.False(t, out.InHand())

		rec := record(1)
		deck, _ := rec.Deck()
		_, err = e.DealHand(out, rec, deck)
		require.ErrorIs(t, err, ErrHalted)
	})

	t.Run("hash mismatch", func(t *testing.T) {
		rec := record(1)
		deck, _ := rec.Deck()
		rec.ServerSeedHash = fairness.Hash("forged")
		out, err := e.DealHand(s, rec, deck)
		require.ErrorIs(t, err, fairness.ErrHashMismatch)
		assert.True(t, out.Halted)
	})

	t.Run("nonce reuse", func(t *testing.T) {
		played := playPassive(t, e, deal(t, e, s))
		rec := record(1)
		deck, _ := rec.Deck()
		out, err := e.DealHand(played, rec, deck)
		require.ErrorIs(t, err, ErrNonceReused)
		assert.True(t, IsFairness(err))
		assert.True(t, out.Halted)
	})
}

func TestHeadsUpBlindsAndOrder(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	s := deal(t, e, seated(t, e, testConfig(2), 500, 500))

	assert.Equal(t, 0, s.Dealer)
	assert.Equal(t, chips.Amount(5), s.Seats[1].Bet, "non-dealer posts the small blind")
	assert.Equal(t, chips.Amount(10), s.Seats[0].Bet, "dealer posts the big blind")
	require.Equal(t, 1, s.Actor)

	s, err := e.ApplyAction(s, 1, Call, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Actor, "big blind keeps the option")

	s, err = e.ApplyAction(s, 0, Check, 0)
	require.NoError(t, err)
	assert.Equal(t, -1, s.Actor)
	assert.True(t, s.InHand())

	s, err = e.AdvanceStreet(s)
	require.NoError(t, err)
	assert.Equal(t, Flop, s.Street)
	assert.Len(t, s.CommunityCards, 3)
	assert.Equal(t, 1, s.Actor, "first seat after the dealer acts postflop")
	assert.Zero(t, s.CurrentBet)
}

func TestRaiseClampsAndReopens(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	s := deal(t, e, seated(t, e, testConfig(6), 1000, 1000, 1000))

	s, err := e.ApplyAction(s, 0, Raise, 12)
	require.NoError(t, err)
	assert.Equal(t, chips.Amount(20), s.Seats[0].Bet, "raise is at least double the current bet")
	assert.Equal(t, chips.Amount(20), s.CurrentBet)
	assert.Equal(t, "Player0 raises to 20.", s.Log)

	s, err = e.ApplyAction(s, 1, Call, 0)
	require.NoError(t, err)
	s, err = e.ApplyAction(s, 2, Raise, 5000)
	require.NoError(t, err)
	assert.Equal(t, AllIn, s.Seats[2].Status, "raise beyond the stack is an all-in")
	assert.Equal(t, chips.Amount(1000), s.CurrentBet)
	assert.Equal(t, 0, s.Actor, "action reopens for seats that already acted")
	assert.False(t, s.Seats[0].Acted)
}

func TestRejectedActionsLeaveStateUnchanged(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	s := deal(t, e, seated(t, e, testConfig(6), 1000, 1000, 1000))

	tests := []struct {
		name   string
		seat   int
		action Action
		amount chips.Amount
		want   error
	}{
		{"wrong turn", 1, Call, 0, ErrNotYourTurn},
		{"empty seat", 4, Fold, 0, ErrUnknownSeat},
		{"out of range", 42, Check, 0, ErrUnknownSeat},
		{"check facing bet", 0, Check, 0, ErrCannotCheck},
		{"negative raise", 0, Raise, -5, ErrInvalidAmount},
		{"unknown action", 0, Action(9), 0, ErrInvalidAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := e.ApplyAction(s, tt.seat, tt.action, tt.amount)
			require.ErrorIs(t, err, tt.want)
			assert.True(t, IsProtocol(err))
			assert.Equal(t, s, out)
		})
	}

	idle := seated(t, e, testConfig(6), 1000, 1000)
	_, err := e.ApplyAction(idle, 0, Check, 0)
	require.ErrorIs(t, err, ErrNoHand)

	_, err = e.AdvanceStreet(s)
	require.ErrorIs(t, err, ErrBettingOpen)
	_, err = e.Settle(s)
	require.ErrorIs(t, err, ErrBettingOpen)
}

func TestOutOfTurnFold(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	s := deal(t, e, seated(t, e, testConfig(6), 1000, 1000, 1000))
	require.Equal(t, 0, s.Actor)

	s, err := e.ApplyAction(s, 2, Fold, 0)
	require.NoError(t, err)
	assert.Equal(t, Folded, s.Seats[2].Status)
	assert.Equal(t, 0, s.Actor, "turn does not move on an out-of-turn fold")

	s, err = e.ApplyAction(s, 1, Fold, 0)
	require.NoError(t, err)
	assert.Equal(t, Showdown, s.Street, "last contender wins immediately")
	assert.Equal(t, chips.Amount(1015), s.Seats[0].Balance)
	require.Len(t, s.Winners, 1)
	assert.Equal(t, "Uncontested", s.Winners[0].Description)
	assert.Empty(t, s.CommunityCards)

	_, err = e.ApplyAction(s, 0, Check, 0)
	require.ErrorIs(t, err, ErrNoHand)
}

func TestFoldedSeatCannotAct(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	s := deal(t, e, seated(t, e, testConfig(6), 1000, 1000, 1000))
	s, err := e.ApplyAction(s, 0, Fold, 0)
	require.NoError(t, err)

	_, err = e.ApplyAction(s, 0, Fold, 0)
	require.ErrorIs(t, err, ErrSeatInactive)
}

func TestAllInRunsOutBoard(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	s := deal(t, e, seated(t, e, testConfig(6), 1000, 500, 250))
	total := ChipTotal(s)

	var err error
	s, err = e.ApplyAction(s, 0, Raise, 1000)
	require.NoError(t, err)
	s, err = e.ApplyAction(s, 1, Call, 0)
	require.NoError(t, err)
	s, err = e.ApplyAction(s, 2, Call, 0)
	require.NoError(t, err)
	require.Equal(t, -1, s.Actor)

	_, err = e.ApplyAction(s, 0, Check, 0)
	require.ErrorIs(t, err, ErrSeatInactive)

	s, err = e.AdvanceStreet(s)
	require.NoError(t, err)
	assert.Equal(t, Showdown, s.Street)
	assert.Len(t, s.CommunityCards, 5)
	require.Len(t, s.Pots, 3)
	assert.Equal(t, chips.Amount(750), s.Pots[0].Amount)
	assert.Equal(t, chips.Amount(500), s.Pots[1].Amount)
	assert.Equal(t, []int{0}, s.Pots[2].Winners, "uncalled chips go back to the raiser")
	assert.Equal(t, total, ChipTotal(s))

	var paid chips.Amount
	for _, w := range s.Winners {
		paid += w.Amount
	}
	assert.Equal(t, chips.Amount(1750), paid)
}

func TestRunOutCarriesLiveStrength(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	s := deal(t, e, seated(t, e, testConfig(2), 1000, 1000))
	var err error
	for s.Actor >= 0 {
		s, err = e.ApplyAction(s, s.Actor, Call, 0)
		require.NoError(t, err)
	}
	s, err = e.AdvanceStreet(s)
	require.NoError(t, err)
	require.Equal(t, Flop, s.Street)

	s, err = e.ApplyAction(s, s.Actor, Raise, 1000)
	require.NoError(t, err)
	s, err = e.ApplyAction(s, s.Actor, Call, 0)
	require.NoError(t, err)
	require.Equal(t, -1, s.Actor)
	require.Equal(t, Flop, s.Street)

	for i, seat := range s.Seats {
		require.Equal(t, AllIn, seat.Status)
		require.NotNil(t, seat.Hand, "seat %d", i)
		want, err := poker.EvaluateBest(append(append([]poker.Card(nil), seat.HoleCards...), s.CommunityCards...))
		require.NoError(t, err)
		assert.Equal(t, want, *seat.Hand)
	}

	pub := Public(s)
	for i, seat := range pub.Seats {
		assert.Nil(t, seat.Hand, "seat %d", i)
		assert.Nil(t, seat.HoleCards)
		assert.True(t, seat.CardsHidden)
	}
	own := Redact(s, 1)
	assert.NotNil(t, own.Seats[1].Hand)
	assert.Nil(t, own.Seats[0].Hand)
	assert.NotNil(t, s.Seats[0].Hand, "redaction leaves the source untouched")

	s, err = e.AdvanceStreet(s)
	require.NoError(t, err)
	require.Equal(t, Showdown, s.Street)
	for i, seat := range Public(s).Seats {
		require.NotNil(t, seat.Hand, "seat %d shown down", i)
		assert.Equal(t, seat.HoleCards, s.Seats[i].HoleCards)
	}
}

func TestFoldDropsLiveStrength(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	s := deal(t, e, seated(t, e, testConfig(3), 1000, 1000, 1000))
	for _, seat := range s.Seats {
		assert.Nil(t, seat.Hand, "no strength before the flop")
	}
	var err error
	for s.Actor >= 0 {
		s, err = e.ApplyAction(s, s.Actor, Call, 0)
		require.NoError(t, err)
	}
	s, err = e.AdvanceStreet(s)
	require.NoError(t, err)
	require.Equal(t, Flop, s.Street)

	folder := s.Actor
	require.NotNil(t, s.Seats[folder].Hand)
	s, err = e.ApplyAction(s, folder, Fold, 0)
	require.NoError(t, err)
	assert.Nil(t, s.Seats[folder].Hand)
	for _, i := range s.contenders() {
		assert.NotNil(t, s.Seats[i].Hand)
	}
}

func TestHoleCardsDealtOneAtATime(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	s := seated(t, e, testConfig(6), 1000, 1000, 1000)
	rec := record(1)
	deck, err := rec.Deck()
	require.NoError(t, err)
	seq := deck.DrawSequence()

	s, err = e.DealHand(s, rec, deck)
	require.NoError(t, err)
	require.Equal(t, 0, s.Dealer)

	// Left of the button first, two passes round the table.
	for k, i := range []int{1, 2, 0} {
		assert.Equal(t, []poker.Card{seq[k], seq[k+3]}, s.Seats[i].HoleCards, "seat %d", i)
	}
	assert.Equal(t, fairness.CommunitySequence(deck, 6), seq[6:])
	burn, ok := s.deck.Draw()
	require.True(t, ok)
	assert.Equal(t, seq[6], burn, "the board draws from where the hole cards stopped")
}

func TestSettleRunsOutWhenNobodyCanBet(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	s := deal(t, e, seated(t, e, testConfig(2), 500, 500))
	s, err := e.ApplyAction(s, 1, Raise, 500)
	require.NoError(t, err)
	s, err = e.ApplyAction(s, 0, Call, 0)
	require.NoError(t, err)

	s, err = e.Settle(s)
	require.NoError(t, err)
	assert.Equal(t, Showdown, s.Street)
	assert.Len(t, s.CommunityCards, 5)
}

func TestSettleRefusesWhileBettingRemains(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	s := deal(t, e, seated(t, e, testConfig(2), 500, 500))
	s, _ = e.ApplyAction(s, 1, Call, 0)
	s, _ = e.ApplyAction(s, 0, Check, 0)

	_, err := e.Settle(s)
	require.ErrorIs(t, err, ErrHandInProgress)
}

func TestFullHandVerifiesAgainstRecord(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	s := deal(t, e, seated(t, e, testConfig(6), 1000, 1000, 1000, 1000))
	pub := Public(s)
	assert.Empty(t, pub.Fairness.ServerSeed, "secret hidden during the hand")
	for _, seat := range pub.Seats[:4] {
		assert.Nil(t, seat.HoleCards)
		assert.True(t, seat.CardsHidden)
	}
	own := Redact(s, 2)
	assert.Len(t, own.Seats[2].HoleCards, 2)
	assert.Nil(t, own.Seats[1].HoleCards)

	s = playPassive(t, e, s)
	require.Len(t, s.CommunityCards, 5)
	require.True(t, s.Fairness.Revealed)

	rep := fairness.VerifyHand(s.Fairness.Request(s.HoleCardsDealt, s.CommunityCards))
	assert.True(t, rep.Valid, rep.Details)
	assert.Equal(t, fairness.CheckPassed, rep.CommunityCards)

	shown := Public(s)
	assert.Equal(t, testSecret, shown.Fairness.ServerSeed)
	assert.Len(t, shown.Seats[0].HoleCards, 2, "contenders show down")
}

func TestDeckExhaustionWith26Seats(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	stacks := make([]chips.Amount, MaxSeats)
	for i := range stacks {
		stacks[i] = 100
	}
	s := deal(t, e, seated(t, e, testConfig(MaxSeats), stacks...))
	total := ChipTotal(s)
	assert.Equal(t, poker.DeckSize, s.HoleCardsDealt)

	s = playPassive(t, e, s)
	assert.True(t, s.Exhausted)
	assert.Empty(t, s.CommunityCards)
	assert.NotEmpty(t, s.Winners)
	assert.Equal(t, total, ChipTotal(s))
}

func TestDeckExhaustionMidBoard(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	stacks := make([]chips.Amount, 23)
	for i := range stacks {
		stacks[i] = 100
	}
	s := playPassive(t, e, deal(t, e, seated(t, e, testConfig(23), stacks...)))
	assert.True(t, s.Exhausted)
	assert.Len(t, s.CommunityCards, 4, "river cannot be dealt")
	for _, w := range s.Winners {
		assert.NotEmpty(t, w.HandName)
	}
}

func TestButtonRotatesAndLastHandArchived(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	s := playPassive(t, e, deal(t, e, seated(t, e, testConfig(6), 1000, 1000, 1000)))
	first := s

	s = deal(t, e, s)
	assert.Equal(t, 1, s.Dealer)
	assert.Equal(t, uint64(2), s.HandNumber)
	require.NotNil(t, s.LastHand)
	assert.Equal(t, uint64(1), s.LastHand.HandNumber)
	assert.Equal(t, first.CommunityCards, s.LastHand.CommunityCards)
	assert.True(t, s.LastHand.Fairness.Revealed)
	assert.Equal(t, testSecret, Public(s).LastHand.Fairness.ServerSeed)
	assert.Empty(t, Public(s).Fairness.ServerSeed)
}

func TestMidHandJoinSitsFolded(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	s := deal(t, e, seated(t, e, testConfig(6), 1000, 1000))

	s, err := e.AddPlayer(s, "late", "Late", 800, 1)
	require.NoError(t, err)
	seat, ok := s.SeatByID("late")
	require.True(t, ok)
	assert.NotEqual(t, 1, seat.Position, "taken seat falls back to the first free one")
	assert.Equal(t, Folded, seat.Status)

	_, err = e.ApplyAction(s, seat.Position, Fold, 0)
	require.ErrorIs(t, err, ErrSeatInactive)

	_, err = e.AddPlayer(s, "late", "Late", 800, -1)
	require.ErrorIs(t, err, ErrDuplicatePlayer)

	s = deal(t, e, playPassive(t, e, s))
	late, _ := s.SeatByID("late")
	assert.True(t, late.Dealt)
	assert.Equal(t, Active, late.Status)
}

func TestTableFull(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	s := seated(t, e, testConfig(2), 100, 100)
	_, err := e.AddPlayer(s, "third", "Third", 100, -1)
	require.ErrorIs(t, err, ErrTableFull)
}

func TestSitOutFoldsAndSkipsDeal(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	s := deal(t, e, seated(t, e, testConfig(6), 1000, 1000, 1000))

	s, err := e.SitOut(s, 1)
	require.NoError(t, err)
	assert.Equal(t, SittingOut, s.Seats[1].Status)
	assert.Equal(t, 0, s.Actor)

	s = deal(t, e, playPassive(t, e, s))
	assert.False(t, s.Seats[1].Dealt)

	s, err = e.SitOut(s, 1)
	require.NoError(t, err)
	assert.Equal(t, Folded, s.Seats[1].Status, "returning mid-hand waits for the next deal")
}

func TestBustedSeatStatusByMode(t *testing.T) {
	t.Parallel()

	for _, mode := range []Mode{Cash, Tournament} {
		t.Run(mode.String(), func(t *testing.T) {
			e := NewEngine()
			cfg := testConfig(3)
			cfg.Mode = mode
			s := deal(t, e, seated(t, e, cfg, 1000, 1000, 0))
			assert.False(t, s.Seats[2].Dealt)

			s = playPassive(t, e, s)
			if mode == Tournament {
				assert.Equal(t, Eliminated, s.Seats[2].Status)
				_, err := e.Rebuy(s, 2, 100)
				require.ErrorIs(t, err, ErrEliminated)
				_, err = e.SitOut(s, 2)
				require.ErrorIs(t, err, ErrEliminated)
				return
			}
			assert.Equal(t, SittingOut, s.Seats[2].Status)
			s, err := e.Rebuy(s, 2, 100)
			require.NoError(t, err)
			assert.Equal(t, Active, s.Seats[2].Status)
			s = deal(t, e, s)
			assert.True(t, s.Seats[2].Dealt)
		})
	}
}

func TestRebuyBetweenHands(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	s := deal(t, e, seated(t, e, testConfig(3), 100, 100))

	_, err := e.Rebuy(s, 0, 50)
	require.ErrorIs(t, err, ErrHandInProgress)

	s = playPassive(t, e, s)
	before := s.Seats[0].Balance
	s, err = e.Rebuy(s, 0, 50)
	require.NoError(t, err)
	assert.Equal(t, before+50, s.Seats[0].Balance)

	_, err = e.Rebuy(s, 0, 0)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestChipConservationRandomPlay(t *testing.T) {
	t.Parallel()

	e := NewEngine(WithRake(rake.Flat(500, 30)))
	s := seated(t, e, testConfig(6), 500, 300, 800, 120, 1000, 45)
	total := ChipTotal(s)
	rng := randutil.New(99)

	for hand := 0; hand < 150; hand++ {
		rec := record(s.HandNumber + 1)
		deck, err := rec.Deck()
		require.NoError(t, err)
		next, err := e.DealHand(s, rec, deck)
		if errors.Is(err, ErrNotEnoughPlayers) {
			break
		}
		require.NoError(t, err)
		s = next
		checkInvariants(t, s, total)

		for steps := 0; s.InHand(); steps++ {
			require.Less(t, steps, 500, "hand %d did not finish", s.HandNumber)
			if s.Actor < 0 {
				s, err = e.AdvanceStreet(s)
				require.NoError(t, err)
				checkInvariants(t, s, total)
				continue
			}
			var action Action
			var amount chips.Amount
			switch rng.IntN(10) {
			case 0:
				action = Fold
			case 1, 2:
				action = Raise
				amount = s.CurrentBet + chips.Amount(rng.Int64N(200))
			default:
				action = Call
			}
			s, err = e.ApplyAction(s, s.Actor, action, amount)
			require.NoError(t, err)
			checkInvariants(t, s, total)
		}
	}
	assert.Positive(t, s.HandNumber)
}

func checkInvariants(t *testing.T, s State, total chips.Amount) {
	t.Helper()
	require.Equal(t, total, ChipTotal(s), "chips created or destroyed at hand %d: %s", s.HandNumber, s.Log)
	if !s.InHand() {
		require.Zero(t, s.Pot)
		return
	}
	var committed chips.Amount
	for _, seat := range s.Seats {
		require.GreaterOrEqual(t, seat.Balance, chips.Amount(0))
		committed += seat.TotalBet
		if seat.Status != AllIn {
			require.LessOrEqual(t, seat.Bet, s.CurrentBet, "seat %d bet above the current bet", seat.Position)
		}
	}
	require.Equal(t, s.Pot, committed)
}
