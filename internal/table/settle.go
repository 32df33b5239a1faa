package table

import (
	"fmt"
	"strings"

	"github.com/lox/fairholdem/internal/chips"
	"github.com/lox/fairholdem/poker"
)

// settle evaluates every contender, distributes each side pot and reveals
// the hand's secret. Ties split evenly; odd chips go one at a time to the
// tied winners clockwise from the dealer. On cash tables each slice that more
// than one seat paid into is raked at the first winner's tier rate, until the
// hand's cap runs out.
func (e *Engine) settle(s State) State {
	contenders := s.contenders()
	if len(contenders) > 1 {
		e.rateContenders(&s)
	} else {
		for i := range s.Seats {
			s.Seats[i].Hand = nil
		}
	}

	pots := SidePots(s)
	meter := e.rake.Meter()
	won := make(map[int]chips.Amount, len(contenders))
	for k := range pots {
		pot := &pots[k]
		pot.Winners = s.bestHands(pot.Eligible)
		if len(pot.Winners) == 0 {
			continue
		}
		if s.Config.Mode.Raked() && pot.Contributors > 1 {
			rate := e.rake.RateFor(s.Seats[pot.Winners[0]].HandsPlayed)
			pot.Rake = meter.Take(pot.Amount, rate)
		}
		share, odd := (pot.Amount - pot.Rake).Split(len(pot.Winners))
		for j, w := range pot.Winners {
			amt := share
			if chips.Amount(j) < odd {
				amt++
			}
			won[w] += amt
		}
	}

	var winners []Winner
	for _, i := range s.clockwise() {
		amt, ok := won[i]
		if !ok {
			continue
		}
		seat := &s.Seats[i]
		seat.Balance += amt
		w := Winner{Position: i, ID: seat.ID, Name: seat.Name, Amount: amt, Description: "Uncontested"}
		if seat.Hand != nil {
			w.HandName = seat.Hand.Name
			w.Description = seat.Hand.Description
			w.Cards = append([]poker.Card(nil), seat.Hand.Cards...)
		}
		winners = append(winners, w)
	}

	if s.Config.Mode == Tournament {
		s.eliminateBusted(contenders)
	}

	s.Pots = pots
	s.Winners = winners
	s.HandRake = meter.Total()
	s.RakeCollected += s.HandRake
	s.Pot = 0
	s.CurrentBet = 0
	s.Actor = -1
	s.Street = Showdown
	s.Fairness = s.Fairness.Reveal()
	s.Log = settleLog(winners, len(contenders) == 1)

	e.logger.Info("hand settled",
		"table", s.Config.ID,
		"hand", s.HandNumber,
		"pots", len(pots),
		"rake", s.HandRake,
		"exhausted", s.Exhausted,
		"server_seed", s.Fairness.ServerSeed)
	return s
}

// rateContenders records every contender's best hand on the current board,
// so snapshots during a run-out carry live strength.
func (e *Engine) rateContenders(s *State) {
	for _, i := range s.contenders() {
		seat := &s.Seats[i]
		cards := append(append([]poker.Card(nil), seat.HoleCards...), s.CommunityCards...)
		res, err := poker.EvaluateBest(cards)
		if err != nil {
			e.logger.Error("evaluate failed", "table", s.Config.ID, "hand", s.HandNumber, "seat", i, "error", err)
			seat.Hand = nil
			continue
		}
		seat.Hand = &res
	}
}

// eliminateBusted knocks out contenders left with no chips. Seats busted in
// the same hand share a finishing place; a lone survivor finishes first.
func (s *State) eliminateBusted(contenders []int) {
	var busted []int
	for _, i := range contenders {
		if s.Seats[i].Balance == 0 {
			busted = append(busted, i)
		}
	}
	if len(busted) == 0 {
		return
	}
	var alive []int
	for i := range s.Seats {
		seat := &s.Seats[i]
		if seat.Occupied() && seat.Status != Eliminated && seat.Balance > 0 {
			alive = append(alive, i)
		}
	}
	for _, i := range busted {
		s.Seats[i].Status = Eliminated
		s.Seats[i].FinishRank = len(alive) + 1
	}
	if len(alive) == 1 {
		s.Seats[alive[0]].FinishRank = 1
	}
}

// bestHands returns the eligible seats holding the strongest hand, in the
// order given.
func (s *State) bestHands(eligible []int) []int {
	if len(eligible) <= 1 {
		return eligible
	}
	var best []int
	var top poker.HandResult
	for _, i := range eligible {
		h := s.Seats[i].Hand
		if h == nil {
			continue
		}
		switch c := poker.Compare(*h, top); {
		case len(best) == 0 || c > 0:
			top = *h
			best = []int{i}
		case c == 0:
			best = append(best, i)
		}
	}
	return best
}

func settleLog(winners []Winner, uncontested bool) string {
	switch {
	case len(winners) == 0:
		return "Hand over."
	case uncontested:
		return fmt.Sprintf("%s wins %s uncontested.", winners[0].Name, winners[0].Amount)
	case len(winners) == 1:
		return fmt.Sprintf("%s wins %s with %s.", winners[0].Name, winners[0].Amount, winners[0].Description)
	}
	parts := make([]string, len(winners))
	for i, w := range winners {
		parts[i] = fmt.Sprintf("%s %s", w.Name, w.Amount)
	}
	return "Pot shared: " + strings.Join(parts, ", ") + "."
}
