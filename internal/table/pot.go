package table

import (
	"slices"

	"github.com/lox/fairholdem/internal/chips"
)

// SidePots slices the hand's contributions by the distinct total-bet levels
// of the seats still contending, lowest first. Each slice holds every seat's
// contribution between the previous level and its own; the top slice also
// takes any dead money above the highest level. A slice is open to contenders
// who put in at least its level.
//
// The slices always sum to the seats' total contributions.
func SidePots(s State) []Pot {
	contenders := s.contenders()

	var levels []chips.Amount
	for _, i := range contenders {
		if tb := s.Seats[i].TotalBet; tb > 0 && !slices.Contains(levels, tb) {
			levels = append(levels, tb)
		}
	}
	slices.Sort(levels)
	if len(levels) == 0 {
		levels = []chips.Amount{0}
	}

	pots := make([]Pot, 0, len(levels))
	var prev chips.Amount
	for k, level := range levels {
		pot := Pot{Level: level}
		top := k == len(levels)-1
		for i := range s.Seats {
			contrib := min(s.Seats[i].TotalBet, level) - prev
			if top {
				contrib = s.Seats[i].TotalBet - prev
			}
			if contrib > 0 {
				pot.Amount += contrib
				pot.Contributors++
			}
		}
		for _, i := range contenders {
			if s.Seats[i].TotalBet >= level {
				pot.Eligible = append(pot.Eligible, i)
			}
		}
		prev = level
		if pot.Amount > 0 {
			pots = append(pots, pot)
		}
	}
	return pots
}
