// Package rake holds the house cut schedule. Rates come from loyalty tiers
// keyed on how many hands a seat has played; the schedule itself is supplied
// by configuration, the table engine only applies it.
package rake

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lox/fairholdem/internal/chips"
)

// Tier is one loyalty level. A seat with at least MinHands played pays Rate.
type Tier struct {
	Name     string
	MinHands int
	Rate     chips.BasisPoints
}

// Schedule is the full rake parameter set. A zero Cap means uncapped.
type Schedule struct {
	Tiers []Tier
	Cap   chips.Amount
}

var ErrInvalidSchedule = errors.New("invalid rake schedule")

// None charges nothing.
var None = Schedule{}

// Flat returns a single-tier schedule.
func Flat(rate chips.BasisPoints, limit chips.Amount) Schedule {
	return Schedule{Tiers: []Tier{{Name: "standard", Rate: rate}}, Cap: limit}
}

// Validate rejects rates outside [0, 100%], negative thresholds or caps and
// duplicate thresholds.
func (s Schedule) Validate() error {
	if s.Cap < 0 {
		return fmt.Errorf("%w: negative cap %d", ErrInvalidSchedule, s.Cap)
	}
	seen := make(map[int]string, len(s.Tiers))
	for _, t := range s.Tiers {
		if t.Rate < 0 || t.Rate > chips.FullRate {
			return fmt.Errorf("%w: tier %q rate %d out of range", ErrInvalidSchedule, t.Name, t.Rate)
		}
		if t.MinHands < 0 {
			return fmt.Errorf("%w: tier %q has negative min hands", ErrInvalidSchedule, t.Name)
		}
		if other, ok := seen[t.MinHands]; ok {
			return fmt.Errorf("%w: tiers %q and %q share threshold %d", ErrInvalidSchedule, other, t.Name, t.MinHands)
		}
		seen[t.MinHands] = t.Name
	}
	return nil
}

// TierFor returns the highest tier whose threshold hands has reached. The
// second result is false when no tier applies.
func (s Schedule) TierFor(hands int) (Tier, bool) {
	tiers := make([]Tier, len(s.Tiers))
	copy(tiers, s.Tiers)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinHands > tiers[j].MinHands })
	for _, t := range tiers {
		if hands >= t.MinHands {
			return t, true
		}
	}
	return Tier{}, false
}

// RateFor is the rate a seat with the given hand count pays.
func (s Schedule) RateFor(hands int) chips.BasisPoints {
	t, ok := s.TierFor(hands)
	if !ok {
		return 0
	}
	return t.Rate
}

// Meter applies one hand's cap across pot slices.
type Meter struct {
	cap   chips.Amount
	taken chips.Amount
}

// Meter starts a fresh per-hand meter.
func (s Schedule) Meter() *Meter {
	return &Meter{cap: s.Cap}
}

// Take returns the rake for one slice: floor(slice × rate), limited to what
// remains of the hand's cap.
func (m *Meter) Take(slice chips.Amount, rate chips.BasisPoints) chips.Amount {
	if slice <= 0 || rate <= 0 {
		return 0
	}
	r := slice.MulRate(rate)
	if m.cap > 0 {
		r = min(r, m.cap-m.taken)
	}
	m.taken += r
	return r
}

// Total is the rake taken so far.
func (m *Meter) Total() chips.Amount {
	return m.taken
}
