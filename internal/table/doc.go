// Package table implements the Texas Hold'em table engine.
//
// The engine is a reducer: every operation takes a State and returns a new
// State, never touching the one it was given. It performs no I/O and never
// blocks, so callers own all waiting, timers and delivery. A caller that
// feeds one table from several goroutines must serialise access itself; see
// package host for the one-goroutine-per-table runner.
//
// # Basic Usage
//
//	e := table.NewEngine(table.WithRake(schedule), table.WithLogger(logger))
//	s, _ := e.NewTable(table.Config{ID: "t1", MaxSeats: 6, SmallBlind: 5, BigBlind: 10})
//	s, _ = e.AddPlayer(s, "alice", "Alice", 1000, -1)
//	s, _ = e.AddPlayer(s, "bob", "Bob", 1000, -1)
//
//	rec, _ := fairness.NewRecord(committer, clientSeed, s.HandNumber+1)
//	deck, _ := rec.Deck()
//	s, err := e.DealHand(s, rec, deck)
//
//	s, err = e.ApplyAction(s, s.Actor, table.Call, 0)
//	if s.InHand() && s.Actor < 0 {
//	    s, err = e.AdvanceStreet(s)
//	}
//
// # Errors
//
// Rejected input wraps ErrProtocol and returns the state unchanged. Problems
// with the fairness record wrap fairness.ErrFairnessViolation; the returned
// state is halted and refuses to deal again.
//
// # Money
//
// Balances, bets, pots and rake are chips.Amount integers. ChipTotal over a
// hand's states stays constant from the deal through settlement.
package table
