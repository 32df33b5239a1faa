package main

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/fairholdem/internal/chips"
	"github.com/lox/fairholdem/internal/config"
	"github.com/lox/fairholdem/internal/fairness"
	"github.com/lox/fairholdem/internal/history"
	"github.com/lox/fairholdem/internal/host"
	"github.com/lox/fairholdem/internal/randutil"
	"github.com/lox/fairholdem/internal/table"
)

// SimulateCmd plays random bots against each other on every configured table.
type SimulateCmd struct {
	Hands   int   `default:"100" help:"Hands to play per table"`
	Players int   `default:"4" help:"Bots per table"`
	Seed    int64 `default:"0" help:"Bot RNG seed (0 for random)"`
	History bool  `help:"Write a TOML record per hand to the configured history directory"`
}

func (cmd SimulateCmd) Run(cli *CLI) error {
	cfg, logger, err := cli.load()
	if err != nil {
		return err
	}
	if cmd.Seed == 0 {
		cmd.Seed = time.Now().UnixNano()
	}

	audit := &auditSink{}
	if cmd.History {
		w, err := history.NewWriter(cfg.HistoryDir, logger)
		if err != nil {
			return err
		}
		audit.next = w
	}

	hosts, err := buildHosts(cfg, logger, audit)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("simulation starting", "tables", len(hosts), "hands", cmd.Hands, "players", cmd.Players, "seed", cmd.Seed)
	start := time.Now()
	err = host.RunTables(ctx, hosts, func(ctx context.Context, h *host.Host) error {
		tc, _ := cfg.Table(h.ID())
		return cmd.drive(ctx, h, tc)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	hands, verified, rake := audit.totals()
	fmt.Printf("Played %d hands in %s: %d verified, %s rake\n",
		hands, time.Since(start).Round(time.Millisecond), verified, rake)
	if verified != hands {
		return fmt.Errorf("%d hands failed verification", hands-verified)
	}
	return nil
}

func buildHosts(cfg *config.Config, logger *log.Logger, sink host.HandSink) ([]*host.Host, error) {
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	engine := table.NewEngine(table.WithLogger(logger), table.WithRake(cfg.RakeSchedule()))

	hosts := make([]*host.Host, 0, len(cfg.Tables))
	for _, tc := range cfg.Tables {
		tableCfg, err := tc.Engine()
		if err != nil {
			return nil, err
		}
		h, err := host.New(host.Config{
			Table:         tableCfg,
			ClientSeed:    tc.ClientSeed,
			ActionTimeout: timeout,
		},
			host.WithLogger(logger),
			host.WithEngine(engine),
			host.WithHandSink(sink),
		)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", tc.Name, err)
		}
		hosts = append(hosts, h)
	}
	return hosts, nil
}

func (cmd SimulateCmd) drive(ctx context.Context, h *host.Host, tc config.TableConfig) error {
	players := min(cmd.Players, tc.MaxSeats)
	bots := make(map[string]*randomBot, players)
	for i := 0; i < players; i++ {
		id := fmt.Sprintf("bot%d", i+1)
		if _, err := h.Join(ctx, id, "", chips.Amount(tc.BuyIn), -1); err != nil {
			return err
		}
		bots[id] = &randomBot{rng: randutil.FromString(fmt.Sprintf("%d/%s/%s", cmd.Seed, tc.Name, id))}
	}

	mode, err := table.ParseMode(tc.Mode)
	if err != nil {
		return err
	}
	cash := mode != table.Tournament
	for hand := 0; hand < cmd.Hands; hand++ {
		if cash {
			if err := rebuyBusted(ctx, h, chips.Amount(tc.BuyIn)); err != nil {
				return err
			}
		}
		if err := h.StartHand(ctx); err != nil {
			if errors.Is(err, table.ErrNotEnoughPlayers) {
				return nil
			}
			return err
		}
		if err := playHand(ctx, h, bots); err != nil {
			return err
		}
	}
	return nil
}

func rebuyBusted(ctx context.Context, h *host.Host, buyIn chips.Amount) error {
	s, err := h.Snapshot(ctx, "")
	if err != nil {
		return err
	}
	for _, seat := range s.Seats {
		if seat.Occupied() && seat.Balance == 0 && seat.Status != table.Eliminated {
			if err := h.Rebuy(ctx, seat.ID, buyIn); err != nil {
				return err
			}
		}
	}
	return nil
}

func playHand(ctx context.Context, h *host.Host, bots map[string]*randomBot) error {
	for {
		s, err := h.Snapshot(ctx, "")
		if err != nil {
			return err
		}
		if !s.InHand() {
			return nil
		}
		id := s.Seats[s.Actor].ID
		action, amount := bots[id].decide(s)
		err = h.Act(ctx, id, action, amount)
		if table.IsProtocol(err) {
			err = h.Act(ctx, id, table.Call, 0)
		}
		if err != nil {
			return err
		}
	}
}

// randomBot folds, calls or raises at fixed odds.
type randomBot struct {
	rng *rand.Rand
}

func (b *randomBot) decide(s table.State) (table.Action, chips.Amount) {
	owed := s.Owed(s.Actor)
	switch r := b.rng.IntN(100); {
	case r < 15 && owed > 0:
		return table.Fold, 0
	case r < 30:
		return table.Raise, s.CurrentBet * 2
	default:
		return table.Call, 0
	}
}

// auditSink verifies every settled hand before passing it on.
type auditSink struct {
	next host.HandSink

	mu       sync.Mutex
	hands    int
	verified int
	rake     chips.Amount
}

func (a *auditSink) WriteHand(s table.State) error {
	rep := fairness.VerifyHand(s.Fairness.Request(s.HoleCardsDealt, s.CommunityCards)).Err()
	a.mu.Lock()
	a.hands++
	if rep == nil {
		a.verified++
	}
	a.rake += s.HandRake
	a.mu.Unlock()

	if rep != nil {
		return rep
	}
	if a.next != nil {
		return a.next.WriteHand(s)
	}
	return nil
}

func (a *auditSink) totals() (hands, verified int, rake chips.Amount) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hands, a.verified, a.rake
}
