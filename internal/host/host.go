// Package host runs live tables. Each Host owns one table state and applies
// every change from a single goroutine, so the engine's pure reducers never
// see concurrent callers.
package host

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/fairholdem/internal/chips"
	"github.com/lox/fairholdem/internal/fairness"
	"github.com/lox/fairholdem/internal/table"
)

// DefaultActionTimeout applies when Config leaves ActionTimeout zero.
const DefaultActionTimeout = 30 * time.Second

var (
	// ErrStopped is returned for requests made after Run has returned.
	ErrStopped = errors.New("host stopped")
	// ErrRunning is returned when Run is called twice.
	ErrRunning = errors.New("host already running")
	// ErrUnknownPlayer means no seat holds the given player id.
	ErrUnknownPlayer = fmt.Errorf("%w: unknown player", table.ErrProtocol)
)

// Config holds the per-table settings.
type Config struct {
	Table         table.Config
	ClientSeed    string
	ActionTimeout time.Duration
}

// HandSink receives the public record of every settled hand, secret revealed.
type HandSink interface {
	WriteHand(s table.State) error
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *log.Logger) Option {
	return func(h *Host) { h.logger = logger }
}

// WithClock sets the clock used for action timeouts.
func WithClock(clock quartz.Clock) Option {
	return func(h *Host) { h.clock = clock }
}

// WithEngine sets the engine. The default has no rake and shares the host logger.
func WithEngine(e *table.Engine) Option {
	return func(h *Host) { h.engine = e }
}

// WithCommitter sets the source of server secrets.
func WithCommitter(c *fairness.Committer) Option {
	return func(h *Host) { h.committer = c }
}

// WithStateSink is called with a public snapshot after every change.
// It runs on the host goroutine and must not call back into the Host.
func WithStateSink(fn func(table.State)) Option {
	return func(h *Host) { h.onState = fn }
}

// WithHandSink records settled hands.
func WithHandSink(sink HandSink) Option {
	return func(h *Host) { h.hands = sink }
}

type request struct {
	fn    func() error
	reply chan error
}

// turn identifies one pending decision so a stale timer cannot fold the
// wrong seat.
type turn struct {
	hand  uint64
	moves int
	actor int
}

// Host serialises access to one table.
type Host struct {
	cfg       Config
	engine    *table.Engine
	committer *fairness.Committer
	clock     quartz.Clock
	logger    *log.Logger
	onState   func(table.State)
	hands     HandSink

	requests chan request
	done     chan struct{}
	running  atomic.Bool

	// Owned by the Run goroutine.
	state      table.State
	clientSeed string
	moves      int
	recorded   uint64
	timer      *quartz.Timer
	turn       turn
}

// New creates a host for an empty table. Call Run to start serving requests.
func New(cfg Config, opts ...Option) (*Host, error) {
	h := &Host{
		cfg:      cfg,
		requests: make(chan request),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = log.New(io.Discard)
	}
	if h.engine == nil {
		h.engine = table.NewEngine(table.WithLogger(h.logger))
	}
	if h.committer == nil {
		h.committer = fairness.NewCommitter(rand.Reader)
	}
	if h.clock == nil {
		h.clock = quartz.NewReal()
	}
	if h.cfg.ActionTimeout <= 0 {
		h.cfg.ActionTimeout = DefaultActionTimeout
	}
	h.clientSeed = cfg.ClientSeed
	if h.clientSeed == "" {
		h.clientSeed = cfg.Table.ID
	}
	h.logger = h.logger.WithPrefix("host").With("table", cfg.Table.ID)

	s, err := h.engine.NewTable(cfg.Table)
	if err != nil {
		return nil, err
	}
	h.state = s
	return h, nil
}

// ID returns the table id.
func (h *Host) ID() string {
	return h.cfg.Table.ID
}

// Run serves requests until ctx is cancelled.
func (h *Host) Run(ctx context.Context) error {
	if !h.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer close(h.done)
	defer h.disarm()

	h.logger.Info("table open",
		"seats", h.cfg.Table.MaxSeats,
		"blinds", fmt.Sprintf("%s/%s", h.cfg.Table.SmallBlind, h.cfg.Table.BigBlind),
		"timeout", h.cfg.ActionTimeout)
	h.publish()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("table closed", "hands", h.state.HandNumber)
			return nil
		case req := <-h.requests:
			req.reply <- req.fn()
		}
	}
}

// do runs fn on the host goroutine and waits for its result.
func (h *Host) do(ctx context.Context, fn func() error) error {
	req := request{fn: fn, reply: make(chan error, 1)}
	select {
	case h.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrStopped
	}
	return <-req.reply
}

// Join seats a player and returns the seat position. Pass -1 for any seat.
func (h *Host) Join(ctx context.Context, id, name string, buyIn chips.Amount, position int) (int, error) {
	seat := -1
	err := h.do(ctx, func() error {
		next, err := h.engine.AddPlayer(h.state, id, name, buyIn, position)
		if err != nil {
			return err
		}
		h.commit(next)
		s, _ := h.state.SeatByID(id)
		seat = s.Position
		return nil
	})
	return seat, err
}

// Act applies a betting action for a player.
func (h *Host) Act(ctx context.Context, id string, action table.Action, amount chips.Amount) error {
	return h.do(ctx, func() error {
		pos, err := h.position(id)
		if err != nil {
			return err
		}
		return h.act(pos, action, amount)
	})
}

// SitOut toggles a player between sitting out and playing.
func (h *Host) SitOut(ctx context.Context, id string) error {
	return h.do(ctx, func() error {
		pos, err := h.position(id)
		if err != nil {
			return err
		}
		next, err := h.engine.SitOut(h.state, pos)
		if err != nil {
			return err
		}
		h.moves++
		h.commit(next)
		return nil
	})
}

// Rebuy adds chips to a player's stack between hands.
func (h *Host) Rebuy(ctx context.Context, id string, amount chips.Amount) error {
	return h.do(ctx, func() error {
		pos, err := h.position(id)
		if err != nil {
			return err
		}
		next, err := h.engine.Rebuy(h.state, pos, amount)
		if err != nil {
			return err
		}
		h.commit(next)
		return nil
	})
}

// SetClientSeed replaces the player-supplied seed mixed into future shuffles.
// It cannot change during a hand.
func (h *Host) SetClientSeed(ctx context.Context, seed string) error {
	return h.do(ctx, func() error {
		if h.state.InHand() {
			return table.ErrHandInProgress
		}
		if seed == "" {
			return fmt.Errorf("%w: empty client seed", table.ErrProtocol)
		}
		h.clientSeed = seed
		h.logger.Debug("client seed set", "seed", seed)
		return nil
	})
}

// StartHand commits to a fresh secret, derives the deck and deals.
func (h *Host) StartHand(ctx context.Context) error {
	return h.do(ctx, h.startHand)
}

// Snapshot returns the table as the given player sees it; "" gives the
// public view.
func (h *Host) Snapshot(ctx context.Context, viewer string) (table.State, error) {
	var out table.State
	err := h.do(ctx, func() error {
		pos := -1
		if viewer != "" {
			p, err := h.position(viewer)
			if err != nil {
				return err
			}
			pos = p
		}
		out = table.Redact(h.state, pos)
		return nil
	})
	return out, err
}

func (h *Host) position(id string) (int, error) {
	seat, ok := h.state.SeatByID(id)
	if !ok {
		return -1, fmt.Errorf("%w: %s", ErrUnknownPlayer, id)
	}
	return seat.Position, nil
}

func (h *Host) startHand() error {
	nonce := h.state.HandNumber + 1
	rec, err := fairness.NewRecord(h.committer, h.clientSeed, nonce)
	if err != nil {
		h.logger.Error("commitment failed, not dealing", "nonce", nonce, "error", err)
		return err
	}
	deck, err := rec.Deck()
	if err != nil {
		return err
	}

	next, err := h.engine.DealHand(h.state, rec, deck)
	if err != nil {
		if next.Halted && !h.state.Halted {
			h.commit(next)
		}
		return err
	}
	h.moves = 0
	h.logger.Debug("hand committed", "hand", nonce, "commitment", rec.ServerSeedHash, "client_seed", h.clientSeed)
	h.commit(next)
	return nil
}

func (h *Host) act(pos int, action table.Action, amount chips.Amount) error {
	next, err := h.engine.ApplyAction(h.state, pos, action, amount)
	if err != nil {
		return err
	}
	h.moves++
	h.commit(next)
	return nil
}

// commit installs a new state, runs out closed streets, records a settled
// hand, re-arms the action timer and publishes.
func (h *Host) commit(next table.State) {
	h.state = next
	for h.state.InHand() && h.state.Actor < 0 {
		advanced, err := h.engine.AdvanceStreet(h.state)
		if err != nil {
			h.logger.Error("street advance failed", "hand", h.state.HandNumber, "error", err)
			break
		}
		h.state = advanced
	}
	if h.state.Street == table.Showdown && h.state.HandNumber != h.recorded {
		h.recorded = h.state.HandNumber
		h.record()
	}
	h.rearm()
	h.publish()
}

func (h *Host) record() {
	if h.hands == nil {
		return
	}
	if err := h.hands.WriteHand(table.Public(h.state)); err != nil {
		h.logger.Error("hand record not written", "hand", h.state.HandNumber, "error", err)
	}
}

func (h *Host) publish() {
	if h.onState != nil {
		h.onState(table.Public(h.state))
	}
}

func (h *Host) rearm() {
	s := h.state
	if !s.InHand() || s.Actor < 0 {
		h.disarm()
		return
	}
	t := turn{hand: s.HandNumber, moves: h.moves, actor: s.Actor}
	if h.timer != nil && h.turn == t {
		return
	}
	h.disarm()
	h.turn = t
	h.timer = h.clock.AfterFunc(h.cfg.ActionTimeout, func() {
		_ = h.do(context.Background(), func() error { return h.expire(t) })
	}, "host", "action")
}

func (h *Host) disarm() {
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}

// expire folds the seat whose turn t was, unless the turn has already passed.
func (h *Host) expire(t turn) error {
	if h.timer == nil || h.turn != t {
		return nil
	}
	h.timer = nil
	seat := h.state.Seats[t.actor]
	h.logger.Info("action timed out, folding", "hand", t.hand, "seat", t.actor, "player", seat.ID)
	return h.act(t.actor, table.Fold, 0)
}
