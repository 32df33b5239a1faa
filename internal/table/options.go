package table

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/lox/fairholdem/internal/rake"
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRake sets the rake schedule used for cash tables.
// The default charges nothing.
func WithRake(schedule rake.Schedule) Option {
	return func(e *Engine) {
		e.rake = schedule
	}
}

// Engine is the table reducer. It holds only injected parameters, so one
// Engine can serve any number of tables concurrently.
type Engine struct {
	logger *log.Logger
	rake   rake.Schedule
}

// NewEngine creates an engine with optional configuration.
//
// Example usage:
//
//	e := table.NewEngine(table.WithRake(rake.Flat(500, 300)))
//	s, _ := e.NewTable(table.Config{ID: "t1", MaxSeats: 6, SmallBlind: 5, BigBlind: 10})
//	s, _ = e.AddPlayer(s, "alice", "Alice", 1000, -1)
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger: log.New(io.Discard),
		rake:   rake.None,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithPrefix("table")
	return e
}

// Rake returns the schedule the engine applies.
func (e *Engine) Rake() rake.Schedule {
	return e.rake
}
