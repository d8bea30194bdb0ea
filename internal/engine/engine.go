// Package engine is the rules engine: it validates and schedules orders,
// advances campaign time by day-parts, and resolves movement, logistics,
// combat, sieges, messaging, naval transport, covert operations, and
// recruitment against the campaign state. One Engine owns one campaign;
// different campaigns get independent engines.
package engine

import (
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/sims1253/kataphraktus/internal/campaign"
	"github.com/sims1253/kataphraktus/internal/dice"
	"github.com/sims1253/kataphraktus/internal/rules"
)

// CommitFunc is invoked after each whole day's effects have been applied,
// giving the host its transactional persistence boundary.
type CommitFunc func(*campaign.Campaign) error

// Engine resolves orders and ticks for a single campaign.
type Engine struct {
	rules    *rules.Config
	src      dice.Source
	audit    *dice.Log
	logger   *slog.Logger
	commit   CommitFunc
	validate *validator.Validate
}

// Option configures an Engine.
type Option func(*Engine)

// WithRollSource replaces the default seeded roll source.
func WithRollSource(src dice.Source) Option {
	return func(e *Engine) { e.src = src }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithCommit sets the per-day persistence callback.
func WithCommit(fn CommitFunc) Option {
	return func(e *Engine) { e.commit = fn }
}

// New builds an engine over a ruleset. A nil ruleset uses the defaults.
func New(cfg *rules.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = rules.Default()
	}
	e := &Engine{
		rules:    cfg,
		src:      dice.NewSource(),
		audit:    dice.NewLog(),
		logger:   slog.Default(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AuditLog returns all audit entries recorded from the given day onward.
func (e *Engine) AuditLog(sinceDay int) []dice.Entry {
	return e.audit.Since(sinceDay)
}

// rec builds a recorder positioned at the campaign's current tick.
func (e *Engine) rec(c *campaign.Campaign) *dice.Recorder {
	return &dice.Recorder{Src: e.src, Log: e.audit, Day: c.CurrentDay, Part: string(c.Part)}
}

// seed builds the canonical seed for a stochastic event at the current tick.
func seed(c *campaign.Campaign, context string) string {
	return dice.Seed(int64(c.ID), c.CurrentDay, string(c.Part), context)
}
