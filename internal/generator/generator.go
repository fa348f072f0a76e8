// Package generator invokes the text-generation capability for a
// topic, owning the retry/backoff policy and failure classification.
// Retries address call failure only: a response that is later rejected
// downstream is never regenerated here.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"geogate/internal/llm"
	"geogate/internal/topics"
)

// Config tunes the retry behavior of the caller.
type Config struct {
	MaxAttempts int           // total attempts, including the first (default 3)
	BackoffBase time.Duration // first retry delay, doubled per retry (default 2s)
	Timeout     time.Duration // per-attempt deadline (default 90s)
	Temperature float64
}

// DefaultConfig returns the production retry policy: attempts at
// 0s, +2s, +4s with a 90 second per-attempt deadline.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BackoffBase: 2 * time.Second,
		Timeout:     90 * time.Second,
		Temperature: 0.7,
	}
}

// Candidate is one generated text with its call provenance.
type Candidate struct {
	Text         string
	AttemptCount int
	Elapsed      time.Duration
	Provider     string
}

// Error reports a generation failure after classification.
type Error struct {
	Class    llm.ErrorClass
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("generate: %s failure after %d attempt(s): %v", e.Class, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Generator drives generation calls through a provider.
type Generator struct {
	provider llm.Provider
	cfg      Config
	logger   *slog.Logger
}

// New creates a Generator. Zero-valued config fields fall back to
// defaults.
func New(provider llm.Provider, cfg Config, logger *slog.Logger) *Generator {
	def := DefaultConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = def.BackoffBase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{provider: provider, cfg: cfg, logger: logger}
}

// Generate produces a candidate for the topic, retrying transient
// failures with exponential backoff. Permanent failures abort
// immediately; exhausted retries surface the last transient error.
func (g *Generator) Generate(ctx context.Context, t topics.Topic, researchContext string) (*Candidate, error) {
	prompt := BuildPrompt(t, researchContext)
	opts := &llm.RequestOptions{Temperature: &g.cfg.Temperature}

	start := time.Now()
	delay := g.cfg.BackoffBase
	var lastErr error

	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			g.logger.Warn("generation retry",
				slog.String("topic", t.Title),
				slog.Int("attempt", attempt),
				slog.Duration("backoff", delay))
			select {
			case <-ctx.Done():
				return nil, &Error{Class: llm.ClassPermanent, Attempts: attempt - 1, Err: ctx.Err()}
			case <-time.After(delay):
			}
			delay *= 2
		}

		attemptCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
		resp, err := g.provider.Complete(attemptCtx, prompt, opts)
		cancel()

		if err == nil {
			return &Candidate{
				Text:         resp.Content,
				AttemptCount: attempt,
				Elapsed:      time.Since(start),
				Provider:     g.provider.Name(),
			}, nil
		}
		lastErr = err

		if llm.Classify(err) == llm.ClassPermanent {
			return nil, &Error{Class: llm.ClassPermanent, Attempts: attempt, Err: err}
		}
		if ctx.Err() != nil {
			return nil, &Error{Class: llm.ClassPermanent, Attempts: attempt, Err: ctx.Err()}
		}
	}

	return nil, &Error{Class: llm.ClassTransient, Attempts: g.cfg.MaxAttempts, Err: lastErr}
}
