package lift

import "go.uber.org/zap"

type config struct {
	logger    *zap.Logger
	maxSweeps int
}

// Option configures analysis and rewriting.
type Option func(*config)

// WithMaxSweeps caps the number of fixpoint sweeps. Zero derives the cap
// from the program: the number of nested functions times the number of
// distinct variables referenced inside them, plus two.
func WithMaxSweeps(n int) Option {
	return func(c *config) {
		c.maxSweeps = n
	}
}

// WithLogger overrides the package logger for one pass.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = Logger()
	}
	return c
}
