package chain

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Defaults observed for the catalog this engine was tuned on.
const (
	DefaultMinOverlapYears = 20
	DefaultMinFame         = 100
	DefaultMaxGapYears     = 150
	DefaultRelaxGapYears   = 50
	DefaultDepthCap        = 10
	DefaultLengthCap       = 50
	DefaultPresentWindow   = 10

	defaultProximityBase = 1000.0
	defaultFameWeight    = 0.1
	defaultFameBonusCap  = 50.0
)

// ErrOptionViolation is returned by NewEngine when an invalid Option is supplied.
var ErrOptionViolation = errors.New("chain: invalid option supplied")

// Option configures an Engine via functional arguments.
// Invalid values are recorded and surfaced as ErrOptionViolation by NewEngine.
type Option func(*Options)

// Options holds the thresholds and scoring constants of an Engine.
type Options struct {
	// MinOverlapYears is the strict connectivity threshold.
	MinOverlapYears int

	// MinFame drops catalog entries below it from the candidate pool.
	// Caller-supplied endpoints are never filtered.
	MinFame int

	// MaxGapYears is the birth-year distance accepted when lifespans do not overlap enough.
	MaxGapYears int

	// RelaxGapYears is how far past the current person's death the greedy
	// builder may look when no overlapping successor exists.
	RelaxGapYears int

	// DepthCap bounds each frontier of FindPath, in edges.
	DepthCap int

	// LengthCap bounds the number of persons BuildToPresent returns.
	LengthCap int

	// PresentWindow ends greedy extension once a death year is this close to ReferenceYear.
	PresentWindow int

	// ReferenceYear is "now". Living persons are treated as dying in it.
	ReferenceYear int

	// Greedy scoring: ProximityBase - |born - death| + min(fame*FameWeight, FameBonusCap).
	ProximityBase float64
	FameWeight    float64
	FameBonusCap  float64

	// Logger receives diagnostics such as skipped waypoints.
	Logger *zap.Logger

	err error
}

// DefaultOptions returns the observed defaults with ReferenceYear set to the current year.
func DefaultOptions() Options {
	return Options{
		MinOverlapYears: DefaultMinOverlapYears,
		MinFame:         DefaultMinFame,
		MaxGapYears:     DefaultMaxGapYears,
		RelaxGapYears:   DefaultRelaxGapYears,
		DepthCap:        DefaultDepthCap,
		LengthCap:       DefaultLengthCap,
		PresentWindow:   DefaultPresentWindow,
		ReferenceYear:   time.Now().Year(),
		ProximityBase:   defaultProximityBase,
		FameWeight:      defaultFameWeight,
		FameBonusCap:    defaultFameBonusCap,
		Logger:          zap.NewNop(),
	}
}

func nonNegative(o *Options, name string, v int, set func(int)) {
	if v < 0 {
		o.err = fmt.Errorf("%w: %s cannot be negative (%d)", ErrOptionViolation, name, v)
		return
	}
	set(v)
}

func positive(o *Options, name string, v int, set func(int)) {
	if v <= 0 {
		o.err = fmt.Errorf("%w: %s must be positive (%d)", ErrOptionViolation, name, v)
		return
	}
	set(v)
}

// WithMinOverlapYears sets the strict overlap threshold.
func WithMinOverlapYears(years int) Option {
	return func(o *Options) {
		nonNegative(o, "MinOverlapYears", years, func(v int) { o.MinOverlapYears = v })
	}
}

// WithMinFame sets the candidate filter threshold.
func WithMinFame(fame int) Option {
	return func(o *Options) {
		nonNegative(o, "MinFame", fame, func(v int) { o.MinFame = v })
	}
}

// WithMaxGapYears sets the gap fallback of the connectivity predicate.
func WithMaxGapYears(years int) Option {
	return func(o *Options) {
		nonNegative(o, "MaxGapYears", years, func(v int) { o.MaxGapYears = v })
	}
}

// WithRelaxGapYears sets how far past a death the greedy builder may reach.
func WithRelaxGapYears(years int) Option {
	return func(o *Options) {
		nonNegative(o, "RelaxGapYears", years, func(v int) { o.RelaxGapYears = v })
	}
}

// WithDepthCap sets the per-frontier depth limit of FindPath.
func WithDepthCap(depth int) Option {
	return func(o *Options) {
		positive(o, "DepthCap", depth, func(v int) { o.DepthCap = v })
	}
}

// WithLengthCap sets the maximum greedy chain length.
func WithLengthCap(n int) Option {
	return func(o *Options) {
		positive(o, "LengthCap", n, func(v int) { o.LengthCap = v })
	}
}

// WithReferenceYear injects "now".
func WithReferenceYear(year int) Option {
	return func(o *Options) { o.ReferenceYear = year }
}

// WithLogger sets the diagnostics logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}
