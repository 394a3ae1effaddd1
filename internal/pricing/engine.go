package pricing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// IDGenerator returns a new proposal identifier.
type IDGenerator func() string

// NewIDGenerator returns a generator of UUIDv7 strings: time ordered with
// random bits, so concurrent callers never collide.
func NewIDGenerator() IDGenerator {
	return func() string {
		id, err := uuid.NewV7()
		if err != nil {
			return uuid.NewString()
		}
		return id.String()
	}
}

// Engine prices proposals. The zero value is not usable; build with NewEngine.
type Engine struct {
	defaults Defaults
	bundled  []Rule
	match    MatchOptions
	newID    IDGenerator
}

// Option configures an Engine.
type Option func(*Engine)

// WithHomeState sets the jurisdiction that wins rule-matching ties.
func WithHomeState(state string) Option {
	return func(e *Engine) { e.match.HomeState = state }
}

// WithDefaultRuleID sets the designated fallback rule.
func WithDefaultRuleID(id string) Option {
	return func(e *Engine) { e.match.DefaultRuleID = id }
}

// WithBundledRules replaces the rule set used when a request supplies none.
func WithBundledRules(rules []Rule) Option {
	return func(e *Engine) { e.bundled = rules }
}

// WithIDGenerator replaces the proposal id generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(e *Engine) { e.newID = gen }
}

// NewEngine builds an Engine over the given global defaults.
func NewEngine(defaults Defaults, opts ...Option) *Engine {
	e := &Engine{
		defaults: defaults,
		bundled:  DefaultRules(),
		match: MatchOptions{
			HomeState:     DefaultHomeState,
			DefaultRuleID: DefaultRuleID,
		},
		newID: NewIDGenerator(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Defaults returns a copy of the engine's global defaults.
func (e *Engine) Defaults() Defaults {
	return e.defaults
}

// Quote is the input of Aggregate.
type Quote struct {
	Positions []PositionRequest
	// Rules is the rule set to match against; empty means the bundled set.
	Rules []Rule
	// Defaults overrides the engine defaults when non-nil.
	Defaults *Defaults
}

// Aggregate validates every position and rule, prices the positions
// concurrently and sums the results. It fails atomically: either every
// position is priced or none is.
func (e *Engine) Aggregate(ctx context.Context, q Quote) (ProposalResult, error) {
	if err := Validate(q.Positions); err != nil {
		return ProposalResult{}, err
	}

	defaults := e.defaults
	if q.Defaults != nil {
		defaults = *q.Defaults
	}
	rules := q.Rules
	bundled := len(rules) == 0
	if bundled {
		rules = e.bundled
	}
	for _, r := range rules {
		if err := CheckRule(r); err != nil {
			return ProposalResult{}, err
		}
	}

	positions := make([]PositionResult, len(q.Positions))
	g, ctx := errgroup.WithContext(ctx)
	for i, req := range q.Positions {
		i, req := i, req
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := e.pricePosition(req, rules, defaults)
			if err != nil {
				return fmt.Errorf("position %d: %w", i, err)
			}
			positions[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ProposalResult{}, err
	}

	var sum Summary
	for _, p := range positions {
		sum.MonthlyTotal += p.TotalPrice
		sum.TaxTotal += p.TaxTotal
		sum.ProfitTotal += p.ProfitTotal
	}
	sum.AnnualTotal = sum.MonthlyTotal * 12

	return ProposalResult{
		ID:           e.newID(),
		Positions:    positions,
		Summary:      sum,
		BundledRules: bundled,
	}, nil
}

func (e *Engine) pricePosition(req PositionRequest, rules []Rule, defaults Defaults) (PositionResult, error) {
	m := Match(req, rules, e.match)
	params := Resolve(m.Rule, defaults)

	b, err := Calculate(req, params)
	if err != nil {
		return PositionResult{}, err
	}

	n := float64(req.Headcount)
	return PositionResult{
		Request:      req,
		RuleID:       params.RuleID,
		MatchScore:   m.Score,
		FromDefaults: params.FromDefaults,
		FallbackRule: m.Fallback,
		Breakdown:    b,
		UnitPrice:    b.UnitPrice,
		TotalPrice:   b.UnitPrice * n,
		TaxTotal:     b.Tax * n,
		ProfitTotal:  b.Profit * n,
	}, nil
}
