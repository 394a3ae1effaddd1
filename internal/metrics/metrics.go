package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Simplici0/staffquote/internal/pricing"
)

// Proposal outcomes.
const (
	OutcomePriced     = "priced"
	OutcomeInvalid    = "invalid"
	OutcomeTaxConfig  = "tax_config"
	OutcomeRuleConfig = "rule_config"
	OutcomeError      = "error"
)

// Fallback sources.
const (
	FallbackDefaults    = "defaults"
	FallbackDefaultRule = "default_rule"
)

// OtherFunction labels positions whose function is not a known one.
const OtherFunction = "other"

var (
	ProposalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staffquote_proposals_total",
			Help: "Total number of proposal pricing requests by outcome",
		},
		[]string{"outcome"},
	)

	ProposalDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "staffquote_proposal_duration_seconds",
			Help:    "Duration of proposal pricing in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
	)

	PositionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staffquote_positions_total",
			Help: "Total number of priced positions by function",
		},
		[]string{"function"},
	)

	RuleFallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staffquote_rule_fallback_total",
			Help: "Positions priced without a matching rule, by function and fallback source",
		},
		[]string{"function", "source"},
	)
)

var (
	functionsMu sync.RWMutex
	functions   = make(map[string]struct{})
)

func init() {
	AddFunctions(pricing.Functions()...)
}

// AddFunctions registers function names that get their own label value.
// Everything else is counted under OtherFunction so client input cannot
// grow the number of series.
func AddFunctions(names ...string) {
	functionsMu.Lock()
	defer functionsMu.Unlock()
	for _, n := range names {
		if n = normalizeFunction(n); n != "" {
			functions[n] = struct{}{}
		}
	}
}

func functionLabel(name string) string {
	name = normalizeFunction(name)
	functionsMu.RLock()
	_, ok := functions[name]
	functionsMu.RUnlock()
	if !ok {
		return OtherFunction
	}
	return name
}

func normalizeFunction(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// ObserveProposal records one pricing attempt. res is only read when the
// outcome is OutcomePriced.
func ObserveProposal(outcome string, elapsed time.Duration, res pricing.ProposalResult) {
	ProposalsTotal.WithLabelValues(outcome).Inc()
	ProposalDuration.Observe(elapsed.Seconds())
	if outcome != OutcomePriced {
		return
	}
	for _, p := range res.Positions {
		fn := functionLabel(p.Request.Function)
		PositionsTotal.WithLabelValues(fn).Inc()
		switch {
		case p.FromDefaults:
			RuleFallbackTotal.WithLabelValues(fn, FallbackDefaults).Inc()
		case p.FallbackRule:
			RuleFallbackTotal.WithLabelValues(fn, FallbackDefaultRule).Inc()
		}
	}
}
