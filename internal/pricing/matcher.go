package pricing

import (
	"strings"
)

// Location and role scores. A city match always beats a state match and the
// role score never exceeds the gap between the two.
const (
	scoreCity        = 20
	scoreState       = 10
	scoreRoleExact   = 5
	scoreRoleNone    = 3
	scoreRoleGeneric = 1
)

// MatchOptions tunes tie-breaking and fallback in Match.
type MatchOptions struct {
	// HomeState wins ties between equally scored rules.
	HomeState string
	// DefaultRuleID is used when rules exist for the function but none survive scoring.
	DefaultRuleID string
}

// MatchResult is the outcome of rule matching for one position.
type MatchResult struct {
	Rule     *Rule
	Score    int
	Fallback bool
}

// Match selects the best rule for a position, or a zero MatchResult when
// none applies. The returned rule is a copy and may carry role overrides.
func Match(req PositionRequest, rules []Rule, opts MatchOptions) MatchResult {
	var candidates []Rule
	for _, r := range rules {
		if strings.EqualFold(r.Function, req.Function) {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return MatchResult{}
	}

	var best *Rule
	bestScore := -1
	for _, c := range candidates {
		score, resolved, ok := scoreRule(req, c)
		if !ok {
			continue
		}
		if score > bestScore || (score == bestScore && preferOnTie(resolved, *best, opts.HomeState)) {
			r := resolved
			best = &r
			bestScore = score
		}
	}
	if best != nil {
		return MatchResult{Rule: best, Score: bestScore}
	}

	if opts.DefaultRuleID != "" {
		for _, r := range rules {
			if r.ID == opts.DefaultRuleID {
				cp := cloneRule(r)
				return MatchResult{Rule: &cp, Fallback: true}
			}
		}
	}
	return MatchResult{}
}

// scoreRule returns the specificity score of rule r for req. ok is false when
// the rule is excluded.
func scoreRule(req PositionRequest, r Rule) (int, Rule, bool) {
	score, ok := locationScore(req, r)
	if !ok {
		return 0, Rule{}, false
	}

	resolved := cloneRule(r)
	role := strings.TrimSpace(req.Role)
	switch {
	case role == "":
		score += scoreRoleNone
	case r.Role != "" && strings.EqualFold(r.Role, role):
		score += scoreRoleExact
	case findRole(r.Roles, role) >= 0:
		entry := r.Roles[findRole(r.Roles, role)]
		resolved.Role = entry.Name
		resolved.WageFloor = entry.WageFloor
		resolved.Bonus = entry.Bonus
		resolved.PantryAllowance = entry.PantryAllowance
		score += scoreRoleExact
	case r.Role == "" && len(r.Roles) == 0:
		score += scoreRoleGeneric
	default:
		// The rule defines roles and none is the requested one.
		return 0, Rule{}, false
	}
	return score, resolved, true
}

func locationScore(req PositionRequest, r Rule) (int, bool) {
	if r.State == "" {
		return scoreState, true
	}
	if !strings.EqualFold(r.State, strings.TrimSpace(req.State)) {
		return 0, false
	}
	if r.City == "" {
		return scoreState, true
	}
	if strings.EqualFold(r.City, strings.TrimSpace(req.City)) {
		return scoreCity, true
	}
	return 0, false
}

func findRole(roles []RoleEntry, name string) int {
	for i, e := range roles {
		if strings.EqualFold(strings.TrimSpace(e.Name), name) {
			return i
		}
	}
	return -1
}

// preferOnTie reports whether candidate should replace current on equal score:
// home state first, then the more specific jurisdiction, then the lower id.
func preferOnTie(candidate, current Rule, homeState string) bool {
	ch := homeState != "" && strings.EqualFold(candidate.State, homeState)
	bh := homeState != "" && strings.EqualFold(current.State, homeState)
	if ch != bh {
		return ch
	}
	if cs, bs := candidate.State != "", current.State != ""; cs != bs {
		return cs
	}
	return candidate.ID < current.ID
}

func cloneRule(r Rule) Rule {
	cp := r
	if r.Roles != nil {
		cp.Roles = append([]RoleEntry(nil), r.Roles...)
	}
	return cp
}
