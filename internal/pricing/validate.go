package pricing

import (
	"fmt"
	"math"
	"strings"
)

var unhealthyGrades = map[int]float64{
	10: 0.10,
	20: 0.20,
	40: 0.40,
}

// Validate checks every position and returns a *ValidationError listing all
// issues, or nil when the request can be priced.
func Validate(positions []PositionRequest) error {
	if len(positions) == 0 {
		return &ValidationError{Issues: []Issue{{
			Field:   "positions",
			Code:    CodeEmptyPositions,
			Message: "at least one position is required",
		}}}
	}

	var issues []Issue
	for i, p := range positions {
		issues = append(issues, validatePosition(fmt.Sprintf("positions[%d]", i), p)...)
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func validatePosition(path string, p PositionRequest) []Issue {
	var issues []Issue
	add := func(field, code, msg string) {
		issues = append(issues, Issue{Field: path + "." + field, Code: code, Message: msg})
	}

	if strings.TrimSpace(p.Function) == "" {
		add("function", CodeFunction, "function is required")
	}
	if strings.TrimSpace(p.State) == "" {
		add("state", CodeState, "state is required")
	}
	if p.Headcount < 1 {
		add("headcount", CodeHeadcount, "headcount must be at least 1")
	}

	if len(p.WorkDays) == 0 {
		add("workDays", CodeWorkDays, "at least one working day is required")
	}
	for j, d := range p.WorkDays {
		if _, ok := weekdays[strings.ToUpper(strings.TrimSpace(d))]; !ok {
			add(fmt.Sprintf("workDays[%d]", j), CodeWorkDay, fmt.Sprintf("unknown weekday %q", d))
		}
	}

	if _, ok := parseClock(p.StartTime); !ok {
		add("startTime", CodeTime, fmt.Sprintf("start time %q must be HH:MM", p.StartTime))
	}
	if _, ok := parseClock(p.EndTime); !ok {
		add("endTime", CodeTime, fmt.Sprintf("end time %q must be HH:MM", p.EndTime))
	}

	// A grade sent without the flag is still checked; it may combine with a rule default.
	if p.Unhealthy || p.UnhealthyGrade != 0 {
		if _, ok := unhealthyGrades[p.UnhealthyGrade]; !ok {
			add("unhealthyGrade", CodeUnhealthyGrade, "unhealthy grade must be 10, 20 or 40")
		}
	}
	switch p.UnhealthyBasis {
	case "", BasisMinimumWage, BasisRoleWage:
	default:
		add("unhealthyBasis", CodeUnhealthyBasis, fmt.Sprintf("unknown basis %q", p.UnhealthyBasis))
	}

	if !finite(p.MaterialCost) {
		add("materialCost", CodeAmount, "material cost must be a finite number")
	}
	if !finite(p.PantryAmount) || p.PantryAmount < 0 {
		add("pantryAmount", CodeAmount, "pantry amount must be a non-negative number")
	}

	return issues
}

// CheckRule reports the first setting of r that pricing cannot apply, as a
// *RuleConfigError.
func CheckRule(r Rule) error {
	fail := func(format string, args ...any) error {
		return &RuleConfigError{RuleID: r.ID, Reason: fmt.Sprintf(format, args...)}
	}

	if strings.TrimSpace(r.Function) == "" {
		return fail("function is required")
	}
	if !finite(r.WageFloor) || r.WageFloor < 0 {
		return fail("wage floor must be a non-negative number")
	}
	for _, e := range r.Roles {
		if strings.TrimSpace(e.Name) == "" {
			return fail("role name is required")
		}
		if !finite(e.WageFloor) || e.WageFloor < 0 {
			return fail("role %s: wage floor must be a non-negative number", e.Name)
		}
	}

	ap := r.AdditionalPay
	if ap.Unhealthy || ap.UnhealthyGrade != 0 {
		if _, ok := unhealthyGrades[ap.UnhealthyGrade]; !ok {
			return fail("unhealthy grade %d must be 10, 20 or 40", ap.UnhealthyGrade)
		}
	}
	switch ap.Basis {
	case "", BasisMinimumWage, BasisRoleWage:
	default:
		return fail("unknown unhealthy basis %q", ap.Basis)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
