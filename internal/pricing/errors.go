package pricing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput marks requests rejected before any calculation begins.
	ErrInvalidInput = errors.New("invalid input")
	// ErrTaxConfiguration marks a combined revenue tax rate that cannot be grossed up.
	ErrTaxConfiguration = errors.New("tax configuration")
	// ErrRuleConfiguration marks a rule that cannot be applied as written.
	ErrRuleConfiguration = errors.New("rule configuration")
)

// Issue codes reported in a ValidationError.
const (
	CodeEmptyPositions = "EMPTY_POSITIONS"
	CodeFunction       = "FUNCTION_REQUIRED"
	CodeState          = "STATE_REQUIRED"
	CodeHeadcount      = "INVALID_HEADCOUNT"
	CodeWorkDays       = "WORKDAYS_REQUIRED"
	CodeWorkDay        = "INVALID_WORKDAY"
	CodeTime           = "INVALID_TIME"
	CodeUnhealthyGrade = "INVALID_UNHEALTHY_GRADE"
	CodeUnhealthyBasis = "INVALID_UNHEALTHY_BASIS"
	CodeAmount         = "INVALID_AMOUNT"
)

// Issue is a single validation failure located by field path.
type Issue struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError collects every issue found in a proposal request.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", is.Field, is.Message))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// TaxConfigError reports a combined tax rate of 1 or more, or a negative one.
type TaxConfigError struct {
	RuleID string
	Rate   float64
}

func (e *TaxConfigError) Error() string {
	if e.RuleID == "" {
		return fmt.Sprintf("tax configuration: combined tax rate %.4f must be in [0, 1)", e.Rate)
	}
	return fmt.Sprintf("tax configuration: rule %s has combined tax rate %.4f, must be in [0, 1)", e.RuleID, e.Rate)
}

func (e *TaxConfigError) Is(target error) bool {
	return target == ErrTaxConfiguration
}

// RuleConfigError reports a rule whose settings cannot be priced.
type RuleConfigError struct {
	RuleID string
	Reason string
}

func (e *RuleConfigError) Error() string {
	if e.RuleID == "" {
		return "rule configuration: " + e.Reason
	}
	return fmt.Sprintf("rule configuration: rule %s: %s", e.RuleID, e.Reason)
}

func (e *RuleConfigError) Is(target error) bool {
	return target == ErrRuleConfiguration
}
