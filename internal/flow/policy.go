package flow

import (
	"unicode/utf8"

	"github.com/allisson/activation/internal/validation"
)

// MinPasswordLength is the minimum rune count accepted by the length rule.
// The server enforces the same policy on the create-password call.
const MinPasswordLength = 8

// RuleID names one password policy rule.
type RuleID string

const (
	RuleLength    RuleID = "length"
	RuleUppercase RuleID = "uppercase"
	RuleLowercase RuleID = "lowercase"
	RuleNumber    RuleID = "number"
)

// RuleIDs lists the policy rules in display order.
var RuleIDs = []RuleID{RuleLength, RuleUppercase, RuleLowercase, RuleNumber}

// RuleResult is the tri-state outcome of one rule.
type RuleResult int

const (
	// RuleIndeterminate means the field has not been touched yet, so the rule
	// reports neither pass nor fail.
	RuleIndeterminate RuleResult = iota
	// RulePass means the candidate satisfies the rule.
	RulePass
	// RuleFail means the candidate violates the rule.
	RuleFail
)

// Evaluation is the per-rule and aggregate outcome for one candidate.
// AllPass is false while the field is untouched, even for a passing candidate,
// so an untouched form never enables submission.
type Evaluation struct {
	Rules   map[RuleID]RuleResult
	AllPass bool
}

// Evaluate classifies a candidate password against the fixed rule set. Pure
// and synchronous; safe to call on every keystroke. Before the field is
// touched every rule is indeterminate.
func Evaluate(candidate string, touched bool) Evaluation {
	if !touched {
		rules := make(map[RuleID]RuleResult, len(RuleIDs))
		for _, id := range RuleIDs {
			rules[id] = RuleIndeterminate
		}
		return Evaluation{Rules: rules}
	}

	rules := map[RuleID]RuleResult{
		RuleLength:    ruleResult(utf8.RuneCountInString(candidate) >= MinPasswordLength),
		RuleUppercase: ruleResult(validation.ContainsUppercase(candidate)),
		RuleLowercase: ruleResult(validation.ContainsLowercase(candidate)),
		RuleNumber:    ruleResult(validation.ContainsNumber(candidate)),
	}

	allPass := true
	for _, result := range rules {
		if result != RulePass {
			allPass = false
			break
		}
	}

	return Evaluation{Rules: rules, AllPass: allPass}
}

func ruleResult(pass bool) RuleResult {
	if pass {
		return RulePass
	}
	return RuleFail
}
