package classify

import (
	"strings"
	"unicode"

	"github.com/spec-kit/service-desk/internal/domain"
)

// Result is the classification outcome for a single message.
type Result struct {
	IsServiceRequest bool
	Priority         domain.OrderPriority
}

// Classifier decides whether free text describes a service request and
// which priority tier it lands in. It is pure and safe for concurrent use.
type Classifier struct {
	rules Ruleset
}

// NewClassifier builds a classifier over the given rule table.
func NewClassifier(rules Ruleset) *Classifier {
	return &Classifier{rules: rules}
}

// Classify evaluates the message. Detection first: any problem or tier
// lexicon hit marks the message as a service request. Priority then
// follows strict precedence: explicit low wins over everything, then
// critical, then high, then the shouting/verbosity heuristics, then
// diagnostic phrasing, defaulting to medium.
func (c *Classifier) Classify(text string) Result {
	lowered := strings.ToLower(text)

	if !c.isServiceRequest(lowered) {
		return Result{IsServiceRequest: false}
	}

	for _, tier := range c.rules.Tiers {
		if containsAny(lowered, tier.Lexicon) {
			return Result{IsServiceRequest: true, Priority: tier.Priority}
		}
	}

	hits := countDistinctHits(lowered, c.rules.Problem)
	long := len(text) > c.rules.LongLength
	if (hits >= 2 && long) || hasShoutRun(text, c.rules.ShoutRun) {
		return Result{IsServiceRequest: true, Priority: domain.OrderPriorityHigh}
	}

	if containsAny(lowered, c.rules.Diagnostic) || long || hits >= 2 {
		return Result{IsServiceRequest: true, Priority: domain.OrderPriorityMedium}
	}

	return Result{IsServiceRequest: true, Priority: domain.OrderPriorityMedium}
}

func (c *Classifier) isServiceRequest(lowered string) bool {
	if containsAny(lowered, c.rules.Problem) {
		return true
	}
	if containsAny(lowered, c.rules.Diagnostic) {
		return true
	}
	for _, tier := range c.rules.Tiers {
		// Low-tier phrases alone ("cuando puedas") do not describe a
		// problem, so they never trigger detection by themselves.
		if tier.Priority == domain.OrderPriorityLow {
			continue
		}
		if containsAny(lowered, tier.Lexicon) {
			return true
		}
	}
	return false
}

func containsAny(lowered string, lexicon []string) bool {
	for _, term := range lexicon {
		if term != "" && strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

func countDistinctHits(lowered string, lexicon []string) int {
	hits := 0
	for _, term := range lexicon {
		if term != "" && strings.Contains(lowered, term) {
			hits++
		}
	}
	return hits
}

func hasShoutRun(text string, runLen int) bool {
	if runLen <= 0 {
		return false
	}
	run := 0
	for _, r := range text {
		if unicode.IsUpper(r) {
			run++
			if run >= runLen {
				return true
			}
			continue
		}
		run = 0
	}
	return false
}
