// Package resolve maps free-text column references onto the real header
// row via weighted-ratio fuzzy matching with a deterministic fallback
// chain.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// DefaultThreshold is the minimum weighted-ratio score for a confident match.
const DefaultThreshold = 60

// ErrNoCandidates means the caller supplied no columns to resolve against.
// That is a caller bug, not bad user input.
var ErrNoCandidates = errors.New("no candidate columns to resolve against")

// NoConfidentMatchError is returned by strict policies when neither the
// scorer nor substring containment produced a plausible column.
type NoConfidentMatchError struct {
	Target string
	Best   string
	Score  int
}

func (e *NoConfidentMatchError) Error() string {
	return fmt.Sprintf("no confident match for column %q (best candidate %q scored %d)", e.Target, e.Best, e.Score)
}

// Policy controls how aggressively an unmatched reference degrades.
//
// The default (non-strict) policy never fails on a non-empty candidate
// set: when both the scorer and substring containment miss, it returns
// the best-scoring candidate anyway. A degraded match beats no match,
// at the documented risk of routing an action to the wrong column when
// the instruction names something unrelated. Strict flips that tradeoff
// and returns NoConfidentMatchError instead.
type Policy struct {
	Threshold int // minimum confident score; <= 0 means DefaultThreshold
	Strict    bool
}

// Resolve maps target to the closest member of candidates.
//
// Tier 1: highest weighted-ratio score, accepted at or above the threshold.
// Tier 2: case-insensitive substring containment in either direction.
// Tier 3: the tier-1 candidate regardless of score (or an error, when strict).
//
// Ties on score resolve to the earliest candidate, so resolution is
// deterministic for a given candidate order.
func (p Policy) Resolve(target string, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoCandidates
	}

	threshold := p.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	best := candidates[0]
	bestScore := fuzzy.WRatio(target, best)
	for _, c := range candidates[1:] {
		if score := fuzzy.WRatio(target, c); score > bestScore {
			best, bestScore = c, score
		}
	}
	if bestScore >= threshold {
		return best, nil
	}

	targetLower := strings.ToLower(target)
	for _, c := range candidates {
		cLower := strings.ToLower(c)
		if strings.Contains(cLower, targetLower) || strings.Contains(targetLower, cLower) {
			return c, nil
		}
	}

	if p.Strict {
		return "", &NoConfidentMatchError{Target: target, Best: best, Score: bestScore}
	}
	return best, nil
}

// Resolve applies the default policy.
func Resolve(target string, candidates []string) (string, error) {
	return Policy{}.Resolve(target, candidates)
}

// ResolveWithThreshold applies the default policy with a custom
// confidence floor.
func ResolveWithThreshold(target string, candidates []string, threshold int) (string, error) {
	return Policy{Threshold: threshold}.Resolve(target, candidates)
}
