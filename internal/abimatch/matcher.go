// Package abimatch binds deployment contract names to ABI names when the two
// do not line up exactly.
package abimatch

import (
	"strings"

	"contractScope/internal/model"
)

const (
	ScoreExact           = 1
	ScoreCaseInsensitive = 2
	ScoreSuffix          = 3
	ScoreSubstring       = 4
)

// FindBestAbiMatch returns the strongest candidate for contractName, or nil
// when nothing matches. Ties on score go to the shorter name, then to the
// lexicographically smaller one.
func FindBestAbiMatch(contractName string, available model.NameSet) *model.AbiMatch {
	if contractName == "" || len(available) == 0 {
		return nil
	}

	lowered := strings.ToLower(contractName)
	var best *model.AbiMatch
	for _, candidate := range available.Sorted() {
		score := scoreCandidate(contractName, lowered, candidate)
		if score == 0 {
			continue
		}
		if best == nil || better(score, candidate, best) {
			best = &model.AbiMatch{AbiName: candidate, Score: score}
		}
	}
	return best
}

func scoreCandidate(name, lowered, candidate string) int {
	if candidate == name {
		return ScoreExact
	}
	candidateLower := strings.ToLower(candidate)
	switch {
	case candidateLower == lowered:
		return ScoreCaseInsensitive
	case strings.HasSuffix(candidateLower, lowered):
		return ScoreSuffix
	case strings.Contains(candidateLower, lowered):
		return ScoreSubstring
	default:
		return 0
	}
}

// better assumes candidates arrive in sorted order, so equal score and length
// keeps the earlier one.
func better(score int, candidate string, current *model.AbiMatch) bool {
	if score != current.Score {
		return score < current.Score
	}
	return len(candidate) < len(current.AbiName)
}
