package command

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// suggestThreshold is the minimum Jaro-Winkler similarity for a suggestion.
const suggestThreshold = 0.85

// Suggest returns the candidate most similar to any word of utterance, for
// "did you mean" hints on unrecognised commands.
//
// Postcondition: Returns ("", false) when no candidate scores at least suggestThreshold.
func Suggest(utterance string, candidates []string) (string, bool) {
	var best string
	var bestScore float64
	for _, word := range strings.Fields(strings.ToLower(utterance)) {
		for _, c := range candidates {
			c = strings.ToLower(c)
			if strings.Contains(c, " ") {
				continue
			}
			if score := matchr.JaroWinkler(word, c, false); score > bestScore {
				best, bestScore = c, score
			}
		}
	}
	if bestScore < suggestThreshold {
		return "", false
	}
	return best, true
}
