package command

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Vocabulary is the set of keywords an utterance is tokenised against.
type Vocabulary struct {
	// Triggers holds built-in verbs and custom action trigger phrases.
	Triggers []string
	// Subjects holds entity and location names.
	Subjects []string
	// Players holds player names.
	Players []string
}

// Tokens are the keywords found in an utterance, lowercased, deduplicated and sorted.
type Tokens struct {
	Triggers []string
	Subjects []string
	Players  []string
}

// Tokenise extracts whole-word, case-insensitive keyword matches from
// utterance. Triggers are matched first, then subjects, then players. Within
// each group longer keywords are tried first and every match is cut out of
// the remaining text, so "cut down" is never also read as "cut".
//
// Postcondition: The result depends only on which keywords occur, not on
// their position or repetition.
func Tokenise(utterance string, vocab Vocabulary) Tokens {
	rest := utterance
	var t Tokens
	t.Triggers, rest = extract(rest, vocab.Triggers)
	t.Subjects, rest = extract(rest, vocab.Subjects)
	t.Players, _ = extract(rest, vocab.Players)
	return t
}

// extract finds every keyword in text and returns them with the text that
// remains once each match is replaced by a space.
func extract(text string, keywords []string) ([]string, string) {
	var found []string
	for _, kw := range byLengthDesc(keywords) {
		re := pattern(kw)
		matched := false
		for {
			loc := re.FindStringSubmatchIndex(text)
			if loc == nil {
				break
			}
			matched = true
			text = text[:loc[2]] + " " + text[loc[3]:]
		}
		if matched {
			found = append(found, kw)
		}
	}
	sort.Strings(found)
	return found, text
}

// byLengthDesc normalises and deduplicates keywords, ordering them longest
// first with ties broken alphabetically.
func byLengthDesc(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.Join(strings.Fields(kw), " "))
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

// maxPatterns caps the matcher cache. Keywords come from the loaded world
// and actions, so the cache is only emptied when content changes a lot.
const maxPatterns = 1024

var patterns = struct {
	sync.Mutex
	m map[string]*regexp.Regexp
}{m: make(map[string]*regexp.Regexp)}

// pattern returns the compiled matcher for kw. Group 1 spans the keyword; the
// surrounding groups assert that it is not part of a longer word.
func pattern(kw string) *regexp.Regexp {
	patterns.Lock()
	defer patterns.Unlock()
	if re, ok := patterns.m[kw]; ok {
		return re
	}
	words := strings.Fields(kw)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	re := regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])(` + strings.Join(words, `\s+`) + `)(?:[^\p{L}\p{N}_]|$)`)
	if len(patterns.m) >= maxPatterns {
		clear(patterns.m)
	}
	patterns.m[kw] = re
	return re
}
