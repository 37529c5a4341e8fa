package command

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

var testVocab = Vocabulary{
	Triggers: []string{"get", "look", "chop", "cut", "cut down", "open", "unlock"},
	Subjects: []string{"tree", "axe", "trapdoor", "key", "cabin", "forest"},
	Players:  []string{"simon", "sion", "mary jane"},
}

func TestTokenise_FreeForm(t *testing.T) {
	got := Tokenise("kindly please chop down the Tree with my AXE", testVocab)
	assert.Equal(t, []string{"chop"}, got.Triggers)
	assert.Equal(t, []string{"axe", "tree"}, got.Subjects)
	assert.Empty(t, got.Players)
}

func TestTokenise_MultiWordTriggerWinsOverPrefix(t *testing.T) {
	got := Tokenise("cut down the tree", testVocab)
	assert.Equal(t, []string{"cut down"}, got.Triggers)

	got = Tokenise("cut   DOWN tree", testVocab)
	assert.Equal(t, []string{"cut down"}, got.Triggers)

	got = Tokenise("cut the tree down", testVocab)
	assert.Equal(t, []string{"cut"}, got.Triggers)
}

func TestTokenise_WholeWordsOnly(t *testing.T) {
	got := Tokenise("getaway keys to the cabinet", testVocab)
	assert.Empty(t, got.Triggers)
	assert.Empty(t, got.Subjects)
}

func TestTokenise_PunctuationIsABoundary(t *testing.T) {
	got := Tokenise("open, the trapdoor!", testVocab)
	assert.Equal(t, []string{"open"}, got.Triggers)
	assert.Equal(t, []string{"trapdoor"}, got.Subjects)
}

func TestTokenise_DuplicatesCollapse(t *testing.T) {
	got := Tokenise("get key key KEY get", testVocab)
	assert.Equal(t, []string{"get"}, got.Triggers)
	assert.Equal(t, []string{"key"}, got.Subjects)
}

func TestTokenise_Players(t *testing.T) {
	got := Tokenise("get axe from Mary Jane and sion", testVocab)
	assert.Equal(t, []string{"mary jane", "sion"}, got.Players)
}

func TestTokenise_MatchedTriggerNotReadAsSubject(t *testing.T) {
	v := Vocabulary{Triggers: []string{"drink"}, Subjects: []string{"drink", "potion"}}
	got := Tokenise("drink potion", v)
	assert.Equal(t, []string{"drink"}, got.Triggers)
	assert.Equal(t, []string{"potion"}, got.Subjects)
}

func TestTokenise_PositionFree(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		words := rapid.SliceOfN(rapid.SampledFrom([]string{
			"chop", "tree", "axe", "the", "with", "simon", "open", "please", "key",
		}), 1, 8).Draw(rt, "words")
		perm := rapid.Permutation(words).Draw(rt, "perm")

		a := Tokenise(strings.Join(words, " "), testVocab)
		b := Tokenise(strings.Join(perm, " "), testVocab)
		assert.Equal(rt, a, b)

		again := Tokenise(strings.Join(append(words, words...), " "), testVocab)
		assert.Equal(rt, a, again)
	})
}

func TestPattern_CacheStaysBounded(t *testing.T) {
	for n := 0; n < 3*maxPatterns; n++ {
		re := pattern(fmt.Sprintf("word%d", n))
		assert.True(t, re.MatchString(fmt.Sprintf("say word%d now", n)))
		patterns.Lock()
		size := len(patterns.m)
		patterns.Unlock()
		assert.LessOrEqual(t, size, maxPatterns)
	}
	assert.Same(t, pattern("tree"), pattern("tree"))
}
