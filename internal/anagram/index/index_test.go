package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram/profile"
)

var sampleDictionary = []string{
	"Linux", "rulez", "I", "love", "you", "olive", "Ylo", "eat", "ate", "tea",
	"Yes", "man", "my", "en", "as", "sane", "lard", "dart", "ye",
}

func TestBuildGroupsByProfile(t *testing.T) {
	idx := Build(sampleDictionary)
	assert.Equal(t, []string{"eat", "ate", "tea"}, idx.WordsWithProfile(profile.FromWord("eat")))
	assert.Equal(t, []string{"love"}, idx.WordsWithProfile(profile.FromWord("vole")))
	assert.Equal(t, []string{"you"}, idx.WordsWithProfile(profile.FromWord("uoy")))
	assert.Equal(t, []string{"Ylo"}, idx.WordsWithProfile(profile.FromWord("loy")))
}

func TestBuildDropsDuplicatesAndEmptyWords(t *testing.T) {
	idx := Build([]string{"tea", "", "eat", "tea", "Tea"})
	assert.Equal(t, []string{"tea", "eat", "Tea"}, idx.WordsWithProfile(profile.FromWord("ate")))
	assert.Equal(t, Stats{Words: 3, Profiles: 1, LargestBucket: 3}, idx.Stats())
}

func TestWordAnagramsOf(t *testing.T) {
	idx := Build(sampleDictionary)
	assert.ElementsMatch(t, []string{"eat", "ate", "tea"}, idx.WordAnagramsOf("eat"))
	assert.ElementsMatch(t, []string{"eat", "ate", "tea"}, idx.WordAnagramsOf("TAE"))
	assert.Equal(t, []string{"lard"}, idx.WordAnagramsOf("lard"))

	missing := idx.WordAnagramsOf("xyz")
	require.NotNil(t, missing)
	assert.Empty(t, missing)
}

func TestWordsWithProfileReturnsCopy(t *testing.T) {
	idx := Build(sampleDictionary)
	got := idx.WordsWithProfile(profile.FromWord("eat"))
	got[0] = "mutated"
	assert.Equal(t, "eat", idx.WordsWithProfile(profile.FromWord("eat"))[0])
}

func TestUniverseRoutesAgree(t *testing.T) {
	idx := Build(sampleDictionary)
	targets := [][]string{
		{"I", "love", "you"},
		{"Yes", "man"},
		{"Linux", "rulez"},
		{"eat"},
	}
	for _, sentence := range targets {
		target := profile.FromSentence(sentence)
		byEnum := idx.universeByEnumeration(target)
		byScan := idx.universeByScan(target)
		assert.Equal(t, byScan, byEnum, "sentence %v", sentence)
		for i := 1; i < len(byScan); i++ {
			assert.Less(t, byScan[i-1].Ordinal, byScan[i].Ordinal)
		}
	}
}

func TestUniverseContents(t *testing.T) {
	idx := Build(sampleDictionary)
	target := profile.FromSentence([]string{"I", "love", "you"})
	universe := idx.Universe(target)

	keys := make([]string, 0, len(universe))
	for _, p := range universe {
		assert.True(t, profile.Contains(target, p))
		assert.True(t, idx.Has(p))
		keys = append(keys, p.Key())
	}
	assert.Equal(t, []string{
		profile.FromWord("I").Key(),
		profile.FromWord("love").Key(),
		profile.FromWord("you").Key(),
		profile.FromWord("olive").Key(),
		profile.FromWord("Ylo").Key(),
		profile.FromWord("ye").Key(),
	}, keys)

	assert.Empty(t, idx.Universe(nil))
}

func TestEmptyDictionary(t *testing.T) {
	idx := Build(nil)
	assert.Empty(t, idx.Universe(profile.FromWord("abc")))
	assert.Empty(t, idx.WordAnagramsOf("abc"))
	assert.Equal(t, Stats{}, idx.Stats())
}
