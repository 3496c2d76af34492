package anagram

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram/index"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram/profile"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram/search"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/tracing"
)

var loveDictionary = []string{"I", "love", "you", "You", "olive", "Ylo", "eat", "ate", "tea"}

var largerDictionary = []string{
	"Linux", "rulez", "Rex", "Lin", "Zulu", "nulls", "null", "Uzi", "lex", "Linus",
	"I", "love", "you", "olive", "Ylo", "en", "as", "yes", "man", "my", "sane",
	"Yes", "ye", "men", "say", "may", "nay", "any", "sea", "Sam", "amen", "mane",
	"name", "mean", "yam", "Mays", "Sy", "ma", "me", "a", "Amy",
}

func TestSentenceAnagramsEmptySentence(t *testing.T) {
	e := New(loveDictionary, Options{})
	for _, sentence := range [][]string{nil, {}, {""}} {
		ans, err := e.SentenceAnagrams(context.Background(), sentence)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{}}, ans.Sentences)
	}
}

func TestSentenceAnagramsILoveYou(t *testing.T) {
	e := New(loveDictionary, Options{})
	ans, err := e.SentenceAnagrams(context.Background(), []string{"I", "love", "you"})
	require.NoError(t, err)

	assert.Contains(t, ans.Sentences, []string{"I", "love", "you"})
	assert.Contains(t, ans.Sentences, []string{"You", "olive"})
	assert.Contains(t, ans.Sentences, []string{"olive", "you"})
	assert.Contains(t, ans.Sentences, []string{"you", "olive"})
	assert.Len(t, ans.Sentences, 16)
	assert.Equal(t, 8, ans.Partitions)
	assert.False(t, ans.Truncated)

	dict := make(map[string]struct{}, len(loveDictionary))
	for _, w := range loveDictionary {
		dict[w] = struct{}{}
	}
	for _, s := range ans.Sentences {
		for _, w := range s {
			_, ok := dict[w]
			assert.True(t, ok, "word %q not in dictionary", w)
		}
	}
}

func TestSentenceAnagramsProperties(t *testing.T) {
	e := New(largerDictionary, Options{})
	sentences := [][]string{
		{"Linux", "rulez"},
		{"Yes", "man"},
		{"I", "love", "you"},
	}
	for _, sentence := range sentences {
		t.Run(strings.Join(sentence, " "), func(t *testing.T) {
			ans, err := e.SentenceAnagrams(context.Background(), sentence)
			require.NoError(t, err)

			target := profile.FromSentence(sentence)
			seen := make(map[string]struct{}, len(ans.Sentences))
			for _, s := range ans.Sentences {
				assert.True(t, profile.Equal(target, profile.FromSentence(s)), "sentence %v", s)
				key := strings.Join(s, " ")
				_, dup := seen[key]
				assert.False(t, dup, "duplicate sentence %q", key)
				seen[key] = struct{}{}
			}
			assert.Contains(t, ans.Sentences, sentence, "a sentence of dictionary words is its own anagram")
		})
	}
}

func TestSentenceAnagramsParallelAgrees(t *testing.T) {
	seq := New(largerDictionary, Options{})
	par := New(largerDictionary, Options{Limits: search.Limits{Workers: 4}})
	sentence := []string{"Yes", "man"}

	want, err := seq.SentenceAnagrams(context.Background(), sentence)
	require.NoError(t, err)
	got, err := par.SentenceAnagrams(context.Background(), sentence)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSentenceAnagramsNoResult(t *testing.T) {
	e := New(loveDictionary, Options{})
	ans, err := e.SentenceAnagrams(context.Background(), []string{"xyzzy"})
	require.NoError(t, err)
	assert.Empty(t, ans.Sentences)
	assert.Zero(t, ans.Partitions)
}

func TestSentenceAnagramsMaxSentences(t *testing.T) {
	e := New(loveDictionary, Options{MaxSentences: 3})
	ans, err := e.SentenceAnagrams(context.Background(), []string{"I", "love", "you"})
	require.NoError(t, err)
	assert.Len(t, ans.Sentences, 3)
	assert.True(t, ans.Truncated)
	assert.Equal(t, [][]string{
		{"I", "love", "you"},
		{"I", "love", "You"},
		{"I", "you", "love"},
	}, ans.Sentences)
}

func TestSentenceAnagramsMaxSentencesStopsExpanding(t *testing.T) {
	// Ten spellings of one profile: six copies of the query expand to a
	// million sentences if the product is built up front.
	words := []string{"tea", "eat", "ate", "eta", "Tea", "Eat", "Ate", "Eta", "TEA", "EAT"}
	e := New(words, Options{MaxSentences: 5})
	query := []string{"tea", "tea", "tea", "tea", "tea", "tea"}

	var ans *Answer
	allocs := testing.AllocsPerRun(1, func() {
		var err error
		ans, err = e.SentenceAnagrams(context.Background(), query)
		require.NoError(t, err)
	})
	assert.Len(t, ans.Sentences, 5)
	assert.True(t, ans.Truncated)
	assert.Equal(t, 1, ans.Partitions)
	assert.Less(t, allocs, float64(10_000))
}

func TestSentenceAnagramsSearchSpan(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := New(loveDictionary, Options{})

	ctx, root := tracing.Start(context.Background(), "sentence")
	_, err := e.SentenceAnagrams(ctx, []string{"I", "love", "you"})
	require.NoError(t, err)
	root.End()
	root.Log(ctx, log, slog.LevelDebug)

	spans := map[string]map[string]any{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		spans[rec["span"].(string)] = rec
	}
	require.Contains(t, spans, "search")
	assert.Contains(t, spans["search"], "visited")
	assert.Positive(t, spans["search"]["partitions"])
	assert.Contains(t, spans["universe"], "profiles")
	assert.Contains(t, spans["expand"], "sentences")
}

func TestSentenceAnagramsCancelled(t *testing.T) {
	e := New(largerDictionary, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.SentenceAnagrams(ctx, []string{"Yes", "man"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWordAnagramsOf(t *testing.T) {
	e := New(loveDictionary, Options{})
	assert.ElementsMatch(t, []string{"eat", "ate", "tea"}, e.WordAnagramsOf("eat"))
	assert.ElementsMatch(t, []string{"you", "You"}, e.WordAnagramsOf("YOU"))
	assert.Empty(t, e.WordAnagramsOf("xyz"))
}

func TestExpand(t *testing.T) {
	idx := index.Build(loveDictionary)
	p := search.Partition{profile.FromWord("you"), profile.FromWord("tea")}
	assert.Equal(t, [][]string{
		{"you", "eat"}, {"you", "ate"}, {"you", "tea"},
		{"You", "eat"}, {"You", "ate"}, {"You", "tea"},
	}, slices.Collect(Expand(idx, p)))

	assert.Equal(t, [][]string{{}}, slices.Collect(Expand(idx, search.Partition{})))

	missing := search.Partition{profile.FromWord("you"), profile.FromWord("zzz")}
	assert.Empty(t, slices.Collect(Expand(idx, missing)))

	var pulled int
	for range Expand(idx, p) {
		pulled++
		if pulled == 2 {
			break
		}
	}
	assert.Equal(t, 2, pulled)
}

func TestVersionTracksDictionary(t *testing.T) {
	a := New(loveDictionary, Options{})
	b := New(loveDictionary, Options{})
	c := New(largerDictionary, Options{})
	assert.Equal(t, a.Version(), b.Version())
	assert.NotEqual(t, a.Version(), c.Version())
}

func TestHolderSwap(t *testing.T) {
	first := New([]string{"tea"}, Options{})
	h := NewHolder(first)
	assert.Equal(t, []string{"tea"}, h.Load().WordAnagramsOf("eat"))

	second := New([]string{"tea", "eat"}, Options{})
	old := h.Swap(second)
	assert.Same(t, first, old)
	assert.Equal(t, []string{"tea", "eat"}, h.Load().WordAnagramsOf("ate"))
	assert.Nil(t, NewHolder(nil).Load())
}
