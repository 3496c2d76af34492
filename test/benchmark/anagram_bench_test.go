// Package benchmark contains Go benchmarks for the anagram pipeline: letter
// profiles, dictionary indexing, partition search and full sentence queries.
package benchmark

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram/index"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram/profile"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram/search"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/query/parser"
)

var dictionary = strings.Fields(`
	a act actor age ago air an and ant any are arm art as at ate
	bat be bear bed bee beer best bet bid bird bit boat but by
	cat coat cold come cost dare date dear den dog done door dot
	ear east eat edit else end era eta
	gate get goat god gold golden got
	hat hate hear heart heat her here hero horse hot
	I in is it its
	late lead leaf least let lie line lion listen live lives love
	mate meat men mode more most
	near neat net no nod nor not note now
	oat of old olive on one or orange other our out
	pale peal plate pleat
	race rat read real rest rose sat sea seat set silent slate stale star steal
	tale tan tar tea tear ten the them then there these tin to toe tone
	veil vile you your yours
`)

// BenchmarkFromWord measures letter profile construction for words of
// increasing length.
func BenchmarkFromWord(b *testing.B) {
	for _, word := range []string{"tea", "listen", "international", "Pneumonoultramicroscopicsilicovolcanoconiosis"} {
		b.Run(fmt.Sprintf("len_%d", len(word)), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = profile.FromWord(word)
			}
		})
	}
}

// BenchmarkSubProfiles measures exhaustive sub-profile enumeration.
func BenchmarkSubProfiles(b *testing.B) {
	for _, sentence := range []string{"tea", "I love you", "the golden heart"} {
		p := profile.FromSentence(strings.Fields(sentence))
		b.Run(strings.ReplaceAll(sentence, " ", "_"), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = profile.SubProfiles(p)
			}
		})
	}
}

// BenchmarkIndexBuild measures dictionary indexing throughput.
func BenchmarkIndexBuild(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = index.Build(dictionary)
	}
}

// BenchmarkUniverse measures dictionary-backed sub-profile selection.
func BenchmarkUniverse(b *testing.B) {
	idx := index.Build(dictionary)
	for _, sentence := range []string{"tea", "I love you", "the golden heart", "a stolen orange tree"} {
		target := profile.FromSentence(strings.Fields(sentence))
		b.Run(strings.ReplaceAll(sentence, " ", "_"), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = idx.Universe(target)
			}
		})
	}
}

// BenchmarkFind compares sequential and parallel partition search.
func BenchmarkFind(b *testing.B) {
	idx := index.Build(dictionary)
	target := profile.FromSentence([]string{"the", "golden", "heart"})
	universe := idx.Universe(target)
	ctx := context.Background()

	for _, workers := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := search.Find(ctx, universe, target, search.Limits{Workers: workers}); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkSentenceAnagrams measures the full query path including sentence
// assembly.
func BenchmarkSentenceAnagrams(b *testing.B) {
	ctx := context.Background()
	queries := []string{"I love you", "silent night", "the golden heart"}
	for _, limit := range []int{0, 100} {
		engine := anagram.New(dictionary, anagram.Options{MaxSentences: limit})
		for _, q := range queries {
			words := strings.Fields(q)
			b.Run(fmt.Sprintf("limit_%d/%s", limit, strings.ReplaceAll(q, " ", "_")), func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					if _, err := engine.SentenceAnagrams(ctx, words); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

// BenchmarkQueryParse measures free-text query splitting.
func BenchmarkQueryParse(b *testing.B) {
	for _, q := range []string{"tea", "I love you!", "Eleven plus two, twelve plus one: an anagram."} {
		b.Run(fmt.Sprintf("len_%d", len(q)), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = parser.Parse(q)
			}
		})
	}
}
