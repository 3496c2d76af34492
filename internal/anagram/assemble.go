package anagram

import (
	"iter"

	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram/index"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram/search"
)

// Expand yields the concrete sentences of a partition: one word per profile,
// every combination, word order following the partition. Sentences are
// built as the caller pulls them, so stopping early never materializes the
// rest of the product. A profile with no dictionary words yields nothing.
func Expand(idx *index.Index, partition search.Partition) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		choices := make([][]string, len(partition))
		for i, p := range partition {
			choices[i] = idx.WordsWithProfile(p)
			if len(choices[i]) == 0 {
				return
			}
		}

		picks := make([]int, len(partition))
		for {
			sentence := make([]string, len(partition))
			for i, k := range picks {
				sentence[i] = choices[i][k]
			}
			if !yield(sentence) {
				return
			}

			// Advance the rightmost position that still has words left.
			pos := len(picks) - 1
			for pos >= 0 {
				picks[pos]++
				if picks[pos] < len(choices[pos]) {
					break
				}
				picks[pos] = 0
				pos--
			}
			if pos < 0 {
				return
			}
		}
	}
}
