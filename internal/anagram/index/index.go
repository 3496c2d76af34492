// Package index groups dictionary words by their letter profile. An Index
// is built once from the full word list and is read-only afterwards, so it
// can be shared by any number of concurrent queries without locking.
package index

import (
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram/profile"
)

// Bucket is the set of dictionary words that share one profile.
type Bucket struct {
	Profile profile.Profile
	Words   []string
	// Ordinal is the position of the profile's first word among all
	// distinct profiles, in dictionary order.
	Ordinal int
}

// Stats summarises an Index.
type Stats struct {
	Words         int `json:"words"`
	Profiles      int `json:"profiles"`
	LargestBucket int `json:"largest_bucket"`
}

type Index struct {
	buckets map[string]*Bucket
	ordered []*Bucket
	words   int
}

// Build groups words by profile, keeping dictionary order inside each
// bucket. Repeated spellings are stored once and words with an empty
// profile are skipped.
func Build(words []string) *Index {
	idx := &Index{
		buckets: make(map[string]*Bucket),
	}
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		p := profile.FromWord(w)
		if p.IsEmpty() {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}

		key := p.Key()
		b, exists := idx.buckets[key]
		if !exists {
			b = &Bucket{
				Profile: p,
				Ordinal: len(idx.ordered),
			}
			idx.buckets[key] = b
			idx.ordered = append(idx.ordered, b)
		}
		b.Words = append(b.Words, w)
		idx.words++
	}
	return idx
}

// WordsWithProfile returns the dictionary words whose profile is exactly p.
// The result is a fresh slice and is empty when no word matches.
func (idx *Index) WordsWithProfile(p profile.Profile) []string {
	b, ok := idx.buckets[p.Key()]
	if !ok {
		return []string{}
	}
	out := make([]string, len(b.Words))
	copy(out, b.Words)
	return out
}

// WordAnagramsOf returns every dictionary word built from the same letters
// as word, including word itself when it is in the dictionary.
func (idx *Index) WordAnagramsOf(word string) []string {
	return idx.WordsWithProfile(profile.FromWord(word))
}

// Has reports whether at least one dictionary word has profile p.
func (idx *Index) Has(p profile.Profile) bool {
	_, ok := idx.buckets[p.Key()]
	return ok
}

// Universe returns the dictionary-backed sub-profiles of target ordered by
// bucket ordinal. It either enumerates the sub-profiles of target and looks
// each one up, or scans every bucket with a subset test, whichever touches
// fewer candidates; both produce the same slice.
func (idx *Index) Universe(target profile.Profile) []profile.Profile {
	if target.IsEmpty() {
		return nil
	}
	var hits []*Bucket
	if profile.CountSubProfiles(target) <= len(idx.ordered) {
		hits = idx.universeByEnumeration(target)
	} else {
		hits = idx.universeByScan(target)
	}
	out := make([]profile.Profile, len(hits))
	for i, b := range hits {
		out[i] = b.Profile
	}
	return out
}

func (idx *Index) universeByEnumeration(target profile.Profile) []*Bucket {
	marks := make([]bool, len(idx.ordered))
	found := 0
	for _, sub := range profile.SubProfiles(target) {
		if b, ok := idx.buckets[sub.Key()]; ok {
			marks[b.Ordinal] = true
			found++
		}
	}
	hits := make([]*Bucket, 0, found)
	for i, marked := range marks {
		if marked {
			hits = append(hits, idx.ordered[i])
		}
	}
	return hits
}

func (idx *Index) universeByScan(target profile.Profile) []*Bucket {
	hits := make([]*Bucket, 0)
	for _, b := range idx.ordered {
		if profile.Contains(target, b.Profile) {
			hits = append(hits, b)
		}
	}
	return hits
}

// Buckets returns every bucket in ordinal order. Callers must not modify
// the returned buckets.
func (idx *Index) Buckets() []*Bucket {
	out := make([]*Bucket, len(idx.ordered))
	copy(out, idx.ordered)
	return out
}

func (idx *Index) Stats() Stats {
	s := Stats{
		Words:    idx.words,
		Profiles: len(idx.ordered),
	}
	for _, b := range idx.ordered {
		if len(b.Words) > s.LargestBucket {
			s.LargestBucket = len(b.Words)
		}
	}
	return s
}
