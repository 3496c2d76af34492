// Package profile builds canonical letter-frequency profiles for words and
// sentences and implements the multiset arithmetic the anagram search runs
// on: merge, subtract and the subset test.
package profile

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// ErrNotSubset is returned by Subtract when the profile being removed is not
// covered by the profile it is removed from.
var ErrNotSubset = errors.New("profile is not a multiset subset")

// LetterCount is a single (letter, occurrences) pair of a Profile.
type LetterCount struct {
	Letter rune
	Count  int
}

// Profile is a canonical letter-frequency list: letters are unique, counts
// are strictly positive and entries are sorted ascending by letter. The
// empty profile has no entries.
type Profile []LetterCount

// FromWord case-folds word and counts its letters. Every rune counts by
// identity; the caller decides what is a letter.
func FromWord(word string) Profile {
	counts := make(map[rune]int, len(word))
	for _, r := range word {
		counts[unicode.ToLower(r)]++
	}
	return fromCounts(counts)
}

// FromSentence returns the merged profile of every word in sentence.
func FromSentence(sentence []string) Profile {
	profiles := make([]Profile, 0, len(sentence))
	for _, w := range sentence {
		profiles = append(profiles, FromWord(w))
	}
	return Merge(profiles...)
}

// Merge sums the counts of all profiles letter by letter.
func Merge(profiles ...Profile) Profile {
	switch len(profiles) {
	case 0:
		return nil
	case 1:
		return profiles[0].clone()
	}
	counts := make(map[rune]int)
	for _, p := range profiles {
		for _, lc := range p {
			counts[lc.Letter] += lc.Count
		}
	}
	return fromCounts(counts)
}

// Subtract removes y from x. y must be a multiset subset of x; otherwise an
// error wrapping ErrNotSubset is returned and x is left untouched. Letters
// whose count drops to zero are removed.
func Subtract(x, y Profile) (Profile, error) {
	out := make(Profile, 0, len(x))
	j := 0
	for _, lc := range x {
		if j < len(y) && y[j].Letter < lc.Letter {
			return nil, fmt.Errorf("%w: letter %q absent", ErrNotSubset, y[j].Letter)
		}
		if j < len(y) && y[j].Letter == lc.Letter {
			need := y[j].Count
			remaining := lc.Count - need
			j++
			if remaining < 0 {
				return nil, fmt.Errorf("%w: letter %q needs %d, has %d", ErrNotSubset, lc.Letter, need, lc.Count)
			}
			if remaining == 0 {
				continue
			}
			out = append(out, LetterCount{Letter: lc.Letter, Count: remaining})
			continue
		}
		out = append(out, lc)
	}
	if j < len(y) {
		return nil, fmt.Errorf("%w: letter %q absent", ErrNotSubset, y[j].Letter)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// Contains reports whether every letter of y occurs in x at least as often,
// i.e. whether y can be fully covered by x.
func Contains(x, y Profile) bool {
	if len(y) > len(x) {
		return false
	}
	i := 0
	for _, want := range y {
		for i < len(x) && x[i].Letter < want.Letter {
			i++
		}
		if i == len(x) || x[i].Letter != want.Letter || x[i].Count < want.Count {
			return false
		}
		i++
	}
	return true
}

// Equal reports whether x and y describe the same multiset.
func Equal(x, y Profile) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// IsEmpty reports whether p has no letters.
func (p Profile) IsEmpty() bool {
	return len(p) == 0
}

// Total returns the number of letters in p, counting repeats.
func (p Profile) Total() int {
	n := 0
	for _, lc := range p {
		n += lc.Count
	}
	return n
}

// Key encodes p as a string usable as a map key. Each entry is written as
// the letter, its decimal count and a ';' terminator; the first rune of an
// entry is always the letter, so the encoding is unambiguous.
func (p Profile) Key() string {
	var b strings.Builder
	b.Grow(len(p) * 3)
	for _, lc := range p {
		b.WriteRune(lc.Letter)
		b.WriteString(strconv.Itoa(lc.Count))
		b.WriteByte(';')
	}
	return b.String()
}

func (p Profile) String() string {
	parts := make([]string, 0, len(p))
	for _, lc := range p {
		parts = append(parts, fmt.Sprintf("%c:%d", lc.Letter, lc.Count))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (p Profile) clone() Profile {
	if len(p) == 0 {
		return nil
	}
	out := make(Profile, len(p))
	copy(out, p)
	return out
}

func fromCounts(counts map[rune]int) Profile {
	if len(counts) == 0 {
		return nil
	}
	out := make(Profile, 0, len(counts))
	for letter, n := range counts {
		if n > 0 {
			out = append(out, LetterCount{Letter: letter, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Letter < out[j].Letter
	})
	if len(out) == 0 {
		return nil
	}
	return out
}
