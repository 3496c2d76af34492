// Package parser turns free query text into the word list handed to the
// anagram engine.
package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type Query struct {
	Raw   string
	Words []string
	// Letters is the number of letters across Words.
	Letters int
}

// Parse splits text into words at every non-letter rune. Case is kept; the
// engine folds it.
func Parse(text string) *Query {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	q := &Query{Raw: text, Words: words}
	for _, w := range words {
		q.Letters += utf8.RuneCountInString(w)
	}
	return q
}

// IsEmpty reports whether the query holds no letters.
func (q *Query) IsEmpty() bool {
	return q.Letters == 0
}

// Normalized is the lower-cased words joined by single spaces.
func (q *Query) Normalized() string {
	return strings.ToLower(strings.Join(q.Words, " "))
}
