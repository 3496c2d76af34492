package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		words   []string
		letters int
	}{
		{"empty", "", []string{}, 0},
		{"blank", "  \t ", []string{}, 0},
		{"simple", "I love you", []string{"I", "love", "you"}, 8},
		{"punctuation", "Hello, world!", []string{"Hello", "world"}, 10},
		{"apostrophe splits", "don't", []string{"don", "t"}, 4},
		{"digits split", "abc123def", []string{"abc", "def"}, 6},
		{"unicode letters", "Ärger über", []string{"Ärger", "über"}, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Parse(tt.text)
			if len(tt.words) == 0 {
				assert.Empty(t, q.Words)
			} else {
				assert.Equal(t, tt.words, q.Words)
			}
			assert.Equal(t, tt.letters, q.Letters)
			assert.Equal(t, tt.letters == 0, q.IsEmpty())
			assert.Equal(t, tt.text, q.Raw)
		})
	}
}

func TestNormalized(t *testing.T) {
	assert.Equal(t, "i love you", Parse("  I, LOVE   you ").Normalized())
}
