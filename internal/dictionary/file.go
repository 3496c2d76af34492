package dictionary

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/resilience"
)

// FileProvider reads one word per line from Path.
type FileProvider struct {
	Path string
}

func (f FileProvider) Name() string { return "file:" + f.Path }

func (f FileProvider) Load(ctx context.Context) ([]string, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, resilience.Permanent(fmt.Errorf("opening word file: %w", err))
		}
		return nil, fmt.Errorf("opening word file: %w", err)
	}
	defer file.Close()
	return ReadWords(ctx, file)
}

// ReadWords reads one word per line. Surrounding whitespace is trimmed;
// blank lines and lines starting with '#' are skipped, as are words that
// are not Queryable. Words keep their file order and case.
func ReadWords(ctx context.Context, r io.Reader) ([]string, error) {
	var (
		words   []string
		skipped int
	)
	scanner := bufio.NewScanner(r)
	for line := 0; scanner.Scan(); line++ {
		if line%4096 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		word := strings.TrimSpace(scanner.Text())
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		if !Queryable(word) {
			skipped++
			continue
		}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading words: %w", err)
	}
	if skipped > 0 {
		slog.Warn("skipped words with non-letter characters", "skipped", skipped)
	}
	return words, nil
}
