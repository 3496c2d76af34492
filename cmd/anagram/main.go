// Command anagram finds word and sentence anagrams from the command line.
//
// Usage:
//
//	anagram [-d words.txt] words <word>...
//	anagram [-d words.txt] sentence [--max-results N] [--max-words N] [--workers N] <word>...
//	anagram [-d words.txt] stats
//	anagram import [-c config.yaml] <word-file>
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
