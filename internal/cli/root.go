// Package cli implements the anagram command-line tool.
package cli

import (
	"context"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/dictionary"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/logger"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	dictPath string
	logLevel string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "anagram",
		Short: "Find word and sentence anagrams in a dictionary",
		Long: `anagram finds every dictionary word made of the same letters as a word,
and every sentence of dictionary words whose letters are a permutation of
the letters of an input sentence. Case is ignored.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetupWriter(cmd.ErrOrStderr(), opts.logLevel, "text")
		},
	}

	root.PersistentFlags().StringVarP(&opts.dictPath, "dict", "d", "data/words.txt", "word file, one word per line")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newWordsCmd(opts),
		newSentenceCmd(opts),
		newStatsCmd(opts),
		newImportCmd(),
	)
	return root
}

// Execute runs the tool with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (o *rootOptions) engine(ctx context.Context, engineOpts anagram.Options) (*anagram.Engine, error) {
	words, err := dictionary.FileProvider{Path: o.dictPath}.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("%s: %w", o.dictPath, dictionary.ErrEmpty)
	}
	return anagram.New(words, engineOpts), nil
}
