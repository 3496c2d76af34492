package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram/search"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/query/parser"
	"github.com/spf13/cobra"
)

type sentenceOptions struct {
	maxResults    int
	maxWords      int
	maxPartitions int
	workers       int
	asJSON        bool
}

func newSentenceCmd(root *rootOptions) *cobra.Command {
	opts := &sentenceOptions{}
	cmd := &cobra.Command{
		Use:   "sentence <word>...",
		Short: "List every sentence made of the same letters",
		Long: `Print every sentence of dictionary words whose letters are exactly the
letters of the input sentence, one sentence per line. Punctuation and digits
in the input are ignored.`,
		Example: `  anagram sentence I love you
  anagram sentence --max-results 20 --workers 4 "Clint Eastwood"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := parser.Parse(strings.Join(args, " "))
			engine, err := root.engine(cmd.Context(), anagram.Options{
				Limits: search.Limits{
					MaxPartitions: opts.maxPartitions,
					MaxWords:      opts.maxWords,
					Workers:       opts.workers,
				},
				MaxSentences: opts.maxResults,
			})
			if err != nil {
				return err
			}
			answer, err := engine.SentenceAnagrams(cmd.Context(), q.Words)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(answer)
			}
			for _, s := range answer.Sentences {
				fmt.Fprintln(out, strings.Join(s, " "))
			}
			if answer.Truncated {
				fmt.Fprintf(cmd.ErrOrStderr(), "output truncated after %d sentences\n", len(answer.Sentences))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.maxResults, "max-results", "n", 0, "stop after this many sentences (0 = all)")
	flags.IntVar(&opts.maxWords, "max-words", 0, "only sentences with at most this many words (0 = any)")
	flags.IntVar(&opts.maxPartitions, "max-partitions", 0, "stop the search after this many letter partitions (0 = all)")
	flags.IntVarP(&opts.workers, "workers", "w", 1, "search branches in parallel on this many goroutines")
	flags.BoolVar(&opts.asJSON, "json", false, "print the answer as JSON")
	return cmd
}
