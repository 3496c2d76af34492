package cli

import (
	"fmt"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram"
	"github.com/spf13/cobra"
)

func newWordsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "words <word>...",
		Short: "List the dictionary anagrams of each word",
		Example: `  anagram words tea
  anagram -d /usr/share/dict/words words listen silent`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := root.engine(cmd.Context(), anagram.Options{})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, word := range args {
				anagrams := engine.WordAnagramsOf(word)
				fmt.Fprintf(out, "%s: %s\n", word, strings.Join(anagrams, " "))
			}
			return nil
		},
	}
}
