package cli

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram"
	"github.com/spf13/cobra"
)

func newStatsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dictionary statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := root.engine(cmd.Context(), anagram.Options{})
			if err != nil {
				return err
			}
			stats := engine.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Dictionary:     %s\n", root.dictPath)
			fmt.Fprintf(out, "Version:        %s\n", engine.Version())
			fmt.Fprintf(out, "Words:          %d\n", stats.Words)
			fmt.Fprintf(out, "Profiles:       %d\n", stats.Profiles)
			fmt.Fprintf(out, "Largest bucket: %d\n", stats.LargestBucket)
			return nil
		},
	}
}
