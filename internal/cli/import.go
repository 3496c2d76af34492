package cli

import (
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/dictionary"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/postgres"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "import <word-file>",
		Short: "Load a word file into the PostgreSQL dictionary table",
		Long: `Replace the contents of the configured dictionary table with the words of
a word file. When Kafka brokers are configured, a dictionary update notice is
published so running services reload.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			source := dictionary.FileProvider{Path: args[0]}
			words, err := source.Load(ctx)
			if err != nil {
				return err
			}
			if len(words) == 0 {
				return fmt.Errorf("%s: %w", args[0], dictionary.ErrEmpty)
			}

			client, err := postgres.New(ctx, cfg.Postgres)
			if err != nil {
				return err
			}
			defer client.Close()

			store, err := dictionary.NewPostgresProvider(client, cfg.Dictionary.Table)
			if err != nil {
				return err
			}
			if err := store.EnsureSchema(ctx); err != nil {
				return err
			}
			if err := store.Replace(ctx, words); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d words into %s\n", len(words), store.Name())

			if !cfg.Kafka.Enabled() {
				return nil
			}
			producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.DictionaryUpdates)
			defer producer.Close()
			notice := dictionary.Notice{
				Source:    store.Name(),
				Words:     len(words),
				Reason:    "import of " + args[0],
				Timestamp: time.Now().UTC(),
			}
			if err := producer.Publish(ctx, kafka.Event{Key: store.Name(), Value: notice}); err != nil {
				return fmt.Errorf("announcing dictionary update: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "announced update on %s\n", cfg.Kafka.Topics.DictionaryUpdates)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "configs/development.yaml", "service config file with the postgres and kafka settings")
	return cmd
}
