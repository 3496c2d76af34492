package dictionary

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/postgres"
	"github.com/lib/pq"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PostgresProvider reads words from a table with columns
// (position BIGINT, word TEXT).
type PostgresProvider struct {
	client *postgres.Client
	schema string
	table  string
}

// NewPostgresProvider validates table, which may be schema-qualified.
func NewPostgresProvider(client *postgres.Client, table string) (*PostgresProvider, error) {
	schema, name, err := splitTable(table)
	if err != nil {
		return nil, err
	}
	return &PostgresProvider{client: client, schema: schema, table: name}, nil
}

func splitTable(table string) (schema, name string, err error) {
	parts := strings.Split(table, ".")
	switch len(parts) {
	case 1:
		name = parts[0]
	case 2:
		schema, name = parts[0], parts[1]
		if !identifier.MatchString(schema) {
			return "", "", fmt.Errorf("invalid schema name %q", schema)
		}
	default:
		return "", "", fmt.Errorf("invalid table name %q", table)
	}
	if !identifier.MatchString(name) {
		return "", "", fmt.Errorf("invalid table name %q", table)
	}
	return schema, name, nil
}

func (p *PostgresProvider) qualified() string {
	if p.schema == "" {
		return pq.QuoteIdentifier(p.table)
	}
	return pq.QuoteIdentifier(p.schema) + "." + pq.QuoteIdentifier(p.table)
}

func (p *PostgresProvider) Name() string {
	if p.schema == "" {
		return "postgres:" + p.table
	}
	return "postgres:" + p.schema + "." + p.table
}

func (p *PostgresProvider) selectQuery() string {
	return "SELECT word FROM " + p.qualified() + " ORDER BY position, word"
}

func (p *PostgresProvider) Load(ctx context.Context) ([]string, error) {
	rows, err := p.client.DB.QueryContext(ctx, p.selectQuery())
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", p.Name(), err)
	}
	defer rows.Close()

	var (
		words   []string
		skipped int
	)
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", p.Name(), err)
		}
		if !Queryable(word) {
			skipped++
			continue
		}
		words = append(words, word)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", p.Name(), err)
	}
	if skipped > 0 {
		slog.Warn("skipped words with non-letter characters", "source", p.Name(), "skipped", skipped)
	}
	return words, nil
}

// EnsureSchema creates the words table when it does not exist.
func (p *PostgresProvider) EnsureSchema(ctx context.Context) error {
	ddl := "CREATE TABLE IF NOT EXISTS " + p.qualified() + ` (
	position BIGINT NOT NULL,
	word     TEXT   NOT NULL,
	PRIMARY KEY (position)
)`
	if _, err := p.client.DB.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating %s: %w", p.Name(), err)
	}
	return nil
}

// Replace swaps the table contents for words in one transaction, bulk
// loading with COPY.
func (p *PostgresProvider) Replace(ctx context.Context, words []string) error {
	return p.client.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+p.qualified()); err != nil {
			return fmt.Errorf("clearing %s: %w", p.Name(), err)
		}
		var copyStmt string
		if p.schema == "" {
			copyStmt = pq.CopyIn(p.table, "position", "word")
		} else {
			copyStmt = pq.CopyInSchema(p.schema, p.table, "position", "word")
		}
		stmt, err := tx.PrepareContext(ctx, copyStmt)
		if err != nil {
			return fmt.Errorf("preparing copy into %s: %w", p.Name(), err)
		}
		for i, word := range words {
			if _, err := stmt.ExecContext(ctx, int64(i), word); err != nil {
				_ = stmt.Close()
				return fmt.Errorf("copying word %d: %w", i, err)
			}
		}
		if _, err := stmt.ExecContext(ctx); err != nil {
			_ = stmt.Close()
			return fmt.Errorf("flushing copy into %s: %w", p.Name(), err)
		}
		return stmt.Close()
	})
}
