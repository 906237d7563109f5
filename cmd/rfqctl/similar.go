package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/quoteflow/backend/internal/domain"
	"github.com/quoteflow/backend/internal/infrastructure/sqlite"
	"github.com/quoteflow/backend/internal/usecase"
	"github.com/spf13/cobra"
)

var similarQuery string

var similarCmd = &cobra.Command{
	Use:   "similar",
	Short: "Find similar historical quotes for a product",
	Long: `Run the similar-quote matcher against the local store. The query is a product
JSON object, given inline or as @path to a file.`,
	Example: `  rfqctl similar --query '{"productSeries":"Wig","hairFiber":"Remy"}'
  rfqctl similar --query @draft.json`,
	RunE: runSimilar,
}

func init() {
	similarCmd.Flags().StringVarP(&similarQuery, "query", "q", "", "product JSON or @file (required)")
	similarCmd.MarkFlagRequired("query")
}

func runSimilar(cmd *cobra.Command, args []string) error {
	raw := []byte(similarQuery)
	if path, ok := strings.CutPrefix(similarQuery, "@"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		raw = data
	}

	var query domain.Product
	if err := json.Unmarshal(raw, &query); err != nil {
		return fmt.Errorf("failed to parse query: %w", err)
	}

	store, err := sqlite.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	corpus, err := store.LoadCorpus(context.Background())
	if err != nil {
		return err
	}

	quotes, err := usecase.FindSimilarQuotes(&query, corpus)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]interface{}{"quotes": quotes})
}
