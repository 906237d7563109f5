package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain"
	"github.com/quoteflow/backend/internal/infrastructure/sqlite"
	"github.com/quoteflow/backend/internal/usecase"
	"github.com/spf13/cobra"
)

var (
	importFile     string
	importPrefixes map[string]string
	importWidth    int
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a JSON corpus into the local store",
	Long: `Import requests (with embedded products and quotes) from a JSON file of the
form {"requests": [...]}. Existing requests with the same id are replaced and
product code sequences are raised past every imported code.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "JSON corpus file to import (required)")
	importCmd.Flags().StringToStringVar(&importPrefixes, "prefix", nil, "product series to code prefix, e.g. wig=WG")
	importCmd.Flags().IntVar(&importWidth, "width", 4, "product code sequence width")

	importCmd.MarkFlagRequired("file")
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(importFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", importFile, err)
	}

	var corpus domain.Corpus
	if err := json.Unmarshal(data, &corpus); err != nil {
		return fmt.Errorf("failed to parse %s: %w", importFile, err)
	}
	log.Printf("Parsed %d requests from %s", len(corpus.Requests), importFile)

	store, err := sqlite.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	wlids := usecase.NewWLIDGenerator(store, usecase.WLIDConfig{Width: importWidth, Prefixes: importPrefixes})

	imported := 0
	for i := range corpus.Requests {
		req := &corpus.Requests[i]
		normalizeImported(req)

		if err := store.ImportRequest(ctx, req); err != nil {
			log.Printf("Failed to import request %d (%s): %v", i+1, req.ID, err)
			continue
		}

		for _, p := range req.Products {
			if p.WLID == "" {
				continue
			}
			if err := wlids.Observe(ctx, p.Series.String(), p.WLID); err != nil {
				return fmt.Errorf("failed to seed code sequence for %s: %w", p.WLID, err)
			}
		}

		imported++
		if imported%100 == 0 {
			log.Printf("Imported %d requests...", imported)
		}
	}

	log.Printf("Import completed: %d of %d requests into %s", imported, len(corpus.Requests), dbPath)
	return nil
}

// normalizeImported fills identifiers and statuses missing from exported data
func normalizeImported(req *domain.Request) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.Status == "" {
		req.Status = domain.RequestStatusOpen
	}
	if req.UpdatedAt.IsZero() {
		req.UpdatedAt = req.CreatedAt
	}

	for j := range req.Products {
		p := &req.Products[j]
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		p.RequestID = req.ID
		if p.Quantity <= 0 {
			p.Quantity = 1
		}
	}

	for j := range req.Quotes {
		q := &req.Quotes[j]
		if q.ID == "" {
			q.ID = uuid.New().String()
		}
		q.RequestID = req.ID
		if q.Status == "" {
			q.Status = domain.QuoteStatusPending
		}
	}
}
