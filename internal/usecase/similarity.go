package usecase

import (
	"sort"

	"github.com/quoteflow/backend/internal/domain"
)

const (
	// MinMatchingFields is the number of comparison fields that must agree
	// for a historical product to count as similar. It is absolute, not a
	// fraction of the populated fields.
	MinMatchingFields = 5

	// MaxSimilarQuotes caps the number of quotes returned to the caller
	MaxSimilarQuotes = 3
)

// FindSimilarQuotes returns up to MaxSimilarQuotes historical quotes for
// products that share the query's series and agree on at least
// MinMatchingFields comparison fields. Results are ordered by submission
// time, newest first, with one entry per request/product/purchaser.
//
// A query without a series matches nothing. A nil query or corpus is a
// precondition failure and returns domain.ErrInvalidRequest.
func FindSimilarQuotes(query *domain.Product, corpus *domain.Corpus) ([]domain.Quote, error) {
	if query == nil || corpus == nil {
		return nil, domain.ErrInvalidRequest
	}

	results := []domain.Quote{}
	if !query.Series.IsSet() {
		return results, nil
	}

	var candidates []domain.Quote
	for i := range corpus.Requests {
		for j := range corpus.Requests[i].Products {
			product := &corpus.Requests[i].Products[j]
			if !isSimilarProduct(query, product) {
				continue
			}
			candidates = append(candidates, quotesForProduct(corpus, product.ID)...)
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].SubmittedAt.After(candidates[b].SubmittedAt)
	})

	seen := make(map[string]bool, len(candidates))
	for _, q := range candidates {
		key := q.DedupKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		results = append(results, q)
		if len(results) == MaxSimilarQuotes {
			break
		}
	}

	return results, nil
}

// isSimilarProduct applies the series filter and the field threshold
func isSimilarProduct(query, candidate *domain.Product) bool {
	if !query.Series.Matches(candidate.Series) {
		return false
	}
	return countMatchingFields(query, candidate) >= MinMatchingFields
}

// countMatchingFields counts comparison fields that are present on both
// sides and exactly equal
func countMatchingFields(query, candidate *domain.Product) int {
	matches := 0
	for _, field := range domain.ComparisonFields {
		if field.Get(query).Matches(field.Get(candidate)) {
			matches++
		}
	}
	return matches
}

// quotesForProduct collects quotes from every request in the corpus that
// reference productID, not only the request owning the product.
func quotesForProduct(corpus *domain.Corpus, productID string) []domain.Quote {
	var quotes []domain.Quote
	for i := range corpus.Requests {
		for _, q := range corpus.Requests[i].Quotes {
			if q.ProductID == productID {
				quotes = append(quotes, q)
			}
		}
	}
	return quotes
}
