package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/quoteflow/backend/internal/domain"
	"github.com/shopspring/decimal"
)

var baseTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// wigQuery agrees with fullWigProduct on all seven comparison fields
func wigQuery() *domain.Product {
	return &domain.Product{
		Series:    domain.Text("Wig"),
		HairFiber: domain.Text("Remy"),
		Cap:       domain.Text("Lace Front"),
		CapSize:   domain.Text("Average"),
		Length:    domain.Text("18in"),
		Density:   domain.Text("120%"),
		Color:     domain.Text("Natural Black"),
		CurlStyle: domain.Text("Straight"),
	}
}

func fullWigProduct(id, requestID string) domain.Product {
	p := *wigQuery()
	p.ID = id
	p.RequestID = requestID
	return p
}

func quoteAt(id, requestID, productID, purchaser string, price string, submitted time.Time) domain.Quote {
	return domain.Quote{
		ID:          id,
		RequestID:   requestID,
		ProductID:   productID,
		PurchaserID: purchaser,
		Price:       decimal.RequireFromString(price),
		SubmittedAt: submitted,
		Status:      domain.QuoteStatusPending,
	}
}

func quoteIDs(quotes []domain.Quote) []string {
	ids := make([]string, 0, len(quotes))
	for _, q := range quotes {
		ids = append(ids, q.ID)
	}
	return ids
}

func TestFindSimilarQuotes_InvalidInput(t *testing.T) {
	t.Run("nil query", func(t *testing.T) {
		_, err := FindSimilarQuotes(nil, &domain.Corpus{})
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("error = %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("nil corpus", func(t *testing.T) {
		_, err := FindSimilarQuotes(wigQuery(), nil)
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("error = %v, want ErrInvalidRequest", err)
		}
	})
}

func TestFindSimilarQuotes_ExampleScenario(t *testing.T) {
	topper := fullWigProduct("topper-1", "r2")
	topper.Series = domain.Text("Topper")

	corpus := &domain.Corpus{Requests: []domain.Request{
		{
			ID:       "r1",
			Products: []domain.Product{fullWigProduct("wig-1", "r1")},
			Quotes: []domain.Quote{
				quoteAt("q1", "r1", "wig-1", "buyer-a", "120.00", baseTime),
				quoteAt("q2", "r1", "wig-1", "buyer-b", "135.00", baseTime.Add(time.Hour)),
			},
		},
		{
			ID:       "r2",
			Products: []domain.Product{topper},
			Quotes: []domain.Quote{
				quoteAt("q3", "r2", "topper-1", "buyer-a", "99.00", baseTime.Add(2*time.Hour)),
			},
		},
	}}

	got, err := FindSimilarQuotes(wigQuery(), corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (got %v)", len(got), quoteIDs(got))
	}
	if !got[0].Price.Equal(decimal.RequireFromString("135.00")) {
		t.Errorf("first price = %s, want 135.00", got[0].Price)
	}
	if !got[1].Price.Equal(decimal.RequireFromString("120.00")) {
		t.Errorf("second price = %s, want 120.00", got[1].Price)
	}
}

func TestFindSimilarQuotes_CategoryIsHardFilter(t *testing.T) {
	other := fullWigProduct("p1", "r1")
	other.Series = domain.Text("Topper")

	missing := fullWigProduct("p2", "r1")
	missing.Series = domain.Attribute{}

	corpus := &domain.Corpus{Requests: []domain.Request{{
		ID:       "r1",
		Products: []domain.Product{other, missing},
		Quotes: []domain.Quote{
			quoteAt("q1", "r1", "p1", "buyer-a", "10", baseTime),
			quoteAt("q2", "r1", "p2", "buyer-a", "10", baseTime),
		},
	}}}

	got, err := FindSimilarQuotes(wigQuery(), corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want no quotes", quoteIDs(got))
	}
}

func TestFindSimilarQuotes_ThresholdBoundary(t *testing.T) {
	// Overwrite fields from the end until only n of the seven agree.
	withMatchingFields := func(n int) domain.Product {
		p := fullWigProduct("p1", "r1")
		blank := []*domain.Attribute{&p.CurlStyle, &p.Color, &p.Density, &p.Length, &p.CapSize, &p.Cap, &p.HairFiber}
		for i := 0; i < 7-n; i++ {
			*blank[i] = domain.Text("different")
		}
		return p
	}

	tests := []struct {
		matching int
		want     int
	}{
		{matching: 7, want: 1},
		{matching: 6, want: 1},
		{matching: 5, want: 1},
		{matching: 4, want: 0},
		{matching: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d of 7", tt.matching), func(t *testing.T) {
			p := withMatchingFields(tt.matching)
			if got := countMatchingFields(wigQuery(), &p); got != tt.matching {
				t.Fatalf("countMatchingFields = %d, want %d", got, tt.matching)
			}

			corpus := &domain.Corpus{Requests: []domain.Request{{
				ID:       "r1",
				Products: []domain.Product{p},
				Quotes:   []domain.Quote{quoteAt("q1", "r1", "p1", "buyer-a", "10", baseTime)},
			}}}

			got, err := FindSimilarQuotes(wigQuery(), corpus)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestFindSimilarQuotes_SparseHistoricalProduct(t *testing.T) {
	// Only five fields populated, all equal: absent fields are not held against the match.
	p := domain.Product{
		ID:        "p1",
		Series:    domain.Text("Wig"),
		HairFiber: domain.Text("Remy"),
		Cap:       domain.Text("Lace Front"),
		CapSize:   domain.Text("Average"),
		Length:    domain.Text("18in"),
		Density:   domain.Text("120%"),
	}
	corpus := &domain.Corpus{Requests: []domain.Request{{
		ID:       "r1",
		Products: []domain.Product{p},
		Quotes:   []domain.Quote{quoteAt("q1", "r1", "p1", "buyer-a", "10", baseTime)},
	}}}

	got, err := FindSimilarQuotes(wigQuery(), corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
}

func TestFindSimilarQuotes_TypeGatedEquality(t *testing.T) {
	// A numeric length decodes to an absent attribute, so only 6 fields can
	// match at most; knock out one more to land on 5 vs 4.
	var query domain.Product
	payload := []byte(`{"productSeries":"Wig","hairFiber":"Remy","cap":"Lace Front","capSize":"Average","length":5,"density":"120%","color":"Natural Black","curlStyle":"Other"}`)
	if err := json.Unmarshal(payload, &query); err != nil {
		t.Fatalf("decode query: %v", err)
	}

	p := fullWigProduct("p1", "r1")
	p.Length = domain.Text("5")

	if got := countMatchingFields(&query, &p); got != 5 {
		t.Fatalf("countMatchingFields = %d, want 5 (numeric 5 must not equal \"5\")", got)
	}

	p.Density = domain.Text("150%")
	corpus := &domain.Corpus{Requests: []domain.Request{{
		ID:       "r1",
		Products: []domain.Product{p},
		Quotes:   []domain.Quote{quoteAt("q1", "r1", "p1", "buyer-a", "10", baseTime)},
	}}}

	got, err := FindSimilarQuotes(&query, corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want none", quoteIDs(got))
	}
}

func TestFindSimilarQuotes_RecencyOrderAndBound(t *testing.T) {
	var quotes []domain.Quote
	for i := 0; i < 12; i++ {
		quotes = append(quotes, quoteAt(
			fmt.Sprintf("q%02d", i), "r1", "p1", fmt.Sprintf("buyer-%02d", i), "10",
			baseTime.Add(time.Duration(i)*time.Minute),
		))
	}
	corpus := &domain.Corpus{Requests: []domain.Request{{
		ID:       "r1",
		Products: []domain.Product{fullWigProduct("p1", "r1")},
		Quotes:   quotes,
	}}}

	got, err := FindSimilarQuotes(wigQuery(), corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"q11", "q10", "q09"}
	if !reflect.DeepEqual(quoteIDs(got), want) {
		t.Errorf("ids = %v, want %v", quoteIDs(got), want)
	}
}

func TestFindSimilarQuotes_Deduplication(t *testing.T) {
	t.Run("two similar products reaching the same quote", func(t *testing.T) {
		// Both products share id p1, so the quote is collected twice.
		corpus := &domain.Corpus{Requests: []domain.Request{
			{
				ID:       "r1",
				Products: []domain.Product{fullWigProduct("p1", "r1")},
				Quotes:   []domain.Quote{quoteAt("q1", "r1", "p1", "buyer-a", "10", baseTime)},
			},
			{
				ID:       "r2",
				Products: []domain.Product{fullWigProduct("p1", "r2")},
			},
		}}

		got, err := FindSimilarQuotes(wigQuery(), corpus)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(quoteIDs(got), []string{"q1"}) {
			t.Errorf("ids = %v, want [q1]", quoteIDs(got))
		}
	})

	t.Run("keeps most recent per request, product and purchaser", func(t *testing.T) {
		corpus := &domain.Corpus{Requests: []domain.Request{{
			ID:       "r1",
			Products: []domain.Product{fullWigProduct("p1", "r1")},
			Quotes: []domain.Quote{
				quoteAt("old", "r1", "p1", "buyer-a", "10", baseTime),
				quoteAt("new", "r1", "p1", "buyer-a", "12", baseTime.Add(time.Hour)),
				quoteAt("other", "r1", "p1", "buyer-b", "11", baseTime.Add(30*time.Minute)),
			},
		}}}

		got, err := FindSimilarQuotes(wigQuery(), corpus)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(quoteIDs(got), []string{"new", "other"}) {
			t.Errorf("ids = %v, want [new other]", quoteIDs(got))
		}
	})
}

func TestFindSimilarQuotes_GlobalProductJoin(t *testing.T) {
	// A quote filed under another request still joins on product id.
	corpus := &domain.Corpus{Requests: []domain.Request{
		{ID: "r1", Products: []domain.Product{fullWigProduct("p1", "r1")}},
		{ID: "r2", Quotes: []domain.Quote{quoteAt("q1", "r2", "p1", "buyer-a", "10", baseTime)}},
	}}

	got, err := FindSimilarQuotes(wigQuery(), corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(quoteIDs(got), []string{"q1"}) {
		t.Errorf("ids = %v, want [q1]", quoteIDs(got))
	}
}

func TestFindSimilarQuotes_EmptyResults(t *testing.T) {
	t.Run("empty corpus", func(t *testing.T) {
		got, err := FindSimilarQuotes(wigQuery(), &domain.Corpus{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("got %v, want empty non-nil slice", got)
		}
	})

	t.Run("query without series", func(t *testing.T) {
		query := wigQuery()
		query.Series = domain.Attribute{}
		corpus := &domain.Corpus{Requests: []domain.Request{{
			ID:       "r1",
			Products: []domain.Product{fullWigProduct("p1", "r1")},
			Quotes:   []domain.Quote{quoteAt("q1", "r1", "p1", "buyer-a", "10", baseTime)},
		}}}

		got, err := FindSimilarQuotes(query, corpus)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("got %v, want none", quoteIDs(got))
		}
	})

	t.Run("dangling product id contributes nothing", func(t *testing.T) {
		corpus := &domain.Corpus{Requests: []domain.Request{{
			ID:     "r1",
			Quotes: []domain.Quote{quoteAt("q1", "r1", "ghost", "buyer-a", "10", baseTime)},
		}}}

		got, err := FindSimilarQuotes(wigQuery(), corpus)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("got %v, want none", quoteIDs(got))
		}
	})
}

func TestFindSimilarQuotes_Deterministic(t *testing.T) {
	// Equal timestamps keep corpus order.
	corpus := &domain.Corpus{Requests: []domain.Request{{
		ID:       "r1",
		Products: []domain.Product{fullWigProduct("p1", "r1")},
		Quotes: []domain.Quote{
			quoteAt("a", "r1", "p1", "buyer-a", "10", baseTime),
			quoteAt("b", "r1", "p1", "buyer-b", "10", baseTime),
			quoteAt("c", "r1", "p1", "buyer-c", "10", baseTime),
			quoteAt("d", "r1", "p1", "buyer-d", "10", baseTime),
		},
	}}}

	first, err := FindSimilarQuotes(wigQuery(), corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := FindSimilarQuotes(wigQuery(), corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ between calls: %v vs %v", quoteIDs(first), quoteIDs(second))
	}
	if !reflect.DeepEqual(quoteIDs(first), []string{"a", "b", "c"}) {
		t.Errorf("ids = %v, want [a b c]", quoteIDs(first))
	}
}
