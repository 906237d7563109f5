package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/quoteflow/backend/internal/domain"
)

var nonAlphanumericUpper = regexp.MustCompile(`[^A-Z0-9]`)

// WLIDConfig holds configuration for product code generation
type WLIDConfig struct {
	// Width is the minimum number of digits in the sequence suffix
	Width int
	// Prefixes maps a lower-cased product series to its code prefix
	Prefixes map[string]string
}

// WLIDGenerator hands out sequential product codes prefixed by series.
// Sequence allocation is delegated to the repository, which serializes
// concurrent callers.
type WLIDGenerator struct {
	sequences domain.SequenceRepository
	width     int
	prefixes  map[string]string
}

// NewWLIDGenerator creates a generator backed by sequences
func NewWLIDGenerator(sequences domain.SequenceRepository, config WLIDConfig) *WLIDGenerator {
	width := config.Width
	if width <= 0 {
		width = 4
	}

	prefixes := make(map[string]string, len(config.Prefixes))
	for series, prefix := range config.Prefixes {
		prefixes[strings.ToLower(series)] = strings.ToUpper(prefix)
	}

	return &WLIDGenerator{
		sequences: sequences,
		width:     width,
		prefixes:  prefixes,
	}
}

// Prefix returns the code prefix for a product series
func (g *WLIDGenerator) Prefix(series string) string {
	if prefix, ok := g.prefixes[strings.ToLower(series)]; ok {
		return prefix
	}
	return nonAlphanumericUpper.ReplaceAllString(strings.ToUpper(series), "")
}

// Next allocates the next code for series
func (g *WLIDGenerator) Next(ctx context.Context, series string) (string, error) {
	prefix := g.Prefix(series)
	if prefix == "" {
		return "", fmt.Errorf("%w: product series %q yields an empty code prefix", domain.ErrInvalidRequest, series)
	}

	seq, err := g.sequences.NextSequence(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("allocating %s sequence: %w", prefix, err)
	}

	return g.Format(prefix, seq), nil
}

// Format renders a prefix and sequence number as a code
func (g *WLIDGenerator) Format(prefix string, seq int) string {
	return fmt.Sprintf("%s%0*d", prefix, g.width, seq)
}

// Observe raises the series counter so it never re-issues an existing code.
// Codes that do not carry the series prefix are ignored.
func (g *WLIDGenerator) Observe(ctx context.Context, series, code string) error {
	prefix := g.Prefix(series)
	seq, ok := ParseWLID(prefix, code)
	if !ok {
		return nil
	}
	return g.sequences.SeedSequence(ctx, prefix, seq)
}

// ParseWLID extracts the all-digit suffix of code for prefix
func ParseWLID(prefix, code string) (int, bool) {
	if prefix == "" || !strings.HasPrefix(code, prefix) {
		return 0, false
	}
	suffix := code[len(prefix):]
	if suffix == "" || strings.TrimLeft(suffix, "0123456789") != "" {
		return 0, false
	}
	seq, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return seq, true
}
