package finance

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// SEQUENCE ALLOCATION - Year-scoped document numbers
// =============================================================================
// Numbers look like "AP-2025-00007": prefix, calendar year, then a 5-digit
// zero-padded sequence. The next number is derived from the maximum
// previously issued one, not from a stored counter, so allocation is a
// read-then-write. The store's unique constraint on the number column is
// the backstop; the ledger retries once on collision (see ledger.go).

// SequenceAllocator issues the next sequential document number for a
// kind within a calendar year.
type SequenceAllocator struct {
	Index NumberIndex
}

func NewSequenceAllocator(index NumberIndex) *SequenceAllocator {
	return &SequenceAllocator{Index: index}
}

// Next returns the next number for (kind, year). With no prior documents,
// or when the last number's suffix doesn't parse, the sequence restarts
// at 1. A malformed suffix is treated as absent rather than an error;
// the unique constraint catches any collision this could cause.
func (a *SequenceAllocator) Next(ctx context.Context, kind DocumentKind, year int) (string, error) {
	last, err := a.Index.LastNumber(ctx, kind, year)
	if err != nil {
		return "", fmt.Errorf("read last %s number for %d: %w", kind, year, err)
	}

	seq := 1
	if last != "" {
		if n, ok := parseSequence(last); ok {
			seq = n + 1
		}
	}
	return FormatNumber(kind, year, seq), nil
}

// FormatNumber renders "<PREFIX>-<year>-<5-digit zero-padded sequence>".
func FormatNumber(kind DocumentKind, year, seq int) string {
	return fmt.Sprintf("%s-%d-%05d", kind.Prefix(), year, seq)
}

// parseSequence extracts the trailing numeric suffix of a document number.
func parseSequence(number string) (int, bool) {
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0, false
	}
	n, err := strconv.Atoi(number[idx+1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
