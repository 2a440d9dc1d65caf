package postgres

import (
	"math"
	"strconv"
	"testing"

	"github.com/repcard/engine/internal/core/domain"
)

func TestOutcomeRowFullUint64Range(t *testing.T) {
	// Card ids are uint64; the top half of the range does not fit a
	// BIGINT, so the id travels as a decimal string.
	row := outcomeRow{
		ID:        "r1",
		Subject:   "0xfeed",
		Kind:      string(domain.IntentClaim),
		OutcomeID: strconv.FormatUint(math.MaxUint64, 10),
		TxHash:    "0xh1",
	}

	rec := row.toDomain()
	if rec.OutcomeID != math.MaxUint64 {
		t.Fatalf("OutcomeID = %d, want %d", rec.OutcomeID, uint64(math.MaxUint64))
	}
	if rec.Kind != domain.IntentClaim {
		t.Errorf("Kind = %q, want %q", rec.Kind, domain.IntentClaim)
	}
}
