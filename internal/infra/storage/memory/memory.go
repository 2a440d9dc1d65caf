// Package memory provides an in-memory outcome repository used when no
// database URL is configured, and by tests.
package memory

import (
	"context"
	"sync"

	"github.com/repcard/engine/internal/core/domain"
)

// OutcomeRepo is a mutex-guarded in-memory outcome store.
type OutcomeRepo struct {
	mu      sync.RWMutex
	records []*domain.OutcomeRecord
}

func NewOutcomeRepo() *OutcomeRepo {
	return &OutcomeRepo{}
}

// Record appends one outcome. Duplicate tx hashes are dropped, matching
// the database's conflict behavior.
func (r *OutcomeRepo) Record(ctx context.Context, rec *domain.OutcomeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.records {
		if existing.TxHash == rec.TxHash {
			return nil
		}
	}

	cp := *rec
	r.records = append(r.records, &cp)
	return nil
}

// ListBySubject returns the subject's outcomes, newest first.
func (r *OutcomeRepo) ListBySubject(
	ctx context.Context,
	subject string,
	limit int,
) ([]*domain.OutcomeRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	var out []*domain.OutcomeRecord
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		if r.records[i].Subject == subject {
			cp := *r.records[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}
