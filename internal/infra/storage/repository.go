// Package storage defines the off-chain outcome ledger.
package storage

import (
	"context"

	"github.com/repcard/engine/internal/core/domain"
)

// OutcomeRepository persists resolved flow outcomes. Record is the
// fire-and-forget sink called by the orchestrator; ListBySubject backs
// the history surface callers point users at when an outcome resolved to
// the unknown sentinel.
type OutcomeRepository interface {
	Record(ctx context.Context, rec *domain.OutcomeRecord) error
	ListBySubject(ctx context.Context, subject string, limit int) ([]*domain.OutcomeRecord, error)
}
