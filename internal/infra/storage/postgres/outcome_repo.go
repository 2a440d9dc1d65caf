package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/repcard/engine/internal/core/domain"
)

// OutcomeRepo implements storage.OutcomeRepository using PostgreSQL.
type OutcomeRepo struct {
	db *DB
}

// NewOutcomeRepo creates a new PostgreSQL outcome repository.
func NewOutcomeRepo(db *DB) *OutcomeRepo {
	return &OutcomeRepo{db: db}
}

// Record saves one resolved outcome. A duplicate tx hash is treated as
// already recorded, so a replayed fire-and-forget write is harmless.
func (r *OutcomeRepo) Record(ctx context.Context, rec *domain.OutcomeRecord) error {
	query := `
		INSERT INTO outcomes (id, subject, intent_kind, outcome_id, tx_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tx_hash) DO NOTHING
	`
	// database/sql refuses uint64 args above 1<<63-1, and card ids span
	// the full uint64 range, so the id crosses the driver as a decimal
	// string into a NUMERIC(20,0) column.
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Subject, string(rec.Kind), strconv.FormatUint(rec.OutcomeID, 10), rec.TxHash, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}
	return nil
}

// ListBySubject returns the subject's most recent outcomes.
func (r *OutcomeRepo) ListBySubject(
	ctx context.Context,
	subject string,
	limit int,
) ([]*domain.OutcomeRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, subject, intent_kind, outcome_id, tx_hash, created_at
		FROM outcomes
		WHERE subject = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	var rows []outcomeRow
	if err := r.db.SelectContext(ctx, &rows, query, subject, limit); err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}

	records := make([]*domain.OutcomeRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].toDomain())
	}
	return records, nil
}

type outcomeRow struct {
	ID        string    `db:"id"`
	Subject   string    `db:"subject"`
	Kind      string    `db:"intent_kind"`
	OutcomeID string    `db:"outcome_id"`
	TxHash    string    `db:"tx_hash"`
	CreatedAt time.Time `db:"created_at"`
}

func (o *outcomeRow) toDomain() *domain.OutcomeRecord {
	outcomeID, _ := strconv.ParseUint(o.OutcomeID, 10, 64)
	return &domain.OutcomeRecord{
		ID:        o.ID,
		Subject:   o.Subject,
		Kind:      domain.IntentKind(o.Kind),
		OutcomeID: outcomeID,
		TxHash:    o.TxHash,
		CreatedAt: o.CreatedAt,
	}
}
