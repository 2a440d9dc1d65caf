// Package submit turns a transaction intent into a confirmed receipt.
//
// The send and the confirmation wait are retried together as a single
// unit: retrying only the wait after a send already landed would reissue
// the send and risk a duplicate on-chain effect. The flip side is that a
// send that landed right before a perceived failure can still be
// duplicated by the next attempt; the duplicate-submission guard in the
// flow layer narrows, but does not close, that window.
package submit

import (
	"context"
	"log/slog"

	"github.com/repcard/engine/internal/core/domain"
	"github.com/repcard/engine/internal/engine/retry"
)

// Ledger is the write side of the chain adapter consumed by the
// submitter. Send covers sign plus broadcast; WaitMined blocks until the
// transaction is finalized or ctx expires.
type Ledger interface {
	Send(ctx context.Context, intent domain.TransactionIntent) (string, error)
	WaitMined(ctx context.Context, txHash string) (*domain.ConfirmationReceipt, error)
}

// Submitter wraps one write intent with the backoff retrier.
type Submitter struct {
	ledger Ledger
	log    *slog.Logger
}

func New(ledger Ledger, log *slog.Logger) *Submitter {
	if log == nil {
		log = slog.Default()
	}
	return &Submitter{ledger: ledger, log: log}
}

// Submit sends the intent and waits for confirmation, retrying the pair
// as one operation per the policy. On success exactly one receipt is
// returned; on failure the last classified error propagates.
func (s *Submitter) Submit(
	ctx context.Context,
	intent domain.TransactionIntent,
	policy retry.Policy,
) (*domain.ConfirmationReceipt, error) {
	return retry.Do(ctx, policy, func(ctx context.Context) (*domain.ConfirmationReceipt, error) {
		txHash, err := s.ledger.Send(ctx, intent)
		if err != nil {
			return nil, err
		}

		s.log.Debug("transaction sent, waiting for confirmation",
			"tx_hash", txHash, "kind", intent.Kind)

		receipt, err := s.ledger.WaitMined(ctx, txHash)
		if err != nil {
			return nil, err
		}
		return receipt, nil
	})
}
