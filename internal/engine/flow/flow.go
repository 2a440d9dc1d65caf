// Package flow composes the submitter and resolver into the single
// operation exposed to callers, plus the fire-and-forget side effects
// that must never affect the returned result.
package flow

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/repcard/engine/internal/core/domain"
	"github.com/repcard/engine/internal/engine/metrics"
	"github.com/repcard/engine/internal/engine/resolve"
	"github.com/repcard/engine/internal/engine/retry"
)

// State is the flow's position in its lifecycle. failed and resolved are
// terminal; failed carries a ClassifiedError, resolved a ResolutionResult
// (possibly with the unknown outcome sentinel).
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateConfirming State = "confirming"
	StateResolving  State = "resolving"
	StateResolved   State = "resolved"
	StateFailed     State = "failed"
)

// Submitter produces a confirmed receipt or a classified failure.
type Submitter interface {
	Submit(ctx context.Context, intent domain.TransactionIntent, policy retry.Policy) (*domain.ConfirmationReceipt, error)
}

// Resolver determines the domain-level outcome of a confirmed receipt.
type Resolver interface {
	Resolve(ctx context.Context, intent domain.TransactionIntent, receipt *domain.ConfirmationReceipt, before *domain.StateSnapshot) domain.ResolutionResult
}

// Recorder is the off-chain outcome ledger. Writes are fire-and-forget.
type Recorder interface {
	Record(ctx context.Context, rec *domain.OutcomeRecord) error
}

// Guard rejects a second in-flight submission of the same intent
// fingerprint. Best-effort: a Guard error lets the flow proceed.
type Guard interface {
	Acquire(ctx context.Context, fingerprint string) (bool, error)
	Release(ctx context.Context, fingerprint string)
}

// Flow is the transaction flow orchestrator.
type Flow struct {
	submitter Submitter
	resolver  Resolver
	reader    resolve.LedgerReader
	recorder  Recorder
	guard     Guard
	policy    retry.Policy
	log       *slog.Logger
}

// Config carries the orchestrator's collaborators. Recorder and Guard
// are optional; Reader is only used for the advisory pre-snapshot.
type Config struct {
	Submitter Submitter
	Resolver  Resolver
	Reader    resolve.LedgerReader
	Recorder  Recorder
	Guard     Guard
	Policy    retry.Policy
	Log       *slog.Logger
}

func New(cfg Config) *Flow {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.Policy.BackoffMultiple == 0 {
		cfg.Policy = retry.DefaultPolicy
	}
	return &Flow{
		submitter: cfg.Submitter,
		resolver:  cfg.Resolver,
		reader:    cfg.Reader,
		recorder:  cfg.Recorder,
		guard:     cfg.Guard,
		policy:    cfg.Policy,
		log:       cfg.Log,
	}
}

// Execute runs one logical transaction flow end to end. A nil policy
// uses the flow's default. The returned error, if any, is always a
// *domain.ClassifiedError; a resolution with the unknown outcome
// sentinel is a success, not an error.
func (f *Flow) Execute(
	ctx context.Context,
	intent domain.TransactionIntent,
	policy *retry.Policy,
) (domain.ResolutionResult, error) {
	start := time.Now()
	flowID := uuid.NewString()
	log := f.log.With("flow_id", flowID, "kind", intent.Kind, "subject", intent.Subject)

	if err := intent.Validate(); err != nil {
		return domain.ResolutionResult{}, &domain.ClassifiedError{
			Code:       domain.CodeUnknown,
			Message:    err.Error(),
			UserAction: "Check the request and try again.",
			Retryable:  false,
		}
	}

	p := f.policy
	if policy != nil {
		p = *policy
	}
	callerOnRetry := p.OnRetry
	p.OnRetry = func(attempt int) {
		log.Info("retrying submission", "attempt", attempt)
		if callerOnRetry != nil {
			callerOnRetry(attempt)
		}
	}

	if f.guard != nil {
		acquired, err := f.guard.Acquire(ctx, intent.Fingerprint())
		if err != nil {
			log.Warn("duplicate-submission guard unavailable", "error", err)
		} else if !acquired {
			f.observe(intent, StateFailed, start)
			return domain.ResolutionResult{}, &domain.ClassifiedError{
				Code:       domain.CodeDuplicateSubmission,
				Message:    "An identical request is already in flight.",
				UserAction: "Wait for the pending request to finish.",
				Retryable:  false,
			}
		} else {
			defer f.guard.Release(context.WithoutCancel(ctx), intent.Fingerprint())
		}
	}

	// Advisory pre-snapshot for the resolver's diff tier. Purely
	// best-effort: its own failure is swallowed.
	before := f.captureSnapshot(ctx, intent, log)

	log.Info("submitting transaction", "state", StateSubmitting, "contract", intent.Contract)
	receipt, err := f.submitter.Submit(ctx, intent, p)
	if err != nil {
		ce := asClassified(err)
		f.observe(intent, StateFailed, start)
		if ce.IsUserCancelled() {
			// The user already knows they cancelled; no error noise.
			log.Info("flow cancelled by user", "state", StateFailed)
		} else {
			log.Error("flow failed", "state", StateFailed, "code", ce.Code, "error", ce.Message)
		}
		return domain.ResolutionResult{}, ce
	}

	log.Info("transaction confirmed", "state", StateResolving,
		"tx_hash", receipt.TxHash, "block", receipt.BlockNumber)

	result := f.resolver.Resolve(ctx, intent, receipt, before)
	metrics.ResolutionTier.WithLabelValues(string(result.Tier)).Inc()
	f.observe(intent, StateResolved, start)

	// Record the outcome off-chain without awaiting it. Uses a detached
	// context so an already-finished caller cannot cancel the write.
	if f.recorder != nil {
		go f.recordOutcome(context.WithoutCancel(ctx), intent, result, log)
	}

	log.Info("flow resolved", "state", StateResolved,
		"outcome_id", result.OutcomeID, "tier", result.Tier, "confirmed", result.Confirmed())
	return result, nil
}

func (f *Flow) captureSnapshot(
	ctx context.Context,
	intent domain.TransactionIntent,
	log *slog.Logger,
) *domain.StateSnapshot {
	if f.reader == nil || intent.Subject == "" {
		return nil
	}
	ids, err := f.reader.OwnedCards(ctx, intent.Subject)
	if err != nil {
		log.Debug("pre-submission snapshot failed", "error", err)
		return nil
	}
	return &domain.StateSnapshot{Subject: intent.Subject, CardIDs: ids}
}

func (f *Flow) recordOutcome(
	ctx context.Context,
	intent domain.TransactionIntent,
	result domain.ResolutionResult,
	log *slog.Logger,
) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rec := &domain.OutcomeRecord{
		ID:        uuid.NewString(),
		Subject:   intent.Subject,
		Kind:      intent.Kind,
		OutcomeID: result.OutcomeID,
		TxHash:    result.TxHash,
		CreatedAt: time.Now().UTC(),
	}
	if err := f.recorder.Record(ctx, rec); err != nil {
		metrics.OutcomeRecordFailures.Inc()
		log.Warn("outcome record write failed", "tx_hash", result.TxHash, "error", err)
	}
}

func (f *Flow) observe(intent domain.TransactionIntent, state State, start time.Time) {
	metrics.FlowsTotal.WithLabelValues(string(intent.Kind), string(state)).Inc()
	metrics.FlowDuration.WithLabelValues(string(intent.Kind)).Observe(time.Since(start).Seconds())
}

func asClassified(err error) *domain.ClassifiedError {
	if ce, ok := err.(*domain.ClassifiedError); ok {
		return ce
	}
	return &domain.ClassifiedError{
		Code:       domain.CodeUnknown,
		Message:    err.Error(),
		UserAction: "Please try again.",
		Retryable:  false,
	}
}
