// Package resolve determines the domain-level outcome of a confirmed
// transaction from three independent sources of truth, in order: the
// receipt's own event log, any generic transfer log, and a before/after
// diff of the subject's ledger-observable cards. The first tier that
// yields an unambiguous card id wins; if all fail the result carries the
// unknown sentinel, which is still a success.
package resolve

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/repcard/engine/internal/core/domain"
)

// LedgerReader is the read side of the chain adapter. Only consulted by
// the tertiary tier; the primary and secondary tiers work entirely off
// the receipt.
type LedgerReader interface {
	OwnedCards(ctx context.Context, subject string) ([]uint64, error)
}

// Resolver implements the layered fallback protocol.
type Resolver struct {
	reader LedgerReader
	log    *slog.Logger
}

func New(reader LedgerReader, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{reader: reader, log: log}
}

// Resolve is total: it always returns a result and never fails the flow.
// before may be nil when the pre-submission snapshot could not be taken;
// the tertiary tier is then skipped.
func (r *Resolver) Resolve(
	ctx context.Context,
	intent domain.TransactionIntent,
	receipt *domain.ConfirmationReceipt,
	before *domain.StateSnapshot,
) domain.ResolutionResult {
	if id, ok := r.decodeCompletionLog(intent, receipt); ok {
		return domain.ResolutionResult{OutcomeID: id, TxHash: receipt.TxHash, Tier: domain.TierEvent}
	}

	if id, ok := r.decodeTransferLog(receipt); ok {
		return domain.ResolutionResult{OutcomeID: id, TxHash: receipt.TxHash, Tier: domain.TierTransfer}
	}

	if id, ok := r.inferFromDiff(ctx, intent, before); ok {
		return domain.ResolutionResult{OutcomeID: id, TxHash: receipt.TxHash, Tier: domain.TierDiff}
	}

	r.log.Warn("outcome unconfirmed, returning unknown sentinel",
		"tx_hash", receipt.TxHash, "kind", intent.Kind, "subject", intent.Subject)
	return domain.ResolutionResult{OutcomeID: domain.UnknownOutcome, TxHash: receipt.TxHash, Tier: domain.TierUnknown}
}

// decodeCompletionLog scans for the card contract's own completion event:
// emitting address must match the intent's target and the first topic
// must match the expected event for the intent kind.
func (r *Resolver) decodeCompletionLog(
	intent domain.TransactionIntent,
	receipt *domain.ConfirmationReceipt,
) (uint64, bool) {
	want, ok := completionTopics[intent.Kind]
	if !ok {
		return 0, false
	}

	for _, l := range receipt.Logs {
		if !strings.EqualFold(l.Address, intent.Contract) {
			continue
		}
		if len(l.Topics) < 3 || !strings.EqualFold(l.Topics[0], want) {
			continue
		}
		if id, err := parseTopicID(l.Topics[2]); err == nil {
			return id, true
		}
	}
	return 0, false
}

// decodeTransferLog scans every log, regardless of emitter, for the
// canonical transfer event and takes its token id.
func (r *Resolver) decodeTransferLog(receipt *domain.ConfirmationReceipt) (uint64, bool) {
	for _, l := range receipt.Logs {
		// An ERC-721 transfer indexes the token id, so it has 4 topics.
		// ERC-20 transfers carry 3 and must not be mistaken for one.
		if len(l.Topics) != 4 || !strings.EqualFold(l.Topics[0], transferTopic) {
			continue
		}
		if id, err := parseTopicID(l.Topics[3]); err == nil {
			return id, true
		}
	}
	return 0, false
}

// inferFromDiff compares the pre-submission snapshot with a fresh read.
// Only an exact single-element difference is trusted: with zero or
// several new ids the inference is ambiguous (a concurrent claim may
// have landed in between) and picking any of them would silently
// misattribute the result.
func (r *Resolver) inferFromDiff(
	ctx context.Context,
	intent domain.TransactionIntent,
	before *domain.StateSnapshot,
) (uint64, bool) {
	if before == nil || r.reader == nil {
		return 0, false
	}

	ids, err := r.reader.OwnedCards(ctx, intent.Subject)
	if err != nil {
		r.log.Debug("post-confirmation snapshot failed", "subject", intent.Subject, "error", err)
		return 0, false
	}

	after := domain.StateSnapshot{Subject: intent.Subject, CardIDs: ids}
	added := before.Diff(after)
	if len(added) != 1 {
		r.log.Debug("snapshot diff ambiguous",
			"subject", intent.Subject, "new_ids", len(added))
		return 0, false
	}
	return added[0], true
}

// parseTopicID decodes a 32-byte hex topic into a card id. Ids beyond
// 64 bits are rejected rather than truncated.
func parseTopicID(topic string) (uint64, error) {
	s := strings.TrimPrefix(strings.ToLower(topic), "0x")
	s = strings.TrimLeft(s, "0")
	if s == "" {
		s = "0"
	}
	return strconv.ParseUint(s, 16, 64)
}
