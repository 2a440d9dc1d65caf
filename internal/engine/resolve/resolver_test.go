package resolve

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/repcard/engine/internal/core/domain"
)

const (
	cardContract = "0xAbCd000000000000000000000000000000000001"
	proxyAddr    = "0x1111000000000000000000000000000000000002"
	subjectAddr  = "0x2222000000000000000000000000000000000003"
)

type stubReader struct {
	ids     []uint64
	err     error
	queried bool
}

func (r *stubReader) OwnedCards(ctx context.Context, subject string) ([]uint64, error) {
	r.queried = true
	return r.ids, r.err
}

// failReader fails the test if the resolver consults the ledger at all.
type failReader struct {
	t *testing.T
}

func (r *failReader) OwnedCards(ctx context.Context, subject string) ([]uint64, error) {
	r.t.Fatal("ledger must not be consulted when a log decodes")
	return nil, nil
}

func issueIntent() domain.TransactionIntent {
	return domain.TransactionIntent{
		Kind:     domain.IntentIssue,
		Contract: cardContract,
		Function: "issueCard(address,uint256)",
		Signer:   subjectAddr,
		Subject:  subjectAddr,
	}
}

func topicWord(id uint64) string {
	return fmt.Sprintf("0x%064x", id)
}

func completionLog(address string, kind domain.IntentKind, id uint64) domain.RawLog {
	return domain.RawLog{
		Address: address,
		Topics:  []string{completionTopics[kind], topicWord(0), topicWord(id)},
	}
}

func transferLog(address string, id uint64) domain.RawLog {
	return domain.RawLog{
		Address: address,
		Topics:  []string{transferTopic, topicWord(0), topicWord(0), topicWord(id)},
	}
}

func receiptWith(logs ...domain.RawLog) *domain.ConfirmationReceipt {
	return &domain.ConfirmationReceipt{
		TxHash:      "0xfeed",
		BlockNumber: 100,
		Status:      1,
		Logs:        logs,
	}
}

func TestResolvePrimaryEventLog(t *testing.T) {
	r := New(&failReader{t: t}, nil)
	receipt := receiptWith(completionLog(cardContract, domain.IntentIssue, 42))
	before := &domain.StateSnapshot{Subject: subjectAddr}

	result := r.Resolve(context.Background(), issueIntent(), receipt, before)
	if result.OutcomeID != 42 {
		t.Fatalf("OutcomeID = %d, want 42", result.OutcomeID)
	}
	if result.Tier != domain.TierEvent {
		t.Fatalf("Tier = %s, want %s", result.Tier, domain.TierEvent)
	}
	if result.TxHash != receipt.TxHash {
		t.Fatalf("TxHash = %s, want %s", result.TxHash, receipt.TxHash)
	}
}

func TestResolvePrimaryIgnoresForeignEmitter(t *testing.T) {
	// The completion topic from a different contract must not satisfy
	// the primary tier, but the transfer fallback still applies.
	r := New(&stubReader{}, nil)
	receipt := receiptWith(
		completionLog(proxyAddr, domain.IntentIssue, 7),
		transferLog(proxyAddr, 9),
	)

	result := r.Resolve(context.Background(), issueIntent(), receipt, nil)
	if result.Tier != domain.TierTransfer || result.OutcomeID != 9 {
		t.Fatalf("got tier %s id %d, want transfer 9", result.Tier, result.OutcomeID)
	}
}

func TestResolveSecondaryTransferLog(t *testing.T) {
	r := New(&failReader{t: t}, nil)
	receipt := receiptWith(transferLog(proxyAddr, 77))

	result := r.Resolve(context.Background(), issueIntent(), receipt, nil)
	if result.OutcomeID != 77 || result.Tier != domain.TierTransfer {
		t.Fatalf("got tier %s id %d, want transfer 77", result.Tier, result.OutcomeID)
	}
}

func TestResolveSecondarySkipsThreeTopicTransfers(t *testing.T) {
	// ERC-20 style transfer: 3 topics, value in data. Not a card.
	r := New(&stubReader{ids: []uint64{5}}, nil)
	receipt := receiptWith(domain.RawLog{
		Address: proxyAddr,
		Topics:  []string{transferTopic, topicWord(0), topicWord(0)},
		Data:    topicWord(123),
	})
	before := &domain.StateSnapshot{Subject: subjectAddr}

	result := r.Resolve(context.Background(), issueIntent(), receipt, before)
	if result.Tier != domain.TierDiff || result.OutcomeID != 5 {
		t.Fatalf("got tier %s id %d, want diff 5", result.Tier, result.OutcomeID)
	}
}

func TestResolveTertiaryDiff(t *testing.T) {
	reader := &stubReader{ids: []uint64{3, 8, 21}}
	r := New(reader, nil)
	before := &domain.StateSnapshot{Subject: subjectAddr, CardIDs: []uint64{3, 8}}

	result := r.Resolve(context.Background(), issueIntent(), receiptWith(), before)
	if result.OutcomeID != 21 || result.Tier != domain.TierDiff {
		t.Fatalf("got tier %s id %d, want diff 21", result.Tier, result.OutcomeID)
	}
	if !reader.queried {
		t.Fatal("tertiary tier must query the ledger")
	}
}

func TestResolveAmbiguousDiffIsSentinel(t *testing.T) {
	tests := []struct {
		name  string
		after []uint64
	}{
		{"no new ids", []uint64{3, 8}},
		{"two new ids", []uint64{3, 8, 21, 34}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(&stubReader{ids: tt.after}, nil)
			before := &domain.StateSnapshot{Subject: subjectAddr, CardIDs: []uint64{3, 8}}

			result := r.Resolve(context.Background(), issueIntent(), receiptWith(), before)
			if result.OutcomeID != domain.UnknownOutcome {
				t.Fatalf("OutcomeID = %d, want unknown sentinel", result.OutcomeID)
			}
			if result.Tier != domain.TierUnknown {
				t.Fatalf("Tier = %s, want %s", result.Tier, domain.TierUnknown)
			}
			if result.TxHash == "" {
				t.Fatal("sentinel result must still carry the tx hash")
			}
		})
	}
}

func TestResolveMissingSnapshotIsSentinel(t *testing.T) {
	r := New(&stubReader{ids: []uint64{1}}, nil)
	result := r.Resolve(context.Background(), issueIntent(), receiptWith(), nil)
	if result.OutcomeID != domain.UnknownOutcome || result.Tier != domain.TierUnknown {
		t.Fatalf("got tier %s id %d, want unknown sentinel", result.Tier, result.OutcomeID)
	}
}

func TestResolveReaderFailureIsSentinel(t *testing.T) {
	r := New(&stubReader{err: errors.New("rpc down")}, nil)
	before := &domain.StateSnapshot{Subject: subjectAddr}

	result := r.Resolve(context.Background(), issueIntent(), receiptWith(), before)
	if result.OutcomeID != domain.UnknownOutcome {
		t.Fatalf("OutcomeID = %d, want unknown sentinel", result.OutcomeID)
	}
}

func TestResolveCaseInsensitiveAddressMatch(t *testing.T) {
	r := New(&failReader{t: t}, nil)
	intent := issueIntent()
	intent.Contract = "0xABCD000000000000000000000000000000000001"
	receipt := receiptWith(completionLog("0xabcd000000000000000000000000000000000001", domain.IntentIssue, 11))

	result := r.Resolve(context.Background(), intent, receipt, nil)
	if result.OutcomeID != 11 || result.Tier != domain.TierEvent {
		t.Fatalf("got tier %s id %d, want event 11", result.Tier, result.OutcomeID)
	}
}
