package domain

import (
	"reflect"
	"testing"
)

func TestFingerprintStable(t *testing.T) {
	intent := TransactionIntent{
		Kind:     IntentClaim,
		Contract: "0xABC0000000000000000000000000000000000001",
		Function: "claimCard(address,uint256)",
		Args:     []string{"0xfeed000000000000000000000000000000000002", "7"},
		Signer:   "0xFEED000000000000000000000000000000000002",
		Subject:  "0xfeed000000000000000000000000000000000002",
	}

	a := intent.Fingerprint()

	// Address casing must not change the identity.
	lowered := intent
	lowered.Contract = "0xabc0000000000000000000000000000000000001"
	lowered.Signer = "0xfeed000000000000000000000000000000000002"
	if b := lowered.Fingerprint(); a != b {
		t.Errorf("fingerprint changed with address casing: %s vs %s", a, b)
	}

	// Any argument change must.
	other := intent
	other.Args = []string{"0xfeed000000000000000000000000000000000002", "8"}
	if b := other.Fingerprint(); a == b {
		t.Error("different args produced the same fingerprint")
	}
}

func TestValidate(t *testing.T) {
	valid := TransactionIntent{
		Kind:     IntentIssue,
		Contract: "0xabc0000000000000000000000000000000000001",
		Function: "issueCard(address,uint256)",
		Signer:   "0xfeed000000000000000000000000000000000002",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid intent rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*TransactionIntent)
	}{
		{"unknown kind", func(i *TransactionIntent) { i.Kind = "upgrade" }},
		{"missing contract", func(i *TransactionIntent) { i.Contract = "" }},
		{"missing function", func(i *TransactionIntent) { i.Function = "" }},
		{"missing signer", func(i *TransactionIntent) { i.Signer = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := valid
			tt.mutate(&intent)
			if err := intent.Validate(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSnapshotDiff(t *testing.T) {
	tests := []struct {
		name   string
		before []uint64
		after  []uint64
		want   []uint64
	}{
		{"one added", []uint64{1, 2}, []uint64{1, 2, 9}, []uint64{9}},
		{"several added", []uint64{1}, []uint64{1, 5, 9}, []uint64{5, 9}},
		{"nothing added", []uint64{1, 2}, []uint64{1, 2}, nil},
		{"removal is not an addition", []uint64{1, 2}, []uint64{1}, nil},
		{"empty before", nil, []uint64{3}, []uint64{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := StateSnapshot{Subject: "0xfeed", CardIDs: tt.before}
			after := StateSnapshot{Subject: "0xfeed", CardIDs: tt.after}
			got := before.Diff(after)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Diff = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolutionResultConfirmed(t *testing.T) {
	if (ResolutionResult{OutcomeID: UnknownOutcome}).Confirmed() {
		t.Error("unknown sentinel reported as confirmed")
	}
	if !(ResolutionResult{OutcomeID: 1}).Confirmed() {
		t.Error("real outcome reported as unconfirmed")
	}
}
