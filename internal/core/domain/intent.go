package domain

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// IntentKind identifies the kind of state change an intent requests.
type IntentKind string

const (
	IntentIssue  IntentKind = "issue"
	IntentClaim  IntentKind = "claim"
	IntentRevoke IntentKind = "revoke"
)

// ValidKind reports whether k is a known intent kind.
func ValidKind(k IntentKind) bool {
	switch k {
	case IntentIssue, IntentClaim, IntentRevoke:
		return true
	}
	return false
}

// TransactionIntent is a caller's request to change ledger state, prior to
// signing. Immutable once created; consumed once per Execute call.
type TransactionIntent struct {
	Kind     IntentKind `json:"kind"`
	Contract string     `json:"contract"` // target contract address
	Function string     `json:"function"` // full signature, e.g. "issueCard(address,uint256)"
	Args     []string   `json:"args"`     // ordered, rendered per ABI type
	Signer   string     `json:"signer"`   // account that authorizes the call
	Subject  string     `json:"subject"`  // profile the outcome belongs to
}

// Fingerprint returns a stable identifier for the intent, used to guard
// against duplicate concurrent submissions of the same request.
func (i TransactionIntent) Fingerprint() string {
	h := sha3.NewLegacyKeccak256()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s",
		i.Kind,
		strings.ToLower(i.Contract),
		i.Function,
		strings.Join(i.Args, ","),
		strings.ToLower(i.Signer),
	)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Validate checks the intent is well-formed enough to submit.
func (i TransactionIntent) Validate() error {
	if !ValidKind(i.Kind) {
		return fmt.Errorf("unknown intent kind %q", i.Kind)
	}
	if i.Contract == "" {
		return fmt.Errorf("intent missing target contract")
	}
	if i.Function == "" {
		return fmt.Errorf("intent missing function signature")
	}
	if i.Signer == "" {
		return fmt.Errorf("intent missing signer account")
	}
	return nil
}
