// Package classify maps arbitrary failures to the engine's error taxonomy.
//
// Classification is pure and total: it never panics, never performs I/O,
// and returns the same ClassifiedError for the same failure shape. The
// rules are an ordered table; the first match wins.
package classify

import (
	"errors"
	"strings"

	"github.com/repcard/engine/internal/core/domain"
)

// Coded is implemented by errors that carry a vendor or JSON-RPC error
// code. Signing agents report user rejection through these codes.
type Coded interface {
	ErrorCode() int
}

// EIP-1193 provider error codes used by signing agents.
const (
	codeUserRejected        = 4001
	codeUnauthorizedAccount = 4100
)

type rule struct {
	name  string
	match func(code int, msg string) bool
	out   domain.ClassifiedError
}

func substr(parts ...string) func(int, string) bool {
	return func(_ int, msg string) bool {
		for _, p := range parts {
			if strings.Contains(msg, p) {
				return true
			}
		}
		return false
	}
}

// Ordered: user cancellation first (it must never be retried and never
// toasted), then business-rule rejections, then transport-level kinds.
// Message matching is over the lowercased extracted message.
var rules = []rule{
	{
		name: "user cancelled",
		match: func(code int, msg string) bool {
			if code == codeUserRejected {
				return true
			}
			return substr("user rejected", "user denied", "rejected by user",
				"user cancelled", "user canceled", "request rejected")(code, msg)
		},
		out: domain.ClassifiedError{
			Code:       domain.CodeUserCancelled,
			Message:    "You cancelled the request in your wallet.",
			UserAction: "No action needed.",
			Retryable:  false,
		},
	},
	{
		name:  "already claimed",
		match: substr("already claimed", "already minted", "already issued", "card exists"),
		out: domain.ClassifiedError{
			Code:       domain.CodeAlreadyClaimed,
			Message:    "This card has already been claimed.",
			UserAction: "Check your profile for the existing card.",
			Retryable:  false,
		},
	},
	{
		name:  "paused",
		match: substr("paused", "claiming is closed", "not active"),
		out: domain.ClassifiedError{
			Code:       domain.CodePaused,
			Message:    "Claiming is currently paused for this card.",
			UserAction: "Try again once the issuer reopens claiming.",
			Retryable:  false,
		},
	},
	{
		name:  "supply exhausted",
		match: substr("supply exhausted", "max supply", "sold out", "exceeds supply", "no cards left"),
		out: domain.ClassifiedError{
			Code:       domain.CodeSupplyExhausted,
			Message:    "All cards of this type have been claimed.",
			UserAction: "No more cards are available.",
			Retryable:  false,
		},
	},
	{
		name: "unauthorized",
		match: func(code int, msg string) bool {
			if code == codeUnauthorizedAccount {
				return true
			}
			return substr("unauthorized", "not authorized", "caller is not",
				"not eligible", "not the issuer")(code, msg)
		},
		out: domain.ClassifiedError{
			Code:       domain.CodeUnauthorized,
			Message:    "This account is not allowed to perform the requested action.",
			UserAction: "Switch to an eligible account and try again.",
			Retryable:  false,
		},
	},
	{
		name:  "invalid signature",
		match: substr("invalid signature", "signature mismatch", "bad signature", "invalid proof"),
		out: domain.ClassifiedError{
			Code:       domain.CodeInvalidSignature,
			Message:    "The claim signature was rejected by the contract.",
			UserAction: "Request a fresh claim link and try again.",
			Retryable:  false,
		},
	},
	{
		name:  "nonce conflict",
		match: substr("nonce too low", "nonce too high", "replacement transaction underpriced", "already known"),
		out: domain.ClassifiedError{
			Code:       domain.CodeNonceConflict,
			Message:    "A pending transaction from this account conflicted with the request.",
			UserAction: "Wait for pending transactions to confirm.",
			Retryable:  true,
		},
	},
	{
		name:  "rate limited",
		match: substr("429", "rate limit", "too many requests", "quota", "plan limit", "count exceeded"),
		out: domain.ClassifiedError{
			Code:       domain.CodeRateLimited,
			Message:    "The network endpoint is rate limiting requests.",
			UserAction: "Wait a moment before trying again.",
			Retryable:  true,
		},
	},
	{
		name: "gas estimation",
		match: substr("cannot estimate gas", "gas required exceeds", "intrinsic gas",
			"out of gas", "gas estimation failed", "insufficient funds for gas"),
		out: domain.ClassifiedError{
			Code:       domain.CodeGasEstimation,
			Message:    "The network could not estimate fees for this transaction.",
			UserAction: "Check your balance covers network fees, then retry.",
			Retryable:  true,
		},
	},
	{
		name: "network or timeout",
		match: substr("timeout", "timed out", "deadline exceeded", "connection refused",
			"connection reset", "broken pipe", "no such host", "eof",
			"502", "503", "504", "network", "unreachable"),
		out: domain.ClassifiedError{
			Code:       domain.CodeNetworkOrTimeout,
			Message:    "The network did not respond in time.",
			UserAction: "Check your connection; the request will be retried.",
			Retryable:  true,
		},
	},
}

// unknown is the optimistic default: an unrecognized failure is assumed
// transient and left to the retrier's attempt budget.
var unknown = domain.ClassifiedError{
	Code:       domain.CodeUnknown,
	Message:    "Something went wrong while submitting the transaction.",
	UserAction: "Please try again.",
	Retryable:  true,
}

// Classify maps any failure to a taxonomy entry. Already-classified
// errors pass through unchanged so a failure is classified exactly once.
func Classify(err error) *domain.ClassifiedError {
	var ce *domain.ClassifiedError
	if errors.As(err, &ce) {
		return ce
	}

	code, msg := extract(err)
	for _, r := range rules {
		if r.match(code, msg) {
			out := r.out
			return &out
		}
	}

	out := unknown
	if err != nil {
		out.Message = unknown.Message + " (" + firstLine(err.Error()) + ")"
	}
	return &out
}

// extract walks a short, fixed chain of candidates: the vendor code if
// the failure carries one, the failure's own message, and one level of
// wrapped cause. No reflective probing beyond that.
func extract(err error) (int, string) {
	if err == nil {
		return 0, ""
	}

	code := 0
	var coded Coded
	if errors.As(err, &coded) {
		code = coded.ErrorCode()
	}

	msg := err.Error()
	if cause := errors.Unwrap(err); cause != nil {
		msg += " | " + cause.Error()
	}
	return code, strings.ToLower(msg)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
