package domain

// ErrorCode is a taxonomy key for classified failures.
type ErrorCode string

const (
	CodeUserCancelled       ErrorCode = "user_cancelled"
	CodeNetworkOrTimeout    ErrorCode = "network_or_timeout"
	CodeNonceConflict       ErrorCode = "nonce_conflict"
	CodeRateLimited         ErrorCode = "rate_limited"
	CodeGasEstimation       ErrorCode = "gas_estimation_failed"
	CodeAlreadyClaimed      ErrorCode = "already_claimed"
	CodePaused              ErrorCode = "paused"
	CodeSupplyExhausted     ErrorCode = "supply_exhausted"
	CodeUnauthorized        ErrorCode = "unauthorized"
	CodeInvalidSignature    ErrorCode = "invalid_signature_or_nonce"
	CodeDuplicateSubmission ErrorCode = "duplicate_submission"
	CodeUnknown             ErrorCode = "unknown"
)

// ClassifiedError is the terminal failure shape surfaced to callers.
// Derived from an arbitrary failure, never mutated afterwards.
type ClassifiedError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	UserAction string    `json:"user_action"`
	Retryable  bool      `json:"retryable"`
}

func (e *ClassifiedError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// IsUserCancelled reports whether the failure came from the signer
// rejecting the request. Cancellations are never retried and never
// shown as error notifications.
func (e *ClassifiedError) IsUserCancelled() bool {
	return e.Code == CodeUserCancelled
}

// BusinessRuleRejected reports whether the failure is a contract-level
// rule rejection. These are deterministic and never retried.
func (e *ClassifiedError) BusinessRuleRejected() bool {
	switch e.Code {
	case CodeAlreadyClaimed, CodePaused, CodeSupplyExhausted,
		CodeUnauthorized, CodeInvalidSignature, CodeDuplicateSubmission:
		return true
	}
	return false
}
