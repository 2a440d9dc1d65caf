package domain

// UnknownOutcome is the sentinel outcome id returned when the write
// transaction succeeded but its specific result could not be confirmed.
// A sentinel result is a signaled, not silent, degradation: the caller
// presents "succeeded, outcome unconfirmed", never an error.
const UnknownOutcome uint64 = 0

// ResolutionTier names which fallback produced a result.
type ResolutionTier string

const (
	TierEvent    ResolutionTier = "event"    // primary decode of the contract's own event
	TierTransfer ResolutionTier = "transfer" // generic ownership-transfer log
	TierDiff     ResolutionTier = "diff"     // before/after snapshot difference
	TierUnknown  ResolutionTier = "unknown"  // every fallback failed
)

// ResolutionResult is the terminal value of a successful flow.
type ResolutionResult struct {
	OutcomeID uint64         `json:"outcome_id"`
	TxHash    string         `json:"tx_hash"`
	Tier      ResolutionTier `json:"tier"`
}

// Confirmed reports whether the outcome id was actually determined.
func (r ResolutionResult) Confirmed() bool {
	return r.OutcomeID != UnknownOutcome
}
