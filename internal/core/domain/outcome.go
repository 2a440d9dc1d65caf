package domain

import "time"

// OutcomeRecord is the off-chain ledger entry written after a flow
// resolves. Recording is fire-and-forget: a failed write never affects
// the flow's returned result.
type OutcomeRecord struct {
	ID        string     `json:"id"         db:"id"`
	Subject   string     `json:"subject"    db:"subject"`
	Kind      IntentKind `json:"kind"       db:"intent_kind"`
	OutcomeID uint64     `json:"outcome_id" db:"outcome_id"`
	TxHash    string     `json:"tx_hash"    db:"tx_hash"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
