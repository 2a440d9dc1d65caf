package domain

// RawLog is an undecoded event record attached to a receipt. Opaque until
// matched against a known event topic.
type RawLog struct {
	Address string   `json:"address"`
	Topics  []string `json:"topics"`
	Data    string   `json:"data"`
}

// ConfirmationReceipt is the ledger's confirmation that a signed request
// was included and finalized. Produced once per successful physical
// submission; immutable.
type ConfirmationReceipt struct {
	TxHash      string   `json:"tx_hash"`
	BlockNumber uint64   `json:"block_number"`
	Status      uint64   `json:"status"` // 1 = success, 0 = reverted
	Logs        []RawLog `json:"logs"`
}
