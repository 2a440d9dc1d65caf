// Package signer abstracts the agent that authorizes transactions on the
// user's behalf. The engine never sees key material; it hands a prepared
// transaction to the signer and gets back a raw signed payload, or a
// vendor-coded rejection when the user declines.
package signer

import "context"

// TxRequest is a prepared, unsigned transaction.
type TxRequest struct {
	From string // signer account
	To   string // target contract
	Data string // 0x-prefixed calldata
	Gas  uint64 // gas limit from estimation
}

// Signer authorizes transactions. A user declining the signing prompt
// surfaces as an error carrying the vendor cancellation code.
type Signer interface {
	// Account returns the account this signer signs for.
	Account() string

	// SignTransaction returns the raw signed transaction, hex encoded.
	SignTransaction(ctx context.Context, req TxRequest) (string, error)
}
