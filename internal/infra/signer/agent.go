package signer

import (
	"context"
	"fmt"
	"time"

	"github.com/repcard/engine/internal/infra/rpc/provider"
)

// AgentSigner talks JSON-RPC to a wallet agent (a keystore daemon or a
// browser-wallet bridge). The agent owns nonce management and key
// material; a declined prompt comes back as code 4001 and flows through
// classification as a user cancellation.
type AgentSigner struct {
	account  string
	provider provider.Provider
}

// NewAgent creates a signer backed by the wallet agent at endpoint.
func NewAgent(account, endpoint string, timeout time.Duration) *AgentSigner {
	return &AgentSigner{
		account:  account,
		provider: provider.NewHTTPProvider("wallet-agent", endpoint, timeout),
	}
}

// Account returns the signing account.
func (s *AgentSigner) Account() string {
	return s.account
}

// SignTransaction asks the agent to sign the prepared transaction.
func (s *AgentSigner) SignTransaction(ctx context.Context, req TxRequest) (string, error) {
	params := []any{map[string]any{
		"from": req.From,
		"to":   req.To,
		"data": req.Data,
		"gas":  fmt.Sprintf("0x%x", req.Gas),
	}}

	result, err := s.provider.Call(ctx, "eth_signTransaction", params)
	if err != nil {
		return "", err
	}

	switch v := result.(type) {
	case string:
		return v, nil
	case map[string]any:
		if raw, ok := v["raw"].(string); ok {
			return raw, nil
		}
	}
	return "", fmt.Errorf("unexpected sign response shape %T", result)
}

// Close releases the agent connection.
func (s *AgentSigner) Close() error {
	return s.provider.Close()
}
