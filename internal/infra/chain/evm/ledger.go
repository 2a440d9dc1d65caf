// Package evm adapts the engine's ledger interfaces to an EVM-style
// chain over JSON-RPC.
package evm

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/repcard/engine/internal/core/domain"
	"github.com/repcard/engine/internal/infra/rpc"
	"github.com/repcard/engine/internal/infra/signer"
)

// Config holds chain adapter settings.
type Config struct {
	// CardContract is the registry queried for a subject's owned cards.
	CardContract string `yaml:"card_contract"`

	// CardsFunction is the read call enumerating a subject's card ids.
	CardsFunction string `yaml:"cards_function"`

	// PollInterval is the receipt polling cadence.
	PollInterval time.Duration `yaml:"poll_interval"`

	// WaitTimeout bounds one confirmation wait. The engine's retrier
	// treats a timed-out wait exactly like a failed send.
	WaitTimeout time.Duration `yaml:"wait_timeout"`
}

// Ledger implements submit.Ledger and resolve.LedgerReader against an
// EVM JSON-RPC endpoint set.
type Ledger struct {
	client *rpc.Client
	signer signer.Signer
	cfg    Config
	log    *slog.Logger
}

func NewLedger(client *rpc.Client, s signer.Signer, cfg Config, log *slog.Logger) *Ledger {
	if cfg.CardsFunction == "" {
		cfg.CardsFunction = "cardsOf(address)"
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.WaitTimeout == 0 {
		cfg.WaitTimeout = 2 * time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &Ledger{client: client, signer: s, cfg: cfg, log: log}
}

// Send encodes, estimates, signs and broadcasts the intent's call,
// returning the transaction hash. Non-idempotent: every invocation is a
// new physical submission.
func (l *Ledger) Send(ctx context.Context, intent domain.TransactionIntent) (string, error) {
	// The agent only signs for its own account; catch the mismatch
	// before spending an estimation round trip.
	if from := l.signer.Account(); from != "" && !strings.EqualFold(from, intent.Signer) {
		return "", fmt.Errorf("signer account mismatch: intent wants %s, agent signs for %s", intent.Signer, from)
	}

	data, err := EncodeCall(intent.Function, intent.Args)
	if err != nil {
		return "", fmt.Errorf("encode call: %w", err)
	}

	gas, err := l.estimateGas(ctx, intent.Signer, intent.Contract, data)
	if err != nil {
		return "", fmt.Errorf("gas estimation failed: %w", err)
	}

	raw, err := l.signer.SignTransaction(ctx, signer.TxRequest{
		From: intent.Signer,
		To:   intent.Contract,
		Data: data,
		Gas:  gas,
	})
	if err != nil {
		return "", err
	}

	result, err := l.client.Call(ctx, "eth_sendRawTransaction", []any{raw})
	if err != nil {
		return "", err
	}

	hash, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("invalid send response %T", result)
	}
	return hash, nil
}

// WaitMined polls for the transaction receipt until it is available, the
// wait times out, or ctx is cancelled. A reverted receipt is a failure:
// the resolver only ever sees receipts of successful transactions.
func (l *Ledger) WaitMined(ctx context.Context, txHash string) (*domain.ConfirmationReceipt, error) {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.WaitTimeout)
	defer cancel()

	ticker := time.NewTicker(l.cfg.PollInterval)
	defer ticker.Stop()

	for {
		receipt, err := l.fetchReceipt(ctx, txHash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			if receipt.Status == 0 {
				return nil, fmt.Errorf("transaction %s reverted in block %d", txHash, receipt.BlockNumber)
			}
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("confirmation wait for %s: %w", txHash, ctx.Err())
		case <-ticker.C:
		}
	}
}

// OwnedCards enumerates the card ids currently held by subject.
func (l *Ledger) OwnedCards(ctx context.Context, subject string) ([]uint64, error) {
	data, err := EncodeAddressCall(l.cfg.CardsFunction, subject)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", l.cfg.CardsFunction, err)
	}

	result, err := l.client.Call(ctx, "eth_call", []any{
		map[string]any{"to": l.cfg.CardContract, "data": data},
		"latest",
	})
	if err != nil {
		return nil, fmt.Errorf("eth_call failed: %w", err)
	}

	payload, ok := result.(string)
	if !ok {
		return nil, fmt.Errorf("invalid call response %T", result)
	}
	return DecodeUintArray(payload)
}

// Healthy reports whether the underlying RPC client has a live provider.
func (l *Ledger) Healthy() bool {
	return l.client.Healthy()
}

func (l *Ledger) estimateGas(ctx context.Context, from, to, data string) (uint64, error) {
	result, err := l.client.Call(ctx, "eth_estimateGas", []any{
		map[string]any{"from": from, "to": to, "data": data},
	})
	if err != nil {
		return 0, err
	}

	gasHex, ok := result.(string)
	if !ok {
		return 0, fmt.Errorf("invalid gas estimate response %T", result)
	}
	return parseHexUint(gasHex)
}

func (l *Ledger) fetchReceipt(ctx context.Context, txHash string) (*domain.ConfirmationReceipt, error) {
	result, err := l.client.Call(ctx, "eth_getTransactionReceipt", []any{txHash})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil // Not mined yet
	}

	raw, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid receipt format %T", result)
	}
	return parseReceipt(raw)
}

func parseReceipt(raw map[string]any) (*domain.ConfirmationReceipt, error) {
	status, _ := parseHexUint(getString(raw["status"]))
	blockNumber, _ := parseHexUint(getString(raw["blockNumber"]))

	receipt := &domain.ConfirmationReceipt{
		TxHash:      getString(raw["transactionHash"]),
		BlockNumber: blockNumber,
		Status:      status,
	}

	rawLogs, _ := raw["logs"].([]any)
	for _, rl := range rawLogs {
		logMap, ok := rl.(map[string]any)
		if !ok {
			continue
		}
		l := domain.RawLog{
			Address: getString(logMap["address"]),
			Data:    getString(logMap["data"]),
		}
		if topics, ok := logMap["topics"].([]any); ok {
			for _, t := range topics {
				l.Topics = append(l.Topics, getString(t))
			}
		}
		receipt.Logs = append(receipt.Logs, l)
	}
	return receipt, nil
}

func parseHexUint(s string) (uint64, error) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return 0, fmt.Errorf("empty hex string")
	}
	return strconv.ParseUint(s, 16, 64)
}

func getString(v any) string {
	s, _ := v.(string)
	return s
}
