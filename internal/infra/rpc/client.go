// Package rpc provides a multi-provider JSON-RPC client with failover.
//
// Backoff retries live in the engine's retry package; this layer only
// decides whether a failure is worth handing to the next provider. A
// JSON-RPC application error is deterministic and returned immediately;
// transport trouble and endpoint rate limits fail over.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/repcard/engine/internal/engine/metrics"
	"github.com/repcard/engine/internal/infra/rpc/provider"
)

// Client fans a call across an ordered list of providers.
type Client struct {
	providers []provider.Provider
	log       *slog.Logger
}

// NewClient creates a client over the given providers. Order matters:
// earlier providers are preferred.
func NewClient(providers []provider.Provider, log *slog.Logger) (*Client, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("no rpc providers configured")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{providers: providers, log: log}, nil
}

// Call executes method against the first provider that answers. An
// application-level RPC error stops the failover chain: every provider
// would return the same verdict.
func (c *Client) Call(ctx context.Context, method string, params []any) (any, error) {
	var lastErr error

	for _, p := range c.providers {
		start := time.Now()
		result, err := p.Call(ctx, method, params)
		latency := time.Since(start)

		metrics.RPCCallsTotal.WithLabelValues(p.GetName(), method).Inc()
		metrics.RPCLatency.WithLabelValues(p.GetName(), method).Observe(latency.Seconds())

		if err == nil {
			return result, nil
		}

		metrics.RPCErrorsTotal.WithLabelValues(p.GetName(), method).Inc()
		lastErr = err

		var rpcErr *provider.Error
		if errors.As(err, &rpcErr) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, err
		}

		c.log.Debug("provider failed, trying next",
			"provider", p.GetName(), "method", method, "error", err)
	}

	return nil, fmt.Errorf("all providers failed for %s: %w", method, lastErr)
}

// Healthy reports whether at least one provider is available.
func (c *Client) Healthy() bool {
	for _, p := range c.providers {
		if p.IsAvailable() {
			return true
		}
	}
	return false
}

// ProviderHealth returns the health of every provider keyed by name.
func (c *Client) ProviderHealth() map[string]provider.HealthStatus {
	out := make(map[string]provider.HealthStatus, len(c.providers))
	for _, p := range c.providers {
		out[p.GetName()] = p.GetHealth()
	}
	return out
}

// Close closes all providers.
func (c *Client) Close() error {
	var errs []string
	for _, p := range c.providers {
		if err := p.Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("closing providers: %s", strings.Join(errs, "; "))
	}
	return nil
}
