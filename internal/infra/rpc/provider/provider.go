// Package provider implements JSON-RPC provider endpoints.
//
// This package contains:
//   - Provider interface: core abstraction for RPC endpoints
//   - HTTPProvider: JSON-RPC over HTTP implementation
//   - Error: a JSON-RPC application error carrying its vendor code
package provider

import (
	"context"
	"fmt"
	"time"
)

// Provider defines the interface for a single RPC endpoint.
type Provider interface {
	// GetName returns the provider identifier (e.g., "alchemy", "infura")
	GetName() string

	// Call makes a single JSON-RPC request
	Call(ctx context.Context, method string, params []any) (any, error)

	// GetHealth returns current health metrics
	GetHealth() HealthStatus

	// IsAvailable checks if the provider is healthy enough to use
	IsAvailable() bool

	// Close cleans up resources
	Close() error
}

// HealthStatus represents the health state of a provider.
type HealthStatus struct {
	Available     bool
	Latency       time.Duration
	ErrorRate     float64
	LastSuccessAt time.Time
	LastFailureAt time.Time
}

// Error is a JSON-RPC application-level error. The code is preserved so
// upper layers can tell a vendor rejection (e.g. a signing agent's user
// cancellation, code 4001) from transport trouble.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// ErrorCode returns the vendor code for classification.
func (e *Error) ErrorCode() int {
	return e.Code
}
