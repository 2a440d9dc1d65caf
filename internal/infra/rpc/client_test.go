package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/repcard/engine/internal/infra/rpc/provider"
)

func jsonRPCServer(t *testing.T, handler func(method string) (any, map[string]any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			ID     any    `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode body: %v", err)
			return
		}
		result, rpcErr := handler(req.Method)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientFailover(t *testing.T) {
	var primaryCalls, secondaryCalls atomic.Int32

	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		primaryCalls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(primary.Close)

	secondary := jsonRPCServer(t, func(method string) (any, map[string]any) {
		secondaryCalls.Add(1)
		return "0x10", nil
	})

	client, err := NewClient([]provider.Provider{
		provider.NewHTTPProvider("primary", primary.URL, 2*time.Second),
		provider.NewHTTPProvider("secondary", secondary.URL, 2*time.Second),
	}, nil)
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}

	result, err := client.Call(context.Background(), "eth_blockNumber", []any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.(string) != "0x10" {
		t.Fatalf("result = %v, want 0x10", result)
	}
	if primaryCalls.Load() != 1 || secondaryCalls.Load() != 1 {
		t.Fatalf("primary=%d secondary=%d calls, want 1 each", primaryCalls.Load(), secondaryCalls.Load())
	}
}

func TestClientNoFailoverOnApplicationError(t *testing.T) {
	// A deterministic JSON-RPC error would get the same verdict from
	// every provider; failing over just burns quota.
	var secondaryCalls atomic.Int32

	primary := jsonRPCServer(t, func(method string) (any, map[string]any) {
		return nil, map[string]any{"code": float64(3), "message": "execution reverted: card already claimed"}
	})
	secondary := jsonRPCServer(t, func(method string) (any, map[string]any) {
		secondaryCalls.Add(1)
		return "0x10", nil
	})

	client, err := NewClient([]provider.Provider{
		provider.NewHTTPProvider("primary", primary.URL, 2*time.Second),
		provider.NewHTTPProvider("secondary", secondary.URL, 2*time.Second),
	}, nil)
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}

	_, err = client.Call(context.Background(), "eth_estimateGas", []any{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "already claimed") {
		t.Fatalf("error = %v, want the application error preserved", err)
	}
	if secondaryCalls.Load() != 0 {
		t.Fatal("application errors must not fail over")
	}
}

func TestClientAllProvidersFailed(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(down.Close)

	client, err := NewClient([]provider.Provider{
		provider.NewHTTPProvider("only", down.URL, 2*time.Second),
	}, nil)
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}

	if _, err := client.Call(context.Background(), "eth_blockNumber", []any{}); err == nil {
		t.Fatal("expected error when every provider fails")
	}
}

func TestClientRequiresProviders(t *testing.T) {
	if _, err := NewClient(nil, nil); err == nil {
		t.Fatal("expected error for empty provider list")
	}
}
