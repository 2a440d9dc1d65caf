package evm

import (
	"fmt"
	"strings"
	"testing"
)

func TestSelector(t *testing.T) {
	// Known selectors for canonical signatures.
	tests := map[string]string{
		"transfer(address,uint256)": "a9059cbb",
		"balanceOf(address)":        "70a08231",
		"ownerOf(uint256)":          "6352211e",
		"totalSupply()":             "18160ddd",
	}
	for sig, want := range tests {
		if got := selector(sig); got != want {
			t.Errorf("selector(%q) = %s, want %s", sig, got, want)
		}
	}
}

func TestEncodeCall(t *testing.T) {
	addr := "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	data, err := EncodeCall("issueCard(address,uint256)", []string{addr, "42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(data, "0x") {
		t.Fatal("calldata must be 0x prefixed")
	}
	// 4-byte selector + two 32-byte words.
	if len(data) != 2+8+64+64 {
		t.Fatalf("calldata length %d, want %d", len(data), 2+8+64+64)
	}
	if !strings.Contains(data, strings.ToLower(strings.TrimPrefix(addr, "0x"))) {
		t.Fatal("calldata missing padded address")
	}
	if !strings.HasSuffix(data, fmt.Sprintf("%064x", 42)) {
		t.Fatal("calldata missing padded card id")
	}
}

func TestEncodeCallHexInteger(t *testing.T) {
	data, err := EncodeCall("claimCard(uint256)", []string{"0x2a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(data, fmt.Sprintf("%064x", 42)) {
		t.Fatal("hex integer argument not encoded")
	}
}

func TestEncodeCallRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		sig  string
		args []string
	}{
		{"arity mismatch", "issueCard(address,uint256)", []string{"1"}},
		{"bad address", "balanceOf(address)", []string{"0x1234"}},
		{"bad integer", "claimCard(uint256)", []string{"forty-two"}},
		{"negative integer", "claimCard(uint256)", []string{"-1"}},
		{"malformed signature", "issueCard(address", []string{"0x5FbDB2315678afecb367f032d93F642f64180aa3"}},
		{"dynamic type", "setName(string)", []string{"bob"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := EncodeCall(tt.sig, tt.args); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestDecodeUintArray(t *testing.T) {
	// offset(32) + length(2) + [3, 8]
	payload := "0x" +
		fmt.Sprintf("%064x", 32) +
		fmt.Sprintf("%064x", 2) +
		fmt.Sprintf("%064x", 3) +
		fmt.Sprintf("%064x", 8)

	ids, err := DecodeUintArray(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 8 {
		t.Fatalf("ids = %v, want [3 8]", ids)
	}
}

func TestDecodeUintArrayEmpty(t *testing.T) {
	payload := "0x" + fmt.Sprintf("%064x", 32) + fmt.Sprintf("%064x", 0)
	ids, err := DecodeUintArray(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("ids = %v, want empty", ids)
	}
}

func TestDecodeUintArrayTruncated(t *testing.T) {
	payload := "0x" + fmt.Sprintf("%064x", 32) + fmt.Sprintf("%064x", 5)
	if _, err := DecodeUintArray(payload); err == nil {
		t.Fatal("expected error for truncated payload")
	}
}
