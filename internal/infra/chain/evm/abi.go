package evm

import (
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"
)

// EncodeCall builds 0x-prefixed calldata for a function call. The
// signature is the canonical form, e.g. "issueCard(address,uint256)",
// and args are rendered one per parameter: addresses as 0x-hex, integers
// as decimal or 0x-hex, bools as "true"/"false", bytes32 as 0x-hex.
// Only static parameter types are supported; the card contract's write
// surface does not use dynamic ones.
func EncodeCall(signature string, args []string) (string, error) {
	types, err := paramTypes(signature)
	if err != nil {
		return "", err
	}
	if len(types) != len(args) {
		return "", fmt.Errorf("%s expects %d arguments, got %d", signature, len(types), len(args))
	}

	var b strings.Builder
	b.WriteString("0x")
	b.WriteString(selector(signature))

	for i, typ := range types {
		word, err := encodeWord(typ, args[i])
		if err != nil {
			return "", fmt.Errorf("argument %d (%s): %w", i, typ, err)
		}
		b.WriteString(word)
	}
	return b.String(), nil
}

// EncodeAddressCall is the common single-address read call shape.
func EncodeAddressCall(signature, address string) (string, error) {
	return EncodeCall(signature, []string{address})
}

// DecodeUintArray decodes an ABI-encoded uint256[] return value.
func DecodeUintArray(data string) ([]uint64, error) {
	hexData := strings.TrimPrefix(strings.ToLower(data), "0x")
	if hexData == "" {
		return nil, nil
	}
	if len(hexData)%64 != 0 || len(hexData) < 128 {
		return nil, fmt.Errorf("malformed array payload of %d hex chars", len(hexData))
	}

	// Head word is the offset to the array, second is the length.
	length, err := wordToUint64(hexData[64:128])
	if err != nil {
		return nil, fmt.Errorf("array length: %w", err)
	}
	if uint64(len(hexData)) < 128+length*64 {
		return nil, fmt.Errorf("array payload truncated: %d elements declared", length)
	}

	ids := make([]uint64, 0, length)
	for i := uint64(0); i < length; i++ {
		start := 128 + i*64
		id, err := wordToUint64(hexData[start : start+64])
		if err != nil {
			return nil, fmt.Errorf("array element %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// selector returns the first 4 bytes of the keccak hash of the
// canonical signature, hex encoded.
func selector(signature string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return fmt.Sprintf("%x", h.Sum(nil)[:4])
}

func paramTypes(signature string) ([]string, error) {
	open := strings.IndexByte(signature, '(')
	if open <= 0 || !strings.HasSuffix(signature, ")") {
		return nil, fmt.Errorf("malformed signature %q", signature)
	}
	inner := signature[open+1 : len(signature)-1]
	if inner == "" {
		return nil, nil
	}
	types := strings.Split(inner, ",")
	for i := range types {
		types[i] = strings.TrimSpace(types[i])
	}
	return types, nil
}

func encodeWord(typ, value string) (string, error) {
	switch {
	case typ == "address":
		hexAddr := strings.TrimPrefix(strings.ToLower(value), "0x")
		if len(hexAddr) != 40 || !isHex(hexAddr) {
			return "", fmt.Errorf("invalid address %q", value)
		}
		return strings.Repeat("0", 24) + hexAddr, nil

	case typ == "bool":
		switch value {
		case "true":
			return strings.Repeat("0", 63) + "1", nil
		case "false":
			return strings.Repeat("0", 64), nil
		}
		return "", fmt.Errorf("invalid bool %q", value)

	case typ == "bytes32":
		hexVal := strings.TrimPrefix(strings.ToLower(value), "0x")
		if len(hexVal) != 64 || !isHex(hexVal) {
			return "", fmt.Errorf("invalid bytes32 %q", value)
		}
		return hexVal, nil

	case strings.HasPrefix(typ, "uint") || strings.HasPrefix(typ, "int"):
		n := new(big.Int)
		var ok bool
		if strings.HasPrefix(value, "0x") {
			_, ok = n.SetString(strings.TrimPrefix(value, "0x"), 16)
		} else {
			_, ok = n.SetString(value, 10)
		}
		if !ok || n.Sign() < 0 {
			return "", fmt.Errorf("invalid integer %q", value)
		}
		word := n.Text(16)
		if len(word) > 64 {
			return "", fmt.Errorf("integer %q exceeds 256 bits", value)
		}
		return strings.Repeat("0", 64-len(word)) + word, nil
	}

	return "", fmt.Errorf("unsupported parameter type %q", typ)
}

func wordToUint64(word string) (uint64, error) {
	n, ok := new(big.Int).SetString(word, 16)
	if !ok {
		return 0, fmt.Errorf("invalid hex word %q", word)
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("value %s exceeds 64 bits", n)
	}
	return n.Uint64(), nil
}

func isHex(s string) bool {
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
