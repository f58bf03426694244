package utils

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// ByteToHex converts a byte slice to a hexadecimal string prefixed with "0x".
func ByteToHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// HexToBytes decodes a hexadecimal string with or without the "0x" prefix.
func HexToBytes(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return b, nil
}

// LocalAddress returns a string representing the local address for a given port.
func LocalAddress(port int) string {
	return HTTPAddress("127.0.0.1", port)
}

// HTTPAddress returns the plain HTTP URL of host:port.
func HTTPAddress(host string, port int) string {
	return fmt.Sprintf("http://%s:%d", host, port)
}

// HexBytes is a byte slice carried in JSON as a hex string, with or without "0x".
type HexBytes []byte

// MarshalJSON encodes b as a 0x-prefixed hex string.
func (b HexBytes) MarshalJSON() ([]byte, error) {
	return []byte(`"` + ByteToHex(b) + `"`), nil
}

// UnmarshalJSON decodes a hex string.
func (b *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode hex string: %w", err)
	}
	decoded, err := HexToBytes(s)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}
