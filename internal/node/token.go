// Package node reads the files a node's clients leave in its home directory,
// such as the validator client API token.
package node

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// APITokenPrefix starts every validator client API token.
const APITokenPrefix = "api-token-0x"

// ReadAPIToken reads a validator client API token, without surrounding whitespace.
func ReadAPIToken(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read api token: %w", err)
	}
	token := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(token, APITokenPrefix) || len(token) == len(APITokenPrefix) {
		return "", fmt.Errorf("api token %s is malformed", path)
	}
	if _, err := hex.DecodeString(strings.TrimPrefix(token, APITokenPrefix)); err != nil {
		return "", fmt.Errorf("api token %s is malformed: %w", path, err)
	}
	return token, nil
}
