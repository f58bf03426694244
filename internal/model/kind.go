package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExecutionClientKind identifies which execution client implementation a node runs.
// The zero value is Geth.
type ExecutionClientKind uint8

const (
	Geth ExecutionClientKind = iota
	Reth
)

// String returns the canonical name used in persisted node data.
func (k ExecutionClientKind) String() string {
	switch k {
	case Geth:
		return "Geth"
	case Reth:
		return "Reth"
	default:
		return fmt.Sprintf("ExecutionClientKind(%d)", uint8(k))
	}
}

// ParseExecutionClientKind accepts "geth" or "reth" in any letter case.
func ParseExecutionClientKind(s string) (ExecutionClientKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "geth":
		return Geth, nil
	case "reth":
		return Reth, nil
	default:
		return Geth, fmt.Errorf("unknown execution client kind %q", s)
	}
}

func (k ExecutionClientKind) MarshalJSON() ([]byte, error) {
	if k != Geth && k != Reth {
		return nil, fmt.Errorf("marshal execution client kind: invalid value %d", uint8(k))
	}
	return json.Marshal(k.String())
}

func (k *ExecutionClientKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshal execution client kind: %w", err)
	}
	parsed, err := ParseExecutionClientKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
