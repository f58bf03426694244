package model_test

import (
	"encoding/json"
	"testing"

	"github.com/PolyhedraZK/nbnet/internal/model"
	"github.com/stretchr/testify/require"
)

// TestExecutionClientKindDefault verifies the zero value is Geth.
func TestExecutionClientKindDefault(t *testing.T) {
	var k model.ExecutionClientKind
	require.Equal(t, model.Geth, k)
	require.Equal(t, "Geth", k.String())
}

// TestParseExecutionClientKind verifies parsing is case-insensitive and rejects unknown names.
func TestParseExecutionClientKind(t *testing.T) {
	tests := []struct {
		in      string
		want    model.ExecutionClientKind
		wantErr bool
	}{
		{in: "geth", want: model.Geth},
		{in: "Reth", want: model.Reth},
		{in: " RETH ", want: model.Reth},
		{in: "nethermind", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := model.ParseExecutionClientKind(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

// TestExecutionClientKindJSON verifies the persisted form uses the kind name.
func TestExecutionClientKindJSON(t *testing.T) {
	b, err := json.Marshal(model.Reth)
	require.NoError(t, err)
	require.JSONEq(t, `"Reth"`, string(b))

	var k model.ExecutionClientKind
	require.NoError(t, json.Unmarshal([]byte(`"Geth"`), &k))
	require.Equal(t, model.Geth, k)

	require.Error(t, json.Unmarshal([]byte(`"Besu"`), &k))

	_, err = json.Marshal(model.ExecutionClientKind(7))
	require.Error(t, err)
}

// TestNodeEndpoints verifies endpoint and path helpers.
func TestNodeEndpoints(t *testing.T) {
	n := model.Node{
		ID:   3,
		Host: "10.0.0.5",
		Home: "/data/nbnet/3",
		Ports: model.Ports{
			ELRPC:          8545,
			CLBeaconRPC:    5052,
			CLValidatorRPC: 5062,
		},
	}

	require.Equal(t, "http://10.0.0.5:8545", n.ExecutionRPC())
	require.Equal(t, "http://10.0.0.5:5052", n.BeaconRPC())
	require.Equal(t, "http://127.0.0.1:5062", n.ValidatorRPC())
	require.Equal(t, "/data/nbnet/3/cl/vc/validators/api-token.txt", n.ValidatorAPITokenPath())
}

func TestBootPeerSetIsEmpty(t *testing.T) {
	require.True(t, model.BootPeerSet{}.IsEmpty())
	require.False(t, model.BootPeerSet{ExecutionBootnodes: "enode://x"}.IsEmpty())
}
