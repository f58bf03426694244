package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHexRoundTrip(t *testing.T) {
	b, err := HexToBytes("0xdeadbeef")
	require.NoError(t, err)
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, b)
	require.Equal(t, "0xdeadbeef", ByteToHex(b))

	b, err = HexToBytes("  cafe\n")
	require.NoError(t, err)
	require.Equal(t, []byte{0xca, 0xfe}, b)

	_, err = HexToBytes("0xzz")
	require.Error(t, err)
}

func TestAddresses(t *testing.T) {
	require.Equal(t, "http://127.0.0.1:8545", LocalAddress(8545))
	require.Equal(t, "http://10.0.0.2:5052", HTTPAddress("10.0.0.2", 5052))
}

func TestHexBytesJSON(t *testing.T) {
	var v struct {
		Plain    HexBytes `json:"plain"`
		Prefixed HexBytes `json:"prefixed"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"plain":"abcd","prefixed":"0x01ff"}`), &v))
	require.Equal(t, HexBytes{0xab, 0xcd}, v.Plain)
	require.Equal(t, HexBytes{0x01, 0xff}, v.Prefixed)

	out, err := json.Marshal(v.Plain)
	require.NoError(t, err)
	require.Equal(t, `"0xabcd"`, string(out))

	require.Error(t, json.Unmarshal([]byte(`{"plain":12}`), &v))
	require.Error(t, json.Unmarshal([]byte(`{"plain":"xyz"}`), &v))
}
