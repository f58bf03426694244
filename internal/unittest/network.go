package unittest

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/p2p/enode"
	"github.com/ethereum/go-ethereum/p2p/enr"
	libp2pcrypto "github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/stretchr/testify/require"
)

// EnodeFixture returns a valid enode URL for a freshly generated key.
func EnodeFixture(t *testing.T) string {
	t.Helper()
	key := PrivateKeyFixture(t)
	return enode.NewV4(&key.PublicKey, net.ParseIP("127.0.0.1"), 30303, 30303).URLv4()
}

// ENRFixture returns a valid, signed "enr:" record for a freshly generated key.
func ENRFixture(t *testing.T) string {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err, "failed to generate enr key")

	var r enr.Record
	r.Set(enr.IPv4(net.ParseIP("127.0.0.1")))
	r.Set(enr.TCP(9000))
	r.Set(enr.UDP(9000))
	require.NoError(t, enode.SignV4(&r, key), "failed to sign enr")

	n, err := enode.New(enode.ValidSchemes, &r)
	require.NoError(t, err, "failed to build node from enr")
	return n.String()
}

// PeerIDFixture returns a valid libp2p peer id string.
func PeerIDFixture(t *testing.T) string {
	t.Helper()
	priv, _, err := libp2pcrypto.GenerateSecp256k1Key(rand.Reader)
	require.NoError(t, err, "failed to generate libp2p key")

	id, err := peer.IDFromPrivateKey(priv)
	require.NoError(t, err, "failed to derive peer id")
	return id.String()
}

// FakePeer is a test HTTP server standing in for a node's RPC endpoint.
type FakePeer struct {
	*httptest.Server
	hits atomic.Int64
}

// Hits returns the number of requests served.
func (p *FakePeer) Hits() int64 {
	return p.hits.Load()
}

// NewFakeExecutionPeer serves admin_nodeInfo with the given enode. The server is
// closed when the test ends.
func NewFakeExecutionPeer(t *testing.T, enodeURL string) *FakePeer {
	t.Helper()
	p := &FakePeer{}
	p.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.hits.Add(1)

		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if req.Method == "admin_nodeInfo" {
			resp["result"] = map[string]interface{}{
				"id":         "00",
				"name":       "Geth/test",
				"enode":      enodeURL,
				"ip":         "127.0.0.1",
				"listenAddr": "[::]:30303",
				"ports":      map[string]int{"discovery": 30303, "listener": 30303},
				"protocols":  map[string]interface{}{},
			}
		} else {
			resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found"}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(p.Close)
	return p
}

// NewFakeBeaconPeer serves /eth/v1/node/identity with the given ENR and peer id.
// The server is closed when the test ends.
func NewFakeBeaconPeer(t *testing.T, enrString, peerID string) *FakePeer {
	t.Helper()
	p := &FakePeer{}
	p.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.hits.Add(1)
		if r.URL.Path != "/eth/v1/node/identity" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"peer_id":             peerID,
				"enr":                 enrString,
				"p2p_addresses":       []string{"/ip4/127.0.0.1/tcp/9000/p2p/" + peerID},
				"discovery_addresses": []string{"/ip4/127.0.0.1/udp/9000/p2p/" + peerID},
				"metadata":            map[string]string{"seq_number": "1", "attnets": "0x00"},
			},
		})
	}))
	t.Cleanup(p.Close)
	return p
}

// NewStaticServer serves the same status and body for every request.
func NewStaticServer(t *testing.T, status int, body string) *FakePeer {
	t.Helper()
	p := &FakePeer{}
	p.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(p.Close)
	return p
}

// ClosedEndpoint returns an HTTP URL nothing listens on.
func ClosedEndpoint(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("http://127.0.0.1:%d", NewPort(t))
}

// NewBlockingServer accepts requests and never answers until release is closed
// or the client gives up.
func NewBlockingServer(t *testing.T, release <-chan struct{}) *FakePeer {
	t.Helper()
	p := &FakePeer{}
	p.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.hits.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(p.Close)
	return p
}
