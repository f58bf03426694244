// Package peerrpc queries a running node for the identity data other nodes need
// to peer with it: the execution client's enode and the beacon node's ENR and
// libp2p peer id.
package peerrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PolyhedraZK/nbnet/internal/model"
	"github.com/ethereum/go-ethereum/p2p"
	"github.com/ethereum/go-ethereum/p2p/enode"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single identity query.
const DefaultTimeout = 3 * time.Second

var (
	// ErrUnreachable is returned when the endpoint could not be reached or refused to serve.
	ErrUnreachable = errors.New("peer unreachable")
	// ErrMalformedResponse is returned when the endpoint answered with unusable data.
	ErrMalformedResponse = errors.New("malformed peer response")
)

// Identity is a beacon node's peering identity.
type Identity struct {
	ENR    string
	PeerID string
}

// nodeIdentity is the payload of the beacon API node identity endpoint.
type nodeIdentity struct {
	PeerID             string   `json:"peer_id"`
	Enr                string   `json:"enr"`
	P2PAddresses       []string `json:"p2p_addresses"`
	DiscoveryAddresses []string `json:"discovery_addresses"`
}

// Client performs single-shot identity queries. It never retries; callers own
// the retry policy.
type Client struct {
	logger     zerolog.Logger
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every query to d.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient replaces the HTTP client used for both query kinds.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Client.
func NewClient(logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		logger:     logger.With().Str("component", "peer-rpc").Logger(),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueryExecutionIdentity returns the enode URL of the execution client serving endpoint.
func (c *Client) QueryExecutionIdentity(ctx context.Context, endpoint string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	client, err := rpc.DialOptions(ctx, endpoint, rpc.WithHTTPClient(c.httpClient))
	if err != nil {
		return "", fmt.Errorf("dial %s: %w: %v", endpoint, ErrUnreachable, err)
	}
	defer client.Close()

	var info p2p.NodeInfo
	if err := client.CallContext(ctx, &info, model.AdminNodeInfo); err != nil {
		return "", fmt.Errorf("%s on %s: %w", model.AdminNodeInfo, endpoint, classifyRPCError(err))
	}

	if _, err := enode.ParseV4(info.Enode); err != nil {
		return "", fmt.Errorf("parse enode from %s: %w: %v", endpoint, ErrMalformedResponse, err)
	}

	c.logger.Debug().Str("endpoint", endpoint).Str("enode", info.Enode).Msg("execution identity resolved")
	return info.Enode, nil
}

// classifyRPCError maps a JSON-RPC call failure onto the package's error kinds.
// The server answering with an error object or undecodable JSON is a malformed
// response; anything else means the peer could not be reached.
func classifyRPCError(err error) error {
	var rpcErr rpc.Error
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &rpcErr), errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	default:
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
}

// QueryConsensusIdentity returns the ENR and peer id of the beacon node serving endpoint.
func (c *Client) QueryConsensusIdentity(ctx context.Context, endpoint string) (Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := strings.TrimSuffix(endpoint, "/") + model.NodeIdentityPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return Identity{}, fmt.Errorf("build request for %s: %w: %v", url, ErrUnreachable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("get %s: %w: %v", url, ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Identity{}, fmt.Errorf("get %s: %w: status %d: %s", url, ErrUnreachable, resp.StatusCode, data)
	}

	var body struct {
		Data nodeIdentity `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Identity{}, fmt.Errorf("decode %s: %w: %v", url, ErrMalformedResponse, err)
	}

	if _, err := enode.Parse(enode.ValidSchemes, body.Data.Enr); err != nil {
		return Identity{}, fmt.Errorf("parse enr from %s: %w: %v", url, ErrMalformedResponse, err)
	}
	if _, err := peer.Decode(body.Data.PeerID); err != nil {
		return Identity{}, fmt.Errorf("parse peer id from %s: %w: %v", url, ErrMalformedResponse, err)
	}

	c.logger.Debug().Str("endpoint", endpoint).Str("peer_id", body.Data.PeerID).Msg("consensus identity resolved")
	return Identity{ENR: body.Data.Enr, PeerID: body.Data.PeerID}, nil
}
