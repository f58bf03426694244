package model

import (
	"path/filepath"

	"github.com/PolyhedraZK/nbnet/internal/utils"
)

// Ports holds the listening ports of one node that the core needs to reach.
type Ports struct {
	// ELRPC is the execution client web3 HTTP port.
	ELRPC int `json:"el_rpc" validate:"required,gt=0"`
	// ELEngine is the authenticated Engine API port.
	ELEngine int `json:"el_engine_api"`
	// ELDiscovery is the execution client p2p port.
	ELDiscovery int `json:"el_discovery"`
	// CLDiscovery is the beacon node p2p port.
	CLDiscovery int `json:"cl_discovery"`
	// CLBeaconRPC is the beacon node HTTP API port, also used for checkpoint sync.
	CLBeaconRPC int `json:"cl_bn_rpc" validate:"required,gt=0"`
	// CLValidatorRPC is the validator client keymanager API port.
	CLValidatorRPC int `json:"cl_vc_rpc"`
}

// Node is the orchestrator's view of a node. The core reads it and never mutates it.
type Node struct {
	// ID is the stable numeric node identifier. Lower IDs joined the network earlier.
	ID uint64 `json:"id"`
	// Host is the address the node's ports are reachable at.
	Host string `json:"host" validate:"required"`
	// Home is the node's home directory.
	Home string `json:"home" validate:"required"`
	// Ports are the node's listening ports.
	Ports Ports `json:"ports"`
	// Reserved marks bootstrap nodes owned by the environment itself; they never
	// accept deposits or exits.
	Reserved bool `json:"reserved,omitempty"`
}

// ExecutionRPC returns the execution client JSON-RPC endpoint.
func (n Node) ExecutionRPC() string {
	return utils.HTTPAddress(n.Host, n.Ports.ELRPC)
}

// BeaconRPC returns the beacon node HTTP API endpoint.
func (n Node) BeaconRPC() string {
	return utils.HTTPAddress(n.Host, n.Ports.CLBeaconRPC)
}

// ValidatorRPC returns the validator client keymanager API endpoint. The
// validator client only listens locally.
func (n Node) ValidatorRPC() string {
	return utils.LocalAddress(n.Ports.CLValidatorRPC)
}

// ValidatorDataDir returns the validator client data directory.
func (n Node) ValidatorDataDir() string {
	return filepath.Join(n.Home, CLValidatorDir)
}

// ValidatorAPITokenPath returns the path of the validator client API token.
func (n Node) ValidatorAPITokenPath() string {
	return filepath.Join(n.ValidatorDataDir(), ValidatorAPITokenFile)
}
