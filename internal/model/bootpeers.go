package model

// BootPeerSet is the per-start result of bootstrap peer resolution. All fields are
// comma-joined lists except CheckpointSyncURL. It is recomputed on every start attempt.
type BootPeerSet struct {
	ExecutionBootnodes    string `json:"execution_bootnodes"`
	ConsensusBootnodes    string `json:"consensus_bootnodes"`
	ConsensusTrustedPeers string `json:"consensus_trusted_peers"`
	CheckpointSyncURL     string `json:"checkpoint_sync_url"`
}

// IsEmpty reports whether no peer data was found, in which case the node boots standalone.
func (b BootPeerSet) IsEmpty() bool {
	return b == BootPeerSet{}
}
