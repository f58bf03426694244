package model

const (
	// AdminNodeInfo represents the execution-layer method returning the node's own enode.
	AdminNodeInfo = "admin_nodeInfo"

	// NodeIdentityPath represents the beacon API path returning the node's ENR and peer id.
	NodeIdentityPath = "/eth/v1/node/identity"

	// DepositMethod represents the deposit function of the deposit contract.
	DepositMethod = "deposit"

	// DepositContractAddressKey is the testnet config key holding the deposit contract address.
	DepositContractAddressKey = "DEPOSIT_CONTRACT_ADDRESS"
)

const (
	// ELDir is the execution client directory inside a node home.
	ELDir = "el"

	// CLBeaconDir is the beacon node directory inside a node home.
	CLBeaconDir = "cl/bn"

	// CLValidatorDir is the validator client directory inside a node home.
	CLValidatorDir = "cl/vc"

	// ValidatorAPITokenFile is the validator client API token, relative to CLValidatorDir.
	ValidatorAPITokenFile = "validators/api-token.txt"

	// GenesisDir is the testnet directory inside the environment home.
	GenesisDir = "genesis"

	// TestnetConfigFile is the chain config file inside GenesisDir.
	TestnetConfigFile = "config.yaml"
)
