// Package config loads process settings from the environment and the chain
// settings of the testnet the environment runs.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/PolyhedraZK/nbnet/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read into Settings.
const EnvPrefix = "NBNET"

// Presence is true when its environment variable is set, whatever the value.
type Presence bool

// Decode implements envconfig.Decoder. It only runs for variables that are set.
func (p *Presence) Decode(string) error {
	*p = true
	return nil
}

// Settings are the process level settings, read from NBNET_* variables.
type Settings struct {
	// EnvFile is the environment inventory file.
	EnvFile string `envconfig:"ENV_FILE" default:"nbnet.json" validate:"required"`

	// TestnetDir holds the chain config; empty means the genesis directory next to EnvFile.
	TestnetDir string `envconfig:"TESTNET_DIR"`

	// LighthouseBin is the key tool binary.
	LighthouseBin string `envconfig:"LIGHTHOUSE_BIN" default:"lighthouse" validate:"required"`

	// DepositContractABI optionally replaces the embedded deposit contract ABI.
	DepositContractABI string `envconfig:"DEPOSIT_CONTRACT_ABI"`

	// NodeSyncFromGenesis disables checkpoint sync for newly launched beacon
	// nodes. Setting the variable to any value, empty included, turns it on.
	NodeSyncFromGenesis Presence `envconfig:"NODE_SYNC_FROM_GENESIS"`

	// ScratchDir is the parent of temporary key material; empty means the system temp dir.
	ScratchDir string `envconfig:"SCRATCH_DIR"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error fatal panic disabled"`
}

// LoadSettings reads Settings from the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := envconfig.Process(EnvPrefix, &s); err != nil {
		return Settings{}, fmt.Errorf("read %s_* settings: %w", EnvPrefix, err)
	}
	if err := validator.New().Struct(s); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// GenesisDir returns the testnet directory.
func (s Settings) GenesisDir() string {
	if s.TestnetDir != "" {
		return s.TestnetDir
	}
	return filepath.Join(filepath.Dir(s.EnvFile), model.GenesisDir)
}

// Level returns the configured log level.
func (s Settings) Level() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parse log level: %w", err)
	}
	return lvl, nil
}

// TestnetConfig is the subset of the testnet's config.yaml in use here.
type TestnetConfig struct {
	ConfigName             string `yaml:"CONFIG_NAME"`
	PresetBase             string `yaml:"PRESET_BASE"`
	DepositChainID         uint64 `yaml:"DEPOSIT_CHAIN_ID"`
	DepositContractAddress string `yaml:"DEPOSIT_CONTRACT_ADDRESS" validate:"required"`
	GenesisForkVersion     string `yaml:"GENESIS_FORK_VERSION"`
}

// LoadTestnetConfig reads config.yaml from the testnet directory.
func LoadTestnetConfig(dir string) (*TestnetConfig, error) {
	path := filepath.Join(dir, model.TestnetConfigFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open testnet config: %w", err)
	}
	defer f.Close()

	var cfg TestnetConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode testnet config %s: %w", path, err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid testnet config %s: %w", path, err)
	}
	if !common.IsHexAddress(cfg.DepositContractAddress) {
		return nil, fmt.Errorf("invalid testnet config %s: %s %q is not an address",
			path, model.DepositContractAddressKey, cfg.DepositContractAddress)
	}
	return &cfg, nil
}

// DepositContract returns the deposit contract address.
func (c *TestnetConfig) DepositContract() common.Address {
	return common.HexToAddress(c.DepositContractAddress)
}
