package contracts

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
)

// CompileABI compiles a Solidity contract with solc and returns its ABI JSON.
// Args:
//   - solPath: Path to the Solidity file to compile.
//   - contractName: Name of the contract to pick from the compiler output.
//
// Returns:
//   - The ABI of the compiled contract.
//   - An error if solc is missing, the file does not exist, or the contract is not in the output.
func CompileABI(solPath string, contractName string) (string, error) {
	// Step 1a: Check if solc is installed
	if _, err := exec.LookPath("solc"); err != nil {
		return "", fmt.Errorf("solc not found in PATH: %w", err)
	}

	// Step 1b: Check if the provided file exists
	if _, err := os.Stat(solPath); err != nil {
		return "", fmt.Errorf("file not found: %w", err)
	}

	// Step 2: Run solc
	solcCmd := exec.Command("solc", "--combined-json", "abi", "--metadata-hash", "none", solPath)
	output, err := solcCmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("solc failed: %w\nOutput: %s", err, string(output))
	}

	// Step 3: Parse solc output
	var combined struct {
		Contracts map[string]struct {
			ABI json.RawMessage `json:"abi"`
		} `json:"contracts"`
	}
	if err := json.Unmarshal(output, &combined); err != nil {
		return "", fmt.Errorf("unmarshal solc output: %w", err)
	}

	// solc keys contracts as "<path>:<name>", where path may be absolute.
	suffix := ":" + contractName
	for key, c := range combined.Contracts {
		if len(key) >= len(suffix) && key[len(key)-len(suffix):] == suffix {
			return string(c.ABI), nil
		}
	}

	return "", fmt.Errorf("contract %s not found in %s", contractName, solPath)
}
