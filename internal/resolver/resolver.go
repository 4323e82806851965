// Package resolver maps deployment addresses and contract names to ABIs.
package resolver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"contractScope/internal/abimatch"
	"contractScope/internal/abistore"
	"contractScope/internal/model"
)

// FindContractByAddress returns the first contract in the selected deployment
// whose address equals address ignoring case.
func FindContractByAddress(address string, file *model.DeploymentsFile, network, deployment string) (string, bool) {
	if network == "" || deployment == "" || address == "" {
		return "", false
	}
	contracts, ok := file.Contracts(network, deployment)
	if !ok {
		return "", false
	}
	for pair := contracts.Oldest(); pair != nil; pair = pair.Next() {
		if strings.EqualFold(pair.Value, address) {
			return pair.Key, true
		}
	}
	return "", false
}

// LoadAbiForContract reads the artifact for contractName from store. The
// artifact may be a bare ABI array or an object with an "abi" array. Any
// failure is logged and yields nil.
func LoadAbiForContract(contractName string, store abistore.Store, logger *zap.Logger) model.ContractAbi {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil || contractName == "" {
		return nil
	}

	data, err := store.Read(contractName)
	if err != nil {
		logger.Warn("read abi failed", zap.String("contract", contractName), zap.Error(err))
		return nil
	}
	parsed, err := ParseArtifact(data)
	if err != nil {
		logger.Warn("parse abi failed", zap.String("contract", contractName), zap.Error(err))
		return nil
	}
	return parsed
}

// ParseArtifact extracts the ABI entries from raw artifact JSON.
func ParseArtifact(data []byte) (model.ContractAbi, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty artifact")
	}

	raw := json.RawMessage(trimmed)
	if trimmed[0] == '{' {
		var artifact struct {
			Abi json.RawMessage `json:"abi"`
		}
		if err := json.Unmarshal(trimmed, &artifact); err != nil {
			return nil, fmt.Errorf("decode artifact: %w", err)
		}
		raw = bytes.TrimSpace(artifact.Abi)
	}
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("abi is not an array")
	}

	var entries model.ContractAbi
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode abi: %w", err)
	}
	if entries == nil {
		entries = model.ContractAbi{}
	}
	return entries, nil
}

// GetAvailableContracts lists the deployment's contracts that carry a 0x
// address and have an ABI of the same name, in manifest order.
func GetAvailableContracts(file *model.DeploymentsFile, network, deployment string, available model.NameSet) []string {
	contracts, ok := file.Contracts(network, deployment)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, contracts.Len())
	for pair := contracts.Oldest(); pair != nil; pair = pair.Next() {
		if !strings.HasPrefix(pair.Value, "0x") {
			continue
		}
		if !available.Has(pair.Key) {
			continue
		}
		out = append(out, pair.Key)
	}
	return out
}

// ResolveAbiName binds a contract name to the best matching ABI name.
func ResolveAbiName(contractName string, available model.NameSet) *model.AbiMatch {
	return abimatch.FindBestAbiMatch(contractName, available)
}

// AutoSelectNetwork returns the only network of the manifest.
func AutoSelectNetwork(file *model.DeploymentsFile) (string, bool) {
	return only(file.Networks())
}

// AutoSelectDeployment returns the only deployment of network.
func AutoSelectDeployment(file *model.DeploymentsFile, network string) (string, bool) {
	return only(file.Deployments(network))
}

func only(names []string) (string, bool) {
	if len(names) != 1 {
		return "", false
	}
	return names[0], true
}

// LoadDeployments reads a deployments manifest, keeping key order.
func LoadDeployments(path string) (*model.DeploymentsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deployments: %w", err)
	}
	file := model.NewDeploymentsFile()
	if err := json.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("decode deployments %s: %w", path, err)
	}
	return file, nil
}
