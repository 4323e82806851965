package model

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ContractAddresses maps contract name to a 0x-prefixed address in manifest order.
type ContractAddresses = orderedmap.OrderedMap[string, string]

// NetworkDeployments maps deployment name to its contracts in manifest order.
type NetworkDeployments = orderedmap.OrderedMap[string, *ContractAddresses]

// DeploymentsFile is the network -> deployment -> contract -> address manifest.
type DeploymentsFile struct {
	networks *orderedmap.OrderedMap[string, *NetworkDeployments]
}

func NewDeploymentsFile() *DeploymentsFile {
	return &DeploymentsFile{networks: orderedmap.New[string, *NetworkDeployments]()}
}

// UnmarshalJSON decodes the manifest keeping key order at every level.
func (d *DeploymentsFile) UnmarshalJSON(data []byte) error {
	networks := orderedmap.New[string, *NetworkDeployments]()
	if err := json.Unmarshal(data, networks); err != nil {
		return err
	}
	d.networks = networks
	return nil
}

// MarshalJSON encodes the manifest in its original order.
func (d *DeploymentsFile) MarshalJSON() ([]byte, error) {
	if d == nil || d.networks == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d.networks)
}

// Set records an address, creating intermediate levels as needed.
func (d *DeploymentsFile) Set(network, deployment, contract, address string) {
	if d.networks == nil {
		d.networks = orderedmap.New[string, *NetworkDeployments]()
	}
	deployments, ok := d.networks.Get(network)
	if !ok || deployments == nil {
		deployments = orderedmap.New[string, *ContractAddresses]()
		d.networks.Set(network, deployments)
	}
	contracts, ok := deployments.Get(deployment)
	if !ok || contracts == nil {
		contracts = orderedmap.New[string, string]()
		deployments.Set(deployment, contracts)
	}
	contracts.Set(contract, address)
}

// Networks returns network names in manifest order.
func (d *DeploymentsFile) Networks() []string {
	if d == nil || d.networks == nil {
		return nil
	}
	out := make([]string, 0, d.networks.Len())
	for pair := d.networks.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Deployments returns deployment names for a network in manifest order.
func (d *DeploymentsFile) Deployments(network string) []string {
	if d == nil || d.networks == nil {
		return nil
	}
	deployments, ok := d.networks.Get(network)
	if !ok || deployments == nil {
		return nil
	}
	out := make([]string, 0, deployments.Len())
	for pair := deployments.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Contracts returns the contract map for a network/deployment pair.
func (d *DeploymentsFile) Contracts(network, deployment string) (*ContractAddresses, bool) {
	if d == nil || d.networks == nil {
		return nil, false
	}
	deployments, ok := d.networks.Get(network)
	if !ok || deployments == nil {
		return nil, false
	}
	contracts, ok := deployments.Get(deployment)
	if !ok || contracts == nil {
		return nil, false
	}
	return contracts, true
}

// ContractEntry is a contract name and address pair.
type ContractEntry struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// ContractList returns the contracts of a deployment in manifest order.
func (d *DeploymentsFile) ContractList(network, deployment string) []ContractEntry {
	contracts, ok := d.Contracts(network, deployment)
	if !ok {
		return nil
	}
	out := make([]ContractEntry, 0, contracts.Len())
	for pair := contracts.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, ContractEntry{Name: pair.Key, Address: pair.Value})
	}
	return out
}
