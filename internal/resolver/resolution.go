package resolver

import (
	"go.uber.org/zap"

	"contractScope/internal/abistore"
	"contractScope/internal/model"
)

// Resolution is a contract bound to a loaded ABI.
type Resolution struct {
	ContractName string
	Address      string
	Match        model.AbiMatch
	Abi          model.ContractAbi
}

// Resolver chains address lookup, name matching and ABI loading over one
// manifest and one ABI store.
type Resolver struct {
	deployments *model.DeploymentsFile
	store       abistore.Store
	available   model.NameSet
	logger      *zap.Logger
}

// New builds a resolver. available is the set of ABI names the store serves.
func New(deployments *model.DeploymentsFile, store abistore.Store, available model.NameSet, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deployments == nil {
		deployments = model.NewDeploymentsFile()
	}
	return &Resolver{
		deployments: deployments,
		store:       store,
		available:   available,
		logger:      logger,
	}
}

func (r *Resolver) Deployments() *model.DeploymentsFile {
	return r.deployments
}

func (r *Resolver) Available() model.NameSet {
	return r.available
}

// ResolveContract matches contractName to an ABI and loads it. address is
// filled from the manifest when network and deployment are set.
func (r *Resolver) ResolveContract(contractName, network, deployment string) (*Resolution, bool) {
	match := ResolveAbiName(contractName, r.available)
	if match == nil {
		r.logger.Debug("no abi match", zap.String("contract", contractName))
		return nil, false
	}
	parsed := LoadAbiForContract(match.AbiName, r.store, r.logger)
	if parsed == nil {
		return nil, false
	}

	res := &Resolution{ContractName: contractName, Match: *match, Abi: parsed}
	if contracts, ok := r.deployments.Contracts(network, deployment); ok {
		if addr, ok := contracts.Get(contractName); ok {
			res.Address = addr
		}
	}
	return res, true
}

// ResolveAddress finds the contract deployed at address in the selected
// deployment and loads its ABI.
func (r *Resolver) ResolveAddress(address, network, deployment string) (*Resolution, bool) {
	name, ok := FindContractByAddress(address, r.deployments, network, deployment)
	if !ok {
		return nil, false
	}
	res, ok := r.ResolveContract(name, network, deployment)
	if !ok {
		return nil, false
	}
	res.Address = address
	return res, true
}

// AvailableContracts lists the selected deployment's contracts with an ABI.
func (r *Resolver) AvailableContracts(network, deployment string) []string {
	return GetAvailableContracts(r.deployments, network, deployment, r.available)
}
