// Package explorer ties the selection, the ABI cache and the chain client
// together and runs the decode flows on top of them.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"contractScope/internal/abistore"
	"contractScope/internal/model"
	"contractScope/internal/resolver"
	"contractScope/internal/session"
)

var (
	ErrNoChain          = errors.New("no rpc endpoint configured")
	ErrUnknownNetwork   = errors.New("unknown network")
	ErrUnknownContract  = errors.New("unknown contract")
	ErrNoAbi            = errors.New("no abi for contract")
	ErrUnknownFunction  = errors.New("unknown function")
	ErrWriteFunction    = errors.New("function modifies state; only read functions can be called")
	ErrInvalidHash      = errors.New("invalid transaction hash")
	ErrInvalidAddress   = errors.New("invalid address")
	ErrUnknownEvent     = errors.New("unknown event")
	ErrInvalidArguments = errors.New("invalid arguments")
)

// ChainReader is the RPC surface the explorer uses. *chain.Client
// satisfies it.
type ChainReader interface {
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	BlockByNumber(ctx context.Context, number *big.Int) (*types.Block, error)
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// AbiSource yields the current ABI cache. *abistore.Poller satisfies it.
type AbiSource interface {
	Current() abistore.Cache
}

// StaticAbis is an AbiSource that never changes.
type StaticAbis abistore.Cache

func (s StaticAbis) Current() abistore.Cache {
	return abistore.Cache(s)
}

// Service is the explorer application layer.
type Service struct {
	chain       ChainReader
	deployments *model.DeploymentsFile
	abis        AbiSource
	selection   *session.Selection
	logger      *zap.Logger
}

// NewService builds the service. chain may be nil for offline use.
func NewService(chain ChainReader, deployments *model.DeploymentsFile, abis AbiSource, selection *session.Selection, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if selection == nil {
		selection = session.New()
	}
	if deployments == nil {
		deployments = model.NewDeploymentsFile()
	}
	if abis == nil {
		abis = StaticAbis{}
	}
	return &Service{
		chain:       chain,
		deployments: deployments,
		abis:        abis,
		selection:   selection,
		logger:      logger,
	}
}

func (s *Service) Selection() *session.Selection {
	return s.selection
}

// resolver binds the current ABI cache; it is rebuilt per request so a
// cache swap is picked up by the next call.
func (s *Service) resolver() *resolver.Resolver {
	cache := s.abis.Current()
	return resolver.New(s.deployments, cache, cache.NameSet(), s.logger)
}

// Select sets the selection. An empty network or deployment is filled in
// when the manifest offers exactly one choice.
func (s *Service) Select(network, deployment, contract string) (session.Snapshot, error) {
	if network == "" {
		network, _ = resolver.AutoSelectNetwork(s.deployments)
	}
	if network != "" && s.deployments.Deployments(network) == nil {
		return session.Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownNetwork, network)
	}
	if deployment == "" && network != "" {
		deployment, _ = resolver.AutoSelectDeployment(s.deployments, network)
	}
	if deployment != "" {
		if _, ok := s.deployments.Contracts(network, deployment); !ok {
			return session.Snapshot{}, fmt.Errorf("%w: %s/%s", ErrUnknownNetwork, network, deployment)
		}
	}
	if contract != "" {
		contracts, ok := s.deployments.Contracts(network, deployment)
		if !ok {
			return session.Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownContract, contract)
		}
		if _, ok := contracts.Get(contract); !ok {
			return session.Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownContract, contract)
		}
	}
	snap := s.selection.Set(network, deployment, contract)
	s.logger.Debug("selection changed",
		zap.String("network", network),
		zap.String("deployment", deployment),
		zap.String("contract", contract),
		zap.Uint64("generation", snap.Generation),
	)
	return snap, nil
}

// ContractInfo is a deployed contract and the ABI it resolved to.
type ContractInfo struct {
	Name    string          `json:"name"`
	Address string          `json:"address"`
	Match   *model.AbiMatch `json:"match,omitempty"`
}

// Contracts lists the selected deployment's contracts that have an ABI.
func (s *Service) Contracts() []ContractInfo {
	snap := s.selection.Snapshot()
	r := s.resolver()
	names := r.AvailableContracts(snap.Network, snap.Deployment)
	contracts, _ := s.deployments.Contracts(snap.Network, snap.Deployment)

	out := make([]ContractInfo, 0, len(names))
	for _, name := range names {
		addr, _ := contracts.Get(name)
		out = append(out, ContractInfo{
			Name:    name,
			Address: addr,
			Match:   resolver.ResolveAbiName(name, r.Available()),
		})
	}
	return out
}

// Match binds contractName to the best ABI in the cache.
func (s *Service) Match(contractName string) *model.AbiMatch {
	return resolver.ResolveAbiName(contractName, s.abis.Current().NameSet())
}

func (s *Service) requireChain() error {
	if s.chain == nil {
		return ErrNoChain
	}
	return nil
}

// abiForAddress resolves the ABI of the contract at addr within snap.
func (s *Service) abiForAddress(r *resolver.Resolver, snap session.Snapshot, addr common.Address) (*resolver.Resolution, bool) {
	return r.ResolveAddress(addr.Hex(), snap.Network, snap.Deployment)
}
