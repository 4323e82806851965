package explorer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"contractScope/internal/decoder"
	"contractScope/internal/model"
	"contractScope/internal/resolver"
	"contractScope/internal/session"
)

// TransactionResult is a fetched transaction decoded against the ABI of the
// contract it called.
type TransactionResult struct {
	Hash        string                   `json:"hash"`
	From        string                   `json:"from,omitempty"`
	To          string                   `json:"to,omitempty"`
	Value       string                   `json:"value"`
	BlockNumber *uint64                  `json:"block_number,omitempty"`
	Status      *uint64                  `json:"status,omitempty"`
	Contract    string                   `json:"contract,omitempty"`
	AbiName     string                   `json:"abi_name,omitempty"`
	Decoded     model.DecodedTransaction `json:"decoded"`
}

// ParseHash accepts a 0x-prefixed 32-byte hex hash.
func ParseHash(value string) (common.Hash, error) {
	value = strings.TrimSpace(value)
	if len(value) != 66 || !strings.HasPrefix(value, "0x") {
		return common.Hash{}, fmt.Errorf("%w: %q", ErrInvalidHash, value)
	}
	if !isHex(value[2:]) {
		return common.Hash{}, fmt.Errorf("%w: %q", ErrInvalidHash, value)
	}
	return common.HexToHash(value), nil
}

func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// Transaction fetches a transaction and its receipt and decodes them. The
// ABI is chosen by the called address, falling back to the selected
// contract. Logs emitted by other known contracts are decoded with their
// own ABI.
func (s *Service) Transaction(ctx context.Context, hashHex string) (*TransactionResult, error) {
	if err := s.requireChain(); err != nil {
		return nil, err
	}
	hash, err := ParseHash(hashHex)
	if err != nil {
		return nil, err
	}
	snap := s.selection.Snapshot()

	tx, err := s.chain.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("fetch transaction %s: %w", hash.Hex(), err)
	}
	receipt, err := s.chain.TransactionReceipt(ctx, hash)
	if err != nil {
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("fetch receipt %s: %w", hash.Hex(), err)
		}
		receipt = nil
	}
	if err := s.selection.Check(snap); err != nil {
		return nil, err
	}

	r := s.resolver()
	result := &TransactionResult{
		Hash:  hash.Hex(),
		Value: tx.Value().String(),
	}
	if from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx); err == nil {
		result.From = from.Hex()
	}

	var res *resolver.Resolution
	if to := tx.To(); to != nil {
		result.To = to.Hex()
		res, _ = s.abiForAddress(r, snap, *to)
	}
	if res == nil && snap.Contract != "" {
		res, _ = r.ResolveContract(snap.Contract, snap.Network, snap.Deployment)
	}

	var contractAbi model.ContractAbi
	if res != nil {
		result.Contract = res.ContractName
		result.AbiName = res.Match.AbiName
		contractAbi = res.Abi
	}

	compiled := decoder.Compile(contractAbi)
	result.Decoded = compiled.DecodeTransaction(tx, receipt)
	if receipt != nil {
		blockNumber := receipt.BlockNumber.Uint64()
		status := receipt.Status
		result.BlockNumber = &blockNumber
		result.Status = &status
		s.redecodeForeignLogs(r, snap, receipt.Logs, result.Decoded.DecodedEvents, res)
	}

	s.logger.Debug("transaction decoded",
		zap.String("hash", result.Hash),
		zap.String("contract", result.Contract),
		zap.Int("logs", len(result.Decoded.DecodedEvents)),
	)
	return result, nil
}

// redecodeForeignLogs retries raw entries emitted by a contract other than
// the primary one with that contract's ABI.
func (s *Service) redecodeForeignLogs(r *resolver.Resolver, snap session.Snapshot, logs []*types.Log, decoded []model.DecodedEventLog, primary *resolver.Resolution) {
	compiledByAddr := make(map[common.Address]*decoder.Compiled)
	for i, lg := range logs {
		if lg == nil || i >= len(decoded) || decoded[i].Decoded || decoded[i].Error != "" {
			continue
		}
		if primary != nil && strings.EqualFold(primary.Address, lg.Address.Hex()) {
			continue
		}
		compiled, ok := compiledByAddr[lg.Address]
		if !ok {
			if res, found := s.abiForAddress(r, snap, lg.Address); found {
				compiled = decoder.Compile(res.Abi)
			}
			compiledByAddr[lg.Address] = compiled
		}
		if compiled == nil {
			continue
		}
		decoded[i] = compiled.DecodeLog(i, lg)
	}
}
