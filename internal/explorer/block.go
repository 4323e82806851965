package explorer

import (
	"context"
	"fmt"
	"math/big"

	"contractScope/internal/decoder"
	"contractScope/internal/model"
)

// BlockTransaction is one transaction of a block with its decoded input.
type BlockTransaction struct {
	Hash     string                     `json:"hash"`
	To       string                     `json:"to,omitempty"`
	Contract string                     `json:"contract,omitempty"`
	Input    *model.DecodedFunctionData `json:"input,omitempty"`
}

// BlockResult is a block whose transactions to known contracts are decoded.
type BlockResult struct {
	Number       uint64             `json:"number"`
	Hash         string             `json:"hash"`
	Timestamp    uint64             `json:"timestamp"`
	Transactions []BlockTransaction `json:"transactions"`
}

// Block fetches a block (nil number means latest) and decodes the input of
// every transaction sent to a contract of the selected deployment.
func (s *Service) Block(ctx context.Context, number *big.Int) (*BlockResult, error) {
	if err := s.requireChain(); err != nil {
		return nil, err
	}
	snap := s.selection.Snapshot()

	block, err := s.chain.BlockByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("fetch block: %w", err)
	}
	if err := s.selection.Check(snap); err != nil {
		return nil, err
	}

	r := s.resolver()
	compiled := make(map[string]*decoder.Compiled)
	names := make(map[string]string)

	result := &BlockResult{
		Number:       block.NumberU64(),
		Hash:         block.Hash().Hex(),
		Timestamp:    block.Time(),
		Transactions: make([]BlockTransaction, 0, len(block.Transactions())),
	}
	for _, tx := range block.Transactions() {
		entry := BlockTransaction{Hash: tx.Hash().Hex()}
		if to := tx.To(); to != nil {
			entry.To = to.Hex()
			c, seen := compiled[entry.To]
			if !seen {
				if res, ok := s.abiForAddress(r, snap, *to); ok {
					c = decoder.Compile(res.Abi)
					names[entry.To] = res.ContractName
				}
				compiled[entry.To] = c
			}
			if c != nil && len(tx.Data()) > 0 {
				input := c.DecodeFunctionData(tx.Data())
				entry.Input = &input
				entry.Contract = names[entry.To]
			}
		}
		result.Transactions = append(result.Transactions, entry)
	}
	return result, nil
}
