package explorer

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"contractScope/internal/decoder"
	"contractScope/internal/model"
)

// LogQuery filters a log search. Address defaults to the selected
// contract's address; Event is an event name of that contract's ABI.
type LogQuery struct {
	FromBlock *big.Int
	ToBlock   *big.Int
	Address   string
	Event     string
}

// Logs searches logs and decodes each one with the ABI of its emitting
// contract.
func (s *Service) Logs(ctx context.Context, q LogQuery) ([]model.DecodedEventLog, error) {
	if err := s.requireChain(); err != nil {
		return nil, err
	}
	snap := s.selection.Snapshot()
	r := s.resolver()

	address := q.Address
	if address == "" && snap.Contract != "" {
		res, ok := r.ResolveContract(snap.Contract, snap.Network, snap.Deployment)
		if ok {
			address = res.Address
		}
	}

	query := ethereum.FilterQuery{FromBlock: q.FromBlock, ToBlock: q.ToBlock}
	var filtered *decoder.Compiled
	if address != "" {
		if !common.IsHexAddress(address) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, address)
		}
		addr := common.HexToAddress(address)
		query.Addresses = []common.Address{addr}
		if res, ok := s.abiForAddress(r, snap, addr); ok {
			filtered = decoder.Compile(res.Abi)
		}
	}
	if q.Event != "" {
		if filtered == nil {
			return nil, fmt.Errorf("%w: %s (no abi for address)", ErrUnknownEvent, q.Event)
		}
		id, ok := filtered.EventID(q.Event)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, q.Event)
		}
		query.Topics = [][]common.Hash{{id}}
	}

	logs, err := s.chain.FilterLogs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("filter logs: %w", err)
	}
	if err := s.selection.Check(snap); err != nil {
		return nil, err
	}

	byAddr := make(map[common.Address]*decoder.Compiled)
	out := make([]model.DecodedEventLog, 0, len(logs))
	for i := range logs {
		lg := &logs[i]
		c, seen := byAddr[lg.Address]
		if !seen {
			if res, ok := s.abiForAddress(r, snap, lg.Address); ok {
				c = decoder.Compile(res.Abi)
			} else {
				c = decoder.Compile(nil)
			}
			byAddr[lg.Address] = c
		}
		out = append(out, c.DecodeLog(i, lg))
	}
	return out, nil
}
