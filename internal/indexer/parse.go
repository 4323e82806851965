package indexer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ParseAddresses converts address flags into common.Address, skipping blanks
// and duplicates. Every invalid entry is reported.
func ParseAddresses(inputs []string) ([]common.Address, error) {
	var errs []error
	seen := make(map[common.Address]struct{}, len(inputs))
	addresses := make([]common.Address, 0, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if !common.IsHexAddress(input) {
			errs = append(errs, fmt.Errorf("invalid address: %s", input))
			continue
		}
		addr := common.HexToAddress(input)
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		addresses = append(addresses, addr)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return addresses, nil
}

// ParseTopic0 converts 32-byte hex event ids into common.Hash.
func ParseTopic0(inputs []string) ([]common.Hash, error) {
	var errs []error
	topics := make([]common.Hash, 0, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		raw, err := hexutil.Decode(input)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("invalid topic0 %s: %w", input, err))
		case len(raw) != common.HashLength:
			errs = append(errs, fmt.Errorf("invalid topic0 length %d: %s", len(raw), input))
		default:
			topics = append(topics, common.BytesToHash(raw))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return topics, nil
}
