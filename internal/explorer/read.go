package explorer

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"contractScope/internal/abiargs"
	"contractScope/internal/chain"
	"contractScope/internal/decoder"
	"contractScope/internal/model"
)

// ReadRequest calls a view or pure function of a deployed contract.
type ReadRequest struct {
	Contract string
	Function string
	Args     map[string]string
	Block    *big.Int
}

// ReadResult holds the decoded outputs of a read call.
type ReadResult struct {
	Contract  string           `json:"contract"`
	Address   string           `json:"address"`
	Signature string           `json:"signature"`
	Outputs   []model.Argument `json:"outputs"`
}

// ArgumentError lists the inputs that failed validation.
type ArgumentError struct {
	Fields map[string]string
}

func (e *ArgumentError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return fmt.Sprintf("%s: %s", ErrInvalidArguments, strings.Join(parts, "; "))
}

func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArguments
}

// Read validates the string arguments, converts them to ABI values and
// performs an eth_call. Functions that modify state are refused.
func (s *Service) Read(ctx context.Context, req ReadRequest) (*ReadResult, error) {
	if err := s.requireChain(); err != nil {
		return nil, err
	}
	snap := s.selection.Snapshot()
	contractName := req.Contract
	if contractName == "" {
		contractName = snap.Contract
	}

	r := s.resolver()
	res, ok := r.ResolveContract(contractName, snap.Network, snap.Deployment)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoAbi, contractName)
	}
	if !common.IsHexAddress(res.Address) {
		return nil, fmt.Errorf("%w: %s has no deployed address", ErrUnknownContract, contractName)
	}

	entry, ok := res.Abi.Function(req.Function)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownFunction, contractName, req.Function)
	}
	if entry.IsWriteFunction() {
		return nil, fmt.Errorf("%w: %s", ErrWriteFunction, entry.Signature())
	}

	invalid := make(map[string]string)
	for _, input := range entry.Inputs {
		if v := abiargs.ValidateSolidityType(req.Args[input.Name], input.Type, s.logger); !v.IsValid {
			invalid[input.Name] = v.Error
		}
	}
	if len(invalid) > 0 {
		return nil, &ArgumentError{Fields: invalid}
	}

	parsed, err := abiargs.GetArgsArray(entry.Inputs, req.Args)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	method, _, ok := decoder.Compile(model.ContractAbi{entry}).Method(entry.Name, len(entry.Inputs))
	if !ok {
		return nil, fmt.Errorf("%w: %s cannot be encoded", ErrUnknownFunction, entry.Signature())
	}
	packable, err := abiargs.PackableArgs(method.Inputs, parsed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	values, err := chain.ReadContract(ctx, s.chain, common.HexToAddress(res.Address), method, packable, req.Block)
	if err != nil {
		return nil, err
	}
	if err := s.selection.Check(snap); err != nil {
		return nil, err
	}

	outputs := make([]model.Argument, 0, len(values))
	for i, out := range method.Outputs {
		if i >= len(values) {
			break
		}
		outputs = append(outputs, model.Argument{
			Name:  out.Name,
			Type:  out.Type.String(),
			Value: decoder.ToValue(out.Type, values[i]),
		})
	}
	s.logger.Debug("contract read",
		zap.String("contract", contractName),
		zap.String("function", entry.Name),
	)
	return &ReadResult{
		Contract:  contractName,
		Address:   res.Address,
		Signature: entry.Signature(),
		Outputs:   outputs,
	}, nil
}
