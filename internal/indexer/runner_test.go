package indexer

import (
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"contractScope/internal/abistore"
	"contractScope/internal/model"
	"contractScope/internal/resolver"
)

const transferABI = `[{"type":"event","name":"Transfer","anonymous":false,"inputs":[
  {"name":"from","type":"address","indexed":true},
  {"name":"to","type":"address","indexed":true},
  {"name":"value","type":"uint256","indexed":false}]}]`

var (
	tokenAddr = common.HexToAddress("0x1000000000000000000000000000000000000001")
	otherAddr = common.HexToAddress("0x2000000000000000000000000000000000000002")
)

type fakeSource struct {
	logs         []types.Log
	failures     int
	filterCalls  int
	queries      []ethereum.FilterQuery
	latest       uint64
	timestampErr error
}

func (f *fakeSource) GetChainID(context.Context) (*big.Int, error) { return big.NewInt(56), nil }

func (f *fakeSource) LatestBlockNumber(context.Context) (uint64, error) { return f.latest, nil }

func (f *fakeSource) BlockTimestamp(_ context.Context, number uint64) (uint64, error) {
	if f.timestampErr != nil {
		return 0, f.timestampErr
	}
	return 1_700_000_000 + number, nil
}

func (f *fakeSource) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	f.filterCalls++
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("rpc unavailable")
	}
	f.queries = append(f.queries, q)
	from, to := q.FromBlock.Uint64(), q.ToBlock.Uint64()
	var out []types.Log
	for _, lg := range f.logs {
		if lg.BlockNumber >= from && lg.BlockNumber <= to {
			out = append(out, lg)
		}
	}
	return out, nil
}

type memorySink struct {
	events []model.EventRecord
}

func (m *memorySink) PutEventBatch(_ context.Context, events []model.EventRecord) error {
	m.events = append(m.events, events...)
	return nil
}

func (m *memorySink) PutDecodeErrors([]model.DecodeError) error { return nil }

func newTestResolver(t *testing.T) *resolver.Resolver {
	t.Helper()
	file := model.NewDeploymentsFile()
	file.Set("bsc", "v1", "Token", tokenAddr.Hex())
	file.Set("bsc", "v1", "Other", otherAddr.Hex())
	cache := abistore.Cache{"IToken": []byte(transferABI)}
	return resolver.New(file, cache, cache.NameSet(), nil)
}

func transferLog(t *testing.T, block uint64, index uint, addr common.Address) types.Log {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(transferABI))
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	event := parsed.Events["Transfer"]
	data, err := event.Inputs.NonIndexed().Pack(big.NewInt(int64(block)))
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	return types.Log{
		Address:     addr,
		Topics:      []common.Hash{event.ID, common.BytesToHash(common.LeftPadBytes([]byte{1}, 32)), common.BytesToHash(common.LeftPadBytes([]byte{2}, 32))},
		Data:        data,
		BlockNumber: block,
		TxHash:      common.BigToHash(big.NewInt(int64(block))),
		Index:       index,
	}
}

func TestRunnerDecodesAndCheckpoints(t *testing.T) {
	source := &fakeSource{
		logs: []types.Log{
			transferLog(t, 100, 0, tokenAddr),
			transferLog(t, 101, 1, otherAddr),
			transferLog(t, 104, 0, tokenAddr),
		},
		failures: 1,
	}
	// duplicate delivery of the first log
	source.logs = append(source.logs, source.logs[0])

	sink := &memorySink{}
	cpPath := filepath.Join(t.TempDir(), "cp.json")
	runner := NewRunner(RunConfig{
		Network:      "bsc",
		Deployment:   "v1",
		FromBlock:    100,
		ToBlock:      105,
		Addresses:    []common.Address{tokenAddr, otherAddr},
		BatchSize:    3,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	}, source, newTestResolver(t), sink, NewFileCheckpoint(cpPath, true), nil, nil)

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(source.queries) != 2 || source.filterCalls != 3 {
		t.Fatalf("expected 2 ranges after one retry, got %d queries / %d calls", len(source.queries), source.filterCalls)
	}
	if len(sink.events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(sink.events))
	}

	first := sink.events[0]
	if !first.Event.Decoded || first.Event.EventName != "Transfer" || first.ContractName != "Token" || first.AbiName != "IToken" {
		t.Fatalf("token log should decode: %+v", first)
	}
	if first.ChainID != 56 || first.Timestamp != 1_700_000_100 {
		t.Fatalf("record metadata mismatch: %+v", first)
	}
	if other := sink.events[1]; other.Event.Decoded || other.ContractName != "" || len(other.Event.Topics) != 3 {
		t.Fatalf("log without abi should stay raw: %+v", other)
	}

	last, ok, err := NewFileCheckpoint(cpPath, true).Load(context.Background())
	if err != nil || !ok || last != 105 {
		t.Fatalf("checkpoint mismatch: %d %v %v", last, ok, err)
	}

	// A second run resumes after the checkpoint and finds nothing to do.
	source.queries = nil
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if len(source.queries) != 0 {
		t.Fatalf("expected no queries after checkpoint, got %d", len(source.queries))
	}
}

func TestRunnerValidation(t *testing.T) {
	sink := &memorySink{}
	cases := map[string]*Runner{
		"no chain":     NewRunner(RunConfig{BatchSize: 1, Addresses: []common.Address{tokenAddr}}, nil, nil, sink, nil, nil, nil),
		"no sink":      NewRunner(RunConfig{BatchSize: 1, Addresses: []common.Address{tokenAddr}}, &fakeSource{}, nil, nil, nil, nil, nil),
		"no batch":     NewRunner(RunConfig{Addresses: []common.Address{tokenAddr}}, &fakeSource{}, nil, sink, nil, nil, nil),
		"no addresses": NewRunner(RunConfig{BatchSize: 1}, &fakeSource{}, nil, sink, nil, nil, nil),
	}
	for name, runner := range cases {
		if err := runner.Run(context.Background()); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestRunnerGivesUpAfterRetries(t *testing.T) {
	source := &fakeSource{failures: 10, latest: 10}
	runner := NewRunner(RunConfig{
		Addresses:    []common.Address{tokenAddr},
		BatchSize:    100,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	}, source, nil, &memorySink{}, nil, nil, nil)

	if err := runner.Run(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if source.filterCalls != 3 {
		t.Fatalf("expected 3 attempts, got %d", source.filterCalls)
	}
}
