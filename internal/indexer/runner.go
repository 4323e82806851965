package indexer

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"contractScope/internal/chain"
	"contractScope/internal/decoder"
	"contractScope/internal/metrics"
	"contractScope/internal/model"
	"contractScope/internal/resolver"
	"contractScope/internal/storage"
)

// RunConfig holds runtime settings for a scan.
type RunConfig struct {
	Network      string
	Deployment   string
	FromBlock    uint64
	ToBlock      uint64
	Addresses    []common.Address
	Topic0       []common.Hash
	BatchSize    uint64
	MaxRetries   int
	RetryBackoff time.Duration
}

// LogSource is the chain surface a scan reads from. *chain.Client
// satisfies it.
type LogSource interface {
	GetChainID(ctx context.Context) (*big.Int, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)
}

// AddressResolver binds an emitting address to a contract ABI.
type AddressResolver interface {
	ResolveAddress(address, network, deployment string) (*resolver.Resolution, bool)
}

// Runner scans block ranges for contract logs, decodes them with the ABI of
// the emitting contract and writes the records to a sink.
type Runner struct {
	cfg        RunConfig
	chain      LogSource
	resolver   AddressResolver
	sink       storage.EventSink
	checkpoint Checkpointer
	metrics    *metrics.ScanMetrics
	logger     *zap.Logger
	seen       map[string]struct{}
	compiled   map[common.Address]*compiledContract
}

type compiledContract struct {
	res      *resolver.Resolution
	compiled *decoder.Compiled
}

// NewRunner builds a Runner. checkpoint and scanMetrics may be nil.
func NewRunner(cfg RunConfig, source LogSource, res AddressResolver, sink storage.EventSink, checkpoint Checkpointer, scanMetrics *metrics.ScanMetrics, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		chain:      source,
		resolver:   res,
		sink:       sink,
		checkpoint: checkpoint,
		metrics:    scanMetrics,
		logger:     logger,
		seen:       make(map[string]struct{}),
		compiled:   make(map[common.Address]*compiledContract),
	}
}

// Run executes the scan loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.chain == nil {
		return fmt.Errorf("chain client is nil")
	}
	if r.sink == nil {
		return fmt.Errorf("storage is nil")
	}
	if r.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}
	if len(r.cfg.Addresses) == 0 {
		return fmt.Errorf("at least one address is required")
	}

	chainID, err := r.chain.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() {
		return fmt.Errorf("chain id does not fit in uint64: %s", chainID)
	}
	chainIDValue := chainID.Uint64()

	from := r.cfg.FromBlock
	to := r.cfg.ToBlock
	if to == 0 {
		latest, err := r.chain.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	if r.checkpoint != nil {
		last, ok, err := r.checkpoint.Load(ctx)
		if err != nil {
			return fmt.Errorf("load checkpoint: %w", err)
		}
		if next := resumeFrom(from, last, ok); next != from {
			from = next
			r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", last), zap.Uint64("from", from))
		}
	}

	if from > to {
		r.logger.Info("nothing to scan", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	ranges, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		started := time.Now()
		r.logger.Info("fetch logs", zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To), zap.Uint64("blocks", blockRange.Blocks()))

		logs, err := r.filterLogsWithRetry(ctx, blockRange.From, blockRange.To)
		if err != nil {
			return fmt.Errorf("filter logs: %w", err)
		}

		records := make([]model.EventRecord, 0, len(logs))
		var decodedCount int
		for _, log := range logs {
			if r.isDuplicate(log) {
				continue
			}

			ts, err := r.blockTimestampWithRetry(ctx, log.BlockNumber)
			if err != nil {
				return fmt.Errorf("block timestamp %d: %w", log.BlockNumber, err)
			}
			record := r.decode(chainIDValue, log, ts)
			if record.Event.Decoded {
				decodedCount++
			}
			records = append(records, record)
		}

		if err := r.sink.PutEventBatch(ctx, records); err != nil {
			return fmt.Errorf("store events: %w", err)
		}

		if r.checkpoint != nil {
			if err := r.checkpoint.Save(ctx, blockRange.To); err != nil {
				return fmt.Errorf("save checkpoint: %w", err)
			}
		}

		r.metrics.ObserveBatch(blockRange.To, time.Since(started))
		r.logger.Info("batch complete",
			zap.Int("logs", len(records)),
			zap.Int("decoded", decodedCount),
			zap.Uint64("from", blockRange.From),
			zap.Uint64("to", blockRange.To),
		)
	}

	return nil
}

func (r *Runner) decode(chainID uint64, log types.Log, ts uint64) model.EventRecord {
	contract := r.contractFor(log.Address)
	decoded := contract.compiled.DecodeLog(int(log.Index), &log)

	switch {
	case decoded.Error != "":
		r.metrics.ObserveLog(metrics.OutcomeError)
	case decoded.Decoded:
		r.metrics.ObserveLog(metrics.OutcomeDecoded)
	default:
		r.metrics.ObserveLog(metrics.OutcomeRaw)
	}
	return buildEventRecord(chainID, log, ts, contract.res, decoded)
}

func (r *Runner) contractFor(addr common.Address) *compiledContract {
	if c, ok := r.compiled[addr]; ok {
		return c
	}
	c := &compiledContract{}
	if r.resolver != nil {
		if res, ok := r.resolver.ResolveAddress(addr.Hex(), r.cfg.Network, r.cfg.Deployment); ok {
			c.res = res
		}
	}
	if c.res != nil {
		c.compiled = decoder.Compile(c.res.Abi)
	} else {
		r.logger.Warn("no abi for address", zap.String("address", addr.Hex()))
		c.compiled = decoder.Compile(nil)
	}
	r.compiled[addr] = c
	return c
}

func (r *Runner) filterLogsWithRetry(ctx context.Context, fromBlock, toBlock uint64) ([]types.Log, error) {
	var logs []types.Log
	query := chain.RangeQuery(fromBlock, toBlock, r.cfg.Addresses, r.cfg.Topic0)
	onRetry := func(err error) {
		r.metrics.ObserveRetry("filter_logs")
		r.logger.Warn("filter logs failed", zap.Error(err), zap.Uint64("from", fromBlock), zap.Uint64("to", toBlock))
	}
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, onRetry, func(ctx context.Context) error {
		var err error
		logs, err = r.chain.FilterLogs(ctx, query)
		return err
	})
	return logs, err
}

func (r *Runner) blockTimestampWithRetry(ctx context.Context, blockNumber uint64) (uint64, error) {
	var ts uint64
	onRetry := func(err error) {
		r.metrics.ObserveRetry("block_timestamp")
		r.logger.Warn("block timestamp fetch failed", zap.Error(err), zap.Uint64("block_number", blockNumber))
	}
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, onRetry, func(ctx context.Context) error {
		var err error
		ts, err = r.chain.BlockTimestamp(ctx, blockNumber)
		return err
	})
	return ts, err
}

func (r *Runner) isDuplicate(log types.Log) bool {
	id := fmt.Sprintf("%d:%s:%d", log.BlockNumber, log.TxHash.Hex(), log.Index)
	if _, ok := r.seen[id]; ok {
		return true
	}
	r.seen[id] = struct{}{}
	return false
}
