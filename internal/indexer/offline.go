package indexer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"contractScope/internal/model"
	"contractScope/internal/storage"
)

const offlineBatchSize = 500

// ErrorSink receives records for input lines that could not be decoded.
type ErrorSink interface {
	PutDecodeErrors(records []model.DecodeError) error
}

// DecodeStats summarises an offline decode.
type DecodeStats struct {
	Total   int
	Decoded int
	Raw     int
	Failed  int
}

// FileDecoder decodes JSONL raw log records without touching the chain.
type FileDecoder struct {
	Network    string
	Deployment string
	Resolver   AddressResolver
	Sink       storage.EventSink
	Errors     ErrorSink
	Logger     *zap.Logger

	compiled map[common.Address]*compiledContract
}

// Decode reads model.LogRecord lines from in. Lines that are not valid
// records are reported to Errors; everything else reaches Sink, decoded or
// raw.
func (d *FileDecoder) Decode(ctx context.Context, in io.Reader) (DecodeStats, error) {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	runner := &Runner{
		cfg:      RunConfig{Network: d.Network, Deployment: d.Deployment},
		resolver: d.Resolver,
		logger:   logger,
		compiled: d.compiled,
	}
	if runner.compiled == nil {
		runner.compiled = make(map[common.Address]*compiledContract)
		d.compiled = runner.compiled
	}

	scanner := bufio.NewScanner(in)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var stats DecodeStats
	events := make([]model.EventRecord, 0, offlineBatchSize)
	failures := make([]model.DecodeError, 0)
	flush := func() error {
		if err := d.Sink.PutEventBatch(ctx, events); err != nil {
			return fmt.Errorf("store events: %w", err)
		}
		if d.Errors != nil {
			if err := d.Errors.PutDecodeErrors(failures); err != nil {
				return fmt.Errorf("store decode errors: %w", err)
			}
		}
		events = events[:0]
		failures = failures[:0]
		return nil
	}

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		stats.Total++

		var record model.LogRecord
		if err := json.Unmarshal(line, &record); err != nil {
			stats.Failed++
			failures = append(failures, model.DecodeError{Error: err.Error()})
			continue
		}
		log, err := record.ToLog()
		if err != nil {
			stats.Failed++
			failures = append(failures, decodeErrorFromRecord(record, err))
			continue
		}

		ev := runner.decode(record.ChainID, *log, record.Timestamp)
		if ev.Event.Decoded {
			stats.Decoded++
		} else {
			stats.Raw++
		}
		events = append(events, ev)

		if len(events) >= offlineBatchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("scan input: %w", err)
	}
	if err := flush(); err != nil {
		return stats, err
	}

	logger.Info("decode complete",
		zap.Int("total", stats.Total),
		zap.Int("decoded", stats.Decoded),
		zap.Int("raw", stats.Raw),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}
