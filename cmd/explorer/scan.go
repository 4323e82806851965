package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"contractScope/internal/config"
	"contractScope/internal/indexer"
	"contractScope/internal/metrics"
	"contractScope/internal/model"
	"contractScope/internal/resolver"
	"contractScope/internal/storage"
	"contractScope/internal/storage/postgres"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a block range and store decoded events of the selected deployment",
		Args:  cobra.NoArgs,
		RunE:  runScan,
	}

	cmd.Flags().Uint64("from", 0, "start block (inclusive)")
	cmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	cmd.Flags().StringSlice("address", nil, "contract addresses (comma-separated), defaults to the deployment's contracts")
	cmd.Flags().StringSlice("topic0", nil, "topic0 filters (comma-separated)")
	cmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	cmd.Flags().String("out", "./data/events.jsonl", "output JSONL path")
	cmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	cmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN; when set events and checkpoints go to Postgres")
	cmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

func runScan(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadScan(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	snap := a.service.Selection().Snapshot()
	if snap.Network == "" || snap.Deployment == "" {
		return fmt.Errorf("network and deployment are required")
	}

	addresses, err := scanAddresses(cfg.Addresses, a.deployments, snap.Network, snap.Deployment)
	if err != nil {
		return err
	}
	if len(addresses) == 0 {
		return fmt.Errorf("address list is required")
	}
	topic0, err := indexer.ParseTopic0(cfg.Topic0)
	if err != nil {
		return err
	}

	var (
		sink       storage.EventSink
		checkpoint indexer.Checkpointer
	)
	if cfg.PgDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PgDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		sink = store
		if cfg.CheckpointEnabled {
			checkpoint = &indexer.DBCheckpoint{Store: store, Name: "scan:" + snap.Network + ":" + snap.Deployment}
		}
	} else {
		sink = storage.NewJsonlStorage(cfg.Out)
		checkpoint = indexer.NewFileCheckpoint(cfg.Checkpoint, cfg.CheckpointEnabled)
	}

	var scanMetrics *metrics.ScanMetrics
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		scanMetrics, err = metrics.NewScanMetrics(reg)
		if err != nil {
			return err
		}
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, reg, logger); err != nil {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	cache := a.abis.Current()
	res := resolver.New(a.deployments, cache, cache.NameSet(), logger)

	runner := indexer.NewRunner(indexer.RunConfig{
		Network:      snap.Network,
		Deployment:   snap.Deployment,
		FromBlock:    cfg.FromBlock,
		ToBlock:      cfg.ToBlock,
		Addresses:    addresses,
		Topic0:       topic0,
		BatchSize:    cfg.BatchSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, a.chain, res, sink, checkpoint, scanMetrics, logger)

	logger.Info("scan start",
		zap.String("network", snap.Network),
		zap.String("deployment", snap.Deployment),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Int("addresses", len(addresses)),
		zap.Int("topic0", len(topic0)),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.Bool("postgres", cfg.PgDSN != ""),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
	)

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// scanAddresses parses explicit addresses, or falls back to every contract
// of the deployment that has a valid address.
func scanAddresses(explicit []string, file *model.DeploymentsFile, network, deployment string) ([]common.Address, error) {
	if len(explicit) > 0 {
		return indexer.ParseAddresses(explicit)
	}
	var addresses []common.Address
	for _, entry := range file.ContractList(network, deployment) {
		if common.IsHexAddress(entry.Address) {
			addresses = append(addresses, common.HexToAddress(entry.Address))
		}
	}
	return addresses, nil
}

func newDecodeLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode-logs",
		Short: "Decode a JSONL file of raw logs with the selected deployment's ABIs",
		Args:  cobra.NoArgs,
		RunE:  runDecodeLogs,
	}

	cmd.Flags().String("in", "", "input raw logs JSONL")
	cmd.Flags().String("out", "./data/decoded_events.jsonl", "output decoded events JSONL")
	cmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL")
	return cmd
}

func runDecodeLogs(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDecode(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}
	if cfg.Errors == "" {
		return fmt.Errorf("errors path is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	snap := a.service.Selection().Snapshot()
	cache := a.abis.Current()
	decoder := &indexer.FileDecoder{
		Network:    snap.Network,
		Deployment: snap.Deployment,
		Resolver:   resolver.New(a.deployments, cache, cache.NameSet(), a.logger),
		Sink:       storage.NewJsonlStorage(cfg.Out),
		Errors:     storage.NewJsonlStorage(cfg.Errors),
		Logger:     a.logger,
	}

	a.logger.Info("decode start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
		zap.String("network", snap.Network),
		zap.String("deployment", snap.Deployment),
	)

	stats, err := decoder.Decode(ctx, inputFile)
	if err != nil {
		return err
	}
	return printJSON(cmd, stats)
}
