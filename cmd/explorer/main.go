package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"contractScope/internal/abistore"
	"contractScope/internal/chain"
	"contractScope/internal/config"
	"contractScope/internal/explorer"
	"contractScope/internal/model"
	"contractScope/internal/resolver"
)

func main() {
	root := &cobra.Command{
		Use:          "explorer",
		Short:        "Contract explorer: decode transactions, logs and calls with deployment ABIs",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file path")
	pf.String("rpc", "", "JSON-RPC URL")
	pf.String("deployments", "./deployments.json", "deployments manifest (env DEPLOYMENTS_FILE)")
	pf.String("abis", "./abis", "ABI artifact folder (env ABIS_FOLDER)")
	pf.String("network", "", "network to select, auto-selected when the manifest has one")
	pf.String("deployment", "", "deployment to select, auto-selected when the network has one")
	pf.String("contract", "", "contract to select")
	pf.Duration("abi-poll-interval", 0, "reload the ABI folder on this interval, 0 disables")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-file", "", "also write logs to this rotating file")

	root.AddCommand(
		newTxCmd(),
		newBlockCmd(),
		newLogsCmd(),
		newCallCmd(),
		newContractsCmd(),
		newMatchCmd(),
		newValidateCmd(),
		newScanCmd(),
		newDecodeLogsCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by the interactive commands.
type app struct {
	cfg         config.Config
	logger      *zap.Logger
	deployments *model.DeploymentsFile
	abis        *abistore.Poller
	chain       *chain.Client
	service     *explorer.Service
}

// newApp loads config, deployments and ABIs, connects to the RPC when
// withChain is set and applies the configured selection.
func newApp(ctx context.Context, cmd *cobra.Command, withChain bool) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}
	if err := a.loadSources(ctx, cfg); err != nil {
		a.Close()
		return nil, err
	}

	var reader explorer.ChainReader
	if withChain {
		if cfg.RPCURL == "" {
			a.Close()
			return nil, fmt.Errorf("rpc url is required")
		}
		a.chain, err = chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect rpc: %w", err)
		}
		reader = a.chain
	}

	a.service = explorer.NewService(reader, a.deployments, a.abis, nil, logger)
	if _, err := a.service.Select(cfg.Network, cfg.Deployment, cfg.Contract); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// loadSources reads the deployments manifest and the ABI store. A missing
// manifest leaves an empty one; a missing ABI folder leaves the builtin
// ABIs only.
func (a *app) loadSources(ctx context.Context, cfg config.Config) error {
	a.deployments = model.NewDeploymentsFile()
	if cfg.DeploymentsFile != "" {
		file, err := resolver.LoadDeployments(cfg.DeploymentsFile)
		switch {
		case err == nil:
			a.deployments = file
		case errors.Is(err, os.ErrNotExist):
			a.logger.Warn("deployments file not found", zap.String("path", cfg.DeploymentsFile))
		default:
			return err
		}
	}

	stores := abistore.MultiStore{}
	if stat, err := os.Stat(cfg.AbisFolder); err == nil && stat.IsDir() {
		stores = append(stores, abistore.NewFolderStore(cfg.AbisFolder))
	} else if cfg.AbisFolder != "" {
		a.logger.Warn("abi folder not found", zap.String("path", cfg.AbisFolder))
	}
	stores = append(stores, abistore.NewBuiltinStore())

	a.abis = abistore.NewPoller(stores, cfg.AbiPollInterval, a.logger, nil)
	if _, err := a.abis.Refresh(); err != nil {
		return fmt.Errorf("load abis: %w", err)
	}
	if cfg.AbiPollInterval > 0 {
		go func() {
			if err := a.abis.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn("abi poller stopped", zap.Error(err))
			}
		}()
	}

	a.logger.Debug("sources loaded",
		zap.Int("networks", len(a.deployments.Networks())),
		zap.Int("abis", len(a.abis.Current())),
	)
	return nil
}

func (a *app) Close() {
	if a.chain != nil {
		a.chain.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func newLogger(level, file string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if file == "" {
		return cfg.Build()
	}

	rotating := zapcore.AddSync(&lumberjack.Logger{
		Filename:   file,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     28,
		Compress:   true,
	})
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(cfg.EncoderConfig), rotating, cfg.Level)
	return cfg.Build(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	}))
}

func printJSON(cmd *cobra.Command, value interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func commandTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 2*time.Minute)
}
