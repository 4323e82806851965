package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DeploymentsFile != "./deployments.json" || cfg.AbisFolder != "./abis" {
		t.Fatalf("unexpected paths: %+v", cfg)
	}
	if cfg.LogLevel != "info" || cfg.AbiPollInterval != 0 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadLegacyEnv(t *testing.T) {
	t.Setenv("DEPLOYMENTS_FILE", "/srv/deployments.json")
	t.Setenv("ABIS_FOLDER", "/srv/abis")
	t.Setenv("EXPLORER_RPC", "http://localhost:8545")
	t.Setenv("EXPLORER_ABI_POLL_INTERVAL", "2s")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DeploymentsFile != "/srv/deployments.json" || cfg.AbisFolder != "/srv/abis" {
		t.Fatalf("legacy env not applied: %+v", cfg)
	}
	if cfg.RPCURL != "http://localhost:8545" || cfg.AbiPollInterval != 2*time.Second {
		t.Fatalf("prefixed env not applied: %+v", cfg)
	}
}

func TestLoadFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "explorer.yaml")
	content := "rpc: http://file:8545\nnetwork: bsc\nlog-level: warn\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("rpc", "", "")
	flags.String("network", "", "")
	if err := flags.Parse([]string{"--rpc", "http://flag:8545"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCURL != "http://flag:8545" {
		t.Fatalf("flag should win: %s", cfg.RPCURL)
	}
	if cfg.Network != "bsc" || cfg.LogLevel != "warn" {
		t.Fatalf("file values missing: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestLoadScan(t *testing.T) {
	flags := pflag.NewFlagSet("scan", pflag.ContinueOnError)
	flags.StringSlice("address", nil, "")
	flags.Uint64("from", 0, "")
	if err := flags.Parse([]string{"--address", "0xaa, 0xbb", "--from", "10"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	t.Setenv("EXPLORER_TOPIC0", "0x01,,0x02")

	cfg, err := LoadScan("", flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(cfg.Addresses, []string{"0xaa", "0xbb"}) {
		t.Fatalf("addresses mismatch: %v", cfg.Addresses)
	}
	if !reflect.DeepEqual(cfg.Topic0, []string{"0x01", "0x02"}) {
		t.Fatalf("topic0 mismatch: %v", cfg.Topic0)
	}
	if cfg.FromBlock != 10 || cfg.BatchSize != 2000 || cfg.MaxRetries != 5 || cfg.RetryBackoff != 500*time.Millisecond {
		t.Fatalf("unexpected scan config: %+v", cfg)
	}
	if !cfg.CheckpointEnabled || cfg.Out != "./data/events.jsonl" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadDecode(t *testing.T) {
	t.Setenv("EXPLORER_IN", "./data/logs.jsonl")
	cfg, err := LoadDecode("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.In != "./data/logs.jsonl" || cfg.Out != "./data/decoded_events.jsonl" || cfg.Errors != "./data/decode_errors.jsonl" {
		t.Fatalf("unexpected decode config: %+v", cfg)
	}
}
