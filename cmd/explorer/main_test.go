package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"contractScope/internal/model"
)

func TestParseBlockNumber(t *testing.T) {
	for _, input := range []string{"", "latest", "LATEST"} {
		n, err := parseBlockNumber(input)
		if err != nil || n != nil {
			t.Fatalf("%q: expected nil block, got %v %v", input, n, err)
		}
	}
	n, err := parseBlockNumber("0x10")
	if err != nil || n.Uint64() != 16 {
		t.Fatalf("hex block: %v %v", n, err)
	}
	n, err = parseBlockNumber("12345")
	if err != nil || n.Uint64() != 12345 {
		t.Fatalf("decimal block: %v %v", n, err)
	}
	if _, err := parseBlockNumber("-1"); err == nil {
		t.Fatalf("expected error for negative block")
	}
	if _, err := parseBlockNumber("pending"); err == nil {
		t.Fatalf("expected error for unknown tag")
	}
}

func TestParseArgPairs(t *testing.T) {
	got, err := parseArgPairs([]string{"owner=0xabc", "ids=[1,2]", "memo=a=b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["owner"] != "0xabc" || got["ids"] != "[1,2]" || got["memo"] != "a=b" {
		t.Fatalf("unexpected args: %v", got)
	}
	if _, err := parseArgPairs([]string{"novalue"}); err == nil {
		t.Fatalf("expected error for missing '='")
	}
}

func TestScanAddressesFallsBackToDeployment(t *testing.T) {
	file := model.NewDeploymentsFile()
	file.Set("bsc", "v1", "Token", "0x1000000000000000000000000000000000000001")
	file.Set("bsc", "v1", "Pending", "TBD")

	got, err := scanAddresses(nil, file, "bsc", "v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := common.HexToAddress("0x1000000000000000000000000000000000000001")
	if len(got) != 1 || got[0] != want {
		t.Fatalf("unexpected addresses: %v", got)
	}

	explicit, err := scanAddresses([]string{"0x2000000000000000000000000000000000000002"}, file, "bsc", "v1")
	if err != nil || len(explicit) != 1 || explicit[0] == want {
		t.Fatalf("explicit addresses should win: %v %v", explicit, err)
	}
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "explorer.log")
	logger, err := newLogger("info", path)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected log output in file")
	}

	if _, err := newLogger("loud", ""); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
