package model

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

func TestLogRecordToLogRoundTrip(t *testing.T) {
	original := types.Log{
		Address:     common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Topics:      []common.Hash{common.HexToHash("0xaaa"), common.HexToHash("0xbbb")},
		Data:        []byte{0xde, 0xad, 0xbe, 0xef},
		BlockNumber: 36000000,
		TxHash:      common.HexToHash("0xdef456"),
		TxIndex:     7,
		BlockHash:   common.HexToHash("0xabc123"),
		Index:       12,
	}

	record := NewLogRecord(56, original, 1700000000)
	b, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded LogRecord
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(record, decoded) {
		t.Fatalf("record mismatch: %+v != %+v", record, decoded)
	}

	back, err := decoded.ToLog()
	if err != nil {
		t.Fatalf("to log failed: %v", err)
	}
	if !reflect.DeepEqual(*back, original) {
		t.Fatalf("log mismatch: %+v != %+v", *back, original)
	}
}

func TestLogRecordToLogInvalid(t *testing.T) {
	if _, err := (LogRecord{Address: "nope"}).ToLog(); err == nil {
		t.Fatalf("expected error for invalid address")
	}
	rec := LogRecord{Address: "0x1111111111111111111111111111111111111111", Topics: []string{"0xzz"}}
	if _, err := rec.ToLog(); err == nil {
		t.Fatalf("expected error for invalid topic")
	}
}
