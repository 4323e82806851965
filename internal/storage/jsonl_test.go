package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"contractScope/internal/model"
)

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "events.jsonl")
	sink := NewJsonlStorage(path)

	batch := []model.EventRecord{
		{ChainID: 1, BlockNumber: 10, Address: "0x01", ContractName: "Token", Event: model.DecodedEventLog{EventName: "Transfer", Decoded: true}},
		{ChainID: 1, BlockNumber: 11, Address: "0x02", Event: model.DecodedEventLog{Topics: []string{"0xaa"}}},
	}
	if err := sink.PutEventBatch(context.Background(), batch[:1]); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	if err := sink.PutEventBatch(context.Background(), batch[1:]); err != nil {
		t.Fatalf("second batch: %v", err)
	}
	if err := sink.PutEventBatch(context.Background(), nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	var got []model.EventRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rec struct {
			BlockNumber  uint64 `json:"block_number"`
			ContractName string `json:"contract_name"`
			Event        struct {
				EventName string `json:"event_name"`
				Decoded   bool   `json:"decoded"`
			} `json:"event"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		got = append(got, model.EventRecord{BlockNumber: rec.BlockNumber, ContractName: rec.ContractName,
			Event: model.DecodedEventLog{EventName: rec.Event.EventName, Decoded: rec.Event.Decoded}})
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(got))
	}
	if got[0].ContractName != "Token" || !got[0].Event.Decoded || got[1].Event.Decoded {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestJsonlStorageDecodeErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.jsonl")
	sink := NewJsonlStorage(path)
	if err := sink.PutDecodeErrors([]model.DecodeError{{TxHash: "0x01", Error: "invalid address"}}); err != nil {
		t.Fatalf("put errors: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `{"chain_id":0,"block_number":0,"tx_hash":"0x01","log_index":0,"address":"","topic0":"","error":"invalid address"}`+"\n" {
		t.Fatalf("unexpected line: %s", data)
	}
}
