package indexer

import (
	"github.com/ethereum/go-ethereum/core/types"

	"contractScope/internal/model"
	"contractScope/internal/resolver"
)

func buildEventRecord(chainID uint64, log types.Log, timestamp uint64, res *resolver.Resolution, decoded model.DecodedEventLog) model.EventRecord {
	record := model.EventRecord{
		ChainID:     chainID,
		BlockNumber: log.BlockNumber,
		BlockHash:   log.BlockHash.Hex(),
		TxHash:      log.TxHash.Hex(),
		LogIndex:    uint64(log.Index),
		Address:     log.Address.Hex(),
		Timestamp:   timestamp,
		Event:       decoded,
	}
	if res != nil {
		record.ContractName = res.ContractName
		record.AbiName = res.Match.AbiName
	}
	return record
}

func decodeErrorFromRecord(record model.LogRecord, err error) model.DecodeError {
	topic0 := ""
	if len(record.Topics) > 0 {
		topic0 = record.Topics[0]
	}

	return model.DecodeError{
		ChainID:     record.ChainID,
		BlockNumber: record.BlockNumber,
		TxHash:      record.TxHash,
		LogIndex:    record.LogIndex,
		Address:     record.Address,
		Topic0:      topic0,
		Error:       err.Error(),
	}
}
