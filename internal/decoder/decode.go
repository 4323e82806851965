// Package decoder decodes call data and receipt logs against a contract ABI.
// Every failure degrades to a raw or error entry; nothing here returns an
// error or performs I/O.
package decoder

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"contractScope/internal/model"
)

const (
	ErrFunctionData = "Failed to decode function data"
	ErrLog          = "Failed to decode log"
)

// DecodeTransactionWithAbi decodes the call input of tx and every log of
// receipt. Either may be nil.
func DecodeTransactionWithAbi(tx *types.Transaction, receipt *types.Receipt, contractAbi model.ContractAbi) model.DecodedTransaction {
	return Compile(contractAbi).DecodeTransaction(tx, receipt)
}

// DecodeLogs decodes logs in order; the result has one entry per log.
func DecodeLogs(logs []*types.Log, contractAbi model.ContractAbi) []model.DecodedEventLog {
	return Compile(contractAbi).DecodeLogs(logs)
}

// DecodeFunctionData decodes selector-prefixed call data.
func DecodeFunctionData(data []byte, contractAbi model.ContractAbi) model.DecodedFunctionData {
	return Compile(contractAbi).DecodeFunctionData(data)
}

// DecodeTransaction is DecodeTransactionWithAbi over a compiled ABI.
func (c *Compiled) DecodeTransaction(tx *types.Transaction, receipt *types.Receipt) model.DecodedTransaction {
	out := model.DecodedTransaction{DecodedEvents: []model.DecodedEventLog{}}
	if tx != nil && len(tx.Data()) > 0 {
		input := c.DecodeFunctionData(tx.Data())
		out.DecodedInput = &input
	}
	if receipt != nil {
		out.DecodedEvents = c.DecodeLogs(receipt.Logs)
	}
	return out
}

// DecodeFunctionData matches the 4-byte selector against the ABI functions
// in file order and unpacks the arguments.
func (c *Compiled) DecodeFunctionData(data []byte) model.DecodedFunctionData {
	if len(data) < 4 {
		return model.DecodedFunctionData{Error: ErrFunctionData}
	}
	selector := data[:4]
	for _, m := range c.methods {
		if !bytes.Equal(m.method.ID, selector) {
			continue
		}
		values, err := m.method.Inputs.Unpack(data[4:])
		if err != nil || len(values) != len(m.method.Inputs) {
			return model.DecodedFunctionData{Error: ErrFunctionData}
		}
		args := make([]model.Argument, 0, len(values))
		for i, input := range m.method.Inputs {
			args = append(args, model.Argument{
				Name:  input.Name,
				Type:  input.Type.String(),
				Value: ToValue(input.Type, values[i]),
			})
		}
		return model.DecodedFunctionData{
			FunctionName: m.entry.Name,
			Args:         args,
			Signature:    m.entry.Signature(),
		}
	}
	return model.DecodedFunctionData{Error: ErrFunctionData}
}

// DecodeLogs decodes each log independently; a log that fails never affects
// its neighbours.
func (c *Compiled) DecodeLogs(logs []*types.Log) []model.DecodedEventLog {
	out := make([]model.DecodedEventLog, 0, len(logs))
	for i, lg := range logs {
		out = append(out, c.DecodeLog(i, lg))
	}
	return out
}

// DecodeLog decodes one log at position index. The first event whose topic0
// matches wins, in file order; anonymous events are tried after all of them.
// A log nothing accepts is returned raw.
func (c *Compiled) DecodeLog(index int, lg *types.Log) (entry model.DecodedEventLog) {
	if lg == nil {
		return model.DecodedEventLog{Index: index, Error: ErrLog}
	}
	defer func() {
		if r := recover(); r != nil {
			entry = model.DecodedEventLog{Index: index, Address: lg.Address.Hex(), Error: ErrLog}
		}
	}()

	if len(lg.Topics) > 0 {
		for _, ev := range c.events {
			args, err := decodeEvent(ev.event, lg)
			if err != nil {
				continue
			}
			blockNumber := lg.BlockNumber
			logIndex := lg.Index
			return model.DecodedEventLog{
				Index:           index,
				BlockNumber:     &blockNumber,
				TransactionHash: lg.TxHash.Hex(),
				LogIndex:        &logIndex,
				Address:         lg.Address.Hex(),
				EventName:       ev.entry.Name,
				Args:            args,
				Decoded:         true,
			}
		}
	}
	return rawLog(index, lg)
}

func rawLog(index int, lg *types.Log) model.DecodedEventLog {
	topics := make([]string, 0, len(lg.Topics))
	for _, topic := range lg.Topics {
		topics = append(topics, topic.Hex())
	}
	return model.DecodedEventLog{
		Index:   index,
		Address: lg.Address.Hex(),
		Topics:  topics,
		Data:    hexutil.Encode(lg.Data),
	}
}

func decodeEvent(event abi.Event, lg *types.Log) ([]model.Argument, error) {
	topics := lg.Topics
	if !event.Anonymous {
		if topics[0] != event.ID {
			return nil, fmt.Errorf("topic0 mismatch")
		}
		topics = topics[1:]
	}

	indexed := indexedArguments(event.Inputs)
	if len(topics) != len(indexed) {
		return nil, fmt.Errorf("expected %d indexed topics, got %d", len(indexed), len(topics))
	}

	values, err := event.Inputs.NonIndexed().Unpack(lg.Data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", event.Name, err)
	}

	args := make([]model.Argument, 0, len(event.Inputs))
	topicPos, valuePos := 0, 0
	for _, input := range event.Inputs {
		arg := model.Argument{Name: input.Name, Type: input.Type.String(), Indexed: input.Indexed}
		if input.Indexed {
			value, err := topicValue(input, topics[topicPos])
			if err != nil {
				return nil, err
			}
			arg.Value = value
			topicPos++
		} else {
			if valuePos >= len(values) {
				return nil, fmt.Errorf("missing value for %s", input.Name)
			}
			arg.Value = ToValue(input.Type, values[valuePos])
			valuePos++
		}
		args = append(args, arg)
	}
	return args, nil
}

// topicValue decodes one indexed argument. Reference types are stored as
// their keccak hash in the topic, so the hash itself is the value.
func topicValue(input abi.Argument, topic common.Hash) (model.Value, error) {
	switch input.Type.T {
	case abi.StringTy, abi.BytesTy, abi.SliceTy, abi.ArrayTy, abi.TupleTy:
		return model.BytesValue(topic.Hex()), nil
	}

	const key = "value"
	single := abi.Arguments{{Name: key, Type: input.Type, Indexed: true}}
	out := make(map[string]interface{}, 1)
	if err := abi.ParseTopicsIntoMap(out, single, []common.Hash{topic}); err != nil {
		return model.Value{}, fmt.Errorf("parse topic %s: %w", input.Name, err)
	}
	return ToValue(input.Type, out[key]), nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}
