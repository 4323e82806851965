package decoder

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"contractScope/internal/model"
)

type compiledMethod struct {
	entry  model.AbiEntry
	method abi.Method
}

type compiledEvent struct {
	entry model.AbiEntry
	event abi.Event
}

// Compiled is a contract ABI converted to go-ethereum form once, in file
// order except that anonymous events follow the others. Entries that go-ethereum cannot represent are left out and simply
// never match.
type Compiled struct {
	methods []compiledMethod
	events  []compiledEvent
	skipped []error
}

// Compile converts every function and event entry of contractAbi.
func Compile(contractAbi model.ContractAbi) *Compiled {
	c := &Compiled{}
	for _, entry := range contractAbi.Functions() {
		method, err := newMethod(entry)
		if err != nil {
			c.skipped = append(c.skipped, err)
			continue
		}
		c.methods = append(c.methods, compiledMethod{entry: entry, method: method})
	}
	// Events with a topic0 selector come first; anonymous events would
	// otherwise claim any log with a matching topic count.
	var anonymous []compiledEvent
	for _, entry := range contractAbi.Events() {
		event, err := newEvent(entry)
		if err != nil {
			c.skipped = append(c.skipped, err)
			continue
		}
		if event.Anonymous {
			anonymous = append(anonymous, compiledEvent{entry: entry, event: event})
			continue
		}
		c.events = append(c.events, compiledEvent{entry: entry, event: event})
	}
	c.events = append(c.events, anonymous...)
	return c
}

// Skipped returns the conversion errors of entries left out by Compile.
func (c *Compiled) Skipped() []error {
	return c.skipped
}

// Method returns the go-ethereum method for the first function named name
// whose input count equals inputs, or any arity when inputs is negative.
func (c *Compiled) Method(name string, inputs int) (abi.Method, model.AbiEntry, bool) {
	for _, m := range c.methods {
		if m.entry.Name != name {
			continue
		}
		if inputs >= 0 && len(m.entry.Inputs) != inputs {
			continue
		}
		return m.method, m.entry, true
	}
	return abi.Method{}, model.AbiEntry{}, false
}

// EventID returns the topic0 of the first event named name.
func (c *Compiled) EventID(name string) (common.Hash, bool) {
	for _, e := range c.events {
		if e.entry.Name == name {
			return e.event.ID, true
		}
	}
	return common.Hash{}, false
}

func newMethod(entry model.AbiEntry) (abi.Method, error) {
	inputs, err := NewArguments(entry.Inputs)
	if err != nil {
		return abi.Method{}, fmt.Errorf("function %s inputs: %w", entry.Name, err)
	}
	outputs, err := NewArguments(entry.Outputs)
	if err != nil {
		return abi.Method{}, fmt.Errorf("function %s outputs: %w", entry.Name, err)
	}
	mutability := entry.StateMutability
	if mutability == "" {
		mutability = "nonpayable"
	}
	return abi.NewMethod(entry.Name, entry.Name, abi.Function, mutability,
		mutability == "view" || mutability == "pure", mutability == "payable", inputs, outputs), nil
}

func newEvent(entry model.AbiEntry) (abi.Event, error) {
	inputs, err := NewArguments(entry.Inputs)
	if err != nil {
		return abi.Event{}, fmt.Errorf("event %s inputs: %w", entry.Name, err)
	}
	return abi.NewEvent(entry.Name, entry.Name, entry.Anonymous, inputs), nil
}

// NewArguments converts ABI parameters to go-ethereum arguments.
func NewArguments(params []model.AbiParameter) (abi.Arguments, error) {
	args := make(abi.Arguments, 0, len(params))
	for _, param := range params {
		typ, err := abi.NewType(param.Type, param.InternalType, marshaling(param.Components))
		if err != nil {
			return nil, fmt.Errorf("parameter %q type %s: %w", param.Name, param.Type, err)
		}
		args = append(args, abi.Argument{Name: param.Name, Type: typ, Indexed: param.Indexed})
	}
	return args, nil
}

func marshaling(params []model.AbiParameter) []abi.ArgumentMarshaling {
	if len(params) == 0 {
		return nil
	}
	out := make([]abi.ArgumentMarshaling, 0, len(params))
	for _, param := range params {
		out = append(out, abi.ArgumentMarshaling{
			Name:         param.Name,
			Type:         param.Type,
			InternalType: param.InternalType,
			Components:   marshaling(param.Components),
			Indexed:      param.Indexed,
		})
	}
	return out
}
