package model

import "strings"

// AbiParameter is one input or output of an ABI entry.
type AbiParameter struct {
	Name         string         `json:"name"`
	Type         string         `json:"type"`
	InternalType string         `json:"internalType,omitempty"`
	Components   []AbiParameter `json:"components,omitempty"`
	Indexed      bool           `json:"indexed,omitempty"`
}

// AbiEntry is one element of a contract ABI. Type discriminates the variant
// (function, event, constructor, error, fallback, receive).
type AbiEntry struct {
	Type            string         `json:"type"`
	Name            string         `json:"name,omitempty"`
	Inputs          []AbiParameter `json:"inputs"`
	Outputs         []AbiParameter `json:"outputs,omitempty"`
	StateMutability string         `json:"stateMutability,omitempty"`
	Anonymous       bool           `json:"anonymous,omitempty"`
}

const (
	EntryFunction    = "function"
	EntryEvent       = "event"
	EntryConstructor = "constructor"
	EntryError       = "error"
)

// ContractAbi keeps the entries in source file order.
type ContractAbi []AbiEntry

// IsReadFunction reports whether the entry is a view or pure function.
func (e AbiEntry) IsReadFunction() bool {
	return e.Type == EntryFunction &&
		(e.StateMutability == "view" || e.StateMutability == "pure")
}

// IsWriteFunction reports whether the entry mutates chain state.
func (e AbiEntry) IsWriteFunction() bool {
	return e.Type == EntryFunction && !e.IsReadFunction()
}

// Signature renders the entry as name(type name, ...).
func (e AbiEntry) Signature() string {
	parts := make([]string, 0, len(e.Inputs))
	for _, in := range e.Inputs {
		if in.Name == "" {
			parts = append(parts, in.Type)
			continue
		}
		parts = append(parts, in.Type+" "+in.Name)
	}
	return e.Name + "(" + strings.Join(parts, ", ") + ")"
}

// Functions returns function entries in file order.
func (a ContractAbi) Functions() []AbiEntry {
	return a.ofType(EntryFunction)
}

// Events returns event entries in file order.
func (a ContractAbi) Events() []AbiEntry {
	return a.ofType(EntryEvent)
}

// Function returns the first function with the given name.
func (a ContractAbi) Function(name string) (AbiEntry, bool) {
	for _, e := range a {
		if e.Type == EntryFunction && e.Name == name {
			return e, true
		}
	}
	return AbiEntry{}, false
}

// Event returns the first event with the given name.
func (a ContractAbi) Event(name string) (AbiEntry, bool) {
	for _, e := range a {
		if e.Type == EntryEvent && e.Name == name {
			return e, true
		}
	}
	return AbiEntry{}, false
}

func (a ContractAbi) ofType(typ string) []AbiEntry {
	out := make([]AbiEntry, 0, len(a))
	for _, e := range a {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}
