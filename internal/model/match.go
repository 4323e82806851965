package model

import "sort"

// AbiMatch is the result of fuzzy matching a contract name to an ABI name.
// Lower scores are stronger: 1 exact, 2 case-insensitive, 3 suffix, 4 substring.
type AbiMatch struct {
	AbiName string `json:"abi_name"`
	Score   int    `json:"score"`
}

// NameSet is a set of ABI names.
type NameSet map[string]struct{}

func NewNameSet(names ...string) NameSet {
	set := make(NameSet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in byte order.
func (s NameSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
