package abistore

import (
	"bytes"
	"sort"

	"github.com/pkg/errors"

	"contractScope/internal/model"
)

// Cache maps ABI names to raw artifact JSON. A Cache is itself a Store.
type Cache map[string][]byte

// Load reads every artifact the store lists.
func Load(store Store) (Cache, error) {
	names, err := store.Names()
	if err != nil {
		return nil, err
	}
	cache := make(Cache, len(names))
	for _, name := range names {
		data, err := store.Read(name)
		if err != nil {
			return nil, errors.WithMessagef(err, "load %s", name)
		}
		cache[name] = data
	}
	return cache, nil
}

// Changed reports whether next differs from prev: a different size, or any
// key of prev that is missing or holds different bytes in next.
func Changed(prev, next Cache) bool {
	if len(prev) != len(next) {
		return true
	}
	for name, data := range prev {
		other, ok := next[name]
		if !ok || !bytes.Equal(data, other) {
			return true
		}
	}
	return false
}

// NameSet returns the cached names as a matcher candidate set.
func (c Cache) NameSet() model.NameSet {
	set := make(model.NameSet, len(c))
	for name := range c {
		set[name] = struct{}{}
	}
	return set
}

func (c Cache) Names() ([]string, error) {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (c Cache) Read(name string) ([]byte, error) {
	data, ok := c[name]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "cached abi %s", name)
	}
	return data, nil
}
