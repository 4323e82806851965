package abistore

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Read when no artifact exists for a name.
var ErrNotFound = errors.New("abi not found")

// Store is a source of ABI artifacts keyed by contract or ABI name. Read
// returns the raw JSON: either a bare ABI array or an artifact object with an
// "abi" field.
type Store interface {
	Names() ([]string, error)
	Read(name string) ([]byte, error)
}

// FolderStore reads a compiler output folder laid out as
// <Root>/<Name>.sol/<Name>.json. Flat <Root>/<Name>.json files are accepted too.
type FolderStore struct {
	Root string
}

// NewFolderStore returns a store rooted at dir.
func NewFolderStore(dir string) *FolderStore {
	return &FolderStore{Root: dir}
}

// Names lists every ABI name found under Root in sorted order.
func (s *FolderStore) Names() ([]string, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, errors.Wrapf(err, "read abi folder %s", s.Root)
	}

	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case entry.IsDir() && strings.HasSuffix(name, ".sol"):
			base := strings.TrimSuffix(name, ".sol")
			if base == "" {
				continue
			}
			if _, err := os.Stat(filepath.Join(s.Root, name, base+".json")); err != nil {
				continue
			}
			seen[base] = struct{}{}
		case !entry.IsDir() && strings.HasSuffix(name, ".json"):
			base := strings.TrimSuffix(name, ".json")
			if base == "" {
				continue
			}
			seen[base] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Read returns the artifact for name, preferring the Name.sol/Name.json layout.
func (s *FolderStore) Read(name string) ([]byte, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, errors.Wrapf(ErrNotFound, "invalid abi name %q", name)
	}
	candidates := []string{
		filepath.Join(s.Root, name+".sol", name+".json"),
		filepath.Join(s.Root, name+".json"),
	}
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "read abi %s", path)
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "abi %s in %s", name, s.Root)
}

// MultiStore layers stores; the first store that has a name wins.
type MultiStore []Store

// Names returns the sorted union of all layer names. A failing layer fails
// the whole listing.
func (m MultiStore) Names() ([]string, error) {
	seen := make(map[string]struct{})
	for _, store := range m {
		names, err := store.Names()
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			seen[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// Read tries each layer in order, skipping layers that do not have name.
func (m MultiStore) Read(name string) ([]byte, error) {
	for _, store := range m {
		data, err := store.Read(name)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "abi %s", name)
}
