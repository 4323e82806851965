// Package session holds the explorer's current network, deployment and
// contract selection.
package session

import (
	"errors"
	"sync"
)

// ErrStaleSelection is returned when a result was produced for a selection
// that has since changed.
var ErrStaleSelection = errors.New("selection changed while request was in flight")

// Snapshot is an immutable copy of the selection at one generation.
type Snapshot struct {
	Network    string
	Deployment string
	Contract   string
	Generation uint64
}

// Selection is the mutable selection store. Every change bumps the
// generation so in-flight work can detect that it is out of date.
type Selection struct {
	mu   sync.RWMutex
	snap Snapshot
}

func New() *Selection {
	return &Selection{}
}

// Snapshot returns the current selection.
func (s *Selection) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// SetNetwork selects a network and clears the deployment and contract.
func (s *Selection) SetNetwork(network string) Snapshot {
	return s.update(func(snap *Snapshot) {
		snap.Network = network
		snap.Deployment = ""
		snap.Contract = ""
	})
}

// SetDeployment selects a deployment and clears the contract.
func (s *Selection) SetDeployment(deployment string) Snapshot {
	return s.update(func(snap *Snapshot) {
		snap.Deployment = deployment
		snap.Contract = ""
	})
}

func (s *Selection) SetContract(contract string) Snapshot {
	return s.update(func(snap *Snapshot) {
		snap.Contract = contract
	})
}

// Set replaces the whole selection at once.
func (s *Selection) Set(network, deployment, contract string) Snapshot {
	return s.update(func(snap *Snapshot) {
		snap.Network = network
		snap.Deployment = deployment
		snap.Contract = contract
	})
}

// Invalidate bumps the generation without changing the selection, e.g.
// after the ABI cache was swapped.
func (s *Selection) Invalidate() Snapshot {
	return s.update(func(*Snapshot) {})
}

// IsCurrent reports whether generation is still the latest.
func (s *Selection) IsCurrent(generation uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Generation == generation
}

// Check returns ErrStaleSelection unless snap is still current.
func (s *Selection) Check(snap Snapshot) error {
	if !s.IsCurrent(snap.Generation) {
		return ErrStaleSelection
	}
	return nil
}

func (s *Selection) update(fn func(*Snapshot)) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.snap)
	s.snap.Generation++
	return s.snap
}
