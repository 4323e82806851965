package abistore

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Poller keeps a Cache in sync with a Store by re-reading it on an interval.
// The cache is replaced only when Changed reports a difference.
type Poller struct {
	store    Store
	interval time.Duration
	logger   *zap.Logger
	onChange func(Cache)

	mu      sync.RWMutex
	current Cache
}

// NewPoller builds a poller. onChange may be nil.
func NewPoller(store Store, interval time.Duration, logger *zap.Logger, onChange func(Cache)) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		store:    store,
		interval: interval,
		logger:   logger,
		onChange: onChange,
		current:  Cache{},
	}
}

// Current returns the latest cache. Callers must not mutate it.
func (p *Poller) Current() Cache {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Refresh reloads the store once and reports whether the cache was swapped.
func (p *Poller) Refresh() (bool, error) {
	next, err := Load(p.store)
	if err != nil {
		return false, err
	}

	p.mu.Lock()
	if !Changed(p.current, next) {
		p.mu.Unlock()
		return false, nil
	}
	p.current = next
	p.mu.Unlock()

	p.logger.Info("abi cache updated", zap.Int("abis", len(next)))
	if p.onChange != nil {
		p.onChange(next)
	}
	return true, nil
}

// Run refreshes immediately and then on every tick until ctx is done. A
// non-positive interval performs the initial refresh only.
func (p *Poller) Run(ctx context.Context) error {
	if _, err := p.Refresh(); err != nil {
		return err
	}
	if p.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := p.Refresh(); err != nil {
				p.logger.Warn("abi refresh failed", zap.Error(err))
			}
		}
	}
}
