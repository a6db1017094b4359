package engine

import (
	"sort"
	"sync"
)

// PartitionLocks serializes conflicting mutations per crew member so two
// concurrent resolutions cannot reassign the same crew without one of them
// seeing the other's write. There is deliberately no global roster lock;
// partitioning by crew id keeps unrelated requests fully parallel.
type PartitionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewPartitionLocks() *PartitionLocks {
	return &PartitionLocks{locks: make(map[string]*sync.Mutex)}
}

func (p *PartitionLocks) lockFor(key string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	if m, ok := p.locks[key]; ok {
		return m
	}
	m := &sync.Mutex{}
	p.locks[key] = m
	return m
}

// Acquire locks the partitions for every given crew id and returns a release
// function. Partitions are always taken in sorted id order so two callers
// holding overlapping sets cannot deadlock.
func (p *PartitionLocks) Acquire(crewIDs ...string) func() {
	seen := make(map[string]struct{}, len(crewIDs))
	ids := make([]string, 0, len(crewIDs))
	for _, id := range crewIDs {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	muxes := make([]*sync.Mutex, len(ids))
	for i, id := range ids {
		muxes[i] = p.lockFor(id)
	}
	for _, m := range muxes {
		m.Lock()
	}

	return func() {
		for i := len(muxes) - 1; i >= 0; i-- {
			muxes[i].Unlock()
		}
	}
}
