package app

import (
	"sort"
	"sync"
)

// ErrorTracker counts consecutive fetch failures per address.
// The counts are for health reporting only and never gate polling.
type ErrorTracker struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewErrorTracker() *ErrorTracker {
	return &ErrorTracker{counts: make(map[string]int)}
}

// RecordFailure increments the address's counter and returns the new value.
func (et *ErrorTracker) RecordFailure(address string) int {
	et.mu.Lock()
	defer et.mu.Unlock()
	et.counts[address]++
	return et.counts[address]
}

// RecordSuccess resets the address's counter and returns the value it had.
func (et *ErrorTracker) RecordSuccess(address string) int {
	et.mu.Lock()
	defer et.mu.Unlock()
	prev := et.counts[address]
	delete(et.counts, address)
	return prev
}

// Count returns the current consecutive failure count for an address.
func (et *ErrorTracker) Count(address string) int {
	et.mu.Lock()
	defer et.mu.Unlock()
	return et.counts[address]
}

// Failing returns the addresses with a non-zero counter, sorted.
func (et *ErrorTracker) Failing() []string {
	et.mu.Lock()
	defer et.mu.Unlock()

	failing := make([]string, 0, len(et.counts))
	for addr, n := range et.counts {
		if n > 0 {
			failing = append(failing, addr)
		}
	}
	sort.Strings(failing)
	return failing
}

// Snapshot returns a copy of all non-zero counters.
func (et *ErrorTracker) Snapshot() map[string]int {
	et.mu.Lock()
	defer et.mu.Unlock()

	out := make(map[string]int, len(et.counts))
	for addr, n := range et.counts {
		out[addr] = n
	}
	return out
}
