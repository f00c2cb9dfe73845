package metrics

import "sync/atomic"

// LookupCounters records which tier answered each geocode lookup. A nil
// *LookupCounters ignores every call.
type LookupCounters struct {
	storeHits      atomic.Int64
	repositoryHits atomic.Int64
	upstreamCalls  atomic.Int64
	failures       atomic.Int64
}

// LookupSnapshot is a point-in-time copy of LookupCounters.
type LookupSnapshot struct {
	StoreHits      int64 `json:"storeHits"`
	RepositoryHits int64 `json:"repositoryHits"`
	UpstreamCalls  int64 `json:"upstreamCalls"`
	Failures       int64 `json:"failures"`
}

// NewLookupCounters returns zeroed counters.
func NewLookupCounters() *LookupCounters {
	return &LookupCounters{}
}

func (c *LookupCounters) StoreHit() {
	if c != nil {
		c.storeHits.Add(1)
	}
}

func (c *LookupCounters) RepositoryHit() {
	if c != nil {
		c.repositoryHits.Add(1)
	}
}

func (c *LookupCounters) UpstreamCall() {
	if c != nil {
		c.upstreamCalls.Add(1)
	}
}

func (c *LookupCounters) Failure() {
	if c != nil {
		c.failures.Add(1)
	}
}

// Snapshot reads all counters.
func (c *LookupCounters) Snapshot() LookupSnapshot {
	if c == nil {
		return LookupSnapshot{}
	}
	return LookupSnapshot{
		StoreHits:      c.storeHits.Load(),
		RepositoryHits: c.repositoryHits.Load(),
		UpstreamCalls:  c.upstreamCalls.Load(),
		Failures:       c.failures.Load(),
	}
}

// IsZero reports whether no lookups were recorded.
func (s LookupSnapshot) IsZero() bool {
	return s == LookupSnapshot{}
}
