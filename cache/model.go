// Package cache models a set-associative cache at the tag level. The
// model holds no data and moves no bytes: it decides hit, miss, or
// eviction for each access and counts the outcomes.
package cache

import (
	"github.com/sarchlab/cachesim/trace"
)

// Statistics accumulates outcome counts across a simulation.
type Statistics struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Accesses returns the total number of simulated accesses.
func (s Statistics) Accesses() uint64 {
	return s.Hits + s.Misses
}

// HitRate returns the fraction of accesses that hit, or zero before any
// access.
func (s Statistics) HitRate() float64 {
	if s.Accesses() == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Accesses())
}

// Model simulates a set-associative cache against a stream of memory
// accesses. It is deterministic: the same configuration and the same
// access sequence always produce the same statistics.
type Model struct {
	config Config
	sets   []set
	stats  Statistics
}

// New creates a Model for the given configuration. All sets are
// allocated up front and start with every line invalid.
func New(config Config) (*Model, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	m := &Model{
		config: config,
		sets:   make([]set, config.NumSets()),
	}
	for i := range m.sets {
		m.sets[i] = newSet(config.LinesPerSet)
	}
	return m, nil
}

// Config returns the model's configuration.
func (m *Model) Config() Config {
	return m.config
}

// Stats returns a copy of the accumulated statistics.
func (m *Model) Stats() Statistics {
	return m.stats
}

// ResetStats clears the statistics without touching cache contents.
func (m *Model) ResetStats() {
	m.stats = Statistics{}
}

// Reset invalidates every line and clears the statistics, returning the
// model to its freshly constructed state.
func (m *Model) Reset() {
	for i := range m.sets {
		m.sets[i] = newSet(m.config.LinesPerSet)
	}
	m.stats = Statistics{}
}

// Access simulates one lookup of tag in the set at setIndex and updates
// the counters. An eviction counts as both a miss and an eviction, so
// Misses >= Evictions always holds.
func (m *Model) Access(setIndex int, tag uint64, clock int64) Outcome {
	outcome := m.sets[setIndex].lookupOrInsert(tag, clock, m.config.Policy)

	switch outcome {
	case Hit:
		m.stats.Hits++
	case Miss:
		m.stats.Misses++
	case MissEvict:
		m.stats.Misses++
		m.stats.Evictions++
	}
	return outcome
}

// SimulateOperation maps a trace operation onto cache accesses and
// returns their outcomes in order. Loads and stores are one access. A
// modify is a load followed by a store to the same address, with the
// store one clock later; the second access always hits the line the
// first access just touched or installed, so a modify produces at most
// one eviction.
//
// The clock advance for the store half is local to this call. The
// caller keeps one clock per trace record, not per access.
func (m *Model) SimulateOperation(op trace.Op, addr uint64, clock int64) []Outcome {
	setIndex := int(SetIndex(addr, m.config.SetBits, m.config.BlockBits))
	tag := Tag(addr, m.config.SetBits, m.config.BlockBits)

	first := m.Access(setIndex, tag, clock)
	if op != trace.Modify {
		return []Outcome{first}
	}

	second := m.Access(setIndex, tag, clock+1)
	return []Outcome{first, second}
}
