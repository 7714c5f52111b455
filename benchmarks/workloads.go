// Package benchmarks provides synthetic trace workloads for exercising
// cache configurations.
package benchmarks

import (
	"math/rand"

	"github.com/sarchlab/cachesim/trace"
)

// A Workload is a named, fully materialized access trace. Workloads are
// deterministic: the random ones carry fixed seeds so that two runs see
// the same records.
type Workload struct {
	// Name identifies the workload.
	Name string

	// Description explains the access pattern.
	Description string

	// Records is the trace replayed against the cache.
	Records []trace.Record
}

// StandardWorkloads returns the standard workload set. The patterns are
// sized against the default geometry of 256 sets, one line per set, and
// 256-byte blocks.
func StandardWorkloads() []Workload {
	return []Workload{
		sequentialSweep(),
		stridedSweep(),
		randomUniform(),
		hotCold(),
		thrashingLoop(),
	}
}

// 1. Sequential Sweep - streams ascending addresses, hitting repeatedly
// inside each block before moving to the next.
func sequentialSweep() Workload {
	records := make([]trace.Record, 0, 4096)
	for i := 0; i < 4096; i++ {
		records = append(records, trace.Record{
			Op:      trace.Load,
			Address: uint64(i) * 4,
			Size:    4,
		})
	}

	return Workload{
		Name:        "sequential_sweep",
		Description: "ascending 4-byte loads - spatial locality within blocks",
		Records:     records,
	}
}

// 2. Strided Sweep - jumps a full page per access so no two consecutive
// accesses share a block.
func stridedSweep() Workload {
	records := make([]trace.Record, 0, 2048)
	for i := 0; i < 2048; i++ {
		records = append(records, trace.Record{
			Op:      trace.Load,
			Address: uint64(i) * 4096,
			Size:    8,
		})
	}

	return Workload{
		Name:        "strided_sweep",
		Description: "page-strided loads - defeats spatial locality entirely",
		Records:     records,
	}
}

// 3. Random Uniform - uncorrelated addresses over a space much larger
// than the cache.
func randomUniform() Workload {
	rng := rand.New(rand.NewSource(11))

	records := make([]trace.Record, 0, 4096)
	for i := 0; i < 4096; i++ {
		op := trace.Load
		if rng.Intn(2) == 1 {
			op = trace.Store
		}
		records = append(records, trace.Record{
			Op:      op,
			Address: uint64(rng.Intn(1 << 20)),
			Size:    uint64(1 << rng.Intn(4)),
		})
	}

	return Workload{
		Name:        "random_uniform",
		Description: "uniform random loads and stores over 1 MiB",
		Records:     records,
	}
}

// 4. Hot/Cold - most accesses touch a small hot region that fits in the
// cache, the rest scatter over a cold expanse.
func hotCold() Workload {
	rng := rand.New(rand.NewSource(23))

	records := make([]trace.Record, 0, 4096)
	for i := 0; i < 4096; i++ {
		var addr uint64
		if rng.Intn(10) < 9 {
			addr = uint64(rng.Intn(4 << 10))
		} else {
			addr = uint64(rng.Intn(16 << 20))
		}
		records = append(records, trace.Record{
			Op:      trace.Load,
			Address: addr,
			Size:    8,
		})
	}

	return Workload{
		Name:        "hot_cold",
		Description: "90% of accesses in a 4 KiB hot region, 10% cold",
		Records:     records,
	}
}

// 5. Thrashing Loop - alternates two addresses that collide in one set,
// so a direct-mapped cache evicts on every access after the first.
func thrashingLoop() Workload {
	records := make([]trace.Record, 0, 1024)
	for i := 0; i < 1024; i++ {
		addr := uint64(0x0)
		if i%2 == 1 {
			addr = 0x10000
		}
		records = append(records, trace.Record{
			Op:      trace.Load,
			Address: addr,
			Size:    8,
		})
	}

	return Workload{
		Name:        "thrashing_loop",
		Description: "two conflicting addresses in one set - worst case for direct mapping",
		Records:     records,
	}
}
