// Package main provides accuracy validation for the cache model.
// Ensures that the single-pass lookup preserves simulation correctness
// against the Akita cache directory.
package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/replay"
	"github.com/sarchlab/cachesim/trace"
	"github.com/sarchlab/cachesim/validation"
)

// testAddressDecoding validates that set index and tag together recover
// every address bit above the block offset.
func testAddressDecoding() bool {
	fmt.Println("Testing address decoder accuracy...")

	geometries := []struct {
		setBits   int
		blockBits int
	}{
		{0, 0},
		{4, 4},
		{8, 8},
		{12, 6},
		{63, 0},
		{0, 63},
	}
	addresses := []uint64{0, 1, 0xABCD, 0xDEADBEEF, 1 << 63, ^uint64(0)}

	for i, g := range geometries {
		for _, addr := range addresses {
			set := cache.SetIndex(addr, g.setBits, g.blockBits)
			tag := cache.Tag(addr, g.setBits, g.blockBits)

			rebuilt := tag<<uint(g.setBits+g.blockBits) | set<<uint(g.blockBits)
			want := addr >> uint(g.blockBits) << uint(g.blockBits)
			if rebuilt != want {
				fmt.Printf("❌ Geometry %d failed: addr 0x%x rebuilt as 0x%x, want 0x%x\n",
					i, addr, rebuilt, want)
				return false
			}
		}

		fmt.Printf("✅ Geometry %d: s=%d b=%d recovers all block addresses\n",
			i, g.setBits, g.blockBits)
	}

	return true
}

// testModelAgainstReference cross-checks random load/store traces over a
// sweep of geometries.
func testModelAgainstReference() bool {
	fmt.Println("\nTesting model agreement with the Akita cache directory...")

	geometries := []cache.Config{
		{SetBits: 0, LinesPerSet: 1, BlockBits: 0, Policy: cache.LRU},
		{SetBits: 2, LinesPerSet: 2, BlockBits: 2, Policy: cache.LRU},
		{SetBits: 4, LinesPerSet: 1, BlockBits: 4, Policy: cache.LRU},
		{SetBits: 4, LinesPerSet: 4, BlockBits: 4, Policy: cache.LRU},
		{SetBits: 8, LinesPerSet: 2, BlockBits: 8, Policy: cache.LRU},
	}

	for i, config := range geometries {
		records := randomLoadStoreTrace(int64(i)*37+1, 5000, config)

		report, err := validation.CrossCheck(config, trace.NewSliceSource(records))
		if err != nil {
			fmt.Printf("❌ Geometry %d failed: %v\n", i, err)
			return false
		}
		if !report.Agree() {
			fmt.Printf("❌ Geometry %d diverged: %v\n", i, report.Mismatch)
			return false
		}

		fmt.Printf("✅ Geometry %d: s=%d E=%d b=%d agreed on %d records (hits %d, misses %d)\n",
			i, config.SetBits, config.LinesPerSet, config.BlockBits,
			report.Records, report.Model.Hits, report.Model.Misses)
	}

	return true
}

// randomLoadStoreTrace spreads loads and stores over a footprint a few
// times the cache capacity so that every geometry sees evictions.
func randomLoadStoreTrace(seed int64, n int, config cache.Config) []trace.Record {
	rng := rand.New(rand.NewSource(seed))

	capacity := uint64(config.NumSets()) * uint64(config.LinesPerSet) * config.BlockSize()
	footprint := 4 * capacity

	records := make([]trace.Record, 0, n)
	for i := 0; i < n; i++ {
		op := trace.Load
		if rng.Intn(2) == 1 {
			op = trace.Store
		}

		records = append(records, trace.Record{
			Op:      op,
			Address: rng.Uint64() % footprint,
			Size:    uint64(1) << uint(rng.Intn(4)),
		})
	}

	return records
}

// testPolicySeparation replays a trace built so that LRU and LFU must
// pick different victims.
func testPolicySeparation() bool {
	fmt.Println("\nTesting eviction policy separation...")

	// One set, two lines, one-byte blocks. The first block is touched
	// twice, so LFU protects it; LRU throws it out as the older line.
	config := cache.Config{SetBits: 0, LinesPerSet: 2, BlockBits: 0, Policy: cache.LRU}
	records := []trace.Record{
		{Op: trace.Load, Address: 0x1, Size: 1},
		{Op: trace.Load, Address: 0x1, Size: 1},
		{Op: trace.Load, Address: 0x2, Size: 1},
		{Op: trace.Load, Address: 0x3, Size: 1},
		{Op: trace.Load, Address: 0x1, Size: 1},
	}

	lruStats, err := replayTrace(config, records)
	if err != nil {
		fmt.Printf("❌ LRU replay failed: %v\n", err)
		return false
	}

	config.Policy = cache.LFU
	lfuStats, err := replayTrace(config, records)
	if err != nil {
		fmt.Printf("❌ LFU replay failed: %v\n", err)
		return false
	}

	if lruStats.Hits != 1 || lruStats.Misses != 4 {
		fmt.Printf("❌ LRU replay: hits %d misses %d, want 1 and 4\n",
			lruStats.Hits, lruStats.Misses)
		return false
	}
	if lfuStats.Hits != 2 || lfuStats.Misses != 3 {
		fmt.Printf("❌ LFU replay: hits %d misses %d, want 2 and 3\n",
			lfuStats.Hits, lfuStats.Misses)
		return false
	}

	fmt.Printf("✅ LRU evicts the older hot line: hits %d, misses %d\n",
		lruStats.Hits, lruStats.Misses)
	fmt.Printf("✅ LFU protects the hot line: hits %d, misses %d\n",
		lfuStats.Hits, lfuStats.Misses)

	return true
}

func replayTrace(config cache.Config, records []trace.Record) (cache.Statistics, error) {
	model, err := cache.New(config)
	if err != nil {
		return cache.Statistics{}, err
	}

	return replay.New(model).Replay(trace.NewSliceSource(records))
}

func main() {
	fmt.Println("Cachesim Accuracy Validation")
	fmt.Println("=======================================================")

	allPassed := true

	if !testAddressDecoding() {
		allPassed = false
	}

	if !testModelAgainstReference() {
		allPassed = false
	}

	if !testPolicySeparation() {
		allPassed = false
	}

	fmt.Println("\n=======================================================")
	if allPassed {
		fmt.Println("🎉 ALL ACCURACY TESTS PASSED")
		fmt.Println("✅ The single-pass lookup preserves simulation correctness")
		os.Exit(0)
	}

	fmt.Println("❌ ACCURACY TESTS FAILED")
	fmt.Println("🚨 The model disagrees with the reference implementation")
	os.Exit(1)
}
