// Command benchmark runs the cachesim workload harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv  Output results in CSV format (default: human-readable)
//	-s    Number of set index bits
//	-E    Number of lines per set
//	-b    Number of block offset bits
//	-p    Eviction policy, lru or lfu
//
// Example:
//
//	# Run all workloads against the default geometry
//	go run ./cmd/benchmark
//
//	# Compare a two-way geometry in CSV form
//	go run ./cmd/benchmark -E 2 -csv > results.csv
//
// Results from different geometries can be compared to see how
// associativity, block size, and the eviction policy move the hit rate.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/cachesim/benchmarks"
	"github.com/sarchlab/cachesim/cache"
)

func main() {
	// Parse flags
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	setBits := flag.Int("s", 8, "Number of set index bits")
	linesPerSet := flag.Int("E", 1, "Number of lines per set")
	blockBits := flag.Int("b", 8, "Number of block offset bits")
	policyName := flag.String("p", "lru", "Eviction policy, lru or lfu")
	verbose := flag.Bool("verbose", false, "Print per-workload progress")
	flag.Parse()

	policy, err := cache.ParsePolicy(*policyName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Configure harness
	config := benchmarks.DefaultConfig()
	config.CacheConfig = cache.Config{
		SetBits:     *setBits,
		LinesPerSet: *linesPerSet,
		BlockBits:   *blockBits,
		Policy:      policy,
	}
	config.Output = os.Stdout
	config.Verbose = *verbose

	if err := config.CacheConfig.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Create harness and add workloads
	harness := benchmarks.NewHarness(config)
	harness.AddWorkloads(benchmarks.StandardWorkloads())

	// Print configuration
	if !*csvOutput {
		fmt.Println("Cache Workload Harness")
		fmt.Println("======================")
		fmt.Printf("Sets:          %d\n", config.CacheConfig.NumSets())
		fmt.Printf("Lines per set: %d\n", config.CacheConfig.LinesPerSet)
		fmt.Printf("Block size:    %d bytes\n", config.CacheConfig.BlockSize())
		fmt.Printf("Policy:        %s\n", config.CacheConfig.Policy)
		fmt.Println("")
	}

	// Run workloads
	results, err := harness.RunAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Output results
	if *csvOutput {
		harness.PrintCSV(results)
	} else {
		harness.PrintResults(results)

		// Print summary
		fmt.Println("=== Summary ===")
		fmt.Println("")
		fmt.Println("Expected characteristics on the default geometry:")
		fmt.Println("- sequential_sweep: high hit rate from spatial locality")
		fmt.Println("- strided_sweep: every access lands in a fresh block")
		fmt.Println("- random_uniform: hit rate tracks how much of the footprint fits")
		fmt.Println("- hot_cold: the hot region stays resident, cold misses dominate")
		fmt.Println("- thrashing_loop: two blocks fight over one set until E grows")
	}
}
