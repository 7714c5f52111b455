// Package main provides a profiling wrapper for cachesim to identify
// performance bottlenecks in the replay loop.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/replay"
	"github.com/sarchlab/cachesim/trace"
)

var (
	cpuProfile  = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile  = flag.String("memprofile", "", "write memory profile to file")
	duration    = flag.Duration("duration", 30*time.Second, "max duration to run (for profiling)")
	maxRecords  = flag.Uint64("max-records", 0, "max trace records to replay per pass (0 = unlimited)")
	repeat      = flag.Int("repeat", 1, "number of replay passes")
	setBits     = flag.Int("s", 8, "number of set index bits")
	linesPerSet = flag.Int("E", 1, "number of lines per set")
	blockBits   = flag.Int("b", 8, "number of block offset bits")
	policyName  = flag.String("p", "lru", "eviction policy, lru or lfu")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: profile [options] <trace file>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Start CPU profiling if requested
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	tracePath := flag.Arg(0)

	// Read the trace into memory up front so the passes measure the
	// model, not the file system.
	records, err := readTrace(tracePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading trace: %v\n", err)
		os.Exit(1)
	}

	policy, err := cache.ParsePolicy(*policyName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	config := cache.Config{
		SetBits:     *setBits,
		LinesPerSet: *linesPerSet,
		BlockBits:   *blockBits,
		Policy:      policy,
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded: %s\n", tracePath)
	fmt.Printf("Records: %d\n", len(records))

	start := time.Now()

	// Set timeout
	go func() {
		time.Sleep(*duration)
		fmt.Printf("\nTimeout reached after %v - stopping execution\n", *duration)
		os.Exit(2)
	}()

	var stats cache.Statistics
	var accesses uint64

	for pass := 0; pass < *repeat; pass++ {
		stats, err = runPass(config, records)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error replaying trace: %v\n", err)
			os.Exit(1)
		}
		accesses += stats.Accesses()
	}

	elapsed := time.Since(start)

	// Write memory profile if requested
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	fmt.Printf("\nProfiling Results:\n")
	fmt.Printf("Passes: %d\n", *repeat)
	fmt.Printf("Accesses simulated: %d\n", accesses)
	fmt.Printf("Last pass: hits:%d misses:%d evictions:%d\n",
		stats.Hits, stats.Misses, stats.Evictions)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if accesses > 0 {
		fmt.Printf("Accesses/second: %.0f\n", float64(accesses)/elapsed.Seconds())
	}
}

// readTrace loads every data-access record of a trace file.
func readTrace(path string) ([]trace.Record, error) {
	file, err := trace.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []trace.Record
	for file.Next() {
		records = append(records, file.Record())
	}

	return records, file.Err()
}

// runPass replays the records through a fresh model.
func runPass(config cache.Config, records []trace.Record) (cache.Statistics, error) {
	model, err := cache.New(config)
	if err != nil {
		return cache.Statistics{}, err
	}

	var opts []replay.ReplayerOption
	if *maxRecords > 0 {
		opts = append(opts, replay.WithMaxRecords(*maxRecords))
	}

	return replay.New(model, opts...).Replay(trace.NewSliceSource(records))
}
