// Package main provides the entry point for cachesim.
// cachesim is a trace-driven set-associative cache simulator validated
// against the Akita cache directory.
//
// For the full CLI, use: go run ./cmd/cachesim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("cachesim - Trace-Driven Cache Simulator")
	fmt.Println("")
	fmt.Println("Usage: cachesim [options]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -s    Number of set index bits")
	fmt.Println("  -E    Number of lines per set")
	fmt.Println("  -b    Number of block offset bits")
	fmt.Println("  -p    Eviction policy, lru or lfu")
	fmt.Println("  -t    Trace file to replay")
	fmt.Println("  -v    Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/cachesim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/cachesim' instead.")
	}
}
