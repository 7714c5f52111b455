// Package benchmarks provides synthetic trace workloads for exercising
// cache configurations.
package benchmarks

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/replay"
	"github.com/sarchlab/cachesim/trace"
)

// WorkloadResult holds the outcome of replaying one workload.
type WorkloadResult struct {
	// Name identifies the workload.
	Name string `json:"name"`

	// Description explains what the workload exercises.
	Description string `json:"description"`

	// Records is the number of trace records replayed.
	Records uint64 `json:"records"`

	// Accesses is the number of simulated accesses; modifies count twice.
	Accesses uint64 `json:"accesses"`

	// Hits, Misses, and Evictions are the final cache counters.
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`

	// HitRate is Hits over Accesses.
	HitRate float64 `json:"hit_rate"`

	// WallTime is the time the replay took.
	WallTime time.Duration `json:"wall_time_ns"`
}

// HarnessConfig configures the workload harness.
type HarnessConfig struct {
	// CacheConfig is the cache geometry every workload runs against.
	CacheConfig cache.Config

	// Output is where to write results (default: os.Stdout).
	Output io.Writer

	// Verbose enables per-workload progress lines.
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		CacheConfig: cache.DefaultConfig(),
		Output:      os.Stdout,
		Verbose:     false,
	}
}

// Harness replays workloads against a cache configuration and reports
// results. Every workload runs on a fresh model.
type Harness struct {
	config    HarnessConfig
	workloads []Workload
}

// NewHarness creates a new workload harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{
		config:    config,
		workloads: []Workload{},
	}
}

// AddWorkload adds a workload to the harness.
func (h *Harness) AddWorkload(w Workload) {
	h.workloads = append(h.workloads, w)
}

// AddWorkloads adds multiple workloads to the harness.
func (h *Harness) AddWorkloads(workloads []Workload) {
	h.workloads = append(h.workloads, workloads...)
}

// RunAll replays all workloads and returns their results.
func (h *Harness) RunAll() ([]WorkloadResult, error) {
	results := make([]WorkloadResult, 0, len(h.workloads))

	for _, w := range h.workloads {
		if h.config.Verbose {
			fmt.Fprintf(h.config.Output, "running %s (%d records)\n", w.Name, len(w.Records))
		}

		result, err := h.runWorkload(w)
		if err != nil {
			return results, fmt.Errorf("workload %s: %w", w.Name, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// runWorkload replays a single workload on a fresh model.
func (h *Harness) runWorkload(w Workload) (WorkloadResult, error) {
	model, err := cache.New(h.config.CacheConfig)
	if err != nil {
		return WorkloadResult{}, err
	}

	replayer := replay.New(model)

	start := time.Now()
	stats, err := replayer.Replay(trace.NewSliceSource(w.Records))
	wallTime := time.Since(start)
	if err != nil {
		return WorkloadResult{}, err
	}

	return WorkloadResult{
		Name:        w.Name,
		Description: w.Description,
		Records:     uint64(len(w.Records)),
		Accesses:    stats.Accesses(),
		Hits:        stats.Hits,
		Misses:      stats.Misses,
		Evictions:   stats.Evictions,
		HitRate:     stats.HitRate(),
		WallTime:    wallTime,
	}, nil
}

// PrintResults outputs workload results in a human-readable format.
func (h *Harness) PrintResults(results []WorkloadResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== Cache Workload Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Workload: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Records:     %d\n", r.Records)
		_, _ = fmt.Fprintf(h.config.Output, "  Accesses:    %d\n", r.Accesses)
		_, _ = fmt.Fprintf(h.config.Output, "  Hits:        %d\n", r.Hits)
		_, _ = fmt.Fprintf(h.config.Output, "  Misses:      %d\n", r.Misses)
		_, _ = fmt.Fprintf(h.config.Output, "  Evictions:   %d\n", r.Evictions)
		_, _ = fmt.Fprintf(h.config.Output, "  Hit Rate:    %.3f\n", r.HitRate)
		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time:   %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs workload results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []WorkloadResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,records,accesses,hits,misses,evictions,hit_rate")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%d,%d,%d,%.3f\n",
			r.Name,
			r.Records,
			r.Accesses,
			r.Hits,
			r.Misses,
			r.Evictions,
			r.HitRate,
		)
	}
}
