package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/recording"
	"github.com/sarchlab/cachesim/replay"
	"github.com/sarchlab/cachesim/trace"
)

// defaultTracePath is used when neither the -t flag nor the
// CACHESIM_TRACE environment variable names a trace file.
const defaultTracePath = "traces/dave.trace"

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cachesim",
		Short: "Trace-driven set-associative cache simulator",
		Long: `cachesim replays a memory trace through a set-associative cache model
and reports the number of hits, misses, and evictions.

Examples:
  cachesim -s 4 -E 1 -b 4 -t traces/yi.trace
  cachesim -v -s 8 -E 2 -b 4 -p lfu -t traces/yi.trace
  cachesim --config cache.json --record run1 -t traces/mixed.trace`,
		SilenceUsage: true,
		RunE:         runSimulation,
	}

	flags := cmd.PersistentFlags()
	flags.IntP("set-bits", "s", 8, "number of set index bits")
	flags.IntP("lines-per-set", "E", 1, "number of lines per set")
	flags.IntP("block-bits", "b", 8, "number of block offset bits")
	flags.StringP("policy", "p", "lru", "eviction policy, lru or lfu")
	flags.StringP("trace", "t", "", "trace file (default $CACHESIM_TRACE, then "+defaultTracePath+")")
	flags.String("config", "", "cache configuration JSON file")

	cmd.Flags().BoolP("verbose", "v", false, "print one annotated line per trace record")
	cmd.Flags().String("record", "",
		"record accesses into NAME.sqlite3 (an empty NAME picks a generated one)")

	return cmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	config, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	tracePath := resolveTracePath(cmd)

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		printArguments(cmd.ErrOrStderr(), config, tracePath)
	}

	model, err := cache.New(config)
	if err != nil {
		return err
	}

	var opts []replay.ReplayerOption
	if verbose {
		opts = append(opts, replay.WithVerbose(cmd.OutOrStdout()))
	}

	var recorder *recording.AccessRecorder
	if path, ok := resolveRecordPath(cmd); ok {
		writer, err := recording.NewWriter(path)
		if err != nil {
			return err
		}
		defer writer.Close()

		recorder = recording.NewAccessRecorder(writer)
		opts = append(opts, replay.WithRecorder(recorder))
	}

	file, err := trace.Open(tracePath)
	if err != nil {
		return err
	}
	defer file.Close()

	stats, err := replay.New(model, opts...).Replay(file)
	if err != nil {
		return err
	}

	if recorder != nil {
		recorder.FinishRun(tracePath, config, stats)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "hits:%d misses:%d evictions:%d\n",
		stats.Hits, stats.Misses, stats.Evictions)

	return nil
}

// resolveConfig builds the cache configuration from, in order of
// precedence, the built-in defaults, the --config file, and any
// geometry flags set on the command line.
func resolveConfig(cmd *cobra.Command) (cache.Config, error) {
	flags := cmd.Flags()

	config := cache.DefaultConfig()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := cache.LoadConfig(path)
		if err != nil {
			return config, err
		}
		config = loaded
	}

	if flags.Changed("set-bits") {
		config.SetBits, _ = flags.GetInt("set-bits")
	}
	if flags.Changed("lines-per-set") {
		config.LinesPerSet, _ = flags.GetInt("lines-per-set")
	}
	if flags.Changed("block-bits") {
		config.BlockBits, _ = flags.GetInt("block-bits")
	}
	if flags.Changed("policy") {
		name, _ := flags.GetString("policy")
		policy, err := cache.ParsePolicy(name)
		if err != nil {
			return config, err
		}
		config.Policy = policy
	}

	return config, config.Validate()
}

func resolveTracePath(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("trace"); path != "" {
		return path
	}
	if path := os.Getenv("CACHESIM_TRACE"); path != "" {
		return path
	}
	return defaultTracePath
}

// resolveRecordPath reports whether this run should record accesses,
// either because --record was given or because CACHESIM_RECORD names a
// database file.
func resolveRecordPath(cmd *cobra.Command) (string, bool) {
	if cmd.Flags().Changed("record") {
		path, _ := cmd.Flags().GetString("record")
		return path, true
	}
	if path := os.Getenv("CACHESIM_RECORD"); path != "" {
		return path, true
	}
	return "", false
}

func printArguments(w io.Writer, config cache.Config, tracePath string) {
	_, _ = fmt.Fprintf(w, "\nCache Simulator Arguments:\n")
	_, _ = fmt.Fprintf(w, "  set bits (s):      %d\n", config.SetBits)
	_, _ = fmt.Fprintf(w, "  lines per set (E): %d\n", config.LinesPerSet)
	_, _ = fmt.Fprintf(w, "  block bits (b):    %d\n", config.BlockBits)
	_, _ = fmt.Fprintf(w, "  policy (p):        %s\n", config.Policy)
	_, _ = fmt.Fprintf(w, "  trace (t):         %s\n", tracePath)
	_, _ = fmt.Fprintf(w, "\n")
}
