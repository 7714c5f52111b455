package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/trace"
	"github.com/sarchlab/cachesim/validation"
)

func newCrosscheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crosscheck",
		Short: "Replay a trace against both the model and the Akita cache directory",
		Long: `crosscheck replays the trace twice, once through the cache model and
once through the Akita cache directory, and compares the outcome of
every access. Only the LRU policy has a reference implementation.`,
		RunE: runCrosscheck,
	}
}

func init() {
	rootCmd.AddCommand(newCrosscheckCmd())
}

func runCrosscheck(cmd *cobra.Command, args []string) error {
	config, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	tracePath := resolveTracePath(cmd)

	file, err := trace.Open(tracePath)
	if err != nil {
		return err
	}
	defer file.Close()

	report, err := validation.CrossCheck(config, file)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "records:   %d\n", report.Records)
	_, _ = fmt.Fprintf(out, "model:     hits:%d misses:%d evictions:%d\n",
		report.Model.Hits, report.Model.Misses, report.Model.Evictions)
	_, _ = fmt.Fprintf(out, "reference: hits:%d misses:%d evictions:%d\n",
		report.Reference.Hits, report.Reference.Misses, report.Reference.Evictions)

	if !report.Agree() {
		if report.Mismatch != nil {
			_, _ = fmt.Fprintln(out, report.Mismatch)
		}
		return fmt.Errorf("model and reference disagree on %s", tracePath)
	}

	_, _ = fmt.Fprintln(out, "agreement: every access matched")
	return nil
}
