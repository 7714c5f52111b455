// Package replay drives a cache model over a stream of trace records.
package replay

import (
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/trace"
)

// Access describes one replayed trace record: the record itself, the
// clock it was issued at, and the outcome of each sub-access. Loads and
// stores carry one outcome; modifies carry two.
type Access struct {
	// Sequence is the 1-based position of the record in the trace. It
	// equals the clock of the record's first sub-access.
	Sequence int64
	Op       trace.Op
	Address  uint64
	Size     uint64
	Outcomes []cache.Outcome
}

// Annotation returns the outcome words joined by spaces, such as "hit",
// "miss evict", or "miss hit" for a modify.
func (a Access) Annotation() string {
	words := make([]string, len(a.Outcomes))
	for i, outcome := range a.Outcomes {
		words[i] = outcome.String()
	}
	return strings.Join(words, " ")
}

// String formats the access the way verbose mode prints it: the
// operation, the bare hex address, the size, and the annotation.
func (a Access) String() string {
	return fmt.Sprintf("%s %x,%d %s", a.Op, a.Address, a.Size, a.Annotation())
}

// A Recorder receives every replayed access. Implementations must not
// retain the Outcomes slice beyond the call.
type Recorder interface {
	RecordAccess(Access)
}

// Replayer feeds trace records to a cache model, one clock tick per
// record. The replay is strictly sequential; the monotonic clock is
// what makes the LRU tie-break well defined.
type Replayer struct {
	model    *cache.Model
	verbose  io.Writer
	recorder Recorder

	maxRecords uint64 // 0 means no limit
}

// ReplayerOption is a functional option for configuring the Replayer.
type ReplayerOption func(*Replayer)

// WithVerbose makes the replayer print one annotated line per record to w.
func WithVerbose(w io.Writer) ReplayerOption {
	return func(r *Replayer) {
		r.verbose = w
	}
}

// WithRecorder attaches a recorder that observes every replayed access.
func WithRecorder(rec Recorder) ReplayerOption {
	return func(r *Replayer) {
		r.recorder = rec
	}
}

// WithMaxRecords limits how many trace records are replayed. A value of
// 0 means no limit.
func WithMaxRecords(max uint64) ReplayerOption {
	return func(r *Replayer) {
		r.maxRecords = max
	}
}

// New creates a Replayer for the given model.
func New(model *cache.Model, opts ...ReplayerOption) *Replayer {
	r := &Replayer{
		model: model,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Replay consumes the source until it is exhausted and returns the
// model's statistics. The clock advances once per record; the store
// half of a modify is timed by the model itself. Statistics accumulate
// across calls, so a fresh model gives a fresh count.
func (r *Replayer) Replay(source trace.Source) (cache.Statistics, error) {
	var replayed uint64
	var clock int64

	for {
		if r.maxRecords > 0 && replayed >= r.maxRecords {
			break
		}
		if !source.Next() {
			break
		}
		replayed++
		clock++

		rec := source.Record()
		outcomes := r.model.SimulateOperation(rec.Op, rec.Address, clock)

		if r.verbose == nil && r.recorder == nil {
			continue
		}

		access := Access{
			Sequence: clock,
			Op:       rec.Op,
			Address:  rec.Address,
			Size:     rec.Size,
			Outcomes: outcomes,
		}
		if r.verbose != nil {
			fmt.Fprintln(r.verbose, access)
		}
		if r.recorder != nil {
			r.recorder.RecordAccess(access)
		}
	}

	if err := source.Err(); err != nil {
		return r.model.Stats(), fmt.Errorf("failed to read trace: %w", err)
	}
	return r.model.Stats(), nil
}

// Model returns the model this replayer drives.
func (r *Replayer) Model() *cache.Model {
	return r.model
}
