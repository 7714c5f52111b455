package recording

import (
	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/replay"
)

// AccessEntry is one row of the accesses table: a replayed trace record
// and its annotated outcome.
type AccessEntry struct {
	Sequence   int64
	Op         string
	Address    uint64
	Size       uint64
	Annotation string
}

// RunEntry is one row of the runs table, written when a replay
// finishes: the configuration that ran and the final counters.
type RunEntry struct {
	Trace       string
	SetBits     int
	LinesPerSet int
	BlockBits   int
	Policy      string
	Hits        uint64
	Misses      uint64
	Evictions   uint64
}

// AccessRecorder streams replayed accesses into a recording database.
// It plugs into the replay loop as a replay.Recorder.
type AccessRecorder struct {
	writer *Writer
}

// NewAccessRecorder creates the accesses and runs tables on w.
func NewAccessRecorder(w *Writer) *AccessRecorder {
	w.CreateTable("accesses", AccessEntry{})
	w.CreateTable("runs", RunEntry{})

	return &AccessRecorder{writer: w}
}

// RecordAccess buffers one replayed access.
func (r *AccessRecorder) RecordAccess(a replay.Access) {
	r.writer.Insert("accesses", AccessEntry{
		Sequence:   a.Sequence,
		Op:         a.Op.String(),
		Address:    a.Address,
		Size:       a.Size,
		Annotation: a.Annotation(),
	})
}

// FinishRun writes the run summary row and flushes all buffered rows.
func (r *AccessRecorder) FinishRun(tracePath string, config cache.Config, stats cache.Statistics) {
	r.writer.Insert("runs", RunEntry{
		Trace:       tracePath,
		SetBits:     config.SetBits,
		LinesPerSet: config.LinesPerSet,
		BlockBits:   config.BlockBits,
		Policy:      config.Policy.String(),
		Hits:        stats.Hits,
		Misses:      stats.Misses,
		Evictions:   stats.Evictions,
	})

	r.writer.Flush()
}
