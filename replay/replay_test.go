package replay_test

import (
	"bytes"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/replay"
	"github.com/sarchlab/cachesim/trace"
)

// capturingRecorder keeps every access handed to it.
type capturingRecorder struct {
	accesses []replay.Access
}

func (r *capturingRecorder) RecordAccess(a replay.Access) {
	r.accesses = append(r.accesses, a)
}

// failingSource yields one record and then reports a read error.
type failingSource struct {
	calls int
}

func (s *failingSource) Next() bool {
	s.calls++
	return s.calls <= 1
}

func (s *failingSource) Record() trace.Record {
	return trace.Record{Op: trace.Load, Address: 0x10, Size: 1}
}

func (s *failingSource) Err() error {
	return errors.New("stream corrupted")
}

var _ = Describe("Replayer", func() {
	var m *cache.Model

	newModel := func(config cache.Config) *cache.Model {
		model, err := cache.New(config)
		Expect(err).To(BeNil())
		return model
	}

	BeforeEach(func() {
		m = newModel(cache.Config{
			SetBits:     4,
			LinesPerSet: 1,
			BlockBits:   4,
			Policy:      cache.LRU,
		})
	})

	It("should return zero statistics for an empty trace", func() {
		r := replay.New(m)

		stats, err := r.Replay(trace.NewSliceSource(nil))
		Expect(err).To(BeNil())
		Expect(stats).To(Equal(cache.Statistics{}))
	})

	It("should replay records in order", func() {
		r := replay.New(m)

		stats, err := r.Replay(trace.NewSliceSource([]trace.Record{
			{Op: trace.Load, Address: 0x10, Size: 1},
			{Op: trace.Store, Address: 0x10, Size: 1},
			{Op: trace.Modify, Address: 0x10, Size: 4},
		}))
		Expect(err).To(BeNil())
		Expect(stats.Hits).To(Equal(uint64(3)))
		Expect(stats.Misses).To(Equal(uint64(1)))
		Expect(stats.Evictions).To(Equal(uint64(0)))
	})

	It("should print one annotated line per record in verbose mode", func() {
		var out bytes.Buffer
		r := replay.New(m, replay.WithVerbose(&out))

		_, err := r.Replay(trace.NewSliceSource([]trace.Record{
			{Op: trace.Load, Address: 0x10, Size: 1},
			{Op: trace.Modify, Address: 0x110, Size: 4},
			{Op: trace.Store, Address: 0x10, Size: 8},
		}))
		Expect(err).To(BeNil())

		Expect(out.String()).To(Equal(
			"L 10,1 miss\n" +
				"M 110,4 miss evict hit\n" +
				"S 10,8 miss evict\n"))
	})

	It("should hand every access to the recorder", func() {
		rec := &capturingRecorder{}
		r := replay.New(m, replay.WithRecorder(rec))

		_, err := r.Replay(trace.NewSliceSource([]trace.Record{
			{Op: trace.Load, Address: 0x10, Size: 1},
			{Op: trace.Modify, Address: 0x20, Size: 4},
		}))
		Expect(err).To(BeNil())

		Expect(rec.accesses).To(HaveLen(2))

		Expect(rec.accesses[0].Sequence).To(Equal(int64(1)))
		Expect(rec.accesses[0].Op).To(Equal(trace.Load))
		Expect(rec.accesses[0].Address).To(Equal(uint64(0x10)))
		Expect(rec.accesses[0].Size).To(Equal(uint64(1)))
		Expect(rec.accesses[0].Outcomes).To(Equal([]cache.Outcome{cache.Miss}))

		Expect(rec.accesses[1].Sequence).To(Equal(int64(2)))
		Expect(rec.accesses[1].Outcomes).To(Equal([]cache.Outcome{cache.Miss, cache.Hit}))
	})

	It("should stop at the record limit", func() {
		r := replay.New(m, replay.WithMaxRecords(2))

		stats, err := r.Replay(trace.NewSliceSource([]trace.Record{
			{Op: trace.Load, Address: 0x100, Size: 1},
			{Op: trace.Load, Address: 0x200, Size: 1},
			{Op: trace.Load, Address: 0x300, Size: 1},
			{Op: trace.Load, Address: 0x400, Size: 1},
		}))
		Expect(err).To(BeNil())
		Expect(stats.Accesses()).To(Equal(uint64(2)))
	})

	It("should surface source errors", func() {
		r := replay.New(m)

		_, err := r.Replay(&failingSource{})
		Expect(err).To(MatchError(ContainSubstring("stream corrupted")))
	})

	It("should accumulate across replays on the same model", func() {
		r := replay.New(m)

		_, err := r.Replay(trace.NewSliceSource([]trace.Record{
			{Op: trace.Load, Address: 0x10, Size: 1},
		}))
		Expect(err).To(BeNil())

		stats, err := r.Replay(trace.NewSliceSource([]trace.Record{
			{Op: trace.Load, Address: 0x10, Size: 1},
		}))
		Expect(err).To(BeNil())
		Expect(stats.Hits).To(Equal(uint64(1)))
		Expect(stats.Misses).To(Equal(uint64(1)))
	})
})

var _ = Describe("Access", func() {
	It("should format itself like a verbose trace line", func() {
		a := replay.Access{
			Sequence: 7,
			Op:       trace.Modify,
			Address:  0x7ff0005c8,
			Size:     8,
			Outcomes: []cache.Outcome{cache.MissEvict, cache.Hit},
		}

		Expect(a.Annotation()).To(Equal("miss evict hit"))
		Expect(a.String()).To(Equal("M 7ff0005c8,8 miss evict hit"))
	})

	It("should annotate single-outcome accesses without padding", func() {
		a := replay.Access{
			Op:       trace.Load,
			Address:  0x10,
			Size:     1,
			Outcomes: []cache.Outcome{cache.Hit},
		}

		Expect(a.String()).To(Equal("L 10,1 hit"))
	})
})
