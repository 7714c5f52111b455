package validation_test

import (
	"errors"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/trace"
	"github.com/sarchlab/cachesim/validation"
)

// failingSource yields no records and reports a read error.
type failingSource struct{}

func (s *failingSource) Next() bool           { return false }
func (s *failingSource) Record() trace.Record { return trace.Record{} }
func (s *failingSource) Err() error           { return errors.New("truncated trace") }

func randomLoadStoreTrace(seed int64, n int) []trace.Record {
	rng := rand.New(rand.NewSource(seed))
	ops := []trace.Op{trace.Load, trace.Store}

	records := make([]trace.Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, trace.Record{
			Op:      ops[rng.Intn(len(ops))],
			Address: uint64(rng.Intn(1 << 10)),
			Size:    uint64(1 << rng.Intn(4)),
		})
	}
	return records
}

var _ = Describe("Reference", func() {
	It("should count hits, misses, and evictions like a cache", func() {
		ref, err := validation.NewReference(cache.Config{
			SetBits:     0,
			LinesPerSet: 1,
			BlockBits:   2,
			Policy:      cache.LRU,
		})
		Expect(err).To(BeNil())

		Expect(ref.Access(0x0)).To(Equal(cache.Miss))
		Expect(ref.Access(0x3)).To(Equal(cache.Hit))
		Expect(ref.Access(0x4)).To(Equal(cache.MissEvict))

		stats := ref.Stats()
		Expect(stats.Hits).To(Equal(uint64(1)))
		Expect(stats.Misses).To(Equal(uint64(2)))
		Expect(stats.Evictions).To(Equal(uint64(1)))
	})

	It("should refuse policies it cannot referee", func() {
		_, err := validation.NewReference(cache.Config{
			SetBits:     1,
			LinesPerSet: 1,
			BlockBits:   1,
			Policy:      cache.LFU,
		})
		Expect(err).ToNot(BeNil())
	})
})

var _ = Describe("CrossCheck", func() {
	It("should agree with the reference on a handmade trace", func() {
		config := cache.Config{SetBits: 1, LinesPerSet: 2, BlockBits: 2, Policy: cache.LRU}

		report, err := validation.CrossCheck(config, trace.NewSliceSource([]trace.Record{
			{Op: trace.Load, Address: 0x0, Size: 4},
			{Op: trace.Load, Address: 0x8, Size: 4},
			{Op: trace.Store, Address: 0x0, Size: 4},
			{Op: trace.Load, Address: 0x10, Size: 4},
			{Op: trace.Load, Address: 0x4, Size: 4},
		}))
		Expect(err).To(BeNil())

		Expect(report.Agree()).To(BeTrue())
		Expect(report.Mismatch).To(BeNil())
		Expect(report.Records).To(Equal(int64(5)))
		Expect(report.Model.Hits).To(Equal(uint64(1)))
		Expect(report.Model.Misses).To(Equal(uint64(4)))
		Expect(report.Model.Evictions).To(Equal(uint64(1)))
	})

	It("should agree on randomized load and store traces", func() {
		config := cache.Config{SetBits: 2, LinesPerSet: 2, BlockBits: 2, Policy: cache.LRU}

		for _, seed := range []int64{1, 7, 42} {
			records := randomLoadStoreTrace(seed, 2000)

			report, err := validation.CrossCheck(config, trace.NewSliceSource(records))
			Expect(err).To(BeNil())
			Expect(report.Agree()).To(BeTrue(), "seed %d diverged", seed)
			Expect(report.Records).To(Equal(int64(2000)))
		}
	})

	It("should agree on modifies that install fresh lines", func() {
		config := cache.Config{SetBits: 0, LinesPerSet: 2, BlockBits: 0, Policy: cache.LRU}

		report, err := validation.CrossCheck(config, trace.NewSliceSource([]trace.Record{
			{Op: trace.Modify, Address: 0x1, Size: 1},
			{Op: trace.Load, Address: 0x2, Size: 1},
			{Op: trace.Load, Address: 0x3, Size: 1},
			{Op: trace.Load, Address: 0x2, Size: 1},
		}))
		Expect(err).To(BeNil())

		Expect(report.Agree()).To(BeTrue())
		Expect(report.Model.Hits).To(Equal(uint64(2)))
		Expect(report.Model.Misses).To(Equal(uint64(3)))
		Expect(report.Model.Evictions).To(Equal(uint64(1)))
	})

	It("should report the first record where the outcomes split", func() {
		// A modify followed by a same-set install leaves two lines
		// equally recent. The model breaks the later tie by line order,
		// the reference by visit order, so the implementations part ways
		// and the report must say where.
		config := cache.Config{SetBits: 0, LinesPerSet: 2, BlockBits: 0, Policy: cache.LRU}

		report, err := validation.CrossCheck(config, trace.NewSliceSource([]trace.Record{
			{Op: trace.Load, Address: 0x9, Size: 1},
			{Op: trace.Load, Address: 0x1, Size: 1},
			{Op: trace.Modify, Address: 0x1, Size: 1},
			{Op: trace.Load, Address: 0x2, Size: 1},
			{Op: trace.Load, Address: 0x3, Size: 1},
			{Op: trace.Load, Address: 0x1, Size: 1},
		}))
		Expect(err).To(BeNil())

		Expect(report.Agree()).To(BeFalse())
		Expect(report.Mismatch).ToNot(BeNil())
		Expect(report.Mismatch.Sequence).To(Equal(int64(6)))
		Expect(report.Mismatch.Model).To(Equal([]cache.Outcome{cache.Hit}))
		Expect(report.Mismatch.Reference).To(Equal([]cache.Outcome{cache.MissEvict}))
		Expect(report.Mismatch.String()).To(ContainSubstring("record 6"))
	})

	It("should refuse an LFU cross-check", func() {
		config := cache.Config{SetBits: 1, LinesPerSet: 1, BlockBits: 1, Policy: cache.LFU}

		_, err := validation.CrossCheck(config, trace.NewSliceSource(nil))
		Expect(err).ToNot(BeNil())
	})

	It("should propagate source errors", func() {
		config := cache.Config{SetBits: 1, LinesPerSet: 1, BlockBits: 1, Policy: cache.LRU}

		_, err := validation.CrossCheck(config, &failingSource{})
		Expect(err).To(MatchError(ContainSubstring("truncated trace")))
	})
})
