// Package validation cross-checks the cache model against the Akita
// cache directory, an independently implemented LRU cache.
package validation

import (
	"fmt"
	"slices"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/trace"
)

// Reference replays accesses against an Akita cache directory and
// counts outcomes the way the model counts them. Only LRU has a
// reference eviction policy.
type Reference struct {
	directory *akitacache.DirectoryImpl
	blockSize uint64
	stats     cache.Statistics
}

// NewReference builds a reference cache with the given geometry.
func NewReference(config cache.Config) (*Reference, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Policy != cache.LRU {
		return nil, fmt.Errorf("no reference implementation for policy %s", config.Policy)
	}
	if config.SetBits > 62 || config.BlockBits > 62 {
		return nil, fmt.Errorf("geometry too wide for the reference directory")
	}

	return &Reference{
		directory: akitacache.NewDirectory(
			config.NumSets(),
			config.LinesPerSet,
			int(config.BlockSize()),
			akitacache.NewLRUVictimFinder(),
		),
		blockSize: config.BlockSize(),
	}, nil
}

// Access runs one lookup against the reference directory and returns
// its outcome.
func (r *Reference) Access(addr uint64) cache.Outcome {
	blockAddr := addr / r.blockSize * r.blockSize

	block := r.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		r.stats.Hits++
		r.directory.Visit(block)
		return cache.Hit
	}

	r.stats.Misses++

	victim := r.directory.FindVictim(blockAddr)
	if victim == nil {
		// This shouldn't happen with proper directory setup
		return cache.Miss
	}

	outcome := cache.Miss
	if victim.IsValid {
		r.stats.Evictions++
		outcome = cache.MissEvict
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false
	r.directory.Visit(victim)

	return outcome
}

// SimulateOperation maps a trace operation onto reference accesses:
// loads and stores once, modifies twice.
func (r *Reference) SimulateOperation(op trace.Op, addr uint64) []cache.Outcome {
	first := r.Access(addr)
	if op != trace.Modify {
		return []cache.Outcome{first}
	}

	second := r.Access(addr)
	return []cache.Outcome{first, second}
}

// Stats returns a copy of the reference counters.
func (r *Reference) Stats() cache.Statistics {
	return r.stats
}

// Mismatch pinpoints the first record where model and reference
// disagreed.
type Mismatch struct {
	Sequence  int64
	Record    trace.Record
	Model     []cache.Outcome
	Reference []cache.Outcome
}

func (m Mismatch) String() string {
	return fmt.Sprintf("record %d (%s %x,%d): model %s, reference %s",
		m.Sequence, m.Record.Op, m.Record.Address, m.Record.Size,
		annotate(m.Model), annotate(m.Reference))
}

// Report summarizes one cross-checked replay.
type Report struct {
	Model     cache.Statistics
	Reference cache.Statistics
	Records   int64

	// Mismatch is nil when every access agreed.
	Mismatch *Mismatch
}

// Agree reports whether the two implementations produced the same
// outcome for every access.
func (r Report) Agree() bool {
	return r.Mismatch == nil && r.Model == r.Reference
}

// CrossCheck replays one trace into both the model and the reference
// and compares them access by access.
//
// The comparison has one known artifact: a modify leaves its line and
// the following record's line equally recent in the model, which then
// breaks the tie by line order, while the reference keeps strict visit
// order. Traces dense in modifies can therefore report a disagreement
// that is a tie-break artifact rather than a defect.
func CrossCheck(config cache.Config, source trace.Source) (Report, error) {
	model, err := cache.New(config)
	if err != nil {
		return Report{}, err
	}

	reference, err := NewReference(config)
	if err != nil {
		return Report{}, err
	}

	var report Report
	var clock int64

	for source.Next() {
		rec := source.Record()
		clock++
		report.Records++

		modelOutcomes := model.SimulateOperation(rec.Op, rec.Address, clock)
		referenceOutcomes := reference.SimulateOperation(rec.Op, rec.Address)

		if report.Mismatch == nil && !slices.Equal(modelOutcomes, referenceOutcomes) {
			report.Mismatch = &Mismatch{
				Sequence:  clock,
				Record:    rec,
				Model:     modelOutcomes,
				Reference: referenceOutcomes,
			}
		}
	}

	report.Model = model.Stats()
	report.Reference = reference.Stats()

	if err := source.Err(); err != nil {
		return report, fmt.Errorf("failed to read trace: %w", err)
	}
	return report, nil
}

func annotate(outcomes []cache.Outcome) string {
	s := ""
	for i, outcome := range outcomes {
		if i > 0 {
			s += " "
		}
		s += outcome.String()
	}
	return s
}
