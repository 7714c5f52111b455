package cache

// Outcome classifies one access to a set.
type Outcome int

const (
	// Hit means the tag was found in a valid line.
	Hit Outcome = iota
	// Miss means the tag was installed into an invalid line.
	Miss
	// MissEvict means the tag displaced a valid line.
	MissEvict
)

func (o Outcome) String() string {
	switch o {
	case Hit:
		return "hit"
	case Miss:
		return "miss"
	case MissEvict:
		return "miss evict"
	}
	return "unknown"
}

// A line is one slot of a set. Only tag bookkeeping is held; the model
// stores no data. The tag, recency, and frequency fields carry no
// meaning while valid is false.
type line struct {
	valid     bool
	tag       uint64
	lastUsed  int64
	frequency int64
}

// A set is a fixed group of lines sharing one set index. Lines inside a
// set are interchangeable; an address maps to the set, not to a slot.
type set struct {
	lines []line
}

func newSet(linesPerSet int) set {
	return set{lines: make([]line, linesPerSet)}
}

// lookupOrInsert resolves one access in a single forward scan. The scan
// stops early at a hit or at the first invalid line; otherwise it runs
// the full set while tracking both eviction candidates, so a full set
// evicts without a second traversal.
//
// The LRU candidate is the valid line with the smallest lastUsed. The
// LFU candidate has the smallest frequency, with ties broken by the
// smaller lastUsed among the tied lines only. Strict comparisons keep
// the earliest qualifying line when clocks or frequencies repeat.
func (s *set) lookupOrInsert(tag uint64, clock int64, policy Policy) Outcome {
	lruIdx := -1
	lfuIdx := -1

	for i := range s.lines {
		ln := &s.lines[i]

		if !ln.valid {
			ln.valid = true
			ln.tag = tag
			ln.lastUsed = clock
			ln.frequency = 0
			return Miss
		}

		if ln.tag == tag {
			ln.lastUsed = clock
			ln.frequency++
			return Hit
		}

		if lruIdx < 0 || ln.lastUsed < s.lines[lruIdx].lastUsed {
			lruIdx = i
		}

		if lfuIdx < 0 || ln.frequency < s.lines[lfuIdx].frequency ||
			(ln.frequency == s.lines[lfuIdx].frequency &&
				ln.lastUsed < s.lines[lfuIdx].lastUsed) {
			lfuIdx = i
		}
	}

	victim := lruIdx
	if policy == LFU {
		victim = lfuIdx
	}

	// The victim restarts as if freshly installed, frequency included.
	evicted := &s.lines[victim]
	evicted.tag = tag
	evicted.lastUsed = clock
	evicted.frequency = 0
	return MissEvict
}
