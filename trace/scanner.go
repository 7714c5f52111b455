package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// A Source yields trace records in file order.
type Source interface {
	// Next advances to the next record, reporting false at the end of the
	// trace or on a read error.
	Next() bool

	// Record returns the record Next advanced to.
	Record() Record

	// Err returns the first read error encountered, if any.
	Err() error
}

// Scanner reads data-access records from a trace stream, skipping
// instruction fetches and malformed lines.
type Scanner struct {
	lines *bufio.Scanner
	rec   Record
}

// NewScanner creates a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{lines: bufio.NewScanner(r)}
}

// Next advances to the next data-access record.
func (s *Scanner) Next() bool {
	for s.lines.Scan() {
		rec, ok := ParseLine(s.lines.Text())
		if !ok {
			continue
		}

		s.rec = rec

		return true
	}

	return false
}

// Record returns the record Next advanced to.
func (s *Scanner) Record() Record {
	return s.rec
}

// Err returns the first error encountered while reading the stream.
func (s *Scanner) Err() error {
	return s.lines.Err()
}

// A File is a trace file opened for replay.
type File struct {
	*Scanner

	f *os.File
}

// Open opens a trace file and returns a File ready for scanning.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}

	return &File{Scanner: NewScanner(f), f: f}, nil
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.f.Close()
}

// SliceSource replays an in-memory record sequence. It is used by the
// benchmark workloads and by tests.
type SliceSource struct {
	recs []Record
	pos  int
}

// NewSliceSource creates a Source over recs.
func NewSliceSource(recs []Record) *SliceSource {
	return &SliceSource{recs: recs}
}

// Next advances to the next record.
func (s *SliceSource) Next() bool {
	if s.pos >= len(s.recs) {
		return false
	}

	s.pos++

	return true
}

// Record returns the record Next advanced to.
func (s *SliceSource) Record() Record {
	return s.recs[s.pos-1]
}

// Err always returns nil; a slice cannot fail to read.
func (s *SliceSource) Err() error {
	return nil
}
