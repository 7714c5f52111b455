// Package trace provides parsing of valgrind lackey memory traces.
//
// A trace is a text file with one access per line. Data accesses carry a
// leading space, for example:
//
//	 L 0421c7f0,4
//	 S 04f0e100,8
//	 M 0421c7f0,4
//
// Instruction fetches ("I  04010173,3") start in the first column. Only
// data accesses become records; everything else is skipped.
package trace

import (
	"strconv"
	"strings"
)

// Op identifies the kind of memory operation a trace line describes.
type Op byte

const (
	// Load is a data read.
	Load Op = 'L'
	// Store is a data write.
	Store Op = 'S'
	// Modify is a data read followed by a write to the same address.
	Modify Op = 'M'
	// Instr is an instruction fetch. Instruction fetches are filtered out
	// during parsing and never reach the cache model.
	Instr Op = 'I'
)

// String returns the single-letter trace spelling of the operation.
func (o Op) String() string {
	return string(byte(o))
}

// IsData reports whether the operation is a data access (Load, Store, or
// Modify).
func (o Op) IsData() bool {
	return o == Load || o == Store || o == Modify
}

// Record is one parsed data-access line.
type Record struct {
	// Op is the access kind (Load, Store, or Modify).
	Op Op

	// Address is the accessed byte address.
	Address uint64

	// Size is the byte count named by the trace line. It is carried for
	// reporting only and does not affect hit/miss determination.
	Size uint64
}

// ParseLine parses one line of a valgrind trace.
//
// A line is a record only if it has the data-access shape: a leading space,
// an operation letter in {L, S, M}, the address in hex, a comma, and the
// size in decimal. Instruction fetches and lines that do not match the
// shape report ok=false and are skipped by the caller without consuming a
// clock tick.
func ParseLine(line string) (rec Record, ok bool) {
	if len(line) == 0 || line[0] != ' ' {
		return Record{}, false
	}

	fields := strings.Fields(line)
	if len(fields) != 2 || len(fields[0]) != 1 {
		return Record{}, false
	}

	op := Op(fields[0][0])
	if !op.IsData() {
		return Record{}, false
	}

	addrText, sizeText, found := strings.Cut(fields[1], ",")
	if !found {
		return Record{}, false
	}

	addrText = strings.TrimPrefix(strings.TrimPrefix(addrText, "0x"), "0X")
	addr, err := strconv.ParseUint(addrText, 16, 64)
	if err != nil {
		return Record{}, false
	}

	size, err := strconv.ParseUint(sizeText, 10, 64)
	if err != nil {
		return Record{}, false
	}

	return Record{Op: op, Address: addr, Size: size}, true
}
