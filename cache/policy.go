package cache

import (
	"fmt"
	"strings"
)

// Policy selects the eviction rule a set applies when an access misses
// and every line is valid.
type Policy int

const (
	// LRU evicts the line with the smallest last-used clock.
	LRU Policy = iota
	// LFU evicts the line with the smallest access frequency, preferring
	// the less recently used line when frequencies tie.
	LFU
)

// ParsePolicy converts a policy selector to a Policy. It accepts the
// names "lru" and "lfu" in any case, plus the numeric selectors "0"
// (LRU) and "1" (LFU).
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lru", "0":
		return LRU, nil
	case "lfu", "1":
		return LFU, nil
	}
	return LRU, fmt.Errorf("unknown eviction policy %q", s)
}

func (p Policy) String() string {
	switch p {
	case LRU:
		return "LRU"
	case LFU:
		return "LFU"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// MarshalText encodes the policy by name for JSON config files.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a policy name or numeric selector.
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
