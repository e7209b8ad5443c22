package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Constraint pins a single byte of the raw frame to an expected value.
// Offsets are counted from the start of the link-layer frame, before any
// header parsing happens.
type Constraint struct {
	Offset int   `yaml:"offset"`
	Value  uint8 `yaml:"value"`
}

// ByteFilter is a pure predicate over raw frame bytes. An empty constraint
// set accepts every frame; a non-empty set requires every constraint to hold.
type ByteFilter struct {
	constraints []Constraint
}

// New creates a byte filter from the given constraints.
func New(constraints []Constraint) *ByteFilter {
	return &ByteFilter{constraints: constraints}
}

// Match reports whether the frame satisfies every constraint. A frame shorter
// than any constraint's offset is rejected regardless of its byte values.
func (f *ByteFilter) Match(data []byte) bool {
	for _, c := range f.constraints {
		if c.Offset >= len(data) {
			return false
		}
		if data[c.Offset] != c.Value {
			return false
		}
	}
	return true
}

// Parse parses a single "offset:value" constraint as given on the command
// line, e.g. "23:6" to require byte 23 to equal 6.
func Parse(s string) (Constraint, error) {
	offsetStr, valueStr, ok := strings.Cut(s, ":")
	if !ok {
		return Constraint{}, fmt.Errorf("invalid filter '%s': expected offset:value", s)
	}
	offset, err := strconv.Atoi(offsetStr)
	if err != nil || offset < 0 {
		return Constraint{}, fmt.Errorf("invalid filter offset '%s': must be a non-negative integer", offsetStr)
	}
	value, err := strconv.ParseUint(valueStr, 10, 8)
	if err != nil {
		return Constraint{}, fmt.Errorf("invalid filter value '%s': must be 0-255", valueStr)
	}
	return Constraint{Offset: offset, Value: uint8(value)}, nil
}
