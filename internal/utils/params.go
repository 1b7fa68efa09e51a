package utils

import (
	"math"
	"strconv"
	"strings"
)

// OptionalInt parses an optional non-negative integer query value. Empty,
// non-numeric and negative inputs yield nil, meaning "not set".
func OptionalInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// OptionalPositiveFloat parses an optional strictly positive, finite float.
// Anything else yields nil.
func OptionalPositiveFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return nil
	}
	return &f
}

// ClampPtr returns a copy of *p bounded to [lo, hi]. Nil stays nil.
func ClampPtr(p *int, lo, hi int) *int {
	if p == nil {
		return nil
	}
	v := max(lo, min(*p, hi))
	return &v
}
