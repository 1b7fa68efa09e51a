package domain

// Canonicalize orders two user ids so that (a, b) and (b, a) map to the same
// storage key. Callers must reject a == b beforehand.
func Canonicalize(a, b string) (low, high string) {
	if a < b {
		return a, b
	}
	return b, a
}

// Pair is an unordered pair of user ids in canonical order.
type Pair struct {
	Low  string
	High string
}

// NewPair builds the canonical pair for a and b.
func NewPair(a, b string) Pair {
	lo, hi := Canonicalize(a, b)
	return Pair{Low: lo, High: hi}
}

// Key renders the pair as a single string, stable regardless of argument order.
func (p Pair) Key() string { return p.Low + ":" + p.High }
