package manager

// DefaultIDWrap is the default upper bound for Job Identifiers: the
// counter wraps back to zero at this value. Spec §3 requires at least
// 2^53; that value is also the largest integer JavaScript's Number type
// represents exactly, which is why the source picked it, but nothing in
// this implementation depends on that origin.
const DefaultIDWrap int64 = 1 << 53

// idGenerator produces monotonically increasing Job Identifiers, the
// first being 1, that wrap at Wrap back to zero, per spec §3 and the
// wrap-to-zero decision in SPEC_FULL.md's Open Question Decisions. Zero
// is a valid id; "exists" must never be inferred from id == 0.
type idGenerator struct {
	last int64 // most recently issued id; 0 before the first Next
	wrap int64
}

func newIDGenerator(wrap int64) *idGenerator {
	if wrap <= 0 {
		wrap = DefaultIDWrap
	}
	return &idGenerator{wrap: wrap}
}

func (g *idGenerator) Next() int64 {
	g.last++
	if g.last >= g.wrap {
		g.last = 0
	}
	return g.last
}
