package ptarena

import "math"

// Size-classifier constants, following spec.md §4.1. fastbinFirstSize
// and smallbinFirstSize both equal request2size(16) (32 bytes); a
// MinChunkSize chunk from a zero-byte request falls below both and is
// in neither a fastbin nor a smallbin class. Fastbins and smallbins share the
// same "(size-first)/16" mapping, they just cover different ranges
// and obey different list disciplines.
const (
	NFastbins   = 10
	NSmallbins  = 64
	NLargebins  = 32
	FastbinStep = int64(16)
)

var (
	fastbinFirstSize  = request2size(16)
	smallbinFirstSize = request2size(16)
	smallbinMaxSize   = request2size(512)
)

// request2size turns a user byte request into a chunk size: header
// overhead included, rounded up to Alignment, never below
// MinChunkSize.
func request2size(req int64) int64 {
	if req < 0 {
		req = 0
	}
	sz := alignUp(req+HeaderSize, Alignment)
	if sz < MinChunkSize {
		return MinChunkSize
	}
	return sz
}

func alignUp(n, a int64) int64 {
	if a <= 0 {
		return n
	}
	return ((n + a - 1) / a) * a
}

// fastbinIndex returns 0..9 for the ten exact fastbin size classes,
// -1 if chunkSize does not land on one.
func fastbinIndex(chunkSize int64) int {
	if chunkSize < fastbinFirstSize {
		return -1
	}
	delta := chunkSize - fastbinFirstSize
	if delta%FastbinStep != 0 {
		return -1
	}
	idx := int(delta / FastbinStep)
	if idx < 0 || idx >= NFastbins {
		return -1
	}
	return idx
}

// smallbinIndex returns 0..31 for exact smallbin size classes
// (requests up to 512 bytes, i.e. chunk sizes 32..528), -1 otherwise.
func smallbinIndex(chunkSize int64) int {
	if chunkSize < smallbinFirstSize || chunkSize > smallbinMaxSize {
		return -1
	}
	delta := chunkSize - smallbinFirstSize
	if delta%FastbinStep != 0 {
		return -1
	}
	idx := int(delta / FastbinStep)
	if idx < 0 || idx >= NSmallbins {
		return -1
	}
	return idx
}

// largebinIndex buckets by floor(log2(size)), clamped to [0,32). This
// is deliberately coarser than glibc's piecewise scheme (spec.md §9);
// tests must not assume glibc bin membership.
func largebinIndex(chunkSize int64) int {
	if chunkSize < 1 {
		return 0
	}
	idx := int(math.Floor(math.Log2(float64(chunkSize))))
	if idx < 0 {
		idx = 0
	}
	if idx >= NLargebins {
		idx = NLargebins - 1
	}
	return idx
}

// tcacheEligible reports whether a chunk of this size may live in
// this arena's tcache. The threshold is exact: nb <= a.tcacheMaxSize,
// itself request2size of the "tcache.max" setting the arena was
// constructed with (default 64, so the default smallest ineligible
// chunk size is request2size(65) == 96) — overridable at construction
// time, per SPEC_FULL.md §3.
func (a *Arena) tcacheEligible(chunkSize int64) bool {
	return chunkSize <= a.tcacheMaxSize
}
