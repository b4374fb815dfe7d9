package ptarena

// Address is an abstract non-negative byte position in the simulated
// heap. Addresses are opaque to callers; the hexadecimal convention
// lives in the viewer layer, not here.
type Address int64

// noAddr is the null sentinel used for fd/bk/fdNextsize/bkNextsize
// and for "no such chunk" lookups. Real addresses start at a
// positive base (0x1000 by default) so -1 is never a live address.
const noAddr Address = -1

// binTag records which container, if any, currently holds a chunk.
// It accelerates the "which bin is my neighbour in" question
// coalescing needs to answer (spec.md §9's back-pointer option)
// without forcing a linear scan of every bin on every free.
type binTag int

const (
	binNone binTag = iota
	binTcache
	binFastbin
	binUnsorted
	binSmallbin
	binLargebin
)

func (b binTag) String() string {
	switch b {
	case binTcache:
		return "tcache"
	case binFastbin:
		return "fastbin"
	case binUnsorted:
		return "unsorted"
	case binSmallbin:
		return "smallbin"
	case binLargebin:
		return "largebin"
	default:
		return "none"
	}
}

// chunk is the allocator's unit of bookkeeping. fd/bk/fdNextsize/
// bkNextsize are addresses rather than pointers: spec.md §9 calls
// this out explicitly so that a flat address-keyed map can represent
// cyclic bin lists without a reference cycle, and so that Snapshot
// can deep-copy the whole arena by copying this struct by value.
type chunk struct {
	addr     Address
	size     int64
	prevSize int64 // meaningful only when prevInuse == false
	inuse    bool
	prevInuse bool

	fd, bk                 Address
	fdNextsize, bkNextsize Address

	bin    binTag // binNone, or which container currently holds this chunk
	binIdx int    // slot index within that container, when applicable
}

func newFreeChunk(addr Address, size int64) *chunk {
	return &chunk{
		addr: addr, size: size,
		fd: noAddr, bk: noAddr,
		fdNextsize: noAddr, bkNextsize: noAddr,
		bin: binNone,
	}
}

// userPointer is the address returned to callers: the chunk header
// is HeaderSize bytes, the payload starts immediately after it.
func userPointer(addr Address) Address { return addr + Address(HeaderSize) }

// chunkAddrOf inverts userPointer.
func chunkAddrOf(ptr Address) Address { return ptr - Address(HeaderSize) }

// chunkAt looks up a chunk by its header address.
func (a *Arena) chunkAt(addr Address) *chunk {
	return a.chunks[addr]
}

// nextChunk returns the chunk physically following c, or nil if c is
// the top chunk (invariant 1: next(c) exists iff c is not top).
func (a *Arena) nextChunk(c *chunk) *chunk {
	if c.addr == a.topAddr {
		return nil
	}
	return a.chunks[c.addr+Address(c.size)]
}

// prevChunk returns the chunk physically preceding c, using
// prevSize, which is only meaningful when c.prevInuse is false
// (invariant 2).
func (a *Arena) prevChunk(c *chunk) *chunk {
	if c.prevInuse {
		return nil
	}
	return a.chunks[c.addr-Address(c.prevSize)]
}

// setPrevInuse propagates the prev-in-use flag (and prevSize, when
// clearing it) onto the chunk physically following c. Every code
// path that changes a chunk's in-use status must call this so that
// invariant 2 holds afterwards.
func (a *Arena) setPrevInuse(c *chunk, inuse bool) {
	next := a.nextChunk(c)
	if next == nil {
		return
	}
	next.prevInuse = inuse
	if !inuse {
		next.prevSize = c.size
	}
}

// destroyChunk removes a chunk from the address table entirely; used
// when coalescing merges it into a neighbour.
func (a *Arena) destroyChunk(addr Address) {
	delete(a.chunks, addr)
}
