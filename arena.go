// Package ptarena simulates a glibc-style (ptmalloc2-lineage)
// segregated-fit heap allocator: one arena, a command surface of
// allocate / release / force-consolidate, abstract integer
// addresses, and a structured, replayable event trace a viewer can
// step through.
//
// Types and functions exported here are not thread safe: each
// operation runs synchronously to completion, mirroring the single
// simulated arena a real allocator would serialize access to anyway.
// A caller that needs concurrent readers should take a Snapshot,
// which is a deep, independent copy safe to hand to other goroutines.
package ptarena

import "fmt"

import s "github.com/bnclabs/gosettings"

// Arena is the composition of the chunk address space, the tiered
// free-list hierarchy, and the event log. It owns all of its state;
// there is no process-wide singleton, construct one explicitly.
type Arena struct {
	id       int64
	settings s.Settings

	tcacheMaxSize  int64
	tcacheCapacity int
	consolidateThresh int64

	base Address

	chunks map[Address]*chunk

	topAddr Address
	topSize int64

	fastbinHeads  [NFastbins]Address
	unsortedHead  Address
	smallbinHeads [NSmallbins]Address
	largebinHeads [NLargebins]Address
	tcache        map[int64][]Address // size -> LIFO of addresses, most-recent last

	events []Event
}

var arenaSeq int64

// NewArena constructs an arena whose top chunk covers exactly
// initialHeapBytes, rounded up to Alignment, starting at the default
// base address. It is a thin wrapper over NewArenaWithSettings using
// Defaultsettings() with "initial.heap" overridden.
func NewArena(initialHeapBytes int64) *Arena {
	setts := Defaultsettings()
	setts["initial.heap"] = initialHeapBytes
	return NewArenaWithSettings(setts)
}

// NewArenaWithSettings constructs an arena from named settings (see
// Defaultsettings for the recognised keys), mixing the given settings
// on top of the defaults so callers only need to specify overrides.
func NewArenaWithSettings(settings s.Settings) *Arena {
	setts := Defaultsettings().Mixin(settings)
	validatesettings(setts)

	arenaSeq++
	a := &Arena{
		id:                arenaSeq,
		settings:          setts,
		tcacheMaxSize:     request2size(setts.Int64("tcache.max")),
		tcacheCapacity:    int(setts.Int64("tcache.count")),
		consolidateThresh: setts.Int64("fastbin.consolidate.threshold"),
		base:              Address(setts.Int64("base.addr")),
		chunks:            make(map[Address]*chunk),
		unsortedHead:      noAddr,
		tcache:            make(map[int64][]Address),
	}
	for i := range a.fastbinHeads {
		a.fastbinHeads[i] = noAddr
	}
	for i := range a.smallbinHeads {
		a.smallbinHeads[i] = noAddr
	}
	for i := range a.largebinHeads {
		a.largebinHeads[i] = noAddr
	}

	topSize := alignUp(setts.Int64("initial.heap"), Alignment)
	top := newFreeChunk(a.base, topSize)
	top.prevInuse = true // no physical predecessor
	a.chunks[a.base] = top
	a.topAddr, a.topSize = a.base, topSize

	debugf("ptarena[%d]: new arena base=%#x top=%v", a.id, a.base, topSize)
	return a
}

// Allocate returns the user pointer for a request of the given
// number of bytes, searching tcache -> fastbin -> (opportunistic
// consolidate) -> smallbin -> unsorted -> largebin -> top in that
// order and splitting when a tier yields an oversized chunk. The
// simulator always grows the top chunk on demand, so this never
// fails (spec.md §4.3).
func (a *Arena) Allocate(bytes int64) Address {
	if bytes < 0 {
		bytes = 0
	}
	nb := request2size(bytes)
	c, source := a.findAndTake(nb)
	c.inuse = true
	c.bin = binNone
	a.setPrevInuse(c, true)

	ptr := userPointer(c.addr)
	a.emit(Event{
		Type: EvMalloc, Msg: fmt.Sprintf("malloc(%d) -> %#x via %s", bytes, ptr, source),
		Bytes: bytes, Nb: nb, Result: ptr, Source: source,
	})
	debugf("ptarena[%d]: malloc %d (nb=%d) -> %#x from %s", a.id, bytes, nb, ptr, source)
	return ptr
}

// Release frees the chunk behind a user pointer. A null/zero pointer,
// an address the arena never minted, or a double free are all
// non-fatal: they record an error event and leave arena state
// unchanged (spec.md §4.4, §7).
func (a *Arena) Release(ptr Address) {
	if ptr == 0 {
		a.emit(Event{Type: EvError, Msg: "release(0): null pointer", Ptr: ptr})
		return
	}
	addr := chunkAddrOf(ptr)
	c := a.chunks[addr]
	if c == nil || !c.inuse {
		a.emit(Event{Type: EvError, Msg: "double free or invalid pointer", Ptr: ptr})
		errorf("ptarena[%d]: double free or invalid pointer %#x", a.id, ptr)
		return
	}
	a.releaseChunk(c)
}

// Consolidate forces mallocConsolidate: every fastbin is drained,
// each member is coalesced with its physical neighbours, and the
// result lands in the unsorted bin or is absorbed into top.
func (a *Arena) Consolidate() {
	a.mallocConsolidate()
}

// ChunkByUserPointer is a lookup convenience for viewers: it returns
// a read-only snapshot of the chunk behind ptr, or ErrUnknownPointer
// if ptr was never minted by this arena.
func (a *Arena) ChunkByUserPointer(ptr Address) (ChunkInfo, error) {
	c := a.chunks[chunkAddrOf(ptr)]
	if c == nil {
		return ChunkInfo{}, ErrUnknownPointer
	}
	return chunkInfoOf(c), nil
}

// Events returns the append-only event log recorded so far. The
// returned slice aliases the arena's internal log and must be treated
// as read-only by callers; take a Snapshot for an isolated copy.
func (a *Arena) Events() []Event {
	return a.events
}
