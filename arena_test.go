package ptarena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestScenarioTcacheHit exercises scenario 1: a freed chunk lands in
// tcache and the very next same-size request is served straight back
// out of it.
func TestScenarioTcacheHit(t *testing.T) {
	a := NewArena(1 << 15)
	p1 := a.Allocate(24)
	a.Release(p1)
	p2 := a.Allocate(24)

	require.Equal(t, p1, p2, "a same-size request right after a free should be served from tcache")
	events := a.Events()
	require.Equal(t, "tcache", events[len(events)-1].Source)
	require.Empty(t, a.CheckInvariants())
}

// TestScenarioFastbinOverflow exercises scenario 2: once tcache fills
// up to capacity, further same-size frees spill into the fastbin.
func TestScenarioFastbinOverflow(t *testing.T) {
	a := NewArena(1 << 15)
	var ptrs []Address
	for i := 0; i < a.tcacheCapacity+2; i++ {
		ptrs = append(ptrs, a.Allocate(24))
	}
	for _, p := range ptrs {
		a.Release(p)
	}

	freeEvents := 0
	intoFastbin := 0
	for _, ev := range a.Events() {
		if ev.Type == EvFree {
			freeEvents++
			if ev.Into == "fastbin" {
				intoFastbin++
			}
		}
	}
	require.Equal(t, a.tcacheCapacity+2, freeEvents)
	require.Equal(t, 2, intoFastbin, "frees past tcache capacity should spill into the fastbin")
	require.Empty(t, a.CheckInvariants())
}

// TestScenarioConsolidateMergesFastbins exercises scenario 3: once
// tcache is full, the overflow frees sit in a fastbin; forcing
// consolidation drains every fastbin (here both overflow chunks border
// top and are absorbed into it).
func TestScenarioConsolidateMergesFastbins(t *testing.T) {
	a := NewArena(1 << 15)
	var ptrs []Address
	for i := 0; i < a.tcacheCapacity+2; i++ {
		ptrs = append(ptrs, a.Allocate(24))
	}
	for _, p := range ptrs {
		a.Release(p)
	}

	a.Consolidate()

	consolidated := false
	for _, ev := range a.Events() {
		if ev.Type == EvConsolidate {
			consolidated = true
		}
	}
	require.True(t, consolidated)
	for idx := 0; idx < NFastbins; idx++ {
		require.Equal(t, noAddr, a.fastbinHeads[idx], "consolidate must drain every fastbin")
	}
	require.Empty(t, a.CheckInvariants())
}

// TestScenarioSplitAndRemainder exercises scenario 4: taking a large
// chunk from the top for a small request splits off a legal
// remainder rather than handing over the whole chunk.
func TestScenarioSplitAndRemainder(t *testing.T) {
	a := NewArena(1 << 15)
	_ = a.Allocate(64)

	splitSeen := false
	for _, ev := range a.Events() {
		if ev.Type == EvSplit {
			splitSeen = true
			require.GreaterOrEqual(t, ev.SizeB, MinChunkSize+Alignment)
		}
	}
	require.True(t, splitSeen, "allocating far less than the top chunk must split it")
	require.Empty(t, a.CheckInvariants())
}

// TestScenarioCoalesceWithNeighbour exercises scenario 5: freeing a
// middle chunk B with both A and C already resting in the unsorted
// bin produces one three-way merged chunk.
func TestScenarioCoalesceWithNeighbour(t *testing.T) {
	a := NewArena(1 << 15)
	pa := a.Allocate(200)
	pb := a.Allocate(200)
	pc := a.Allocate(200)
	// guard chunk after C, so that freeing C does not merge it into top.
	_ = a.Allocate(200)

	a.Release(pa)
	a.Release(pc)
	// 224-byte chunks are too large for tcache and the fastbins, so A
	// and C already sit in the unsorted bin; this consolidate has no
	// fastbin to drain and leaves them there.
	a.mallocConsolidate()

	ca := a.chunkAt(chunkAddrOf(pa))
	cc := a.chunkAt(chunkAddrOf(pc))
	require.True(t, ca.bin == binUnsorted || ca.bin == binSmallbin || ca.bin == binLargebin)
	require.True(t, cc.bin == binUnsorted || cc.bin == binSmallbin || cc.bin == binLargebin)

	a.Release(pb)

	merged := false
	for _, ev := range a.Events() {
		if ev.Type == EvCoalesce && len(ev.Parts) == 3 {
			merged = true
		}
	}
	require.True(t, merged, "freeing the middle chunk should merge with both free neighbours")
	require.Empty(t, a.CheckInvariants())
}

// TestScenarioInvalidRelease exercises scenario 6: a null pointer and
// a double free are both non-fatal and leave the arena unchanged.
func TestScenarioInvalidRelease(t *testing.T) {
	a := NewArena(1 << 15)
	p := a.Allocate(24)

	before := len(a.chunks)
	a.Release(0)
	a.Release(p)
	a.Release(p) // double free

	errCount := 0
	for _, ev := range a.Events() {
		if ev.Type == EvError {
			errCount++
		}
	}
	require.Equal(t, 2, errCount, "null pointer and double free should each emit exactly one error event")
	require.Equal(t, before, len(a.chunks), "invalid releases must not create or destroy chunks")
	require.Empty(t, a.CheckInvariants())
}

// TestLawRoundtrip is spec.md §8's round-trip law: allocate then
// release must return the arena to a state with no outstanding
// in-use chunks other than top.
func TestLawRoundtrip(t *testing.T) {
	a := NewArena(1 << 15)
	p := a.Allocate(128)
	a.Release(p)

	for _, c := range a.chunks {
		if c.addr != a.topAddr {
			require.False(t, c.inuse, "no non-top chunk should remain in use after a matching release")
		}
	}
}

// TestLawConsolidateIdempotent is spec.md §8's idempotence law: a
// second, back-to-back Consolidate call with nothing new to drain
// must not emit a further consolidate event.
func TestLawConsolidateIdempotent(t *testing.T) {
	a := NewArena(1 << 15)
	p := a.Allocate(24)
	a.Release(p)

	a.Consolidate()
	before := len(a.Events())
	a.Consolidate()
	after := len(a.Events())

	require.Equal(t, before, after, "a consolidate with nothing to drain must emit no new events")
}

// TestLawFastbinLIFOOrder is spec.md §8's fastbin LIFO law, exercised
// end to end through Allocate/Release rather than the bin directly.
// tcache is filled to capacity first so these same-size frees spill
// past it into the fastbin; findAndTake checks tcache before the
// fastbin, so tcache is drained before the fastbin pops are observed.
func TestLawFastbinLIFOOrder(t *testing.T) {
	a := NewArena(1 << 15)

	// outstanding chunks three past tcache capacity: releasing all of
	// them fills tcache first, then the excess three spill into the
	// fastbin (same mechanics as TestScenarioFastbinOverflow).
	ptrs := make([]Address, a.tcacheCapacity+3)
	for i := range ptrs {
		ptrs[i] = a.Allocate(24)
	}
	for _, p := range ptrs {
		a.Release(p)
	}
	overflow := ptrs[a.tcacheCapacity:]
	for _, p := range overflow {
		require.Equal(t, binFastbin, a.chunkAt(chunkAddrOf(p)).bin)
	}

	// drain tcache completely so findAndTake's tcache-first check no
	// longer intercepts same-size requests ahead of the fastbin.
	for i := 0; i < a.tcacheCapacity; i++ {
		a.Allocate(24)
	}

	got1 := a.Allocate(24)
	got2 := a.Allocate(24)
	got3 := a.Allocate(24)
	require.Equal(t, overflow[2], got1, "fastbin pop must return the most recently freed chunk first")
	require.Equal(t, overflow[1], got2)
	require.Equal(t, overflow[0], got3)
}
