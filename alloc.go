package ptarena

// findAndTake implements the spec.md §4.3 search order, terminating
// at the first tier that yields a chunk of the normalized size nb.
// It returns the chunk (already possibly split down to exactly nb)
// and a source tag for the malloc event.
func (a *Arena) findAndTake(nb int64) (*chunk, string) {
	if addr := a.tcachePop(nb); addr != noAddr {
		return a.chunks[addr], "tcache"
	}

	if idx := fastbinIndex(nb); idx >= 0 {
		if c := a.fastbinPop(idx); c != nil {
			return c, binLabel("fastbin", idx)
		}
	}

	// opportunistic consolidation: runs once per allocation, before
	// the remaining tiers are tried (spec.md §4.3 step 3). The
	// trigger condition is "top size below threshold", which
	// inverts glibc's real heuristic; that inversion is preserved
	// literally, per spec.md §9.
	if a.topSize < a.consolidateThresh {
		a.mallocConsolidate()
	} else {
		traceConsolidateSkip(a, nb)
	}

	if idx := smallbinIndex(nb); idx >= 0 {
		if c := a.smallbinPop(idx); c != nil {
			return c, binLabel("smallbin", idx)
		}
	}

	if c := a.unsortedTakeMatch(func(x *chunk) bool { return x.size >= nb }); c != nil {
		return a.maybeSplit(c, nb), "unsorted"
	}

	if c := a.largebinSearch(nb); c != nil {
		return a.maybeSplit(c, nb), "largebin"
	}

	return a.allocateFromTop(nb), "top"
}

// maybeSplit is the shared split policy for chunks taken from the
// unsorted bin or a largebin (spec.md §4.3): a remainder is only
// carved off when it would itself be a legal chunk
// (MinChunkSize + Alignment, i.e. 32 bytes or more); otherwise the
// whole chunk is handed over unsplit.
func (a *Arena) maybeSplit(c *chunk, nb int64) *chunk {
	remSize := c.size - nb
	if remSize < MinChunkSize+Alignment {
		return c
	}

	origAddr := c.addr
	remAddr := c.addr + Address(nb)
	remainder := newFreeChunk(remAddr, remSize)
	remainder.prevInuse = true // predecessor (c) becomes in-use
	a.chunks[remAddr] = remainder
	c.size = nb

	a.setPrevInuse(remainder, false) // old next-of-c: prevInuse=false, prevSize=remainder.size

	if smallbinIndex(remSize) >= 0 {
		a.smallbinPush(remainder)
	} else {
		a.largebinInsert(remainder)
	}

	a.emit(Event{
		Type: EvSplit, Msg: "split",
		From: origAddr, SplitA: c.addr, SplitB: remainder.addr, SizeA: nb, SizeB: remSize,
	})
	debugf("ptarena: split %#x -> %#x (%d) + %#x (%d)", origAddr, c.addr, nb, remainder.addr, remSize)
	return c
}

// allocateFromTop implements spec.md §4.3 step 7: grow the top via
// sysmalloc if it is too small, then always split it — the returned
// chunk sits at the current top address, the new top starts right
// after it.
func (a *Arena) allocateFromTop(nb int64) *chunk {
	if a.topSize < nb {
		a.sysmalloc(nb)
	}

	top := a.chunks[a.topAddr]
	retAddr := top.addr
	newTopAddr := top.addr + Address(nb)
	newTopSize := top.size - nb

	newTop := newFreeChunk(newTopAddr, newTopSize)
	newTop.prevInuse = true
	a.chunks[newTopAddr] = newTop
	a.topAddr, a.topSize = newTopAddr, newTopSize

	top.size = nb
	a.emit(Event{
		Type: EvSplit, Msg: "split (top)",
		From: retAddr, SplitA: retAddr, SplitB: newTopAddr, SizeA: nb, SizeB: newTopSize,
	})
	debugf("ptarena: split (top) %#x -> %#x (%d) + %#x (%d)", retAddr, retAddr, nb, newTopAddr, newTopSize)
	return top
}

// sysmalloc grows the top chunk by alignUp(max(nb, 65536), Alignment)
// bytes, extending the simulated heap's high-water mark.
func (a *Arena) sysmalloc(nb int64) {
	oldTopAddr, oldTopSize := a.topAddr, a.topSize
	growth := alignUp(maxInt64(nb, 65536), Alignment)

	top := a.chunks[oldTopAddr]
	top.size += growth
	a.topSize = top.size

	a.emit(Event{Type: EvSysmalloc, Msg: "sysmalloc", Bytes: growth, OldTop: oldTopAddr, NewTop: a.topAddr})
	debugf("ptarena: sysmalloc grew top by %d bytes (old size %d -> %d)", growth, oldTopSize, top.size)
}
