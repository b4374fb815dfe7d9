package ptarena

// releaseChunk implements spec.md §4.4 steps 3-8: the caller
// (Arena.Release) has already validated the pointer and confirmed
// the chunk is in use.
func (a *Arena) releaseChunk(c *chunk) {
	nb := c.size
	ptr := userPointer(c.addr)
	c.inuse = false

	if a.tcacheEligible(nb) && a.tcachePush(c) {
		a.emit(Event{Type: EvFree, Msg: "free -> tcache", Ptr: ptr, Size: nb, Into: "tcache"})
		debugf("ptarena: free %#x (%d) -> tcache", ptr, nb)
		return
	}

	if fastbinIndex(nb) >= 0 {
		a.fastbinPush(c)
		a.emit(Event{Type: EvFree, Msg: "free -> fastbin", Ptr: ptr, Size: nb, Into: "fastbin"})
		debugf("ptarena: free %#x (%d) -> fastbin", ptr, nb)
		return
	}

	merged := a.coalesce(c)
	if merged.addr+Address(merged.size) == a.topAddr {
		a.absorbIntoTop(merged)
		a.emit(Event{Type: EvFree, Msg: "free -> top", Ptr: ptr, Size: merged.size, Into: "top"})
		debugf("ptarena: free %#x (%d) -> top (merged %#x, size %d)", ptr, nb, merged.addr, merged.size)
		return
	}

	a.unsortedInsert(merged)
	a.emit(Event{Type: EvFree, Msg: "free -> unsorted", Ptr: ptr, Size: merged.size, Into: "unsorted"})
	debugf("ptarena: free %#x (%d) -> unsorted (merged %#x, size %d)", ptr, nb, merged.addr, merged.size)
}
